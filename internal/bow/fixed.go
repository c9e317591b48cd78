package bow

import (
	"unicode"

	apperrors "github.com/Adithya-Monish-Kumar-K/lexical-similarity/pkg/errors"
)

// FixedOptions configures the fixed-width extractor.
type FixedOptions struct {
	// WordSize is the window length in characters.
	WordSize int
	// BowSize caps the number of entries kept.
	BowSize int
	// SkipSpaces drops every window that contains a whitespace character.
	SkipSpaces bool
	// NonUniqueWords keeps only windows occurring at least twice.
	NonUniqueWords bool
}

// DefaultFixedOptions mirrors the defaults of the reference analyzer.
func DefaultFixedOptions() FixedOptions {
	return FixedOptions{
		WordSize:       4,
		BowSize:        10,
		SkipSpaces:     true,
		NonUniqueWords: true,
	}
}

// ExtractFixed slides a window of opts.WordSize characters across text and
// returns the most frequent windows. The returned bag is never nil. A
// non-nil error is a diagnostic explaining why the bag is empty.
func ExtractFixed(text string, opts FixedOptions) (*BagOfWords, error) {
	b := New()
	if len(text) == 0 {
		return b, apperrors.EmptyInputf("text is empty")
	}
	if opts.BowSize <= 0 {
		return b, apperrors.InvalidParameterf("bow size must be positive, got %d", opts.BowSize)
	}
	if opts.WordSize <= 0 {
		return b, apperrors.InvalidParameterf("word size must be positive, got %d", opts.WordSize)
	}

	// Invalid UTF-8 bytes become U+FFFD in the windows, so count over the
	// decoded text as well.
	runes := []rune(text)
	counter := newOccurrenceCounter(string(runes))
	for i := 0; i+opts.WordSize <= len(runes); i++ {
		window := runes[i : i+opts.WordSize]
		if opts.SkipSpaces && containsSpace(window) {
			continue
		}
		collect(b, counter, string(window), opts.NonUniqueWords)
	}
	return finalize(b, opts.BowSize), nil
}

func containsSpace(window []rune) bool {
	for _, r := range window {
		if unicode.IsSpace(r) {
			return true
		}
	}
	return false
}
