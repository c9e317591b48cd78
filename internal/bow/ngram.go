package bow

import (
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/lexical-similarity/pkg/errors"
)

// Range is an inclusive range of n-gram lengths.
type Range struct {
	Lo int
	Hi int
}

// NGramOptions configures the n-gram extractor.
type NGramOptions struct {
	Range          Range
	BowSize        int
	NonUniqueWords bool
}

func DefaultNGramOptions() NGramOptions {
	return NGramOptions{
		Range:          Range{Lo: 1, Hi: 1},
		BowSize:        10,
		NonUniqueWords: true,
	}
}

// ExtractNGram splits text on single spaces and returns the most frequent
// n-grams for every n in opts.Range. Consecutive spaces yield empty tokens,
// which take part in the n-grams like any other token. Counts are literal
// substring counts over text, not token-aligned counts.
func ExtractNGram(text string, opts NGramOptions) (*BagOfWords, error) {
	b := New()
	if len(text) == 0 {
		return b, apperrors.EmptyInputf("text is empty")
	}
	if opts.BowSize <= 0 {
		return b, apperrors.InvalidParameterf("bow size must be positive, got %d", opts.BowSize)
	}
	if opts.Range.Lo < 1 || opts.Range.Hi < opts.Range.Lo {
		return b, apperrors.InvalidParameterf("wrong n-gram range (%d, %d)", opts.Range.Lo, opts.Range.Hi)
	}

	tokens := strings.Split(text, " ")
	counter := newOccurrenceCounter(text)
	// No n-gram is longer than the token list.
	hi := min(opts.Range.Hi, len(tokens))
	for n := opts.Range.Lo; n <= hi; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			word := strings.Join(tokens[i:i+n], " ")
			if word == "" {
				continue
			}
			collect(b, counter, word, opts.NonUniqueWords)
		}
	}
	return finalize(b, opts.BowSize), nil
}
