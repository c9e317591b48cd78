package bow

import (
	"context"
	"fmt"

	apperrors "github.com/Adithya-Monish-Kumar-K/lexical-similarity/pkg/errors"
)

// Mode selects one of the two extractors.
type Mode string

const (
	ModeFixed Mode = "fixed"
	ModeNGram Mode = "ngram"
)

// Source tells the Extractor how to interpret its input.
type Source string

const (
	SourceString Source = "string"
	SourceFile   Source = "file"
)

// Params is the flattened parameter set of both extractors, as carried by
// configuration, HTTP requests and cache keys.
type Params struct {
	Mode           Mode `json:"mode"`
	BowSize        int  `json:"bow_size"`
	WordSize       int  `json:"word_size,omitempty"`
	SkipSpaces     bool `json:"skip_spaces"`
	NonUniqueWords bool `json:"non_unique_words"`
	NGramMin       int  `json:"ngram_min,omitempty"`
	NGramMax       int  `json:"ngram_max,omitempty"`
}

func (p Params) Fixed() FixedOptions {
	return FixedOptions{
		WordSize:       p.WordSize,
		BowSize:        p.BowSize,
		SkipSpaces:     p.SkipSpaces,
		NonUniqueWords: p.NonUniqueWords,
	}
}

func (p Params) NGram() NGramOptions {
	return NGramOptions{
		Range:          Range{Lo: p.NGramMin, Hi: p.NGramMax},
		BowSize:        p.BowSize,
		NonUniqueWords: p.NonUniqueWords,
	}
}

// Key is a canonical string form of the parameters relevant to p.Mode.
func (p Params) Key() string {
	switch p.Mode {
	case ModeNGram:
		return fmt.Sprintf("ngram:n=%d-%d:size=%d:nonunique=%t", p.NGramMin, p.NGramMax, p.BowSize, p.NonUniqueWords)
	default:
		return fmt.Sprintf("%s:w=%d:size=%d:skip=%t:nonunique=%t", p.Mode, p.WordSize, p.BowSize, p.SkipSpaces, p.NonUniqueWords)
	}
}

// Extract runs the extractor selected by p.Mode over text.
func (p Params) Extract(text string) (*BagOfWords, error) {
	switch p.Mode {
	case ModeFixed:
		return ExtractFixed(text, p.Fixed())
	case ModeNGram:
		return ExtractNGram(text, p.NGram())
	default:
		return New(), apperrors.InvalidParameterf("wrong mode %q, available choices: %q, %q", p.Mode, ModeFixed, ModeNGram)
	}
}

// TextLoader returns the contents of a named text resource.
type TextLoader interface {
	Load(ctx context.Context, name string) (string, error)
}

// Extractor resolves a source selector before handing the text to an
// extractor.
type Extractor struct {
	loader TextLoader
}

func NewExtractor(loader TextLoader) *Extractor {
	return &Extractor{loader: loader}
}

// Text returns the text designated by input: input itself for SourceString,
// the loaded file contents for SourceFile.
func (e *Extractor) Text(ctx context.Context, source Source, input string) (string, error) {
	switch source {
	case SourceString:
		return input, nil
	case SourceFile:
		if e.loader == nil {
			return "", apperrors.IOFailuref("no text loader configured for %q", input)
		}
		return e.loader.Load(ctx, input)
	default:
		return "", apperrors.InvalidParameterf("wrong source %q, available choices: %q, %q", source, SourceString, SourceFile)
	}
}

// FromSource resolves input through source and extracts a bag with p.
func (e *Extractor) FromSource(ctx context.Context, source Source, input string, p Params) (*BagOfWords, error) {
	text, err := e.Text(ctx, source, input)
	if err != nil {
		return New(), err
	}
	return p.Extract(text)
}
