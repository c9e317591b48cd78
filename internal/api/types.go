// Package api exposes bag-of-words extraction, similarity scoring and corpus
// management over HTTP. Diagnostics of the core operations are part of a
// successful response: the body carries the empty result and a diagnostic.
package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/internal/bow"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/internal/similarity"
	apperrors "github.com/Adithya-Monish-Kumar-K/lexical-similarity/pkg/errors"
)

// ParamsRequest overrides individual extractor parameters. Absent fields
// keep the service defaults.
type ParamsRequest struct {
	BowSize        *int  `json:"bow_size"`
	WordSize       *int  `json:"word_size"`
	SkipSpaces     *bool `json:"skip_spaces"`
	NonUniqueWords *bool `json:"non_unique_words"`
	NGramMin       *int  `json:"ngram_min"`
	NGramMax       *int  `json:"ngram_max"`
}

// ExtractRequest is the body of POST /api/v1/bow. Text holds the text itself
// or, with source "file", a file name.
type ExtractRequest struct {
	Text   string        `json:"text"`
	Source string        `json:"source"`
	Mode   string        `json:"mode"`
	Params ParamsRequest `json:"params"`
}

// SimilarityRequest is the body of POST /api/v1/similarity.
type SimilarityRequest struct {
	ExtractRequest
	CaseSensitive *bool `json:"case_sensitive"`
}

// AddDocumentRequest is the body of POST /api/v1/corpus/documents.
type AddDocumentRequest struct {
	Name string `json:"name"`
	ExtractRequest
}

func (r ExtractRequest) source() bow.Source {
	if r.Source == "" {
		return bow.SourceString
	}
	return bow.Source(r.Source)
}

// resolve applies the request overrides to defaults.
func (r ExtractRequest) resolve(defaults bow.Params) bow.Params {
	p := defaults
	if r.Mode != "" {
		p.Mode = bow.Mode(r.Mode)
	}
	o := r.Params
	if o.BowSize != nil {
		p.BowSize = *o.BowSize
	}
	if o.WordSize != nil {
		p.WordSize = *o.WordSize
	}
	if o.SkipSpaces != nil {
		p.SkipSpaces = *o.SkipSpaces
	}
	if o.NonUniqueWords != nil {
		p.NonUniqueWords = *o.NonUniqueWords
	}
	if o.NGramMin != nil {
		p.NGramMin = *o.NGramMin
	}
	if o.NGramMax != nil {
		p.NGramMax = *o.NGramMax
	}
	return p
}

// Diagnostic explains why a result is empty.
type Diagnostic struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func diagnosticOf(err error) *Diagnostic {
	if err == nil {
		return nil
	}
	return &Diagnostic{Kind: apperrors.Kind(err), Message: err.Error()}
}

type ExtractResponse struct {
	BoW        *bow.BagOfWords `json:"bow"`
	Params     bow.Params      `json:"params"`
	CacheHit   bool            `json:"cache_hit"`
	Diagnostic *Diagnostic     `json:"diagnostic,omitempty"`
}

// MatchView is one scored reference with its document.
type MatchView struct {
	Index      int       `json:"index"`
	DocumentID uuid.UUID `json:"document_id"`
	Name       string    `json:"name"`
	Score      int       `json:"score"`
}

// SimilarityResponse carries the result both as an ordered index-to-score
// object and as a list of matches naming their documents.
type SimilarityResponse struct {
	Result     *similarity.Result `json:"result"`
	Matches    []MatchView        `json:"matches"`
	Input      *bow.BagOfWords    `json:"input"`
	CorpusSize int                `json:"corpus_size"`
	TookMs     int64              `json:"took_ms"`
	Diagnostic *Diagnostic        `json:"diagnostic,omitempty"`
}

type DocumentView struct {
	ID        uuid.UUID       `json:"id"`
	Index     int             `json:"index"`
	Name      string          `json:"name"`
	Params    bow.Params      `json:"params"`
	BoW       *bow.BagOfWords `json:"bow"`
	CreatedAt time.Time       `json:"created_at"`
}

func documentView(index int, doc corpus.Document) DocumentView {
	return DocumentView{
		ID:        doc.ID,
		Index:     index,
		Name:      doc.Name,
		Params:    doc.Params,
		BoW:       doc.BoW,
		CreatedAt: doc.CreatedAt,
	}
}

type DocumentsResponse struct {
	Documents []DocumentView `json:"documents"`
	Count     int            `json:"count"`
}
