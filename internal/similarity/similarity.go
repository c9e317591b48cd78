// Package similarity scores an input bag of words against a list of
// reference bags by counting shared vocabulary.
package similarity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"golang.org/x/text/cases"

	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/internal/bow"
	apperrors "github.com/Adithya-Monish-Kumar-K/lexical-similarity/pkg/errors"
)

// Match is the overlap score of one reference bag. Index is the position of
// the reference in the list passed to Score.
type Match struct {
	Index int `json:"index"`
	Score int `json:"score"`
}

// Result holds matches sorted by score descending. References sharing no
// vocabulary with the input are absent.
type Result struct {
	matches []Match
}

func (r *Result) Len() int {
	if r == nil {
		return 0
	}
	return len(r.matches)
}

func (r *Result) Matches() []Match {
	if r == nil {
		return nil
	}
	out := make([]Match, len(r.matches))
	copy(out, r.matches)
	return out
}

// Get returns the score of the reference at index.
func (r *Result) Get(index int) (int, bool) {
	for _, m := range r.Matches() {
		if m.Index == index {
			return m.Score, true
		}
	}
	return 0, false
}

// Indices returns the matched reference indices in result order.
func (r *Result) Indices() []int {
	indices := make([]int, 0, r.Len())
	for _, m := range r.Matches() {
		indices = append(indices, m.Index)
	}
	return indices
}

// Top returns a result holding at most the first n matches. n <= 0 keeps
// all of them.
func (r *Result) Top(n int) *Result {
	matches := r.Matches()
	if n > 0 && len(matches) > n {
		matches = matches[:n]
	}
	return &Result{matches: matches}
}

// MarshalJSON encodes the result as an object from index to score, keeping
// result order.
func (r *Result) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range r.Matches() {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, `"%d":%d`, m.Index, m.Score)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the object form produced by MarshalJSON.
func (r *Result) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return fmt.Errorf("decoding similarity result: expected object")
	}
	var matches []Match
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decoding similarity result key: %w", err)
		}
		key, _ := tok.(string)
		var m Match
		if _, err := fmt.Sscanf(key, "%d", &m.Index); err != nil {
			return fmt.Errorf("decoding similarity result: bad index %q", key)
		}
		if err := dec.Decode(&m.Score); err != nil {
			return fmt.Errorf("decoding score for %q: %w", key, err)
		}
		matches = append(matches, m)
	}
	r.matches = matches
	return nil
}

// Score counts, for every reference bag, how many words of its vocabulary
// also occur in the vocabulary of input. Counts play no part. When
// caseSensitive is false both sides are case folded before comparing.
//
// The result is never nil. An empty input bag yields an empty result and an
// EmptyInput diagnostic; an empty reference list yields an empty result and
// no diagnostic.
func Score(refs []*bow.BagOfWords, input *bow.BagOfWords, caseSensitive bool) (*Result, error) {
	result := &Result{matches: make([]Match, 0)}
	if input.Len() == 0 {
		return result, apperrors.EmptyInputf("input bag of words is empty")
	}

	inputSet := vocabulary(input, caseSensitive)
	for i, ref := range refs {
		overlap := 0
		for word := range vocabulary(ref, caseSensitive) {
			if _, ok := inputSet[word]; ok {
				overlap++
			}
		}
		if overlap > 0 {
			result.matches = append(result.matches, Match{Index: i, Score: overlap})
		}
	}
	sort.SliceStable(result.matches, func(i, j int) bool {
		return result.matches[i].Score > result.matches[j].Score
	})
	return result, nil
}

func vocabulary(b *bow.BagOfWords, caseSensitive bool) map[string]struct{} {
	if caseSensitive {
		return b.Vocabulary()
	}
	folder := cases.Fold()
	set := make(map[string]struct{}, b.Len())
	for _, word := range b.Words() {
		set[folder.String(word)] = struct{}{}
	}
	return set
}
