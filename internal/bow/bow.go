// Package bow builds frequency-weighted "bag of words" profiles from raw
// text. Two extractors are provided: a fixed-width sliding window over the
// characters of the text, and whitespace-token n-grams over a range of n.
//
// A BagOfWords keeps its entries in an explicit order. Extractors insert
// words in scan order with set-once semantics, then stable-sort by count
// descending, so ties keep their discovery order.
package bow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Entry is a single word and its occurrence count.
type Entry struct {
	Word  string
	Count int
}

// BagOfWords is an insertion-ordered mapping from word to occurrence count.
// The zero value is not usable; call New.
type BagOfWords struct {
	entries []Entry
	index   map[string]int
}

// New returns an empty BagOfWords.
func New() *BagOfWords {
	return &BagOfWords{
		index: make(map[string]int),
	}
}

// FromEntries builds a BagOfWords from entries in the given order. Later
// duplicates of a word are ignored.
func FromEntries(entries ...Entry) *BagOfWords {
	b := New()
	for _, e := range entries {
		b.Add(e.Word, e.Count)
	}
	return b
}

// Add inserts word with count unless word is already present. It reports
// whether the word was inserted.
func (b *BagOfWords) Add(word string, count int) bool {
	if _, exists := b.index[word]; exists {
		return false
	}
	b.index[word] = len(b.entries)
	b.entries = append(b.entries, Entry{Word: word, Count: count})
	return true
}

func (b *BagOfWords) Get(word string) (int, bool) {
	if b == nil {
		return 0, false
	}
	i, ok := b.index[word]
	if !ok {
		return 0, false
	}
	return b.entries[i].Count, true
}

func (b *BagOfWords) Has(word string) bool {
	_, ok := b.Get(word)
	return ok
}

func (b *BagOfWords) Len() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}

// Entries returns a copy of the entries in order.
func (b *BagOfWords) Entries() []Entry {
	if b == nil {
		return nil
	}
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Words returns the words in order.
func (b *BagOfWords) Words() []string {
	if b == nil {
		return nil
	}
	words := make([]string, len(b.entries))
	for i, e := range b.entries {
		words[i] = e.Word
	}
	return words
}

// Vocabulary returns the key set. Counts are not part of it.
func (b *BagOfWords) Vocabulary() map[string]struct{} {
	vocab := make(map[string]struct{}, b.Len())
	if b == nil {
		return vocab
	}
	for _, e := range b.entries {
		vocab[e.Word] = struct{}{}
	}
	return vocab
}

// Equal reports whether both bags hold the same entries in the same order.
func (b *BagOfWords) Equal(other *BagOfWords) bool {
	if b.Len() != other.Len() {
		return false
	}
	for i := range b.Len() {
		if b.entries[i] != other.entries[i] {
			return false
		}
	}
	return true
}

// sortByCount orders entries by count descending. The sort is stable, so
// equal counts keep insertion order.
func (b *BagOfWords) sortByCount() {
	sort.SliceStable(b.entries, func(i, j int) bool {
		return b.entries[i].Count > b.entries[j].Count
	})
	b.reindex()
}

// truncate drops every entry from position n onward.
func (b *BagOfWords) truncate(n int) {
	if n < 0 || len(b.entries) <= n {
		return
	}
	for _, e := range b.entries[n:] {
		delete(b.index, e.Word)
	}
	b.entries = b.entries[:n:n]
}

func (b *BagOfWords) reindex() {
	for i, e := range b.entries {
		b.index[e.Word] = i
	}
}

// MarshalJSON encodes the bag as a JSON object whose keys appear in entry
// order.
func (b *BagOfWords) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range b.Entries() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Word)
		if err != nil {
			return nil, fmt.Errorf("encoding word %q: %w", e.Word, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		fmt.Fprintf(&buf, "%d", e.Count)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping the object's key order.
func (b *BagOfWords) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decoding bag of words: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("decoding bag of words: expected object, got %v", tok)
	}
	decoded := New()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decoding bag of words key: %w", err)
		}
		word, ok := tok.(string)
		if !ok {
			return fmt.Errorf("decoding bag of words: unexpected key %v", tok)
		}
		var count int
		if err := dec.Decode(&count); err != nil {
			return fmt.Errorf("decoding count for %q: %w", word, err)
		}
		decoded.Add(word, count)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decoding bag of words: %w", err)
	}
	*b = *decoded
	return nil
}
