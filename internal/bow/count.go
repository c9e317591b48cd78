package bow

import "strings"

// occurrenceCounter memoizes whole-text substring counts. The count of a
// word is strings.Count over the full text: a left-to-right scan that does
// not count overlapping matches.
type occurrenceCounter struct {
	text   string
	counts map[string]int
}

func newOccurrenceCounter(text string) *occurrenceCounter {
	return &occurrenceCounter{
		text:   text,
		counts: make(map[string]int),
	}
}

func (c *occurrenceCounter) count(word string) int {
	if n, ok := c.counts[word]; ok {
		return n
	}
	n := strings.Count(c.text, word)
	c.counts[word] = n
	return n
}

// collect runs the shared insertion step of both extractors: count the
// candidate, drop it when it is unique and only repeated words are wanted,
// and insert it with set-once semantics.
func collect(b *BagOfWords, counter *occurrenceCounter, word string, nonUniqueWords bool) {
	if b.Has(word) {
		return
	}
	n := counter.count(word)
	if nonUniqueWords && n < 2 {
		return
	}
	b.Add(word, n)
}

// finalize sorts by count and keeps the top bowSize entries.
func finalize(b *BagOfWords, bowSize int) *BagOfWords {
	b.sortByCount()
	b.truncate(bowSize)
	return b
}
