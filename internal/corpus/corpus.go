// Package corpus keeps the reference documents that input texts are scored
// against. The position of a document in the corpus is the index reported
// by the similarity scorer.
package corpus

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/internal/bow"
	apperrors "github.com/Adithya-Monish-Kumar-K/lexical-similarity/pkg/errors"
)

// Document is a reference text reduced to its bag of words. The text itself
// is not kept.
type Document struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Params    bow.Params      `json:"params"`
	BoW       *bow.BagOfWords `json:"bow"`
	CreatedAt time.Time       `json:"created_at"`
}

func NewDocument(name string, params bow.Params, b *bow.BagOfWords) Document {
	return Document{
		ID:        uuid.New(),
		Name:      name,
		Params:    params,
		BoW:       b,
		CreatedAt: time.Now().UTC(),
	}
}

// Corpus is an ordered, concurrency-safe set of documents with unique names.
type Corpus struct {
	mu     sync.RWMutex
	docs   []Document
	byName map[string]int
}

func New() *Corpus {
	return &Corpus{
		byName: make(map[string]int),
	}
}

// Add appends doc. Names are unique within a corpus.
func (c *Corpus) Add(doc Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.byName[doc.Name]; exists {
		return apperrors.Newf(apperrors.ErrDocumentExists, http.StatusConflict, "document %q already in corpus", doc.Name)
	}
	c.byName[doc.Name] = len(c.docs)
	c.docs = append(c.docs, doc)
	return nil
}

// Remove deletes the document with id. Later documents shift down by one
// index.
func (c *Corpus) Remove(id uuid.UUID) (Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, doc := range c.docs {
		if doc.ID != id {
			continue
		}
		c.docs = append(c.docs[:i:i], c.docs[i+1:]...)
		c.reindex()
		return doc, nil
	}
	return Document{}, apperrors.Newf(apperrors.ErrDocumentNotFound, http.StatusNotFound, "document %s not found", id)
}

func (c *Corpus) Get(id uuid.UUID) (Document, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, doc := range c.docs {
		if doc.ID == id {
			return doc, true
		}
	}
	return Document{}, false
}

// Snapshot returns the documents in corpus order.
func (c *Corpus) Snapshot() []Document {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Document, len(c.docs))
	copy(out, c.docs)
	return out
}

// Replace swaps the whole content of the corpus for docs.
func (c *Corpus) Replace(docs []Document) error {
	byName := make(map[string]int, len(docs))
	for i, doc := range docs {
		if _, exists := byName[doc.Name]; exists {
			return fmt.Errorf("duplicate document name %q", doc.Name)
		}
		byName[doc.Name] = i
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs = append([]Document(nil), docs...)
	c.byName = byName
	return nil
}

func (c *Corpus) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}

// BoWs returns the reference bags of docs, index for index.
func BoWs(docs []Document) []*bow.BagOfWords {
	bows := make([]*bow.BagOfWords, len(docs))
	for i, doc := range docs {
		bows[i] = doc.BoW
	}
	return bows
}

func (c *Corpus) reindex() {
	c.byName = make(map[string]int, len(c.docs))
	for i, doc := range c.docs {
		c.byName[doc.Name] = i
	}
}
