package service

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/internal/bow"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/internal/cache"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/internal/textsource"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/lexical-similarity/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/pkg/metrics"
)

type memoryStore struct {
	mu      sync.Mutex
	docs    []corpus.Document
	saveErr error
}

func (m *memoryStore) Save(_ context.Context, doc corpus.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.docs = append(m.docs, doc)
	return nil
}

func (m *memoryStore) List(context.Context) ([]corpus.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]corpus.Document(nil), m.docs...), nil
}

func (m *memoryStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, d := range m.docs {
		if d.ID == id {
			m.docs = append(m.docs[:i], m.docs[i+1:]...)
			return nil
		}
	}
	return apperrors.New(apperrors.ErrDocumentNotFound, 404, "not stored")
}

type memoryBackend struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, cache.ErrMiss
}

func (m *memoryBackend) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memoryBackend) FlushByPattern(context.Context, string) (int64, error) {
	return 0, nil
}

func assertScraped(t *testing.T, m *metrics.Metrics, want ...string) {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	for _, w := range want {
		if !strings.Contains(string(body), w) {
			t.Errorf("expected %q in scrape output", w)
		}
	}
}

func newTestService(t *testing.T, deps Deps) *Service {
	t.Helper()
	opts := OptionsFromConfig(config.Default())
	opts.Defaults.WordSize = 2
	return New(bow.NewExtractor(textsource.New(0)), opts, deps)
}

func add(t *testing.T, s *Service, name, text string) corpus.Document {
	t.Helper()
	doc, err := s.AddDocument(context.Background(), name, text, nil)
	if err != nil {
		t.Fatalf("add %s: %v", name, err)
	}
	return doc
}

func TestSimilarityScoresAgainstCorpusInOrder(t *testing.T) {
	s := newTestService(t, Deps{})
	add(t, s, "one", "abab")       // ab
	add(t, s, "two", "xyxy")       // xy
	add(t, s, "three", "ababcdcd") // ab cd

	scored, err := s.Similarity(context.Background(), bow.SourceString, "abababcdcd", nil, nil)
	if err != nil {
		t.Fatalf("similarity: %v", err)
	}
	if got := scored.Result.Indices(); !reflect.DeepEqual(got, []int{2, 0}) {
		t.Errorf("expected indices [2 0], got %v", got)
	}
	if scored.Documents[2].Name != "three" {
		t.Errorf("expected documents aligned with indices, got %q", scored.Documents[2].Name)
	}
}

func TestSimilarityDiagnostics(t *testing.T) {
	s := newTestService(t, Deps{})
	add(t, s, "one", "abab")

	scored, err := s.Similarity(context.Background(), bow.SourceString, "", nil, nil)
	if !errors.Is(err, apperrors.ErrEmptyInput) || scored.Result.Len() != 0 {
		t.Errorf("expected empty input diagnostic with empty result, got %v", err)
	}

	bad := s.Defaults()
	bad.BowSize = 0
	_, err = s.Similarity(context.Background(), bow.SourceString, "abab", &bad, nil)
	if !errors.Is(err, apperrors.ErrInvalidParameter) {
		t.Errorf("expected invalid parameter diagnostic, got %v", err)
	}

	// A text without repeated windows yields an empty input bag.
	_, err = s.Similarity(context.Background(), bow.SourceString, "abcdefg", nil, nil)
	if !errors.Is(err, apperrors.ErrEmptyInput) {
		t.Errorf("expected empty bag diagnostic, got %v", err)
	}

	_, err = s.Similarity(context.Background(), bow.SourceFile, filepath.Join(t.TempDir(), "missing.txt"), nil, nil)
	if !errors.Is(err, apperrors.ErrIOFailure) {
		t.Errorf("expected io failure diagnostic, got %v", err)
	}
}

func TestSimilarityCaseSensitivityOverride(t *testing.T) {
	s := newTestService(t, Deps{})
	add(t, s, "upper", "ABAB")

	scored, err := s.Similarity(context.Background(), bow.SourceString, "abab", nil, nil)
	if err != nil || scored.Result.Len() != 1 {
		t.Fatalf("expected case-insensitive match by default, got %v err=%v", scored.Result.Matches(), err)
	}
	sensitive := true
	scored, err = s.Similarity(context.Background(), bow.SourceString, "abab", nil, &sensitive)
	if err != nil || scored.Result.Len() != 0 {
		t.Errorf("expected no case-sensitive match, got %v err=%v", scored.Result.Matches(), err)
	}
}

func TestSimilarityLimitsResults(t *testing.T) {
	s := newTestService(t, Deps{})
	s.opts.MaxResults = 1
	add(t, s, "a", "abab")
	add(t, s, "b", "abab")

	scored, err := s.Similarity(context.Background(), bow.SourceString, "abab", nil, nil)
	if err != nil || scored.Result.Len() != 1 {
		t.Errorf("expected one result, got %v err=%v", scored.Result.Matches(), err)
	}
}

func TestAddDocumentPersistsAndRollsBack(t *testing.T) {
	store := &memoryStore{}
	m := metrics.New()
	s := newTestService(t, Deps{Store: store, Metrics: m})

	doc := add(t, s, "one", "abab")
	if len(store.docs) != 1 || store.docs[0].ID != doc.ID {
		t.Fatalf("expected document stored, got %v", store.docs)
	}
	if _, err := s.AddDocument(context.Background(), "one", "xyxy", nil); !errors.Is(err, apperrors.ErrDocumentExists) {
		t.Errorf("expected duplicate rejection, got %v", err)
	}
	if _, err := s.AddDocument(context.Background(), "empty", "", nil); !errors.Is(err, apperrors.ErrEmptyInput) {
		t.Errorf("expected empty text rejection, got %v", err)
	}
	if _, err := s.AddDocument(context.Background(), "", "abab", nil); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("expected missing name rejection, got %v", err)
	}

	store.saveErr = errors.New("db down")
	if _, err := s.AddDocument(context.Background(), "two", "xyxy", nil); err == nil {
		t.Fatal("expected store failure")
	}
	if len(s.Documents()) != 1 {
		t.Errorf("expected failed save rolled back, got %d documents", len(s.Documents()))
	}
	assertScraped(t, m,
		`corpus_documents 1`,
		`corpus_ingested_total{source="http",status="duplicate"} 1`,
		`corpus_ingested_total{source="http",status="ok"} 1`,
	)
}

func TestRemoveDocument(t *testing.T) {
	store := &memoryStore{}
	s := newTestService(t, Deps{Store: store})
	a := add(t, s, "a", "abab")
	add(t, s, "b", "xyxy")

	if _, err := s.RemoveDocument(context.Background(), a.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if docs := s.Documents(); len(docs) != 1 || docs[0].Name != "b" {
		t.Errorf("unexpected corpus %v", docs)
	}
	if len(store.docs) != 1 {
		t.Errorf("expected store delete, got %d stored", len(store.docs))
	}
	if _, err := s.RemoveDocument(context.Background(), a.ID); !errors.Is(err, apperrors.ErrDocumentNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestExtractUsesCache(t *testing.T) {
	m := metrics.New()
	c := cache.New(&memoryBackend{data: map[string][]byte{}}, time.Minute)
	s := newTestService(t, Deps{Cache: c, Metrics: m})

	first, err := s.Extract(context.Background(), bow.SourceString, "ababab", nil)
	if err != nil || first.CacheHit {
		t.Fatalf("expected miss, got hit=%v err=%v", first.CacheHit, err)
	}
	second, err := s.Extract(context.Background(), bow.SourceString, "ababab", nil)
	if err != nil || !second.CacheHit {
		t.Fatalf("expected hit, got hit=%v err=%v", second.CacheHit, err)
	}
	if !first.BoW.Equal(second.BoW) {
		t.Errorf("expected equal bags, got %v and %v", first.BoW.Entries(), second.BoW.Entries())
	}
	assertScraped(t, m,
		`bow_cache_hits_total 1`,
		`bow_cache_misses_total 1`,
		`bow_extractions_total{mode="fixed",outcome="ok"} 2`,
	)
}

func TestLoadCorpusFromStoreThenDir(t *testing.T) {
	store := &memoryStore{}
	stored := corpus.NewDocument("a.txt", bow.Params{Mode: bow.ModeFixed}, bow.FromEntries(bow.Entry{Word: "zz", Count: 2}))
	store.docs = []corpus.Document{stored}

	dir := t.TempDir()
	for name, text := range map[string]string{"a.txt": "abab", "b.txt": "xyxy", "c.txt": ""} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(text), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	s := newTestService(t, Deps{Store: store})
	s.opts.CorpusDir = dir
	if err := s.LoadCorpus(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	docs := s.Documents()
	if len(docs) != 2 || docs[0].ID != stored.ID || docs[1].Name != "b.txt" {
		t.Fatalf("unexpected corpus %+v", docs)
	}
	if len(store.docs) != 2 {
		t.Errorf("expected directory document stored, got %d", len(store.docs))
	}
}

func TestIngestHandlerAddsDocument(t *testing.T) {
	s := newTestService(t, Deps{})
	if err := s.IngestHandler()(context.Background(), nil, []byte(`{"name":"k.txt","text":"abab"}`)); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if docs := s.Documents(); len(docs) != 1 || docs[0].Name != "k.txt" {
		t.Errorf("unexpected corpus %v", docs)
	}
}
