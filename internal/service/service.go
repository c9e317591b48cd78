// Package service orchestrates extraction, caching, scoring against the
// reference corpus, persistence and event publishing. The HTTP handler, the
// ingest consumer and the CLI all drive the core through it.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/internal/bow"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/internal/cache"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/internal/events"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/internal/similarity"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/lexical-similarity/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/pkg/metrics"
)

// Ingestion sources, as reported by the corpus_ingested_total metric.
const (
	SourceHTTP  = "http"
	SourceKafka = "kafka"
	SourceDir   = "dir"
)

// Options are the defaults and limits the service applies to requests.
type Options struct {
	Defaults      bow.Params
	CaseSensitive bool
	MaxResults    int
	CorpusDir     string
	Extensions    []string
	Workers       int
}

// OptionsFromConfig maps the extractor, scorer and corpus sections of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	e := cfg.Extractor
	return Options{
		Defaults: bow.Params{
			Mode:           bow.Mode(e.Mode),
			BowSize:        e.BowSize,
			WordSize:       e.WordSize,
			SkipSpaces:     e.SkipSpaces,
			NonUniqueWords: e.NonUniqueWords,
			NGramMin:       e.NGramMin,
			NGramMax:       e.NGramMax,
		},
		CaseSensitive: cfg.Scorer.CaseSensitive,
		MaxResults:    cfg.Scorer.MaxResults,
		CorpusDir:     cfg.Corpus.Dir,
		Extensions:    cfg.Corpus.Extensions,
		Workers:       cfg.Corpus.Workers,
	}
}

// Deps are the optional collaborators of the service. Nil members are
// skipped.
type Deps struct {
	Store     corpus.Repository
	Cache     *cache.BowCache
	Collector *events.Collector
	Metrics   *metrics.Metrics
}

type Service struct {
	extractor *bow.Extractor
	corpus    *corpus.Corpus
	opts      Options
	deps      Deps
	logger    *slog.Logger
}

func New(extractor *bow.Extractor, opts Options, deps Deps) *Service {
	return &Service{
		extractor: extractor,
		corpus:    corpus.New(),
		opts:      opts,
		deps:      deps,
		logger:    slog.Default().With("component", "similarity-service"),
	}
}

// Defaults returns the extractor parameters used when a request has none.
func (s *Service) Defaults() bow.Params {
	return s.opts.Defaults
}

func (s *Service) params(override *bow.Params) bow.Params {
	if override == nil {
		return s.opts.Defaults
	}
	return *override
}

// Extraction is an extracted bag together with how it was obtained.
type Extraction struct {
	BoW      *bow.BagOfWords
	Params   bow.Params
	CacheHit bool
}

// Extract resolves input through source and extracts its bag of words. A
// diagnostic is returned together with an empty bag.
func (s *Service) Extract(ctx context.Context, source bow.Source, input string, params *bow.Params) (Extraction, error) {
	p := s.params(params)
	text, err := s.extractor.Text(ctx, source, input)
	if err != nil {
		s.recordExtraction(p, nil, err, 0)
		return Extraction{BoW: bow.New(), Params: p}, err
	}
	return s.extractText(ctx, text, p)
}

func (s *Service) extractText(ctx context.Context, text string, p bow.Params) (Extraction, error) {
	start := time.Now()
	compute := func() (*bow.BagOfWords, error) { return p.Extract(text) }

	var (
		b   *bow.BagOfWords
		hit bool
		err error
	)
	if s.deps.Cache != nil {
		b, hit, err = s.deps.Cache.GetOrCompute(ctx, p, text, compute)
		if m := s.deps.Metrics; m != nil {
			if hit {
				m.CacheHitsTotal.Inc()
			} else {
				m.CacheMissesTotal.Inc()
			}
		}
	} else {
		b, err = compute()
	}
	if b == nil {
		b = bow.New()
	}
	s.recordExtraction(p, b, err, time.Since(start))
	return Extraction{BoW: b, Params: p, CacheHit: hit}, err
}

func (s *Service) recordExtraction(p bow.Params, b *bow.BagOfWords, err error, elapsed time.Duration) {
	m := s.deps.Metrics
	if m == nil {
		return
	}
	mode := string(p.Mode)
	m.ExtractionsTotal.WithLabelValues(mode, apperrors.Kind(err)).Inc()
	if err == nil {
		m.ExtractionDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
		m.BowEntries.WithLabelValues(mode).Observe(float64(b.Len()))
	}
}

// Scored is a similarity result with the documents its indices refer to.
type Scored struct {
	Input     Extraction
	Result    *similarity.Result
	Documents []corpus.Document
}

// Similarity extracts a bag from input and scores it against the current
// corpus. caseSensitive overrides the configured default when non-nil.
func (s *Service) Similarity(ctx context.Context, source bow.Source, input string, params *bow.Params, caseSensitive *bool) (Scored, error) {
	start := time.Now()
	cs := s.opts.CaseSensitive
	if caseSensitive != nil {
		cs = *caseSensitive
	}

	docs := s.corpus.Snapshot()
	ex, err := s.Extract(ctx, source, input, params)
	scored := Scored{Input: ex, Result: &similarity.Result{}, Documents: docs}
	if err == nil {
		var result *similarity.Result
		result, err = similarity.Score(corpus.BoWs(docs), ex.BoW, cs)
		scored.Result = result.Top(s.opts.MaxResults)
	}
	elapsed := time.Since(start)

	if m := s.deps.Metrics; m != nil {
		m.ScoresTotal.WithLabelValues(apperrors.Kind(err)).Inc()
		m.ScoreDuration.Observe(elapsed.Seconds())
		m.ScoreMatches.Observe(float64(scored.Result.Len()))
	}
	s.deps.Collector.Track(s.event(ctx, scored, err, elapsed))
	logger.Diagnostic(logger.FromContext(ctx), "similarity diagnostic", err, "mode", ex.Params.Mode)
	return scored, err
}

func (s *Service) event(ctx context.Context, scored Scored, err error, elapsed time.Duration) events.SimilarityEvent {
	ev := events.SimilarityEvent{
		Type:         events.EventScored,
		RequestID:    logger.RequestID(ctx),
		Mode:         scored.Input.Params.Mode,
		InputEntries: scored.Input.BoW.Len(),
		CorpusSize:   len(scored.Documents),
		Matches:      scored.Result.Len(),
		Outcome:      apperrors.Kind(err),
		CacheHit:     scored.Input.CacheHit,
		LatencyMs:    elapsed.Milliseconds(),
		Timestamp:    time.Now().UTC(),
	}
	if matches := scored.Result.Matches(); len(matches) > 0 {
		ev.TopDocument = scored.Documents[matches[0].Index].Name
		ev.TopScore = matches[0].Score
	}
	return ev
}

// Text resolves input through source without extracting.
func (s *Service) Text(ctx context.Context, source bow.Source, input string) (string, error) {
	return s.extractor.Text(ctx, source, input)
}

// AddDocument extracts text into a new reference document, appends it to
// the corpus and persists it. Extraction diagnostics reject the document.
func (s *Service) AddDocument(ctx context.Context, name, text string, params *bow.Params) (corpus.Document, error) {
	return s.addDocument(ctx, SourceHTTP, name, text, params)
}

// IngestHandler returns the corpus.ingest consumer callback.
func (s *Service) IngestHandler() kafka.MessageHandler {
	return events.IngestHandler(kafkaIngest{s})
}

type kafkaIngest struct{ s *Service }

func (k kafkaIngest) AddDocument(ctx context.Context, name, text string, params *bow.Params) (corpus.Document, error) {
	return k.s.addDocument(ctx, SourceKafka, name, text, params)
}

func (s *Service) addDocument(ctx context.Context, source, name, text string, params *bow.Params) (corpus.Document, error) {
	if name == "" {
		return corpus.Document{}, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "document name is required")
	}
	ex, err := s.extractText(ctx, text, s.params(params))
	if err != nil {
		s.recordIngest(source, err)
		return corpus.Document{}, err
	}
	doc := corpus.NewDocument(name, ex.Params, ex.BoW)
	if err := s.insert(ctx, doc); err != nil {
		s.recordIngest(source, err)
		return corpus.Document{}, err
	}
	s.recordIngest(source, nil)
	logger.FromContext(ctx).Info("document added", "id", doc.ID, "name", name, "source", source, "entries", doc.BoW.Len())
	return doc, nil
}

func (s *Service) insert(ctx context.Context, doc corpus.Document) error {
	if err := s.corpus.Add(doc); err != nil {
		return err
	}
	if s.deps.Store != nil {
		if err := s.deps.Store.Save(ctx, doc); err != nil {
			s.corpus.Remove(doc.ID)
			return err
		}
	}
	s.updateCorpusGauge()
	return nil
}

func (s *Service) recordIngest(source string, err error) {
	if m := s.deps.Metrics; m != nil {
		status := "ok"
		if err != nil {
			status = apperrors.Kind(err)
			if errors.Is(err, apperrors.ErrDocumentExists) {
				status = "duplicate"
			}
		}
		m.IngestedTotal.WithLabelValues(source, status).Inc()
	}
}

func (s *Service) updateCorpusGauge() {
	if m := s.deps.Metrics; m != nil {
		m.CorpusDocuments.Set(float64(s.corpus.Len()))
	}
}

// RemoveDocument deletes a document from the corpus and the store.
func (s *Service) RemoveDocument(ctx context.Context, id uuid.UUID) (corpus.Document, error) {
	doc, err := s.corpus.Remove(id)
	if err != nil {
		return corpus.Document{}, err
	}
	if s.deps.Store != nil {
		if err := s.deps.Store.Delete(ctx, id); err != nil && !errors.Is(err, apperrors.ErrDocumentNotFound) {
			s.corpus.Add(doc)
			return corpus.Document{}, err
		}
	}
	s.updateCorpusGauge()
	logger.FromContext(ctx).Info("document removed", "id", id, "name", doc.Name)
	return doc, nil
}

// CacheStats reports cache hits and misses. ok is false without a cache.
func (s *Service) CacheStats() (hits, misses int64, ok bool) {
	if s.deps.Cache == nil {
		return 0, 0, false
	}
	hits, misses = s.deps.Cache.Stats()
	return hits, misses, true
}

// InvalidateCache drops every cached bag. It is a no-op without a cache.
func (s *Service) InvalidateCache(ctx context.Context) error {
	if s.deps.Cache == nil {
		return nil
	}
	return s.deps.Cache.Invalidate(ctx)
}

// Documents returns the corpus in scoring order.
func (s *Service) Documents() []corpus.Document {
	return s.corpus.Snapshot()
}

// LoadCorpus restores stored documents and then adds every file of the
// configured corpus directory whose name is not taken yet.
func (s *Service) LoadCorpus(ctx context.Context) error {
	if s.deps.Store != nil {
		docs, err := s.deps.Store.List(ctx)
		if err != nil {
			return fmt.Errorf("loading stored corpus: %w", err)
		}
		if err := s.corpus.Replace(docs); err != nil {
			return fmt.Errorf("loading stored corpus: %w", err)
		}
		s.logger.Info("stored corpus loaded", "documents", len(docs))
	}

	if s.opts.CorpusDir != "" {
		builder := corpus.NewBuilder(s.extractor, s.opts.Workers)
		docs, err := builder.BuildFromDir(ctx, s.opts.CorpusDir, s.opts.Defaults, s.opts.Extensions...)
		if err != nil {
			return err
		}
		added := 0
		for _, doc := range docs {
			err := s.insert(ctx, doc)
			if errors.Is(err, apperrors.ErrDocumentExists) {
				continue
			}
			s.recordIngest(SourceDir, err)
			if err != nil {
				return fmt.Errorf("adding %s: %w", doc.Name, err)
			}
			added++
		}
		s.logger.Info("corpus directory loaded", "dir", s.opts.CorpusDir, "files", len(docs), "added", added)
	}
	s.updateCorpusGauge()
	return nil
}
