// Package metrics defines the Prometheus metric collectors used by the
// service and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors of the service, registered on
// their own registry.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	ExtractionsTotal     *prometheus.CounterVec
	ExtractionDuration   *prometheus.HistogramVec
	BowEntries           *prometheus.HistogramVec
	ScoresTotal          *prometheus.CounterVec
	ScoreDuration        prometheus.Histogram
	ScoreMatches         prometheus.Histogram
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
	CorpusDocuments      prometheus.Gauge
	IngestedTotal        *prometheus.CounterVec
}

// New creates all collectors and registers them, together with the Go and
// process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		ExtractionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bow_extractions_total",
				Help: "Bag-of-words extractions by mode and outcome (ok, empty_input, invalid_parameter, io_failure).",
			},
			[]string{"mode", "outcome"},
		),
		ExtractionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bow_extraction_duration_seconds",
				Help:    "Bag-of-words extraction latency in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"mode"},
		),
		BowEntries: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bow_entries",
				Help:    "Number of entries per extracted bag of words.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 500},
			},
			[]string{"mode"},
		),
		ScoresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "similarity_scores_total",
				Help: "Similarity scoring calls by outcome.",
			},
			[]string{"outcome"},
		),
		ScoreDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "similarity_score_duration_seconds",
				Help:    "Similarity scoring latency in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
		),
		ScoreMatches: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "similarity_matches",
				Help:    "Number of references with non-zero overlap per scoring call.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "bow_cache_hits_total",
				Help: "Total number of bag-of-words cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "bow_cache_misses_total",
				Help: "Total number of bag-of-words cache misses.",
			},
		),
		CorpusDocuments: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "corpus_documents",
				Help: "Number of reference documents in the corpus.",
			},
		),
		IngestedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corpus_ingested_total",
				Help: "Reference documents ingested by source (http, kafka, dir) and status.",
			},
			[]string{"source", "status"},
		),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.ExtractionsTotal,
		m.ExtractionDuration,
		m.BowEntries,
		m.ScoresTotal,
		m.ScoreDuration,
		m.ScoreMatches,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.CorpusDocuments,
		m.IngestedTotal,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler for m's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
