// Package events publishes similarity outcomes to Kafka and turns corpus
// ingestion messages into reference documents.
package events

import (
	"time"

	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/internal/bow"
)

type EventType string

const (
	EventScored   EventType = "similarity_scored"
	EventIngested EventType = "document_ingested"
)

// SimilarityEvent describes one scoring request.
type SimilarityEvent struct {
	Type         EventType `json:"type"`
	RequestID    string    `json:"request_id,omitempty"`
	Mode         bow.Mode  `json:"mode"`
	InputEntries int       `json:"input_entries"`
	CorpusSize   int       `json:"corpus_size"`
	Matches      int       `json:"matches"`
	TopDocument  string    `json:"top_document,omitempty"`
	TopScore     int       `json:"top_score"`
	Outcome      string    `json:"outcome"`
	CacheHit     bool      `json:"cache_hit"`
	LatencyMs    int64     `json:"latency_ms"`
	Timestamp    time.Time `json:"timestamp"`
}

// IngestEvent is the payload of a corpus.ingest message. A nil Params
// uses the service defaults.
type IngestEvent struct {
	Name   string      `json:"name"`
	Text   string      `json:"text"`
	Params *bow.Params `json:"params,omitempty"`
}
