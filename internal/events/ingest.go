package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/internal/bow"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/internal/corpus"
	apperrors "github.com/Adithya-Monish-Kumar-K/lexical-similarity/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/pkg/logger"
)

// DocumentAdder adds an extracted reference document to the corpus.
type DocumentAdder interface {
	AddDocument(ctx context.Context, name, text string, params *bow.Params) (corpus.Document, error)
}

// IngestHandler returns a consumer callback that adds every ingest message
// to the corpus. Messages that can never succeed (malformed, empty,
// duplicate name) are skipped so the consumer commits past them; other
// failures leave the message uncommitted for redelivery.
func IngestHandler(adder DocumentAdder) kafka.MessageHandler {
	log := slog.Default().With("component", "corpus-ingest")
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[IngestEvent](value)
		if err != nil {
			return fmt.Errorf("%w: %w", kafka.ErrSkip, err)
		}
		if event.Name == "" {
			event.Name = string(key)
		}
		if event.Name == "" {
			return fmt.Errorf("%w: ingest message without a document name", kafka.ErrSkip)
		}

		doc, err := adder.AddDocument(ctx, event.Name, event.Text, event.Params)
		switch {
		case err == nil:
		case apperrors.IsDiagnostic(err), errors.Is(err, apperrors.ErrDocumentExists):
			logger.Diagnostic(log, "ingest message rejected", err, "name", event.Name)
			return fmt.Errorf("%w: %w", kafka.ErrSkip, err)
		default:
			return err
		}
		log.Info("document ingested", "id", doc.ID, "name", doc.Name, "entries", doc.BoW.Len())
		return nil
	}
}
