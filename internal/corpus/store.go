package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/internal/bow"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/migrations"
	apperrors "github.com/Adithya-Monish-Kumar-K/lexical-similarity/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/pkg/postgres"
)

// Repository persists corpus documents.
type Repository interface {
	Save(ctx context.Context, doc Document) error
	List(ctx context.Context) ([]Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

const uniqueViolation = pq.ErrorCode("23505")

// Store keeps corpus documents in PostgreSQL, ordered by insertion.
type Store struct {
	db     *postgres.Client
	logger *slog.Logger
}

func NewStore(db *postgres.Client) *Store {
	return &Store{
		db:     db,
		logger: slog.Default().With("component", "corpus-store"),
	}
}

// Migrate applies the embedded corpus schema.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.DB.ExecContext(ctx, migrations.Corpus); err != nil {
		return fmt.Errorf("applying corpus schema: %w", err)
	}
	return nil
}

func (s *Store) Save(ctx context.Context, doc Document) error {
	params, err := json.Marshal(doc.Params)
	if err != nil {
		return fmt.Errorf("marshaling params: %w", err)
	}
	bag, err := json.Marshal(doc.BoW)
	if err != nil {
		return fmt.Errorf("marshaling bag of words: %w", err)
	}
	_, err = s.db.DB.ExecContext(ctx,
		`INSERT INTO corpus_documents (id, name, params, bow, created_at) VALUES ($1, $2, $3, $4, $5)`,
		doc.ID, doc.Name, string(params), string(bag), doc.CreatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return apperrors.Newf(apperrors.ErrDocumentExists, http.StatusConflict, "document %q already stored", doc.Name)
	}
	if err != nil {
		return fmt.Errorf("saving document %s: %w", doc.Name, err)
	}
	s.logger.Info("document saved", "id", doc.ID, "name", doc.Name, "entries", doc.BoW.Len())
	return nil
}

func (s *Store) List(ctx context.Context) ([]Document, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT id, name, params, bow, created_at FROM corpus_documents ORDER BY seq`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var (
			doc    Document
			params []byte
			bag    []byte
		)
		if err := rows.Scan(&doc.ID, &doc.Name, &params, &bag, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		if err := json.Unmarshal(params, &doc.Params); err != nil {
			return nil, fmt.Errorf("decoding params of %s: %w", doc.Name, err)
		}
		doc.BoW = bow.New()
		if err := json.Unmarshal(bag, doc.BoW); err != nil {
			return nil, fmt.Errorf("decoding bag of words of %s: %w", doc.Name, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.DB.ExecContext(ctx, `DELETE FROM corpus_documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting document %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting document %s: %w", id, err)
	}
	if n == 0 {
		return apperrors.Newf(apperrors.ErrDocumentNotFound, http.StatusNotFound, "document %s not stored", id)
	}
	return nil
}

var _ Repository = (*Store)(nil)

