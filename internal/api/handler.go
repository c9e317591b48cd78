package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/internal/service"
	apperrors "github.com/Adithya-Monish-Kumar-K/lexical-similarity/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/pkg/logger"
)

const maxBodyBytes = 2*maxTextLength + 64<<10

type Handler struct {
	svc        *service.Service
	allowFiles bool
	logger     *slog.Logger
}

// New creates a Handler. allowFiles enables the "file" source, which reads
// files on the server.
func New(svc *service.Service, allowFiles bool) *Handler {
	return &Handler{
		svc:        svc,
		allowFiles: allowFiles,
		logger:     slog.Default().With("component", "similarity-handler"),
	}
}

// Register adds the API routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/bow", h.Extract)
	mux.HandleFunc("POST /api/v1/similarity", h.Similarity)
	mux.HandleFunc("POST /api/v1/corpus/documents", h.AddDocument)
	mux.HandleFunc("GET /api/v1/corpus/documents", h.ListDocuments)
	mux.HandleFunc("DELETE /api/v1/corpus/documents/{id}", h.RemoveDocument)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
}

func (h *Handler) Extract(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if !h.decode(w, r, &req) {
		return
	}
	if !h.validate(w, ValidateExtractRequest(&req, h.allowFiles)) {
		return
	}
	params := req.resolve(h.svc.Defaults())
	ex, err := h.svc.Extract(r.Context(), req.source(), req.Text, &params)
	if err != nil && !apperrors.IsDiagnostic(err) {
		h.fail(w, r, "extraction failed", err)
		return
	}
	logger.Diagnostic(logger.FromContext(r.Context()), "extraction diagnostic", err, "mode", params.Mode)
	h.writeJSON(w, http.StatusOK, ExtractResponse{
		BoW:        ex.BoW,
		Params:     ex.Params,
		CacheHit:   ex.CacheHit,
		Diagnostic: diagnosticOf(err),
	})
}

func (h *Handler) Similarity(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req SimilarityRequest
	if !h.decode(w, r, &req) {
		return
	}
	if !h.validate(w, ValidateExtractRequest(&req.ExtractRequest, h.allowFiles)) {
		return
	}
	params := req.resolve(h.svc.Defaults())
	scored, err := h.svc.Similarity(r.Context(), req.source(), req.Text, &params, req.CaseSensitive)
	if err != nil && !apperrors.IsDiagnostic(err) {
		h.fail(w, r, "similarity failed", err)
		return
	}

	matches := make([]MatchView, 0, scored.Result.Len())
	for _, m := range scored.Result.Matches() {
		doc := scored.Documents[m.Index]
		matches = append(matches, MatchView{
			Index:      m.Index,
			DocumentID: doc.ID,
			Name:       doc.Name,
			Score:      m.Score,
		})
	}
	h.writeJSON(w, http.StatusOK, SimilarityResponse{
		Result:     scored.Result,
		Matches:    matches,
		Input:      scored.Input.BoW,
		CorpusSize: len(scored.Documents),
		TookMs:     time.Since(start).Milliseconds(),
		Diagnostic: diagnosticOf(err),
	})
}

func (h *Handler) AddDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req AddDocumentRequest
	if !h.decode(w, r, &req) {
		return
	}
	if !h.validate(w, ValidateAddDocumentRequest(&req, h.allowFiles)) {
		return
	}
	text, err := h.svc.Text(ctx, req.source(), req.Text)
	if err == nil {
		params := req.resolve(h.svc.Defaults())
		var doc corpus.Document
		if doc, err = h.svc.AddDocument(ctx, strings.TrimSpace(req.Name), text, &params); err == nil {
			h.writeJSON(w, http.StatusCreated, h.view(doc.ID))
			return
		}
	}
	if apperrors.IsDiagnostic(err) {
		h.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":      "document rejected",
			"diagnostic": diagnosticOf(err),
		})
		return
	}
	h.fail(w, r, "adding document failed", err)
}

func (h *Handler) view(id uuid.UUID) DocumentView {
	for i, doc := range h.svc.Documents() {
		if doc.ID == id {
			return documentView(i, doc)
		}
	}
	return DocumentView{ID: id, Index: -1}
}

func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs := h.svc.Documents()
	views := make([]DocumentView, len(docs))
	for i, doc := range docs {
		views[i] = documentView(i, doc)
	}
	h.writeJSON(w, http.StatusOK, DocumentsResponse{Documents: views, Count: len(views)})
}

func (h *Handler) RemoveDocument(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid document id")
		return
	}
	doc, err := h.svc.RemoveDocument(r.Context(), id)
	if err != nil {
		h.fail(w, r, "removing document failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status": "removed",
		"id":     doc.ID,
		"name":   doc.Name,
	})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	hits, misses, ok := h.svc.CacheStats()
	if !ok {
		h.writeJSON(w, http.StatusOK, map[string]any{"enabled": false})
		return
	}
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"enabled":  true,
		"hits":     hits,
		"misses":   misses,
		"hit_rate": hitRate,
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.InvalidateCache(r.Context()); err != nil {
		h.fail(w, r, "cache invalidation failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func (h *Handler) validate(w http.ResponseWriter, err error) bool {
	if err == nil {
		return true
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"fields": validationErr.Fields,
		})
		return false
	}
	h.writeError(w, http.StatusBadRequest, err.Error())
	return false
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	statusCode := apperrors.HTTPStatusCode(err)
	log := logger.FromContext(r.Context())
	if statusCode >= http.StatusInternalServerError {
		log.Error(msg, "error", err, "status_code", statusCode)
		h.writeError(w, statusCode, msg)
		return
	}
	log.Warn(msg, "error", err, "status_code", statusCode)
	h.writeError(w, statusCode, err.Error())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
