// Package chi exposes the classification pipeline and the scraped-content
// inspection endpoints over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/veldt-labs/modex/internal/domain"
	healthuc "github.com/veldt-labs/modex/internal/usecase/health"
	scrapeuc "github.com/veldt-labs/modex/internal/usecase/scrape"
)

const maxBatchSize = 100

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Labeler is the single-text classification entrypoint.
type Labeler interface {
	Classify(ctx context.Context, text, contentType string) (domain.Label, error)
}

// Server handles the HTTP API.
type Server struct {
	classify      Labeler
	scrapes       *scrapeuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	classify Labeler,
	scrapes *scrapeuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		classify: classify,
		scrapes:  scrapes,
		health:   health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEmptyText, http.StatusBadRequest, codeEmptyText),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrUnrecognizedLabel, http.StatusBadGateway, codeUnrecognizedLabel),
		sentinelHandler(domain.ErrClassifierUnavailable, http.StatusBadGateway, codeClassifierError),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingError),
	}
	return s
}

// Register mounts all routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Get("/readyz", s.handleReadyz)

	r.Post("/classify", s.handleClassify)

	r.Post("/scrape", s.handleScrape)
	r.Get("/view-scrapes", s.handleViewScrapes)
	r.Get("/view-scrape/{index}", s.handleViewScrape)

	r.Get("/results", s.handleResults)
	r.Get("/results/{index}", s.handleResult)

	r.Get("/batches/{batchID}", s.handleBatch)
	r.Get("/batches/{batchID}/results", s.handleBatchResults)
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"api": "modex content classification API is running"})
}

// handleHealth is the liveness probe: static, no dependency checks.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "running"})
}

// handleReadyz checks the database, the index barrier and the embedding
// provider; a degraded report answers 503.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// handleClassify handles POST /classify.
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	label, err := s.classify.Classify(r.Context(), req.Text, req.ContentType)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, classifyResponse{
		Text:            req.Text,
		ProcessedResult: string(label),
	})
}

// handleScrape handles POST /scrape.
func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Content) == 0 {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Content must not be empty")
		return
	}
	if len(req.Content) > maxBatchSize {
		writeError(w, http.StatusBadRequest, codeBadRequest,
			"Batch exceeds maximum of "+strconv.Itoa(maxBatchSize)+" items")
		return
	}

	items := make([]domain.ScrapedItem, len(req.Content))
	for i, dto := range req.Content {
		items[i] = itemToDomain(dto)
	}

	receipt, err := s.scrapes.Submit(r.Context(), items)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, scrapeResponse{
		Message:        "Content received successfully",
		BatchID:        receipt.BatchID,
		TotalItems:     receipt.TotalItems,
		ProcessedItems: receipt.ProcessedItems,
	})
}

// handleViewScrapes handles GET /view-scrapes: previews of the latest batch.
func (s *Server) handleViewScrapes(w http.ResponseWriter, _ *http.Request) {
	batch, err := s.scrapes.Latest()
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusOK, map[string]string{"message": "No scraped content available"})
			return
		}
		s.handleDomainError(w, err)
		return
	}

	contents := make([]scrapePreview, len(batch.Items))
	for i, item := range batch.Items {
		contents[i] = itemToPreview(item)
	}
	writeJSON(w, http.StatusOK, scrapeListResponse{
		BatchID:    batch.ID,
		TotalItems: len(batch.Items),
		Contents:   contents,
	})
}

// handleViewScrape handles GET /view-scrape/{index}.
func (s *Server) handleViewScrape(w http.ResponseWriter, r *http.Request) {
	index, ok := s.parseIndex(w, r)
	if !ok {
		return
	}

	item, err := s.scrapes.Item(index)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, itemToDetail(item))
}

// handleResults handles GET /results: classification results of the latest batch.
func (s *Server) handleResults(w http.ResponseWriter, _ *http.Request) {
	batch, err := s.scrapes.Latest()
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusOK, map[string]string{"message": "No results available"})
			return
		}
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, batchToResults(batch))
}

// handleResult handles GET /results/{index}.
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	index, ok := s.parseIndex(w, r)
	if !ok {
		return
	}

	result, err := s.scrapes.Result(index)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultToDTO(result))
}

// handleBatch handles GET /batches/{batchID}.
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	batch, err := s.scrapes.Get(chi.URLParam(r, "batchID"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, batchToDetail(batch))
}

// handleBatchResults handles GET /batches/{batchID}/results.
func (s *Server) handleBatchResults(w http.ResponseWriter, r *http.Request) {
	batch, err := s.scrapes.Get(chi.URLParam(r, "batchID"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, batchToResults(batch))
}

func (s *Server) parseIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "index")
	index, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid index: "+raw)
		return 0, false
	}
	return index, true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns the sentinel text for known errors and a generic
// message otherwise, so internal details never leak to clients.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrEmptyText,
		domain.ErrNotFound,
		domain.ErrUnrecognizedLabel,
		domain.ErrClassifierUnavailable,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}
