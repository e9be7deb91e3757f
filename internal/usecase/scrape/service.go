// Package scrape stores submitted content batches and classifies each item.
// Batches are keyed by a generated identifier so concurrent submissions
// never clobber each other; a pointer tracks the most recent batch for the
// index-based inspection endpoints.
package scrape

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/veldt-labs/modex/internal/domain"
)

const contentType = "webpage content"

// Batch is one submission with its classification results. Items that
// failed to classify appear in Items but not in Results.
type Batch struct {
	ID         string
	ReceivedAt time.Time
	Items      []domain.ScrapedItem
	Results    []domain.ItemResult
}

// Receipt summarizes an accepted submission.
type Receipt struct {
	BatchID        string
	TotalItems     int
	ProcessedItems int
}

// Service holds submitted batches in process memory.
type Service struct {
	labeler Labeler
	logger  *zap.Logger

	mu       sync.RWMutex
	batches  map[string]*Batch
	latestID string
}

// New creates a scrape service.
func New(labeler Labeler, logger *zap.Logger) *Service {
	return &Service{
		labeler: labeler,
		logger:  logger,
		batches: make(map[string]*Batch),
	}
}

// Submit stores the items as a new batch and classifies each one. A failed
// item is logged and skipped; it never aborts the rest of the batch.
func (s *Service) Submit(ctx context.Context, items []domain.ScrapedItem) (Receipt, error) {
	batch := &Batch{
		ID:         uuid.NewString(),
		ReceivedAt: time.Now().UTC(),
		Items:      items,
		Results:    make([]domain.ItemResult, 0, len(items)),
	}

	for i := range items {
		label, err := s.labeler.Classify(ctx, items[i].Text, contentType)
		if err != nil {
			s.logger.Warn("Skipping failed batch item",
				zap.String("batch_id", batch.ID),
				zap.Int("item", i),
				zap.String("url", items[i].URL),
				zap.Error(err),
			)
			continue
		}
		batch.Results = append(batch.Results, domain.ItemResult{
			URL:   items[i].URL,
			Text:  items[i].Text,
			Label: label,
		})
	}

	s.mu.Lock()
	s.batches[batch.ID] = batch
	s.latestID = batch.ID
	s.mu.Unlock()

	return Receipt{
		BatchID:        batch.ID,
		TotalItems:     len(items),
		ProcessedItems: len(batch.Results),
	}, nil
}

// Latest returns the most recently submitted batch.
func (s *Service) Latest() (Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.batchLocked(s.latestID)
}

// Get returns a batch by its identifier.
func (s *Service) Get(id string) (Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.batchLocked(id)
}

// Item returns one item of the latest batch by zero-based index.
func (s *Service) Item(index int) (domain.ScrapedItem, error) {
	batch, err := s.Latest()
	if err != nil {
		return domain.ScrapedItem{}, err
	}
	if index < 0 || index >= len(batch.Items) {
		return domain.ScrapedItem{}, domain.ErrNotFound
	}
	return batch.Items[index], nil
}

// Result returns one classification result of the latest batch by
// zero-based index.
func (s *Service) Result(index int) (domain.ItemResult, error) {
	batch, err := s.Latest()
	if err != nil {
		return domain.ItemResult{}, err
	}
	if index < 0 || index >= len(batch.Results) {
		return domain.ItemResult{}, domain.ErrNotFound
	}
	return batch.Results[index], nil
}

// batchLocked copies the batch so callers never share the stored slices.
func (s *Service) batchLocked(id string) (Batch, error) {
	b, ok := s.batches[id]
	if !ok {
		return Batch{}, domain.ErrNotFound
	}
	out := Batch{
		ID:         b.ID,
		ReceivedAt: b.ReceivedAt,
		Items:      make([]domain.ScrapedItem, len(b.Items)),
		Results:    make([]domain.ItemResult, len(b.Results)),
	}
	copy(out.Items, b.Items)
	copy(out.Results, b.Results)
	return out, nil
}
