// Package retrieve finds the nearest labeled examples for a query text.
// Vector mode embeds the query and runs KNN search; fuzzy mode string-matches
// against the raw corpus and carries no labels.
package retrieve

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/veldt-labs/modex/internal/domain"
)

// Retrieval modes.
const (
	ModeVector = "vector"
	ModeFuzzy  = "fuzzy"
)

// Service retrieves labeled examples similar to a query text.
type Service struct {
	repo   Repository
	embed  Embedder
	source Source
	mode   string
	topK   int
	cutoff float64
	logger *zap.Logger
}

// Config holds retrieval settings.
type Config struct {
	Mode        string
	TopK        int
	FuzzyCutoff float64
}

// New creates a retrieval service.
func New(repo Repository, embed Embedder, source Source, cfg Config, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		embed:  embed,
		source: source,
		mode:   cfg.Mode,
		topK:   cfg.TopK,
		cutoff: cfg.FuzzyCutoff,
		logger: logger,
	}
}

// Mode returns the configured retrieval mode.
func (s *Service) Mode() string { return s.mode }

// Retrieve returns up to k similar examples, best first. k <= 0 falls back
// to the configured top-k. An empty corpus or zero hits yields an empty
// slice, not an error.
func (s *Service) Retrieve(ctx context.Context, query string, k int) ([]domain.Retrieved, error) {
	if k <= 0 {
		k = s.topK
	}

	if s.mode == ModeFuzzy {
		return s.retrieveFuzzy(query, k)
	}
	return s.retrieveVector(ctx, query, k)
}

func (s *Service) retrieveVector(ctx context.Context, query string, k int) ([]domain.Retrieved, error) {
	embResult, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	hits, err := s.repo.Query(ctx, embResult.Embedding, k)
	if err != nil {
		return nil, fmt.Errorf("knn search: %w", err)
	}
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// retrieveFuzzy matches against raw corpus texts. The hits carry text only;
// downstream prompt building must tolerate the missing labels.
func (s *Service) retrieveFuzzy(query string, k int) ([]domain.Retrieved, error) {
	examples, err := s.source.Load()
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}

	texts := make([]string, len(examples))
	for i := range examples {
		texts[i] = examples[i].Text
	}

	matched := closeMatches(query, texts, k, s.cutoff)
	if len(matched) == 0 {
		s.logger.Debug("No fuzzy matches above cutoff",
			zap.Float64("cutoff", s.cutoff),
			zap.Int("corpus", len(texts)),
		)
	}

	hits := make([]domain.Retrieved, 0, len(matched))
	for _, text := range matched {
		hits = append(hits, domain.Retrieved{Text: text})
	}
	return hits, nil
}
