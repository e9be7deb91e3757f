// Package indexer populates the example index from the corpus exactly once
// per corpus revision.
package indexer

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/veldt-labs/modex/internal/corpus"
	"github.com/veldt-labs/modex/internal/domain"
)

// Service synchronizes the corpus into the vector index at startup.
type Service struct {
	repo   Repository
	embed  Embedder
	source Source
	logger *zap.Logger
	ready  atomic.Bool
}

// New creates an indexer service.
func New(repo Repository, embed Embedder, source Source, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		embed:  embed,
		source: source,
		logger: logger,
	}
}

// Sync brings the index in line with the corpus. An index already holding
// this corpus revision (matching fingerprint and count) is left untouched
// and no embedding calls are made. Any other state clears the stored
// examples and re-embeds the full corpus.
func (s *Service) Sync(ctx context.Context) error {
	examples, err := s.source.Load()
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}
	fp := corpus.Fingerprint(examples)

	if err := s.repo.EnsureIndex(ctx); err != nil {
		return fmt.Errorf("ensure index: %w", err)
	}

	populated, err := s.isCurrent(ctx, fp, len(examples))
	if err != nil {
		return err
	}
	if populated {
		s.logger.Info("Example index is current, skipping populate",
			zap.Int("examples", len(examples)),
		)
		s.ready.Store(true)
		return nil
	}

	vectors, err := s.embedAll(ctx, examples)
	if err != nil {
		return err
	}

	// Writes are upserts, so stale rows must go first or a shrunk corpus
	// would keep serving examples that no longer exist.
	if err := s.repo.Clear(ctx); err != nil {
		return fmt.Errorf("clear stale examples: %w", err)
	}
	if err := s.repo.BulkAdd(ctx, examples, vectors); err != nil {
		return fmt.Errorf("populate index: %w", err)
	}
	if err := s.repo.SetFingerprint(ctx, fp); err != nil {
		return fmt.Errorf("record fingerprint: %w", err)
	}

	s.logger.Info("Example index populated",
		zap.Int("examples", len(examples)),
		zap.String("fingerprint", fp[:12]),
	)
	s.ready.Store(true)
	return nil
}

// Ready reports whether Sync has completed. Readiness gates classification
// traffic so queries never run against a half-built index.
func (s *Service) Ready() bool {
	return s.ready.Load()
}

func (s *Service) isCurrent(ctx context.Context, fp string, want int) (bool, error) {
	stored, err := s.repo.Fingerprint(ctx)
	if err != nil {
		return false, fmt.Errorf("read fingerprint: %w", err)
	}
	if stored != fp {
		return false, nil
	}

	count, err := s.repo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count examples: %w", err)
	}
	return count == want, nil
}

func (s *Service) embedAll(ctx context.Context, examples []domain.Example) ([][]float32, error) {
	vectors := make([][]float32, 0, len(examples))
	for i := range examples {
		result, err := s.embed.Embed(ctx, examples[i].Text)
		if err != nil {
			return nil, fmt.Errorf("embed example %s: %w", examples[i].ID, err)
		}
		vectors = append(vectors, result.Embedding)
	}
	return vectors, nil
}
