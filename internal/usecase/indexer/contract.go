package indexer

import (
	"context"

	"github.com/veldt-labs/modex/internal/domain"
)

// Repository defines the storage contract for the example index.
type Repository interface {
	EnsureIndex(ctx context.Context) error
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
	BulkAdd(ctx context.Context, exs []domain.Example, vectors [][]float32) error
	Fingerprint(ctx context.Context) (string, error)
	SetFingerprint(ctx context.Context, fp string) error
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Source produces the labeled example corpus.
type Source interface {
	Load() ([]domain.Example, error)
}
