package retrieve

import (
	"context"

	"github.com/veldt-labs/modex/internal/domain"
)

// Repository defines the index contract for KNN retrieval.
type Repository interface {
	Query(ctx context.Context, vector []float32, k int) ([]domain.Retrieved, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Source produces the labeled example corpus (fuzzy mode matches against
// its raw texts).
type Source interface {
	Load() ([]domain.Example, error)
}
