package domain

import (
	"context"
	"fmt"
)

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the
// decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// DimCheckedEmbedder is a domain decorator that enforces the configured
// vector dimension on every embedding. A mismatch is a hard error for the
// call; vectors are never padded or truncated.
type DimCheckedEmbedder struct {
	inner Embedder
	dim   int
}

// NewDimCheckedEmbedder creates a dimension-enforcing decorator.
func NewDimCheckedEmbedder(inner Embedder, dim int) *DimCheckedEmbedder {
	return &DimCheckedEmbedder{inner: inner, dim: dim}
}

// Embed delegates to the inner embedder and validates the vector length.
func (e *DimCheckedEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	result, err := e.inner.Embed(ctx, text)
	if err != nil {
		return EmbeddingResult{}, err
	}
	if e.dim > 0 && len(result.Embedding) != e.dim {
		return EmbeddingResult{}, fmt.Errorf(
			"got %d dimensions, want %d: %w", len(result.Embedding), e.dim, ErrDimensionMismatch,
		)
	}
	return result, nil
}
