package classify

import (
	"context"

	"github.com/veldt-labs/modex/internal/domain"
)

// Retriever fetches similar labeled examples for a query text.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]domain.Retrieved, error)
	Mode() string
}

// Classifier sends a prompt to the generative model and returns its
// free-form response.
type Classifier interface {
	Classify(ctx context.Context, prompt string) (string, error)
}
