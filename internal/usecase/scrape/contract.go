package scrape

import (
	"context"

	"github.com/veldt-labs/modex/internal/domain"
)

// Labeler classifies a single text.
type Labeler interface {
	Classify(ctx context.Context, text, contentType string) (domain.Label, error)
}
