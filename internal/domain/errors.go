package domain

import "errors"

// KeyPrefix namespaces every key this service writes to the database.
const KeyPrefix = "modex:"

var (
	// ErrNotFound signals a missing resource or an out-of-range index.
	ErrNotFound = errors.New("not found")
	// ErrMissingDataSource signals a configured corpus file that does not exist.
	ErrMissingDataSource = errors.New("missing data source")
	// ErrEmptyText signals an empty classification input.
	ErrEmptyText = errors.New("empty text")
	// ErrDimensionMismatch signals an embedding whose length differs from the
	// configured vector dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrClassifierUnavailable signals that the chat model could not be reached
	// or refused the request.
	ErrClassifierUnavailable = errors.New("classifier unavailable")
	// ErrUnrecognizedLabel signals a model response that maps to none of the
	// canonical labels.
	ErrUnrecognizedLabel = errors.New("unrecognized label")
)
