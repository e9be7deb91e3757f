// Package examples stores labeled examples as Redis hashes behind an
// FT vector index and answers KNN queries over their embeddings.
package examples

import (
	"context"
	"errors"
	"fmt"

	"github.com/veldt-labs/modex/internal/db"
	"github.com/veldt-labs/modex/internal/domain"
)

// store is the consumer interface for the example index (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// HNSWConfig holds index build parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo implements the example index used by the indexer and retriever.
type Repo struct {
	store      store
	collection string
	dimensions int
	hnsw       HNSWConfig
}

// New creates an example repository bound to a named collection.
func New(s store, collection string, dimensions int, hnsw HNSWConfig) *Repo {
	return &Repo{
		store:      s,
		collection: collection,
		dimensions: dimensions,
		hnsw:       hnsw,
	}
}

// EnsureIndex creates the FT index if it does not exist yet.
// Safe to call on every startup.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	idxName := indexName(r.collection)

	exists, err := r.store.IndexExists(ctx, idxName)
	if err != nil {
		return fmt.Errorf("check index %s: %w", idxName, err)
	}
	if exists {
		return nil
	}

	def, err := db.NewIndex(idxName).
		Prefix(examplePrefix(r.collection)).
		Text(fieldDocument).
		Tag(fieldLabel).
		Tag(fieldCategory).
		VectorHNSW(fieldEmbedding, r.dimensions, db.DistanceCosine, r.hnsw.M, r.hnsw.EFConstruct).
		Build()
	if err != nil {
		return fmt.Errorf("build index definition %s: %w", idxName, err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", idxName, err)
	}
	return nil
}

// Count returns the number of indexed examples.
// A missing index counts as zero.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, indexName(r.collection), "*")
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("count examples: %w", err)
	}
	return n, nil
}

// BulkAdd writes examples with their embeddings in a single pipeline.
// examples and vectors must be the same length.
func (r *Repo) BulkAdd(ctx context.Context, exs []domain.Example, vectors [][]float32) error {
	if len(exs) != len(vectors) {
		return fmt.Errorf("examples/vectors length mismatch: %d != %d", len(exs), len(vectors))
	}
	if len(exs) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, 0, len(exs))
	for i := range exs {
		items = append(items, db.HashSetItem{
			Key:    exampleKey(r.collection, exs[i].ID),
			Fields: buildExampleFields(&exs[i], vectors[i]),
		})
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("bulk add %d examples: %w", len(items), err)
	}
	return nil
}

// Clear deletes every stored example. A repopulate must start from an
// empty collection; examples that left the corpus do not survive a re-sync.
func (r *Repo) Clear(ctx context.Context) error {
	keys, err := r.store.Scan(ctx, examplePrefix(r.collection)+"*")
	if err != nil {
		return fmt.Errorf("scan examples: %w", err)
	}
	for _, key := range keys {
		if err := r.store.Del(ctx, key); err != nil {
			return fmt.Errorf("delete example %s: %w", key, err)
		}
	}
	return nil
}

// Query returns up to k nearest examples for the given vector, ordered by
// non-decreasing distance.
func (r *Repo) Query(ctx context.Context, vector []float32, k int) ([]domain.Retrieved, error) {
	result, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    indexName(r.collection),
		Vector:       vector,
		K:            k,
		ReturnFields: []string{fieldDocument, fieldLabel, fieldCategory},
	})
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("knn query: %w", err)
	}

	retrieved := make([]domain.Retrieved, 0, len(result.Entries))
	for i := range result.Entries {
		retrieved = append(retrieved, entryToRetrieved(&result.Entries[i]))
	}
	return retrieved, nil
}

// Fingerprint returns the stored corpus fingerprint, or "" when none is set.
func (r *Repo) Fingerprint(ctx context.Context) (string, error) {
	data, err := r.store.Get(ctx, fingerprintKey(r.collection))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("get fingerprint: %w", err)
	}
	return string(data), nil
}

// SetFingerprint records the corpus fingerprint after a successful populate.
func (r *Repo) SetFingerprint(ctx context.Context, fp string) error {
	if err := r.store.Set(ctx, fingerprintKey(r.collection), []byte(fp)); err != nil {
		return fmt.Errorf("set fingerprint: %w", err)
	}
	return nil
}
