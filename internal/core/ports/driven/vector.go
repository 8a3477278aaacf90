package driven

import (
	"context"

	"github.com/custodia-labs/aska-cli/internal/core/domain"
)

// VectorIndex stores chunk vectors and answers nearest-neighbour
// queries. One named collection exists per corpus; all collections
// use cosine space with one convention end-to-end: higher = more
// similar.
type VectorIndex interface {
	// Upsert writes the chunks (ids, vectors, texts, metadata) into
	// the corpus collection. Idempotent: re-upserting an existing id
	// replaces its content and is never an error.
	Upsert(ctx context.Context, corpus domain.Corpus, chunks []domain.Chunk) error

	// Query returns up to k candidates ordered by similarity
	// descending. An empty collection, or no entries matching the
	// filter, yields an empty slice and a nil error so callers treat
	// "empty" uniformly as "no results", never as a failure. The
	// filter matches stored metadata keys exactly.
	Query(ctx context.Context, corpus domain.Corpus, vector []float32, k int, filter map[string]string) ([]domain.Candidate, error)

	// Count returns the number of chunks in the corpus collection.
	Count(ctx context.Context, corpus domain.Corpus) (int, error)

	// Close releases resources.
	Close() error
}
