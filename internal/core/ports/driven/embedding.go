package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Note: This is separate from VectorIndex which stores and searches
// vectors. EmbeddingService generates vectors; VectorIndex stores them.
//
// The provider is treated as a single local, stateful service: the
// pipeline calls Embed once per chunk, strictly in order, and never
// concurrently.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	// An explicit error (including a malformed or empty response)
	// must never be converted into a zero vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size (e.g., 768).
	// This is a property of the model; a vector of any other size is
	// a configuration anomaly for the caller to surface.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request. Used at startup before committing to a run.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
