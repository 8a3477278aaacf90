// Package chromem implements the vector index on chromem-go, an
// embedded vector database persisted under a single directory. It is
// the default backend.
package chromem

import (
	"context"
	"errors"
	"fmt"

	chromem "github.com/philippgille/chromem-go"

	"github.com/custodia-labs/aska-cli/internal/core/domain"
	"github.com/custodia-labs/aska-cli/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// Config holds configuration for the chromem index.
type Config struct {
	// Path is the directory the database persists under.
	Path string

	// Compress gzips persisted documents.
	Compress bool
}

// VectorIndex stores chunk vectors in a persistent chromem database,
// one collection per corpus.
type VectorIndex struct {
	db          *chromem.DB
	collections map[domain.Corpus]*chromem.Collection
}

// New opens (or creates) the database at cfg.Path and ensures one
// collection per corpus exists.
func New(cfg Config) (*VectorIndex, error) {
	db, err := chromem.NewPersistentDB(cfg.Path, cfg.Compress)
	if err != nil {
		return nil, fmt.Errorf("%w: open chromem db at %s: %w", domain.ErrStore, cfg.Path, err)
	}

	corpora := domain.AllCorpora()
	collections := make(map[domain.Corpus]*chromem.Collection, len(corpora))
	for _, corpus := range corpora {
		col, err := db.GetOrCreateCollection(corpus.Collection(), nil, rejectEmbedding)
		if err != nil {
			return nil, fmt.Errorf("%w: create collection %s: %w", domain.ErrStore, corpus.Collection(), err)
		}
		collections[corpus] = col
	}

	return &VectorIndex{db: db, collections: collections}, nil
}

// rejectEmbedding is wired in as the collection embedding function.
// Every document arrives with a precomputed vector and queries come
// in as vectors, so chromem must never embed on its own.
func rejectEmbedding(context.Context, string) ([]float32, error) {
	return nil, errors.New("chromem index asked to embed text; vectors are precomputed")
}

// Upsert writes the chunks into the corpus collection. chromem
// replaces documents by id, so re-ingesting a source overwrites its
// previous chunks in place.
func (v *VectorIndex) Upsert(ctx context.Context, corpus domain.Corpus, chunks []domain.Chunk) error {
	col, err := v.collection(corpus)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	docs := make([]chromem.Document, 0, len(chunks))
	for _, chunk := range chunks {
		docs = append(docs, chromem.Document{
			ID:        chunk.ID,
			Content:   chunk.Text,
			Embedding: chunk.Embedding,
			Metadata:  domain.EncodeMeta(chunk.Meta),
		})
	}

	// The pipeline writes one source at a time; no concurrency.
	if err := col.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("%w: upsert %d chunks into %s: %w", domain.ErrStore, len(docs), corpus.Collection(), err)
	}
	return nil
}

// Query returns up to k candidates ordered by similarity descending.
// An empty collection yields an empty slice, never an error.
func (v *VectorIndex) Query(
	ctx context.Context, corpus domain.Corpus, vector []float32, k int, filter map[string]string,
) ([]domain.Candidate, error) {
	col, err := v.collection(corpus)
	if err != nil {
		return nil, err
	}

	// chromem rejects nResults beyond the collection size.
	if n := col.Count(); k > n {
		k = n
	}
	if k <= 0 {
		return nil, nil
	}

	results, err := col.QueryEmbedding(ctx, vector, k, filter, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: query %s: %w", domain.ErrStore, corpus.Collection(), err)
	}

	candidates := make([]domain.Candidate, 0, len(results))
	for _, res := range results {
		candidates = append(candidates, domain.Candidate{
			ID:         res.ID,
			Text:       res.Content,
			Embedding:  res.Embedding,
			Meta:       domain.DecodeMeta(res.Metadata),
			Similarity: float64(res.Similarity),
		})
	}
	return candidates, nil
}

// Count returns the number of chunks in the corpus collection.
func (v *VectorIndex) Count(_ context.Context, corpus domain.Corpus) (int, error) {
	col, err := v.collection(corpus)
	if err != nil {
		return 0, err
	}
	return col.Count(), nil
}

// Close releases resources. chromem persists on every write, so
// there is nothing to flush.
func (v *VectorIndex) Close() error {
	return nil
}

func (v *VectorIndex) collection(corpus domain.Corpus) (*chromem.Collection, error) {
	col, ok := v.collections[corpus]
	if !ok {
		return nil, fmt.Errorf("%w: no collection for corpus %q", domain.ErrStore, corpus)
	}
	return col, nil
}
