// Package memory provides an in-memory vector index. Nothing
// survives process exit; it backs tests and throwaway runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/aska-cli/internal/core/domain"
	"github.com/custodia-labs/aska-cli/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is an in-memory implementation of driven.VectorIndex.
// Chunks are kept in insertion order per corpus so equal-similarity
// queries return deterministic candidate order.
type VectorIndex struct {
	mu    sync.RWMutex
	items map[domain.Corpus][]domain.Chunk
	byID  map[domain.Corpus]map[string]int
}

// NewVectorIndex creates a new in-memory vector index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{
		items: make(map[domain.Corpus][]domain.Chunk),
		byID:  make(map[domain.Corpus]map[string]int),
	}
}

// Upsert writes the chunks into the corpus collection, replacing any
// existing entry with the same id in place.
func (v *VectorIndex) Upsert(_ context.Context, corpus domain.Corpus, chunks []domain.Chunk) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	ids, ok := v.byID[corpus]
	if !ok {
		ids = make(map[string]int)
		v.byID[corpus] = ids
	}

	for _, chunk := range chunks {
		if pos, exists := ids[chunk.ID]; exists {
			v.items[corpus][pos] = chunk
			continue
		}
		ids[chunk.ID] = len(v.items[corpus])
		v.items[corpus] = append(v.items[corpus], chunk)
	}
	return nil
}

// Query returns up to k candidates ordered by cosine similarity
// descending. An empty collection yields an empty slice, never an
// error.
func (v *VectorIndex) Query(
	_ context.Context, corpus domain.Corpus, vector []float32, k int, filter map[string]string,
) ([]domain.Candidate, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	candidates := make([]domain.Candidate, 0, k)
	for _, chunk := range v.items[corpus] {
		if !matchesFilter(chunk.Meta, filter) {
			continue
		}
		candidates = append(candidates, domain.Candidate{
			ID:         chunk.ID,
			Text:       chunk.Text,
			Embedding:  chunk.Embedding,
			Meta:       chunk.Meta,
			Similarity: domain.CosineSimilarity(vector, chunk.Embedding),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})
	if k >= 0 && len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates, nil
}

// Count returns the number of chunks in the corpus collection.
func (v *VectorIndex) Count(_ context.Context, corpus domain.Corpus) (int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.items[corpus]), nil
}

// Close releases resources.
func (v *VectorIndex) Close() error {
	return nil
}

// matchesFilter checks the chunk's flattened metadata against every
// filter key.
func matchesFilter(meta domain.ChunkMeta, filter map[string]string) bool {
	if len(filter) == 0 {
		return true
	}
	encoded := domain.EncodeMeta(meta)
	for key, want := range filter {
		if encoded[key] != want {
			return false
		}
	}
	return true
}
