package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/aska-cli/internal/core/domain"
	"github.com/custodia-labs/aska-cli/internal/core/ports/driven"
	"github.com/custodia-labs/aska-cli/internal/logger"
)

// RetrievalEngine turns a question into raw index candidates. It
// owns the query-time half of the embedding contract: the question
// is embedded with the same model as the chunks, and every requested
// corpus collection is queried with the same vector.
type RetrievalEngine struct {
	vectorIndex      driven.VectorIndex
	embeddingService driven.EmbeddingService
	topK             int
}

// NewRetrievalEngine creates a retrieval engine. topK is the number
// of candidates fetched per corpus.
func NewRetrievalEngine(
	vectorIndex driven.VectorIndex,
	embeddingService driven.EmbeddingService,
	topK int,
) *RetrievalEngine {
	return &RetrievalEngine{
		vectorIndex:      vectorIndex,
		embeddingService: embeddingService,
		topK:             topK,
	}
}

// Retrieve embeds the question and gathers up to topK candidates
// from each corpus, returning the merged set together with the query
// vector so the reranker can recompute base scores. When nothing
// matches the merged set is signalled as domain.ErrNoResults, so
// callers branch with errors.Is instead of inspecting slice lengths.
// A blank question signals no results without touching the provider.
// An unreadable collection degrades to no results for that corpus
// rather than failing the question; an embedding failure is returned
// because without a query vector there is nothing to rank.
func (e *RetrievalEngine) Retrieve(
	ctx context.Context, question string, corpora []domain.Corpus,
) ([]domain.Candidate, []float32, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		logger.Debug("Empty question, skipping retrieval")
		return nil, nil, domain.ErrNoResults
	}

	logger.Debug("Generating question embedding...")
	vector, err := e.embeddingService.Embed(ctx, question)
	if err != nil {
		logger.Warn("Question embedding failed: %v", err)
		return nil, nil, fmt.Errorf("embed question: %w", err)
	}
	logger.Debug("Question embedding: %d dimensions", len(vector))

	// Settings validation rejects a non-positive TopK at startup.
	k := e.topK
	if k <= 0 {
		k = 5
	}

	var candidates []domain.Candidate
	for _, corpus := range corpora {
		hits, err := e.vectorIndex.Query(ctx, corpus, vector, k, nil)
		if err != nil {
			logger.Warn("Query on %s failed: %v (no results from this corpus)", corpus, err)
			continue
		}
		logger.Debug("Corpus %s: %d candidates", corpus, len(hits))
		candidates = append(candidates, hits...)
	}

	if len(candidates) == 0 {
		return nil, vector, domain.ErrNoResults
	}
	return candidates, vector, nil
}
