package services

import (
	"sort"
	"time"

	"github.com/custodia-labs/aska-cli/internal/core/domain"
)

// BoostFunc computes one additive score adjustment for a candidate
// from its metadata. Boosts apply on top of the base similarity and
// never affect the confidence flag.
type BoostFunc func(meta domain.ChunkMeta, now time.Time) float64

// RecencyBoost favours freshly ingested content: a chunk ingested
// just now receives maxBoost, decaying linearly to zero at
// windowDays. Chunks older than the window, or with an unknown
// ingestion time, receive nothing.
func RecencyBoost(windowDays int, maxBoost float64) BoostFunc {
	window := time.Duration(windowDays) * 24 * time.Hour
	return func(meta domain.ChunkMeta, now time.Time) float64 {
		ingested := meta.Base().IngestedAt
		if ingested.IsZero() || window <= 0 || maxBoost <= 0 {
			return 0
		}
		age := now.Sub(ingested)
		if age < 0 {
			age = 0
		}
		if age >= window {
			return 0
		}
		return maxBoost * (1 - float64(age)/float64(window))
	}
}

// TypeBoost favours categories from the configured table. Categories
// absent from the table contribute zero.
func TypeBoost(table map[domain.SourceCategory]float64) BoostFunc {
	return func(meta domain.ChunkMeta, _ time.Time) float64 {
		return table[meta.Base().Category]
	}
}

// Reranker rescores raw index candidates into a final ranking.
type Reranker struct {
	boosts    []BoostFunc
	threshold float64
}

// NewReranker builds a reranker from retrieval settings, wiring the
// recency and type boosts.
func NewReranker(settings domain.RetrievalSettings) *Reranker {
	return &Reranker{
		boosts: []BoostFunc{
			RecencyBoost(settings.RecencyWindowDays, settings.RecencyMaxBoost),
			TypeBoost(settings.TypeBoosts),
		},
		threshold: settings.Threshold,
	}
}

// Rerank recomputes each candidate's base similarity against the
// query vector, applies the boosts, and returns results ordered by
// final score descending. The base score is recomputed here rather
// than trusted from the backend so every index implementation ranks
// identically. Low confidence is judged on the unboosted base score
// only; a boosted weak match stays flagged. The sort is stable so
// equal-scoring candidates keep their index order.
func (r *Reranker) Rerank(query []float32, candidates []domain.Candidate, now time.Time) []domain.RetrievalResult {
	results := make([]domain.RetrievalResult, 0, len(candidates))
	for _, c := range candidates {
		base := domain.CosineSimilarity(query, c.Embedding)
		final := base
		for _, boost := range r.boosts {
			final += boost(c.Meta, now)
		}
		results = append(results, domain.RetrievalResult{
			Text:          c.Text,
			Meta:          c.Meta,
			BaseScore:     base,
			FinalScore:    final,
			LowConfidence: base < r.threshold,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore > results[j].FinalScore
	})

	return results
}
