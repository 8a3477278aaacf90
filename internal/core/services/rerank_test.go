package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/aska-cli/internal/core/domain"
)

func flatMeta(category domain.SourceCategory, ingestedAt time.Time) domain.ChunkMeta {
	return domain.FlatMeta{MetaBase: domain.MetaBase{
		SourceID:   "src-1",
		Category:   category,
		IngestedAt: ingestedAt,
	}}
}

func TestRecencyBoost(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	boost := RecencyBoost(7, 0.1)

	tests := []struct {
		name string
		age  time.Duration
		want float64
	}{
		{name: "fresh", age: 0, want: 0.1},
		{name: "half window", age: 3*24*time.Hour + 12*time.Hour, want: 0.05},
		{name: "at window edge", age: 7 * 24 * time.Hour, want: 0},
		{name: "beyond window", age: 10 * 24 * time.Hour, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := flatMeta(domain.CategoryProse, now.Add(-tt.age))
			assert.InDelta(t, tt.want, boost(meta, now), 1e-9)
		})
	}
}

func TestRecencyBoost_MissingTimestamp(t *testing.T) {
	boost := RecencyBoost(7, 0.1)
	meta := flatMeta(domain.CategoryProse, time.Time{})
	assert.Zero(t, boost(meta, time.Now()))
}

func TestRecencyBoost_FutureTimestamp(t *testing.T) {
	// Clock skew: treat a future ingestion time as age zero.
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	boost := RecencyBoost(7, 0.1)
	meta := flatMeta(domain.CategoryProse, now.Add(time.Hour))
	assert.InDelta(t, 0.1, boost(meta, now), 1e-9)
}

func TestTypeBoost(t *testing.T) {
	boost := TypeBoost(map[domain.SourceCategory]float64{
		domain.CategoryProse:   0.05,
		domain.CategoryTabular: 0.03,
	})
	now := time.Now()

	assert.InDelta(t, 0.05, boost(flatMeta(domain.CategoryProse, now), now), 1e-9)
	assert.InDelta(t, 0.03, boost(flatMeta(domain.CategoryTabular, now), now), 1e-9)
	assert.Zero(t, boost(flatMeta(domain.CategoryUnknown, now), now))
}

func TestReranker_Rerank_OrdersByFinalScore(t *testing.T) {
	reranker := NewReranker(domain.RetrievalSettings{
		TopK:              5,
		Threshold:         0.2,
		RecencyWindowDays: 7,
		RecencyMaxBoost:   0.1,
		TypeBoosts: map[domain.SourceCategory]float64{
			domain.CategoryProse: 0.05,
		},
	})

	now := time.Now()
	old := now.Add(-30 * 24 * time.Hour)
	query := []float32{1, 0, 0}

	// Second candidate has the higher base similarity but no boosts;
	// first is older prose ingested just now.
	candidates := []domain.Candidate{
		{ID: "a", Embedding: []float32{0.9, 0.4359, 0}, Meta: flatMeta(domain.CategoryProse, now)},
		{ID: "b", Embedding: []float32{1, 0, 0}, Meta: flatMeta(domain.CategoryUnknown, old)},
	}

	results := reranker.Rerank(query, candidates, now)
	require.Len(t, results, 2)

	// a: base 0.9 + 0.1 recency + 0.05 prose = 1.05; b: base 1.0.
	assert.InDelta(t, 1.05, results[0].FinalScore, 1e-3)
	assert.InDelta(t, 0.9, results[0].BaseScore, 1e-3)
	assert.InDelta(t, 1.0, results[1].FinalScore, 1e-9)
}

func TestReranker_Rerank_LowConfidenceFromUnboostedBase(t *testing.T) {
	reranker := NewReranker(domain.RetrievalSettings{
		Threshold:         0.2,
		RecencyWindowDays: 7,
		RecencyMaxBoost:   0.1,
		TypeBoosts: map[domain.SourceCategory]float64{
			domain.CategoryProse: 0.1,
		},
	})

	now := time.Now()
	query := []float32{1, 0}

	// Base 0.15 with +0.2 total boost: final clears the threshold,
	// the flag must not.
	candidates := []domain.Candidate{
		{ID: "weak", Embedding: []float32{0.15, 0.98869}, Meta: flatMeta(domain.CategoryProse, now)},
	}

	results := reranker.Rerank(query, candidates, now)
	require.Len(t, results, 1)

	assert.InDelta(t, 0.15, results[0].BaseScore, 1e-3)
	assert.InDelta(t, 0.35, results[0].FinalScore, 1e-3)
	assert.True(t, results[0].LowConfidence)
}

func TestReranker_Rerank_StableOnTies(t *testing.T) {
	reranker := NewReranker(domain.RetrievalSettings{Threshold: 0.2})
	now := time.Now()
	query := []float32{1, 0}

	// Identical vectors, identical scores: input order must survive.
	candidates := []domain.Candidate{
		{ID: "first", Text: "first", Embedding: []float32{1, 0}, Meta: flatMeta(domain.CategoryUnknown, time.Time{})},
		{ID: "second", Text: "second", Embedding: []float32{1, 0}, Meta: flatMeta(domain.CategoryUnknown, time.Time{})},
		{ID: "third", Text: "third", Embedding: []float32{1, 0}, Meta: flatMeta(domain.CategoryUnknown, time.Time{})},
	}

	results := reranker.Rerank(query, candidates, now)
	require.Len(t, results, 3)
	assert.Equal(t, "first", results[0].Text)
	assert.Equal(t, "second", results[1].Text)
	assert.Equal(t, "third", results[2].Text)
}

func TestReranker_Rerank_RecomputesBaseFromEmbedding(t *testing.T) {
	reranker := NewReranker(domain.RetrievalSettings{Threshold: 0.2})
	now := time.Now()
	query := []float32{1, 0}

	// A backend-reported similarity must not leak into the ranking.
	candidates := []domain.Candidate{
		{ID: "a", Text: "a", Embedding: []float32{0, 1}, Similarity: 0.99, Meta: flatMeta(domain.CategoryUnknown, time.Time{})},
		{ID: "b", Text: "b", Embedding: []float32{1, 0}, Similarity: 0.01, Meta: flatMeta(domain.CategoryUnknown, time.Time{})},
	}

	results := reranker.Rerank(query, candidates, now)
	require.Len(t, results, 2)
	assert.Equal(t, "b", results[0].Text)
	assert.InDelta(t, 1.0, results[0].BaseScore, 1e-9)
	assert.InDelta(t, 0.0, results[1].BaseScore, 1e-9)
}

func TestReranker_Rerank_Empty(t *testing.T) {
	reranker := NewReranker(domain.RetrievalSettings{Threshold: 0.2})
	results := reranker.Rerank([]float32{1, 0}, nil, time.Now())
	assert.Empty(t, results)
}
