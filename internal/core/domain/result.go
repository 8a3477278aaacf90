package domain

import "time"

// Candidate is a raw nearest-neighbour hit returned by the vector
// index, before reranking. Similarity follows the one convention
// used end-to-end: higher = more similar.
type Candidate struct {
	// ID is the chunk id.
	ID string

	// Text is the stored chunk text.
	Text string

	// Embedding is the stored vector, needed to recompute the base
	// similarity during reranking.
	Embedding []float32

	// Meta is the typed chunk metadata.
	Meta ChunkMeta

	// Similarity is the backend-reported cosine similarity.
	Similarity float64
}

// RetrievalResult is one reranked query hit. It is ephemeral and
// never persisted.
type RetrievalResult struct {
	// Text is the chunk text.
	Text string

	// Meta is the typed chunk metadata.
	Meta ChunkMeta

	// BaseScore is the unboosted cosine similarity to the query.
	BaseScore float64

	// FinalScore is BaseScore plus all applicable boosts. Result
	// lists are ordered by it, descending.
	FinalScore float64

	// LowConfidence is true iff BaseScore fell below the configured
	// threshold. Boosts never mask a weak match.
	LowConfidence bool
}

// Answer is what the ask service hands to the CLI, TUI, and MCP
// surfaces for one question.
type Answer struct {
	// Question is the original user question.
	Question string

	// Text is the generated answer, or a fallback when generation
	// failed or nothing relevant was found.
	Text string

	// Grounded is true when Text was generated from retrieved
	// context rather than being a fallback.
	Grounded bool

	// LowConfidence mirrors the top result's confidence flag.
	LowConfidence bool

	// Results holds the reranked hits that grounded the answer,
	// best first.
	Results []RetrievalResult
}

// SourceFailure records one source the pipeline had to skip.
type SourceFailure struct {
	// SourceID is the identity of the skipped source.
	SourceID string

	// Stage names the pipeline stage that failed
	// (fetch, extract, chunk, embed, store).
	Stage string

	// Reason is the failure description.
	Reason string
}

// IngestReport summarises one ingestion run over a corpus.
type IngestReport struct {
	// RunID uniquely identifies the run in logs.
	RunID string

	// Corpus is the corpus this run covered.
	Corpus Corpus

	// Discovered is the number of sources found by the scan.
	Discovered int

	// Unchanged is the number skipped because their fingerprint
	// matched the tracked one.
	Unchanged int

	// Ingested is the number successfully (re)processed.
	Ingested int

	// ChunksIndexed is the total chunks written across all sources.
	ChunksIndexed int

	// Failures lists every skipped source with stage and reason.
	Failures []SourceFailure

	// Duration is the wall-clock time of the run.
	Duration time.Duration
}

// CorpusStats summarises the indexed state of one corpus.
type CorpusStats struct {
	// Corpus is the corpus described.
	Corpus Corpus

	// Sources is the number of tracked sources.
	Sources int

	// Chunks is the number of chunks in the vector collection.
	Chunks int
}
