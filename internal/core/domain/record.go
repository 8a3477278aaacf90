package domain

import "time"

// IngestionRecord is the durable per-source state written after a
// fully successful ingestion of that source. It is never written for
// a partial or failed attempt, so its fingerprint always reflects
// content that actually made it into the index.
type IngestionRecord struct {
	// SourceID is the identity of the ingested source.
	SourceID string

	// Title is the source's human-readable title at ingestion time.
	Title string

	// Fingerprint is the content version that was ingested.
	Fingerprint string

	// Category is the declared source category.
	Category SourceCategory

	// ProcessedAt is when ingestion of this source completed.
	ProcessedAt time.Time

	// ChunkCount is the number of chunks written to the index.
	ChunkCount int

	// ChunkIDs lists the ids of every chunk written.
	ChunkIDs []string
}

// Diff returns the discovered sources that need (re)processing: a
// source qualifies iff it is absent from tracked or its fingerprint
// differs from the tracked one. Order follows the discovery order.
func Diff(tracked map[string]IngestionRecord, discovered []SourceDocument) []SourceDocument {
	var need []SourceDocument
	for _, doc := range discovered {
		rec, ok := tracked[doc.ID]
		if !ok || rec.Fingerprint != doc.Fingerprint {
			need = append(need, doc)
		}
	}
	return need
}
