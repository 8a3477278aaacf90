// Package domain defines the core business entities for Aska.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SourceDocument: A discovered document with identity and fingerprint
//   - Chunk: An overlapping word window, the atomic unit of retrieval
//   - IngestionRecord: Per-source state enabling incremental ingestion
//   - RetrievalResult: A reranked, confidence-flagged query hit
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
