package driven

import (
	"context"

	"github.com/custodia-labs/aska-cli/internal/core/domain"
)

// Extractor turns raw document bytes into chunkable text.
// Each extractor handles specific MIME types (e.g., PDF, CSV).
type Extractor interface {
	// SupportedMIMETypes returns the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred)
	// when several extractors claim the same MIME type.
	// Format-specific extractors should return 50-89.
	// Fallback extractors should return 1-9.
	Priority() int

	// Extract produces the flattened text. Paginated formats return
	// one section per page; everything else returns a single section
	// with index zero. Extraction failure is a per-source skip
	// condition for the pipeline, never a run-level failure.
	Extract(ctx context.Context, raw *domain.RawDocument) (*domain.Extraction, error)
}

// ExtractorRegistry selects the right extractor for a document by
// its MIME type.
type ExtractorRegistry interface {
	// Register adds an extractor to the registry.
	Register(extractor Extractor)

	// Extract routes the raw document to the highest-priority
	// extractor claiming its MIME type. Returns ErrUnsupportedType
	// when no extractor claims it.
	Extract(ctx context.Context, raw *domain.RawDocument) (*domain.Extraction, error)
}
