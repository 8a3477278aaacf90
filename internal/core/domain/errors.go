package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
//
// The four taxonomy sentinels (ErrConfig, ErrProvider, ErrStore,
// ErrTracker) classify every external failure the pipeline can meet;
// callers wrap them with %w and branch with errors.Is to decide what
// is recoverable.
var (
	// ErrConfig indicates invalid configuration, such as a chunk
	// overlap that is not smaller than the window. Always fatal at
	// startup; values are never silently adjusted.
	ErrConfig = errors.New("invalid configuration")

	// ErrProvider indicates an embedding or answer-generation call
	// failed. During ingestion the current source is skipped; during
	// a query it surfaces to the user without ending the session.
	ErrProvider = errors.New("provider failure")

	// ErrStore indicates a vector store read or write failed.
	// At query time it degrades to ErrNoResults.
	ErrStore = errors.New("vector store failure")

	// ErrTracker indicates tracker persistence failed. Fatal on
	// persist; a failed load degrades to an empty mapping instead.
	ErrTracker = errors.New("tracker failure")

	// ErrNoResults indicates a query matched nothing. It is the
	// explicit "no results" signal, never an exceptional condition.
	ErrNoResults = errors.New("no results")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates no extractor is registered for a
	// document's MIME type. The source is skipped, not failed.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrAuthRequired indicates a connector needs credentials that
	// are missing or expired. Wrapped into ErrProvider by callers
	// that only care about the taxonomy.
	ErrAuthRequired = errors.New("authentication required")
)
