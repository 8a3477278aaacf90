package driven

import (
	"context"

	"github.com/custodia-labs/aska-cli/internal/core/domain"
)

// Connector discovers and fetches documents for one corpus.
// Each connector type (filesystem, googledrive) implements this
// interface. Discovery is a full scan returning fingerprinted
// identities; the pipeline diffs them against the tracker and
// fetches only what changed.
type Connector interface {
	// Type returns the connector type identifier.
	Type() string

	// Corpus returns the corpus this connector feeds.
	Corpus() domain.Corpus

	// Capabilities returns what this connector supports.
	Capabilities() ConnectorCapabilities

	// Validate checks if the connector is properly configured and
	// authenticated. For API connectors this makes a test call; for
	// the filesystem it checks the root exists and is readable.
	Validate(ctx context.Context) error

	// Discover scans the corpus and returns every document with its
	// current fingerprint and declared category. The returned order
	// is the processing order.
	Discover(ctx context.Context) ([]domain.SourceDocument, error)

	// Fetch retrieves the raw content for one discovered document.
	// For cloud documents this may be an export rather than the
	// stored format; the RawDocument's MIMEType reflects what was
	// actually fetched.
	Fetch(ctx context.Context, doc domain.SourceDocument) (*domain.RawDocument, error)

	// Watch emits an event whenever the corpus content changes.
	// Only available if SupportsWatch is true.
	Watch(ctx context.Context) (<-chan ChangeEvent, error)

	// Close releases resources.
	Close() error
}

// ConnectorCapabilities describes what a connector supports.
type ConnectorCapabilities struct {
	// SupportsWatch indicates the connector can push change events.
	SupportsWatch bool

	// RequiresAuth indicates the connector needs credentials.
	// False for local connectors like filesystem.
	RequiresAuth bool

	// SupportsValidation indicates Validate() performs a real check.
	SupportsValidation bool

	// SupportsPagination indicates the connector pages through its
	// backing API internally; informational.
	SupportsPagination bool
}

// ChangeEvent signals that something in the corpus changed. The
// pipeline responds by re-running its (idempotent) diff, so the
// event only needs to say where the change happened.
type ChangeEvent struct {
	// URI is the location that changed.
	URI string
}
