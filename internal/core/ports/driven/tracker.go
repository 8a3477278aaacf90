package driven

import (
	"context"

	"github.com/custodia-labs/aska-cli/internal/core/domain"
)

// IngestionTracker is the durable record of what has already been
// processed for one corpus. It makes ingestion idempotent and
// incremental: the pipeline diffs discovered sources against the
// loaded mapping and commits each source as it completes.
type IngestionTracker interface {
	// Corpus returns the corpus this tracker belongs to.
	Corpus() domain.Corpus

	// Load reads the persisted mapping of source id to record.
	// An error here is recoverable by policy: the pipeline warns and
	// starts from an empty mapping rather than failing the run.
	Load(ctx context.Context) (map[string]domain.IngestionRecord, error)

	// Commit updates the in-memory mapping with the record and
	// persists the entire mapping atomically (write-temp-then-rename
	// or equivalent). Called once per successfully completed source,
	// never batched until process exit, so a crash loses at most the
	// in-flight source. A persist error is ErrTracker and fatal for
	// the run: tracked state must never silently diverge from disk.
	Commit(ctx context.Context, record domain.IngestionRecord) error
}
