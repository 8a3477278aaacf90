package driving

import (
	"context"

	"github.com/custodia-labs/aska-cli/internal/core/domain"
)

// IngestService runs the incremental ingestion pipeline.
type IngestService interface {
	// Ingest runs one pipeline pass over the given corpus:
	// discover, diff against the tracker, then per changed source
	// fetch, extract, chunk, embed, store, track. One source's
	// failure never aborts the run; the report lists every skip.
	Ingest(ctx context.Context, corpus domain.Corpus) (*domain.IngestReport, error)

	// IngestAll runs Ingest for every enabled corpus in order and
	// returns their reports. A corpus-level failure (for example an
	// unreachable provider) is reported and the next corpus still
	// runs, except for tracker persist failures, which abort.
	IngestAll(ctx context.Context) ([]*domain.IngestReport, error)

	// Watch blocks, re-running Ingest for the corpus whenever its
	// connector signals a change. Events arriving during a run are
	// coalesced into one follow-up run. Returns when ctx is done or
	// the connector cannot watch.
	Watch(ctx context.Context, corpus domain.Corpus) error
}
