// Package memory provides an in-memory ingestion tracker for tests
// and throwaway runs.
package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/aska-cli/internal/core/domain"
	"github.com/custodia-labs/aska-cli/internal/core/ports/driven"
)

// Ensure Tracker implements the interface.
var _ driven.IngestionTracker = (*Tracker)(nil)

// Tracker is an in-memory implementation of driven.IngestionTracker.
type Tracker struct {
	mu      sync.RWMutex
	corpus  domain.Corpus
	records map[string]domain.IngestionRecord
}

// NewTracker creates a new in-memory tracker for the corpus.
func NewTracker(corpus domain.Corpus) *Tracker {
	return &Tracker{
		corpus:  corpus,
		records: make(map[string]domain.IngestionRecord),
	}
}

// Corpus returns the corpus this tracker belongs to.
func (t *Tracker) Corpus() domain.Corpus {
	return t.corpus
}

// Load returns a copy of the current mapping.
func (t *Tracker) Load(_ context.Context) (map[string]domain.IngestionRecord, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]domain.IngestionRecord, len(t.records))
	for id, rec := range t.records {
		out[id] = rec
	}
	return out, nil
}

// Commit stores the record.
func (t *Tracker) Commit(_ context.Context, record domain.IngestionRecord) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records[record.SourceID] = record
	return nil
}
