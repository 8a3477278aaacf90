// Package jsonfile persists ingestion records as one JSON file per
// corpus under the data directory (ingested_local.json,
// ingested_drive.json). Every commit rewrites the whole file through
// a temp-then-rename, so a crash can never leave a half-written
// tracker behind.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/custodia-labs/aska-cli/internal/core/domain"
	"github.com/custodia-labs/aska-cli/internal/core/ports/driven"
)

// Ensure Tracker implements the interface.
var _ driven.IngestionTracker = (*Tracker)(nil)

// Tracker is a file-backed ingestion tracker for one corpus.
type Tracker struct {
	mu      sync.Mutex
	corpus  domain.Corpus
	path    string
	records map[string]domain.IngestionRecord
}

// recordDTO is the on-disk form of an ingestion record. The JSON
// keys are part of the tracker file contract.
type recordDTO struct {
	SourceID    string    `json:"source_id"`
	Title       string    `json:"title"`
	Fingerprint string    `json:"fingerprint"`
	Category    string    `json:"category"`
	ProcessedAt time.Time `json:"processed_at"`
	ChunkCount  int       `json:"chunk_count"`
	ChunkIDs    []string  `json:"chunk_ids"`
}

// NewTracker creates a tracker whose file lives in dir under the
// corpus's tracker file name. The directory is created if missing.
func NewTracker(dir string, corpus domain.Corpus) (*Tracker, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("%w: create tracker directory: %w", domain.ErrTracker, err)
	}
	return &Tracker{
		corpus:  corpus,
		path:    filepath.Join(dir, corpus.TrackerFile()),
		records: make(map[string]domain.IngestionRecord),
	}, nil
}

// Corpus returns the corpus this tracker belongs to.
func (t *Tracker) Corpus() domain.Corpus {
	return t.corpus
}

// Path returns the tracker file path.
func (t *Tracker) Path() string {
	return t.path
}

// Load reads the persisted mapping of source id to record. A missing
// file is an empty mapping; an unreadable or corrupt one is an
// ErrTracker the caller degrades from. Either way the in-memory
// state is reset first, so a later Commit rewrites a consistent file
// instead of resurrecting stale entries.
func (t *Tracker) Load(_ context.Context) (map[string]domain.IngestionRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.records = make(map[string]domain.IngestionRecord)

	data, err := os.ReadFile(t.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]domain.IngestionRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrTracker, t.path, err)
	}

	var stored map[string]recordDTO
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", domain.ErrTracker, t.path, err)
	}

	out := make(map[string]domain.IngestionRecord, len(stored))
	for id, dto := range stored {
		record := domain.IngestionRecord{
			SourceID:    dto.SourceID,
			Title:       dto.Title,
			Fingerprint: dto.Fingerprint,
			Category:    domain.SourceCategory(dto.Category),
			ProcessedAt: dto.ProcessedAt,
			ChunkCount:  dto.ChunkCount,
			ChunkIDs:    dto.ChunkIDs,
		}
		if record.SourceID == "" {
			record.SourceID = id
		}
		t.records[id] = record
		out[id] = record
	}
	return out, nil
}

// Commit updates the mapping with the record and rewrites the whole
// file atomically. A persist failure is ErrTracker and leaves the
// previous file intact.
func (t *Tracker) Commit(_ context.Context, record domain.IngestionRecord) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.records == nil {
		t.records = make(map[string]domain.IngestionRecord)
	}
	t.records[record.SourceID] = record
	return t.persistLocked()
}

// persistLocked writes the full mapping via temp-then-rename.
// Callers hold the mutex.
func (t *Tracker) persistLocked() error {
	stored := make(map[string]recordDTO, len(t.records))
	for id, record := range t.records {
		stored[id] = recordDTO{
			SourceID:    record.SourceID,
			Title:       record.Title,
			Fingerprint: record.Fingerprint,
			Category:    string(record.Category),
			ProcessedAt: record.ProcessedAt,
			ChunkCount:  record.ChunkCount,
			ChunkIDs:    record.ChunkIDs,
		}
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode tracker: %w", domain.ErrTracker, err)
	}

	tmp := t.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("%w: write %s: %w", domain.ErrTracker, tmp, err)
	}
	if err := os.Rename(tmp, t.path); err != nil {
		return fmt.Errorf("%w: commit %s: %w", domain.ErrTracker, t.path, err)
	}
	return nil
}
