package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/aska-cli/internal/chunker"
	"github.com/custodia-labs/aska-cli/internal/core/domain"
	"github.com/custodia-labs/aska-cli/internal/core/ports/driven"
	"github.com/custodia-labs/aska-cli/internal/core/ports/driving"
	"github.com/custodia-labs/aska-cli/internal/logger"
)

// Ensure IngestionPipeline implements the interface.
var _ driving.IngestService = (*IngestionPipeline)(nil)

// IngestionPipeline coordinates incremental document ingestion: one
// run discovers a corpus, diffs it against the tracker, and pushes
// every new or changed source through extract, chunk, embed, store
// and track, strictly one source at a time.
type IngestionPipeline struct {
	connectors map[domain.Corpus]driven.Connector
	trackers   map[domain.Corpus]driven.IngestionTracker
	extractors driven.ExtractorRegistry
	chunker    *chunker.Chunker
	embedding  driven.EmbeddingService
	index      driven.VectorIndex
	corpora    []domain.Corpus
}

// NewIngestionPipeline creates an ingestion pipeline over the given
// corpora. Each corpus needs a connector and a tracker; the
// extractor registry, chunker, embedding service and index are
// shared across corpora.
func NewIngestionPipeline(
	connectors map[domain.Corpus]driven.Connector,
	trackers map[domain.Corpus]driven.IngestionTracker,
	extractors driven.ExtractorRegistry,
	chunker *chunker.Chunker,
	embedding driven.EmbeddingService,
	index driven.VectorIndex,
	corpora []domain.Corpus,
) *IngestionPipeline {
	return &IngestionPipeline{
		connectors: connectors,
		trackers:   trackers,
		extractors: extractors,
		chunker:    chunker,
		embedding:  embedding,
		index:      index,
		corpora:    corpora,
	}
}

// Ingest runs one pipeline pass over the corpus. One source's
// failure is recorded in the report and never aborts the run; the
// two run-level failures are an unusable connector (discovery or
// validation) and a tracker persist error.
func (p *IngestionPipeline) Ingest(ctx context.Context, corpus domain.Corpus) (*domain.IngestReport, error) {
	start := time.Now()
	report := &domain.IngestReport{
		RunID:  uuid.New().String(),
		Corpus: corpus,
	}

	logger.Section("Ingestion Run")
	logger.Info("Run %s: corpus %s", report.RunID, corpus)

	connector, ok := p.connectors[corpus]
	if !ok {
		return nil, fmt.Errorf("%w: no connector configured for corpus %q", domain.ErrConfig, corpus)
	}
	tracker, ok := p.trackers[corpus]
	if !ok {
		return nil, fmt.Errorf("%w: no tracker configured for corpus %q", domain.ErrConfig, corpus)
	}

	if connector.Capabilities().SupportsValidation {
		if err := connector.Validate(ctx); err != nil {
			return nil, fmt.Errorf("validate %s connector: %w", connector.Type(), err)
		}
	}

	// A tracker that cannot be read degrades to an empty mapping:
	// everything is re-ingested, which is wasteful but correct.
	tracked, err := tracker.Load(ctx)
	if err != nil {
		logger.Warn("Tracker load failed for %s: %v (treating as empty)", corpus, err)
		tracked = map[string]domain.IngestionRecord{}
	}

	discovered, err := connector.Discover(ctx)
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", corpus, err)
	}
	report.Discovered = len(discovered)

	need := domain.Diff(tracked, discovered)
	report.Unchanged = len(discovered) - len(need)
	logger.Info("Discovered %d sources, %d unchanged, %d to process",
		report.Discovered, report.Unchanged, len(need))

	for _, doc := range need {
		select {
		case <-ctx.Done():
			report.Duration = time.Since(start)
			return report, ctx.Err()
		default:
		}

		logger.Debug("Processing: %s", doc.URI)
		if err := p.processOneSource(ctx, corpus, connector, tracker, doc, report); err != nil {
			// Only tracker persistence reaches here; anything else
			// was recorded as a per-source failure.
			report.Duration = time.Since(start)
			return report, err
		}
	}

	report.Duration = time.Since(start)
	logger.Info("Run %s complete: %d ingested, %d chunks, %d failures in %s",
		report.RunID, report.Ingested, report.ChunksIndexed, len(report.Failures),
		report.Duration.Round(time.Millisecond))
	return report, nil
}

// IngestAll runs Ingest for every configured corpus in order. A
// corpus-level failure is reported and the remaining corpora still
// run; a tracker persist failure aborts because tracked state can no
// longer be trusted.
func (p *IngestionPipeline) IngestAll(ctx context.Context) ([]*domain.IngestReport, error) {
	var reports []*domain.IngestReport
	var errs []error

	for _, corpus := range p.corpora {
		report, err := p.Ingest(ctx, corpus)
		if report != nil {
			reports = append(reports, report)
		}
		if err != nil {
			if errors.Is(err, domain.ErrTracker) || errors.Is(err, context.Canceled) {
				return reports, err
			}
			logger.Warn("Corpus %s failed: %v", corpus, err)
			errs = append(errs, fmt.Errorf("ingest %s: %w", corpus, err))
		}
	}

	if len(errs) > 0 {
		return reports, errors.Join(errs...)
	}
	return reports, nil
}

// Watch blocks and re-runs Ingest for the corpus whenever its
// connector signals a change. Events arriving while a run is in
// progress collapse into a single follow-up run, so a burst of saves
// costs one pass.
func (p *IngestionPipeline) Watch(ctx context.Context, corpus domain.Corpus) error {
	connector, ok := p.connectors[corpus]
	if !ok {
		return fmt.Errorf("%w: no connector configured for corpus %q", domain.ErrConfig, corpus)
	}
	if !connector.Capabilities().SupportsWatch {
		return fmt.Errorf("%w: %s connector does not support watching", domain.ErrInvalidInput, connector.Type())
	}

	events, err := connector.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch %s: %w", corpus, err)
	}

	logger.Info("Watching corpus %s for changes", corpus)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, open := <-events:
			if !open {
				return nil
			}
			logger.Debug("Change detected: %s", event.URI)

			// Drain whatever queued up while we were notified; the
			// run below picks up all of it via the fingerprint diff.
			for drained := true; drained; {
				select {
				case _, open := <-events:
					if !open {
						drained = false
					}
				default:
					drained = false
				}
			}

			if _, err := p.Ingest(ctx, corpus); err != nil {
				if errors.Is(err, domain.ErrTracker) || errors.Is(err, context.Canceled) {
					return err
				}
				logger.Warn("Watch-triggered run failed: %v", err)
			}
		}
	}
}

// processOneSource pushes one source through fetch, extract, chunk,
// embed, store, track. Every failure except a tracker persist is
// recorded in the report and returns nil so the run continues; the
// tracker is only written after the store write succeeds, so the
// record always reflects content that made it into the index.
func (p *IngestionPipeline) processOneSource(
	ctx context.Context,
	corpus domain.Corpus,
	connector driven.Connector,
	tracker driven.IngestionTracker,
	doc domain.SourceDocument,
	report *domain.IngestReport,
) error {
	skip := func(stage string, err error) {
		logger.Warn("Skipping %s at %s: %v", doc.ID, stage, err)
		report.Failures = append(report.Failures, domain.SourceFailure{
			SourceID: doc.ID,
			Stage:    stage,
			Reason:   err.Error(),
		})
	}

	// 1. FETCH raw content.
	raw, err := connector.Fetch(ctx, doc)
	if err != nil {
		skip("fetch", err)
		return nil
	}

	// 2. EXTRACT flattened text.
	extraction, err := p.extractors.Extract(ctx, raw)
	if err != nil {
		skip("extract", err)
		return nil
	}

	// 3. CHUNK into word windows, one pass per section.
	now := time.Now()
	chunks := p.buildChunks(doc, extraction, now)

	// 4. EMBED strictly in order. Any failure, including a vector of
	// the wrong size, abandons the source before anything is written,
	// so the store never sees a partially embedded batch.
	for i := range chunks {
		vector, err := p.embedding.Embed(ctx, chunks[i].Text)
		if err != nil {
			skip("embed", fmt.Errorf("chunk %s: %w", chunks[i].ID, err))
			return nil
		}
		if want := p.embedding.Dimensions(); len(vector) != want {
			skip("embed", fmt.Errorf("%w: chunk %s: got %d dimensions, expected %d",
				domain.ErrProvider, chunks[i].ID, len(vector), want))
			return nil
		}
		chunks[i].Embedding = vector
	}

	// 5. STORE the whole batch for this source.
	if len(chunks) > 0 {
		if err := p.index.Upsert(ctx, corpus, chunks); err != nil {
			skip("store", err)
			return nil
		}
	}

	// 6. TRACK. A persist failure is fatal for the run.
	chunkIDs := make([]string, len(chunks))
	for i := range chunks {
		chunkIDs[i] = chunks[i].ID
	}
	record := domain.IngestionRecord{
		SourceID:    doc.ID,
		Title:       doc.Title,
		Fingerprint: doc.Fingerprint,
		Category:    doc.Category,
		ProcessedAt: now,
		ChunkCount:  len(chunks),
		ChunkIDs:    chunkIDs,
	}
	if err := tracker.Commit(ctx, record); err != nil {
		return fmt.Errorf("commit %s: %w", doc.ID, err)
	}

	report.Ingested++
	report.ChunksIndexed += len(chunks)
	logger.Debug("Ingested %s: %d chunks", doc.ID, len(chunks))
	return nil
}

// buildChunks runs the chunker over every section and assembles
// chunks with their deterministic ids and typed metadata. Re-running
// it over identical content always yields identical ids.
func (p *IngestionPipeline) buildChunks(
	doc domain.SourceDocument, extraction *domain.Extraction, now time.Time,
) []domain.Chunk {
	title := extraction.Title
	if title == "" {
		title = doc.Title
	}

	var chunks []domain.Chunk
	for _, section := range extraction.Sections {
		for _, window := range p.chunker.Chunk(section.Text) {
			base := domain.MetaBase{
				SourceID:   doc.ID,
				Category:   doc.Category,
				Position:   window.Position,
				WordCount:  window.WordCount,
				IngestedAt: now,
				Title:      title,
				URI:        doc.URI,
			}

			var meta domain.ChunkMeta
			switch {
			case section.Index > 0:
				meta = domain.PaginatedMeta{MetaBase: base, Page: section.Index}
			case doc.Category == domain.CategoryTabular:
				meta = domain.TabularMeta{
					MetaBase: base,
					Sheet:    extraction.Sheet,
					Columns:  extraction.Columns,
				}
			default:
				meta = domain.FlatMeta{MetaBase: base}
			}

			chunks = append(chunks, domain.Chunk{
				ID:        domain.ChunkID(doc.ID, section.Index, window.Position),
				SourceID:  doc.ID,
				Text:      window.Text,
				Position:  window.Position,
				WordCount: window.WordCount,
				Meta:      meta,
			})
		}
	}
	return chunks
}
