// Package sqlite implements the vector index on a single SQLite
// database file.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite
// implementation that requires no CGO, enabling easy
// cross-compilation. Embeddings are stored as little-endian float32
// blobs and queries run a brute-force cosine scan over the corpus,
// which is exact and entirely adequate at personal-corpus scale.
//
// The schema is managed through versioned migrations embedded from
// the migrations/ directory.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/aska-cli/internal/adapters/driven/index/sqlite/migrations"
	"github.com/custodia-labs/aska-cli/internal/core/domain"
	"github.com/custodia-labs/aska-cli/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex stores chunk vectors in SQLite, all corpora in one
// table keyed by corpus name.
type VectorIndex struct {
	db   *sql.DB
	path string
}

// New creates a SQLite index under the given directory. The database
// file is named index.db.
func New(dir string) (*VectorIndex, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: sqlite index directory is empty", domain.ErrConfig)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("%w: create index directory: %w", domain.ErrStore, err)
	}

	dbPath := filepath.Join(dir, "index.db")

	// WAL mode keeps reads cheap while the pipeline writes.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %w", domain.ErrStore, err)
	}

	v := &VectorIndex{db: db, path: dbPath}
	if err := v.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: run migrations: %w", domain.ErrStore, err)
	}

	return v, nil
}

// Path returns the database file path.
func (v *VectorIndex) Path() string {
	return v.path
}

// migrate runs all pending migrations.
func (v *VectorIndex) migrate(fsys embed.FS) error {
	_, err := v.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := v.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}
		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := v.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := v.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// Upsert writes the chunks into the corpus in one transaction,
// replacing rows whose id already exists.
func (v *VectorIndex) Upsert(ctx context.Context, corpus domain.Corpus, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := v.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %w", domain.ErrStore, err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, corpus, source_id, content, position, embedding, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			corpus = excluded.corpus,
			source_id = excluded.source_id,
			content = excluded.content,
			position = excluded.position,
			embedding = excluded.embedding,
			metadata = excluded.metadata
	`)
	if err != nil {
		return fmt.Errorf("%w: prepare statement: %w", domain.ErrStore, err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		metadataJSON, err := json.Marshal(domain.EncodeMeta(chunk.Meta))
		if err != nil {
			return fmt.Errorf("%w: marshal chunk metadata: %w", domain.ErrStore, err)
		}

		if _, err := stmt.ExecContext(ctx, chunk.ID, string(corpus), chunk.SourceID, chunk.Text,
			chunk.Position, float32SliceToBytes(chunk.Embedding), string(metadataJSON)); err != nil {
			return fmt.Errorf("%w: save chunk %s: %w", domain.ErrStore, chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit transaction: %w", domain.ErrStore, err)
	}
	return nil
}

// Query scans every chunk in the corpus, scores it against the query
// vector, and returns the top k by cosine similarity. An empty
// corpus yields an empty slice, never an error.
func (v *VectorIndex) Query(
	ctx context.Context, corpus domain.Corpus, vector []float32, k int, filter map[string]string,
) ([]domain.Candidate, error) {
	if k <= 0 {
		return nil, nil
	}

	rows, err := v.db.QueryContext(ctx, `
		SELECT id, content, embedding, metadata
		FROM chunks WHERE corpus = ?
	`, string(corpus))
	if err != nil {
		return nil, fmt.Errorf("%w: query corpus %s: %w", domain.ErrStore, corpus, err)
	}
	defer rows.Close()

	var candidates []domain.Candidate //nolint:prealloc // size unknown from query
	for rows.Next() {
		var (
			id, content  string
			blob         []byte
			metadataJSON string
		)
		if err := rows.Scan(&id, &content, &blob, &metadataJSON); err != nil {
			return nil, fmt.Errorf("%w: scan chunk: %w", domain.ErrStore, err)
		}

		var encoded map[string]string
		if err := json.Unmarshal([]byte(metadataJSON), &encoded); err != nil {
			return nil, fmt.Errorf("%w: unmarshal chunk metadata: %w", domain.ErrStore, err)
		}
		if !matchesFilter(encoded, filter) {
			continue
		}

		embedding := bytesToFloat32Slice(blob)
		candidates = append(candidates, domain.Candidate{
			ID:         id,
			Text:       content,
			Embedding:  embedding,
			Meta:       domain.DecodeMeta(encoded),
			Similarity: domain.CosineSimilarity(vector, embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate chunks: %w", domain.ErrStore, err)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates, nil
}

// Count returns the number of chunks in the corpus.
func (v *VectorIndex) Count(ctx context.Context, corpus domain.Corpus) (int, error) {
	var count int
	err := v.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chunks WHERE corpus = ?", string(corpus)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: count corpus %s: %w", domain.ErrStore, corpus, err)
	}
	return count, nil
}

// Close closes the database connection.
func (v *VectorIndex) Close() error {
	return v.db.Close()
}

// matchesFilter checks the stored metadata against every filter key.
func matchesFilter(encoded, filter map[string]string) bool {
	for key, want := range filter {
		if encoded[key] != want {
			return false
		}
	}
	return true
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
