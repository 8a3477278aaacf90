// Package filesystem implements the local corpus connector. It walks
// a configured root directory, fingerprints files by modification
// time, and pushes change notifications through fsnotify for watch
// mode.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/aska-cli/internal/core/domain"
	"github.com/custodia-labs/aska-cli/internal/core/ports/driven"
	"github.com/custodia-labs/aska-cli/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// watchBuffer bounds the change event channel. The pipeline drains
// pending events before every run, so dropping under burst is safe.
const watchBuffer = 16

// Connector discovers and fetches documents under a root directory.
type Connector struct {
	root   string
	ignore []string

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	closed  bool
}

// New creates a filesystem connector rooted at root. Files and
// directories whose base name matches any of the ignore globs are
// skipped, as are hidden entries.
func New(root string, ignore []string) *Connector {
	return &Connector{root: root, ignore: ignore}
}

// Type returns the connector type identifier.
func (c *Connector) Type() string {
	return "filesystem"
}

// Corpus returns the corpus this connector feeds.
func (c *Connector) Corpus() domain.Corpus {
	return domain.CorpusLocal
}

// Capabilities returns what this connector supports.
func (c *Connector) Capabilities() driven.ConnectorCapabilities {
	return driven.ConnectorCapabilities{
		SupportsWatch:      true,
		RequiresAuth:       false,
		SupportsValidation: true,
		SupportsPagination: false,
	}
}

// Validate checks that the root exists and is a readable directory.
func (c *Connector) Validate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.root == "" {
		return fmt.Errorf("%w: local corpus root is not configured", domain.ErrConfig)
	}

	info, err := os.Stat(c.root)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: root path %s does not exist", domain.ErrConfig, c.root)
		}
		return fmt.Errorf("%w: root path error: %w", domain.ErrConfig, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: root path %s is not a directory", domain.ErrConfig, c.root)
	}
	return nil
}

// Discover walks the root and returns every supported document with
// its current fingerprint. WalkDir visits entries in lexical order,
// so the processing order is deterministic.
func (c *Connector) Discover(ctx context.Context) ([]domain.SourceDocument, error) {
	if err := c.Validate(ctx); err != nil {
		return nil, err
	}

	var docs []domain.SourceDocument
	err := filepath.WalkDir(c.root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		name := d.Name()
		if d.IsDir() {
			if path != c.root && c.skip(name) {
				return filepath.SkipDir
			}
			return nil
		}
		if c.skip(name) {
			return nil
		}

		mimeType, category, ok := classify(name)
		if !ok {
			logger.Debug("Skipping unsupported file %s", path)
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}

		docs = append(docs, domain.SourceDocument{
			ID:          path,
			Corpus:      domain.CorpusLocal,
			URI:         path,
			Title:       name,
			Category:    category,
			MIMEType:    mimeType,
			Fingerprint: info.ModTime().UTC().Format(time.RFC3339Nano),
			Metadata: map[string]string{
				"filename":  name,
				"extension": strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), "."),
			},
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", c.root, err)
	}
	return docs, nil
}

// Fetch reads the raw bytes of one discovered document.
func (c *Connector) Fetch(ctx context.Context, doc domain.SourceDocument) (*domain.RawDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", doc.ID, err)
	}

	return &domain.RawDocument{
		SourceID: doc.ID,
		URI:      doc.URI,
		MIMEType: doc.MIMEType,
		Content:  content,
	}, nil
}

// Watch emits a change event whenever a supported file under the
// root is created, written, renamed or removed. New subdirectories
// are picked up as they appear; the channel closes when ctx ends.
func (c *Connector) Watch(ctx context.Context) (<-chan driven.ChangeEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, fmt.Errorf("connector is closed")
	}

	if err := c.Validate(ctx); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	// Watch the root and every visible subdirectory. fsnotify
	// watches are not recursive.
	err = filepath.WalkDir(c.root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() {
			return nil
		}
		if path != c.root && c.skip(d.Name()) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", c.root, err)
	}

	c.watcher = watcher
	events := make(chan driven.ChangeEvent, watchBuffer)

	go c.forwardEvents(ctx, watcher, events)

	return events, nil
}

// forwardEvents translates fsnotify events into change events until
// the context ends or the watcher is closed.
func (c *Connector) forwardEvents(ctx context.Context, watcher *fsnotify.Watcher, events chan<- driven.ChangeEvent) {
	defer close(events)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !c.relevant(event) {
				continue
			}
			select {
			case events <- driven.ChangeEvent{URI: event.Name}:
			default:
				// Buffer full; the pending events already force a re-run.
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// relevant reports whether an fsnotify event concerns a supported
// document. Directory creations are invisible to the pipeline but
// extend the watch so files inside them are seen.
func (c *Connector) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}

	name := filepath.Base(event.Name)
	if c.skip(name) {
		return false
	}

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			c.mu.Lock()
			if c.watcher != nil {
				if err := c.watcher.Add(event.Name); err != nil {
					logger.Warn("Cannot watch new directory %s: %v", event.Name, err)
				}
			}
			c.mu.Unlock()
			return false
		}
	}

	_, _, supported := classify(name)
	return supported
}

// Close releases the watcher. Close is idempotent.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.watcher != nil {
		err := c.watcher.Close()
		c.watcher = nil
		return err
	}
	return nil
}

// skip reports whether a base name is hidden or matches an ignore glob.
func (c *Connector) skip(name string) bool {
	if isHidden(name) {
		return true
	}
	for _, pattern := range c.ignore {
		if matched, err := filepath.Match(pattern, name); err == nil && matched {
			return true
		}
	}
	return false
}

// isHidden reports whether a base name is a hidden entry. The
// current and parent directory names are not hidden.
func isHidden(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return strings.HasPrefix(name, ".")
}

// classify maps a file name to the MIME type and category ingestion
// understands. Unsupported extensions are skipped at discovery so
// they never surface as extraction failures.
func classify(name string) (mimeType string, category domain.SourceCategory, ok bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt":
		return "text/plain", domain.CategoryProse, true
	case ".md", ".markdown":
		return "text/markdown", domain.CategoryProse, true
	case ".pdf":
		return "application/pdf", domain.CategoryProse, true
	case ".csv":
		return "text/csv", domain.CategoryTabular, true
	default:
		return "", domain.CategoryUnknown, false
	}
}
