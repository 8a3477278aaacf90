package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/aska-cli/internal/core/domain"
	"github.com/custodia-labs/aska-cli/internal/core/ports/driven"
)

func TestNew(t *testing.T) {
	t.Run("creates connector with valid parameters", func(t *testing.T) {
		connector := New("/tmp/notes", []string{".*"})

		require.NotNil(t, connector)
		assert.Equal(t, "/tmp/notes", connector.root)
		assert.Equal(t, []string{".*"}, connector.ignore)
	})

	t.Run("implements Connector interface", func(t *testing.T) {
		connector := New("/tmp/notes", nil)
		var _ driven.Connector = connector
	})
}

func TestConnector_TypeAndCorpus(t *testing.T) {
	connector := New("/tmp/notes", nil)

	assert.Equal(t, "filesystem", connector.Type())
	assert.Equal(t, domain.CorpusLocal, connector.Corpus())
}

func TestConnector_Capabilities(t *testing.T) {
	connector := New("/tmp/notes", nil)

	caps := connector.Capabilities()

	assert.True(t, caps.SupportsWatch, "should support watch")
	assert.False(t, caps.RequiresAuth, "local files need no credentials")
	assert.True(t, caps.SupportsValidation, "should support validation")
	assert.False(t, caps.SupportsPagination)
}

func TestConnector_Validate(t *testing.T) {
	tests := []struct {
		name          string
		setup         func(t *testing.T) string
		expectError   bool
		errorContains string
	}{
		{
			name: "valid directory succeeds",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
			expectError: false,
		},
		{
			name: "empty root returns error",
			setup: func(*testing.T) string {
				return ""
			},
			expectError:   true,
			errorContains: "not configured",
		},
		{
			name: "non-existent path returns error",
			setup: func(*testing.T) string {
				return "/non/existent/path/12345"
			},
			expectError:   true,
			errorContains: "does not exist",
		},
		{
			name: "file instead of directory returns error",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				path := filepath.Join(dir, "file.txt")
				require.NoError(t, os.WriteFile(path, []byte("content"), 0644))
				return path
			},
			expectError:   true,
			errorContains: "not a directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			connector := New(tt.setup(t), nil)

			err := connector.Validate(context.Background())

			if tt.expectError {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrConfig))
				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}

	t.Run("context cancellation", func(t *testing.T) {
		connector := New(t.TempDir(), nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := connector.Validate(ctx)

		assert.Equal(t, context.Canceled, err)
	})
}

func TestConnector_Discover(t *testing.T) {
	t.Run("finds supported files with classification", func(t *testing.T) {
		dir := t.TempDir()
		files := map[string]struct {
			mime     string
			category domain.SourceCategory
		}{
			"notes.txt":  {"text/plain", domain.CategoryProse},
			"readme.md":  {"text/markdown", domain.CategoryProse},
			"report.pdf": {"application/pdf", domain.CategoryProse},
			"data.csv":   {"text/csv", domain.CategoryTabular},
		}
		for name := range files {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("content"), 0644))
		}

		connector := New(dir, nil)
		docs, err := connector.Discover(context.Background())

		require.NoError(t, err)
		require.Len(t, docs, len(files))
		for _, doc := range docs {
			want, ok := files[doc.Title]
			require.True(t, ok, "unexpected document %s", doc.Title)
			assert.Equal(t, want.mime, doc.MIMEType)
			assert.Equal(t, want.category, doc.Category)
			assert.Equal(t, domain.CorpusLocal, doc.Corpus)
			assert.Equal(t, filepath.Join(dir, doc.Title), doc.ID)
			assert.Equal(t, doc.ID, doc.URI)
		}
	})

	t.Run("skips unsupported extensions", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("keep"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "image.png"), []byte("skip"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("skip"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "noext"), []byte("skip"), 0644))

		connector := New(dir, nil)
		docs, err := connector.Discover(context.Background())

		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "notes.txt", docs[0].Title)
	})

	t.Run("skips hidden files and directories", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "visible.txt"), []byte("v"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.txt"), []byte("h"), 0644))
		hiddenDir := filepath.Join(dir, ".git")
		require.NoError(t, os.Mkdir(hiddenDir, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(hiddenDir, "config.txt"), []byte("h"), 0644))

		connector := New(dir, nil)
		docs, err := connector.Discover(context.Background())

		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "visible.txt", docs[0].Title)
	})

	t.Run("honours ignore globs", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.txt"), []byte("k"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "draft.bak.txt"), []byte("s"), 0644))
		ignoredDir := filepath.Join(dir, "archive")
		require.NoError(t, os.Mkdir(ignoredDir, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(ignoredDir, "old.txt"), []byte("s"), 0644))

		connector := New(dir, []string{"*.bak.txt", "archive"})
		docs, err := connector.Discover(context.Background())

		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "keep.txt", docs[0].Title)
	})

	t.Run("walks nested directories in lexical order", func(t *testing.T) {
		dir := t.TempDir()
		nested := filepath.Join(dir, "a", "b")
		require.NoError(t, os.MkdirAll(nested, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(nested, "deep.txt"), []byte("d"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "zz.txt"), []byte("z"), 0644))

		connector := New(dir, nil)
		docs, err := connector.Discover(context.Background())

		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "deep.txt", docs[0].Title, "lexical walk visits a/b before zz.txt")
		assert.Equal(t, "zz.txt", docs[1].Title)
	})

	t.Run("fingerprint is the modification time", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "notes.txt")
		require.NoError(t, os.WriteFile(path, []byte("v1"), 0644))

		connector := New(dir, nil)
		docs, err := connector.Discover(context.Background())
		require.NoError(t, err)
		require.Len(t, docs, 1)
		first := docs[0].Fingerprint

		parsed, err := time.Parse(time.RFC3339Nano, first)
		require.NoError(t, err)
		assert.False(t, parsed.IsZero())

		// Push the mtime forward; the fingerprint must change.
		later := parsed.Add(2 * time.Second)
		require.NoError(t, os.Chtimes(path, later, later))

		docs, err = connector.Discover(context.Background())
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.NotEqual(t, first, docs[0].Fingerprint)
	})

	t.Run("includes file metadata", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "Report.PDF"), []byte("p"), 0644))

		connector := New(dir, nil)
		docs, err := connector.Discover(context.Background())

		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "Report.PDF", docs[0].Metadata["filename"])
		assert.Equal(t, "pdf", docs[0].Metadata["extension"])
	})

	t.Run("empty directory yields no documents", func(t *testing.T) {
		connector := New(t.TempDir(), nil)

		docs, err := connector.Discover(context.Background())

		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("non-existent root returns error", func(t *testing.T) {
		connector := New("/non/existent/path", nil)

		_, err := connector.Discover(context.Background())

		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrConfig))
	})

	t.Run("cancelled context stops the walk", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("n"), 0644))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		connector := New(dir, nil)
		_, err := connector.Discover(ctx)

		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestConnector_Fetch(t *testing.T) {
	t.Run("reads file content", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "notes.txt")
		require.NoError(t, os.WriteFile(path, []byte("hello world"), 0644))

		connector := New(dir, nil)
		docs, err := connector.Discover(context.Background())
		require.NoError(t, err)
		require.Len(t, docs, 1)

		raw, err := connector.Fetch(context.Background(), docs[0])

		require.NoError(t, err)
		assert.Equal(t, path, raw.SourceID)
		assert.Equal(t, path, raw.URI)
		assert.Equal(t, "text/plain", raw.MIMEType)
		assert.Equal(t, []byte("hello world"), raw.Content)
	})

	t.Run("missing file returns error", func(t *testing.T) {
		connector := New(t.TempDir(), nil)
		doc := domain.SourceDocument{ID: "/non/existent/file.txt", URI: "/non/existent/file.txt"}

		_, err := connector.Fetch(context.Background(), doc)

		assert.Error(t, err)
	})

	t.Run("cancelled context returns early", func(t *testing.T) {
		connector := New(t.TempDir(), nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := connector.Fetch(ctx, domain.SourceDocument{ID: "any"})

		assert.Equal(t, context.Canceled, err)
	})
}

// waitForEvent reads events until one matching the wanted base name
// arrives or the timeout passes.
func waitForEvent(t *testing.T, events <-chan driven.ChangeEvent, want string, timeout time.Duration) {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case event, ok := <-events:
			if !ok {
				t.Fatalf("event channel closed before %s arrived", want)
			}
			if filepath.Base(event.URI) == want {
				return
			}
		case <-deadline:
			t.Fatalf("timeout waiting for change event on %s", want)
		}
	}
}

func TestConnector_Watch(t *testing.T) {
	t.Run("emits event on file creation", func(t *testing.T) {
		dir := t.TempDir()
		connector := New(dir, nil)
		defer connector.Close()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		events, err := connector.Watch(ctx)
		require.NoError(t, err)

		go func() {
			time.Sleep(50 * time.Millisecond)
			_ = os.WriteFile(filepath.Join(dir, "new-file.txt"), []byte("content"), 0644)
		}()

		waitForEvent(t, events, "new-file.txt", 2*time.Second)
	})

	t.Run("emits event on file modification", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "notes.txt")
		require.NoError(t, os.WriteFile(path, []byte("initial"), 0644))

		connector := New(dir, nil)
		defer connector.Close()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		events, err := connector.Watch(ctx)
		require.NoError(t, err)

		go func() {
			time.Sleep(50 * time.Millisecond)
			_ = os.WriteFile(path, []byte("modified"), 0644)
		}()

		waitForEvent(t, events, "notes.txt", 2*time.Second)
	})

	t.Run("emits event on file removal", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "doomed.txt")
		require.NoError(t, os.WriteFile(path, []byte("bye"), 0644))

		connector := New(dir, nil)
		defer connector.Close()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		events, err := connector.Watch(ctx)
		require.NoError(t, err)

		go func() {
			time.Sleep(50 * time.Millisecond)
			_ = os.Remove(path)
		}()

		waitForEvent(t, events, "doomed.txt", 2*time.Second)
	})

	t.Run("ignores hidden and unsupported files", func(t *testing.T) {
		dir := t.TempDir()
		connector := New(dir, nil)
		defer connector.Close()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		events, err := connector.Watch(ctx)
		require.NoError(t, err)

		go func() {
			time.Sleep(50 * time.Millisecond)
			_ = os.WriteFile(filepath.Join(dir, ".hidden.txt"), []byte("h"), 0644)
			_ = os.WriteFile(filepath.Join(dir, "image.png"), []byte("p"), 0644)
			time.Sleep(50 * time.Millisecond)
			_ = os.WriteFile(filepath.Join(dir, "visible.txt"), []byte("v"), 0644)
		}()

		// The first event through must be the supported visible file.
		select {
		case event := <-events:
			assert.Equal(t, "visible.txt", filepath.Base(event.URI))
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for change event")
		}
	})

	t.Run("picks up files in new subdirectories", func(t *testing.T) {
		dir := t.TempDir()
		connector := New(dir, nil)
		defer connector.Close()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		events, err := connector.Watch(ctx)
		require.NoError(t, err)

		go func() {
			time.Sleep(50 * time.Millisecond)
			sub := filepath.Join(dir, "new-dir")
			_ = os.Mkdir(sub, 0755)
			// Give the watcher a moment to pick up the directory.
			time.Sleep(200 * time.Millisecond)
			_ = os.WriteFile(filepath.Join(sub, "nested.txt"), []byte("n"), 0644)
		}()

		waitForEvent(t, events, "nested.txt", 3*time.Second)
	})

	t.Run("closes channel when context is cancelled", func(t *testing.T) {
		dir := t.TempDir()
		connector := New(dir, nil)
		defer connector.Close()
		ctx, cancel := context.WithCancel(context.Background())

		events, err := connector.Watch(ctx)
		require.NoError(t, err)

		cancel()

		select {
		case _, ok := <-events:
			assert.False(t, ok, "channel should close after cancellation")
		case <-time.After(2 * time.Second):
			t.Fatal("channel did not close after context cancellation")
		}
	})

	t.Run("returns error for non-existent directory", func(t *testing.T) {
		connector := New("/non/existent/path", nil)

		events, err := connector.Watch(context.Background())

		require.Error(t, err)
		assert.Nil(t, events)
	})

	t.Run("returns error when connector is closed", func(t *testing.T) {
		connector := New(t.TempDir(), nil)
		require.NoError(t, connector.Close())

		events, err := connector.Watch(context.Background())

		require.Error(t, err)
		assert.Nil(t, events)
		assert.Contains(t, err.Error(), "closed")
	})
}

func TestConnector_Close(t *testing.T) {
	t.Run("close is idempotent", func(t *testing.T) {
		connector := New("/tmp/notes", nil)

		assert.NoError(t, connector.Close())
		assert.NoError(t, connector.Close())
		assert.NoError(t, connector.Close())
	})

	t.Run("concurrent close operations are safe", func(t *testing.T) {
		connector := New("/tmp/notes", nil)

		done := make(chan bool)
		for i := 0; i < 10; i++ {
			go func() {
				defer func() { done <- true }()
				_ = connector.Close()
			}()
		}
		for i := 0; i < 10; i++ {
			<-done
		}
	})

	t.Run("basic operations after close still work", func(t *testing.T) {
		connector := New("/tmp/notes", nil)
		require.NoError(t, connector.Close())

		assert.Equal(t, "filesystem", connector.Type())
		assert.Equal(t, domain.CorpusLocal, connector.Corpus())
		assert.True(t, connector.Capabilities().SupportsWatch)
	})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		filename string
		mime     string
		category domain.SourceCategory
		ok       bool
	}{
		{"notes.txt", "text/plain", domain.CategoryProse, true},
		{"readme.md", "text/markdown", domain.CategoryProse, true},
		{"doc.markdown", "text/markdown", domain.CategoryProse, true},
		{"report.pdf", "application/pdf", domain.CategoryProse, true},
		{"data.csv", "text/csv", domain.CategoryTabular, true},

		// Case insensitive
		{"NOTES.TXT", "text/plain", domain.CategoryProse, true},
		{"Report.Pdf", "application/pdf", domain.CategoryProse, true},

		// Unsupported
		{"image.png", "", domain.CategoryUnknown, false},
		{"main.go", "", domain.CategoryUnknown, false},
		{"noext", "", domain.CategoryUnknown, false},
		{"archive.zip", "", domain.CategoryUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			mime, category, ok := classify(tt.filename)

			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.mime, mime)
			assert.Equal(t, tt.category, category)
		})
	}
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{".hidden", true},
		{".git", true},
		{"visible.txt", false},
		{"file.hidden", false},
		{".", false},
		{"..", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.name), func(t *testing.T) {
			assert.Equal(t, tt.expected, isHidden(tt.name))
		})
	}
}
