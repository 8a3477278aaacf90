// Package chunker splits flattened source text into overlapping
// word windows, the atomic units of retrieval.
package chunker

import (
	"strings"

	"github.com/custodia-labs/aska-cli/internal/core/domain"
)

// DefaultWindowSize is the default number of words per chunk.
const DefaultWindowSize = 200

// DefaultOverlap is the default number of overlapping words.
const DefaultOverlap = 50

// Chunker emits fixed-size overlapping word windows over a word
// sequence. Window boundaries are a pure function of the input, so
// chunking the same text twice yields identical windows.
type Chunker struct {
	windowSize int
	overlap    int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithWindowSize sets the window size in words.
func WithWindowSize(size int) Option {
	return func(c *Chunker) {
		c.windowSize = size
	}
}

// WithOverlap sets the overlap between adjacent windows in words.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		c.overlap = overlap
	}
}

// New creates a chunker with the given options. The parameters must
// satisfy 0 <= overlap < window; anything else returns ErrConfig so
// a bad window can never be silently adjusted into a different one.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		windowSize: DefaultWindowSize,
		overlap:    DefaultOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := domain.ValidateChunkWindow(c.windowSize, c.overlap); err != nil {
		return nil, err
	}
	return c, nil
}

// WindowSize returns the configured window size in words.
func (c *Chunker) WindowSize() int { return c.windowSize }

// Overlap returns the configured overlap in words.
func (c *Chunker) Overlap() int { return c.overlap }

// Window is one emitted word window.
type Window struct {
	// Position is the word offset where the window starts.
	Position int

	// Text is the window's words rejoined by single spaces.
	Text string

	// WordCount is the number of words in the window.
	WordCount int
}

// Chunk splits text into windows starting at offsets 0, W-O,
// 2(W-O), ... while the offset is inside the word sequence. The
// final window may be shorter than W and is still emitted when
// non-empty. Every word is covered by at least one window, and
// adjacent windows share exactly the configured overlap except at
// the end of the text. Empty or whitespace-only text yields nil.
func (c *Chunker) Chunk(text string) []Window {
	words := domain.Words(text)
	if len(words) == 0 {
		return nil
	}

	step := c.windowSize - c.overlap
	windows := make([]Window, 0, (len(words)+step-1)/step)

	for start := 0; start < len(words); start += step {
		end := start + c.windowSize
		if end > len(words) {
			end = len(words)
		}

		windows = append(windows, Window{
			Position:  start,
			Text:      strings.Join(words[start:end], " "),
			WordCount: end - start,
		})
	}

	return windows
}
