package domain

import (
	"fmt"
	"strings"
)

// Words splits text into its word sequence. A word is any maximal
// run of non-whitespace characters. Chunk positions and word counts
// are defined in terms of this split, so it is the single source of
// truth for what a "word" is.
func Words(text string) []string {
	return strings.Fields(text)
}

// SourceDocument represents a document discovered in a corpus.
// It carries everything the pipeline needs to decide whether the
// document must be (re)processed and how to interpret its content.
type SourceDocument struct {
	// ID is the stable source identity: a file path for local
	// documents, a Drive file id for cloud documents.
	ID string

	// Corpus names the corpus this document belongs to.
	Corpus Corpus

	// URI is the original location (file path, web link).
	URI string

	// Title is the human-readable title.
	Title string

	// Category is the declared content category (prose, tabular).
	Category SourceCategory

	// MIMEType is the content type (e.g., "application/pdf").
	MIMEType string

	// Fingerprint identifies the content version: a modification
	// timestamp for both local files and Drive documents.
	Fingerprint string

	// Metadata contains connector-specific key-value pairs.
	Metadata map[string]string
}

// RawDocument represents opaque bytes fetched by a connector.
// It is the connector's output before text extraction.
type RawDocument struct {
	// SourceID links back to the SourceDocument.
	SourceID string

	// URI is the original location.
	URI string

	// MIMEType is the content type of Content. For exported cloud
	// documents this is the export type, not the stored type.
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}

// Section is one positional unit of extracted text. Paginated
// sources produce one section per page; everything else produces a
// single section with index zero.
type Section struct {
	// Index is the 1-based page number for paginated sources,
	// zero otherwise. It becomes the middle component of chunk ids.
	Index int

	// Text is the flattened text of the section.
	Text string
}

// Extraction is the result of turning raw bytes into chunkable text.
type Extraction struct {
	// Title extracted from the content, if the extractor found one.
	Title string

	// Sections holds the text in positional order.
	Sections []Section

	// Sheet is the sheet or table name for tabular sources.
	Sheet string

	// Columns holds the header names for tabular sources.
	Columns []string
}

// WordCount returns the total number of words across all sections.
func (e Extraction) WordCount() int {
	total := 0
	for _, s := range e.Sections {
		total += len(Words(s.Text))
	}
	return total
}

// Chunk represents one overlapping word window from a source
// document. Chunks are immutable once created; re-ingestion of the
// source replaces them wholesale via upsert on the same ids.
type Chunk struct {
	// ID is the deterministic chunk identity, see ChunkID.
	ID string

	// SourceID links to the SourceDocument that produced this chunk.
	SourceID string

	// Text is the window content, words joined by single spaces.
	Text string

	// Position is the word offset where the window starts within
	// its section.
	Position int

	// WordCount is the number of words in the window.
	WordCount int

	// Embedding is the vector representation, 1:1 with the chunk.
	Embedding []float32

	// Meta carries the typed provenance stored alongside the chunk.
	Meta ChunkMeta
}

// ChunkID builds the deterministic chunk identity from the source
// identity, the section (page) index, and the window's word offset.
// The same source re-chunked identically always yields the same ids,
// which makes re-ingestion an upsert rather than an append. Distinct
// sources can never collide because the source id is part of the id.
func ChunkID(sourceID string, section, position int) string {
	return fmt.Sprintf("%s_%d_%d", sourceID, section, position)
}
