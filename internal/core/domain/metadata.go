package domain

import (
	"strconv"
	"strings"
	"time"
)

// SourceCategory is the declared content category of a source.
// The reranker's type boost table is keyed by it.
type SourceCategory string

// Available source categories.
const (
	// CategoryProse covers flowing text: PDFs, Google Docs,
	// plain text, markdown.
	CategoryProse SourceCategory = "prose"

	// CategoryTabular covers row-and-column data: spreadsheets, CSV.
	CategoryTabular SourceCategory = "tabular"

	// CategoryUnknown is anything the connectors could not classify.
	CategoryUnknown SourceCategory = ""
)

// IsValid returns true if the category is recognised.
func (c SourceCategory) IsValid() bool {
	switch c {
	case CategoryProse, CategoryTabular:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (c SourceCategory) String() string {
	return string(c)
}

// MetaBase is the provenance shared by every chunk regardless of the
// shape of its source. The tracker and the reranker depend only on
// these fields.
type MetaBase struct {
	// SourceID is the identity of the originating source.
	SourceID string

	// Category is the declared source category.
	Category SourceCategory

	// Position is the word offset where the chunk's window starts.
	Position int

	// WordCount is the number of words in the chunk.
	WordCount int

	// IngestedAt is when the chunk was written to the index.
	// A zero value means unknown and contributes no recency boost.
	IngestedAt time.Time

	// Title is the source's human-readable title.
	Title string

	// URI is the source's original location.
	URI string
}

// ChunkMeta is the typed metadata attached to a chunk. Exactly one
// concrete variant exists per source shape; adapters flatten it to a
// string map at the storage boundary and rebuild the right variant
// from the stored keys.
type ChunkMeta interface {
	// Base returns the shared provenance fields.
	Base() MetaBase

	// Section returns the page or section index used in the chunk id.
	Section() int
}

// PaginatedMeta is chunk metadata for page-structured sources.
type PaginatedMeta struct {
	MetaBase

	// Page is the 1-based page the chunk was extracted from.
	Page int
}

// Base returns the shared provenance fields.
func (m PaginatedMeta) Base() MetaBase { return m.MetaBase }

// Section returns the page number.
func (m PaginatedMeta) Section() int { return m.Page }

// TabularMeta is chunk metadata for row-and-column sources.
type TabularMeta struct {
	MetaBase

	// Sheet is the sheet or table name, when known.
	Sheet string

	// Columns holds the header names of the linearised table.
	Columns []string
}

// Base returns the shared provenance fields.
func (m TabularMeta) Base() MetaBase { return m.MetaBase }

// Section returns zero; tabular sources are not paginated.
func (m TabularMeta) Section() int { return 0 }

// FlatMeta is chunk metadata for unstructured flat text.
type FlatMeta struct {
	MetaBase
}

// Base returns the shared provenance fields.
func (m FlatMeta) Base() MetaBase { return m.MetaBase }

// Section returns zero; flat sources have a single section.
func (m FlatMeta) Section() int { return 0 }

// Metadata map keys used by EncodeMeta and DecodeMeta. Storage
// backends persist exactly these keys, so they are part of the
// on-disk contract and must not be renamed.
const (
	metaKeySourceID   = "source_id"
	metaKeyCategory   = "category"
	metaKeyPosition   = "position"
	metaKeyWordCount  = "word_count"
	metaKeyIngestedAt = "ingested_at"
	metaKeyTitle      = "title"
	metaKeyURI        = "uri"
	metaKeyPage       = "page"
	metaKeySheet      = "sheet"
	metaKeyColumns    = "columns"
)

// EncodeMeta flattens typed chunk metadata into the string map form
// stored next to each vector.
func EncodeMeta(meta ChunkMeta) map[string]string {
	if meta == nil {
		return map[string]string{}
	}

	base := meta.Base()
	out := map[string]string{
		metaKeySourceID:  base.SourceID,
		metaKeyCategory:  string(base.Category),
		metaKeyPosition:  strconv.Itoa(base.Position),
		metaKeyWordCount: strconv.Itoa(base.WordCount),
		metaKeyTitle:     base.Title,
		metaKeyURI:       base.URI,
	}
	if !base.IngestedAt.IsZero() {
		out[metaKeyIngestedAt] = base.IngestedAt.Format(time.RFC3339Nano)
	}

	switch m := meta.(type) {
	case PaginatedMeta:
		out[metaKeyPage] = strconv.Itoa(m.Page)
	case TabularMeta:
		if m.Sheet != "" {
			out[metaKeySheet] = m.Sheet
		}
		if len(m.Columns) > 0 {
			out[metaKeyColumns] = strings.Join(m.Columns, ",")
		}
	}

	return out
}

// DecodeMeta rebuilds typed chunk metadata from its stored string
// map form. Missing or malformed values degrade to zero values; an
// unparseable timestamp yields a zero IngestedAt rather than an
// error, so stale entries never poison a query.
func DecodeMeta(values map[string]string) ChunkMeta {
	base := MetaBase{
		SourceID: values[metaKeySourceID],
		Category: SourceCategory(values[metaKeyCategory]),
		Title:    values[metaKeyTitle],
		URI:      values[metaKeyURI],
	}
	if v, err := strconv.Atoi(values[metaKeyPosition]); err == nil {
		base.Position = v
	}
	if v, err := strconv.Atoi(values[metaKeyWordCount]); err == nil {
		base.WordCount = v
	}
	if ts, err := time.Parse(time.RFC3339Nano, values[metaKeyIngestedAt]); err == nil {
		base.IngestedAt = ts
	}

	if raw, ok := values[metaKeyPage]; ok {
		page, err := strconv.Atoi(raw)
		if err != nil {
			page = 0
		}
		return PaginatedMeta{MetaBase: base, Page: page}
	}

	if _, ok := values[metaKeySheet]; ok {
		meta := TabularMeta{MetaBase: base, Sheet: values[metaKeySheet]}
		if cols := values[metaKeyColumns]; cols != "" {
			meta.Columns = strings.Split(cols, ",")
		}
		return meta
	}
	if cols, ok := values[metaKeyColumns]; ok && cols != "" {
		return TabularMeta{MetaBase: base, Columns: strings.Split(cols, ",")}
	}

	return FlatMeta{MetaBase: base}
}
