// Package tabular linearises row-and-column data into retrievable
// prose. A CSV document becomes a header sentence naming the columns
// followed by one "Row N: col: val | ..." line per data row, which
// keeps column names next to their values inside every chunk.
package tabular

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/aska-cli/internal/core/domain"
	"github.com/custodia-labs/aska-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles CSV documents, including Sheets exports.
type Extractor struct{}

// New creates a tabular extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"text/csv"}
}

// Priority returns the selection priority. Outranks the plaintext
// fallback for text/csv.
func (e *Extractor) Priority() int {
	return 50
}

// Extract linearises the table into a single section. The first
// record is the header; data rows are numbered from 1. Cells that
// are empty after trimming are left out of their row line, and rows
// with no remaining cells are dropped while keeping their number.
func (e *Extractor) Extract(_ context.Context, raw *domain.RawDocument) (*domain.Extraction, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader := csv.NewReader(bytes.NewReader(raw.Content))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return &domain.Extraction{
			Sections: []domain.Section{{Index: 0, Text: ""}},
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.TrimSpace(name)
	}

	var b strings.Builder
	b.WriteString("Spreadsheet with columns: ")
	b.WriteString(strings.Join(columns, ", "))

	rowNum := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv row %d: %w", rowNum+1, err)
		}
		rowNum++

		line := rowLine(rowNum, columns, record)
		if line == "" {
			continue
		}
		b.WriteString("\n")
		b.WriteString(line)
	}

	return &domain.Extraction{
		Columns:  columns,
		Sections: []domain.Section{{Index: 0, Text: b.String()}},
	}, nil
}

// rowLine renders one data row, pairing each cell with its column
// name. Cells beyond the header get a positional Col<i> name.
func rowLine(rowNum int, columns, record []string) string {
	pairs := make([]string, 0, len(record))
	for i, cell := range record {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		name := fmt.Sprintf("Col%d", i)
		if i < len(columns) {
			name = columns[i]
		}
		pairs = append(pairs, name+": "+cell)
	}
	if len(pairs) == 0 {
		return ""
	}
	return fmt.Sprintf("Row %d: %s", rowNum, strings.Join(pairs, " | "))
}
