// Package extractors turns fetched document bytes into chunkable
// text. Each extractor claims specific MIME types; the Registry
// dispatches on the fetched type and prefers the highest priority
// when several extractors claim the same one.
package extractors

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/aska-cli/internal/core/domain"
	"github.com/custodia-labs/aska-cli/internal/core/ports/driven"
	"github.com/custodia-labs/aska-cli/internal/extractors/pdf"
	"github.com/custodia-labs/aska-cli/internal/extractors/plaintext"
	"github.com/custodia-labs/aska-cli/internal/extractors/tabular"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps MIME types to extractors in priority order.
type Registry struct {
	byMIME map[string][]driven.Extractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byMIME: make(map[string][]driven.Extractor),
	}
}

// NewDefaultRegistry creates a registry with every built-in
// extractor registered.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(pdf.New())
	r.Register(tabular.New())
	r.Register(plaintext.New())
	return r
}

// Register adds an extractor under each MIME type it claims.
func (r *Registry) Register(extractor driven.Extractor) {
	for _, mimeType := range extractor.SupportedMIMETypes() {
		list := append(r.byMIME[baseMIMEType(mimeType)], extractor)
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Priority() > list[j].Priority()
		})
		r.byMIME[baseMIMEType(mimeType)] = list
	}
}

// Extract routes the document to the highest-priority extractor for
// its MIME type. Parameters are ignored, so "text/plain;
// charset=utf-8" selects the text/plain extractor.
func (r *Registry) Extract(ctx context.Context, raw *domain.RawDocument) (*domain.Extraction, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	mimeType := baseMIMEType(raw.MIMEType)
	list := r.byMIME[mimeType]
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: no extractor for %q", domain.ErrUnsupportedType, mimeType)
	}
	return list[0].Extract(ctx, raw)
}

// SupportedMIMETypes returns every MIME type with an extractor.
func (r *Registry) SupportedMIMETypes() []string {
	types := make([]string, 0, len(r.byMIME))
	for mimeType := range r.byMIME {
		types = append(types, mimeType)
	}
	sort.Strings(types)
	return types
}

// baseMIMEType lowercases a MIME type and strips any parameters.
func baseMIMEType(mimeType string) string {
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}
