package normalisers

import (
	"sort"
	"strings"

	"github.com/custodia-labs/coach/internal/core/ports/driven"
	"github.com/custodia-labs/coach/internal/normalisers/docx"
	"github.com/custodia-labs/coach/internal/normalisers/pdf"
	"github.com/custodia-labs/coach/internal/normalisers/plaintext"
)

// Ensure Registry implements the ExtractorRegistry interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps lower-cased extensions to extractors.
type Registry struct {
	byExt map[string]driven.TextExtractor
}

// NewRegistry registers extractors in order; a later extractor replaces
// an earlier one for the same extension.
func NewRegistry(extractors ...driven.TextExtractor) *Registry {
	r := &Registry{byExt: make(map[string]driven.TextExtractor)}
	for _, e := range extractors {
		for _, ext := range e.Extensions() {
			r.byExt[strings.ToLower(ext)] = e
		}
	}
	return r
}

// Default returns a registry with the PDF, DOCX and plain text extractors.
func Default() *Registry {
	return NewRegistry(pdf.New(), docx.New(), plaintext.New())
}

// For returns the extractor for ext.
func (r *Registry) For(ext string) (driven.TextExtractor, bool) {
	e, ok := r.byExt[strings.ToLower(ext)]
	return e, ok
}

// Extensions returns the registered extensions, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
