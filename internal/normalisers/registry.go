package normalisers

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/weldsafe/internal/core/ports/driven"
	"github.com/custodia-labs/weldsafe/internal/normalisers/docx"
	"github.com/custodia-labs/weldsafe/internal/normalisers/pdf"
	"github.com/custodia-labs/weldsafe/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// MIME types of the supported source formats.
const (
	MIMEPlainText = "text/plain"
	MIMEMarkdown  = "text/markdown"
	MIMEDocx      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEPDF       = "application/pdf"
)

var extensions = map[string]string{
	".txt":  MIMEPlainText,
	".md":   MIMEMarkdown,
	".docx": MIMEDocx,
	".pdf":  MIMEPDF,
}

// Registry selects normalisers by MIME type.
type Registry struct {
	mu          sync.RWMutex
	normalisers map[string][]driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{normalisers: make(map[string][]driven.Normaliser)}
}

// DefaultRegistry returns a registry with the plain text, DOCX and PDF
// normalisers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(plaintext.New())
	r.Register(docx.New())
	r.Register(pdf.New())
	return r
}

// Register adds n for each MIME type it supports.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, mime := range n.SupportedMIMETypes() {
		list := append(r.normalisers[mime], n)
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Priority() > list[j].Priority()
		})
		r.normalisers[mime] = list
	}
}

// Get returns the highest-priority normaliser for mimeType.
func (r *Registry) Get(mimeType string) (driven.Normaliser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.normalisers[mimeType]
	if len(list) == 0 {
		return nil, false
	}
	return list[0], true
}

// MIMETypeFor maps a file name to a MIME type by extension, or "".
func (r *Registry) MIMETypeFor(filename string) string {
	return extensions[strings.ToLower(filepath.Ext(filename))]
}
