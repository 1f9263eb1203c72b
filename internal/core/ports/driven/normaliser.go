package driven

import (
	"context"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
)

// Normaliser transforms a source file into plain text.
// Each normaliser handles specific MIME types (e.g., PDF, DOCX).
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific normalisers return 50-89, fallbacks 1-9.
	Priority() int

	// Normalise extracts the document text.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
// Chunking is handled by the PostProcessor pipeline.
type NormaliseResult struct {
	// Document is the normalised document with Content populated.
	Document domain.Document
}

// NormaliserRegistry selects a normaliser for a MIME type.
type NormaliserRegistry interface {
	// Get returns the highest-priority normaliser for the MIME type.
	Get(mimeType string) (Normaliser, bool)

	// MIMETypeFor maps a file name to a MIME type, or "" when unsupported.
	MIMETypeFor(filename string) string
}
