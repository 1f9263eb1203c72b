package domain

// RawDocument is an unprocessed source file awaiting normalisation.
type RawDocument struct {
	// Path is the file location.
	Path string

	// MIMEType is the content type (e.g. "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}
