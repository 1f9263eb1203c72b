package driven

import (
	"context"
	"io"
)

// Transcriber converts speech to text.
type Transcriber interface {
	// Transcribe returns the recognised text of the audio stream.
	// filename carries the container format via its extension (e.g. voice.ogg).
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}
