package driving

import (
	"context"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
)

// IndexService builds the persisted corpus offline.
type IndexService interface {
	// Build chunks, embeds and persists every *.txt document in corpusDir.
	// Failures are domain.ErrCorpusBuild and leave the previous index intact.
	Build(ctx context.Context, corpusDir string) (*domain.Manifest, error)

	// Info returns the manifest of the persisted index.
	Info(ctx context.Context) (*domain.Manifest, error)
}

// PrepareReport summarises a corpus preparation run.
type PrepareReport struct {
	// Written lists the produced plain-text files.
	Written []string

	// Skipped lists source files that were ignored, with reasons.
	Skipped map[string]string

	// Failed lists source files whose normalisation failed, with the error.
	Failed map[string]string
}

// CorpusService converts source documents into the plain-text corpus.
type CorpusService interface {
	// Prepare normalises every supported file in srcDir into dstDir.
	Prepare(ctx context.Context, srcDir, dstDir string) (*PrepareReport, error)
}
