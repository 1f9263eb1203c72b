package driven

import (
	"context"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
)

// Snapshot is a loaded, read-only corpus: chunks and their vectors.
type Snapshot struct {
	Manifest domain.Manifest
	Chunks   []domain.Chunk
	Index    VectorIndex
}

// CorpusStore persists the chunk store and vector index as one unit.
type CorpusStore interface {
	// Save atomically replaces the persisted corpus.
	// On failure the previous corpus stays intact.
	Save(ctx context.Context, snap *Snapshot) (*domain.Manifest, error)

	// Load reads and verifies the persisted corpus.
	// Returns domain.ErrIndexNotBuilt when nothing has been saved yet.
	Load(ctx context.Context) (*Snapshot, error)

	// Manifest reads only the manifest.
	Manifest(ctx context.Context) (*domain.Manifest, error)

	// ManifestPath returns the manifest file location for watchers.
	ManifestPath() string
}
