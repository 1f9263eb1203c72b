package driven

import (
	"io"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
)

// VectorIndex is a read-only exact nearest-neighbour index.
// Vector positions equal chunk positions.
type VectorIndex interface {
	// Search returns the min(k, Len()) nearest vectors by ascending
	// squared L2 distance, ties broken by ascending position.
	Search(query []float32, k int) ([]domain.Hit, error)

	// Len returns the number of vectors.
	Len() int

	// Dimensions returns the vector size, or 0 for an empty index.
	Dimensions() int

	// WriteTo serialises the index.
	WriteTo(w io.Writer) (int64, error)
}

// VectorIndexBuilder creates an index from vectors. Vector i gets position i.
type VectorIndexBuilder interface {
	Build(vectors [][]float32) (VectorIndex, error)
}
