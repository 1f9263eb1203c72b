package flat

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
	"github.com/custodia-labs/weldsafe/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.VectorIndex = (*Index)(nil)

// Index is an immutable flat L2 index. It is safe for concurrent Search.
type Index struct {
	dims int
	n    int
	data []float32
}

// Build creates an index from vectors. Vector i gets position i.
// All vectors must share one non-zero dimension.
func Build(vectors [][]float32) (*Index, error) {
	if len(vectors) == 0 {
		return &Index{}, nil
	}

	dims := len(vectors[0])
	if dims == 0 {
		return nil, fmt.Errorf("%w: vector 0 is empty", domain.ErrInvalidInput)
	}

	data := make([]float32, 0, dims*len(vectors))
	for i, v := range vectors {
		if len(v) != dims {
			return nil, fmt.Errorf("%w: vector %d has %d dimensions, expected %d",
				domain.ErrInvalidInput, i, len(v), dims)
		}
		data = append(data, v...)
	}
	return &Index{dims: dims, n: len(vectors), data: data}, nil
}

// Len returns the number of vectors.
func (idx *Index) Len() int { return idx.n }

// Dimensions returns the vector size, or 0 for an empty index.
func (idx *Index) Dimensions() int { return idx.dims }

// Vector returns a copy of the vector at position i.
func (idx *Index) Vector(i int) []float32 {
	if i < 0 || i >= idx.n {
		return nil
	}
	return slices.Clone(idx.data[i*idx.dims : (i+1)*idx.dims])
}

// Search returns the min(k, Len()) nearest vectors by ascending squared
// L2 distance. Equal distances are ordered by ascending position.
func (idx *Index) Search(query []float32, k int) ([]domain.Hit, error) {
	if k <= 0 || idx.n == 0 {
		return nil, nil
	}
	if len(query) != idx.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrInvalidInput, len(query), idx.dims)
	}

	hits := make([]domain.Hit, idx.n)
	for i := range hits {
		hits[i] = domain.Hit{Position: i, Distance: squaredL2(query, idx.data[i*idx.dims:(i+1)*idx.dims])}
	}
	slices.SortFunc(hits, func(a, b domain.Hit) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(a.Position, b.Position)
	})

	return hits[:min(k, idx.n)], nil
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// Builder builds flat indexes through the driven port.
type Builder struct{}

// Verify interface compliance.
var _ driven.VectorIndexBuilder = Builder{}

// Build implements driven.VectorIndexBuilder.
func (Builder) Build(vectors [][]float32) (driven.VectorIndex, error) {
	idx, err := Build(vectors)
	if err != nil {
		return nil, err
	}
	return idx, nil
}
