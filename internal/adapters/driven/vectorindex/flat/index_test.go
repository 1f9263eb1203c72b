package flat

import (
	"bytes"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
)

func randomVectors(n, dims int, seed int64) [][]float32 {
	rng := rand.New(rand.NewSource(seed))
	out := make([][]float32, n)
	for i := range out {
		out[i] = make([]float32, dims)
		for j := range out[i] {
			out[i][j] = rng.Float32()*2 - 1
		}
	}
	return out
}

func TestBuild(t *testing.T) {
	idx, err := Build(randomVectors(5, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, 5, idx.Len())
	assert.Equal(t, 3, idx.Dimensions())
}

func TestBuild_Empty(t *testing.T) {
	idx, err := Build(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Len())
	assert.Equal(t, 0, idx.Dimensions())

	hits, err := idx.Search([]float32{1, 2}, 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestBuild_Errors(t *testing.T) {
	_, err := Build([][]float32{{1, 2}, {1}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = Build([][]float32{{}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearch_Order(t *testing.T) {
	idx, err := Build([][]float32{
		{0, 0},
		{3, 0},
		{1, 0},
		{0, 2},
	})
	require.NoError(t, err)

	hits, err := idx.Search([]float32{0, 0}, 4)
	require.NoError(t, err)
	assert.Equal(t, []domain.Hit{
		{Position: 0, Distance: 0},
		{Position: 2, Distance: 1},
		{Position: 3, Distance: 4},
		{Position: 1, Distance: 9},
	}, hits)
}

func TestSearch_TiesByPosition(t *testing.T) {
	idx, err := Build([][]float32{
		{1, 0},
		{0, 1},
		{-1, 0},
		{0, -1},
	})
	require.NoError(t, err)

	hits, err := idx.Search([]float32{0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	for i, h := range hits {
		assert.Equal(t, i, h.Position)
		assert.InDelta(t, 1.0, h.Distance, 1e-6)
	}
}

func TestSearch_CountIsMinOfKAndSize(t *testing.T) {
	idx, err := Build(randomVectors(7, 4, 2))
	require.NoError(t, err)
	query := randomVectors(1, 4, 3)[0]

	for _, k := range []int{0, 1, 5, 7, 8, 100} {
		hits, err := idx.Search(query, k)
		require.NoError(t, err)
		assert.Len(t, hits, min(k, 7), "k=%d", k)

		for i := 1; i < len(hits); i++ {
			prev, cur := hits[i-1], hits[i]
			assert.True(t, prev.Distance < cur.Distance ||
				(prev.Distance == cur.Distance && prev.Position < cur.Position),
				"hits out of order at %d", i)
		}
	}
}

func TestSearch_NegativeK(t *testing.T) {
	idx, err := Build(randomVectors(3, 2, 4))
	require.NoError(t, err)
	hits, err := idx.Search([]float32{0, 0}, -1)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearch_DimensionMismatch(t *testing.T) {
	idx, err := Build(randomVectors(3, 2, 5))
	require.NoError(t, err)
	_, err = idx.Search([]float32{0, 0, 0}, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRoundTrip(t *testing.T) {
	vectors := randomVectors(50, 16, 6)
	vectors[3][0] = float32(math.Inf(1))
	idx, err := Build(vectors)
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := idx.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	assert.Equal(t, int64(headerSize+50*16*4), n)

	loaded, err := Read(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, idx.Len(), loaded.Len())
	assert.Equal(t, idx.Dimensions(), loaded.Dimensions())
	for i := range vectors {
		got := loaded.Vector(i)
		for j := range got {
			assert.Equal(t, math.Float32bits(vectors[i][j]), math.Float32bits(got[j]))
		}
	}

	var again bytes.Buffer
	_, err = loaded.WriteTo(&again)
	require.NoError(t, err)
	assert.Equal(t, buf.Bytes(), again.Bytes())
}

func TestRoundTrip_Empty(t *testing.T) {
	idx, err := Build(nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = idx.WriteTo(&buf)
	require.NoError(t, err)

	loaded, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Len())
}

func TestRead_Corrupt(t *testing.T) {
	idx, err := Build(randomVectors(2, 3, 7))
	require.NoError(t, err)
	var buf bytes.Buffer
	_, err = idx.WriteTo(&buf)
	require.NoError(t, err)
	good := buf.Bytes()

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"bad magic", append([]byte("XXXX"), good[4:]...)},
		{"bad version", func() []byte {
			b := bytes.Clone(good)
			b[4] = 9
			return b
		}()},
		{"truncated", good[:len(good)-2]},
		{"trailing", append(bytes.Clone(good), 0)},
		{"count without dims", func() []byte {
			b := bytes.Clone(good[:headerSize])
			b[8], b[9], b[10], b[11] = 0, 0, 0, 0
			return b
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(bytes.NewReader(tt.data))
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}
}

func TestVector_OutOfRange(t *testing.T) {
	idx, err := Build(randomVectors(1, 2, 8))
	require.NoError(t, err)
	assert.Nil(t, idx.Vector(-1))
	assert.Nil(t, idx.Vector(1))
}

func TestBuilder(t *testing.T) {
	idx, err := Builder{}.Build(randomVectors(4, 2, 7))
	require.NoError(t, err)
	assert.Equal(t, 4, idx.Len())

	idx, err = Builder{}.Build([][]float32{{1}, {1, 2}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, idx)
}
