package policy

import "github.com/custodia-labs/weldsafe/internal/core/domain"

// Grounding decides which retrieved chunks are close enough to answer from.
type Grounding struct {
	// MaxDistance is the squared L2 distance limit. Zero or less keeps every chunk.
	MaxDistance float64
}

// Filter returns the chunks within MaxDistance, in their original order.
// An empty result means the question has no grounding in the corpus.
func (g Grounding) Filter(chunks []domain.RetrievedChunk) []domain.RetrievedChunk {
	if g.MaxDistance <= 0 {
		return chunks
	}
	out := make([]domain.RetrievedChunk, 0, len(chunks))
	for _, c := range chunks {
		if float64(c.Distance) <= g.MaxDistance {
			out = append(out, c)
		}
	}
	return out
}
