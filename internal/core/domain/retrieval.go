package domain

// Hit is a single nearest-neighbour result from the vector index.
type Hit struct {
	// Position is the vector's ordinal in the index.
	Position int

	// Distance is the squared Euclidean distance to the query.
	Distance float32
}

// RetrievedChunk is one entry of a retrieval result.
type RetrievedChunk struct {
	Chunk

	// Rank is the 0-based rank, 0 being the nearest.
	Rank int

	// Distance is the squared Euclidean distance to the query.
	Distance float32
}

// Contents returns the chunk texts in rank order.
func Contents(chunks []RetrievedChunk) []string {
	out := make([]string, len(chunks))
	for i := range chunks {
		out[i] = chunks[i].Content
	}
	return out
}
