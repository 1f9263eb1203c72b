package domain

// ManifestVersion is the current manifest format version.
const ManifestVersion = 1

// ArtifactRef names a persisted artifact and its checksum.
type ArtifactRef struct {
	File   string `json:"file"`
	SHA256 string `json:"sha256"`
}

// DocumentRef records how many consecutive chunks came from one document.
type DocumentRef struct {
	Name   string `json:"name"`
	Chunks int    `json:"chunks"`
}

// Manifest binds the chunk store and the vector index of one build.
// It carries no timestamps so identical builds produce identical bytes.
type Manifest struct {
	Version        int           `json:"version"`
	BuildID        string        `json:"build_id"`
	ChunkCount     int           `json:"chunk_count"`
	Dimensions     int           `json:"dimensions"`
	EmbeddingModel string        `json:"embedding_model"`
	Tokenizer      string        `json:"tokenizer"`
	MaxTokens      int           `json:"max_tokens"`
	OverlapTokens  int           `json:"overlap_tokens"`
	Documents      []DocumentRef `json:"documents"`
	Chunks         ArtifactRef   `json:"chunks"`
	Vectors        ArtifactRef   `json:"vectors"`
}
