package domain

// Document is a normalised plain-text regulatory source.
// It is produced once by corpus preparation and never mutated afterwards.
type Document struct {
	// ID is the logical name, usually the source file name.
	ID string

	// Title is the human-readable title derived from the file name.
	Title string

	// Path is the location the document was read from.
	Path string

	// Content is the full normalised text.
	Content string
}

// Chunk is a token-bounded slice of a document.
// Position is the corpus-wide ordinal and the join key to the vector index.
type Chunk struct {
	// Position is the ordinal within the whole corpus.
	Position int

	// Source is the ID of the document this chunk came from.
	Source string

	// Content is the chunk text, words joined by single spaces.
	Content string
}
