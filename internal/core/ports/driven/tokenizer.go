package driven

// Tokenizer measures text in model tokens.
type Tokenizer interface {
	// Count returns the number of tokens in text.
	Count(text string) int

	// Name identifies the encoding, e.g. "cl100k_base".
	Name() string
}
