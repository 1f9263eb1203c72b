package domain

// Block is one section of a structured answer.
type Block struct {
	// Heading is the bold micro-heading text without markup.
	Heading string

	// Lines holds the 1-3 body lines.
	Lines []string
}

// Citation references a clause of a regulatory standard.
type Citation struct {
	// Standard is the standard code, e.g. "ДСТУ ISO 14175-2008".
	Standard string

	// Clause is the clause number, e.g. "5.3.2". May be empty.
	Clause string
}

// String renders the citation without brackets.
func (c Citation) String() string {
	if c.Clause == "" {
		return c.Standard
	}
	return c.Standard + ", " + c.Clause
}

// Answer is the composed reply to a single question.
type Answer struct {
	// Text is the final answer exactly as delivered to the user.
	Text string

	// Blocks is the structure of Text. Empty for short single-idea answers.
	// An emergency Text opens with the stop-work directive, which is not a block.
	Blocks []Block

	// Emergency is true when the question indicated an acute hazard.
	Emergency bool

	// Fallback is true when no grounding was found in the corpus.
	Fallback bool

	// Clarification is true when the question was too vague to answer.
	Clarification bool

	// Citations lists the standards cited in Text.
	Citations []Citation

	// Sources holds the chunks the answer was grounded on, in rank order.
	Sources []RetrievedChunk
}
