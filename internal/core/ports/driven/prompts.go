package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations return the embedded default
	// or an error when no default exists.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptAnswerPolicy is the answer policy text placed at the top of the
	// system prompt. It has no format placeholders.
	PromptAnswerPolicy = "answer_policy"

	// PromptClarification is the reply sent for questions too vague to ground.
	PromptClarification = "clarification"
)
