package policy

import (
	"strings"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
)

// ContextSeparator delimits reference fragments in the prompt and in
// the persisted chunk store.
const ContextSeparator = "\n\n-----\n\n"

// Prompt is the pair of messages sent to the model.
type Prompt struct {
	System string
	User   string
}

// PromptBuilder assembles the single system prompt of a query.
type PromptBuilder struct {
	Persona Persona

	// Policy is the rule text: knowledge base, emergencies, structure,
	// formatting, unclear questions and a worked example.
	Policy string
}

// Build places persona and policy first, then the chunks in rank order.
// The user message is the literal question.
func (p PromptBuilder) Build(question string, chunks []domain.RetrievedChunk, e Emergency) Prompt {
	var b strings.Builder
	b.WriteString(p.Persona.Render())
	if policy := strings.TrimSpace(p.Policy); policy != "" {
		b.WriteString("\n\n")
		b.WriteString(policy)
	}
	if e.Detected {
		b.WriteString("\n\nTHIS QUESTION\n- It describes an emergency (")
		b.WriteString(strings.Join(e.Triggers, ", "))
		b.WriteString("). Open with the stop-work line, then first aid from the fragments only.")
	}
	b.WriteString("\n\nREFERENCE FRAGMENTS\n")
	b.WriteString(strings.Join(domain.Contents(chunks), ContextSeparator))

	return Prompt{System: b.String(), User: question}
}
