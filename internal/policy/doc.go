// Package policy holds the rules that shape a safety answer.
//
// Each rule is a small value type with no I/O so it can be tested on its
// own: persona and prompt assembly before the model call, then markup
// sanitising, citation enforcement, block layout, emoji limits and
// emergency escalation on the completion. Grounding, Clarity and the
// fallback text decide whether the model is called at all.
package policy
