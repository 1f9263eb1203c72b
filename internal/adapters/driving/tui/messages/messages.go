// Package messages defines Bubbletea message types for the chat TUI.
package messages

import (
	"time"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
)

// QuestionSubmitted is sent when the user presses enter on a question.
type QuestionSubmitted struct {
	Question string
}

// AnswerReceived carries the engine's result back to the model.
type AnswerReceived struct {
	Question string
	Answer   *domain.Answer
	Err      error
	Elapsed  time.Duration
}

// TranscriptCleared is sent when the user clears the transcript.
type TranscriptCleared struct{}
