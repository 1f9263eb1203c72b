package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
)

// ConversationService handles chat updates from a transport.
type ConversationService interface {
	// Handle routes a text, command, button or contact update.
	Handle(ctx context.Context, in domain.Incoming) (*domain.Reply, error)

	// HandleVoice transcribes the audio and answers it as a question.
	HandleVoice(ctx context.Context, in domain.Incoming, filename string, audio io.Reader) (*domain.Reply, error)
}

// ProfileService exposes registered profiles.
type ProfileService interface {
	// Get returns the profile or domain.ErrNotFound.
	Get(ctx context.Context, userID int64) (*domain.Profile, error)

	// History returns up to limit logged messages of the user, oldest first.
	History(ctx context.Context, userID int64, limit int) ([]domain.ChatEntry, error)
}
