package driven

import (
	"context"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
)

// ProfileStore persists registered users keyed by chat user ID.
type ProfileStore interface {
	// Upsert inserts or replaces the profile.
	Upsert(ctx context.Context, p *domain.Profile) error

	// Get returns the profile or domain.ErrNotFound.
	Get(ctx context.Context, userID int64) (*domain.Profile, error)

	// Exists reports whether the user has registered.
	Exists(ctx context.Context, userID int64) (bool, error)

	// Close releases resources.
	Close() error
}

// ChatLog records questions and answers.
type ChatLog interface {
	// Append stores one entry.
	Append(ctx context.Context, e domain.ChatEntry) error

	// Recent returns up to limit entries for a user, newest first.
	Recent(ctx context.Context, userID int64, limit int) ([]domain.ChatEntry, error)
}

// SessionStore holds in-flight registration dialogues.
type SessionStore interface {
	// Get returns the session for the user, if any.
	Get(userID int64) (*domain.DialogueSession, bool)

	// Put stores or replaces the session.
	Put(userID int64, s *domain.DialogueSession)

	// Delete ends the session.
	Delete(userID int64)
}
