package services

import (
	"context"
	"slices"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
	"github.com/custodia-labs/weldsafe/internal/core/ports/driven"
	"github.com/custodia-labs/weldsafe/internal/core/ports/driving"
)

// DefaultHistoryLimit bounds History when no limit is given.
const DefaultHistoryLimit = 20

// Ensure ProfileService implements the interface.
var _ driving.ProfileService = (*ProfileService)(nil)

// ProfileService exposes registered profiles and their chat history to
// the CLI and HTTP gateway.
type ProfileService struct {
	store   driven.ProfileStore
	chatLog driven.ChatLog
}

// NewProfileService creates a profile service. chatLog may be nil.
func NewProfileService(store driven.ProfileStore, chatLog driven.ChatLog) *ProfileService {
	return &ProfileService{store: store, chatLog: chatLog}
}

// Get returns the profile or domain.ErrNotFound.
func (s *ProfileService) Get(ctx context.Context, userID int64) (*domain.Profile, error) {
	return s.store.Get(ctx, userID)
}

// History returns the user's latest logged messages, oldest first.
func (s *ProfileService) History(ctx context.Context, userID int64, limit int) ([]domain.ChatEntry, error) {
	if s.chatLog == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	entries, err := s.chatLog.Recent(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	slices.Reverse(entries)
	return entries, nil
}
