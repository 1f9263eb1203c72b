package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
	"github.com/custodia-labs/weldsafe/internal/core/ports/driven"
)

// Ensure ProfileStore implements the interface.
var _ driven.ProfileStore = (*ProfileStore)(nil)

// ProfileStore keeps profiles in a map.
type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[int64]domain.Profile
}

// NewProfileStore creates an empty profile store.
func NewProfileStore() *ProfileStore {
	return &ProfileStore{profiles: make(map[int64]domain.Profile)}
}

// Upsert inserts or replaces p. An empty RefSource keeps the stored one.
func (s *ProfileStore) Upsert(_ context.Context, p *domain.Profile) error {
	if p == nil {
		return fmt.Errorf("%w: nil profile", domain.ErrInvalidInput)
	}
	p.UpdatedAt = time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *p
	if prev, ok := s.profiles[p.UserID]; ok && stored.RefSource == "" {
		stored.RefSource = prev.RefSource
	}
	s.profiles[p.UserID] = stored
	return nil
}

// Get returns a copy of the profile or domain.ErrNotFound.
func (s *ProfileStore) Get(_ context.Context, userID int64) (*domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

// Exists reports whether userID has a profile.
func (s *ProfileStore) Exists(_ context.Context, userID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.profiles[userID]
	return ok, nil
}

// Close is a no-op.
func (s *ProfileStore) Close() error {
	return nil
}
