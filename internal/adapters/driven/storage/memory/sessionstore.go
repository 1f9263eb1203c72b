package memory

import (
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
	"github.com/custodia-labs/weldsafe/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

// Session lifetime defaults.
const (
	DefaultSessionTTL      = time.Hour
	DefaultCleanupInterval = 10 * time.Minute
)

// SessionStore keeps registration dialogues that expire after a TTL.
type SessionStore struct {
	cache *cache.Cache
}

// NewSessionStore creates a store whose sessions expire after ttl.
// ttl <= 0 uses DefaultSessionTTL.
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{cache: cache.New(ttl, DefaultCleanupInterval)}
}

// Get returns a copy of the live session for userID. Changes to it take
// effect only through Put.
func (s *SessionStore) Get(userID int64) (*domain.DialogueSession, bool) {
	if x, found := s.cache.Get(key(userID)); found {
		session := x.(domain.DialogueSession)
		return &session, true
	}
	return nil, false
}

// Put stores a copy of the session and restarts its TTL.
func (s *SessionStore) Put(userID int64, session *domain.DialogueSession) {
	if session == nil {
		return
	}
	s.cache.Set(key(userID), *session, cache.DefaultExpiration)
}

// Delete ends the session.
func (s *SessionStore) Delete(userID int64) {
	s.cache.Delete(key(userID))
}

func key(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
