package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
	"github.com/custodia-labs/weldsafe/internal/core/ports/driven"
)

// Ensure ChatLog implements the interface.
var _ driven.ChatLog = (*ChatLog)(nil)

// ChatLog keeps entries in append order.
type ChatLog struct {
	mu      sync.RWMutex
	entries []domain.ChatEntry
}

// NewChatLog creates an empty chat log.
func NewChatLog() *ChatLog {
	return &ChatLog{}
}

// Append stores one entry. A zero Time is set to now.
func (l *ChatLog) Append(_ context.Context, e domain.ChatEntry) error {
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	l.mu.Lock()
	l.entries = append(l.entries, e)
	l.mu.Unlock()
	return nil
}

// Recent returns up to limit entries for userID, newest first.
func (l *ChatLog) Recent(_ context.Context, userID int64, limit int) ([]domain.ChatEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []domain.ChatEntry
	for i := len(l.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if l.entries[i].UserID == userID {
			out = append(out, l.entries[i])
		}
	}
	return out, nil
}

// Len returns the number of stored entries.
func (l *ChatLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
