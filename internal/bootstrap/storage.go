package bootstrap

import (
	"context"
	"fmt"

	"github.com/custodia-labs/weldsafe/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/weldsafe/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/weldsafe/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/weldsafe/internal/core/domain"
	"github.com/custodia-labs/weldsafe/internal/core/ports/driven"
	"github.com/custodia-labs/weldsafe/internal/core/services"
)

// storage is the profile store, chat log and dialogue sessions of one process.
type storage struct {
	profiles driven.ProfileStore
	chatLog  driven.ChatLog
	sessions driven.SessionStore
	close    func() error
}

func openStorage(ctx context.Context, cfg domain.StorageSettings) (*storage, error) {
	sessions := memory.NewSessionStore(services.DefaultSessionTTL)

	switch cfg.Driver {
	case domain.StorageSQLite, "":
		s, err := sqlite.NewStore(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return &storage{profiles: s, chatLog: s, sessions: sessions, close: s.Close}, nil

	case domain.StoragePostgres:
		s, err := postgres.NewStore(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return &storage{profiles: s, chatLog: s, sessions: sessions, close: s.Close}, nil

	case domain.StorageMemory:
		profiles := memory.NewProfileStore()
		return &storage{profiles: profiles, chatLog: memory.NewChatLog(), sessions: sessions, close: profiles.Close}, nil

	default:
		return nil, fmt.Errorf("%w: storage driver %q", domain.ErrUnsupportedType, cfg.Driver)
	}
}
