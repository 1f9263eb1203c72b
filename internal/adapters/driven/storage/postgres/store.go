// Package postgres provides a PostgreSQL-backed profile store and chat log
// for deployments that share one database between instances.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
	"github.com/custodia-labs/weldsafe/internal/core/ports/driven"
)

// Ensure Store implements the interfaces.
var (
	_ driven.ProfileStore = (*Store)(nil)
	_ driven.ChatLog      = (*Store)(nil)
)

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
    user_id    BIGINT PRIMARY KEY,
    first_name TEXT NOT NULL DEFAULT '',
    last_name  TEXT NOT NULL DEFAULT '',
    phone      TEXT NOT NULL DEFAULT '',
    specialty  TEXT NOT NULL DEFAULT '',
    experience TEXT NOT NULL DEFAULT '',
    username   TEXT NOT NULL DEFAULT '',
    ref_source TEXT NOT NULL DEFAULT '',
    updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS chat_log (
    id         BIGSERIAL PRIMARY KEY,
    user_id    BIGINT NOT NULL,
    username   TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL,
    message_id BIGINT NOT NULL DEFAULT 0,
    type       TEXT NOT NULL,
    role       TEXT NOT NULL,
    content    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chat_log_user ON chat_log (user_id, id);
`

// Store holds user profiles and the chat log in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to dsn, pings the server, and creates the schema.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: postgres DSN is required", domain.ErrInvalidInput)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Upsert inserts or replaces a profile. An empty RefSource keeps the stored one.
func (s *Store) Upsert(ctx context.Context, p *domain.Profile) error {
	if p == nil {
		return fmt.Errorf("%w: nil profile", domain.ErrInvalidInput)
	}
	p.UpdatedAt = time.Now().UTC()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO profiles (user_id, first_name, last_name, phone, specialty, experience, username, ref_source, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			phone = EXCLUDED.phone,
			specialty = EXCLUDED.specialty,
			experience = EXCLUDED.experience,
			username = EXCLUDED.username,
			ref_source = CASE WHEN EXCLUDED.ref_source = '' THEN profiles.ref_source ELSE EXCLUDED.ref_source END,
			updated_at = EXCLUDED.updated_at
	`, p.UserID, p.FirstName, p.LastName, p.Phone, p.Specialty, string(p.Experience),
		p.Username, p.RefSource, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}

// Get returns the profile for userID or domain.ErrNotFound.
func (s *Store) Get(ctx context.Context, userID int64) (*domain.Profile, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT user_id, first_name, last_name, phone, specialty, experience, username, ref_source, updated_at
		FROM profiles WHERE user_id = $1
	`, userID)

	var p domain.Profile
	var experience string
	if err := row.Scan(&p.UserID, &p.FirstName, &p.LastName, &p.Phone, &p.Specialty,
		&experience, &p.Username, &p.RefSource, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning profile: %w", err)
	}
	p.Experience = domain.Experience(experience)
	return &p, nil
}

// Exists reports whether userID has a profile.
func (s *Store) Exists(ctx context.Context, userID int64) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM profiles WHERE user_id = $1)", userID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("checking profile: %w", err)
	}
	return ok, nil
}

// Append stores one chat entry. A zero Time is set to now.
func (s *Store) Append(ctx context.Context, e domain.ChatEntry) error {
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO chat_log (user_id, username, created_at, message_id, type, role, content)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, e.UserID, e.Username, e.Time, e.MessageID, string(e.Type), string(e.Role), e.Content)
	if err != nil {
		return fmt.Errorf("appending chat entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries for userID, newest first.
func (s *Store) Recent(ctx context.Context, userID int64, limit int) ([]domain.ChatEntry, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT user_id, username, created_at, message_id, type, role, content
		FROM chat_log WHERE user_id = $1
		ORDER BY id DESC LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying chat log: %w", err)
	}
	defer rows.Close()

	var out []domain.ChatEntry
	for rows.Next() {
		var e domain.ChatEntry
		var typ, role string
		if err := rows.Scan(&e.UserID, &e.Username, &e.Time, &e.MessageID, &typ, &role, &e.Content); err != nil {
			return nil, fmt.Errorf("scanning chat entry: %w", err)
		}
		e.Type = domain.MessageType(typ)
		e.Role = domain.ChatRole(role)
		out = append(out, e)
	}
	return out, rows.Err()
}
