package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/weldsafe/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/weldsafe/internal/core/domain"
	"github.com/custodia-labs/weldsafe/internal/core/ports/driven"
)

// Ensure Store implements the interfaces.
var (
	_ driven.ProfileStore = (*Store)(nil)
	_ driven.ChatLog      = (*Store)(nil)
)

// DefaultFile is the database file name used when only a directory is known.
const DefaultFile = "weldsafe.db"

// Store holds user profiles and the chat log in one SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the database at path and migrates it.
// If path is empty, defaults to ~/.weldsafe/weldsafe.db.
func NewStore(path string) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".weldsafe", DefaultFile)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate applies every NNN_name.up.sql newer than the recorded version.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Profiles ====================

// Upsert inserts or replaces a profile. UpdatedAt is set to now.
func (s *Store) Upsert(ctx context.Context, p *domain.Profile) error {
	if p == nil {
		return fmt.Errorf("%w: nil profile", domain.ErrInvalidInput)
	}
	p.UpdatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, first_name, last_name, phone, specialty, experience, username, ref_source, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			phone = excluded.phone,
			specialty = excluded.specialty,
			experience = excluded.experience,
			username = excluded.username,
			ref_source = CASE WHEN excluded.ref_source = '' THEN profiles.ref_source ELSE excluded.ref_source END,
			updated_at = excluded.updated_at
	`, p.UserID, p.FirstName, p.LastName, p.Phone, p.Specialty, string(p.Experience),
		p.Username, p.RefSource, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}

// Get returns the profile for userID or domain.ErrNotFound.
func (s *Store) Get(ctx context.Context, userID int64) (*domain.Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, first_name, last_name, phone, specialty, experience, username, ref_source, updated_at
		FROM profiles WHERE user_id = ?
	`, userID)

	var p domain.Profile
	var experience string
	if err := row.Scan(&p.UserID, &p.FirstName, &p.LastName, &p.Phone, &p.Specialty,
		&experience, &p.Username, &p.RefSource, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning profile: %w", err)
	}
	p.Experience = domain.Experience(experience)
	return &p, nil
}

// Exists reports whether userID has a profile.
func (s *Store) Exists(ctx context.Context, userID int64) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM profiles WHERE user_id = ?", userID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking profile: %w", err)
	}
	return n > 0, nil
}

// ==================== Chat log ====================

// Append stores one chat entry. A zero Time is set to now.
func (s *Store) Append(ctx context.Context, e domain.ChatEntry) error {
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chat_log (user_id, username, created_at, message_id, type, role, content)
		VALUES (?, ?, ?, ?, ?, ?, ?)
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
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, username, created_at, message_id, type, role, content
		FROM chat_log WHERE user_id = ?
		ORDER BY id DESC LIMIT ?
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
