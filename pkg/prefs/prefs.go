// Package prefs persists the per-user language preference in SQLite.
package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	user_id INTEGER PRIMARY KEY,
	lang TEXT NOT NULL
);`

// Store is a durable user_id -> language mapping backed by one SQLite file.
// Writes are idempotent upserts; last write wins.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Open creates or opens the preference database at path and ensures the
// schema exists.
func Open(path string, log *slog.Logger) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("database path is required")
	}

	if log == nil {
		log = slog.Default()
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("verify database connection: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &Store{
		db:  db,
		log: log.With("component", "prefs.store"),
	}, nil
}

// Set records the language preference for userID, replacing any prior value.
func (s *Store) Set(ctx context.Context, userID int64, lang string) error {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return errors.New("language code is required")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (user_id, lang) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET lang = excluded.lang`,
		userID, lang,
	)
	if err != nil {
		return fmt.Errorf("store language preference: %w", err)
	}

	s.log.Debug("Stored language preference", "user_id", userID, "lang", lang)
	return nil
}

// Get returns the stored language for userID. The second result is false
// when no preference has been recorded.
func (s *Store) Get(ctx context.Context, userID int64) (string, bool, error) {
	var lang string
	err := s.db.QueryRowContext(ctx, `SELECT lang FROM users WHERE user_id = ?`, userID).Scan(&lang)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read language preference: %w", err)
	}

	return lang, true, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
