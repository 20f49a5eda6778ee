package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/meur/dattebayo/internal/models"
)

// PreferencesKey is the namespaced key all UI preferences live under.
const PreferencesKey = "persist:root"

// persistedRoot mirrors the stored document: one slice per state area.
type persistedRoot struct {
	Search models.Preferences `json:"search"`
}

// Store handles all database operations
type Store struct {
	db *sql.DB
}

// New creates a new Store with SQLite
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate runs database migrations
func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			session_id TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (session_id, key)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_kv_updated ON kv(updated_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// --- Key-value ---

// Get returns the raw value stored under key, or "" and false.
func (s *Store) Get(ctx context.Context, sessionID, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM kv WHERE session_id = ? AND key = ?
	`, sessionID, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Put stores value under key, replacing what was there.
func (s *Store) Put(ctx context.Context, sessionID, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (session_id, key, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, sessionID, key, value, time.Now())
	return err
}

// DeleteBefore removes entries not written since cutoff.
func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// --- Preferences ---

// LoadPreferences returns the session's saved preferences, or the defaults
// when nothing was saved yet.
func (s *Store) LoadPreferences(ctx context.Context, sessionID string) (models.Preferences, error) {
	value, ok, err := s.Get(ctx, sessionID, PreferencesKey)
	if err != nil {
		return models.Preferences{}, fmt.Errorf("load preferences: %w", err)
	}
	if !ok {
		return models.DefaultPreferences(), nil
	}

	root := persistedRoot{Search: models.DefaultPreferences()}
	if err := json.Unmarshal([]byte(value), &root); err != nil {
		return models.Preferences{}, fmt.Errorf("decode preferences: %w", err)
	}
	if root.Search.SortOption == "" {
		root.Search.SortOption = models.SortLoaded
	}
	return root.Search, nil
}

// SavePreferences overwrites the session's preferences.
func (s *Store) SavePreferences(ctx context.Context, sessionID string, p models.Preferences) error {
	data, err := json.Marshal(persistedRoot{Search: p})
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err := s.Put(ctx, sessionID, PreferencesKey, string(data)); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}
