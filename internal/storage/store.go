// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// SCHEMA
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS preferences (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS drafts (
	room_id    TEXT PRIMARY KEY,
	content    TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Preference keys.
const (
	keyUsername = "username"
	keyLastRoom = "last_room"
)

// =============================================================================
// STORE
// =============================================================================

// Store is the local state database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the state database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// =============================================================================
// PREFERENCES
// =============================================================================

// Preference returns the stored value for key, or "" when unset.
func (s *Store) Preference(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM preferences WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetPreference stores a value under key, replacing any previous value.
func (s *Store) SetPreference(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO preferences (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}

// Username returns the stored username, or "" when never set.
func (s *Store) Username() (string, error) {
	return s.Preference(keyUsername)
}

// SetUsername stores the username.
func (s *Store) SetUsername(name string) error {
	return s.SetPreference(keyUsername, name)
}

// LastRoom returns the id of the room that was open when the client last
// exited, or "".
func (s *Store) LastRoom() (string, error) {
	return s.Preference(keyLastRoom)
}

// SetLastRoom stores the open room's id.
func (s *Store) SetLastRoom(roomID string) error {
	return s.SetPreference(keyLastRoom, roomID)
}

// =============================================================================
// DRAFTS
// =============================================================================

// Draft returns the unsent input saved for a room, or "".
func (s *Store) Draft(roomID string) (string, error) {
	var content string
	err := s.db.QueryRow("SELECT content FROM drafts WHERE room_id = ?", roomID).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return content, nil
}

// SaveDraft stores unsent input for a room. Empty content deletes the
// draft.
func (s *Store) SaveDraft(roomID, content string) error {
	if content == "" {
		return s.DeleteDraft(roomID)
	}
	_, err := s.db.Exec(
		"INSERT INTO drafts (room_id, content, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP) "+
			"ON CONFLICT(room_id) DO UPDATE SET content = excluded.content, updated_at = CURRENT_TIMESTAMP",
		roomID, content,
	)
	return err
}

// DeleteDraft removes a room's draft.
func (s *Store) DeleteDraft(roomID string) error {
	_, err := s.db.Exec("DELETE FROM drafts WHERE room_id = ?", roomID)
	return err
}
