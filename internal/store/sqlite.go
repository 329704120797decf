package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/pyittinehtaung/pth-client/internal/model/chat"
)

const (
	snapshotKey = "snapshot"

	createStateTable = `CREATE TABLE IF NOT EXISTS client_state (
		key   TEXT PRIMARY KEY,
		value BLOB NOT NULL
	)`
)

// SQLiteStore persists the snapshot in a single-row key/value table.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and if needed initializes) a sqlite-backed snapshot store.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}
	if _, err := db.Exec(createStateTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize state database: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Load implements Adapter.
func (s *SQLiteStore) Load(ctx context.Context) (*chat.Snapshot, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM client_state WHERE key = ?", snapshotKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot row: %w", err)
	}

	var snap chat.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot row: %w", err)
	}
	return &snap, nil
}

// Save implements Adapter.
func (s *SQLiteStore) Save(ctx context.Context, snap *chat.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO client_state (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		snapshotKey, raw)
	return err
}

// Close implements Adapter.
func (s *SQLiteStore) Close() error { return s.db.Close() }
