// Package sqlite provides SQLite implementations of storage ports.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/panelkit/flyout/ports"
)

// DB wraps a SQLite database connection.
type DB struct {
	*sql.DB
}

// Open creates a new SQLite database connection.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	return &DB{DB: db}, nil
}

// Migrate creates the records table.
func (db *DB) Migrate() error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS records (
			panel      TEXT NOT NULL,
			id         TEXT NOT NULL,
			data       TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (panel, id)
		)
	`)
	if err != nil {
		return fmt.Errorf("create records table: %w", err)
	}
	return nil
}

// RecordStore implements ports.RecordStore using SQLite. Field values are
// stored as one JSON document per record.
type RecordStore struct {
	db *DB
}

// NewRecordStore creates a new record store.
func NewRecordStore(db *DB) *RecordStore {
	return &RecordStore{db: db}
}

// Get retrieves a record's field values.
func (s *RecordStore) Get(ctx context.Context, panel, id string) (map[string]any, error) {
	var data string

	err := s.db.DB.QueryRowContext(ctx,
		`SELECT data FROM records WHERE panel = ? AND id = ?`,
		panel, id,
	).Scan(&data)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}

	var values map[string]any
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, fmt.Errorf("decode record %s/%s: %w", panel, id, err)
	}

	return values, nil
}

// Save stores a record's sanitized field values, replacing any existing row.
func (s *RecordStore) Save(ctx context.Context, panel, id string, data map[string]any) error {
	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode record %s/%s: %w", panel, id, err)
	}

	_, err = s.db.DB.ExecContext(ctx,
		`INSERT INTO records (panel, id, data, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (panel, id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		panel, id, string(encoded), time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// Delete removes a record.
func (s *RecordStore) Delete(ctx context.Context, panel, id string) error {
	res, err := s.db.DB.ExecContext(ctx,
		`DELETE FROM records WHERE panel = ? AND id = ?`,
		panel, id,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ports.ErrNotFound
	}

	return nil
}
