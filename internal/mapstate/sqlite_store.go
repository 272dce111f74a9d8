package mapstate

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure Go driver, no cgo
)

// SQLiteStore keeps records as JSON blobs in a scratch SQLite database.
type SQLiteStore struct {
	dir string
	db  *sql.DB
}

// NewSQLiteStore creates a scratch directory under parent holding a fresh
// database.
func NewSQLiteStore(parent string) (*SQLiteStore, error) {
	dir, err := os.MkdirTemp(parent, "miniquest-")
	if err != nil {
		return nil, fmt.Errorf("mapstate: create scratch dir: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "state.db"))
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("mapstate: open database: %w", err)
	}
	// One writer; the game loop is single threaded anyway.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{dir: dir, db: db}
	if err := s.migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("mapstate: migration failed: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS map_state (
			map_id     TEXT PRIMARY KEY,
			record     TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`)
	return err
}

// Dir returns the scratch directory.
func (s *SQLiteStore) Dir() string { return s.dir }

// Save upserts the record for mapID.
func (s *SQLiteStore) Save(mapID string, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("mapstate: encode %s: %w", mapID, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO map_state (map_id, record) VALUES (?, ?)
		 ON CONFLICT(map_id) DO UPDATE SET record = excluded.record, updated_at = CURRENT_TIMESTAMP`,
		mapID, string(data),
	)
	if err != nil {
		return fmt.Errorf("mapstate: save %s: %w", mapID, err)
	}
	return nil
}

// Load reads the record for mapID.
func (s *SQLiteStore) Load(mapID string) (*Record, error) {
	var data string
	err := s.db.QueryRow(`SELECT record FROM map_state WHERE map_id = ?`, mapID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && data == "") {
		return nil, fmt.Errorf("%w for %s", ErrNotFound, mapID)
	}
	if err != nil {
		return nil, fmt.Errorf("mapstate: load %s: %w", mapID, err)
	}
	var rec Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("%w for %s: %v", ErrCorrupt, mapID, err)
	}
	return &rec, nil
}

// Close closes the database and removes the scratch directory.
func (s *SQLiteStore) Close() error {
	var closeErr error
	if s.db != nil {
		closeErr = s.db.Close()
		s.db = nil
	}
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("mapstate: remove %s: %w", s.dir, err)
	}
	return closeErr
}
