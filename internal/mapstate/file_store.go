package mapstate

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps one JSON file per map in a private temp directory.
type FileStore struct {
	dir   string
	mutex sync.Mutex
}

// NewFileStore creates a fresh scratch directory under parent.
func NewFileStore(parent string) (*FileStore, error) {
	dir, err := os.MkdirTemp(parent, "miniquest-")
	if err != nil {
		return nil, fmt.Errorf("mapstate: create scratch dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the scratch directory.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(mapID string) string {
	return filepath.Join(s.dir, url.PathEscape(mapID)+".json")
}

// Save writes rec, replacing any earlier record for mapID.
func (s *FileStore) Save(mapID string, rec *Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("mapstate: encode %s: %w", mapID, err)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	tmp := s.path(mapID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("mapstate: write %s: %w", mapID, err)
	}
	if err := os.Rename(tmp, s.path(mapID)); err != nil {
		return fmt.Errorf("mapstate: commit %s: %w", mapID, err)
	}
	return nil
}

// Load reads the record for mapID. A missing or empty file is ErrNotFound.
func (s *FileStore) Load(mapID string) (*Record, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	data, err := os.ReadFile(s.path(mapID))
	if errors.Is(err, os.ErrNotExist) || (err == nil && len(data) == 0) {
		return nil, fmt.Errorf("%w for %s", ErrNotFound, mapID)
	}
	if err != nil {
		return nil, fmt.Errorf("mapstate: read %s: %w", mapID, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w for %s: %v", ErrCorrupt, mapID, err)
	}
	return &rec, nil
}

// Close removes the scratch directory and everything in it.
func (s *FileStore) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("mapstate: remove %s: %w", s.dir, err)
	}
	return nil
}
