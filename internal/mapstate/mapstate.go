// Package mapstate persists the volatile state of maps the player has left
// so a return visit finds chests, creatures and respawn timers as they were.
//
// Records live in a scratch location owned by one process run. Close removes
// it; nothing survives into a future run.
package mapstate

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports that no record exists for a map.
	ErrNotFound = errors.New("mapstate: no record")
	// ErrCorrupt reports a record that exists but could not be decoded.
	ErrCorrupt = errors.New("mapstate: corrupt record")
)

// Record is the saved state of one map.
type Record struct {
	Chests  []ChestRecord   `json:"chests"`
	Enemies []EntityRecord  `json:"enemies"`
	NPCs    []EntityRecord  `json:"npcs"`
	Pending []PendingRecord `json:"pending"`
}

// ChestRecord is a chest with its remaining contents.
type ChestRecord struct {
	Name  string   `json:"name"`
	X     float64  `json:"x"`
	Y     float64  `json:"y"`
	W     float64  `json:"w"`
	H     float64  `json:"h"`
	Items []string `json:"items"`
}

// EntityRecord is a living enemy or npc. The Start fields are its respawn
// anchor, which may differ from where it currently stands.
type EntityRecord struct {
	Type        string  `json:"type"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	HP          int     `json:"hp"`
	StartX      float64 `json:"start_x"`
	StartY      float64 `json:"start_y"`
	StartHP     int     `json:"start_hp"`
	Respawns    bool    `json:"respawns"`
	RespawnTime int     `json:"respawn_time"`
}

// PendingRecord is a defeated creature waiting to respawn at its anchor.
type PendingRecord struct {
	Type        string  `json:"type"`
	StartX      float64 `json:"start_x"`
	StartY      float64 `json:"start_y"`
	StartHP     int     `json:"start_hp"`
	Respawns    bool    `json:"respawns"`
	RespawnTime int     `json:"respawn_time"`
	Remaining   int     `json:"remaining"`
}

// Store saves and loads records by map id.
type Store interface {
	Save(mapID string, rec *Record) error
	// Load returns ErrNotFound when the map was never saved.
	Load(mapID string) (*Record, error)
	// Close releases the store and removes its scratch location.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Open creates a scratch store of the named backend under parent. An empty
// parent selects the OS temp directory.
func Open(backend, parent string) (Store, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStore(parent)
	case BackendSQLite:
		return NewSQLiteStore(parent)
	default:
		return nil, fmt.Errorf("mapstate: unknown backend %q", backend)
	}
}
