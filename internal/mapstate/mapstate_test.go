package mapstate

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

type scratch interface {
	Store
	Dir() string
}

func sampleRecord() *Record {
	return &Record{
		Chests: []ChestRecord{
			{Name: "chest_1", X: 32, Y: 48, W: 16, H: 16, Items: []string{"HealthPotion", "Arrow"}},
		},
		Enemies: []EntityRecord{
			{Type: "Skeleton", X: 100, Y: 120, HP: 20, StartX: 90, StartY: 110, StartHP: 30, Respawns: true, RespawnTime: 300},
			{Type: "Dragon", X: 400, Y: 40, HP: 250},
		},
		NPCs: []EntityRecord{
			{Type: "Cow", X: 10, Y: 10, HP: 5, Respawns: true, RespawnTime: 64},
		},
		Pending: []PendingRecord{
			{Type: "Archer", StartX: 5, StartY: 6, StartHP: 15, Respawns: true, RespawnTime: 128, Remaining: 40},
		},
	}
}

func eachBackend(t *testing.T, fn func(t *testing.T, s scratch)) {
	t.Helper()
	for _, backend := range []string{BackendFile, BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			st, err := Open(backend, t.TempDir())
			if err != nil {
				t.Fatalf("Open(%s): %v", backend, err)
			}
			s := st.(scratch)
			defer s.Close()
			fn(t, s)
		})
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	eachBackend(t, func(t *testing.T, s scratch) {
		want := sampleRecord()
		if err := s.Save("village", want); err != nil {
			t.Fatalf("Save: %v", err)
		}
		got, err := s.Load("village")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
		}
	})
}

func TestStore_SaveReplaces(t *testing.T) {
	eachBackend(t, func(t *testing.T, s scratch) {
		if err := s.Save("cave", sampleRecord()); err != nil {
			t.Fatalf("Save: %v", err)
		}
		next := &Record{NPCs: []EntityRecord{{Type: "Villager", X: 1, Y: 2, HP: 9}}}
		if err := s.Save("cave", next); err != nil {
			t.Fatalf("second Save: %v", err)
		}
		got, err := s.Load("cave")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if len(got.Enemies) != 0 || len(got.NPCs) != 1 || got.NPCs[0].Type != "Villager" {
			t.Fatalf("record not replaced: %+v", got)
		}
	})
}

func TestStore_MissingIsNotFound(t *testing.T) {
	eachBackend(t, func(t *testing.T, s scratch) {
		if _, err := s.Load("never-visited"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("err=%v, want ErrNotFound", err)
		}
	})
}

func TestStore_CloseRemovesScratch(t *testing.T) {
	eachBackend(t, func(t *testing.T, s scratch) {
		if err := s.Save("village", sampleRecord()); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if err := s.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
		if _, err := os.Stat(s.Dir()); !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("scratch dir still present after Close: %v", err)
		}
	})
}

func TestFileStore_EmptyAndCorruptFiles(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer s.Close()

	if err := os.WriteFile(filepath.Join(s.Dir(), "empty.json"), nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load("empty"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty file: err=%v, want ErrNotFound", err)
	}

	if err := os.WriteFile(filepath.Join(s.Dir(), "broken.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load("broken"); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("corrupt file: err=%v, want ErrCorrupt", err)
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	if _, err := Open("redis", t.TempDir()); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
