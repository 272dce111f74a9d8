package world

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/miniquest/miniquest/internal/geom"
	"github.com/miniquest/miniquest/internal/mapstate"
)

func newStore(t *testing.T) *mapstate.FileStore {
	t.Helper()
	s, err := mapstate.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// twoMaps links "a" and "b" with a portal in the top-right corner of a and
// the bottom-right corner of b.
func twoMaps(a *MapBuilder) []SimOption {
	b := NewMapBuilder(20, 15, 16).
		Portal(288, 208, 32, 32, "a", 40, 40, "", "").
		Property("music", "cave")
	return []SimOption{
		WithMap("a", a.Portal(288, 0, 32, 32, "b", 32, 32, "", "")),
		WithMap("b", b),
	}
}

func (ts *TestSim) enterPortal(t *testing.T, r geom.Rect) {
	t.Helper()
	ts.Player.R = geom.R(r.X+2, r.Y+2, 16, 16)
	step(t, ts, 1)
}

func TestChangeMap_RoundTripRestoresState(t *testing.T) {
	a := NewMapBuilder(20, 15, 16).
		Enemy("Dummy", 100, 100, 5, false, 0).
		NPC("Idle", 160, 100, 4).
		Chest("c1", 200, 150, 16, 16, "Gold", "Key")
	opts := append(twoMaps(a), WithSimStore(newStore(t)))
	ts := newSim(t, opts...)

	ts.Map.Enemies()[0].TakeDamage(3)
	if in, ok := ts.Map.InteractAt(geom.R(200, 150, 4, 4)); !ok || len(in.Items) != 2 {
		t.Fatalf("chest interact = %+v, %v", in, ok)
	}
	ts.Map.AddProjectile(NewArrow(PlayerID, geom.Vec{X: 20, Y: 200}, geom.Vec{X: 1}, 1))

	ts.enterPortal(t, geom.R(288, 0, 32, 32))
	if ts.Map.ID() != "b" {
		t.Fatalf("map = %q, want b", ts.Map.ID())
	}
	if got := ts.Player.R.TopLeft(); got != (geom.Vec{X: 32, Y: 32}) {
		t.Errorf("player at %v, want (32,32)", got)
	}
	if len(ts.View.Maps) != 1 || ts.View.Maps[0] != [2]float64{320, 240} {
		t.Errorf("camera map changes = %v", ts.View.Maps)
	}
	if len(ts.View.Teleports) != 1 || ts.View.Teleports[0] != ts.Player.R.Center() {
		t.Errorf("camera teleports = %v, want player centre", ts.View.Teleports)
	}
	if n := len(ts.Map.Projectiles()); n != 0 {
		t.Errorf("projectiles carried across maps: %d", n)
	}
	if g, m, ab := ts.Map.ParticleCounts(); g+m+ab != 0 || ts.Map.Explosions() != 0 {
		t.Errorf("particles carried across maps: %d/%d/%d, explosions %d", g, m, ab, ts.Map.Explosions())
	}
	if got := ts.Music.Tracks; len(got) != 1 || got[0] != "cave" {
		t.Errorf("music = %v, want [cave]", got)
	}

	ts.enterPortal(t, geom.R(288, 208, 32, 32))
	if ts.Map.ID() != "a" {
		t.Fatalf("map = %q, want a", ts.Map.ID())
	}
	if n := len(ts.Map.Enemies()); n != 1 {
		t.Fatalf("enemies = %d, want 1", n)
	}
	e := ts.Map.Enemies()[0]
	if e.HP() != 2 || e.Rect().TopLeft() != (geom.Vec{X: 100, Y: 100}) {
		t.Errorf("enemy restored as hp=%d at %v, want hp=2 at (100,100)", e.HP(), e.Rect().TopLeft())
	}
	if e.Spawn().HP != 5 {
		t.Errorf("spawn hp = %d, want 5", e.Spawn().HP)
	}
	if n := len(ts.Map.NPCs()); n != 1 {
		t.Errorf("npcs = %d, want 1", n)
	}
	if c := ts.Map.Chests(); len(c) != 1 || c[0].Name != "c1" || len(c[0].Items()) != 0 {
		t.Errorf("chest not restored empty: %+v", c)
	}
	if ts.Map.BodyCount() != 2 {
		t.Errorf("body count = %d, want 2", ts.Map.BodyCount())
	}
	if !ts.Events.HasEntry(CatPortal, "transition", "b -> a (restored)") {
		t.Errorf("missing restored transition event\n%s", ts.Events.Format())
	}
}

func TestChangeMap_WithoutStoreSpawnsFresh(t *testing.T) {
	a := NewMapBuilder(20, 15, 16).Enemy("Dummy", 100, 100, 5, false, 0)
	ts := newSim(t, twoMaps(a)...)

	ts.Map.Enemies()[0].TakeDamage(3)
	ts.enterPortal(t, geom.R(288, 0, 32, 32))
	ts.enterPortal(t, geom.R(288, 208, 32, 32))

	if hp := ts.Map.Enemies()[0].HP(); hp != 5 {
		t.Errorf("hp = %d, want fresh 5", hp)
	}
}

func TestChangeMap_ClearedMapStaysCleared(t *testing.T) {
	a := NewMapBuilder(20, 15, 16).Enemy("Dummy", 100, 100, 2, false, 0)
	opts := append(twoMaps(a), WithSimStore(newStore(t)))
	ts := newSim(t, opts...)

	ts.Map.Enemies()[0].TakeDamage(2)
	step(t, ts, 1)
	ts.enterPortal(t, geom.R(288, 0, 32, 32))
	ts.enterPortal(t, geom.R(288, 208, 32, 32))

	if n := len(ts.Map.Enemies()); n != 0 {
		t.Errorf("enemies = %d after round trip, want the map to stay cleared", n)
	}
	if n := ts.Map.BodyCount(); n != 0 {
		t.Errorf("body count = %d, want 0", n)
	}
}

func TestChangeMap_PendingRespawnSurvives(t *testing.T) {
	a := NewMapBuilder(20, 15, 16).Enemy("Dummy", 100, 100, 2, true, 100)
	opts := append(twoMaps(a), WithSimStore(newStore(t)))
	ts := newSim(t, opts...)

	ts.Map.Enemies()[0].TakeDamage(2)
	step(t, ts, 1) // defeated, 99 ticks left
	ts.enterPortal(t, geom.R(288, 0, 32, 32))
	ts.enterPortal(t, geom.R(288, 208, 32, 32))

	if ts.Map.PendingRespawns() != 1 || len(ts.Map.Enemies()) != 0 {
		t.Fatalf("pending=%d enemies=%d after round trip", ts.Map.PendingRespawns(), len(ts.Map.Enemies()))
	}
	step(t, ts, 98)
	if len(ts.Map.Enemies()) != 0 {
		t.Fatalf("respawned early")
	}
	step(t, ts, 1)
	if len(ts.Map.Enemies()) != 1 {
		t.Fatalf("did not respawn")
	}
	e := ts.Map.Enemies()[0]
	if e.HP() != 2 || e.Rect().TopLeft() != (geom.Vec{X: 100, Y: 100}) {
		t.Errorf("respawned with hp=%d at %v", e.HP(), e.Rect().TopLeft())
	}
}

func TestChangeMap_MissingDestinationLeavesMapIntact(t *testing.T) {
	a := NewMapBuilder(20, 15, 16).
		Enemy("Dummy", 100, 100, 5, false, 0).
		Portal(288, 0, 32, 32, "nowhere", 0, 0, "", "")
	ts := newSim(t, WithMap("a", a))

	ts.Player.R = geom.R(290, 2, 16, 16)
	err := ts.Step(1)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("Step error = %v, want fs.ErrNotExist", err)
	}
	if ts.Map.ID() != "a" || len(ts.Map.Enemies()) != 1 || ts.Map.BodyCount() != 1 {
		t.Errorf("map disturbed: id=%q enemies=%d bodies=%d", ts.Map.ID(), len(ts.Map.Enemies()), ts.Map.BodyCount())
	}
	if ts.Player.R.X != 290 {
		t.Errorf("player moved to %v", ts.Player.R.TopLeft())
	}
}

func TestChangeMap_MapWithoutFloorIsRejected(t *testing.T) {
	broken := NewMapBuilder(4, 4, 16).Build()
	broken.Layers = broken.Layers[1:]

	a := NewMapBuilder(20, 15, 16).Portal(288, 0, 32, 32, "broken", 0, 0, "", "")
	ts := newSim(t, WithMap("a", a))
	ts.Maps["broken"] = broken

	ts.Player.R = geom.R(290, 2, 16, 16)
	if err := ts.Step(1); !errors.Is(err, ErrNoLayer) {
		t.Fatalf("Step error = %v, want ErrNoLayer", err)
	}
	if ts.Map.ID() != "a" {
		t.Errorf("map = %q, want a", ts.Map.ID())
	}
}

func TestChangeMap_RestoreSkipsUnknownTypes(t *testing.T) {
	store := newStore(t)
	rec := &mapstate.Record{
		Enemies: []mapstate.EntityRecord{
			{Type: "Ghost", X: 10, Y: 10, HP: 3, StartX: 10, StartY: 10, StartHP: 3},
			{Type: "Dummy", X: 50, Y: 60, HP: 1, StartX: 40, StartY: 40, StartHP: 4},
		},
		Pending: []mapstate.PendingRecord{{Type: "Wraith", StartHP: 2, Respawns: true, RespawnTime: 5, Remaining: 3}},
	}
	if err := store.Save("b", rec); err != nil {
		t.Fatal(err)
	}
	opts := append(twoMaps(NewMapBuilder(20, 15, 16)), WithSimStore(store))
	ts := newSim(t, opts...)

	ts.enterPortal(t, geom.R(288, 0, 32, 32))
	if ts.Map.ID() != "b" {
		t.Fatalf("map = %q, want b", ts.Map.ID())
	}
	if n := len(ts.Map.Enemies()); n != 1 {
		t.Fatalf("enemies = %d, want 1", n)
	}
	e := ts.Map.Enemies()[0]
	if e.HP() != 1 || e.Spawn().X != 40 || e.Rect().X != 50 {
		t.Errorf("restored dummy: hp=%d spawn=(%v,%v) at %v", e.HP(), e.Spawn().X, e.Spawn().Y, e.Rect().TopLeft())
	}
	if ts.Map.PendingRespawns() != 0 {
		t.Errorf("unknown pending type restored")
	}
}

func TestChangeMap_CorruptRecordFallsBackToAuthoring(t *testing.T) {
	store := newStore(t)
	ts := newSim(t, append(twoMaps(NewMapBuilder(20, 15, 16)), WithSimStore(store))...)
	ts.Maps["b"] = NewMapBuilder(20, 15, 16).
		Enemy("Dummy", 80, 80, 3, false, 0).
		Build()
	if err := os.WriteFile(filepath.Join(store.Dir(), "b.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	ts.enterPortal(t, geom.R(288, 0, 32, 32))
	if ts.Map.ID() != "b" || len(ts.Map.Enemies()) != 1 {
		t.Errorf("map %q with %d enemies, want fresh b", ts.Map.ID(), len(ts.Map.Enemies()))
	}
}

func TestPortal_RequiresQuests(t *testing.T) {
	a := NewMapBuilder(20, 15, 16).Portal(288, 0, 32, 32, "b", 32, 32, "find_herb", "meet_elder")
	ts := newSim(t, WithMap("a", a), WithMap("b", NewMapBuilder(20, 15, 16)))

	ts.enterPortal(t, geom.R(288, 0, 32, 32))
	if ts.Map.ID() != "a" {
		t.Fatalf("portal opened with no quests")
	}
	ts.Quests.Active["find_herb"] = true
	step(t, ts, 1)
	if ts.Map.ID() != "a" {
		t.Fatalf("portal opened with only the active requirement")
	}
	ts.Quests.Complete["meet_elder"] = true
	ts.Player.Dialogue = true
	step(t, ts, 1)
	if ts.Map.ID() != "a" {
		t.Fatalf("portal fired during dialogue")
	}
	ts.Player.Dialogue = false
	step(t, ts, 1)
	if ts.Map.ID() != "b" {
		t.Fatalf("portal did not open with both requirements met")
	}
}

func TestPortal_Open(t *testing.T) {
	q := &StubQuests{Active: map[string]bool{"a": true}, Complete: map[string]bool{"b": true}}
	tests := []struct {
		name   string
		portal Portal
		quests Quests
		want   bool
	}{
		{"no requirements", Portal{}, q, true},
		{"no requirements, no quest system", Portal{}, nil, true},
		{"requirements, no quest system", Portal{QuestActive: []string{"a"}}, nil, false},
		{"active met", Portal{QuestActive: []string{"a"}}, q, true},
		{"active unmet", Portal{QuestActive: []string{"a", "x"}}, q, false},
		{"complete met", Portal{QuestCompleted: []string{"b"}}, q, true},
		{"complete is not active", Portal{QuestActive: []string{"b"}}, q, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.portal.Open(tt.quests); got != tt.want {
				t.Errorf("Open = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSnapshot_CapturesLiveState(t *testing.T) {
	ts := newSim(t, WithMap("a", NewMapBuilder(20, 15, 16).
		Enemy("Dummy", 100, 100, 5, true, 30).
		Enemy("Dummy", 150, 100, 2, true, 30).
		Chest("c1", 200, 150, 16, 16, "Gold")))

	ts.Map.Enemies()[0].TakeDamage(1)
	ts.Map.Enemies()[1].TakeDamage(2)
	step(t, ts, 1)

	rec := ts.Map.Snapshot()
	if len(rec.Enemies) != 1 || rec.Enemies[0].HP != 4 || rec.Enemies[0].StartHP != 5 {
		t.Errorf("enemies = %+v", rec.Enemies)
	}
	if len(rec.Pending) != 1 || rec.Pending[0].Remaining != 29 || rec.Pending[0].StartX != 150 {
		t.Errorf("pending = %+v", rec.Pending)
	}
	if len(rec.Chests) != 1 || rec.Chests[0].Items[0] != "Gold" {
		t.Errorf("chests = %+v", rec.Chests)
	}
}
