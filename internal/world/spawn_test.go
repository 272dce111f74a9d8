package world

import (
	"math"
	"math/rand"
	"testing"

	"github.com/miniquest/miniquest/internal/geom"
)

// randomMap scatters walls, creatures, a chest, a sign and a roof patch
// over a 20x15 map using rng. It returns the roof in pixels.
func randomMap(rng *rand.Rand) (*MapBuilder, geom.Rect) {
	b := NewMapBuilder(20, 15, 16)
	for range 2 + rng.Intn(4) {
		b.Wall(float64(rng.Intn(280)), float64(rng.Intn(200)), float64(8+rng.Intn(56)), float64(8+rng.Intn(56)))
	}
	for range 1 + rng.Intn(4) {
		b.Enemy("Dummy", float64(rng.Intn(300)), float64(rng.Intn(220)), 3, false, 0)
	}
	b.NPC("Idle", float64(rng.Intn(300)), float64(rng.Intn(220)), 3)
	b.Chest("c1", float64(rng.Intn(300)), float64(rng.Intn(220)), 16, 16)
	b.Object("SignPostObject", float64(rng.Intn(290)), float64(rng.Intn(200)), 24, 32)

	col, row := rng.Intn(15), rng.Intn(11)
	cols, rows := 1+rng.Intn(5), 1+rng.Intn(4)
	for c := col; c < col+cols; c++ {
		for r := row; r < row+rows; r++ {
			b.AboveGround(c, r)
		}
	}
	return b, geom.R(float64(col*16), float64(row*16), float64(cols*16), float64(rows*16))
}

func TestRandomSpawn_AvoidsEverything(t *testing.T) {
	const w, h = 16, 12
	for seed := int64(1); seed <= 20; seed++ {
		rng := rand.New(rand.NewSource(seed)) // #nosec G404 -- test layout
		b, roof := randomMap(rng)
		px, py := float64(rng.Intn(300)), float64(rng.Intn(220))
		ts := newSim(t, WithMap("random", b), WithSeed(seed), WithPlayerAt(px, py))
		step(t, ts, 1)
		m := ts.Map

		for i := range 200 {
			p, ok := m.RandomSpawn(w, h)
			if !ok {
				t.Fatalf("seed %d draw %d: no spot found", seed, i)
			}
			if p.X != math.Trunc(p.X) || p.Y != math.Trunc(p.Y) {
				t.Fatalf("seed %d: non-integer position %v", seed, p)
			}
			r := geom.R(p.X, p.Y, w, h)
			if r.X < 0 || r.Y < 0 || r.Right() > 320 || r.Bottom() > 240 {
				t.Fatalf("seed %d: %v outside the map", seed, r)
			}
			if r.OverlapsAny(m.Blockers()) || r.OverlapsAny(m.EntityRects()) {
				t.Fatalf("seed %d: %v overlaps geometry or an entity", seed, r)
			}
			if r.Overlaps(ts.Player.CollisionRect()) {
				t.Fatalf("seed %d: %v overlaps the player", seed, r)
			}
			for _, c := range m.Chests() {
				if r.Overlaps(c.Rect()) {
					t.Fatalf("seed %d: %v overlaps chest %v", seed, r, c.Rect())
				}
			}
			for _, o := range m.Objects() {
				if r.Overlaps(o.Rect()) {
					t.Fatalf("seed %d: %v overlaps %s", seed, r, o.TypeName())
				}
			}
			if r.Overlaps(roof) {
				t.Fatalf("seed %d: %v overlaps the roof %v", seed, r, roof)
			}
		}
	}
}

func TestRandomSpawn_FullMapGivesUp(t *testing.T) {
	ts := newSim(t, WithMap("walled", NewMapBuilder(4, 4, 16).Wall(0, 0, 64, 64)))
	if p, ok := ts.Map.RandomSpawn(8, 8); ok {
		t.Fatalf("found %v on a fully walled map", p)
	}
	if _, ok := ts.Map.RandomSpawn(100, 8); ok {
		t.Fatalf("found a spot for a rect wider than the map")
	}
}

func TestScatteredObject_PlacedOffRoofs(t *testing.T) {
	b := NewMapBuilder(10, 10, 16).Object("EnchantedHerbObject", 0, 0, 33, 22)
	for col := range 10 {
		for row := range 10 {
			if row < 5 {
				b.AboveGround(col, row)
			}
		}
	}
	ts := newSim(t, WithMap("garden", b), WithPlayerAt(140, 140))

	objs := ts.Map.Objects()
	if len(objs) != 1 || objs[0].TypeName() != "EnchantedHerbObject" {
		t.Fatalf("objects = %v", objs)
	}
	if r := objs[0].Rect(); r.Y < 80 {
		t.Errorf("herb %v placed under the roof", r)
	}
	if g, _, _ := ts.Map.ParticleCounts(); g < 10 || g > 30 {
		t.Errorf("herb orbits = %d, want 10..30", g)
	}
}

func TestVisibleSpan(t *testing.T) {
	tests := []struct {
		name string
		view geom.Rect
		want tileSpan
	}{
		{"origin", geom.R(0, 0, 320, 240), tileSpan{0, 21, 0, 16}},
		{"offset", geom.R(40, 20, 100, 50), tileSpan{2, 9, 1, 5}},
		{"left of map", geom.R(-50, -50, 100, 100), tileSpan{0, 4, 0, 4}},
		{"past the edge", geom.R(1500, 1500, 320, 240), tileSpan{93, 100, 93, 100}},
		{"outside entirely", geom.R(2000, 0, 10, 10), tileSpan{125, 100, 0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := visibleSpan(tt.view, 16, 16, 100, 100); got != tt.want {
				t.Errorf("visibleSpan(%v) = %+v, want %+v", tt.view, got, tt.want)
			}
		})
	}
}
