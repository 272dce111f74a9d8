package particle

import (
	"image/color"
	"math/rand"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/miniquest/miniquest/internal/geom"
)

func TestSpark_FadesAndExpires(t *testing.T) {
	s := NewSpark(100, 100, geom.Vec{X: 50, Y: 0}, color.RGBA{R: 255, A: 255}, 4)
	if s.Update(0.1, geom.Rect{}) {
		t.Fatal("spark expired too early")
	}
	if got := s.Bounds().Center().X; got < 104.9 || got > 105.1 {
		t.Fatalf("spark x=%v, want ~105 after 0.1s at 50px/s", got)
	}
	if s.Alpha() >= 255 {
		t.Fatal("spark should have started fading")
	}
	expired := false
	for i := 0; i < 10 && !expired; i++ {
		expired = s.Update(0.05, geom.Rect{})
	}
	if !expired {
		t.Fatalf("spark still alive with alpha=%v", s.Alpha())
	}
}

func TestTeleport_DriftsUpAndOutlivesSpark(t *testing.T) {
	rng := rand.New(rand.NewSource(3)) // #nosec G404 -- test
	tp := NewTeleport(rng, 0, 0)
	startVY := tp.vel.Y
	if tp.Update(1.0, geom.Rect{}) {
		t.Fatal("teleport smoke should survive one second")
	}
	if tp.vel.Y >= startVY {
		t.Fatalf("vel.Y=%v did not drift upward from %v", tp.vel.Y, startVY)
	}
	if !tp.Update(1.0, geom.Rect{}) {
		t.Fatal("teleport smoke should expire within two seconds")
	}
}

func TestWalk_SpawnsInsideCollisionCore(t *testing.T) {
	rng := rand.New(rand.NewSource(11)) // #nosec G404 -- test
	box := geom.R(40, 80, 32, 16)
	for i := 0; i < 200; i++ {
		c := NewWalk(rng, box).Bounds().Center()
		if c.X < 48 || c.X > 64 || c.Y < 84 || c.Y > 92 {
			t.Fatalf("walk particle centre %v outside central half of %+v", c, box)
		}
	}
}

func TestOrbit_NeverExpiresUntilTold(t *testing.T) {
	rng := rand.New(rand.NewSource(5)) // #nosec G404 -- test
	o := NewOrbit(rng, geom.Vec{X: 50, Y: 50}, 2, 3, color.RGBA{R: 200, B: 200, A: 150}, 20, 5)
	for i := 0; i < 1000; i++ {
		if o.Update(0.016, geom.Rect{}) {
			t.Fatal("orbit expired on its own")
		}
		d := o.Bounds().Center().Dist(geom.Vec{X: 50, Y: 50})
		if d < 14.9 || d > 25.1 {
			t.Fatalf("orbit radius %v outside [15,25]", d)
		}
	}
	o.Follow(geom.Vec{X: 500, Y: 500})
	o.Update(0.016, geom.Rect{})
	if d := o.Bounds().Center().Dist(geom.Vec{X: 500, Y: 500}); d > 25.1 {
		t.Fatalf("orbit did not follow centre: distance %v", d)
	}
	o.Expire()
	if !o.Update(0.016, geom.Rect{}) {
		t.Fatal("expired orbit should report expiry")
	}
}

func TestHealing_ArrivesAtMovingTarget(t *testing.T) {
	rng := rand.New(rand.NewSource(21)) // #nosec G404 -- test
	target := geom.R(200, 200, 24, 32)
	h := NewHealing(rng, target)
	for i := 0; i < 64*10; i++ {
		target = target.Moved(geom.Vec{X: 0.5})
		if h.Update(1.0/64, target) {
			return
		}
	}
	t.Fatal("healing spark never reached its target")
}

func TestExplosion_ExpiresWhenAllSparksExpire(t *testing.T) {
	rng := rand.New(rand.NewSource(1)) // #nosec G404 -- test
	if NewExplosion(ExplosionNone, rng, 0, 0, 3) != nil {
		t.Fatal("ExplosionNone should build nothing")
	}
	for _, kind := range []ExplosionKind{ExplosionArrow, ExplosionFireBall} {
		e := NewExplosion(kind, rng, 10, 10, 3)
		if e.Len() != burstSize {
			t.Fatalf("kind %d: %d sparks, want %d", kind, e.Len(), burstSize)
		}
		if e.Update(0.1) {
			t.Fatalf("kind %d expired too early", kind)
		}
		if !e.Update(1.0) {
			t.Fatalf("kind %d should expire once every spark faded", kind)
		}
		if e.Len() != 0 {
			t.Fatalf("kind %d: %d sparks left after expiry", kind, e.Len())
		}
	}
}

// stub counts its updates and expires on demand.
type stub struct {
	id      int
	updates int
	expire  bool
}

func (s *stub) Update(float64, geom.Rect) bool {
	s.updates++
	return s.expire
}

func (s *stub) Bounds() geom.Rect             { return geom.Rect{} }
func (s *stub) Draw(*ebiten.Image, geom.Rect) {}

func TestLayer_EvictsOldestAtCeiling(t *testing.T) {
	l := NewLayer(3)
	var all []*stub
	for i := 0; i < 5; i++ {
		s := &stub{id: i}
		all = append(all, s)
		l.Add(s)
	}
	if l.Len() != 3 {
		t.Fatalf("Len=%d, want 3", l.Len())
	}
	if l.Evicted() != 2 {
		t.Fatalf("Evicted=%d, want 2", l.Evicted())
	}
	l.Update(0.1, geom.Rect{})
	for i, s := range all {
		wantUpdated := i >= 2
		if (s.updates > 0) != wantUpdated {
			t.Fatalf("stub %d updated=%v, want %v", i, s.updates > 0, wantUpdated)
		}
	}
}

func TestLayer_UpdateVisitsEachOnceAndDropsExpired(t *testing.T) {
	l := NewLayer(0)
	if l.Cap() != DefaultMaxPerLayer {
		t.Fatalf("Cap=%d, want default %d", l.Cap(), DefaultMaxPerLayer)
	}
	var all []*stub
	for i := 0; i < 10; i++ {
		s := &stub{id: i, expire: i%2 == 0}
		all = append(all, s)
		l.Add(s)
	}
	l.Update(0.1, geom.Rect{})
	for _, s := range all {
		if s.updates != 1 {
			t.Fatalf("stub %d updated %d times, want 1", s.id, s.updates)
		}
	}
	if l.Len() != 5 {
		t.Fatalf("Len=%d after dropping expired, want 5", l.Len())
	}
	l.Clear()
	if l.Len() != 0 {
		t.Fatal("Clear left particles behind")
	}
}
