// Package creature holds the concrete enemies and npcs that maps spawn by
// type name.
package creature

import (
	"image/color"
	"math/rand"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/miniquest/miniquest/internal/geom"
	"github.com/miniquest/miniquest/internal/world"
)

// Register adds every creature type to r.
func Register(r *world.Registry) {
	r.RegisterCreature("Skeleton", world.KindEnemy, NewSkeleton)
	r.RegisterCreature("Archer", world.KindEnemy, NewArcher)
	r.RegisterCreature("Dragon", world.KindEnemy, NewDragon)
	r.RegisterCreature("Cow", world.KindNPC, NewCow)
	r.RegisterCreature("Villager", world.KindNPC, NewVillager)
}

// sprite draws a body as a filled box with a small facing mark and a white
// flash during the hit grace period.
func sprite(dst *ebiten.Image, view geom.Rect, b *world.Body, col color.RGBA) {
	r := b.Rect()
	if !view.Overlaps(r) {
		return
	}
	if b.Invulnerable() {
		col = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	x, y := float32(r.X-view.X), float32(r.Y-view.Y)
	vector.FillRect(dst, x, y, float32(r.W), float32(r.H), col, false)

	c := r.Center().Add(b.Facing().Scale(r.W / 3))
	vector.FillCircle(dst, float32(c.X-view.X), float32(c.Y-view.Y), 2, color.Black, false)
	healthBar(dst, x, y-4, float32(r.W), b)
}

func healthBar(dst *ebiten.Image, x, y, w float32, b *world.Body) {
	if b.HP() >= b.MaxHP() || b.MaxHP() <= 0 {
		return
	}
	frac := float32(max(b.HP(), 0)) / float32(b.MaxHP())
	vector.FillRect(dst, x, y, w, 2, color.RGBA{R: 60, A: 200}, false)
	vector.FillRect(dst, x, y, w*frac, 2, color.RGBA{R: 220, G: 40, B: 40, A: 255}, false)
}

// toward returns the unit vector from a to b, or zero when they coincide.
func toward(a, b geom.Vec) geom.Vec {
	return b.Sub(a).Normalize()
}

// wander picks a new random heading every few seconds and idles on some
// turns.
type wander struct {
	heading geom.Vec
	timer   float64
}

func (w *wander) next(dt float64, rng *rand.Rand) geom.Vec {
	w.timer -= dt
	if w.timer <= 0 {
		w.timer = 2 + rng.Float64()*2
		if rng.Intn(3) == 0 {
			w.heading = geom.Vec{}
		} else {
			w.heading = geom.Vec{X: rng.Float64()*2 - 1, Y: rng.Float64()*2 - 1}.Normalize()
		}
	}
	return w.heading
}

// clearShot reports whether the line of fire from a to b crosses none of
// static.
func clearShot(a, b geom.Vec, static []geom.Rect) bool {
	return !geom.Blocked(a, b, static)
}
