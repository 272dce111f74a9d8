package particle

import (
	"image/color"
	"math/rand"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/miniquest/miniquest/internal/geom"
)

// burstSize is the number of sparks in every explosion.
const burstSize = 20

// ExplosionKind selects the template an explosion is built from.
type ExplosionKind uint8

const (
	ExplosionNone ExplosionKind = iota
	ExplosionArrow
	ExplosionFireBall
)

// Explosion is a fixed burst of sparks created together at one point.
type Explosion struct {
	sparks []*Spark
}

// NewExplosion builds a burst of the given kind at (x, y). It returns nil for
// ExplosionNone.
func NewExplosion(kind ExplosionKind, rng *rand.Rand, x, y, size float64) *Explosion {
	var spread float64
	var tint func() color.RGBA
	switch kind {
	case ExplosionArrow:
		spread = 120
		tint = func() color.RGBA {
			return color.RGBA{
				R: uint8(100 + rng.Intn(51)),
				G: uint8(100 + rng.Intn(51)),
				B: uint8(100 + rng.Intn(51)),
				A: 255,
			}
		}
	case ExplosionFireBall:
		spread = 200
		tint = func() color.RGBA {
			return color.RGBA{R: uint8(200 + rng.Intn(56)), G: uint8(50 + rng.Intn(51)), A: 255}
		}
	default:
		return nil
	}
	e := &Explosion{sparks: make([]*Spark, 0, burstSize)}
	for i := 0; i < burstSize; i++ {
		v := geom.Vec{X: randRange(rng, -spread, spread), Y: randRange(rng, -spread, spread)}
		e.sparks = append(e.sparks, NewSpark(x, y, v, tint(), size))
	}
	return e
}

// Update advances every live spark and reports whether the whole burst has expired.
func (e *Explosion) Update(dt float64) bool {
	kept := e.sparks[:0]
	for _, s := range e.sparks {
		if !s.Update(dt, geom.Rect{}) {
			kept = append(kept, s)
		}
	}
	clear(e.sparks[len(kept):])
	e.sparks = kept
	return len(e.sparks) == 0
}

// Len returns the number of live sparks.
func (e *Explosion) Len() int { return len(e.sparks) }

// Draw renders the live sparks.
func (e *Explosion) Draw(dst *ebiten.Image, view geom.Rect) {
	for _, s := range e.sparks {
		s.Draw(dst, view)
	}
}
