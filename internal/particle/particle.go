// Package particle holds the short-lived cosmetic emitters drawn over the
// world: walk dust, projectile trails, explosion sparks, orbiting motes and
// homing healing sparks. Every variant integrates its own motion and reports
// when it has expired.
package particle

import (
	"image/color"
	"math"
	"math/rand"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/miniquest/miniquest/internal/geom"
)

// Particle is one cosmetic emitter.
type Particle interface {
	// Update advances the particle by dt seconds. target is an optional
	// context rect (the player) used by homing variants. It returns true once
	// the particle has expired and should be dropped.
	Update(dt float64, target geom.Rect) bool
	Bounds() geom.Rect
	Draw(dst *ebiten.Image, view geom.Rect)
}

// Spark moves in a straight line and fades out over its lifetime.
type Spark struct {
	rect     geom.Rect
	vel      geom.Vec
	col      color.RGBA
	lifetime float64
	ageRate  float64 // lifetime units per second
	fadeRate float64 // alpha lost per lifetime unit
	gravity  float64 // upward drift applied to vel.Y per second
	alpha    float64
}

// NewSpark creates a fading square particle centred on (x, y).
func NewSpark(x, y float64, vel geom.Vec, col color.RGBA, size float64) *Spark {
	return &Spark{
		rect:     geom.R(0, 0, size, size).WithCenter(geom.Vec{X: x, Y: y}),
		vel:      vel,
		col:      col,
		ageRate:  120,
		fadeRate: 5,
		alpha:    255,
	}
}

// Update implements Particle.
func (s *Spark) Update(dt float64, _ geom.Rect) bool {
	s.vel.Y -= s.gravity * dt
	s.rect = s.rect.Moved(s.vel.Scale(dt))
	s.lifetime += s.ageRate * dt
	s.alpha = math.Max(255-s.lifetime*s.fadeRate, 0)
	return s.alpha <= 0
}

// Bounds implements Particle.
func (s *Spark) Bounds() geom.Rect { return s.rect }

// Alpha returns the current opacity (0-255).
func (s *Spark) Alpha() float64 { return s.alpha }

// Draw implements Particle.
func (s *Spark) Draw(dst *ebiten.Image, view geom.Rect) {
	drawSquare(dst, view, s.rect, s.col, s.alpha)
}

// NewWalk creates a dust puff kicked up inside the central half of an
// entity's collision box.
func NewWalk(rng *rand.Rand, collision geom.Rect) *Spark {
	c := collision.Center()
	ox := math.Floor(collision.W / 4)
	oy := math.Floor(collision.H / 4)
	x := math.Floor(c.X) + randRange(rng, -ox, ox)
	y := math.Floor(c.Y) + randRange(rng, -oy, oy)
	col := color.RGBA{
		R: uint8(100 + rng.Intn(66)),
		G: uint8(50 + rng.Intn(66)),
		B: uint8(10 + rng.Intn(36)),
		A: 255,
	}
	return NewSpark(x, y, geom.Vec{X: randRange(rng, -12, 12), Y: -10}, col, float64(2+rng.Intn(3)))
}

// NewFireBallTrail creates an ember left behind by a fireball.
func NewFireBallTrail(rng *rand.Rand, x, y, size float64) *Spark {
	col := color.RGBA{R: 255, G: uint8(rng.Intn(101)), A: 255}
	return NewSpark(x, y, geom.Vec{X: randRange(rng, -60, 60), Y: randRange(rng, -60, 60)}, col, size)
}

// NewArrowTrail creates a pale fleck left behind by an arrow.
func NewArrowTrail(rng *rand.Rand, x, y float64) *Spark {
	col := color.RGBA{
		R: uint8(200 + rng.Intn(56)),
		G: uint8(200 + rng.Intn(56)),
		B: uint8(200 + rng.Intn(56)),
		A: 255,
	}
	return NewSpark(x, y, geom.Vec{X: randRange(rng, -40, 40), Y: randRange(rng, -40, 20)}, col, float64(2+rng.Intn(4)))
}

// NewTeleport creates a smoke mote that drifts upward and fades slowly.
func NewTeleport(rng *rand.Rand, x, y float64) *Spark {
	angle := rng.Float64() * 2 * math.Pi
	speed := randRange(rng, 10, 30)
	v := uint8(50 + rng.Intn(151))
	s := NewSpark(x, y,
		geom.Vec{X: speed * math.Cos(angle), Y: speed * math.Sin(angle)},
		color.RGBA{R: v, G: v, B: v, A: 255},
		float64(3+rng.Intn(3)))
	s.ageRate = 15
	s.fadeRate = 9
	s.gravity = 10
	return s
}

// Orbit circles a centre point on a wobbling radius. It never expires on its
// own; the owner calls Expire when the thing it decorates goes away.
type Orbit struct {
	center       geom.Vec
	baseRadius   float64
	radiusOffset float64
	angle        float64
	speed        float64
	size         float64
	col          color.RGBA
	expired      bool
	rect         geom.Rect
}

// NewOrbit creates an orbiting mote.
func NewOrbit(rng *rand.Rand, center geom.Vec, speed, size float64, col color.RGBA, baseRadius, radiusOffset float64) *Orbit {
	o := &Orbit{
		center:       center,
		baseRadius:   baseRadius,
		radiusOffset: radiusOffset,
		angle:        rng.Float64() * 2 * math.Pi,
		speed:        speed,
		size:         size,
		col:          col,
	}
	o.place()
	return o
}

func (o *Orbit) place() {
	r := o.baseRadius + o.radiusOffset*math.Sin(2*o.angle)
	p := geom.Vec{X: o.center.X + r*math.Cos(o.angle), Y: o.center.Y + r*math.Sin(o.angle)}
	o.rect = geom.R(0, 0, o.size, o.size).WithCenter(p)
}

// Follow moves the orbit centre.
func (o *Orbit) Follow(c geom.Vec) { o.center = c }

// Expire marks the mote for removal on its next update.
func (o *Orbit) Expire() { o.expired = true }

// Update implements Particle.
func (o *Orbit) Update(dt float64, _ geom.Rect) bool {
	if o.expired {
		return true
	}
	o.angle += o.speed * dt
	o.place()
	return false
}

// Bounds implements Particle.
func (o *Orbit) Bounds() geom.Rect { return o.rect }

// Draw implements Particle.
func (o *Orbit) Draw(dst *ebiten.Image, view geom.Rect) {
	drawSquare(dst, view, o.rect, o.col, float64(o.col.A))
}

// Healing homes in on a point inside the target rect while swirling, and
// expires when it arrives.
type Healing struct {
	pos        geom.Vec
	relTarget  geom.Vec // offset of the goal from the target's top-left
	speed      float64
	swirlAngle float64
	swirlSpeed float64
	size       float64
	col        color.RGBA
	rng        *rand.Rand
}

// NewHealing creates a spark starting on a ring around a random point of target.
func NewHealing(rng *rand.Rand, target geom.Rect) *Healing {
	rel := geom.Vec{X: float64(rng.Intn(int(target.W) + 1)), Y: float64(rng.Intn(int(target.H) + 1))}
	goal := target.TopLeft().Add(rel)
	radius := float64(20 + rng.Intn(41))
	angle := rng.Float64() * 2 * math.Pi
	swirl := 10.0
	if rng.Intn(2) == 0 {
		swirl = -10
	}
	return &Healing{
		pos:        goal.Add(geom.Vec{X: radius * math.Cos(angle), Y: radius * math.Sin(angle)}),
		relTarget:  rel,
		speed:      float64(50 + rng.Intn(51)),
		swirlAngle: rng.Float64() * 2 * math.Pi,
		swirlSpeed: swirl,
		size:       float64(3 + rng.Intn(3)),
		col:        color.RGBA{R: uint8(150 + rng.Intn(51)), G: uint8(rng.Intn(26)), B: uint8(rng.Intn(26)), A: 255},
		rng:        rng,
	}
}

// Update implements Particle. target is the rect being homed on.
func (h *Healing) Update(dt float64, target geom.Rect) bool {
	goal := target.TopLeft().Add(h.relTarget)
	dir := goal.Sub(h.pos).Normalize().Scale(2)

	h.swirlAngle += h.swirlSpeed
	swirl := geom.Vec{X: -math.Sin(h.swirlAngle), Y: math.Cos(h.swirlAngle)}
	dir = dir.Add(swirl).Normalize()

	h.pos = h.pos.Add(dir.Scale(h.speed * dt))
	if goal.Dist(h.pos) <= h.speed*dt {
		return true
	}
	h.speed += 150 * dt
	h.swirlSpeed = h.swirlSpeed*0.9 + randRange(h.rng, -10, 10)*dt
	return false
}

// Bounds implements Particle.
func (h *Healing) Bounds() geom.Rect { return geom.R(h.pos.X, h.pos.Y, h.size, h.size) }

// Draw implements Particle.
func (h *Healing) Draw(dst *ebiten.Image, view geom.Rect) {
	drawSquare(dst, view, h.Bounds(), h.col, 255)
}

func drawSquare(dst *ebiten.Image, view, r geom.Rect, col color.RGBA, alpha float64) {
	if alpha <= 0 || !view.Overlaps(r) {
		return
	}
	// Premultiplied alpha: scale every channel.
	a := alpha / 255
	c := color.RGBA{
		R: uint8(float64(col.R) * a),
		G: uint8(float64(col.G) * a),
		B: uint8(float64(col.B) * a),
		A: uint8(alpha),
	}
	vector.FillRect(dst, float32(r.X-view.X), float32(r.Y-view.Y), float32(r.W), float32(r.H), c, false)
}

func randRange(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
