package world

import (
	"image/color"
	"math/rand"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/miniquest/miniquest/internal/geom"
	"github.com/miniquest/miniquest/internal/particle"
)

// TrailKind selects the particle a projectile sheds while flying.
type TrailKind uint8

const (
	TrailNone TrailKind = iota
	TrailArrow
	TrailFire
)

// Projectile is a transient moving hit volume.
type Projectile struct {
	// Owner identifies the attacker only. It may name an entity that no
	// longer exists.
	Owner       EntityID
	Damage      int
	Explosion   particle.ExplosionKind
	AboveGround bool
	HasShadow   bool

	pos     geom.Vec // centre of the sprite
	vel     geom.Vec
	size    float64
	colSize float64
	life    float64 // remaining travel distance in pixels
	lift    float64 // height of the sprite above its shadow
	trail   TrailKind
	col     color.RGBA

	consumed bool
}

// ProjectileSpec configures NewProjectile.
type ProjectileSpec struct {
	Owner       EntityID
	From        geom.Vec
	Dir         geom.Vec
	Speed       float64
	Range       float64
	Damage      int
	Size        float64
	ColSize     float64
	Lift        float64
	Color       color.RGBA
	Trail       TrailKind
	Explosion   particle.ExplosionKind
	AboveGround bool
	HasShadow   bool
}

// NewProjectile creates a projectile centred on spec.From flying along
// spec.Dir.
func NewProjectile(spec ProjectileSpec) *Projectile {
	return &Projectile{
		Owner:       spec.Owner,
		Damage:      spec.Damage,
		Explosion:   spec.Explosion,
		AboveGround: spec.AboveGround,
		HasShadow:   spec.HasShadow,
		pos:         spec.From,
		vel:         spec.Dir.Normalize().Scale(spec.Speed),
		size:        spec.Size,
		colSize:     spec.ColSize,
		life:        spec.Range,
		lift:        spec.Lift,
		trail:       spec.Trail,
		col:         spec.Color,
	}
}

// NewArrow creates a fast ground-level arrow.
func NewArrow(owner EntityID, from, dir geom.Vec, damage int) *Projectile {
	return NewProjectile(ProjectileSpec{
		Owner:     owner,
		From:      from,
		Dir:       dir,
		Speed:     320,
		Range:     420,
		Damage:    damage,
		Size:      8,
		ColSize:   6,
		Lift:      6,
		Color:     color.RGBA{R: 190, G: 160, B: 120, A: 255},
		Trail:     TrailArrow,
		Explosion: particle.ExplosionArrow,
		HasShadow: true,
	})
}

// NewFireBall creates a slow fireball that flies above ground level.
func NewFireBall(owner EntityID, from, dir geom.Vec, damage int) *Projectile {
	return NewProjectile(ProjectileSpec{
		Owner:       owner,
		From:        from,
		Dir:         dir,
		Speed:       180,
		Range:       520,
		Damage:      damage,
		Size:        14,
		ColSize:     10,
		Lift:        18,
		Color:       color.RGBA{R: 255, G: 120, B: 20, A: 255},
		Trail:       TrailFire,
		Explosion:   particle.ExplosionFireBall,
		AboveGround: true,
		HasShadow:   true,
	})
}

// Rect returns the sprite rect.
func (p *Projectile) Rect() geom.Rect {
	return geom.R(0, 0, p.size, p.size).WithCenter(p.pos.Sub(geom.Vec{Y: p.lift}))
}

// CollisionRect returns the hit volume on the ground plane.
func (p *Projectile) CollisionRect() geom.Rect {
	return geom.R(0, 0, p.colSize, p.colSize).WithCenter(p.pos)
}

// ShadowRect returns the footprint drawn beneath the projectile.
func (p *Projectile) ShadowRect() geom.Rect {
	return geom.R(0, 0, p.size*0.8, p.size*0.4).WithCenter(p.pos)
}

// CanHit reports whether the projectile may still deal damage.
func (p *Projectile) CanHit() bool { return !p.consumed }

// Consume marks the projectile as spent. It is removed on the next
// projectile pass and never damages anything again.
func (p *Projectile) Consume() { p.consumed = true }

// Life returns the remaining travel budget in pixels.
func (p *Projectile) Life() float64 { return p.life }

// hitBody pairs an entity with its collision rect for projectile tests.
type hitBody struct {
	id   EntityID
	rect geom.Rect
}

// advance moves the projectile by dt and reports whether it ended against
// geometry, map bounds, an entity other than its owner, or its range.
func (p *Projectile) advance(dt float64, static []geom.Rect, bounds geom.Rect, bodies []hitBody) bool {
	step := p.vel.Scale(dt)
	p.pos = p.pos.Add(step)
	p.life -= step.Len()
	if p.life <= 0 {
		return true
	}
	col := p.CollisionRect()
	if !bounds.Contains(p.pos) {
		return true
	}
	if !p.AboveGround && col.OverlapsAny(static) {
		return true
	}
	for _, b := range bodies {
		if b.id != p.Owner && col.Overlaps(b.rect) {
			return true
		}
	}
	return false
}

// trailParticle returns the particle shed this tick, or nil.
func (p *Projectile) trailParticle(rng *rand.Rand) particle.Particle {
	c := p.Rect().Center()
	switch p.trail {
	case TrailArrow:
		return particle.NewArrowTrail(rng, c.X, c.Y)
	case TrailFire:
		return particle.NewFireBallTrail(rng, c.X, c.Y, float64(2+rng.Intn(3)))
	default:
		return nil
	}
}

// Draw renders the projectile body.
func (p *Projectile) Draw(dst *ebiten.Image, view geom.Rect) {
	r := p.Rect()
	if !view.Overlaps(r) {
		return
	}
	vector.FillRect(dst, float32(r.X-view.X), float32(r.Y-view.Y), float32(r.W), float32(r.H), p.col, false)
}

var shadowColor = color.RGBA{A: 90}

// DrawShadow renders the ground shadow.
func (p *Projectile) DrawShadow(dst *ebiten.Image, view geom.Rect) {
	if !p.HasShadow {
		return
	}
	r := p.ShadowRect()
	if !view.Overlaps(r) {
		return
	}
	c := r.Center()
	vector.FillCircle(dst, float32(c.X-view.X), float32(c.Y-view.Y), float32(r.W/2), shadowColor, true)
}
