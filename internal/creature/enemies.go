package creature

import (
	"image/color"
	"math/rand"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/miniquest/miniquest/internal/geom"
	"github.com/miniquest/miniquest/internal/world"
)

// Skeleton tuning.
const (
	skeletonSpeed    = 40.0
	skeletonAggro    = 160.0
	skeletonReach    = 22.0
	skeletonCooldown = 1.0
	skeletonDamage   = 2
)

// Skeleton chases the player once it comes close and slashes at melee range.
type Skeleton struct {
	*world.Body
	roam     wander
	cooldown float64
}

// NewSkeleton implements world.CreatureFactory.
func NewSkeleton(id world.EntityID, spawn world.SpawnInfo) world.Combatant {
	return &Skeleton{Body: world.NewBody(id, "Skeleton", spawn, 16, 24, 12, 8)}
}

// Step implements world.Combatant.
func (s *Skeleton) Step(ctx *world.StepContext) bool {
	s.Tick(ctx.DT)
	s.cooldown -= ctx.DT

	me, target := s.Rect().Center(), ctx.Player.Center()
	dist := me.Dist(target)
	var dir geom.Vec
	speed := skeletonSpeed
	switch {
	case dist < skeletonReach:
		s.Face(toward(me, target))
		return false
	case dist < skeletonAggro:
		dir = toward(me, target)
	default:
		dir = s.roam.next(ctx.DT, ctx.Rand)
		speed /= 2
	}
	return s.MoveBy(dir.Scale(speed*ctx.DT), ctx.Obstacles, ctx.Bounds)
}

// Attack implements world.Attacker with a short invisible slash.
func (s *Skeleton) Attack(player geom.Rect, _ []geom.Rect, _ *rand.Rand) *world.Projectile {
	me := s.Rect().Center()
	if s.cooldown > 0 || me.Dist(player.Center()) >= skeletonReach {
		return nil
	}
	s.cooldown = skeletonCooldown
	return world.NewProjectile(world.ProjectileSpec{
		Owner:   s.ID(),
		From:    me,
		Dir:     toward(me, player.Center()),
		Speed:   240,
		Range:   skeletonReach,
		Damage:  skeletonDamage,
		Size:    4,
		ColSize: 10,
		Color:   color.RGBA{R: 230, G: 230, B: 230, A: 120},
	})
}

// Draw implements world.Combatant.
func (s *Skeleton) Draw(dst *ebiten.Image, view geom.Rect) {
	sprite(dst, view, s.Body, color.RGBA{R: 220, G: 215, B: 200, A: 255})
}

// Archer tuning.
const (
	archerSpeed    = 30.0
	archerRange    = 240.0
	archerComfort  = 96.0
	archerCooldown = 1.8
	archerDamage   = 2
)

// Archer keeps its distance and looses arrows when it has a clear shot.
type Archer struct {
	*world.Body
	roam     wander
	cooldown float64
}

// NewArcher implements world.CreatureFactory.
func NewArcher(id world.EntityID, spawn world.SpawnInfo) world.Combatant {
	return &Archer{Body: world.NewBody(id, "Archer", spawn, 16, 24, 12, 8), cooldown: archerCooldown / 2}
}

// Step implements world.Combatant.
func (a *Archer) Step(ctx *world.StepContext) bool {
	a.Tick(ctx.DT)
	a.cooldown -= ctx.DT

	me, target := a.Rect().Center(), ctx.Player.Center()
	var dir geom.Vec
	switch dist := me.Dist(target); {
	case dist < archerComfort:
		dir = toward(target, me)
	case dist < archerRange:
		return false
	default:
		dir = a.roam.next(ctx.DT, ctx.Rand)
	}
	return a.MoveBy(dir.Scale(archerSpeed*ctx.DT), ctx.Obstacles, ctx.Bounds)
}

// Attack implements world.Attacker.
func (a *Archer) Attack(player geom.Rect, static []geom.Rect, _ *rand.Rand) *world.Projectile {
	me, target := a.Rect().Center(), player.Center()
	if a.cooldown > 0 || me.Dist(target) >= archerRange || !clearShot(me, target, static) {
		return nil
	}
	a.cooldown = archerCooldown
	return world.NewArrow(a.ID(), me, target.Sub(me), archerDamage)
}

// Draw implements world.Combatant.
func (a *Archer) Draw(dst *ebiten.Image, view geom.Rect) {
	sprite(dst, view, a.Body, color.RGBA{R: 70, G: 120, B: 60, A: 255})
}

// Dragon tuning.
const (
	dragonSpeed    = 15.0
	dragonRange    = 300.0
	dragonCooldown = 2.5
	dragonDamage   = 4
)

// Dragon drifts slowly and lobs fireballs over walls.
type Dragon struct {
	*world.Body
	roam     wander
	cooldown float64
}

// NewDragon implements world.CreatureFactory.
func NewDragon(id world.EntityID, spawn world.SpawnInfo) world.Combatant {
	return &Dragon{Body: world.NewBody(id, "Dragon", spawn, 48, 40, 36, 16), cooldown: dragonCooldown}
}

// Step implements world.Combatant.
func (d *Dragon) Step(ctx *world.StepContext) bool {
	d.Tick(ctx.DT)
	d.cooldown -= ctx.DT
	return d.MoveBy(d.roam.next(ctx.DT, ctx.Rand).Scale(dragonSpeed*ctx.DT), ctx.Obstacles, ctx.Bounds)
}

// Attack implements world.Attacker. Fireballs fly above ground so walls do
// not block them.
func (d *Dragon) Attack(player geom.Rect, _ []geom.Rect, _ *rand.Rand) *world.Projectile {
	me, target := d.Rect().Center(), player.Center()
	if d.cooldown > 0 || me.Dist(target) >= dragonRange {
		return nil
	}
	d.cooldown = dragonCooldown
	return world.NewFireBall(d.ID(), me, target.Sub(me), dragonDamage)
}

// Draw implements world.Combatant.
func (d *Dragon) Draw(dst *ebiten.Image, view geom.Rect) {
	sprite(dst, view, d.Body, color.RGBA{R: 150, G: 30, B: 30, A: 255})
}
