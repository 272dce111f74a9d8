package creature

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/miniquest/miniquest/internal/geom"
	"github.com/miniquest/miniquest/internal/world"
)

const cowSpeed = 20.0

// Cow grazes around the field.
type Cow struct {
	*world.Body
	roam wander
}

// NewCow implements world.CreatureFactory.
func NewCow(id world.EntityID, spawn world.SpawnInfo) world.Combatant {
	return &Cow{Body: world.NewBody(id, "Cow", spawn, 32, 24, 26, 10)}
}

// Step implements world.Combatant.
func (c *Cow) Step(ctx *world.StepContext) bool {
	c.Tick(ctx.DT)
	return c.MoveBy(c.roam.next(ctx.DT, ctx.Rand).Scale(cowSpeed*ctx.DT), ctx.Obstacles, ctx.Bounds)
}

// Draw implements world.Combatant.
func (c *Cow) Draw(dst *ebiten.Image, view geom.Rect) {
	sprite(dst, view, c.Body, color.RGBA{R: 240, G: 240, B: 235, A: 255})
}

const villagerNotice = 48.0

// Villager stands still and turns to face a nearby player.
type Villager struct {
	*world.Body
}

// NewVillager implements world.CreatureFactory.
func NewVillager(id world.EntityID, spawn world.SpawnInfo) world.Combatant {
	return &Villager{Body: world.NewBody(id, "Villager", spawn, 16, 24, 12, 8)}
}

// Step implements world.Combatant.
func (v *Villager) Step(ctx *world.StepContext) bool {
	v.Tick(ctx.DT)
	me, target := v.Rect().Center(), ctx.Player.Center()
	if me.Dist(target) < villagerNotice {
		v.Face(toward(me, target))
	}
	return false
}

// Draw implements world.Combatant.
func (v *Villager) Draw(dst *ebiten.Image, view geom.Rect) {
	sprite(dst, view, v.Body, color.RGBA{R: 60, G: 90, B: 200, A: 255})
}
