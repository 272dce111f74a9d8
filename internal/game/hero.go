package game

import (
	"image/color"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/miniquest/miniquest/internal/geom"
	"github.com/miniquest/miniquest/internal/world"
)

// Hero tuning.
const (
	heroSpeed     = 80.0 // px/s
	heroHP        = 10
	heroReach     = 14.0 // interaction reach beyond the sprite edge
	arrowCooldown = 0.4
	arrowDamage   = 1
	teleportFlash = 0.25 // seconds the hero is untouchable after a portal
)

var heroColour = color.RGBA{R: 208, G: 160, B: 64, A: 255}

// Hero is the player character. It reuses the creature body for movement,
// hp and the post-hit grace period.
type Hero struct {
	*world.Body

	god         bool
	dialogue    bool
	cooldown    float64
	teleportFor float64
	inventory   map[string]int
}

// NewHero creates the hero with its sprite top-left at pos.
func NewHero(pos geom.Vec) *Hero {
	return &Hero{
		Body:      world.NewBody(world.PlayerID, "Hero", world.SpawnInfo{X: pos.X, Y: pos.Y, HP: heroHP}, 16, 24, 12, 8),
		inventory: make(map[string]int),
	}
}

// Update advances the hero's timers and moves it by dir at walking speed.
func (h *Hero) Update(dt float64, dir geom.Vec, obstacles []geom.Rect, bounds geom.Rect) {
	h.Tick(dt)
	if h.cooldown > 0 {
		h.cooldown -= dt
	}
	if h.teleportFor > 0 {
		h.teleportFor -= dt
	}
	if h.dialogue || h.Dead() {
		return
	}
	h.MoveBy(dir.Normalize().Scale(heroSpeed*dt), obstacles, bounds)
}

// Fire looses an arrow in the facing direction, or returns nil while the bow
// is reloading.
func (h *Hero) Fire() *world.Projectile {
	if h.cooldown > 0 || h.dialogue || h.Dead() {
		return nil
	}
	h.cooldown = arrowCooldown
	return world.NewArrow(world.PlayerID, h.Rect().Center(), h.Facing(), arrowDamage)
}

// Reach returns the area in front of the hero that interaction checks use.
func (h *Hero) Reach() geom.Rect {
	r := h.Rect()
	f := h.Facing()
	return geom.R(r.X-heroReach/2, r.Y-heroReach/2, r.W+heroReach, r.H+heroReach).Moved(f.Scale(heroReach / 2))
}

// Dead reports whether hp ran out.
func (h *Hero) Dead() bool { return h.HP() <= 0 }

// SetGod toggles god mode.
func (h *Hero) SetGod(on bool) { h.god = on }

// God reports whether god mode is on.
func (h *Hero) God() bool { return h.god }

// SetDialogue freezes or releases the hero while a panel or message is open.
func (h *Hero) SetDialogue(on bool) { h.dialogue = on }

// Give adds items to the inventory.
func (h *Hero) Give(items ...string) {
	for _, it := range items {
		h.inventory[it]++
	}
}

// Count returns how many of item the hero carries.
func (h *Hero) Count(item string) int { return h.inventory[item] }

// Inventory returns the item names carried, sorted.
func (h *Hero) Inventory() []string {
	out := make([]string, 0, len(h.inventory))
	for it := range h.inventory {
		out = append(out, it)
	}
	sort.Strings(out)
	return out
}

// InDialogue implements world.Player.
func (h *Hero) InDialogue() bool { return h.dialogue }

// Teleporting implements world.Player.
func (h *Hero) Teleporting() bool { return h.teleportFor > 0 }

// Invulnerable implements world.Player.
func (h *Hero) Invulnerable() bool { return h.god || h.Body.Invulnerable() }

// HitByProjectile implements world.Player.
func (h *Hero) HitByProjectile(damage int) {
	if h.Invulnerable() || h.Dead() {
		return
	}
	h.TakeDamage(damage)
}

// Teleport implements world.Player.
func (h *Hero) Teleport(p geom.Vec) {
	h.Restore(p.X, p.Y, h.HP())
	h.teleportFor = teleportFlash
}

// Draw implements world.Player.
func (h *Hero) Draw(dst *ebiten.Image, view geom.Rect) {
	r := h.Rect()
	if !view.Overlaps(r) {
		return
	}
	col := heroColour
	switch {
	case h.Dead():
		col = color.RGBA{R: 90, G: 30, B: 30, A: 255}
	case h.Body.Invulnerable() || h.Teleporting():
		col = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	x, y := float32(r.X-view.X), float32(r.Y-view.Y)
	vector.FillRect(dst, x, y, float32(r.W), float32(r.H), col, false)
	if h.god {
		vector.StrokeRect(dst, x-1, y-1, float32(r.W)+2, float32(r.H)+2, 1, color.RGBA{R: 255, G: 215, A: 255}, false)
	}
	c := r.Center().Add(h.Facing().Scale(r.W / 3))
	vector.FillCircle(dst, float32(c.X-view.X), float32(c.Y-view.Y), 2, color.Black, false)
}
