package world

import (
	"math/rand"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/miniquest/miniquest/internal/geom"
)

// EntityID identifies a simulated entity for the lifetime of one map load.
// Projectiles hold an owner's EntityID instead of a pointer, so a dead owner
// is never kept alive or re-entered.
type EntityID uint64

// PlayerID is reserved for the player.
const PlayerID EntityID = 1

// Kind is the collection a registered type lives in.
type Kind uint8

const (
	KindEnemy Kind = iota + 1
	KindNPC
)

func (k Kind) String() string {
	switch k {
	case KindEnemy:
		return "enemy"
	case KindNPC:
		return "npc"
	default:
		return "unknown"
	}
}

// SpawnInfo is the authored spawn anchor of a creature.
type SpawnInfo struct {
	X, Y        float64
	HP          int
	Respawns    bool
	RespawnTime int // ticks spent in the respawn-holding set
}

// StepContext is what a creature sees while deciding how to move.
type StepContext struct {
	DT        float64
	// Obstacles holds static geometry and every other entity's collision
	// rect. The stepping creature's own rect is excluded.
	Obstacles []geom.Rect
	Bounds    geom.Rect
	Player    geom.Rect
	Rand      *rand.Rand
}

// Combatant is an enemy or npc simulated by the map.
type Combatant interface {
	ID() EntityID
	TypeName() string
	Rect() geom.Rect
	CollisionRect() geom.Rect
	HP() int
	TakeDamage(amount int)
	// Invulnerable reports the post-hit grace period during which further
	// projectiles pass through.
	Invulnerable() bool
	// Step runs one tick of behaviour and reports whether the creature moved.
	Step(ctx *StepContext) bool
	// Respawn restores the spawn anchor position and starting hp.
	Respawn()
	// Restore places a freshly built creature at a saved position and hp.
	Restore(x, y float64, hp int)
	Spawn() SpawnInfo
	Draw(dst *ebiten.Image, view geom.Rect)
}

// Attacker is implemented by combatants that fire projectiles.
type Attacker interface {
	// Attack returns a projectile to add to the map, or nil.
	Attack(player geom.Rect, static []geom.Rect, rng *rand.Rand) *Projectile
}

// Player is the map's view of the player character.
type Player interface {
	Rect() geom.Rect
	CollisionRect() geom.Rect
	InDialogue() bool
	Teleporting() bool
	// Invulnerable covers both the post-hit grace period and god mode.
	Invulnerable() bool
	HitByProjectile(damage int)
	// Teleport places the player's rect top-left at p.
	Teleport(p geom.Vec)
	Draw(dst *ebiten.Image, view geom.Rect)
}

// Quests is the quest system surface the map consults and notifies.
type Quests interface {
	IsActive(name string) bool
	IsComplete(name string) bool
	ProcessEvent(typeName string)
}

// Music receives the track named in each map's metadata.
type Music interface {
	PlayMusic(track string)
}

// Viewport is the camera surface touched by a map transition.
type Viewport interface {
	ChangeMap(mapW, mapH float64)
	TeleportTo(p geom.Vec)
}

// hitGrace is how long a body ignores projectiles after taking damage.
const hitGrace = 0.3

// Body implements the geometric and hp parts of Combatant. Concrete creature
// types embed it and add Step and Draw.
//
// The collision rect is anchored to the sprite rect's bottom centre.
type Body struct {
	id       EntityID
	typeName string
	rect     geom.Rect
	colW     float64
	colH     float64
	hp       int
	maxHP    int
	spawn    SpawnInfo
	hitTimer float64
	facing   geom.Vec
}

// NewBody creates a body whose sprite rect starts at the spawn anchor.
func NewBody(id EntityID, typeName string, spawn SpawnInfo, w, h, colW, colH float64) *Body {
	return &Body{
		id:       id,
		typeName: typeName,
		rect:     geom.R(spawn.X, spawn.Y, w, h),
		colW:     colW,
		colH:     colH,
		hp:       spawn.HP,
		maxHP:    spawn.HP,
		spawn:    spawn,
		facing:   geom.Vec{Y: 1},
	}
}

func (b *Body) ID() EntityID       { return b.id }
func (b *Body) TypeName() string   { return b.typeName }
func (b *Body) Rect() geom.Rect    { return b.rect }
func (b *Body) HP() int            { return b.hp }
func (b *Body) MaxHP() int         { return b.maxHP }
func (b *Body) Spawn() SpawnInfo   { return b.spawn }
func (b *Body) Invulnerable() bool { return b.hitTimer > 0 }
func (b *Body) Facing() geom.Vec   { return b.facing }

// CollisionRect returns the physics box.
func (b *Body) CollisionRect() geom.Rect {
	return geom.R(0, 0, b.colW, b.colH).WithMidBottom(b.rect.MidBottom())
}

// TakeDamage subtracts amount and starts the grace period.
func (b *Body) TakeDamage(amount int) {
	if amount <= 0 {
		return
	}
	b.hp -= amount
	b.hitTimer = hitGrace
}

// Heal adds hp up to the maximum.
func (b *Body) Heal(amount int) {
	b.hp = min(b.hp+amount, b.maxHP)
}

// Respawn implements Combatant.
func (b *Body) Respawn() {
	b.rect.X, b.rect.Y = b.spawn.X, b.spawn.Y
	b.hp = b.spawn.HP
	b.hitTimer = 0
	b.facing = geom.Vec{Y: 1}
}

// Restore implements Combatant.
func (b *Body) Restore(x, y float64, hp int) {
	b.rect.X, b.rect.Y = x, y
	b.hp = min(hp, b.maxHP)
}

// Tick advances the body's timers. Creatures call it from Step.
func (b *Body) Tick(dt float64) {
	if b.hitTimer > 0 {
		b.hitTimer -= dt
	}
}

// Face turns the body toward dir without moving it.
func (b *Body) Face(dir geom.Vec) {
	if dir.Len() > 0 {
		b.facing = dir.Normalize()
	}
}

// MoveBy moves the body by d one axis at a time, cancelling any axis whose
// move would overlap an obstacle or leave bounds. It reports whether the
// body moved at all.
func (b *Body) MoveBy(d geom.Vec, obstacles []geom.Rect, bounds geom.Rect) bool {
	if d.X == 0 && d.Y == 0 {
		return false
	}
	if d.Len() > 0 {
		b.facing = d.Normalize()
	}
	moved := false
	for _, step := range [2]geom.Vec{{X: d.X}, {Y: d.Y}} {
		if step.X == 0 && step.Y == 0 {
			continue
		}
		next := b.rect.Moved(step)
		col := geom.R(0, 0, b.colW, b.colH).WithMidBottom(next.MidBottom())
		if !insideBounds(col, bounds) || col.OverlapsAny(obstacles) {
			continue
		}
		b.rect = next
		moved = true
	}
	return moved
}

func insideBounds(r, bounds geom.Rect) bool {
	return r.X >= bounds.X && r.Y >= bounds.Y && r.Right() <= bounds.Right() && r.Bottom() <= bounds.Bottom()
}
