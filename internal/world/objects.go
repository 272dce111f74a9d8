package world

import (
	"image/color"
	"math/rand"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/miniquest/miniquest/internal/geom"
	"github.com/miniquest/miniquest/internal/particle"
)

// Interaction is the outcome of the player using an object or chest.
type Interaction struct {
	Items   []string // items handed to the player
	Message string
	// Panel is set when the object opened a UI panel.
	Panel UIPanel
}

// GameObject is a map-authored interactable.
type GameObject interface {
	ID() EntityID
	TypeName() string
	Rect() geom.Rect
	Interact() Interaction
	// Update advances the object and reports whether it should be removed.
	Update(dt float64) bool
	Draw(dst *ebiten.Image, view geom.Rect)
}

// Collider is implemented by objects that block movement.
type Collider interface {
	CollisionRect() geom.Rect
}

// UIPanel is implemented by objects that show a panel while open.
type UIPanel interface {
	UIOpen() bool
	CloseUI()
	PanelText() string
}

// Ornamented is implemented by objects decorated with ground particles
// created when the object is placed.
type Ornamented interface {
	Ornaments(rng *rand.Rand) []particle.Particle
}

// prop is the shared state of the simple objects below. The sprite sits on
// the bottom centre of the authored rect.
type prop struct {
	id       EntityID
	typeName string
	rect     geom.Rect
	col      color.RGBA
}

func newProp(id EntityID, typeName string, r geom.Rect, w, h float64, col color.RGBA) prop {
	bottom := geom.Vec{X: r.X + w/2, Y: r.Y + h}
	return prop{
		id:       id,
		typeName: typeName,
		rect:     geom.R(0, 0, w, h).WithMidBottom(bottom),
		col:      col,
	}
}

func (p *prop) ID() EntityID     { return p.id }
func (p *prop) TypeName() string { return p.typeName }
func (p *prop) Rect() geom.Rect  { return p.rect }

func (p *prop) Draw(dst *ebiten.Image, view geom.Rect) {
	if !view.Overlaps(p.rect) {
		return
	}
	r := p.rect
	vector.FillRect(dst, float32(r.X-view.X), float32(r.Y-view.Y), float32(r.W), float32(r.H), p.col, false)
}

// block returns a collision rect covering the lower part of the sprite.
func (p *prop) block(wf, hf float64) geom.Rect {
	return geom.R(0, 0, p.rect.W*wf, p.rect.H*hf).WithMidBottom(p.rect.MidBottom())
}

// Pickup is a resource pile that hands over one item and despawns.
type Pickup struct {
	prop
	item    string
	despawn bool
}

// Interact implements GameObject.
func (o *Pickup) Interact() Interaction {
	if o.despawn {
		return Interaction{}
	}
	o.despawn = true
	return Interaction{Items: []string{o.item}, Message: "Picked up " + o.item}
}

// Update implements GameObject.
func (o *Pickup) Update(float64) bool { return o.despawn }

// CollisionRect implements Collider.
func (o *Pickup) CollisionRect() geom.Rect { return o.block(0.8, 0.6) }

// NewPileLogs creates a pile of logs.
func NewPileLogs(id EntityID, r geom.Rect) GameObject {
	return &Pickup{prop: newProp(id, "PileLogsObject", r, 28, 18, color.RGBA{R: 120, G: 80, B: 40, A: 255}), item: "Logs"}
}

// NewBucket creates a bucket.
func NewBucket(id EntityID, r geom.Rect) GameObject {
	return &Pickup{prop: newProp(id, "BucketObject", r, 14, 16, color.RGBA{R: 110, G: 110, B: 130, A: 255}), item: "Bucket"}
}

// RareGem is a glinting gem that flashes now and then until picked up.
type RareGem struct {
	Pickup
	timer    float64
	cooldown float64
	flash    float64
	rng      *rand.Rand
}

// NewRareGem creates a rare gem.
func NewRareGem(id EntityID, r geom.Rect) GameObject {
	return &RareGem{
		Pickup:   Pickup{prop: newProp(id, "RareGemObject", r, 44, 30, color.RGBA{R: 80, G: 200, B: 230, A: 255}), item: "RareGem"},
		cooldown: 2,
		rng:      rand.New(rand.NewSource(int64(id))), // #nosec G404 -- cosmetic
	}
}

// Update implements GameObject.
func (o *RareGem) Update(dt float64) bool {
	if o.despawn {
		return true
	}
	o.timer += dt
	if o.flash > 0 {
		o.flash -= dt
	}
	if o.timer > o.cooldown {
		o.timer = 0
		o.cooldown = 1.5 + o.rng.Float64()*3
		o.flash = 0.4
	}
	return false
}

// Flashing reports whether the glint animation is playing.
func (o *RareGem) Flashing() bool { return o.flash > 0 }

// Draw implements GameObject.
func (o *RareGem) Draw(dst *ebiten.Image, view geom.Rect) {
	o.prop.Draw(dst, view)
	if o.Flashing() && view.Overlaps(o.rect) {
		c := o.rect.Center()
		vector.FillCircle(dst, float32(c.X-view.X), float32(c.Y-view.Y), 4, color.White, true)
	}
}

// EnchantedHerb is scattered at a random free spot and ringed by orbiting
// motes that vanish when it is picked.
type EnchantedHerb struct {
	prop
	despawn bool
	orbits  []*particle.Orbit
}

// NewEnchantedHerb creates an enchanted herb.
func NewEnchantedHerb(id EntityID, r geom.Rect) GameObject {
	return &EnchantedHerb{prop: newProp(id, "EnchantedHerbObject", r, 33, 22, color.RGBA{R: 150, G: 60, B: 200, A: 255})}
}

// Ornaments implements Ornamented.
func (o *EnchantedHerb) Ornaments(rng *rand.Rand) []particle.Particle {
	n := 10 + rng.Intn(21)
	out := make([]particle.Particle, 0, n)
	c := o.rect.Center()
	for i := 0; i < n; i++ {
		col := color.RGBA{R: uint8(165 + rng.Intn(91)), B: uint8(128 + rng.Intn(128)), A: uint8(100 + rng.Intn(101))}
		orb := particle.NewOrbit(rng, c,
			float64(1+rng.Intn(2)),
			float64(2+rng.Intn(3)),
			col,
			float64(10+rng.Intn(16)),
			-10+rng.Float64()*20)
		o.orbits = append(o.orbits, orb)
		out = append(out, orb)
	}
	return out
}

// Interact implements GameObject.
func (o *EnchantedHerb) Interact() Interaction {
	if o.despawn {
		return Interaction{}
	}
	o.despawn = true
	return Interaction{Items: []string{"EnchantedHerb"}, Message: "Picked an enchanted herb"}
}

// Update implements GameObject.
func (o *EnchantedHerb) Update(float64) bool {
	if !o.despawn {
		return false
	}
	for _, orb := range o.orbits {
		orb.Expire()
	}
	o.orbits = nil
	return true
}

// Signboard is a static object that opens a text panel.
type Signboard struct {
	prop
	text  string
	open  bool
	colWF float64
	colHF float64
}

// NewSignPost creates a sign post.
func NewSignPost(id EntityID, r geom.Rect) GameObject {
	return &Signboard{
		prop:  newProp(id, "SignPostObject", r, 24, 32, color.RGBA{R: 140, G: 100, B: 60, A: 255}),
		text:  "North: Forest   East: Village   South: Caves",
		colWF: 0.5,
		colHF: 0.2,
	}
}

// NewWorldMap creates a world map stand.
func NewWorldMap(id EntityID, r geom.Rect) GameObject {
	return &Signboard{
		prop:  newProp(id, "WorldMapObject", r, 32, 32, color.RGBA{R: 200, G: 180, B: 130, A: 255}),
		text:  "You are here.",
		colWF: 0.8,
		colHF: 0.3,
	}
}

// Interact implements GameObject. It toggles the panel.
func (o *Signboard) Interact() Interaction {
	o.open = !o.open
	if !o.open {
		return Interaction{}
	}
	return Interaction{Panel: o}
}

func (o *Signboard) Update(float64) bool      { return false }
func (o *Signboard) CollisionRect() geom.Rect { return o.block(o.colWF, o.colHF) }
func (o *Signboard) UIOpen() bool             { return o.open }
func (o *Signboard) CloseUI()                 { o.open = false }
func (o *Signboard) PanelText() string        { return o.text }

// RegisterObjects adds the built-in game object types to r.
func RegisterObjects(r *Registry) {
	r.RegisterObject("PileLogsObject", ObjectSpec{New: NewPileLogs})
	r.RegisterObject("BucketObject", ObjectSpec{New: NewBucket})
	r.RegisterObject("RareGemObject", ObjectSpec{New: NewRareGem})
	r.RegisterObject("EnchantedHerbObject", ObjectSpec{New: NewEnchantedHerb, Scatter: true})
	r.RegisterObject("SignPostObject", ObjectSpec{New: NewSignPost})
	r.RegisterObject("WorldMapObject", ObjectSpec{New: NewWorldMap})
}

// Chest is a persistent container matched across visits by its name.
type Chest struct {
	Name  string
	rect  geom.Rect
	items []string
}

// NewChest creates a chest holding items.
func NewChest(name string, r geom.Rect, items []string) *Chest {
	return &Chest{Name: name, rect: r, items: append([]string(nil), items...)}
}

// Rect returns the chest rect.
func (c *Chest) Rect() geom.Rect { return c.rect }

// Items returns the remaining contents.
func (c *Chest) Items() []string { return c.items }

// Interact empties the chest into the player's hands.
func (c *Chest) Interact() Interaction {
	if len(c.items) == 0 {
		return Interaction{Message: "The chest is empty"}
	}
	items := c.items
	c.items = nil
	return Interaction{Items: items, Message: "Opened " + c.Name}
}

var (
	chestColor      = color.RGBA{R: 150, G: 100, B: 30, A: 255}
	chestEmptyColor = color.RGBA{R: 90, G: 70, B: 40, A: 255}
)

// Draw renders the chest.
func (c *Chest) Draw(dst *ebiten.Image, view geom.Rect) {
	if !view.Overlaps(c.rect) {
		return
	}
	col := chestColor
	if len(c.items) == 0 {
		col = chestEmptyColor
	}
	r := c.rect
	vector.FillRect(dst, float32(r.X-view.X), float32(r.Y-view.Y), float32(r.W), float32(r.H), col, false)
}
