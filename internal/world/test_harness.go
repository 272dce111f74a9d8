package world

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/miniquest/miniquest/internal/geom"
	"github.com/miniquest/miniquest/internal/mapstate"
	"github.com/miniquest/miniquest/internal/tiled"
)

// SimDT is the fixed step used by TestSim, one 64 Hz tick.
const SimDT = 1.0 / 64

// MapBuilder assembles a small Tiled map in memory for tests. Every map gets
// a floor layer, an above_ground layer and one tileset covering gids 1-16.
type MapBuilder struct {
	cols, rows, tile int
	above            []uint32
	groups           map[string]*tiled.Layer
	order            []string
	props            tiled.Properties
	nextObj          int
}

// NewMapBuilder starts a cols x rows map of tile x tile pixel tiles.
func NewMapBuilder(cols, rows, tile int) *MapBuilder {
	return &MapBuilder{
		cols:   cols,
		rows:   rows,
		tile:   tile,
		above:  make([]uint32, cols*rows),
		groups: make(map[string]*tiled.Layer),
	}
}

func (b *MapBuilder) object(group, name string, x, y, w, h float64, props ...tiled.Property) *MapBuilder {
	l, ok := b.groups[group]
	if !ok {
		l = &tiled.Layer{Name: group, Type: tiled.ObjectGroup, Visible: true}
		b.groups[group] = l
		b.order = append(b.order, group)
	}
	b.nextObj++
	l.Objects = append(l.Objects, &tiled.Object{
		ID:         b.nextObj,
		Name:       name,
		X:          x,
		Y:          y,
		Width:      w,
		Height:     h,
		Properties: props,
	})
	return b
}

// Wall adds a collision rect.
func (b *MapBuilder) Wall(x, y, w, h float64) *MapBuilder {
	return b.object(LayerCollision, "", x, y, w, h)
}

// Enemy adds an enemy spawn.
func (b *MapBuilder) Enemy(name string, x, y float64, hp int, respawns bool, respawnTime int) *MapBuilder {
	return b.object(LayerEnemies, name, x, y, 16, 16, creatureProps(hp, respawns, respawnTime)...)
}

// NPC adds an npc spawn.
func (b *MapBuilder) NPC(name string, x, y float64, hp int) *MapBuilder {
	return b.object(LayerNPCs, name, x, y, 16, 16, creatureProps(hp, false, 0)...)
}

func creatureProps(hp int, respawns bool, respawnTime int) []tiled.Property {
	return []tiled.Property{
		{Name: "hp", Type: "int", Value: float64(hp)},
		{Name: "respawns", Type: "bool", Value: respawns},
		{Name: "respawn_time", Type: "int", Value: float64(respawnTime)},
	}
}

// Chest adds a chest holding items.
func (b *MapBuilder) Chest(name string, x, y, w, h float64, items ...string) *MapBuilder {
	list := tiled.Property{Name: "items", Type: "string", Value: strings.Join(items, ",")}
	return b.object(LayerChests, name, x, y, w, h, list)
}

// Object adds a game object.
func (b *MapBuilder) Object(name string, x, y, w, h float64) *MapBuilder {
	return b.object(LayerGameObjects, name, x, y, w, h)
}

// Portal adds a portal to dest at (dx, dy). Requirements are comma-separated
// quest names.
func (b *MapBuilder) Portal(x, y, w, h float64, dest string, dx, dy int, active, completed string) *MapBuilder {
	var props []tiled.Property
	if active != "" {
		props = append(props, tiled.Property{Name: "quest_requirements", Type: "string", Value: active})
	}
	if completed != "" {
		props = append(props, tiled.Property{Name: "quest_complete_requirements", Type: "string", Value: completed})
	}
	return b.object(LayerPortal, fmt.Sprintf("%s,%d,%d", dest, dx, dy), x, y, w, h, props...)
}

// AboveGround marks tile (col, row) as roofed.
func (b *MapBuilder) AboveGround(col, row int) *MapBuilder {
	b.above[row*b.cols+col] = 2
	return b
}

// Property sets a map property.
func (b *MapBuilder) Property(name string, value any) *MapBuilder {
	b.props = append(b.props, tiled.Property{Name: name, Value: value})
	return b
}

// Build returns the assembled map.
func (b *MapBuilder) Build() *tiled.Map {
	floor := make([]uint32, b.cols*b.rows)
	for i := range floor {
		floor[i] = 1
	}
	m := &tiled.Map{
		Width:      b.cols,
		Height:     b.rows,
		TileWidth:  b.tile,
		TileHeight: b.tile,
		Properties: b.props,
		Tilesets: []*tiled.Tileset{{
			FirstGID:   1,
			Name:       "test",
			TileWidth:  b.tile,
			TileHeight: b.tile,
			TileCount:  16,
			Columns:    4,
		}},
		Layers: []*tiled.Layer{
			{Name: LayerFloor, Type: tiled.TileLayer, Width: b.cols, Height: b.rows, Visible: true, Data: floor},
			{Name: LayerAboveGround, Type: tiled.TileLayer, Width: b.cols, Height: b.rows, Visible: true, Data: append([]uint32(nil), b.above...)},
		},
	}
	for _, name := range b.order {
		m.Layers = append(m.Layers, b.groups[name])
	}
	return m
}

// StubPlayer is a controllable Player.
type StubPlayer struct {
	R          geom.Rect
	Dialogue   bool
	Teleported bool
	God        bool
	Hits       []int
}

func (p *StubPlayer) Rect() geom.Rect       { return p.R }
func (p *StubPlayer) InDialogue() bool      { return p.Dialogue }
func (p *StubPlayer) Teleporting() bool     { return p.Teleported }
func (p *StubPlayer) Invulnerable() bool    { return p.God }
func (p *StubPlayer) HitByProjectile(d int) { p.Hits = append(p.Hits, d) }
func (p *StubPlayer) Teleport(v geom.Vec)   { p.R.X, p.R.Y = v.X, v.Y }

func (p *StubPlayer) Draw(*ebiten.Image, geom.Rect) {}

// CollisionRect is the lower half of the sprite.
func (p *StubPlayer) CollisionRect() geom.Rect {
	return geom.R(0, 0, p.R.W, p.R.H/2).WithMidBottom(p.R.MidBottom())
}

// StubQuests is a Quests whose state tests set directly.
type StubQuests struct {
	Active   map[string]bool
	Complete map[string]bool
	Events   []string
}

func (q *StubQuests) IsActive(name string) bool   { return q.Active[name] }
func (q *StubQuests) IsComplete(name string) bool { return q.Complete[name] }
func (q *StubQuests) ProcessEvent(name string)    { q.Events = append(q.Events, name) }

// StubView records camera notifications.
type StubView struct {
	Maps      [][2]float64
	Teleports []geom.Vec
}

func (v *StubView) ChangeMap(w, h float64) { v.Maps = append(v.Maps, [2]float64{w, h}) }
func (v *StubView) TeleportTo(p geom.Vec)  { v.Teleports = append(v.Teleports, p) }

// StubMusic records requested tracks.
type StubMusic struct{ Tracks []string }

func (m *StubMusic) PlayMusic(track string) { m.Tracks = append(m.Tracks, track) }

// Dummy is a stationary enemy.
type Dummy struct{ *Body }

// Step implements Combatant.
func (d *Dummy) Step(ctx *StepContext) bool {
	d.Tick(ctx.DT)
	return false
}

// Draw implements Combatant.
func (d *Dummy) Draw(*ebiten.Image, geom.Rect) {}

// Walker moves right at a constant speed.
type Walker struct {
	*Body
	Speed float64
}

// Step implements Combatant.
func (w *Walker) Step(ctx *StepContext) bool {
	w.Tick(ctx.DT)
	return w.MoveBy(geom.Vec{X: w.Speed * ctx.DT}, ctx.Obstacles, ctx.Bounds)
}

// Draw implements Combatant.
func (w *Walker) Draw(*ebiten.Image, geom.Rect) {}

// Turret fires an arrow at the player every Interval seconds.
type Turret struct {
	*Body
	Interval float64
	cooldown float64
}

// Step implements Combatant.
func (t *Turret) Step(ctx *StepContext) bool {
	t.Tick(ctx.DT)
	t.cooldown -= ctx.DT
	return false
}

// Attack implements Attacker.
func (t *Turret) Attack(player geom.Rect, _ []geom.Rect, _ *rand.Rand) *Projectile {
	if t.cooldown > 0 {
		return nil
	}
	t.cooldown = t.Interval
	from := t.Rect().Center()
	return NewArrow(t.ID(), from, player.Center().Sub(from), 1)
}

// Draw implements Combatant.
func (t *Turret) Draw(*ebiten.Image, geom.Rect) {}

// RegisterTestCreatures adds Dummy, Walker and Turret enemies and an Idle npc.
func RegisterTestCreatures(r *Registry) {
	r.RegisterCreature("Dummy", KindEnemy, func(id EntityID, s SpawnInfo) Combatant {
		return &Dummy{NewBody(id, "Dummy", s, 16, 16, 12, 8)}
	})
	r.RegisterCreature("Walker", KindEnemy, func(id EntityID, s SpawnInfo) Combatant {
		return &Walker{Body: NewBody(id, "Walker", s, 16, 16, 12, 8), Speed: 32}
	})
	r.RegisterCreature("Turret", KindEnemy, func(id EntityID, s SpawnInfo) Combatant {
		return &Turret{Body: NewBody(id, "Turret", s, 16, 16, 12, 8), Interval: 0.5}
	})
	r.RegisterCreature("Idle", KindNPC, func(id EntityID, s SpawnInfo) Combatant {
		return &Dummy{NewBody(id, "Idle", s, 16, 16, 12, 8)}
	})
}

// TestSim is a headless harness used by tests. It wires a Map to in-memory
// maps, stub collaborators and an optional state store, and steps it at a
// fixed 64 Hz.
type TestSim struct {
	Map      *Map
	Maps     MemSource
	Registry *Registry
	Player   *StubPlayer
	Quests   *StubQuests
	View     *StubView
	Music    *StubMusic
	Events   *EventLog

	start    string
	store    mapstate.Store
	seed     int64
	register []func(*Registry)
}

// SimOption configures a TestSim.
type SimOption func(*TestSim)

// WithMap adds map id. The first map added is the starting map.
func WithMap(id string, b *MapBuilder) SimOption {
	return func(ts *TestSim) {
		ts.Maps[id] = b.Build()
		if ts.start == "" {
			ts.start = id
		}
	}
}

// WithSimStore persists map state in s.
func WithSimStore(s mapstate.Store) SimOption {
	return func(ts *TestSim) { ts.store = s }
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) SimOption {
	return func(ts *TestSim) { ts.seed = seed }
}

// WithTypes registers additional creature or object types.
func WithTypes(register func(*Registry)) SimOption {
	return func(ts *TestSim) { ts.register = append(ts.register, register) }
}

// WithVerbose sets whether the harness event log records movement.
func WithVerbose(verbose bool) SimOption {
	return func(ts *TestSim) { ts.Events = NewEventLog(verbose) }
}

// WithPlayerAt places the player's sprite top-left at (x, y).
func WithPlayerAt(x, y float64) SimOption {
	return func(ts *TestSim) { ts.Player.R.X, ts.Player.R.Y = x, y }
}

// NewTestSim builds the harness. It fails when the starting map does not load.
func NewTestSim(opts ...SimOption) (*TestSim, error) {
	ts := &TestSim{
		Maps:     MemSource{},
		Registry: NewRegistry(),
		Player:   &StubPlayer{R: geom.R(0, 0, 16, 16)},
		Quests:   &StubQuests{Active: map[string]bool{}, Complete: map[string]bool{}},
		View:     &StubView{},
		Music:    &StubMusic{},
		Events:   NewEventLog(true),
		seed:     1,
	}
	for _, o := range opts {
		o(ts)
	}
	RegisterTestCreatures(ts.Registry)
	RegisterObjects(ts.Registry)
	for _, register := range ts.register {
		register(ts.Registry)
	}

	mopts := []Option{
		WithEvents(ts.Events),
		WithQuests(ts.Quests),
		WithMusic(ts.Music),
		WithRand(rand.New(rand.NewSource(ts.seed))), // #nosec G404 -- test harness
	}
	if ts.store != nil {
		mopts = append(mopts, WithStore(ts.store))
	}
	m, err := New(ts.Maps, ts.Registry, ts.start, mopts...)
	if err != nil {
		return nil, err
	}
	ts.Map = m
	return ts, nil
}

// Step runs n updates, stopping at the first error.
func (ts *TestSim) Step(n int) error {
	for range n {
		if err := ts.Map.Update(ts.Player, ts.View, SimDT); err != nil {
			return err
		}
	}
	return nil
}
