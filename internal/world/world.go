// Package world is the simulation core of a loaded map: it owns every entity
// collection, resolves collisions and projectile hits, drives portals and map
// transitions, and renders tile layers culled to the camera.
//
// A Map is stepped synchronously once per tick; nothing in it is safe for
// concurrent use.
package world

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/charmbracelet/log"

	"github.com/miniquest/miniquest/internal/geom"
	"github.com/miniquest/miniquest/internal/mapstate"
	"github.com/miniquest/miniquest/internal/particle"
	"github.com/miniquest/miniquest/internal/tiled"
)

// Authoring layer names.
const (
	LayerCollision   = "collision"
	LayerEnemies     = "enemies"
	LayerNPCs        = "npcs"
	LayerChests      = "chests"
	LayerGameObjects = "game_objects"
	LayerPortal      = "portal"
)

// Metadata keys and defaults.
const (
	metaLightLevel = "light_level"
	metaInterior   = "interior"
	metaMusic      = "music"

	defaultLightLevel = 10
	defaultHP         = 10
)

// walkParticleChance is the probability a creature that moved kicks up dust.
const walkParticleChance = 0.3

// level is the immutable authoring side of one map load.
type level struct {
	id            string
	data          *tiled.Map
	tiles         *TileCache
	width, height float64
	lightLevel    float64
	interior      bool
	music         string
	static        []geom.Rect
	portals       []*Portal
}

type pendingRespawn struct {
	c         Combatant
	kind      Kind
	remaining int
}

// Map is the authoritative state of the currently loaded map.
type Map struct {
	src Source
	reg *Registry

	level      *level
	lightLevel float64

	enemies     []Combatant
	npcs        []Combatant
	pending     []*pendingRespawn
	projectiles []*Projectile
	explosions  []*particle.Explosion
	ground      *particle.Layer
	mid         *particle.Layer
	above       *particle.Layer
	chests      []*Chest
	objects     []GameObject

	bodies     *bodyIndex
	blockers   []geom.Rect // static geometry plus object colliders
	playerRect geom.Rect
	scratch    []geom.Rect

	store        mapstate.Store
	quests       Quests
	music        Music
	log          *log.Logger
	events       *EventLog
	rng          *rand.Rand
	maxParticles int

	tick   int
	nextID EntityID
}

// Option configures a Map.
type Option func(*Map)

// WithLogger sets the logger for load warnings.
func WithLogger(l *log.Logger) Option { return func(m *Map) { m.log = l } }

// WithEvents records simulation events into el.
func WithEvents(el *EventLog) Option { return func(m *Map) { m.events = el } }

// WithStore persists map state across transitions.
func WithStore(s mapstate.Store) Option { return func(m *Map) { m.store = s } }

// WithQuests sets the quest system consulted by portals and notified of defeats.
func WithQuests(q Quests) Option { return func(m *Map) { m.quests = q } }

// WithMusic forwards each map's music track to mu.
func WithMusic(mu Music) Option { return func(m *Map) { m.music = mu } }

// WithRand sets the random source.
func WithRand(rng *rand.Rand) Option { return func(m *Map) { m.rng = rng } }

// WithMaxParticles bounds each particle layer.
func WithMaxParticles(n int) Option { return func(m *Map) { m.maxParticles = n } }

// New loads mapID from src and spawns its authored content.
func New(src Source, reg *Registry, mapID string, opts ...Option) (*Map, error) {
	m := &Map{
		src:    src,
		reg:    reg,
		bodies: newBodyIndex(),
		log:    log.New(io.Discard),
		rng:    rand.New(rand.NewSource(1)), // #nosec G404 -- gameplay randomness
		nextID: PlayerID + 1,
	}
	for _, o := range opts {
		o(m)
	}
	m.ground = particle.NewLayer(m.maxParticles)
	m.mid = particle.NewLayer(m.maxParticles)
	m.above = particle.NewLayer(m.maxParticles)

	lv, err := m.loadLevel(mapID)
	if err != nil {
		return nil, err
	}
	m.install(lv)
	m.populate(nil)
	m.playMusic()
	return m, nil
}

// loadLevel decodes a map and its tiles without touching live state.
func (m *Map) loadLevel(id string) (*level, error) {
	data, err := m.src.LoadMap(id)
	if err != nil {
		return nil, fmt.Errorf("world: load map %s: %w", id, err)
	}
	if len(data.TileLayersWithPrefix(LayerFloor)) == 0 {
		return nil, fmt.Errorf("%w: %s has no %q tile layer", ErrNoLayer, id, LayerFloor)
	}
	tiles, err := buildTileCache(m.src, data)
	if err != nil {
		return nil, fmt.Errorf("world: load map %s: %w", id, err)
	}
	w, h := data.PixelSize()
	lv := &level{
		id:         id,
		data:       data,
		tiles:      tiles,
		width:      w,
		height:     h,
		lightLevel: float64(data.Properties.Int(metaLightLevel, defaultLightLevel)),
		interior:   data.Properties.Bool(metaInterior, false),
		music:      data.Properties.String(metaMusic, ""),
	}
	for _, obj := range data.Objects(LayerCollision) {
		lv.static = append(lv.static, geom.R(obj.X, obj.Y, obj.Width, obj.Height))
	}
	for _, obj := range data.Objects(LayerPortal) {
		if obj.Name == "" {
			continue
		}
		spec, err := tiled.ParsePortal(obj)
		if err != nil {
			m.log.Warn("skipping portal", "map", id, "object", obj.ID, "err", err)
			continue
		}
		lv.portals = append(lv.portals, &Portal{
			Rect:           geom.R(obj.X, obj.Y, obj.Width, obj.Height),
			Dest:           spec.Map,
			DestPos:        geom.Vec{X: spec.DestX, Y: spec.DestY},
			QuestActive:    spec.QuestActive,
			QuestCompleted: spec.QuestCompleted,
		})
	}
	return lv, nil
}

// install makes lv the current level and empties every collection.
func (m *Map) install(lv *level) {
	m.level = lv
	m.lightLevel = lv.lightLevel

	clear(m.enemies)
	m.enemies = m.enemies[:0]
	clear(m.npcs)
	m.npcs = m.npcs[:0]
	clear(m.pending)
	m.pending = m.pending[:0]
	clear(m.projectiles)
	m.projectiles = m.projectiles[:0]
	clear(m.explosions)
	m.explosions = m.explosions[:0]
	m.chests = nil
	m.objects = nil
	m.ground.Clear()
	m.mid.Clear()
	m.above.Clear()
	m.bodies.reset()
	m.rebuildBlockers()
}

// populate seeds chests and creatures from rec, or from authoring data when
// rec is nil, then places game objects.
func (m *Map) populate(rec *mapstate.Record) {
	if rec != nil {
		m.restore(rec)
	} else {
		m.spawnChests()
		m.spawnCreatures(LayerEnemies)
		m.spawnCreatures(LayerNPCs)
	}
	m.spawnObjects()
}

func (m *Map) newID() EntityID {
	id := m.nextID
	m.nextID++
	return id
}

func (m *Map) spawnChests() {
	for _, obj := range m.level.data.Objects(LayerChests) {
		r := geom.R(obj.X, obj.Y, obj.Width, obj.Height)
		m.chests = append(m.chests, NewChest(obj.Name, r, obj.Properties.List("items")))
	}
}

func (m *Map) spawnCreatures(layer string) {
	for _, obj := range m.level.data.Objects(layer) {
		spawn := SpawnInfo{
			X:           obj.X,
			Y:           obj.Y,
			HP:          obj.Properties.Int("hp", defaultHP),
			Respawns:    obj.Properties.Bool("respawns", false),
			RespawnTime: obj.Properties.Int("respawn_time", 0),
		}
		c, kind, err := m.reg.NewCreature(obj.Name, m.newID(), spawn)
		if err != nil {
			m.log.Warn("unknown entity type", "map", m.level.id, "layer", layer, "type", obj.Name)
			continue
		}
		m.addCreature(c, kind)
	}
}

func (m *Map) spawnObjects() {
	var scattered []*tiled.Object
	for _, obj := range m.level.data.Objects(LayerGameObjects) {
		if obj.Name == "" {
			continue
		}
		spec, err := m.reg.Object(obj.Name)
		if err != nil {
			m.log.Warn("unknown entity type", "map", m.level.id, "layer", LayerGameObjects, "type", obj.Name)
			continue
		}
		if spec.Scatter {
			scattered = append(scattered, obj)
			continue
		}
		m.addObject(spec.New(m.newID(), geom.R(obj.X, obj.Y, obj.Width, obj.Height)))
	}
	// Scattered objects go last so they avoid everything placed above.
	for _, obj := range scattered {
		spec, _ := m.reg.Object(obj.Name)
		id := m.newID()
		// Sprites keep their own size, so build one to measure before sampling.
		size := spec.New(id, geom.R(0, 0, obj.Width, obj.Height)).Rect()
		p, ok := m.RandomSpawn(size.W, size.H)
		if !ok {
			m.log.Warn("no free spot for scattered object", "map", m.level.id, "type", obj.Name)
			continue
		}
		m.addObject(spec.New(id, geom.R(p.X, p.Y, obj.Width, obj.Height)))
	}
}

func (m *Map) addObject(o GameObject) {
	m.objects = append(m.objects, o)
	if orn, ok := o.(Ornamented); ok {
		for _, p := range orn.Ornaments(m.rng) {
			m.ground.Add(p)
		}
	}
	if _, ok := o.(Collider); ok {
		m.rebuildBlockers()
	}
}

// addCreature inserts c into its collection and registers its collision rect.
func (m *Map) addCreature(c Combatant, kind Kind) {
	if !m.bodies.add(c.ID(), c.CollisionRect()) {
		m.log.Warn("collision rect already registered", "type", c.TypeName(), "id", c.ID())
	}
	switch kind {
	case KindNPC:
		m.npcs = append(m.npcs, c)
	default:
		m.enemies = append(m.enemies, c)
	}
}

func (m *Map) rebuildBlockers() {
	m.blockers = append(m.blockers[:0], m.level.static...)
	for _, o := range m.objects {
		if c, ok := o.(Collider); ok {
			m.blockers = append(m.blockers, c.CollisionRect())
		}
	}
}

func (m *Map) playMusic() {
	if m.music != nil && m.level.music != "" {
		m.music.PlayMusic(m.level.music)
	}
}

// ID returns the current map id.
func (m *Map) ID() string { return m.level.id }

// Size returns the map dimensions in pixels.
func (m *Map) Size() (w, h float64) { return m.level.width, m.level.height }

// Bounds returns the map rect.
func (m *Map) Bounds() geom.Rect { return geom.R(0, 0, m.level.width, m.level.height) }

// TileSize returns the tile dimensions in pixels.
func (m *Map) TileSize() (w, h int) { return m.level.data.TileWidth, m.level.data.TileHeight }

// LightLevel returns the ambient light level, 0 (dark) to 10.
func (m *Map) LightLevel() float64 { return m.lightLevel }

// SetLightLevel overrides the ambient light level until the next map load.
func (m *Map) SetLightLevel(v float64) { m.lightLevel = geom.Clamp(v, 0, 10) }

// Interior reports whether the map ignores time of day.
func (m *Map) Interior() bool { return m.level.interior }

// Music returns the map's music track.
func (m *Map) Music() string { return m.level.music }

// Tick returns the number of updates run.
func (m *Map) Tick() int { return m.tick }

func (m *Map) Enemies() []Combatant                  { return m.enemies }
func (m *Map) NPCs() []Combatant                     { return m.npcs }
func (m *Map) Projectiles() []*Projectile            { return m.projectiles }
func (m *Map) Explosions() int                       { return len(m.explosions) }
func (m *Map) Chests() []*Chest                      { return m.chests }
func (m *Map) Objects() []GameObject                 { return m.objects }
func (m *Map) Portals() []*Portal                    { return m.level.portals }
func (m *Map) Blockers() []geom.Rect                 { return m.blockers }
func (m *Map) Tiles() *TileCache                     { return m.level.tiles }
func (m *Map) Registry() *Registry                   { return m.reg }
func (m *Map) Events() *EventLog                     { return m.events }
func (m *Map) Data() *tiled.Map                      { return m.level.data }
func (m *Map) PendingRespawns() int                  { return len(m.pending) }
func (m *Map) BodyCount() int                        { return m.bodies.len() }
func (m *Map) HasBody(id EntityID) bool              { return m.bodies.has(id) }
func (m *Map) AddProjectile(p *Projectile)           { m.projectiles = append(m.projectiles, p) }
func (m *Map) AddGroundParticle(p particle.Particle) { m.ground.Add(p) }
func (m *Map) AddParticle(p particle.Particle)       { m.mid.Add(p) }
func (m *Map) AddAboveParticle(p particle.Particle)  { m.above.Add(p) }

// ParticleCounts returns the live particle counts of the ground, middle and
// above-ground layers.
func (m *Map) ParticleCounts() (ground, mid, above int) {
	return m.ground.Len(), m.mid.Len(), m.above.Len()
}

// EntityRects returns every registered enemy and npc collision rect.
func (m *Map) EntityRects() []geom.Rect {
	return m.bodies.appendExcept(nil, 0)
}

// AddExplosion spawns a burst of kind at p.
func (m *Map) AddExplosion(kind particle.ExplosionKind, p geom.Vec) {
	if e := particle.NewExplosion(kind, m.rng, p.X, p.Y, float64(2+m.rng.Intn(3))); e != nil {
		m.explosions = append(m.explosions, e)
	}
}

// InteractAt uses the first chest or game object overlapping reach.
func (m *Map) InteractAt(reach geom.Rect) (Interaction, bool) {
	for _, c := range m.chests {
		if reach.Overlaps(c.Rect()) {
			return c.Interact(), true
		}
	}
	for _, o := range m.objects {
		if reach.Overlaps(o.Rect()) {
			in := o.Interact()
			m.events.Add(m.tick, m.level.id, o.TypeName(), CatObject, "interact", in.Message, 0)
			return in, true
		}
	}
	return Interaction{}, false
}

// NPCAt returns the first living npc whose sprite overlaps reach.
func (m *Map) NPCAt(reach geom.Rect) (Combatant, bool) {
	for _, n := range m.npcs {
		if n.HP() > 0 && reach.Overlaps(n.Rect()) {
			return n, true
		}
	}
	return nil, false
}

// OpenPanel returns the first object whose UI panel is open.
func (m *Map) OpenPanel() (UIPanel, bool) {
	for _, o := range m.objects {
		if p, ok := o.(UIPanel); ok && p.UIOpen() {
			return p, true
		}
	}
	return nil, false
}
