package world

import (
	"errors"
	"fmt"

	"github.com/miniquest/miniquest/internal/geom"
	"github.com/miniquest/miniquest/internal/mapstate"
)

// ChangeMap swaps in the map dest and places the player at pos.
//
// The destination is fully loaded before anything changes, so a load failure
// returns an error and leaves the current map as it was. On success the
// current map's volatile state is saved, every transient collection is
// emptied, and chests and creatures come from dest's saved record when one
// exists, or from its authoring data otherwise.
func (m *Map) ChangeMap(dest string, pos geom.Vec, player Player, view Viewport) error {
	next, err := m.loadLevel(dest)
	if err != nil {
		return fmt.Errorf("world: change map %s -> %s: %w", m.level.id, dest, err)
	}

	from := m.level.id
	if m.store != nil {
		if err := m.store.Save(from, m.Snapshot()); err != nil {
			m.log.Warn("saving map state failed", "map", from, "err", err)
		} else {
			m.events.Add(m.tick, from, "--", CatState, "save", "", 0)
		}
	}

	rec := m.loadRecord(dest)
	m.install(next)
	player.Teleport(pos)
	m.playerRect = player.CollisionRect()
	m.populate(rec)

	if view != nil {
		view.ChangeMap(m.level.width, m.level.height)
		view.TeleportTo(player.Rect().Center())
	}
	m.playMusic()

	restored := "fresh"
	if rec != nil {
		restored = "restored"
	}
	m.events.Add(m.tick, dest, "--", CatPortal, "transition", from+" -> "+dest+" ("+restored+")", 0)
	m.log.Debug("map changed", "from", from, "to", dest, "state", restored)
	return nil
}

// loadRecord returns dest's saved record, or nil when there is none or it
// cannot be read.
func (m *Map) loadRecord(dest string) *mapstate.Record {
	if m.store == nil {
		return nil
	}
	rec, err := m.store.Load(dest)
	if err != nil {
		if !errors.Is(err, mapstate.ErrNotFound) {
			m.log.Warn("map state unreadable, spawning fresh", "map", dest, "err", err)
		}
		return nil
	}
	return rec
}

// Snapshot captures chests, live creatures and the respawn-holding set.
func (m *Map) Snapshot() *mapstate.Record {
	rec := &mapstate.Record{
		Chests:  make([]mapstate.ChestRecord, 0, len(m.chests)),
		Enemies: make([]mapstate.EntityRecord, 0, len(m.enemies)),
		NPCs:    make([]mapstate.EntityRecord, 0, len(m.npcs)),
		Pending: make([]mapstate.PendingRecord, 0, len(m.pending)),
	}
	for _, c := range m.chests {
		r := c.Rect()
		rec.Chests = append(rec.Chests, mapstate.ChestRecord{
			Name:  c.Name,
			X:     r.X,
			Y:     r.Y,
			W:     r.W,
			H:     r.H,
			Items: append([]string{}, c.Items()...),
		})
	}
	for _, c := range m.enemies {
		rec.Enemies = append(rec.Enemies, entityRecord(c))
	}
	for _, c := range m.npcs {
		rec.NPCs = append(rec.NPCs, entityRecord(c))
	}
	for _, p := range m.pending {
		s := p.c.Spawn()
		rec.Pending = append(rec.Pending, mapstate.PendingRecord{
			Type:        p.c.TypeName(),
			StartX:      s.X,
			StartY:      s.Y,
			StartHP:     s.HP,
			Respawns:    s.Respawns,
			RespawnTime: s.RespawnTime,
			Remaining:   p.remaining,
		})
	}
	return rec
}

func entityRecord(c Combatant) mapstate.EntityRecord {
	r, s := c.Rect(), c.Spawn()
	return mapstate.EntityRecord{
		Type:        c.TypeName(),
		X:           r.X,
		Y:           r.Y,
		HP:          c.HP(),
		StartX:      s.X,
		StartY:      s.Y,
		StartHP:     s.HP,
		Respawns:    s.Respawns,
		RespawnTime: s.RespawnTime,
	}
}

// restore rebuilds chests and creatures from rec. Unknown types are skipped.
func (m *Map) restore(rec *mapstate.Record) {
	for _, c := range rec.Chests {
		m.chests = append(m.chests, NewChest(c.Name, geom.R(c.X, c.Y, c.W, c.H), c.Items))
	}
	for _, e := range rec.Enemies {
		m.restoreCreature(e)
	}
	for _, e := range rec.NPCs {
		m.restoreCreature(e)
	}
	for _, p := range rec.Pending {
		spawn := SpawnInfo{X: p.StartX, Y: p.StartY, HP: p.StartHP, Respawns: p.Respawns, RespawnTime: p.RespawnTime}
		c, kind, err := m.reg.NewCreature(p.Type, m.newID(), spawn)
		if err != nil {
			m.log.Warn("unknown entity type", "map", m.level.id, "state", "pending", "type", p.Type)
			continue
		}
		m.pending = append(m.pending, &pendingRespawn{c: c, kind: kind, remaining: p.Remaining})
	}
}

func (m *Map) restoreCreature(e mapstate.EntityRecord) {
	spawn := SpawnInfo{X: e.StartX, Y: e.StartY, HP: e.StartHP, Respawns: e.Respawns, RespawnTime: e.RespawnTime}
	if spawn.HP <= 0 {
		spawn.X, spawn.Y, spawn.HP = e.X, e.Y, e.HP
	}
	c, kind, err := m.reg.NewCreature(e.Type, m.newID(), spawn)
	if err != nil {
		m.log.Warn("unknown entity type", "map", m.level.id, "state", "live", "type", e.Type)
		return
	}
	c.Restore(e.X, e.Y, e.HP)
	m.addCreature(c, kind)
}
