package world

import "github.com/miniquest/miniquest/internal/geom"

// maxSpawnAttempts bounds RandomSpawn on crowded maps.
const maxSpawnAttempts = 10000

// RandomSpawn rejection-samples a whole-pixel top-left position for a w x h
// rect inside the map that overlaps no static geometry, entity collision
// rect, chest, npc, game object, the player, or above_ground tile. It
// reports false when no spot was found.
func (m *Map) RandomSpawn(w, h float64) (geom.Vec, bool) {
	maxX := int(m.level.width - w)
	maxY := int(m.level.height - h)
	if maxX < 0 || maxY < 0 {
		return geom.Vec{}, false
	}
	for range maxSpawnAttempts {
		p := geom.Vec{X: float64(m.rng.Intn(maxX + 1)), Y: float64(m.rng.Intn(maxY + 1))}
		if m.spawnFree(geom.R(p.X, p.Y, w, h)) {
			return p, true
		}
	}
	return geom.Vec{}, false
}

func (m *Map) spawnFree(r geom.Rect) bool {
	if r.OverlapsAny(m.blockers) || r.OverlapsAny(m.bodies.rects) || r.Overlaps(m.playerRect) {
		return false
	}
	for _, c := range m.chests {
		if r.Overlaps(c.Rect()) {
			return false
		}
	}
	for _, c := range m.npcs {
		if r.Overlaps(c.CollisionRect()) {
			return false
		}
	}
	for _, o := range m.objects {
		if r.Overlaps(o.Rect()) {
			return false
		}
	}
	return !m.aboveGroundAt(r)
}

// aboveGroundAt reports whether r overlaps any non-empty above_ground tile.
func (m *Map) aboveGroundAt(r geom.Rect) bool {
	data := m.level.data
	tw, th := data.TileWidth, data.TileHeight
	span := visibleSpan(r, tw, th, data.Width, data.Height)
	for _, l := range data.TileLayersWithPrefix(LayerAboveGround) {
		for row := span.y0; row < span.y1; row++ {
			for col := span.x0; col < span.x1; col++ {
				if l.GID(col, row) == 0 {
					continue
				}
				tile := geom.R(float64(col*tw), float64(row*th), float64(tw), float64(th))
				if r.Overlaps(tile) {
					return true
				}
			}
		}
	}
	return false
}
