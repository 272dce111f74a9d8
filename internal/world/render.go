package world

import (
	"image/color"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/miniquest/miniquest/internal/geom"
)

// Drawable is anything drawn in the depth-sorted entity pass.
type Drawable interface {
	Rect() geom.Rect
	Draw(dst *ebiten.Image, view geom.Rect)
}

// DrawLayer draws every tile layer whose name starts with prefix, limited to
// the tiles overlapping view. Tiles without an image are skipped.
func (m *Map) DrawLayer(dst *ebiten.Image, prefix string, view geom.Rect) int {
	data := m.level.data
	tw, th := data.TileWidth, data.TileHeight
	span := visibleSpan(view, tw, th, data.Width, data.Height)
	drawn := 0
	var op ebiten.DrawImageOptions
	for _, l := range data.TileLayersWithPrefix(prefix) {
		for row := span.y0; row < span.y1; row++ {
			for col := span.x0; col < span.x1; col++ {
				img := m.level.tiles.Get(l.GID(col, row))
				if img == nil {
					continue
				}
				op.GeoM.Reset()
				op.GeoM.Translate(float64(col*tw)-view.X, float64(row*th)-view.Y)
				dst.DrawImage(img, &op)
				drawn++
			}
		}
	}
	return drawn
}

// DrawOrder returns chests, game objects, enemies, npcs and the player sorted
// by the bottom edge of their sprite. Ties keep that insertion order.
func (m *Map) DrawOrder(player Player) []Drawable {
	out := make([]Drawable, 0, len(m.chests)+len(m.objects)+len(m.enemies)+len(m.npcs)+1)
	for _, c := range m.chests {
		out = append(out, c)
	}
	for _, o := range m.objects {
		out = append(out, o)
	}
	for _, c := range m.enemies {
		out = append(out, c)
	}
	for _, c := range m.npcs {
		out = append(out, c)
	}
	if player != nil {
		out = append(out, player)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rect().Bottom() < out[j].Rect().Bottom()
	})
	return out
}

// Draw renders the map back to front: floor and ground tiles, shadows and
// ground particles, ground-level projectiles and explosions, depth-sorted
// entities, mid particles, above_ground tiles, and finally everything that
// flies over the roofs.
func (m *Map) Draw(dst *ebiten.Image, view geom.Rect, player Player) {
	m.DrawLayer(dst, LayerFloor, view)
	m.DrawLayer(dst, LayerGround, view)
	for _, p := range m.projectiles {
		p.DrawShadow(dst, view)
	}
	m.ground.Draw(dst, view)
	for _, p := range m.projectiles {
		if !p.AboveGround {
			p.Draw(dst, view)
		}
	}
	for _, e := range m.explosions {
		e.Draw(dst, view)
	}
	for _, d := range m.DrawOrder(player) {
		d.Draw(dst, view)
	}
	m.mid.Draw(dst, view)
	m.DrawLayer(dst, LayerAboveGround, view)
	m.above.Draw(dst, view)
	for _, p := range m.projectiles {
		if p.AboveGround {
			p.Draw(dst, view)
		}
	}
}

var (
	debugStatic   = color.RGBA{R: 255, A: 200}
	debugBody     = color.RGBA{G: 255, A: 200}
	debugPortal   = color.RGBA{R: 160, B: 255, A: 200}
	debugCollider = color.RGBA{R: 255, G: 200, A: 200}
)

// DrawDebug outlines collision geometry, entity bodies and portals.
func (m *Map) DrawDebug(dst *ebiten.Image, view geom.Rect) {
	stroke := func(r geom.Rect, c color.RGBA) {
		if !view.Overlaps(r) {
			return
		}
		vector.StrokeRect(dst, float32(r.X-view.X), float32(r.Y-view.Y), float32(r.W), float32(r.H), 1, c, false)
	}
	for _, r := range m.level.static {
		stroke(r, debugStatic)
	}
	for _, r := range m.blockers[len(m.level.static):] {
		stroke(r, debugCollider)
	}
	for _, r := range m.bodies.rects {
		stroke(r, debugBody)
	}
	for _, p := range m.level.portals {
		stroke(p.Rect, debugPortal)
	}
}
