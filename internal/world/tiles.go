package world

import (
	"errors"
	"fmt"
	"image"
	_ "image/png" // tileset sheets
	"io/fs"
	"path"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/miniquest/miniquest/internal/geom"
	"github.com/miniquest/miniquest/internal/tiled"
)

// Layer name prefixes.
const (
	LayerFloor       = "floor"
	LayerGround      = "ground"
	LayerAboveGround = "above_ground"
)

// cachedLayers are decoded once per map load.
var cachedLayers = []string{LayerFloor, LayerGround, LayerAboveGround}

var (
	// ErrNoLayer reports a required object group missing from map data.
	ErrNoLayer = errors.New("world: missing layer")
	// ErrNoTileset reports a tile id that no tileset covers.
	ErrNoTileset = errors.New("world: tile has no tileset")
)

// Source supplies map authoring data and tileset images.
//
// LoadImage may return a nil image with a nil error for headless runs; those
// tiles are tracked but never drawn.
type Source interface {
	LoadMap(id string) (*tiled.Map, error)
	LoadImage(path string) (*ebiten.Image, error)
}

// FSSource reads "<Dir>/<id>.tmj" maps and their tileset images from FS.
type FSSource struct {
	FS       fs.FS
	Dir      string
	Headless bool
}

// LoadMap implements Source.
func (s FSSource) LoadMap(id string) (*tiled.Map, error) {
	return tiled.Load(s.FS, path.Join(s.Dir, id+".tmj"))
}

// LoadImage implements Source.
func (s FSSource) LoadImage(p string) (*ebiten.Image, error) {
	if s.Headless {
		return nil, nil
	}
	img, _, err := ebitenutil.NewImageFromFileSystem(s.FS, p)
	if err != nil {
		return nil, fmt.Errorf("world: load image %s: %w", p, err)
	}
	return img, nil
}

// MemSource serves already decoded maps, without images.
type MemSource map[string]*tiled.Map

// LoadMap implements Source.
func (s MemSource) LoadMap(id string) (*tiled.Map, error) {
	m, ok := s[id]
	if !ok {
		return nil, fmt.Errorf("world: map %q: %w", id, fs.ErrNotExist)
	}
	return m, nil
}

// LoadImage implements Source.
func (s MemSource) LoadImage(string) (*ebiten.Image, error) { return nil, nil }

// TileCache maps tile ids to their decoded sub-images.
type TileCache struct {
	tiles map[uint32]*ebiten.Image
}

// buildTileCache decodes every tile used by the cached layers. Any failure
// aborts the load so a map is never half built.
func buildTileCache(src Source, m *tiled.Map) (*TileCache, error) {
	c := &TileCache{tiles: make(map[uint32]*ebiten.Image)}
	sheets := make(map[*tiled.Tileset]*ebiten.Image)
	for _, prefix := range cachedLayers {
		for _, l := range m.TileLayersWithPrefix(prefix) {
			for row := 0; row < l.Height; row++ {
				for col := 0; col < l.Width; col++ {
					gid := l.GID(col, row)
					if gid == 0 {
						continue
					}
					if _, ok := c.tiles[gid]; ok {
						continue
					}
					img, err := c.decode(src, m, sheets, gid)
					if err != nil {
						return nil, fmt.Errorf("layer %q: %w", l.Name, err)
					}
					c.tiles[gid] = img
				}
			}
		}
	}
	return c, nil
}

func (c *TileCache) decode(src Source, m *tiled.Map, sheets map[*tiled.Tileset]*ebiten.Image, gid uint32) (*ebiten.Image, error) {
	ts := m.TilesetFor(gid)
	if ts == nil {
		return nil, fmt.Errorf("%w: gid %d", ErrNoTileset, gid)
	}
	sheet, ok := sheets[ts]
	if !ok {
		var err error
		if ts.Image != "" {
			sheet, err = src.LoadImage(path.Join(ts.Dir, ts.Image))
			if err != nil {
				return nil, err
			}
		}
		sheets[ts] = sheet
	}
	if sheet == nil {
		return nil, nil
	}
	x, y := ts.TileOrigin(gid)
	return sheet.SubImage(image.Rect(x, y, x+ts.TileWidth, y+ts.TileHeight)).(*ebiten.Image), nil
}

// Get returns the image for gid, or nil.
func (c *TileCache) Get(gid uint32) *ebiten.Image { return c.tiles[gid] }

// Len returns the number of cached tile ids.
func (c *TileCache) Len() int { return len(c.tiles) }

// tileSpan is a half-open range of tile columns and rows.
type tileSpan struct {
	x0, x1, y0, y1 int
}

// visibleSpan returns the tiles overlapping view on a cols x rows grid.
func visibleSpan(view geom.Rect, tileW, tileH, cols, rows int) tileSpan {
	tw, th := float64(tileW), float64(tileH)
	return tileSpan{
		x0: max(0, floorDiv(view.X, tw)),
		x1: min(cols, floorDiv(view.X+view.W, tw)+1),
		y0: max(0, floorDiv(view.Y, th)),
		y1: min(rows, floorDiv(view.Y+view.H, th)+1),
	}
}

func floorDiv(v, d float64) int {
	q := int(v / d)
	if float64(q)*d > v {
		q--
	}
	return q
}
