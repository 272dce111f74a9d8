// Package tiled decodes maps authored in the Tiled editor's JSON format
// (.tmj) with embedded or external (.tsj) tilesets.
package tiled

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strconv"
	"strings"
)

// Tiled stores flip/rotation flags in the top bits of every gid.
const (
	flipHorizontal = 0x80000000
	flipVertical   = 0x40000000
	flipDiagonal   = 0x20000000
	rotatedHex     = 0x10000000
	gidMask        = ^uint32(flipHorizontal | flipVertical | flipDiagonal | rotatedHex)
)

// Layer types.
const (
	TileLayer   = "tilelayer"
	ObjectGroup = "objectgroup"
	GroupLayer  = "group"
)

// ErrBadLayer reports a tile layer whose data does not match its size.
var ErrBadLayer = errors.New("tiled: malformed layer")

// Map is a decoded Tiled map.
type Map struct {
	Width      int        `json:"width"`
	Height     int        `json:"height"`
	TileWidth  int        `json:"tilewidth"`
	TileHeight int        `json:"tileheight"`
	Layers     []*Layer   `json:"layers"`
	Tilesets   []*Tileset `json:"tilesets"`
	Properties Properties `json:"properties,omitempty"`
}

// Layer is a tile layer, an object group, or a group of layers.
type Layer struct {
	ID         int        `json:"id"`
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Width      int        `json:"width"`
	Height     int        `json:"height"`
	Visible    bool       `json:"visible"`
	Data       []uint32   `json:"data,omitempty"`
	Objects    []*Object  `json:"objects,omitempty"`
	Layers     []*Layer   `json:"layers,omitempty"`
	Properties Properties `json:"properties,omitempty"`
}

// GID returns the tile id at (col, row) with flip flags cleared. Out of
// range cells are empty (0).
func (l *Layer) GID(col, row int) uint32 {
	if col < 0 || row < 0 || col >= l.Width || row >= l.Height {
		return 0
	}
	return l.Data[row*l.Width+col] & gidMask
}

// Object is one authored object inside an object group.
type Object struct {
	ID         int        `json:"id"`
	Name       string     `json:"name"`
	Type       string     `json:"type,omitempty"`
	Class      string     `json:"class,omitempty"`
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	Width      float64    `json:"width"`
	Height     float64    `json:"height"`
	Properties Properties `json:"properties,omitempty"`
}

// Tileset describes one tileset image. External tilesets are resolved by
// Load and merged into the same struct.
type Tileset struct {
	FirstGID    uint32 `json:"firstgid"`
	Source      string `json:"source,omitempty"`
	Name        string `json:"name"`
	TileWidth   int    `json:"tilewidth"`
	TileHeight  int    `json:"tileheight"`
	TileCount   int    `json:"tilecount"`
	Columns     int    `json:"columns"`
	Margin      int    `json:"margin"`
	Spacing     int    `json:"spacing"`
	Image       string `json:"image"`
	ImageWidth  int    `json:"imagewidth"`
	ImageHeight int    `json:"imageheight"`

	// Dir is the directory the image path is relative to.
	Dir string `json:"-"`
}

// Contains reports whether gid belongs to this tileset.
func (ts *Tileset) Contains(gid uint32) bool {
	return gid >= ts.FirstGID && gid < ts.FirstGID+uint32(ts.TileCount)
}

// TileOrigin returns the pixel offset of gid's top-left corner in the image.
func (ts *Tileset) TileOrigin(gid uint32) (x, y int) {
	local := int(gid - ts.FirstGID)
	cols := ts.Columns
	if cols <= 0 {
		cols = 1
	}
	x = ts.Margin + (local%cols)*(ts.TileWidth+ts.Spacing)
	y = ts.Margin + (local/cols)*(ts.TileHeight+ts.Spacing)
	return x, y
}

// Property is a custom property.
type Property struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// Properties is a list of custom properties with typed lookups.
type Properties []Property

func (p Properties) find(name string) (any, bool) {
	for _, prop := range p {
		if prop.Name == name {
			return prop.Value, true
		}
	}
	return nil, false
}

// Has reports whether the property exists.
func (p Properties) Has(name string) bool {
	_, ok := p.find(name)
	return ok
}

// String returns a property as text, or def when absent.
func (p Properties) String(name, def string) string {
	v, ok := p.find(name)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// Float returns a numeric property, or def when absent or unparsable.
func (p Properties) Float(name string, def float64) float64 {
	v, ok := p.find(name)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case float64:
		return t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return def
		}
		return f
	default:
		return def
	}
}

// Int returns a numeric property truncated to int, or def.
func (p Properties) Int(name string, def int) int {
	return int(p.Float(name, float64(def)))
}

// Bool returns a boolean property, or def when absent or unparsable.
func (p Properties) Bool(name string, def bool) bool {
	v, ok := p.find(name)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		if err != nil {
			return def
		}
		return b
	case float64:
		return t != 0
	default:
		return def
	}
}

// List splits a comma-joined property into trimmed, non-empty parts.
func (p Properties) List(name string) []string {
	return SplitList(p.String(name, ""))
}

// SplitList splits a comma-joined string into trimmed, non-empty parts.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Decode reads a map from r. External tilesets are left unresolved.
func Decode(r io.Reader) (*Map, error) {
	var m Map
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("tiled: decode map: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Load reads name from fsys and resolves external tilesets relative to it.
func Load(fsys fs.FS, name string) (*Map, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("tiled: open %s: %w", name, err)
	}
	defer f.Close()

	m, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	dir := path.Dir(name)
	for _, ts := range m.Tilesets {
		ts.Dir = dir
		if ts.Source == "" {
			continue
		}
		if err := resolveTileset(fsys, ts); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	return m, nil
}

func resolveTileset(fsys fs.FS, ts *Tileset) error {
	src := path.Join(ts.Dir, ts.Source)
	data, err := fs.ReadFile(fsys, src)
	if err != nil {
		return fmt.Errorf("tiled: read tileset %s: %w", src, err)
	}
	firstGID := ts.FirstGID
	if err := json.Unmarshal(data, ts); err != nil {
		return fmt.Errorf("tiled: decode tileset %s: %w", src, err)
	}
	ts.FirstGID = firstGID
	ts.Dir = path.Dir(src)
	return nil
}

func (m *Map) validate() error {
	for _, l := range m.AllLayers() {
		if l.Type == TileLayer && len(l.Data) != l.Width*l.Height {
			return fmt.Errorf("%w: %q has %d cells, want %dx%d", ErrBadLayer, l.Name, len(l.Data), l.Width, l.Height)
		}
	}
	return nil
}

// PixelSize returns the map dimensions in pixels.
func (m *Map) PixelSize() (w, h float64) {
	return float64(m.Width * m.TileWidth), float64(m.Height * m.TileHeight)
}

// AllLayers returns every layer in authoring order with groups flattened.
func (m *Map) AllLayers() []*Layer {
	var out []*Layer
	var walk func([]*Layer)
	walk = func(ls []*Layer) {
		for _, l := range ls {
			if l.Type == GroupLayer {
				walk(l.Layers)
				continue
			}
			out = append(out, l)
		}
	}
	walk(m.Layers)
	return out
}

// TileLayersWithPrefix returns the tile layers whose name starts with prefix,
// in authoring order.
func (m *Map) TileLayersWithPrefix(prefix string) []*Layer {
	var out []*Layer
	for _, l := range m.AllLayers() {
		if l.Type == TileLayer && strings.HasPrefix(l.Name, prefix) {
			out = append(out, l)
		}
	}
	return out
}

// Objects returns the objects of the object group called name, or nil.
func (m *Map) Objects(name string) []*Object {
	for _, l := range m.AllLayers() {
		if l.Type == ObjectGroup && l.Name == name {
			return l.Objects
		}
	}
	return nil
}

// TilesetFor returns the tileset containing gid, or nil.
func (m *Map) TilesetFor(gid uint32) *Tileset {
	var best *Tileset
	for _, ts := range m.Tilesets {
		if gid >= ts.FirstGID && (best == nil || ts.FirstGID > best.FirstGID) {
			best = ts
		}
	}
	if best != nil && best.TileCount > 0 && !best.Contains(gid) {
		return nil
	}
	return best
}
