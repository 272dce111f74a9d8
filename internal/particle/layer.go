package particle

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/miniquest/miniquest/internal/geom"
)

// DefaultMaxPerLayer bounds a layer when no explicit ceiling is configured.
const DefaultMaxPerLayer = 2048

// Layer is an unordered collection of particles drawn at one depth. It holds
// at most max particles; adding to a full layer evicts the oldest one.
type Layer struct {
	items   []Particle
	max     int
	evicted int
}

// NewLayer creates a layer holding at most max particles. max <= 0 selects
// DefaultMaxPerLayer.
func NewLayer(max int) *Layer {
	if max <= 0 {
		max = DefaultMaxPerLayer
	}
	return &Layer{max: max}
}

// Add inserts p, evicting the oldest particle when the layer is full.
func (l *Layer) Add(p Particle) {
	if p == nil {
		return
	}
	if len(l.items) >= l.max {
		n := len(l.items) - l.max + 1
		copy(l.items, l.items[n:])
		clear(l.items[len(l.items)-n:])
		l.items = l.items[:len(l.items)-n]
		l.evicted += n
	}
	l.items = append(l.items, p)
}

// Update advances every particle and drops the ones that expired.
func (l *Layer) Update(dt float64, target geom.Rect) {
	kept := l.items[:0]
	for _, p := range l.items {
		if !p.Update(dt, target) {
			kept = append(kept, p)
		}
	}
	clear(l.items[len(kept):])
	l.items = kept
}

// Draw renders every particle that overlaps view.
func (l *Layer) Draw(dst *ebiten.Image, view geom.Rect) {
	for _, p := range l.items {
		p.Draw(dst, view)
	}
}

// Len returns the number of live particles.
func (l *Layer) Len() int { return len(l.items) }

// Cap returns the ceiling.
func (l *Layer) Cap() int { return l.max }

// Evicted returns how many particles were dropped to respect the ceiling.
func (l *Layer) Evicted() int { return l.evicted }

// Clear drops every particle.
func (l *Layer) Clear() {
	clear(l.items)
	l.items = l.items[:0]
}
