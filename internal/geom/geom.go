// Package geom provides the float rectangle and vector helpers shared by
// every simulated thing on a map.
package geom

import "github.com/rudransh61/Physix-go/pkg/vector"

// Vec is a 2D point or displacement in world pixels.
type Vec vector.Vector

func (v Vec) phys() vector.Vector { return vector.Vector(v) }

// Add returns v+o.
func (v Vec) Add(o Vec) Vec { return Vec(v.phys().Add(o.phys())) }

// Sub returns v-o.
func (v Vec) Sub(o Vec) Vec { return Vec(v.phys().Sub(o.phys())) }

// Scale returns v*s.
func (v Vec) Scale(s float64) Vec { return Vec(v.phys().Scale(s)) }

// Len returns the Euclidean length of v.
func (v Vec) Len() float64 { return v.phys().Magnitude() }

// Dist returns the distance between v and o.
func (v Vec) Dist(o Vec) float64 { return v.Sub(o).Len() }

// Normalize returns v scaled to unit length. The zero vector is returned unchanged.
func (v Vec) Normalize() Vec {
	l := v.Len()
	if l == 0 {
		return v
	}
	return Vec{X: v.X / l, Y: v.Y / l}
}

// Lerp interpolates from a to b by t.
func Lerp(a, b Vec, t float64) Vec {
	return Vec{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}

// Rect is an axis-aligned box in world pixels. X/Y is the top-left corner.
type Rect struct {
	X, Y float64
	W, H float64
}

// R is shorthand for Rect{x, y, w, h}.
func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Center returns the centre point.
func (r Rect) Center() Vec { return Vec{X: r.X + r.W/2, Y: r.Y + r.H/2} }

// MidBottom returns the ground-contact point: centre of the bottom edge.
func (r Rect) MidBottom() Vec { return Vec{X: r.X + r.W/2, Y: r.Y + r.H} }

// TopLeft returns the top-left corner.
func (r Rect) TopLeft() Vec { return Vec{X: r.X, Y: r.Y} }

// Overlaps reports whether r and o share a region of positive area.
// Touching edges do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	if r.X >= o.Right() || o.X >= r.Right() {
		return false
	}
	if r.Y >= o.Bottom() || o.Y >= r.Bottom() {
		return false
	}
	return true
}

// OverlapsAny reports whether r overlaps at least one of rs.
func (r Rect) OverlapsAny(rs []Rect) bool {
	for _, o := range rs {
		if r.Overlaps(o) {
			return true
		}
	}
	return false
}

// Contains reports whether the point p lies inside r.
func (r Rect) Contains(p Vec) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

// Moved returns r translated by d.
func (r Rect) Moved(d Vec) Rect {
	r.X += d.X
	r.Y += d.Y
	return r
}

// WithCenter returns r re-positioned so its centre is c.
func (r Rect) WithCenter(c Vec) Rect {
	r.X = c.X - r.W/2
	r.Y = c.Y - r.H/2
	return r
}

// WithMidBottom returns r re-positioned so its bottom-centre is p.
func (r Rect) WithMidBottom(p Vec) Rect {
	r.X = p.X - r.W/2
	r.Y = p.Y - r.H
	return r
}

// Clamp restricts v to [lo, hi]. When hi < lo the midpoint is returned.
func Clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return (lo + hi) / 2
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
