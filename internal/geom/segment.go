package geom

import "math"

// SegmentEntry returns the first parameter t in [0,1] at which the segment
// a->b enters r, using a slab test. The bool is false when there is no hit.
// A segment starting inside r enters at t = 0.
func (r Rect) SegmentEntry(a, b Vec) (float64, bool) {
	tMin, tMax := 0.0, 1.0
	for _, ax := range [2]struct{ o, d, lo, hi float64 }{
		{a.X, b.X - a.X, r.X, r.Right()},
		{a.Y, b.Y - a.Y, r.Y, r.Bottom()},
	} {
		if math.Abs(ax.d) < 1e-12 {
			if ax.o < ax.lo || ax.o > ax.hi {
				return 0, false
			}
			continue
		}
		t1 := (ax.lo - ax.o) / ax.d
		t2 := (ax.hi - ax.o) / ax.d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}
	return tMin, true
}

// Blocked reports whether the segment a->b crosses any of rs.
func Blocked(a, b Vec, rs []Rect) bool {
	for _, r := range rs {
		if _, hit := r.SegmentEntry(a, b); hit {
			return true
		}
	}
	return false
}
