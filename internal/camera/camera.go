// Package camera implements the viewport that follows the player.
package camera

import (
	"math"
	"math/rand"

	"github.com/miniquest/miniquest/internal/geom"
)

// DefaultFollowRate is the per-second decay constant that reproduces a 0.5
// per-tick lerp at 64 ticks per second: 1-exp(-rate/64) == 0.5.
var DefaultFollowRate = math.Ln2 * 64

// DefaultThreshold is the distance in pixels below which the camera stops chasing.
const DefaultThreshold = 1.0

// Camera is a viewport of fixed size whose centre follows a target point,
// clamped so it never shows beyond the map bounds.
type Camera struct {
	center    geom.Vec
	w, h      float64
	mapW      float64
	mapH      float64
	rate      float64
	threshold float64

	shakeIntensity float64
	shakeDuration  float64
	shakeTimer     float64

	rng *rand.Rand
}

// Option customises a Camera.
type Option func(*Camera)

// WithFollowRate sets the exponential follow rate (1/seconds).
func WithFollowRate(rate float64) Option {
	return func(c *Camera) {
		if rate > 0 {
			c.rate = rate
		}
	}
}

// WithThreshold sets the dead-zone distance.
func WithThreshold(px float64) Option {
	return func(c *Camera) {
		if px >= 0 {
			c.threshold = px
		}
	}
}

// WithRand sets the jitter source used by Shake.
func WithRand(rng *rand.Rand) Option {
	return func(c *Camera) { c.rng = rng }
}

// New creates a camera of viewport size w x h centred on target inside a map
// of mapW x mapH pixels.
func New(target geom.Vec, w, h, mapW, mapH float64, opts ...Option) *Camera {
	c := &Camera{
		w:         w,
		h:         h,
		mapW:      mapW,
		mapH:      mapH,
		rate:      DefaultFollowRate,
		threshold: DefaultThreshold,
		rng:       rand.New(rand.NewSource(1)), // #nosec G404 -- cosmetic jitter
	}
	for _, o := range opts {
		o(c)
	}
	c.center = c.clamp(target)
	return c
}

// Rect returns the world-space rectangle currently visible. The origin is
// rounded to whole pixels so tiles blit without seams.
func (c *Camera) Rect() geom.Rect {
	return geom.Rect{
		X: math.Round(c.center.X - c.w/2),
		Y: math.Round(c.center.Y - c.h/2),
		W: c.w,
		H: c.h,
	}
}

// Center returns the viewport centre.
func (c *Camera) Center() geom.Vec { return c.center }

// Size returns the viewport dimensions.
func (c *Camera) Size() (w, h float64) { return c.w, c.h }

// Shake starts a jitter of the given intensity (pixels) lasting duration seconds.
func (c *Camera) Shake(duration, intensity float64) {
	if duration <= 0 {
		return
	}
	c.shakeDuration = duration
	c.shakeIntensity = intensity
	c.shakeTimer = 0
}

// Shaking reports whether a shake impulse is still active.
func (c *Camera) Shaking() bool { return c.shakeTimer < c.shakeDuration }

// Update moves the centre toward target. The fraction of the remaining
// distance covered is 1-exp(-rate*dt), so the motion does not depend on the
// tick rate.
func (c *Camera) Update(dt float64, target geom.Vec) {
	if dt < 0 {
		dt = 0
	}
	if target.Dist(c.center) > c.threshold {
		f := 1 - math.Exp(-c.rate*dt)
		c.center = c.clamp(geom.Lerp(c.center, target, f))
	}

	if c.Shaking() {
		c.shakeTimer += dt
		t := c.shakeTimer / c.shakeDuration
		decay := 1 - geom.Clamp(t, 0, 1)
		jitter := geom.Vec{
			X: c.shakeIntensity * decay * (0.5 - c.rng.Float64()),
			Y: c.shakeIntensity * decay * (0.5 - c.rng.Float64()),
		}
		c.center = c.clamp(smootherstep(target, c.center, t).Add(jitter))
	}
}

// TeleportTo snaps the centre to p with no interpolation.
func (c *Camera) TeleportTo(p geom.Vec) {
	c.center = c.clamp(p)
}

// ChangeMap resets the clamp bounds to a new map size.
func (c *Camera) ChangeMap(mapW, mapH float64) {
	c.mapW = mapW
	c.mapH = mapH
	c.center = c.clamp(c.center)
}

func (c *Camera) clamp(p geom.Vec) geom.Vec {
	return geom.Vec{
		X: geom.Clamp(p.X, c.w/2, c.mapW-c.w/2),
		Y: geom.Clamp(p.Y, c.h/2, c.mapH-c.h/2),
	}
}

func smootherstep(a, b geom.Vec, t float64) geom.Vec {
	t = geom.Clamp(t, 0, 1)
	t = t * t * t * (t*(t*6-15) + 10)
	return geom.Lerp(a, b, t)
}
