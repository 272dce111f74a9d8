// Package daynight tracks the in-game clock and turns it into the opacity of
// the darkness overlay drawn over the world.
package daynight

import (
	"fmt"
	"math"
)

const (
	hoursPerSecond = 0.01 // a full day takes 2400 real seconds

	sunriseStart = 5.0
	sunriseEnd   = 9.0
	sunsetStart  = 16.0
	sunsetEnd    = 22.0
	dayStart     = 7.0
	dayEnd       = 17.0

	maxNightAlpha = 210.0 // outdoor night never reaches full black
	fullAlpha     = 255.0

	// DeathDuration is the length of the dying countdown in seconds.
	DeathDuration = 2.0
)

// Cycle advances the time of day and computes the overlay alpha.
type Cycle struct {
	timeOfDay float64

	dying          bool
	dyingLightSnap float64 // map light level when dying began
}

// New returns a cycle starting at initialTime hours.
func New(initialTime float64) *Cycle {
	c := &Cycle{}
	c.SetTime(initialTime)
	return c
}

// Update advances the clock by dt seconds.
func (c *Cycle) Update(dt float64) {
	if dt < 0 {
		dt = 0
	}
	c.SetTime(c.timeOfDay + hoursPerSecond*dt)
}

// SetTime sets the clock, wrapping into [0, 24).
func (c *Cycle) SetTime(hours float64) {
	h := math.Mod(hours, 24)
	if h < 0 {
		h += 24
	}
	if h >= 24 { // Mod of a tiny negative can round to 24
		h = 0
	}
	c.timeOfDay = h
}

// TimeOfDay returns the current time in hours.
func (c *Cycle) TimeOfDay() float64 { return c.timeOfDay }

// TimeString formats the clock as HH:MM.
func (c *Cycle) TimeString() string {
	h := int(c.timeOfDay)
	m := int((c.timeOfDay - float64(h)) * 60)
	return fmt.Sprintf("%02d:%02d", h, m)
}

// Period names the part of the day used in the HUD.
func (c *Cycle) Period() string {
	switch t := c.timeOfDay; {
	case t >= 6 && t < 12:
		return "Morning"
	case t >= 12 && t < 18:
		return "Afternoon"
	case t >= 18:
		return "Evening"
	default:
		return "Night"
	}
}

// BeginDying freezes the map light level at the moment the player started
// dying. Later calls are ignored until Reset.
func (c *Cycle) BeginDying(lightLevel float64) {
	if c.dying {
		return
	}
	c.dying = true
	c.dyingLightSnap = lightLevel
}

// Dying reports whether BeginDying has been called.
func (c *Cycle) Dying() bool { return c.dying }

// DyingLightLevel returns the interior light level for the given remaining
// death counter. It falls linearly from the frozen snapshot to zero over
// DeathDuration, independent of any later ambient change.
func (c *Cycle) DyingLightLevel(deathCounter float64) float64 {
	frac := geomClamp(deathCounter/DeathDuration, 0, 1)
	return c.dyingLightSnap * frac
}

// Reset clears the dying snapshot.
func (c *Cycle) Reset() {
	c.dying = false
	c.dyingLightSnap = 0
}

// Alpha returns the darkness overlay opacity in [0, 255].
//
// Interior maps ignore the clock and use lightLevel (0-10). When the player
// is dying and a snapshot exists, the snapshot replaces lightLevel and the
// result is blended further toward black by (1 - deathCounter/2).
func (c *Cycle) Alpha(interior bool, lightLevel float64, playerDying bool, deathCounter float64) float64 {
	if playerDying && c.dying && interior {
		lightLevel = c.DyingLightLevel(deathCounter)
	}

	var alpha float64
	if interior {
		alpha = fullAlpha * (1 - lightLevel/10)
	} else {
		alpha = outdoorAlpha(c.timeOfDay)
	}

	if playerDying {
		extra := (1 - deathCounter/DeathDuration) * (fullAlpha - alpha)
		alpha = math.Min(alpha+extra, fullAlpha)
	}
	return geomClamp(alpha, 0, fullAlpha)
}

func outdoorAlpha(t float64) float64 {
	switch {
	case t >= sunriseStart && t < sunriseEnd:
		progress := (t - sunriseStart) / (sunriseEnd - sunriseStart)
		return maxNightAlpha * (1 - progress)
	case t >= sunsetStart && t < sunsetEnd:
		progress := (t - sunsetStart) / (sunsetEnd - sunsetStart)
		return maxNightAlpha * progress
	case t >= dayStart && t <= dayEnd:
		return 0
	default:
		return maxNightAlpha
	}
}

func geomClamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
