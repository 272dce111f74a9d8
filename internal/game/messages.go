package game

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	msgMaxEntries = 32
	msgVisible    = 5
	msgLifetime   = 6.0 // seconds a message stays on screen
	msgLineHeight = 12
)

// Message is a single line in the message log.
type Message struct {
	Tick int
	Text string
	Age  float64
}

// MessageLog is a ring buffer of gameplay messages shown in the HUD.
type MessageLog struct {
	entries []Message
	head    int
	count   int
}

// NewMessageLog creates a message log with a fixed capacity.
func NewMessageLog() *MessageLog {
	return &MessageLog{entries: make([]Message, msgMaxEntries)}
}

// Add appends a message.
func (ml *MessageLog) Add(tick int, msg string) {
	if msg == "" {
		return
	}
	ml.entries[ml.head] = Message{Tick: tick, Text: msg}
	ml.head = (ml.head + 1) % msgMaxEntries
	if ml.count < msgMaxEntries {
		ml.count++
	}
}

// Update ages every message by dt seconds.
func (ml *MessageLog) Update(dt float64) {
	for i := range ml.entries {
		ml.entries[i].Age += dt
	}
}

// Recent returns entries in chronological order (oldest first).
func (ml *MessageLog) Recent() []Message {
	result := make([]Message, ml.count)
	for i := 0; i < ml.count; i++ {
		idx := (ml.head - ml.count + i + msgMaxEntries) % msgMaxEntries
		result[i] = ml.entries[idx]
	}
	return result
}

// Visible returns the newest messages still within their lifetime, oldest
// first.
func (ml *MessageLog) Visible() []Message {
	recent := ml.Recent()
	start := len(recent)
	for start > 0 && len(recent)-start < msgVisible && recent[start-1].Age < msgLifetime {
		start--
	}
	return recent[start:]
}

// Draw renders the visible messages bottom-left, fading each one out over
// the last second of its life.
func (ml *MessageLog) Draw(dst *ebiten.Image, face text.Face, x, bottom int) {
	vis := ml.Visible()
	if len(vis) == 0 {
		return
	}
	h := len(vis)*msgLineHeight + 4
	vector.FillRect(dst, float32(x-2), float32(bottom-h), 300, float32(h), color.RGBA{R: 6, G: 10, B: 6, A: 150}, false)

	y := bottom - h + 2
	for _, m := range vis {
		alpha := 1.0
		if left := msgLifetime - m.Age; left < 1 {
			alpha = left
		}
		op := &text.DrawOptions{}
		op.GeoM.Translate(float64(x), float64(y))
		op.ColorScale.ScaleAlpha(float32(alpha))
		text.Draw(dst, m.Text, face, op)
		y += msgLineHeight
	}
}
