package game

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/miniquest/miniquest/internal/geom"
)

// Input is one tick's worth of player intent. Game logic only reads Input so
// tests can drive it without a window.
type Input struct {
	Move     geom.Vec // unnormalised direction, each axis in [-1, 1]
	Fire     bool
	Interact bool
	Debug    bool // toggle the collision overlay
	Snapshot bool // copy a world snapshot to the clipboard
	God      bool // toggle god mode
}

// readInput samples the keyboard. Movement is level-triggered, everything
// else fires on the press edge.
func readInput() Input {
	var in Input
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		in.Move.Y--
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		in.Move.Y++
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		in.Move.X--
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		in.Move.X++
	}
	in.Fire = inpututil.IsKeyJustPressed(ebiten.KeySpace)
	in.Interact = inpututil.IsKeyJustPressed(ebiten.KeyE)
	in.Debug = inpututil.IsKeyJustPressed(ebiten.KeyF3)
	in.Snapshot = inpututil.IsKeyJustPressed(ebiten.KeyF9)
	in.God = inpututil.IsKeyJustPressed(ebiten.KeyG) && ebiten.IsKeyPressed(ebiten.KeyControl)
	return in
}
