package game

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	hudPad   = 6
	hudLineH = 12
)

// hudLines returns the status panel text, top to bottom.
func (g *Game) hudLines() []string {
	lines := []string{
		fmt.Sprintf("%s  %s", g.cycle.TimeString(), g.cycle.Period()),
		fmt.Sprintf("HP %d/%d", max(g.hero.HP(), 0), g.hero.MaxHP()),
		"Map: " + g.world.ID(),
	}
	if g.hero.God() {
		lines = append(lines, "GOD MODE")
	}
	if inv := g.hero.Inventory(); len(inv) > 0 {
		parts := make([]string, len(inv))
		for i, it := range inv {
			parts[i] = fmt.Sprintf("%s x%d", it, g.hero.Count(it))
		}
		lines = append(lines, "Bag: "+strings.Join(parts, ", "))
	}
	if g.quests != nil {
		for _, name := range g.quests.Active() {
			done, needed := g.quests.Progress(name)
			lines = append(lines, fmt.Sprintf("> %s %d/%d", name, done, needed))
		}
	}
	if g.showDebug {
		ground, mid, above := g.world.ParticleCounts()
		lines = append(lines,
			fmt.Sprintf("tick %d  enemies %d  npcs %d", g.world.Tick(), len(g.world.Enemies()), len(g.world.NPCs())),
			fmt.Sprintf("proj %d  particles %d/%d/%d  pending %d",
				len(g.world.Projectiles()), ground, mid, above, g.world.PendingRespawns()),
		)
	}
	return lines
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	lines := g.hudLines()
	h := float32(len(lines)*hudLineH + hudPad)
	vector.FillRect(screen, 4, 4, 220, h, color.RGBA{R: 6, G: 10, B: 6, A: 190}, false)
	vector.StrokeRect(screen, 4, 4, 220, h, 1, color.RGBA{R: 60, G: 100, B: 60, A: 180}, false)
	for i, l := range lines {
		g.drawText(screen, l, hudPad+2, hudPad+i*hudLineH, color.White)
	}

	sw, sh := g.Layout(0, 0)
	if p, ok := g.world.OpenPanel(); ok {
		w, _ := text.Measure(p.PanelText(), g.face, hudLineH)
		x := float32(sw)/2 - float32(w)/2 - hudPad
		vector.FillRect(screen, x, float32(sh)/2-20, float32(w)+2*hudPad, 28, color.RGBA{R: 40, G: 30, B: 20, A: 230}, false)
		g.drawText(screen, p.PanelText(), int(x)+hudPad, sh/2-12, color.RGBA{R: 250, G: 235, B: 200, A: 255})
	}
	if g.hero.Dead() {
		g.drawText(screen, "YOU HAVE FALLEN", sw/2-45, sh/3, color.RGBA{R: 220, G: 40, B: 40, A: 255})
	}
	g.messages.Draw(screen, g.face, hudPad+2, sh-hudPad)
}

func (g *Game) drawText(dst *ebiten.Image, s string, x, y int, col color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(col)
	text.Draw(dst, s, g.face, op)
}
