package game

import (
	"fmt"
	"strings"
)

// debugReport renders the current world state as plain text for bug reports.
func (g *Game) debugReport() string {
	m := g.world
	var b strings.Builder
	fmt.Fprintf(&b, "--- MiniQuest debug report ---\n")
	fmt.Fprintf(&b, "map=%s tick=%d time=%s (%s) interior=%v light=%.1f\n",
		m.ID(), m.Tick(), g.cycle.TimeString(), g.cycle.Period(), m.Interior(), m.LightLevel())

	r := g.hero.Rect()
	fmt.Fprintf(&b, "hero pos=(%.1f,%.1f) hp=%d/%d god=%v dying=%v\n",
		r.X, r.Y, g.hero.HP(), g.hero.MaxHP(), g.hero.God(), g.hero.Dead())
	if inv := g.hero.Inventory(); len(inv) > 0 {
		fmt.Fprintf(&b, "inventory=%s\n", strings.Join(inv, ","))
	}
	c := g.cam.Center()
	fmt.Fprintf(&b, "camera centre=(%.1f,%.1f) shaking=%v\n\n", c.X, c.Y, g.cam.Shaking())

	b.WriteString("== creatures ==\n")
	fmt.Fprintf(&b, "enemies=%d npcs=%d\n", len(m.Enemies()), len(m.NPCs()))
	for _, e := range append(m.Enemies()[:len(m.Enemies()):len(m.Enemies())], m.NPCs()...) {
		er := e.Rect()
		fmt.Fprintf(&b, "  #%d %-10s (%.0f,%.0f) hp=%d\n", e.ID(), e.TypeName(), er.X, er.Y, e.HP())
	}
	fmt.Fprintf(&b, "pending respawns=%d\n\n", m.PendingRespawns())

	ground, mid, above := m.ParticleCounts()
	fmt.Fprintf(&b, "projectiles=%d explosions=%d particles=%d/%d/%d\n",
		len(m.Projectiles()), m.Explosions(), ground, mid, above)
	fmt.Fprintf(&b, "chests=%d objects=%d portals=%d\n", len(m.Chests()), len(m.Objects()), len(m.Portals()))

	if g.quests != nil {
		b.WriteString("\n== quests ==\n")
		for _, name := range g.quests.Active() {
			done, needed := g.quests.Progress(name)
			fmt.Fprintf(&b, "  %s %d/%d\n", name, done, needed)
		}
	}
	if ev := m.Events(); ev != nil {
		b.WriteString("\n== events ==\n")
		b.WriteString(ev.Summary())
	}
	return b.String()
}

// copySnapshot puts the debug report on the clipboard.
func (g *Game) copySnapshot() {
	if err := g.clip(g.debugReport()); err != nil {
		g.log.Warn("clipboard unavailable", "err", err)
		g.messages.Add(g.tick, "Snapshot failed: clipboard unavailable")
		return
	}
	g.messages.Add(g.tick, "Snapshot copied to clipboard")
}
