package game

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/miniquest/miniquest/internal/creature"
	"github.com/miniquest/miniquest/internal/geom"
	"github.com/miniquest/miniquest/internal/mapstate"
	"github.com/miniquest/miniquest/internal/quest"
	"github.com/miniquest/miniquest/internal/world"
)

const questYAML = `
quests:
  - name: cull
    title: Clear the field
    giver: Villager
    objectives:
      - target: Dummy
        count: 1
    reward: [RareGem]
`

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) write(s string) error {
	c.text = s
	return c.err
}

func registry() *world.Registry {
	r := world.NewRegistry()
	world.RegisterObjects(r)
	world.RegisterTestCreatures(r)
	creature.Register(r)
	return r
}

func newGame(t *testing.T, b *world.MapBuilder, opts Options) *Game {
	t.Helper()
	opts.Source = world.MemSource{"field": b.Build()}
	opts.StartMap = "field"
	if opts.Registry == nil {
		opts.Registry = registry()
	}
	if opts.Seed == 0 {
		opts.Seed = 1
	}
	g, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func steps(t *testing.T, g *Game, n int, in Input) {
	t.Helper()
	for range n {
		if err := g.Step(in); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
}

func TestNew_RequiresSource(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatal("New accepted a missing map source")
	}
}

func TestNew_MissingStartMap(t *testing.T) {
	_, err := New(Options{Source: world.MemSource{}, StartMap: "nowhere"})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want not-exist", err)
	}
}

func TestStep_MovesHeroAndCamera(t *testing.T) {
	g := newGame(t, world.NewMapBuilder(40, 30, 16), Options{Start: geom.Vec{X: 300, Y: 200}})
	cam := g.Camera().Center()
	steps(t, g, 64, Input{Move: geom.Vec{X: 1}})

	if x := g.Hero().Rect().X; x < 370 || x > 390 {
		t.Errorf("hero x = %v, want about 380 after a second", x)
	}
	if g.Camera().Center().X <= cam.X {
		t.Errorf("camera did not follow: %v -> %v", cam, g.Camera().Center())
	}
}

func TestStep_FireAddsPlayerArrow(t *testing.T) {
	g := newGame(t, world.NewMapBuilder(40, 30, 16), Options{Start: geom.Vec{X: 100, Y: 100}})
	steps(t, g, 1, Input{Fire: true})
	steps(t, g, 1, Input{Fire: true}) // still reloading

	ps := g.World().Projectiles()
	if len(ps) != 1 || ps[0].Owner != world.PlayerID {
		t.Fatalf("projectiles = %d, want one player arrow", len(ps))
	}
}

func TestInteract_ChestFillsInventory(t *testing.T) {
	b := world.NewMapBuilder(20, 15, 16).Chest("c1", 100, 130, 16, 16, "Key", "Potion")
	g := newGame(t, b, Options{Start: geom.Vec{X: 100, Y: 100}})
	steps(t, g, 1, Input{Interact: true})

	if g.Hero().Count("Key") != 1 || g.Hero().Count("Potion") != 1 {
		t.Fatalf("inventory = %v", g.Hero().Inventory())
	}
	msgs := g.Messages().Recent()
	if len(msgs) != 1 || msgs[0].Text != "Opened c1" {
		t.Errorf("messages = %+v", msgs)
	}
}

func TestInteract_SignPanelFreezesHero(t *testing.T) {
	b := world.NewMapBuilder(20, 15, 16).Object("SignPostObject", 100, 130, 24, 32)
	g := newGame(t, b, Options{Start: geom.Vec{X: 100, Y: 100}})

	steps(t, g, 1, Input{Interact: true})
	if !g.Hero().InDialogue() {
		t.Fatal("panel did not open")
	}
	x := g.Hero().Rect().X
	steps(t, g, 10, Input{Move: geom.Vec{X: 1}})
	if g.Hero().Rect().X != x {
		t.Errorf("hero walked while reading")
	}
	steps(t, g, 1, Input{Interact: true})
	if g.Hero().InDialogue() {
		t.Errorf("panel did not close")
	}
}

func TestQuest_OfferedByNPCAndCompletedByDefeat(t *testing.T) {
	defs, err := quest.Decode(strings.NewReader(questYAML))
	if err != nil {
		t.Fatal(err)
	}
	log := quest.NewLog(defs, nil)
	b := world.NewMapBuilder(20, 15, 16).
		NPC("Villager", 100, 130, 5).
		Enemy("Dummy", 180, 100, 1, false, 0)
	g := newGame(t, b, Options{Start: geom.Vec{X: 100, Y: 100}, Quests: log})

	steps(t, g, 1, Input{Interact: true})
	if !log.IsActive("cull") {
		t.Fatalf("quest state = %v", log.State("cull"))
	}

	// Turn right and shoot the dummy.
	steps(t, g, 1, Input{Move: geom.Vec{X: 1}})
	steps(t, g, 40, Input{Fire: true})
	if !log.IsComplete("cull") {
		t.Fatalf("quest state = %v after the dummy fell", log.State("cull"))
	}
	if g.Hero().Count("RareGem") != 1 {
		t.Errorf("reward not granted: %v", g.Hero().Inventory())
	}
	var texts []string
	for _, m := range g.Messages().Recent() {
		texts = append(texts, m.Text)
	}
	if got := strings.Join(texts, "|"); !strings.Contains(got, "Quest started: Clear the field") || !strings.Contains(got, "Quest complete: Clear the field") {
		t.Errorf("messages = %s", got)
	}
}

func TestDying_EndsAfterCountdownAndRemovesStore(t *testing.T) {
	store, err := mapstate.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	b := world.NewMapBuilder(20, 15, 16).Property("interior", true).Property("light_level", 8.0)
	g := newGame(t, b, Options{Start: geom.Vec{X: 100, Y: 100}, Store: store})
	g.Hero().TakeDamage(100)

	ticks := 0
	for {
		err := g.Step(Input{})
		ticks++
		if errors.Is(err, ebiten.Termination) {
			break
		}
		if err != nil {
			t.Fatalf("Step: %v", err)
		}
		if ticks == 65 {
			if l := g.World().LightLevel(); l < 3.5 || l > 4.5 {
				t.Errorf("light after one second = %v, want about half of 8", l)
			}
		}
		if ticks > 200 {
			t.Fatal("dying never finished")
		}
	}
	if ticks < 128 || ticks > 131 {
		t.Errorf("dying took %d ticks, want about two seconds", ticks)
	}
	if !g.Over() {
		t.Errorf("game not over")
	}
	if _, err := os.Stat(store.Dir()); !os.IsNotExist(err) {
		t.Errorf("scratch store still present: %v", err)
	}
	if err := g.Step(Input{}); !errors.Is(err, ebiten.Termination) {
		t.Errorf("step after game over = %v", err)
	}
}

func TestDying_FadesInFromCurrentDarkness(t *testing.T) {
	g := newGame(t, world.NewMapBuilder(20, 15, 16), Options{Start: geom.Vec{X: 100, Y: 100}, InitialTime: 12})
	if a := g.darkness(); a != 0 {
		t.Fatalf("noon darkness = %d, want 0", a)
	}
	g.Hero().TakeDamage(100)

	// Drawn before the countdown started.
	if a := g.darkness(); a > 8 {
		t.Errorf("darkness on the first dead frame = %d, want no jump from 0", a)
	}
	steps(t, g, 1, Input{})
	if a := g.darkness(); a > 8 {
		t.Errorf("darkness after one dying tick = %d, want a gradual fade", a)
	}
	steps(t, g, 64, Input{})
	if a := g.darkness(); a < 100 || a > 155 {
		t.Errorf("darkness after one second = %d, want about half", a)
	}
}

func TestStep_GodModeToggle(t *testing.T) {
	g := newGame(t, world.NewMapBuilder(20, 15, 16), Options{})
	steps(t, g, 1, Input{God: true})
	if !g.Hero().God() || !g.Hero().Invulnerable() {
		t.Fatal("god mode not enabled")
	}
	steps(t, g, 1, Input{God: true})
	if g.Hero().God() {
		t.Fatal("god mode not disabled")
	}
}

func TestSnapshot_CopiesReport(t *testing.T) {
	clip := &fakeClipboard{}
	b := world.NewMapBuilder(20, 15, 16).Enemy("Dummy", 200, 100, 3, false, 0)
	g := newGame(t, b, Options{Clipboard: clip.write})
	steps(t, g, 1, Input{Snapshot: true})

	for _, want := range []string{"map=field", "Dummy", "enemies=1"} {
		if !strings.Contains(clip.text, want) {
			t.Errorf("snapshot missing %q:\n%s", want, clip.text)
		}
	}

	clip.err = errors.New("no display")
	steps(t, g, 1, Input{Snapshot: true})
	msgs := g.Messages().Recent()
	if last := msgs[len(msgs)-1].Text; !strings.HasPrefix(last, "Snapshot failed") {
		t.Errorf("last message = %q", last)
	}
}

func TestHUDLines(t *testing.T) {
	defs, _ := quest.Decode(strings.NewReader(questYAML))
	log := quest.NewLog(defs, nil)
	_ = log.Start("cull")
	g := newGame(t, world.NewMapBuilder(20, 15, 16), Options{Quests: log, InitialTime: 21.5})
	g.Hero().Give("Logs", "Logs")

	got := strings.Join(g.hudLines(), "\n")
	for _, want := range []string{"21:30  Evening", "HP 10/10", "Map: field", "Logs x2", "> cull 0/1"} {
		if !strings.Contains(got, want) {
			t.Errorf("hud missing %q:\n%s", want, got)
		}
	}
}
