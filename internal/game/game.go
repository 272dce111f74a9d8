// Package game is the ebiten front end: it owns the hero, the camera, the
// clock and the HUD, and drives the world map once per tick.
package game

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/miniquest/miniquest/internal/audio"
	"github.com/miniquest/miniquest/internal/camera"
	"github.com/miniquest/miniquest/internal/creature"
	"github.com/miniquest/miniquest/internal/daynight"
	"github.com/miniquest/miniquest/internal/geom"
	"github.com/miniquest/miniquest/internal/mapstate"
	"github.com/miniquest/miniquest/internal/quest"
	"github.com/miniquest/miniquest/internal/world"
)

// herbHeal is the hp restored by eating an enchanted herb.
const herbHeal = 3

var background = color.RGBA{R: 12, G: 14, B: 12, A: 255}

// Options wires a Game. Zero values fall back to defaults that also work
// headless.
type Options struct {
	Source   world.Source
	Registry *world.Registry // nil registers every creature and object type
	Store    mapstate.Store  // nil disables map-state persistence
	Quests   *quest.Log
	Audio    audio.Service
	Logger   *log.Logger
	Events   *world.EventLog

	StartMap string
	Start    geom.Vec

	ViewW, ViewH int // world pixels visible
	Scale        int // screen pixels per world pixel
	TPS          int

	InitialTime  float64
	FollowRate   float64
	Threshold    float64
	MaxParticles int
	Seed         int64 // 0 seeds from the clock

	// Clipboard receives debug snapshots. Defaults to the system clipboard.
	Clipboard func(string) error
}

// Game implements ebiten.Game.
type Game struct {
	world    *world.Map
	hero     *Hero
	cam      *camera.Camera
	cycle    *daynight.Cycle
	quests   *quest.Log
	audio    audio.Service
	store    mapstate.Store
	log      *log.Logger
	messages *MessageLog
	face     text.Face

	viewW, viewH int
	scale        int
	dt           float64
	tick         int

	showDebug    bool
	deathCounter float64
	over         bool
	closeOnce    sync.Once
	closeErr     error

	obstacles []geom.Rect
	worldBuf  *ebiten.Image
	clip      func(string) error
}

// New loads the start map and places the hero on it.
func New(opts Options) (*Game, error) {
	if opts.Source == nil {
		return nil, errors.New("game: no map source")
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Audio == nil {
		opts.Audio = audio.Nop{}
	}
	if opts.Registry == nil {
		opts.Registry = world.NewRegistry()
		world.RegisterObjects(opts.Registry)
		creature.Register(opts.Registry)
	}
	if opts.ViewW <= 0 || opts.ViewH <= 0 {
		opts.ViewW, opts.ViewH = 480, 320
	}
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	if opts.TPS <= 0 {
		opts.TPS = 64
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}

	g := &Game{
		hero:         NewHero(opts.Start),
		cycle:        daynight.New(opts.InitialTime),
		quests:       opts.Quests,
		audio:        opts.Audio,
		store:        opts.Store,
		log:          opts.Logger,
		messages:     NewMessageLog(),
		viewW:        opts.ViewW,
		viewH:        opts.ViewH,
		scale:        opts.Scale,
		dt:           1 / float64(opts.TPS),
		clip:         opts.Clipboard,
		deathCounter: daynight.DeathDuration, // no fade until the countdown starts
	}

	wopts := []world.Option{
		world.WithLogger(opts.Logger),
		world.WithEvents(opts.Events),
		world.WithMusic(opts.Audio),
		world.WithRand(rand.New(rand.NewSource(opts.Seed))), // #nosec G404 -- gameplay randomness
		world.WithMaxParticles(opts.MaxParticles),
	}
	if opts.Store != nil {
		wopts = append(wopts, world.WithStore(opts.Store))
	}
	if opts.Quests != nil {
		wopts = append(wopts, world.WithQuests(opts.Quests))
		opts.Quests.OnComplete = g.questComplete
	}
	m, err := world.New(opts.Source, opts.Registry, opts.StartMap, wopts...)
	if err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}
	g.world = m

	mapW, mapH := m.Size()
	camOpts := []camera.Option{
		camera.WithThreshold(opts.Threshold),
		camera.WithRand(rand.New(rand.NewSource(opts.Seed + 1))), // #nosec G404 -- cosmetic jitter
	}
	if opts.FollowRate > 0 {
		camOpts = append(camOpts, camera.WithFollowRate(opts.FollowRate))
	}
	g.cam = camera.New(g.hero.Rect().Center(), float64(opts.ViewW), float64(opts.ViewH), mapW, mapH, camOpts...)

	src, err := text.NewGoTextFaceSource(bytes.NewReader(gomono.TTF))
	if err != nil {
		return nil, fmt.Errorf("game: load font: %w", err)
	}
	g.face = &text.GoTextFace{Source: src, Size: 10}

	g.log.Info("game started", "map", m.ID(), "seed", opts.Seed)
	return g, nil
}

func (g *Game) questComplete(q quest.Quest) {
	g.messages.Add(g.tick, "Quest complete: "+q.Title)
	g.hero.Give(q.Reward...)
	g.audio.PlaySFX("quest")
}

// World returns the current map.
func (g *Game) World() *world.Map { return g.world }

// Hero returns the player character.
func (g *Game) Hero() *Hero { return g.hero }

// Camera returns the viewport.
func (g *Game) Camera() *camera.Camera { return g.cam }

// Clock returns the day/night cycle.
func (g *Game) Clock() *daynight.Cycle { return g.cycle }

// Messages returns the on-screen message log.
func (g *Game) Messages() *MessageLog { return g.messages }

// Over reports whether the game has ended.
func (g *Game) Over() bool { return g.over }

// Update implements ebiten.Game.
func (g *Game) Update() error {
	return g.Step(readInput())
}

// Step runs one tick with the given input. It returns ebiten.Termination
// once the dying countdown has run out.
func (g *Game) Step(in Input) error {
	if g.over {
		return ebiten.Termination
	}
	g.tick++
	dt := g.dt

	if in.Debug {
		g.showDebug = !g.showDebug
	}
	if in.God {
		g.hero.SetGod(!g.hero.God())
		g.messages.Add(g.tick, fmt.Sprintf("God mode %v", g.hero.God()))
	}
	if in.Snapshot {
		g.copySnapshot()
	}

	if g.hero.Dead() {
		if g.updateDying(dt) {
			return ebiten.Termination
		}
	} else if in.Interact {
		g.interact()
	}
	_, panelOpen := g.world.OpenPanel()
	g.hero.SetDialogue(panelOpen)

	g.obstacles = append(g.obstacles[:0], g.world.Blockers()...)
	g.obstacles = append(g.obstacles, g.world.EntityRects()...)
	g.hero.Update(dt, in.Move, g.obstacles, g.world.Bounds())
	if in.Fire {
		if p := g.hero.Fire(); p != nil {
			g.world.AddProjectile(p)
			g.audio.PlaySFX("arrow")
		}
	}

	hp := g.hero.HP()
	if err := g.world.Update(g.hero, g.cam, dt); err != nil {
		return fmt.Errorf("game: %w", err)
	}
	if g.hero.HP() < hp {
		g.cam.Shake(0.2, 3)
		g.audio.PlaySFX("hurt")
	}

	g.cam.Update(dt, g.hero.Rect().Center())
	g.cycle.Update(dt)
	g.messages.Update(dt)
	return nil
}

// updateDying runs the death countdown and reports when it has finished.
// Interior light fades from the level at the moment of death to zero.
func (g *Game) updateDying(dt float64) bool {
	if !g.cycle.Dying() {
		g.cycle.BeginDying(g.world.LightLevel())
		g.deathCounter = daynight.DeathDuration
		g.messages.Add(g.tick, "You have fallen...")
		g.log.Info("player died", "map", g.world.ID(), "tick", g.tick)
	}
	g.deathCounter -= dt
	if g.world.Interior() {
		g.world.SetLightLevel(g.cycle.DyingLightLevel(g.deathCounter))
	}
	if g.deathCounter >= 0 {
		return false
	}
	g.over = true
	if err := g.Close(); err != nil {
		g.log.Warn("close map state", "err", err)
	}
	return true
}

// interact closes an open panel, or else talks to an npc in reach, or else
// uses a chest or object in reach.
func (g *Game) interact() {
	if p, ok := g.world.OpenPanel(); ok {
		p.CloseUI()
		return
	}
	reach := g.hero.Reach()
	if npc, ok := g.world.NPCAt(reach); ok {
		g.talk(npc)
		return
	}
	in, ok := g.world.InteractAt(reach)
	if !ok {
		return
	}
	g.hero.Give(in.Items...)
	for _, it := range in.Items {
		if it == "EnchantedHerb" {
			g.hero.Heal(herbHeal)
		}
	}
	g.messages.Add(g.tick, in.Message)
	if len(in.Items) > 0 {
		g.audio.PlaySFX("pickup")
	}
}

func (g *Game) talk(npc world.Combatant) {
	if g.quests == nil {
		return
	}
	if q, ok := g.quests.Offer(npc.TypeName()); ok {
		g.messages.Add(g.tick, "Quest started: "+q.Title)
		return
	}
	g.messages.Add(g.tick, "The "+npc.TypeName()+" has nothing for you.")
}

// Close removes the scratch map-state store. It is safe to call more than
// once and from a signal handler.
func (g *Game) Close() error {
	g.closeOnce.Do(func() {
		if g.store != nil {
			g.closeErr = g.store.Close()
		}
		if c, ok := g.audio.(interface{ Close() }); ok {
			c.Close()
		}
	})
	return g.closeErr
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	if g.worldBuf == nil {
		g.worldBuf = ebiten.NewImage(g.viewW, g.viewH)
	}
	g.worldBuf.Fill(background)

	view := g.cam.Rect()
	g.world.Draw(g.worldBuf, view, g.hero)
	if g.showDebug {
		g.world.DrawDebug(g.worldBuf, view)
	}
	if a := g.darkness(); a > 0 {
		vector.FillRect(g.worldBuf, 0, 0, float32(g.viewW), float32(g.viewH), color.RGBA{A: a}, false)
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.scale), float64(g.scale))
	screen.DrawImage(g.worldBuf, op)
	g.drawHUD(screen)
}

// darkness returns the overlay alpha for the current clock and map.
func (g *Game) darkness() uint8 {
	return uint8(g.cycle.Alpha(g.world.Interior(), g.world.LightLevel(), g.hero.Dead(), g.deathCounter))
}

// Layout implements ebiten.Game.
func (g *Game) Layout(_, _ int) (int, int) {
	return g.viewW * g.scale, g.viewH * g.scale
}
