package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"

	"github.com/miniquest/miniquest/internal/audio"
	"github.com/miniquest/miniquest/internal/config"
	"github.com/miniquest/miniquest/internal/game"
	"github.com/miniquest/miniquest/internal/geom"
	"github.com/miniquest/miniquest/internal/mapstate"
	"github.com/miniquest/miniquest/internal/world"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Open the game window",
	Long: `Open the game window on the configured start map.

Controls:
  WASD/Arrows - Move
  Space       - Fire an arrow
  E           - Talk, open chests, read signs
  F3          - Toggle the collision overlay
  F9          - Copy a debug snapshot to the clipboard
  Ctrl+G      - Toggle god mode

Examples:
  miniquest play
  miniquest play --seed 7 --log-level debug`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func runPlay(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	logger.Debug("config loaded", "source", cfg.Source)

	var sound audio.Service = audio.Nop{}
	if cfg.Audio.Enabled {
		bs := audio.NewBeepService(os.DirFS(cfg.AssetsDir), soundsDir, cfg.Audio.MusicVolume, cfg.Audio.SFXVolume, logger)
		if err := bs.Init(); err != nil {
			logger.Warn("audio disabled", "err", err)
		} else {
			sound = bs
		}
	}

	g, err := buildGame(cfg, logger, sound, nil, false)
	if err != nil {
		return err
	}
	defer g.Close()

	// Closing from the handler removes the scratch store even when the
	// window is killed.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		if err := g.Close(); err != nil {
			logger.Warn("close map state", "err", err)
		}
		os.Exit(0)
	}()

	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetTPS(cfg.TPS)

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("run game: %w", err)
	}
	logger.Info("game closed")
	return nil
}

// buildGame wires a Game from cfg: map source, scratch state store and
// quests all live under the assets root. The game owns sound from here on,
// so it is closed when the game cannot be built.
func buildGame(cfg *config.Config, logger *log.Logger, sound audio.Service, events *world.EventLog, headless bool) (g *game.Game, err error) {
	defer func() {
		if err == nil {
			return
		}
		if c, ok := sound.(interface{ Close() }); ok {
			c.Close()
		}
	}()

	assets := os.DirFS(cfg.AssetsDir)
	quests, err := loadQuests(assets, logger)
	if err != nil {
		return nil, err
	}
	store, err := mapstate.Open(cfg.StateBackend, os.TempDir())
	if err != nil {
		return nil, err
	}

	g, err = game.New(game.Options{
		Source:       world.FSSource{FS: assets, Dir: mapsDir, Headless: headless},
		Registry:     newRegistry(),
		Store:        store,
		Quests:       quests,
		Audio:        sound,
		Logger:       logger,
		Events:       events,
		StartMap:     cfg.StartMap,
		Start:        geom.Vec{X: cfg.Start.X, Y: cfg.Start.Y},
		ViewW:        cfg.Window.Width / cfg.Window.Scale,
		ViewH:        cfg.Window.Height / cfg.Window.Scale,
		Scale:        cfg.Window.Scale,
		TPS:          cfg.TPS,
		InitialTime:  cfg.DayNight.InitialTime,
		FollowRate:   cfg.Camera.FollowRate,
		Threshold:    cfg.Camera.Threshold,
		MaxParticles: cfg.Particles.MaxPerLayer,
		Seed:         cfg.Seed,
	})
	if err != nil {
		store.Close()
		return nil, err
	}
	return g, nil
}
