// Package config loads the game configuration from YAML.
//
// Search order: an explicit path, then ~/.miniquest/config.yaml, then
// ./configs/miniquest.yaml, then the embedded default. A found file is laid
// over the embedded default, so it only needs the keys it changes.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Backends accepted by state_backend.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config is the full game configuration.
type Config struct {
	Window       Window    `yaml:"window"`
	TPS          int       `yaml:"tps"`
	AssetsDir    string    `yaml:"assets_dir"`
	StartMap     string    `yaml:"start_map"`
	Start        Point     `yaml:"start"`
	StateBackend string    `yaml:"state_backend"`
	Camera       Camera    `yaml:"camera"`
	DayNight     DayNight  `yaml:"day_night"`
	Particles    Particles `yaml:"particles"`
	Audio        Audio     `yaml:"audio"`
	Seed         int64     `yaml:"seed"` // 0 picks a time based seed
	LogLevel     string    `yaml:"log_level"`

	// Source is the file the configuration came from, or "embedded".
	Source string `yaml:"-"`
}

type Window struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
	Scale  int    `yaml:"scale"` // screen pixels per world pixel
}

type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type Camera struct {
	FollowRate float64 `yaml:"follow_rate"`
	Threshold  float64 `yaml:"threshold"`
}

type DayNight struct {
	InitialTime float64 `yaml:"initial_time"` // hours, [0, 24)
}

type Particles struct {
	MaxPerLayer int `yaml:"max_per_layer"`
}

type Audio struct {
	Enabled     bool    `yaml:"enabled"`
	MusicVolume float64 `yaml:"music_volume"`
	SFXVolume   float64 `yaml:"sfx_volume"`
}

// Default returns the embedded configuration.
func Default() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		panic(fmt.Sprintf("config: embedded default: %v", err))
	}
	cfg.Source = "embedded"
	return cfg
}

// Load resolves the configuration using the search order and validates it.
// A missing customPath is an error; missing files further down the order
// are skipped.
func Load(customPath string) (Config, error) {
	var candidates []string
	if customPath != "" {
		if _, err := os.Stat(customPath); err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
		candidates = append(candidates, customPath)
	} else {
		if p := userConfigPath(); p != "" {
			candidates = append(candidates, p)
		}
		candidates = append(candidates, filepath.Join("configs", "miniquest.yaml"))
	}

	cfg := Default()
	for _, p := range candidates {
		data, err := os.ReadFile(p)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", p, err)
		}
		if err := overlay(&cfg, data); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", p, err)
		}
		cfg.Source = p
		break
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", cfg.Source, err)
	}
	return cfg, nil
}

// overlay decodes data on top of cfg. Unknown keys are rejected so typos
// do not pass silently.
func overlay(cfg *Config, data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".miniquest", "config.yaml")
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	case c.Window.Scale <= 0:
		return fmt.Errorf("window scale %d must be positive", c.Window.Scale)
	case c.TPS <= 0:
		return fmt.Errorf("tps %d must be positive", c.TPS)
	case c.StartMap == "":
		return errors.New("start_map is empty")
	case c.StateBackend != BackendFile && c.StateBackend != BackendSQLite:
		return fmt.Errorf("unknown state_backend %q", c.StateBackend)
	case c.DayNight.InitialTime < 0 || c.DayNight.InitialTime >= 24:
		return fmt.Errorf("day_night.initial_time %v outside [0, 24)", c.DayNight.InitialTime)
	case c.Camera.FollowRate < 0 || c.Camera.Threshold < 0:
		return errors.New("camera settings must not be negative")
	case c.Particles.MaxPerLayer < 0:
		return fmt.Errorf("particles.max_per_layer %d must not be negative", c.Particles.MaxPerLayer)
	case c.Audio.MusicVolume < 0 || c.Audio.SFXVolume < 0:
		return errors.New("audio volumes must not be negative")
	}
	return nil
}
