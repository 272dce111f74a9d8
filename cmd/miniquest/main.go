// miniquest is a small top-down action RPG.
//
// Usage:
//
//	miniquest play               - Open the game window
//	miniquest simulate           - Run the world headless and print an event report
//	miniquest inspect <map>      - Describe a map's authoring data
//
// Global flags:
//
//	--config <path>     - Config file (default: search ~/.miniquest, ./configs)
//	--seed <value>      - RNG seed, overrides the config (0 = time based)
//	--log-level <level> - debug, info, warn or error
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/miniquest/miniquest/internal/config"
	"github.com/miniquest/miniquest/internal/creature"
	"github.com/miniquest/miniquest/internal/quest"
	"github.com/miniquest/miniquest/internal/world"
)

const (
	mapsDir    = "maps"
	soundsDir  = "sounds"
	questsFile = "quests.yaml"
)

var (
	// Global flags
	flagConfig   string
	flagSeed     int64
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "miniquest",
	Short: "MiniQuest - a small top-down action RPG",
	Long: `MiniQuest is a tile-map action RPG: explore maps, fight skeletons and
archers, open chests and finish quests for the villagers.

Available commands:
  play      - Open the game window
  simulate  - Run the world headless and print an event report
  inspect   - Describe a map's layers, objects and portals

Examples:
  miniquest play
  miniquest play --config ./my.yaml --seed 42
  miniquest simulate --map village --ticks 3200
  miniquest inspect dungeon`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a config YAML")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = use config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (overrides config)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(inspectCmd)
}

// loadConfig resolves the config file and applies the global flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagSeed != 0 {
		cfg.Seed = flagSeed
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	return &cfg, nil
}

func newLogger(cfg *config.Config) (*log.Logger, error) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "miniquest",
	})
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	logger.SetLevel(level)
	return logger, nil
}

// newRegistry returns a registry holding every creature and object type.
func newRegistry() *world.Registry {
	r := world.NewRegistry()
	world.RegisterObjects(r)
	creature.Register(r)
	return r
}

// loadQuests reads the quest definitions under the assets root. A missing
// file means the world has no quests.
func loadQuests(assets fs.FS, logger *log.Logger) (*quest.Log, error) {
	f, err := assets.Open(questsFile)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug("no quest file", "path", questsFile)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open quests: %w", err)
	}
	defer f.Close()

	defs, err := quest.Decode(f)
	if err != nil {
		return nil, err
	}
	logger.Debug("quests loaded", "count", len(defs))
	return quest.NewLog(defs, logger), nil
}
