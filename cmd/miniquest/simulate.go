package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"

	"github.com/miniquest/miniquest/internal/audio"
	"github.com/miniquest/miniquest/internal/config"
	"github.com/miniquest/miniquest/internal/game"
	"github.com/miniquest/miniquest/internal/world"
)

var (
	flagTicks   int
	flagRuns    int
	flagMap     string
	flagVerbose bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the world headless and print an event report",
	Long: `Run the world without a window. The hero stands still at the start
position while creatures move, fight, die and respawn around it. Each run
uses the seed --seed + run index so reports are reproducible.

Examples:
  miniquest simulate
  miniquest simulate --map dungeon --ticks 6400 --runs 3 --seed 42
  miniquest simulate --verbose`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		if flagMap != "" {
			cfg.StartMap = flagMap
		}
		return simulate(cmd.OutOrStdout(), cfg, logger, flagRuns, flagTicks, flagVerbose)
	},
}

func init() {
	simulateCmd.Flags().IntVar(&flagTicks, "ticks", 3200, "Ticks per run")
	simulateCmd.Flags().IntVar(&flagRuns, "runs", 1, "Number of runs")
	simulateCmd.Flags().StringVar(&flagMap, "map", "", "Start map (default: config start_map)")
	simulateCmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Record movement and print every event")
}

type runStats struct {
	runIndex int
	seed     int64
	ticks    int

	heroHP, heroMaxHP int
	heroFell          bool
	finalMap          string
	enemies, npcs     int
	pending           int

	firstHitTick    int
	firstDefeatTick int
	hits            int
	playerHits      int
	defeats         int
	respawns        int
	transitions     int

	summary string
	events  string
}

// simulate performs runs headless runs of ticks ticks each and writes one
// report section per run plus an aggregate.
func simulate(w io.Writer, cfg *config.Config, logger *log.Logger, runs, ticks int, verbose bool) error {
	if runs <= 0 {
		return errors.New("--runs must be > 0")
	}
	if ticks <= 0 {
		return errors.New("--ticks must be > 0")
	}
	seedBase := cfg.Seed
	if seedBase == 0 {
		seedBase = 1
	}

	fmt.Fprintf(w, "=== MiniQuest Headless Report ===\n")
	fmt.Fprintf(w, "map=%s runs=%d ticks=%d seed_base=%d\n\n", cfg.StartMap, runs, ticks, seedBase)

	all := make([]runStats, 0, runs)
	for i := range runs {
		run := *cfg
		run.Seed = seedBase + int64(i)
		rs, err := simulateRun(&run, logger, i+1, ticks, verbose)
		if err != nil {
			return fmt.Errorf("run %d: %w", i+1, err)
		}
		all = append(all, rs)
		printRun(w, rs, verbose)
	}
	printAggregate(w, all)
	return nil
}

func simulateRun(cfg *config.Config, logger *log.Logger, runIndex, ticks int, verbose bool) (runStats, error) {
	events := world.NewEventLog(verbose)
	g, err := buildGame(cfg, logger, audio.Nop{}, events, true)
	if err != nil {
		return runStats{}, err
	}
	defer g.Close()

	rs := runStats{runIndex: runIndex, seed: cfg.Seed}
	for rs.ticks < ticks {
		err := g.Step(game.Input{})
		if errors.Is(err, ebiten.Termination) {
			break
		}
		if err != nil {
			return runStats{}, err
		}
		rs.ticks++
	}

	h, m := g.Hero(), g.World()
	rs.heroHP, rs.heroMaxHP = max(h.HP(), 0), h.MaxHP()
	rs.heroFell = g.Over() || h.Dead()
	rs.finalMap = m.ID()
	rs.enemies, rs.npcs, rs.pending = len(m.Enemies()), len(m.NPCs()), m.PendingRespawns()

	entries := events.Entries()
	rs.firstHitTick = firstTick(entries, world.CatCombat, "hit")
	rs.firstDefeatTick = firstTick(entries, world.CatLifecycle, "defeat")
	rs.hits = events.Count(world.CatCombat, "hit")
	rs.playerHits = events.Count(world.CatCombat, "player_hit")
	rs.defeats = events.Count(world.CatLifecycle, "defeat")
	rs.respawns = events.Count(world.CatLifecycle, "respawn")
	rs.transitions = events.Count(world.CatPortal, "transition")
	rs.summary = events.Summary()
	rs.events = events.Format()
	return rs, nil
}

func firstTick(entries []world.Event, category, key string) int {
	for _, e := range entries {
		if e.Category == category && e.Key == key {
			return e.Tick
		}
	}
	return -1
}

func printRun(w io.Writer, rs runStats, verbose bool) {
	fmt.Fprintf(w, "--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Fprintf(w, "ticks=%d final_map=%s hero_hp=%d/%d fell=%v\n",
		rs.ticks, rs.finalMap, rs.heroHP, rs.heroMaxHP, rs.heroFell)
	fmt.Fprintf(w, "population: enemies=%d npcs=%d pending_respawns=%d\n", rs.enemies, rs.npcs, rs.pending)
	fmt.Fprintf(w, "phase_markers: first_hit=%d first_defeat=%d\n", rs.firstHitTick, rs.firstDefeatTick)
	fmt.Fprintf(w, "event_totals: hit=%d player_hit=%d defeat=%d respawn=%d transition=%d\n",
		rs.hits, rs.playerHits, rs.defeats, rs.respawns, rs.transitions)
	if rs.summary != "" {
		fmt.Fprintf(w, "by_key:\n%s", indent(rs.summary))
	}
	if verbose && rs.events != "" {
		fmt.Fprintf(w, "events:\n%s", indent(rs.events))
	}
	fmt.Fprintln(w)
}

func printAggregate(w io.Writer, all []runStats) {
	var hits, playerHits, defeats, respawns, fell int
	for _, rs := range all {
		hits += rs.hits
		playerHits += rs.playerHits
		defeats += rs.defeats
		respawns += rs.respawns
		if rs.heroFell {
			fell++
		}
	}
	n := len(all)
	fmt.Fprintln(w, "--- Aggregate ---")
	fmt.Fprintf(w, "avg: hit=%.1f player_hit=%.1f defeat=%.1f respawn=%.1f\n",
		avg(hits, n), avg(playerHits, n), avg(defeats, n), avg(respawns, n))
	fmt.Fprintf(w, "hero_fell=%d/%d\n", fell, n)
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func indent(s string) string {
	lines := strings.SplitAfter(s, "\n")
	var b strings.Builder
	for _, l := range lines {
		if l == "" {
			continue
		}
		b.WriteString("  ")
		b.WriteString(l)
	}
	return b.String()
}
