package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/shellroulette/internal/config"
	"github.com/lox/shellroulette/internal/game"
	"github.com/lox/shellroulette/internal/history"
	"github.com/lox/shellroulette/internal/simulator"
	"github.com/lox/shellroulette/internal/statistics"
	"github.com/lox/shellroulette/internal/storage"
)

// SimulateCmd runs bot-only matches. Flags override the config file.
type SimulateCmd struct {
	Matches     int           `short:"n" help:"Number of matches to play"`
	Players     int           `short:"p" help:"Players per match (2-4)"`
	Seats       []string      `short:"s" help:"Strategy per seat, or one for every seat (aggro, rand, self, smart)"`
	Seed        *int64        `help:"Base RNG seed; match i uses seed+i (default: time-based)"`
	Workers     int           `short:"w" help:"Matches to play in parallel"`
	Timeout     time.Duration `help:"Per-match timeout"`
	Rotate      bool          `help:"Rotate strategies one seat per match"`
	MaxFailures int           `help:"Rejected decisions in a row before a forced shot"`
	DB          string        `type:"path" help:"SQLite database to record results in"`
	HistoryDir  string        `type:"path" help:"Directory to write match histories to"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	c.apply(&cfg.Simulation)
	if c.DB != "" {
		cfg.Storage.Database = c.DB
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	sim := cfg.Simulation
	if c.Seed == nil && sim.Seed == 0 {
		sim.Seed = time.Now().UnixNano()
	}

	logger := setupLogger(os.Stderr, cfg.Level())
	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	simConfig := simulator.Config{
		Matches:     sim.Matches,
		Players:     sim.Players,
		Seats:       sim.Seats,
		Seed:        sim.Seed,
		Rotate:      sim.Rotate,
		Workers:     sim.Workers,
		Timeout:     sim.TimeoutDuration(),
		MaxFailures: sim.MaxFailures,
		Logger:      logger,
	}
	var writer *historyWriter
	if sim.HistoryDir != "" {
		writer = &historyWriter{dir: sim.HistoryDir, logger: logger}
		simConfig.Observe = func(run simulator.MatchRun) game.EventSubscriber {
			return writer.subscriber(run.Seed)
		}
	}

	fmt.Printf("Simulating %d matches: %d players (seed %d, %d workers)\n",
		sim.Matches, sim.Players, sim.Seed, sim.Workers)
	report, err := simulator.New(simConfig).Run(ctx)
	if err != nil {
		return err
	}
	printReport(os.Stdout, report)

	if writer != nil {
		if err := writer.Err(); err != nil {
			return err
		}
		fmt.Printf("\nWrote %d match histories to %s\n", report.Stats.Matches, sim.HistoryDir)
	}
	if cfg.Storage.Database != "" {
		if err := recordReport(ctx, cfg.Storage.Database, report); err != nil {
			return err
		}
		fmt.Printf("Recorded %d matches in %s\n", report.Stats.Matches, cfg.Storage.Database)
	}
	return nil
}

// apply copies the flags that were set over s.
func (c *SimulateCmd) apply(s *config.SimulationConfig) {
	if c.Matches != 0 {
		s.Matches = c.Matches
	}
	if c.Players != 0 {
		s.Players = c.Players
	}
	if len(c.Seats) > 0 {
		s.Seats = c.Seats
	}
	if c.Seed != nil {
		s.Seed = *c.Seed
	}
	if c.Workers != 0 {
		s.Workers = c.Workers
	}
	if c.Timeout != 0 {
		s.Timeout = c.Timeout.String()
	}
	if c.Rotate {
		s.Rotate = true
	}
	if c.MaxFailures != 0 {
		s.MaxFailures = c.MaxFailures
	}
	if c.HistoryDir != "" {
		s.HistoryDir = c.HistoryDir
	}
}

func recordReport(ctx context.Context, path string, report *simulator.Report) error {
	store, err := storage.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	now := time.Now()
	for _, m := range report.Matches {
		if err := store.SaveMatch(ctx, m.Seed, m.Result, now); err != nil {
			return err
		}
	}
	return nil
}

// historyWriter saves each match's history as soon as it ends.
type historyWriter struct {
	dir    string
	logger *log.Logger

	mu  sync.Mutex
	err error
}

func (w *historyWriter) subscriber(seed int64) game.EventSubscriber {
	rec := history.NewRecorder(seed)
	return game.EventSubscriberFunc(func(event game.GameEvent) {
		rec.OnEvent(event)
		if event.EventType() != game.EventTypeMatchEnd {
			return
		}
		path, err := history.Save(w.dir, rec.History())
		if err != nil {
			w.mu.Lock()
			w.err = err
			w.mu.Unlock()
			w.logger.Error("Failed to save match history", "error", err)
			return
		}
		w.logger.Debug("Saved match history", "path", path)
	})
}

// Err returns the last save failure.
func (w *historyWriter) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// printReport writes the simulation summary.
func printReport(w io.Writer, report *simulator.Report) {
	stats := report.Stats
	fmt.Fprintf(w, "\n=== Simulation Results ===\n")
	fmt.Fprintf(w, "Matches: %d  Rounds: %d  Actions: %d  Ties: %d  Elapsed: %s\n",
		stats.Matches, stats.Rounds, stats.Actions, stats.Ties, report.Elapsed.Round(time.Millisecond))
	if report.Elapsed > 0 {
		fmt.Fprintf(w, "Speed: %.0f matches/sec\n", float64(stats.Matches)/report.Elapsed.Seconds())
	}

	fmt.Fprintf(w, "\nBy seat:\n")
	writeSeatTable(w, stats.Seats)

	fmt.Fprintf(w, "\nBy strategy:\n")
	var strategies []*statistics.SeatStats
	for _, name := range stats.StrategyNames() {
		strategies = append(strategies, stats.Strategies[name])
	}
	writeSeatTable(w, strategies)
}
