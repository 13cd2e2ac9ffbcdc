// Package simulator plays many bot-only matches in parallel and aggregates
// the results.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	rand "math/rand/v2"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/shellroulette/internal/bot"
	"github.com/lox/shellroulette/internal/game"
	"github.com/lox/shellroulette/internal/gameid"
	"github.com/lox/shellroulette/internal/randutil"
	"github.com/lox/shellroulette/internal/statistics"
)

// ErrMatchTimeout is returned when a match runs past Config.Timeout.
var ErrMatchTimeout = errors.New("match timed out")

// Config holds configuration for running simulations
type Config struct {
	Matches int
	Players int
	// Seats names the strategy for each seat. A single entry fills every
	// seat; empty means "smart" everywhere.
	Seats []string
	Seed  int64
	// Rotate shifts the strategies one seat per match to remove positional
	// bias.
	Rotate      bool
	Workers     int
	Timeout     time.Duration
	MaxFailures int
	Logger      *log.Logger
	Clock       quartz.Clock
	// Observe, if set, is called for every match before it starts and may
	// return a subscriber for that match's events. It is called from worker
	// goroutines.
	Observe func(run MatchRun) game.EventSubscriber
}

// MatchRun identifies one simulated match.
type MatchRun struct {
	Index      int
	Seed       int64
	ID         string
	Strategies []string
}

// MatchOutcome pairs a run with its result.
type MatchOutcome struct {
	MatchRun
	Result *game.MatchResult
}

// Report is what Run returns.
type Report struct {
	Stats   *statistics.Statistics
	Matches []MatchOutcome
	Elapsed time.Duration
}

// Simulator runs shell roulette simulations
type Simulator struct {
	config   Config
	newAgent func(name string, rng *rand.Rand, logger *log.Logger) (game.Agent, error)
}

// New creates a new simulator with the given configuration, filling in
// defaults.
func New(config Config) *Simulator {
	if config.Players == 0 {
		config.Players = game.MinPlayers
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.MaxFailures <= 0 {
		config.MaxFailures = game.DefaultMaxFailures
	}
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	if config.Clock == nil {
		config.Clock = quartz.NewReal()
	}
	switch len(config.Seats) {
	case 0:
		config.Seats = []string{"smart"}
		fallthrough
	case 1:
		config.Seats = fill(config.Seats[0], config.Players)
	}
	return &Simulator{config: config, newAgent: bot.New}
}

// Validate reports configuration problems before any match is played.
func (s *Simulator) Validate() error {
	c := s.config
	if c.Matches <= 0 {
		return fmt.Errorf("matches must be positive, got %d", c.Matches)
	}
	if c.Players < game.MinPlayers || c.Players > game.MaxPlayers {
		return fmt.Errorf("players must be between %d and %d, got %d", game.MinPlayers, game.MaxPlayers, c.Players)
	}
	if len(c.Seats) != c.Players {
		return fmt.Errorf("%d seat strategies for %d players", len(c.Seats), c.Players)
	}
	for _, name := range c.Seats {
		if _, err := s.newAgent(name, randutil.Derive(0, 0), c.Logger); err != nil {
			return err
		}
	}
	return nil
}

// Run plays every match, at most Workers at a time, and aggregates results
// in match order.
func (s *Simulator) Run(ctx context.Context) (*Report, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	start := s.config.Clock.Now()
	logger := s.config.Logger.WithPrefix("simulator")
	logger.Info("Starting simulation",
		"matches", s.config.Matches,
		"players", s.config.Players,
		"seats", strings.Join(s.config.Seats, ","),
		"seed", s.config.Seed,
		"workers", s.config.Workers)

	outcomes := make([]MatchOutcome, s.config.Matches)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)
	for i := range outcomes {
		run := s.matchRun(i)
		g.Go(func() error {
			result, err := s.playMatchWithTimeout(ctx, run)
			if err != nil {
				return fmt.Errorf("match %d (seed %d): %w", run.Index+1, run.Seed, err)
			}
			outcomes[run.Index] = MatchOutcome{MatchRun: run, Result: result}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := statistics.New(s.config.Players)
	for _, o := range outcomes {
		if err := stats.Add(o.Result, o.Strategies); err != nil {
			return nil, err
		}
	}
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}

	report := &Report{Stats: stats, Matches: outcomes, Elapsed: s.config.Clock.Since(start)}
	logger.Info("Simulation complete", "matches", stats.Matches, "ties", stats.Ties, "elapsed", report.Elapsed)
	return report, nil
}

func (s *Simulator) matchRun(i int) MatchRun {
	seed := s.config.Seed + int64(i)
	strategies := s.config.Seats
	if s.config.Rotate {
		strategies = rotate(strategies, i)
	}
	return MatchRun{
		Index:      i,
		Seed:       seed,
		ID:         gameid.NewGenerator(randutil.Reader(seed, 0)).Generate(),
		Strategies: strategies,
	}
}

// playMatchWithTimeout runs one match, cancelling it if it outlives the
// configured timeout.
func (s *Simulator) playMatchWithTimeout(ctx context.Context, run MatchRun) (*game.MatchResult, error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	if s.config.Timeout > 0 {
		timer := s.config.Clock.AfterFunc(s.config.Timeout, func() {
			cancel(fmt.Errorf("%w after %v", ErrMatchTimeout, s.config.Timeout))
		}, "simulator", "match")
		defer timer.Stop()
	}

	engine, err := s.newEngine(run)
	if err != nil {
		return nil, err
	}
	result, err := engine.PlayMatch(ctx)
	if err != nil {
		if cause := context.Cause(ctx); cause != nil {
			return nil, cause
		}
		return nil, err
	}
	return result, nil
}

func (s *Simulator) newEngine(run MatchRun) (*game.Engine, error) {
	agents := make([]game.Agent, len(run.Strategies))
	for i, name := range run.Strategies {
		agent, err := s.newAgent(name, randutil.Derive(run.Seed, uint64(i)), s.config.Logger)
		if err != nil {
			return nil, err
		}
		agents[i] = agent
	}

	opts := []game.EngineOption{
		game.WithClock(s.config.Clock),
		game.WithMatchID(run.ID),
		game.WithSeatNames(run.Strategies...),
		game.WithMaxFailures(s.config.MaxFailures),
	}
	engine := game.NewEngine(
		game.NewMatch(randutil.New(run.Seed), s.config.Players, game.WithMatchLogger(s.config.Logger)),
		agents, s.config.Logger, opts...)
	if s.config.Observe != nil {
		if sub := s.config.Observe(run); sub != nil {
			engine.EventBus().Subscribe(sub)
		}
	}
	return engine, nil
}

func fill(name string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = name
	}
	return out
}

func rotate(seats []string, by int) []string {
	n := len(seats)
	out := make([]string, n)
	for i := range seats {
		out[(i+by)%n] = seats[i]
	}
	return out
}
