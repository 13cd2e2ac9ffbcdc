package game

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// DefaultMaxFailures is how many rejected decisions in a row a player gets
// before the engine shoots for them.
const DefaultMaxFailures = 3

// EngineOption configures an Engine during creation.
type EngineOption func(*engineConfig)

type engineConfig struct {
	clock       quartz.Clock
	bus         EventBus
	matchID     string
	names       []string
	maxFailures int
}

// WithClock sets the clock used to timestamp events.
func WithClock(clock quartz.Clock) EngineOption {
	return func(c *engineConfig) {
		c.clock = clock
	}
}

// WithEventBus publishes events on bus instead of a private one.
func WithEventBus(bus EventBus) EngineOption {
	return func(c *engineConfig) {
		c.bus = bus
	}
}

// WithMatchID sets the identifier reported in events and results.
func WithMatchID(id string) EngineOption {
	return func(c *engineConfig) {
		c.matchID = id
	}
}

// WithSeatNames names the agents in seat order.
func WithSeatNames(names ...string) EngineOption {
	return func(c *engineConfig) {
		c.names = names
	}
}

// WithMaxFailures sets how many rejected decisions in a row are tolerated.
func WithMaxFailures(n int) EngineOption {
	return func(c *engineConfig) {
		c.maxFailures = n
	}
}

// PlayerStats counts what one seat did over a match.
type PlayerStats struct {
	Player    PlayerNumber  `json:"player"`
	Name      string        `json:"name"`
	RoundWins []RoundNumber `json:"round_wins"`
	Shots     int           `json:"shots"`
	SelfShots int           `json:"self_shots"`
	LiveHits  int           `json:"live_hits"`
	Kills     int           `json:"kills"`
	Deaths    int           `json:"deaths"`
	ItemsUsed map[Item]int  `json:"items_used,omitempty"`
	Rejected  int           `json:"rejected"`
	Fallbacks int           `json:"fallbacks"`
}

// MatchResult is the outcome of Engine.PlayMatch.
type MatchResult struct {
	MatchID string         `json:"match_id"`
	Rounds  []RoundSummary `json:"rounds"`
	Players []PlayerStats  `json:"players"`
	// Winner is zero when the match ended tied.
	Winner  PlayerNumber `json:"winner,omitempty"`
	Tied    bool         `json:"tied"`
	Actions int          `json:"actions"`
}

// Engine drives a Match to completion with one Agent per seat. Agents only
// return decisions; the engine applies them, keeps each player's shell
// memory and publishes events.
type Engine struct {
	match       *Match
	agents      []Agent
	seats       []SeatInfo
	logger      *log.Logger
	bus         EventBus
	clock       quartz.Clock
	matchID     string
	maxFailures int
	memory      *ShellMemory
	stats       map[PlayerNumber]*PlayerStats
}

// NewEngine creates an engine for match. agents are given in seat order and
// must cover every player.
func NewEngine(match *Match, agents []Agent, logger *log.Logger, opts ...EngineOption) *Engine {
	if len(agents) != match.Players().Count() {
		panic(fmt.Sprintf("game: %d agents for %d players", len(agents), match.Players().Count()))
	}
	cfg := &engineConfig{maxFailures: DefaultMaxFailures}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.clock == nil {
		cfg.clock = quartz.NewReal()
	}
	if cfg.bus == nil {
		cfg.bus = NewEventBus()
	}
	if cfg.maxFailures < 1 {
		cfg.maxFailures = 1
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	e := &Engine{
		match:       match,
		agents:      agents,
		logger:      logger.WithPrefix("engine"),
		bus:         cfg.bus,
		clock:       cfg.clock,
		matchID:     cfg.matchID,
		maxFailures: cfg.maxFailures,
		memory:      NewShellMemory(),
		stats:       make(map[PlayerNumber]*PlayerStats),
	}
	for i, p := range match.Players().Numbers() {
		name := p.String()
		if i < len(cfg.names) && cfg.names[i] != "" {
			name = cfg.names[i]
		}
		e.seats = append(e.seats, SeatInfo{Player: p, Name: name})
		e.stats[p] = &PlayerStats{Player: p, Name: name, ItemsUsed: make(map[Item]int)}
	}
	return e
}

// EventBus returns the bus events are published on.
func (e *Engine) EventBus() EventBus { return e.bus }

// Match returns the match being driven.
func (e *Engine) Match() *Match { return e.match }

// Seats returns the seat names.
func (e *Engine) Seats() []SeatInfo { return e.seats }

// PlayMatch runs the match to completion. It checks ctx between actions and
// returns its error if it is cancelled.
func (e *Engine) PlayMatch(ctx context.Context) (*MatchResult, error) {
	if e.match.Over() {
		return nil, ErrMatchOver
	}
	result := &MatchResult{MatchID: e.matchID}

	e.bus.Publish(NewMatchStartEvent(e.matchID, e.seats, e.clock.Now()))
	e.startRound()

	failures := 0
	for !e.match.Over() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("match %s interrupted: %w", e.matchID, err)
		}

		round := e.match.Round()
		player := round.ActivePlayer()
		stats := e.stats[player]

		var decision Decision
		fallback := failures >= e.maxFailures
		out, err := e.match.TakeAction(func(t *Turn) Action {
			view := NewTurnView(t, e.memory)
			if fallback {
				decision = fallbackDecision(view)
			} else {
				decision = e.agents[e.seatIndex(player)].Decide(view)
			}
			return decision.Apply(t)
		})
		if err != nil {
			return nil, fmt.Errorf("match %s: %w", e.matchID, err)
		}
		result.Actions++

		if fallback {
			stats.Fallbacks++
			e.logger.Warn("Forced shot after rejected decisions", "player", player, "failures", failures)
		}
		if err := out.Action.Err(); err != nil {
			failures++
			stats.Rejected++
			e.logger.Debug("Decision rejected", "player", player, "decision", decision, "error", err)
		} else {
			failures = 0
		}

		e.memory.Observe(out)
		e.record(round.Number(), decision, out, fallback)

		switch {
		case out.Kind == RoundEnded:
			results := e.match.Results()
			e.bus.Publish(NewRoundEndEvent(results[len(results)-1], e.clock.Now()))
			if !e.match.Over() {
				e.startRound()
			}
		case out.NewLoadout != nil:
			e.bus.Publish(NewLoadoutEvent(round.Number(), *out.NewLoadout, e.clock.Now()))
		}
	}

	result.Rounds = e.match.Results()
	winner, ok := e.match.Winner()
	result.Winner, result.Tied = winner, !ok
	for _, p := range e.match.Players().All() {
		stats := e.stats[p.Number()]
		stats.RoundWins = p.Wins()
		result.Players = append(result.Players, *stats)
	}
	e.bus.Publish(NewMatchEndEvent(e.matchID, e.match.Standings(), result.Winner, e.clock.Now()))
	e.logger.Debug("Match complete", "match", e.matchID, "winner", result.Winner, "tied", result.Tied, "actions", result.Actions)
	return result, nil
}

func (e *Engine) startRound() {
	round := e.match.Round()
	e.memory.Reset(round.Loadout())
	now := e.clock.Now()
	e.bus.Publish(NewRoundStartEvent(round.Number(), round.MaxHealth(), round.ActivePlayer(), now))
	e.bus.Publish(NewLoadoutEvent(round.Number(), round.LastLoadout(), now))
}

func (e *Engine) record(round RoundNumber, decision Decision, out Outcome, fallback bool) {
	now := e.clock.Now()
	stats := e.stats[out.Player]
	if out.Shot == nil {
		if out.Action.Err() == nil {
			stats.ItemsUsed[out.Action.Effective()]++
		}
		e.bus.Publish(NewActionEvent(round, decision, out.Action, fallback, now))
		return
	}

	shot := *out.Shot
	stats.Shots++
	if shot.Target == shot.Shooter {
		stats.SelfShots++
	}
	if shot.Shell == Live {
		stats.LiveHits++
	}
	e.bus.Publish(NewShotEvent(round, shot, decision.Reasoning, fallback, now))
	if shot.Eliminated {
		if shot.Target != shot.Shooter {
			stats.Kills++
		}
		e.stats[shot.Target].Deaths++
		e.bus.Publish(NewEliminationEvent(round, shot.Target, shot.Shooter, now))
	}
	e.logger.Debug("Shot fired", "round", round, "shooter", shot.Shooter, "target", shot.Target, "shell", shot.Shell, "damage", shot.Damage)
}

func (e *Engine) seatIndex(p PlayerNumber) int {
	for i, s := range e.seats {
		if s.Player == p {
			return i
		}
	}
	panic(fmt.Sprintf("game: no agent for %s", p))
}

// fallbackDecision shoots the first living opponent, which is always legal.
func fallbackDecision(view TurnView) Decision {
	for _, s := range view.Opponents() {
		return Shoot(s.Player, "fallback after rejected decisions")
	}
	return Shoot(view.Player, "fallback after rejected decisions")
}
