package game

import (
	"fmt"
	"io"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
)

// RoundSummary is handed to round-end hooks.
type RoundSummary struct {
	Round     RoundNumber  `json:"round"`
	Winner    PlayerNumber `json:"winner"`
	FirstDead PlayerNumber `json:"first_dead"`
	Loadouts  int          `json:"loadouts"`
}

// MatchOption configures a Match during creation.
type MatchOption func(*matchConfig)

type matchConfig struct {
	logger *log.Logger
	hooks  []func(RoundSummary)
}

// WithMatchLogger sets the logger used for round transitions.
func WithMatchLogger(logger *log.Logger) MatchOption {
	return func(c *matchConfig) {
		c.logger = logger
	}
}

// WithRoundHook registers a function called after each round's winner has
// been recorded and before the next round is built.
func WithRoundHook(fn func(RoundSummary)) MatchOption {
	return func(c *matchConfig) {
		c.hooks = append(c.hooks, fn)
	}
}

// Match sequences the three rounds of a game and records each round's winner
// on the players. Every round is built from the one before it.
type Match struct {
	players *GamePlayers
	round   *Round
	last    *Round
	logger  *log.Logger
	hooks   []func(RoundSummary)
	results []RoundSummary
}

// NewMatch creates players One through count and starts round one.
func NewMatch(rng *rand.Rand, count int, opts ...MatchOption) *Match {
	cfg := &matchConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = log.New(io.Discard)
	}

	players := NewGamePlayers(count)
	m := &Match{
		players: players,
		round:   NewRound(rng, players.Numbers()),
		logger:  cfg.logger.WithPrefix("match"),
		hooks:   cfg.hooks,
	}
	m.logger.Debug("Round started", "round", m.round.Number(), "maxHealth", m.round.MaxHealth(), "first", m.round.ActivePlayer())
	return m
}

// Players returns the match participants.
func (m *Match) Players() *GamePlayers { return m.players }

// Round returns the round in progress, or nil once the match is over.
func (m *Match) Round() *Round { return m.round }

// LastRound returns the most recently finished round, or nil.
func (m *Match) LastRound() *Round { return m.last }

// Over reports whether all rounds have been played.
func (m *Match) Over() bool { return m.round == nil }

// Results returns the finished rounds in order.
func (m *Match) Results() []RoundSummary {
	out := make([]RoundSummary, len(m.results))
	copy(out, m.results)
	return out
}

// TakeAction forwards one action to the current round. When the round ends
// its winner is recorded and, unless it was the final round, the next round
// is started before returning.
func (m *Match) TakeAction(decide func(*Turn) Action) (Outcome, error) {
	if m.round == nil {
		return Outcome{}, ErrMatchOver
	}
	out := m.round.TakeAction(decide)
	if out.Kind != RoundEnded {
		return out, nil
	}

	finished := m.round
	if err := m.players.RegisterWin(out.Winner, finished.Number()); err != nil {
		return out, fmt.Errorf("record round %s winner: %w", finished.Number(), err)
	}
	summary := RoundSummary{
		Round:     finished.Number(),
		Winner:    out.Winner,
		FirstDead: out.FirstDead,
		Loadouts:  finished.Loadouts(),
	}
	m.results = append(m.results, summary)
	m.logger.Debug("Round ended", "round", summary.Round, "winner", summary.Winner, "firstDead", summary.FirstDead)
	for _, hook := range m.hooks {
		hook(summary)
	}

	m.last = finished
	if finished.Number() == FinalRound {
		m.round = nil
		return out, nil
	}
	m.round = NextRound(finished)
	m.logger.Debug("Round started", "round", m.round.Number(), "maxHealth", m.round.MaxHealth(), "first", m.round.ActivePlayer())
	return out, nil
}

// Standing is a player's position in the match table.
type Standing struct {
	Player PlayerNumber  `json:"player"`
	Wins   []RoundNumber `json:"wins"`
}

// Standings returns every player's round wins in seat order.
func (m *Match) Standings() []Standing {
	out := make([]Standing, 0, m.players.Count())
	for _, p := range m.players.All() {
		out = append(out, Standing{Player: p.Number(), Wins: p.Wins()})
	}
	return out
}

// Winner returns the player with the most round wins. It reports false while
// the match is running and when the lead is shared.
func (m *Match) Winner() (PlayerNumber, bool) {
	if !m.Over() {
		return 0, false
	}
	var best PlayerNumber
	bestWins, tied := -1, false
	for _, p := range m.players.All() {
		wins := len(p.wins)
		switch {
		case wins > bestWins:
			best, bestWins, tied = p.number, wins, false
		case wins == bestWins:
			tied = true
		}
	}
	if tied {
		return 0, false
	}
	return best, true
}
