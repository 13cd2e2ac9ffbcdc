package server

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/shellroulette/internal/bot"
	"github.com/lox/shellroulette/internal/game"
	"github.com/lox/shellroulette/internal/randutil"
)

// Config holds everything the server and its lobby need.
type Config struct {
	Addr string
	// Players is the table size of every match.
	Players int
	// Bots are the strategies that fill seats nobody joined for, used in
	// order and repeated as needed.
	Bots            []string
	DecisionTimeout time.Duration
	// LobbyWait is how long the first waiting player waits for company
	// before bots fill the table. Zero waits for a full table.
	LobbyWait   time.Duration
	Seed        int64
	Matches     int // zero plays forever
	MaxFailures int
	Logger      *log.Logger
	Clock       quartz.Clock
	// Observe may return a subscriber for a match's events.
	Observe func(info MatchInfo) game.EventSubscriber
	// OnMatch is called after every completed match.
	OnMatch func(info MatchInfo, result *game.MatchResult)
}

// MatchInfo describes a match the lobby started.
type MatchInfo struct {
	Index int
	ID    string
	Seed  int64
	Seats []game.SeatInfo
}

func (c *Config) applyDefaults() {
	if c.Players == 0 {
		c.Players = game.MinPlayers
	}
	if len(c.Bots) == 0 {
		c.Bots = []string{"smart"}
	}
	if c.DecisionTimeout == 0 {
		c.DecisionTimeout = 30 * time.Second
	}
	if c.MaxFailures <= 0 {
		c.MaxFailures = game.DefaultMaxFailures
	}
	if c.Logger == nil {
		c.Logger = log.New(io.Discard)
	}
	if c.Clock == nil {
		c.Clock = quartz.NewReal()
	}
}

// Validate checks the configuration after defaults are applied.
func (c *Config) Validate() error {
	if c.Players < game.MinPlayers || c.Players > game.MaxPlayers {
		return fmt.Errorf("players must be between %d and %d, got %d", game.MinPlayers, game.MaxPlayers, c.Players)
	}
	if c.Matches < 0 {
		return fmt.Errorf("matches must not be negative, got %d", c.Matches)
	}
	if c.LobbyWait < 0 || c.DecisionTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	for _, name := range c.Bots {
		if _, err := bot.New(name, randutil.Derive(0, 0), nil); err != nil {
			return err
		}
	}
	return nil
}
