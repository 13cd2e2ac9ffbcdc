package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/lox/shellroulette/internal/bot"
	"github.com/lox/shellroulette/internal/game"
	"github.com/lox/shellroulette/internal/gameid"
	"github.com/lox/shellroulette/internal/randutil"
	"github.com/lox/shellroulette/internal/tui"
)

// PlayCmd plays one match in the terminal: the human in seat 1, bots in
// the rest.
type PlayCmd struct {
	Players    int      `short:"p" default:"2" help:"Players at the table (2-4)"`
	Bots       []string `default:"smart" help:"Bot strategies for the other seats, repeated as needed"`
	Name       string   `default:"you" help:"Your name at the table"`
	Seed       *int64   `help:"RNG seed (default: time-based)"`
	LogFile    string   `type:"path" help:"Write logs to this file; the terminal is taken by the game"`
	HistoryDir string   `type:"path" help:"Directory to save the match history in"`
}

func (c *PlayCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	if c.Players < game.MinPlayers || c.Players > game.MaxPlayers {
		return fmt.Errorf("players must be between %d and %d, got %d", game.MinPlayers, game.MaxPlayers, c.Players)
	}

	var logOut io.Writer = io.Discard
	if c.LogFile != "" {
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	logger := setupLogger(logOut, cfg.Level())
	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	seed := time.Now().UnixNano()
	if c.Seed != nil {
		seed = *c.Seed
	}

	ui := tui.NewTUIAgent(game.PlayerOne, logger, cancel)
	agents := []game.Agent{ui}
	names := []string{c.Name}
	for i := 1; i < c.Players; i++ {
		strategy := c.Bots[(i-1)%len(c.Bots)]
		agent, err := bot.New(strategy, randutil.Derive(seed, uint64(i)), logger)
		if err != nil {
			return err
		}
		agents = append(agents, agent)
		names = append(names, fmt.Sprintf("%s-bot", strategy))
	}

	id := gameid.Generate()
	engine := game.NewEngine(
		game.NewMatch(randutil.New(seed), c.Players, game.WithMatchLogger(logger)),
		agents, logger,
		game.WithMatchID(id),
		game.WithSeatNames(names...),
	)
	engine.EventBus().Subscribe(ui)
	if c.HistoryDir != "" {
		writer := &historyWriter{dir: c.HistoryDir, logger: logger}
		engine.EventBus().Subscribe(writer.subscriber(seed))
		defer func() {
			if err := writer.Err(); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		}()
	}

	ui.Start()
	result, err := engine.PlayMatch(ctx)
	if err == nil {
		ui.Log("Match over. Press Ctrl+C to leave.")
		<-ctx.Done()
	}
	ui.Close()

	if result == nil {
		fmt.Println("Match abandoned.")
		return nil
	}
	printMatchSummary(os.Stdout, result)
	fmt.Printf("Seed: %d\n", seed)
	return nil
}

func printMatchSummary(w io.Writer, result *game.MatchResult) {
	fmt.Fprintf(w, "Match %s\n", result.MatchID)
	for _, p := range result.Players {
		fmt.Fprintf(w, "  %s %-12s rounds won: %d\n", p.Player, p.Name, len(p.RoundWins))
	}
	if result.Tied {
		fmt.Fprintln(w, "The match is tied.")
		return
	}
	for _, p := range result.Players {
		if p.Player == result.Winner {
			fmt.Fprintf(w, "%s wins the match.\n", p.Name)
		}
	}
}

