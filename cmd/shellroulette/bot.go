package main

import (
	"fmt"
	"os"
	"time"

	"github.com/lox/shellroulette/internal/bot"
	"github.com/lox/shellroulette/internal/client"
	"github.com/lox/shellroulette/internal/game"
	"github.com/lox/shellroulette/internal/protocol"
	"github.com/lox/shellroulette/internal/randutil"
)

// BotCmd plays a built-in strategy against a server.
type BotCmd struct {
	Strategy string `arg:"" help:"Strategy to play (aggro, rand, self, smart)"`
	Server   string `default:"ws://localhost:8080/ws" env:"SHELLROULETTE_SERVER" help:"Server URL"`
	Name     string `env:"SHELLROULETTE_BOT_NAME" help:"Name to join with (default: <strategy>-<pid>)"`
	Matches  int    `help:"Disconnect after this many matches (0 = until interrupted)"`
	Seed     *int64 `env:"SHELLROULETTE_SEED" help:"Seed for the strategy's randomness"`
	Verbose  bool   `help:"Print the events of every match"`
}

func (c *BotCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	logger := setupLogger(os.Stderr, cfg.Level())
	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	seed := time.Now().UnixNano()
	if c.Seed != nil {
		seed = *c.Seed
	}
	agent, err := bot.New(c.Strategy, randutil.New(seed), logger)
	if err != nil {
		return err
	}
	name := c.Name
	if name == "" {
		name = fmt.Sprintf("%s-%d", c.Strategy, os.Getpid())
	}

	var (
		seat       game.PlayerNumber
		wins, ties int
	)
	options := client.Options{
		Matches: c.Matches,
		OnMatchStart: func(start protocol.MatchStart) {
			seat = start.Seat
		},
		OnMatchEnd: func(end protocol.MatchEnd) {
			switch {
			case end.Tied:
				ties++
			case end.Winner == seat:
				wins++
			}
		},
	}
	if c.Verbose {
		options.OnEvent = func(event protocol.Event) {
			fmt.Println(event.Text)
		}
	}

	cl := client.NewClient(c.Server, name, agent, logger, options)
	if err := cl.Connect(ctx); err != nil {
		return err
	}
	defer cl.Close()

	played, err := cl.Play(ctx)
	fmt.Printf("%s played %d matches: %d won, %d tied\n", name, played, wins, ties)
	if ctx.Err() != nil {
		return nil
	}
	return err
}
