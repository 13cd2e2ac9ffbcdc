package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/lox/shellroulette/internal/bot"
	"github.com/lox/shellroulette/internal/randutil"
	"github.com/lox/shellroulette/internal/spawner"
)

// SpawnCmd starts bot clients as child processes of this binary.
type SpawnCmd struct {
	Server  string   `default:"ws://localhost:8080/ws" help:"Server URL"`
	Bots    []string `default:"smart" help:"Strategies to spawn, one process each"`
	Count   int      `short:"n" default:"1" help:"Processes per strategy"`
	Matches int      `help:"Matches each bot plays before exiting (0 = until interrupted)"`
	Seed    int64    `help:"Base seed; bot n is seeded with seed+n (0 = time-based)"`
}

func (c *SpawnCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	logger := setupLogger(os.Stderr, cfg.Level())
	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locating executable: %w", err)
	}
	specs, err := c.specs(self, g)
	if err != nil {
		return err
	}

	s := spawner.New(c.Server, c.Seed, logger)
	if err := s.SpawnMany(specs); err != nil {
		return err
	}
	logger.Info("Bots running", "count", s.ActiveCount(), "server", c.Server)

	select {
	case <-ctx.Done():
		return s.StopAll()
	case <-s.Done():
		logger.Info("All bots exited")
		return nil
	}
}

// specs builds one spawner.BotSpec per strategy. Each process re-runs this
// binary's bot command; the spawner supplies server, name and seed through
// the environment.
func (c *SpawnCmd) specs(self string, g *Globals) ([]spawner.BotSpec, error) {
	specs := make([]spawner.BotSpec, 0, len(c.Bots))
	for _, strategy := range c.Bots {
		if _, err := bot.New(strategy, randutil.New(0), nil); err != nil {
			return nil, err
		}
		args := []string{"--config", g.Config}
		if g.LogLevel != "" {
			args = append(args, "--log-level", g.LogLevel)
		}
		args = append(args, "bot", strategy)
		if c.Matches > 0 {
			args = append(args, "--matches", strconv.Itoa(c.Matches))
		}
		specs = append(specs, spawner.BotSpec{
			Name:    strategy,
			Command: self,
			Args:    args,
			Count:   c.Count,
		})
	}
	return specs, nil
}
