package main

import (
	"context"
	"os"
	"time"

	"github.com/lox/shellroulette/internal/config"
	"github.com/lox/shellroulette/internal/game"
	"github.com/lox/shellroulette/internal/server"
	"github.com/lox/shellroulette/internal/storage"
)

// ServerCmd runs the lobby. Flags override the config file.
type ServerCmd struct {
	Address         string        `help:"Listen address"`
	Port            int           `help:"Listen port"`
	Players         int           `help:"Players per match (2-4)"`
	Bots            []string      `help:"Strategies that fill empty seats"`
	DecisionTimeout time.Duration `help:"Time a remote player has per decision"`
	LobbyWait       time.Duration `help:"How long to wait for players before adding bots"`
	Matches         int           `help:"Stop after this many matches (0 = run until interrupted)"`
	Seed            *int64        `help:"Base RNG seed; match i uses seed+i (default: time-based)"`
	DB              string        `type:"path" help:"SQLite database to record results in"`
	HistoryDir      string        `type:"path" help:"Directory to write match histories to"`
}

func (c *ServerCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	c.apply(&cfg.Server)
	if c.DB != "" {
		cfg.Storage.Database = c.DB
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := setupLogger(os.Stderr, cfg.Level())
	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	seed := time.Now().UnixNano()
	if c.Seed != nil {
		seed = *c.Seed
	}
	srvConfig := server.Config{
		Addr:            cfg.Server.Addr(),
		Players:         cfg.Server.Players,
		Bots:            cfg.Server.Bots,
		DecisionTimeout: cfg.Server.DecisionTimeoutDuration(),
		LobbyWait:       cfg.Server.LobbyWaitDuration(),
		Seed:            seed,
		Matches:         c.Matches,
		Logger:          logger,
	}

	if c.HistoryDir != "" {
		writer := &historyWriter{dir: c.HistoryDir, logger: logger}
		srvConfig.Observe = func(info server.MatchInfo) game.EventSubscriber {
			return writer.subscriber(info.Seed)
		}
	}
	if cfg.Storage.Database != "" {
		store, err := storage.Open(cfg.Storage.Database)
		if err != nil {
			return err
		}
		defer store.Close()
		srvConfig.OnMatch = func(info server.MatchInfo, result *game.MatchResult) {
			if err := store.SaveMatch(context.Background(), info.Seed, result, time.Now()); err != nil {
				logger.Error("Failed to record match", "match", info.ID, "error", err)
			}
		}
	}

	s, err := server.NewServer(srvConfig)
	if err != nil {
		return err
	}
	logger.Info("Starting shell roulette server",
		"address", srvConfig.Addr,
		"players", srvConfig.Players,
		"bots", srvConfig.Bots,
		"decision_timeout", srvConfig.DecisionTimeout,
		"lobby_wait", srvConfig.LobbyWait,
		"seed", seed)
	return s.ListenAndServe(ctx)
}

func (c *ServerCmd) apply(s *config.ServerConfig) {
	if c.Address != "" {
		s.Address = c.Address
	}
	if c.Port != 0 {
		s.Port = c.Port
	}
	if c.Players != 0 {
		s.Players = c.Players
	}
	if len(c.Bots) > 0 {
		s.Bots = c.Bots
	}
	if c.DecisionTimeout != 0 {
		s.DecisionTimeout = c.DecisionTimeout.String()
	}
	if c.LobbyWait != 0 {
		s.LobbyWait = c.LobbyWait.String()
	}
}
