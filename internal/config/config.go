// Package config loads shellroulette settings from an HCL file with
// SHELLROULETTE_* environment overrides on top.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/shellroulette/internal/bot"
	"github.com/lox/shellroulette/internal/game"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SHELLROULETTE_"

// Config represents the complete configuration
type Config struct {
	LogLevel   string           `hcl:"log_level,optional" env:"LOG_LEVEL"`
	Simulation SimulationConfig `envPrefix:"SIM_"`
	Server     ServerConfig     `envPrefix:"SERVER_"`
	Storage    StorageConfig    `envPrefix:"STORAGE_"`
}

// SimulationConfig configures bot-only batch runs
type SimulationConfig struct {
	Matches     int      `hcl:"matches,optional" env:"MATCHES"`
	Players     int      `hcl:"players,optional" env:"PLAYERS"`
	Seats       []string `hcl:"seats,optional" env:"SEATS" envSeparator:","`
	Seed        int64    `hcl:"seed,optional" env:"SEED"`
	Workers     int      `hcl:"workers,optional" env:"WORKERS"`
	Timeout     string   `hcl:"timeout,optional" env:"TIMEOUT"`
	Rotate      bool     `hcl:"rotate,optional" env:"ROTATE"`
	MaxFailures int      `hcl:"max_failures,optional" env:"MAX_FAILURES"`
	HistoryDir  string   `hcl:"history_dir,optional" env:"HISTORY_DIR"`
}

// ServerConfig configures the websocket lobby
type ServerConfig struct {
	Address         string   `hcl:"address,optional" env:"ADDRESS"`
	Port            int      `hcl:"port,optional" env:"PORT"`
	Players         int      `hcl:"players,optional" env:"PLAYERS"`
	Bots            []string `hcl:"bots,optional" env:"BOTS" envSeparator:","`
	DecisionTimeout string   `hcl:"decision_timeout,optional" env:"DECISION_TIMEOUT"`
	LobbyWait       string   `hcl:"lobby_wait,optional" env:"LOBBY_WAIT"`
}

// StorageConfig configures persistence
type StorageConfig struct {
	Database string `hcl:"database,optional" env:"DATABASE"`
}

// fileConfig mirrors Config with optional blocks for decoding.
type fileConfig struct {
	LogLevel   string            `hcl:"log_level,optional"`
	Simulation *SimulationConfig `hcl:"simulation,block"`
	Server     *ServerConfig     `hcl:"server,block"`
	Storage    *StorageConfig    `hcl:"storage,block"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads filename, applies defaults for missing values and then
// environment overrides. A missing file yields the defaults.
func Load(filename string) (*Config, error) {
	c, err := LoadFile(filename)
	if err != nil {
		return nil, err
	}
	if err := c.ApplyEnv(nil); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadFile reads filename without consulting the environment.
func LoadFile(filename string) (*Config, error) {
	if filename == "" {
		return Default(), nil
	}
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var fc fileConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &fc); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	c := &Config{LogLevel: fc.LogLevel}
	if fc.Simulation != nil {
		c.Simulation = *fc.Simulation
	}
	if fc.Server != nil {
		c.Server = *fc.Server
	}
	if fc.Storage != nil {
		c.Storage = *fc.Storage
	}
	c.applyDefaults()
	return c, nil
}

// ApplyEnv overrides fields from SHELLROULETTE_* variables. A nil environ
// reads the process environment.
func (c *Config) ApplyEnv(environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix, Environment: environ}
	if err := env.ParseWithOptions(c, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	sim := &c.Simulation
	if sim.Matches == 0 {
		sim.Matches = 1000
	}
	if sim.Players == 0 {
		sim.Players = game.MinPlayers
	}
	if len(sim.Seats) == 0 {
		sim.Seats = []string{"smart"}
	}
	if sim.Workers == 0 {
		sim.Workers = runtime.GOMAXPROCS(0)
	}
	if sim.Timeout == "" {
		sim.Timeout = "30s"
	}
	if sim.MaxFailures == 0 {
		sim.MaxFailures = game.DefaultMaxFailures
	}

	srv := &c.Server
	if srv.Address == "" {
		srv.Address = "localhost"
	}
	if srv.Port == 0 {
		srv.Port = 8080
	}
	if srv.Players == 0 {
		srv.Players = game.MinPlayers
	}
	if len(srv.Bots) == 0 {
		srv.Bots = []string{"smart"}
	}
	if srv.DecisionTimeout == "" {
		srv.DecisionTimeout = "30s"
	}
	if srv.LobbyWait == "" {
		srv.LobbyWait = "10s"
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}

	sim := c.Simulation
	if sim.Matches <= 0 {
		return fmt.Errorf("simulation: matches must be positive, got %d", sim.Matches)
	}
	if err := validatePlayers(sim.Players); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	if len(sim.Seats) != 1 && len(sim.Seats) != sim.Players {
		return fmt.Errorf("simulation: %d seats for %d players", len(sim.Seats), sim.Players)
	}
	if err := validateStrategies(sim.Seats); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	if sim.Workers <= 0 {
		return fmt.Errorf("simulation: workers must be positive, got %d", sim.Workers)
	}
	if sim.MaxFailures <= 0 {
		return fmt.Errorf("simulation: max_failures must be positive, got %d", sim.MaxFailures)
	}
	if _, err := parseDuration("simulation: timeout", sim.Timeout); err != nil {
		return err
	}

	srv := c.Server
	if srv.Port < 1 || srv.Port > 65535 {
		return fmt.Errorf("server: invalid port: %d", srv.Port)
	}
	if err := validatePlayers(srv.Players); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := validateStrategies(srv.Bots); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if _, err := parseDuration("server: decision_timeout", srv.DecisionTimeout); err != nil {
		return err
	}
	if _, err := parseDuration("server: lobby_wait", srv.LobbyWait); err != nil {
		return err
	}
	return nil
}

// Level returns the configured log level, defaulting to info.
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// TimeoutDuration returns the per-match timeout
func (s SimulationConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(s.Timeout)
	return d
}

// Addr returns the full server address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Address, s.Port)
}

// DecisionTimeoutDuration returns how long a remote player has per decision
func (s ServerConfig) DecisionTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(s.DecisionTimeout)
	return d
}

// LobbyWaitDuration returns how long the lobby waits for players before
// filling seats with bots
func (s ServerConfig) LobbyWaitDuration() time.Duration {
	d, _ := time.ParseDuration(s.LobbyWait)
	return d
}

func validatePlayers(n int) error {
	if n < game.MinPlayers || n > game.MaxPlayers {
		return fmt.Errorf("players must be between %d and %d, got %d", game.MinPlayers, game.MaxPlayers, n)
	}
	return nil
}

func validateStrategies(names []string) error {
	known := bot.Strategies()
	for _, name := range names {
		if !slices.Contains(known, name) {
			return fmt.Errorf("invalid strategy %s", name)
		}
	}
	return nil
}

func parseDuration(field, s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", field)
	}
	return d, nil
}
