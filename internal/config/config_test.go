package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shellroulette.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, 1000, c.Simulation.Matches)
	assert.Equal(t, 2, c.Simulation.Players)
	assert.Equal(t, []string{"smart"}, c.Simulation.Seats)
	assert.Equal(t, 30*time.Second, c.Simulation.TimeoutDuration())
	assert.Equal(t, "localhost:8080", c.Server.Addr())
	assert.Equal(t, 30*time.Second, c.Server.DecisionTimeoutDuration())
	assert.Equal(t, 10*time.Second, c.Server.LobbyWaitDuration())
	assert.Empty(t, c.Storage.Database)
}

func TestLoadFileMissingReturnsDefaults(t *testing.T) {
	c, err := LoadFile(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)

	c, err = LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
log_level = "debug"

simulation {
  matches = 250
  players = 3
  seats   = ["smart", "aggro", "rand"]
  seed    = 99
  rotate  = true
  timeout = "5s"
}

server {
  port = 9000
  bots = ["rand", "smart"]
}

storage {
  database = "matches.db"
}
`)

	c, err := LoadFile(path)
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, log.DebugLevel, c.Level())
	assert.Equal(t, 250, c.Simulation.Matches)
	assert.Equal(t, 3, c.Simulation.Players)
	assert.Equal(t, []string{"smart", "aggro", "rand"}, c.Simulation.Seats)
	assert.Equal(t, int64(99), c.Simulation.Seed)
	assert.True(t, c.Simulation.Rotate)
	assert.Equal(t, 5*time.Second, c.Simulation.TimeoutDuration())
	assert.Equal(t, 3, c.Simulation.MaxFailures, "default applied")

	assert.Equal(t, "localhost:9000", c.Server.Addr())
	assert.Equal(t, []string{"rand", "smart"}, c.Server.Bots)
	assert.Equal(t, "matches.db", c.Storage.Database)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(writeConfig(t, `simulation {`))
	assert.ErrorContains(t, err, "failed to parse HCL")

	_, err = LoadFile(writeConfig(t, `simulation { matches = "many" }`))
	assert.ErrorContains(t, err, "failed to decode HCL")

	_, err = LoadFile(writeConfig(t, `colour = "red"`))
	assert.ErrorContains(t, err, "failed to decode HCL")
}

func TestApplyEnv(t *testing.T) {
	c := Default()
	err := c.ApplyEnv(map[string]string{
		"SHELLROULETTE_LOG_LEVEL":        "warn",
		"SHELLROULETTE_SIM_MATCHES":      "42",
		"SHELLROULETTE_SIM_SEATS":        "self,aggro",
		"SHELLROULETTE_SIM_SEED":         "7",
		"SHELLROULETTE_SERVER_PORT":      "9999",
		"SHELLROULETTE_STORAGE_DATABASE": "/tmp/x.db",
		"UNRELATED":                      "ignored",
	})
	require.NoError(t, err)

	assert.Equal(t, "warn", c.LogLevel)
	assert.Equal(t, 42, c.Simulation.Matches)
	assert.Equal(t, []string{"self", "aggro"}, c.Simulation.Seats)
	assert.Equal(t, int64(7), c.Simulation.Seed)
	assert.Equal(t, 9999, c.Server.Port)
	assert.Equal(t, "/tmp/x.db", c.Storage.Database)
	assert.Equal(t, 2, c.Simulation.Players, "untouched without a variable")

	assert.Error(t, c.ApplyEnv(map[string]string{"SHELLROULETTE_SIM_MATCHES": "lots"}))
}

func TestLoadAppliesEnvOverFile(t *testing.T) {
	path := writeConfig(t, `simulation { matches = 5 }`)
	t.Setenv("SHELLROULETTE_SIM_MATCHES", "6")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6, c.Simulation.Matches)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "invalid log level"},
		{"matches", func(c *Config) { c.Simulation.Matches = -1 }, "matches must be positive"},
		{"players", func(c *Config) { c.Simulation.Players = 5 }, "players must be between 2 and 4"},
		{"seat count", func(c *Config) { c.Simulation.Seats = []string{"self", "self", "self"} }, "3 seats for 2 players"},
		{"strategy", func(c *Config) { c.Simulation.Seats = []string{"oracle"} }, "invalid strategy oracle"},
		{"workers", func(c *Config) { c.Simulation.Workers = -2 }, "workers must be positive"},
		{"timeout", func(c *Config) { c.Simulation.Timeout = "soon" }, "simulation: timeout"},
		{"port", func(c *Config) { c.Server.Port = 70000 }, "invalid port"},
		{"server players", func(c *Config) { c.Server.Players = 1 }, "server: players"},
		{"bots", func(c *Config) { c.Server.Bots = []string{"smart", "human"} }, "invalid strategy human"},
		{"decision timeout", func(c *Config) { c.Server.DecisionTimeout = "-1s" }, "must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			assert.ErrorContains(t, c.Validate(), tt.want)
		})
	}
}
