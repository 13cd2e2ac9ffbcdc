package spawner

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func TestSpawnerBasic(t *testing.T) {
	s := New("ws://localhost:8080/ws", 0, testLogger())
	require.NoError(t, s.Spawn(BotSpec{Command: "echo", Args: []string{"hello"}}))

	s.Wait()
	assert.Equal(t, 0, s.ActiveCount())
	assert.NoError(t, s.StopAll())
}

func TestSpawnerMultiple(t *testing.T) {
	s := New("ws://localhost:8080/ws", 0, testLogger())
	require.NoError(t, s.Spawn(BotSpec{Command: "sleep", Args: []string{"0.2"}, Count: 3}))
	assert.Equal(t, 3, s.ActiveCount())

	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("bots did not exit")
	}
	assert.Equal(t, 0, s.ActiveCount())
}

func TestSpawnerEnvironment(t *testing.T) {
	out := t.TempDir()
	script := filepath.Join(out, "env.sh")
	require.NoError(t, os.WriteFile(script, []byte(`#!/bin/sh
echo "$SHELLROULETTE_SERVER $SHELLROULETTE_BOT_NAME $SHELLROULETTE_SEED $EXTRA" > "$OUT/$SHELLROULETTE_BOT_NAME"
`), 0o755))

	s := New("ws://example.test/ws", 42, testLogger())
	require.NoError(t, s.SpawnMany([]BotSpec{
		{Name: "smart", Command: "sh", Args: []string{script}, Env: map[string]string{"OUT": out, "EXTRA": "x"}},
		{Name: "aggro", Command: "sh", Args: []string{script}, Count: 2, Env: map[string]string{"OUT": out, "EXTRA": "y"}},
	}))
	s.Wait()

	for name, want := range map[string]string{
		"smart-1": "ws://example.test/ws smart-1 43 x",
		"aggro-2": "ws://example.test/ws aggro-2 44 y",
		"aggro-3": "ws://example.test/ws aggro-3 45 y",
	} {
		data, err := os.ReadFile(filepath.Join(out, name))
		require.NoError(t, err, name)
		assert.Equal(t, want, strings.TrimSpace(string(data)))
	}
}

func TestSpawnerStop(t *testing.T) {
	s := New("ws://localhost:8080/ws", 0, testLogger())
	require.NoError(t, s.Spawn(BotSpec{Command: "sleep", Args: []string{"10"}}))
	assert.Equal(t, 1, s.ActiveCount())

	start := time.Now()
	assert.NoError(t, s.StopAll())
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, 0, s.ActiveCount())
}

func TestSpawnFailureStopsStartedBots(t *testing.T) {
	s := New("ws://localhost:8080/ws", 0, testLogger())
	require.NoError(t, s.Spawn(BotSpec{Command: "sleep", Args: []string{"10"}}))

	err := s.Spawn(BotSpec{Command: filepath.Join(t.TempDir(), "missing")})
	require.Error(t, err)
	assert.Equal(t, 0, s.ActiveCount())
}
