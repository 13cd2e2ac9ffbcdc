package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/shellroulette/internal/bot"
	"github.com/lox/shellroulette/internal/game"
	"github.com/lox/shellroulette/internal/randutil"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func playMatch(t *testing.T, id string, seed int64, strategies ...string) *game.MatchResult {
	t.Helper()
	agents := make([]game.Agent, len(strategies))
	for i, name := range strategies {
		agent, err := bot.New(name, randutil.Derive(seed, uint64(i)), nil)
		require.NoError(t, err)
		agents[i] = agent
	}
	engine := game.NewEngine(game.NewMatch(randutil.New(seed), len(strategies)), agents, nil,
		game.WithMatchID(id), game.WithSeatNames(strategies...))
	result, err := engine.PlayMatch(context.Background())
	require.NoError(t, err)
	return result
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestOpenFileIsReusable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	ctx := context.Background()

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.SaveMatch(ctx, 1, playMatch(t, "m1", 1, "self", "aggro"), time.Now()))
	require.NoError(t, store.Close())

	// Migrations are not re-applied on reopen.
	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()
	n, err := store.CountMatches(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSaveMatch(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	played := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	result := playMatch(t, "match-a", 3, "smart", "rand", "aggro")
	require.NoError(t, store.SaveMatch(ctx, 3, result, played))

	rows, err := store.RecentMatches(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, MatchRow{
		ID:       "match-a",
		Seed:     3,
		Players:  3,
		Winner:   result.Winner,
		Tied:     result.Tied,
		Actions:  result.Actions,
		PlayedAt: played,
	}, rows[0])

	err = store.SaveMatch(ctx, 3, result, played)
	assert.ErrorIs(t, err, ErrDuplicateMatch)
}

func TestSaveMatchValidates(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	assert.Error(t, store.SaveMatch(ctx, 1, &game.MatchResult{}, time.Now()))
	assert.Error(t, store.SaveMatch(ctx, 1, &game.MatchResult{MatchID: "x"}, time.Now()))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, store.SaveMatch(cancelled, 1, playMatch(t, "y", 1, "self", "self"), time.Now()), context.Canceled)
}

func TestStrategySummary(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	wins := map[string]int{}
	seats := map[string]int{}
	for seed := int64(1); seed <= 10; seed++ {
		result := playMatch(t, fmt.Sprintf("m%d", seed), seed, "smart", "self")
		require.NoError(t, store.SaveMatch(ctx, seed, result, time.Now()))
		for _, p := range result.Players {
			seats[p.Name]++
			if !result.Tied && p.Player == result.Winner {
				wins[p.Name]++
			}
		}
	}

	summary, err := store.StrategySummary(ctx)
	require.NoError(t, err)
	require.Len(t, summary, 2)
	for _, s := range summary {
		assert.Equal(t, seats[s.Strategy], s.Seats)
		assert.Equal(t, wins[s.Strategy], s.Wins)
		assert.InDelta(t, float64(wins[s.Strategy])/float64(seats[s.Strategy]), s.WinRate(), 1e-9)
	}
	assert.GreaterOrEqual(t, summary[0].WinRate(), summary[1].WinRate())

	totalRoundWins := summary[0].RoundWins + summary[1].RoundWins
	assert.Equal(t, 30, totalRoundWins)
}

func TestRecentMatchesOrder(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"first", "second", "third"} {
		result := playMatch(t, id, int64(i+1), "aggro", "aggro")
		require.NoError(t, store.SaveMatch(ctx, int64(i+1), result, base.Add(time.Duration(i)*time.Minute)))
	}

	rows, err := store.RecentMatches(ctx, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "third", rows[0].ID)
	assert.Equal(t, "second", rows[1].ID)
}
