package statistics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/shellroulette/internal/bot"
	"github.com/lox/shellroulette/internal/game"
	"github.com/lox/shellroulette/internal/randutil"
)

func TestSample_Empty(t *testing.T) {
	var s Sample
	assert.Zero(t, s.Mean())
	assert.Zero(t, s.Variance())
	assert.Zero(t, s.StdDev())
	assert.Zero(t, s.StdError())
}

func TestSample_Values(t *testing.T) {
	var s Sample
	for _, x := range []float64{1, 0, 1, 1, 0} {
		s.Add(x)
	}

	assert.Equal(t, 5, s.N)
	assert.InDelta(t, 0.6, s.Mean(), 1e-9)
	assert.InDelta(t, 0.3, s.Variance(), 1e-9)
	lo, hi := s.ConfidenceInterval95()
	assert.Less(t, lo, 0.6)
	assert.Greater(t, hi, 0.6)
	assert.InDelta(t, 0.6, (lo+hi)/2, 1e-9)
}

func playMatch(t *testing.T, seed int64, strategies []string) *game.MatchResult {
	t.Helper()
	agents := make([]game.Agent, len(strategies))
	for i, name := range strategies {
		agent, err := bot.New(name, randutil.Derive(seed, uint64(i)), nil)
		require.NoError(t, err)
		agents[i] = agent
	}
	engine := game.NewEngine(game.NewMatch(randutil.New(seed), len(strategies)), agents, nil)
	result, err := engine.PlayMatch(context.Background())
	require.NoError(t, err)
	return result
}

func TestStatistics_AddAndValidate(t *testing.T) {
	strategies := []string{"smart", "rand", "aggro"}
	stats := New(len(strategies))

	for seed := int64(1); seed <= 30; seed++ {
		require.NoError(t, stats.Add(playMatch(t, seed, strategies), strategies))
	}

	require.NoError(t, stats.Validate())
	assert.Equal(t, 30, stats.Matches)
	assert.Equal(t, 90, stats.Rounds)
	assert.Equal(t, []string{"aggro", "rand", "smart"}, stats.StrategyNames())
	for i, seat := range stats.Seats {
		assert.Equal(t, 30, seat.Matches)
		assert.Equal(t, seat.MatchWins, stats.Strategies[strategies[i]].MatchWins)
		assert.Equal(t, seat.WinRate.N, seat.Matches)
	}
}

func TestStatistics_RejectsWrongTableSize(t *testing.T) {
	stats := New(4)
	err := stats.Add(playMatch(t, 1, []string{"self", "self"}), nil)
	assert.Error(t, err)
}

func TestStatistics_ValidateDetectsImbalance(t *testing.T) {
	stats := New(2)
	assert.Error(t, stats.Validate(), "no matches")

	require.NoError(t, stats.Add(playMatch(t, 3, []string{"self", "aggro"}), nil))
	require.NoError(t, stats.Validate())

	stats.Seats[0].MatchWins++
	assert.Error(t, stats.Validate())
	stats.Seats[0].MatchWins--

	stats.Seats[1].Deaths++
	assert.Error(t, stats.Validate())
}
