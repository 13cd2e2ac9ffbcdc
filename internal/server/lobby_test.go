package server

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/shellroulette/internal/game"
	"github.com/lox/shellroulette/internal/protocol"
)

type matchLog struct {
	mu      sync.Mutex
	infos   []MatchInfo
	results []*game.MatchResult
}

func (m *matchLog) record(info MatchInfo, result *game.MatchResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos = append(m.infos, info)
	m.results = append(m.results, result)
}

func TestLobbyStartsWhenTableIsFull(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var played matchLog
	lobby := NewLobby(Config{
		Players: 2,
		Matches: 1,
		Seed:    42,
		Logger:  testLogger(),
		OnMatch: played.record,
	})
	alice := newFakeRemote("alice", shootFirstOpponent)
	bob := newFakeRemote("bob", shootFirstOpponent)
	assert.Equal(t, 1, lobby.Join(alice))
	assert.Equal(t, 2, lobby.Join(bob))

	require.NoError(t, lobby.Run(ctx))

	require.Len(t, played.results, 1)
	info, result := played.infos[0], played.results[0]
	assert.Equal(t, int64(42), info.Seed)
	assert.Equal(t, info.ID, result.MatchID)
	assert.Equal(t, []game.SeatInfo{
		{Player: game.PlayerOne, Name: "alice"},
		{Player: game.PlayerTwo, Name: "bob"},
	}, info.Seats)
	assert.Len(t, result.Rounds, int(game.FinalRound))

	for i, r := range []*fakeRemote{alice, bob} {
		assert.Equal(t, 1, r.count(protocol.TypeMatchStart))
		assert.Equal(t, 1, r.count(protocol.TypeMatchEnd))
		assert.Positive(t, r.count(protocol.TypeEvent))

		var start protocol.MatchStart
		require.NoError(t, r.last(protocol.TypeMatchStart).Decode(&start))
		assert.Equal(t, game.PlayerNumber(i+1), start.Seat)

		var end protocol.MatchEnd
		require.NoError(t, r.last(protocol.TypeMatchEnd).Decode(&end))
		assert.Equal(t, result.Winner, end.Winner)
		assert.Equal(t, result.Tied, end.Tied)
	}
	assert.Equal(t, 2, lobby.Waiting(), "connected players are queued again")
}

func TestLobbyFillsEmptySeatsWithBots(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clock := quartz.NewMock(t)
	var played matchLog
	lobby := NewLobby(Config{
		Players:   3,
		Bots:      []string{"aggro", "self"},
		LobbyWait: 5 * time.Second,
		Matches:   1,
		Clock:     clock,
		Logger:    testLogger(),
		OnMatch:   played.record,
	})
	alice := newFakeRemote("alice", shootFirstOpponent)
	lobby.Join(alice)

	done := make(chan error, 1)
	go func() { done <- lobby.Run(ctx) }()

	require.Eventually(t, func() bool {
		d, ok := clock.Peek()
		return ok && d == 5*time.Second
	}, time.Second, time.Millisecond)
	clock.Advance(5 * time.Second).MustWait(ctx)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("lobby did not start a match after waiting")
	}

	require.Len(t, played.infos, 1)
	assert.Equal(t, []game.SeatInfo{
		{Player: game.PlayerOne, Name: "alice"},
		{Player: game.PlayerTwo, Name: "aggro-bot"},
		{Player: game.PlayerThree, Name: "self-bot"},
	}, played.infos[0].Seats)
	assert.Equal(t, 1, alice.count(protocol.TypeMatchEnd))
}

func TestLobbyRunsTablesConcurrently(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var played matchLog
	lobby := NewLobby(Config{
		Players: 2,
		Matches: 2,
		Logger:  testLogger(),
		OnMatch: played.record,
	})
	for _, name := range []string{"alice", "bob", "carol", "dave"} {
		lobby.Join(newFakeRemote(name, shootFirstOpponent))
	}

	require.NoError(t, lobby.Run(ctx))

	require.Len(t, played.infos, 2)
	var tables [][]string
	for _, info := range played.infos {
		tables = append(tables, []string{info.Seats[0].Name, info.Seats[1].Name})
	}
	assert.ElementsMatch(t, [][]string{{"alice", "bob"}, {"carol", "dave"}}, tables)
}

func TestLobbyWaitTimerStopsWhenEveryoneLeaves(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := quartz.NewMock(t)
	lobby := NewLobby(Config{
		Players:   3,
		LobbyWait: 5 * time.Second,
		Clock:     clock,
		Logger:    testLogger(),
	})
	alice := newFakeRemote("alice", shootFirstOpponent)
	lobby.Join(alice)

	done := make(chan error, 1)
	go func() { done <- lobby.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, ok := clock.Peek()
		return ok
	}, time.Second, time.Millisecond)

	lobby.Leave(alice)
	require.Eventually(t, func() bool {
		_, ok := clock.Peek()
		return !ok
	}, time.Second, time.Millisecond, "wait timer is stopped once the lobby empties")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lobby did not stop")
	}
}

func TestLobbyLeave(t *testing.T) {
	lobby := NewLobby(Config{Logger: testLogger()})
	alice := newFakeRemote("alice", nil)
	bob := newFakeRemote("bob", nil)

	lobby.Join(alice)
	lobby.Join(bob)
	lobby.Join(alice)
	assert.Equal(t, 2, lobby.Waiting())

	lobby.Leave(alice)
	assert.Equal(t, 1, lobby.Waiting())
	lobby.Leave(alice)
	assert.Equal(t, 1, lobby.Waiting())
}

func TestLobbyRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	lobby := NewLobby(Config{Logger: testLogger()})

	done := make(chan error, 1)
	go func() { done <- lobby.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lobby did not stop")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "defaults", config: Config{}},
		{name: "four players", config: Config{Players: 4, Bots: []string{"rand"}}},
		{name: "too many players", config: Config{Players: 5}, wantErr: true},
		{name: "unknown bot", config: Config{Bots: []string{"psychic"}}, wantErr: true},
		{name: "negative wait", config: Config{LobbyWait: -time.Second}, wantErr: true},
		{name: "negative matches", config: Config{Matches: -1}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.config.applyDefaults()
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
