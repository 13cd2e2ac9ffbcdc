package server

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/shellroulette/internal/game"
	"github.com/lox/shellroulette/internal/protocol"
)

func TestNetworkAgentReturnsRemoteDecision(t *testing.T) {
	remote := newFakeRemote("alice", func(req protocol.ActionRequest) []protocol.Decision {
		return []protocol.Decision{{RequestID: req.RequestID, Decision: game.UseItem(game.Beer, "rack it")}}
	})
	agent := NewNetworkAgent(remote, time.Second, quartz.NewMock(t), testLogger())

	decision := agent.Decide(twoSeatView())
	assert.Equal(t, game.UseItem(game.Beer, "rack it"), decision)

	msg := remote.last(protocol.TypeActionRequest)
	require.NotNil(t, msg)
	var req protocol.ActionRequest
	require.NoError(t, msg.Decode(&req))
	assert.Equal(t, time.Second, req.Timeout())
	assert.Equal(t, game.PlayerOne, req.View.Player)
	assert.NotEmpty(t, req.RequestID)
}

func TestNetworkAgentDiscardsStaleDecisions(t *testing.T) {
	remote := newFakeRemote("alice", func(req protocol.ActionRequest) []protocol.Decision {
		return []protocol.Decision{
			{RequestID: "old", Decision: game.Shoot(game.PlayerOne, "late answer")},
			{RequestID: req.RequestID, Decision: game.Shoot(game.PlayerTwo, "current")},
		}
	})
	agent := NewNetworkAgent(remote, time.Second, quartz.NewMock(t), testLogger())

	assert.Equal(t, game.Shoot(game.PlayerTwo, "current"), agent.Decide(twoSeatView()))
}

func TestNetworkAgentTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock := quartz.NewMock(t)
	remote := newFakeRemote("alice", nil)
	agent := NewNetworkAgent(remote, 10*time.Second, clock, testLogger())

	decided := make(chan game.Decision, 1)
	go func() { decided <- agent.Decide(twoSeatView()) }()

	require.Eventually(t, func() bool {
		_, ok := clock.Peek()
		return ok
	}, time.Second, time.Millisecond)
	clock.Advance(10 * time.Second).MustWait(ctx)

	select {
	case d := <-decided:
		assert.Equal(t, game.DecideShoot, d.Kind)
		assert.Equal(t, game.PlayerTwo, d.Target)
		assert.Equal(t, "decision timeout", d.Reasoning)
	case <-ctx.Done():
		t.Fatal("agent did not time out")
	}
}

func TestNetworkAgentDisconnect(t *testing.T) {
	t.Run("before request", func(t *testing.T) {
		remote := newFakeRemote("alice", nil)
		agent := NewNetworkAgent(remote, time.Minute, quartz.NewMock(t), testLogger())
		remote.disconnect()
		d := agent.Decide(twoSeatView())
		assert.Equal(t, game.Shoot(game.PlayerTwo, "player disconnected"), d)
		assert.Zero(t, remote.count(protocol.TypeActionRequest))
	})

	t.Run("while waiting", func(t *testing.T) {
		remote := newFakeRemote("bob", nil)
		agent := NewNetworkAgent(remote, time.Minute, quartz.NewMock(t), testLogger())

		decided := make(chan game.Decision, 1)
		go func() { decided <- agent.Decide(twoSeatView()) }()
		require.Eventually(t, func() bool {
			return remote.count(protocol.TypeActionRequest) == 1
		}, time.Second, time.Millisecond)
		remote.disconnect()

		select {
		case d := <-decided:
			assert.Equal(t, "player disconnected", d.Reasoning)
		case <-time.After(5 * time.Second):
			t.Fatal("agent did not notice disconnect")
		}
	})
}
