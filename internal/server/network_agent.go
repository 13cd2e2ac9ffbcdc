package server

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/shellroulette/internal/game"
	"github.com/lox/shellroulette/internal/gameid"
	"github.com/lox/shellroulette/internal/protocol"
)

// Remote is the server's side of a remote player. Connection implements it.
type Remote interface {
	Name() string
	Send(messageType protocol.MessageType, data any) error
	Decisions() <-chan protocol.Decision
	Done() <-chan struct{}
}

// NetworkAgent represents a server-side agent that proxies decisions to/from a remote client
type NetworkAgent struct {
	remote  Remote
	timeout time.Duration
	clock   quartz.Clock
	logger  *log.Logger
}

// NewNetworkAgent creates a new network agent for a remote player
func NewNetworkAgent(remote Remote, timeout time.Duration, clock quartz.Clock, logger *log.Logger) *NetworkAgent {
	return &NetworkAgent{
		remote:  remote,
		timeout: timeout,
		clock:   clock,
		logger:  logger.WithPrefix("network-agent").With("player", remote.Name()),
	}
}

// Decide implements game.Agent by asking the remote player. If they do not
// answer within the timeout, or have gone away, the agent shoots the first
// opponent for them.
func (na *NetworkAgent) Decide(view game.TurnView) game.Decision {
	select {
	case <-na.remote.Done():
		return fallback(view, "player disconnected")
	default:
	}

	request := protocol.ActionRequest{
		RequestID: gameid.Generate(),
		View:      view,
		TimeoutMS: na.timeout.Milliseconds(),
	}
	if err := na.remote.Send(protocol.TypeActionRequest, request); err != nil {
		na.logger.Error("Failed to send action request to player", "error", err)
		return fallback(view, "player disconnected")
	}

	// Wait for decision or timeout using quartz clock
	timeoutFired := make(chan struct{})
	if na.timeout > 0 {
		timer := na.clock.AfterFunc(na.timeout, func() {
			close(timeoutFired)
		}, "network-agent", "decision")
		defer timer.Stop()
	}

	for {
		select {
		case d := <-na.remote.Decisions():
			if d.RequestID != request.RequestID {
				na.logger.Debug("Discarding stale decision", "request", d.RequestID)
				continue
			}
			na.logger.Debug("Received decision from remote player", "decision", d.Decision)
			return d.Decision

		case <-timeoutFired:
			na.logger.Warn("Decision timeout", "timeout", na.timeout)
			return fallback(view, "decision timeout")

		case <-na.remote.Done():
			na.logger.Warn("Player disconnected while deciding")
			return fallback(view, "player disconnected")
		}
	}
}

// fallback shoots the first living opponent, which is always a legal move.
func fallback(view game.TurnView, reason string) game.Decision {
	for _, s := range view.Opponents() {
		return game.Shoot(s.Player, reason)
	}
	return game.Shoot(view.Player, reason)
}
