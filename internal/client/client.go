// Package client connects an Agent to a shell roulette server.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/shellroulette/internal/game"
	"github.com/lox/shellroulette/internal/protocol"
)

// ErrNotConnected is returned by Play before Connect has succeeded.
var ErrNotConnected = errors.New("not connected")

// Options controls what a Client does besides answering action requests.
type Options struct {
	// Matches stops Play after this many completed matches. Zero plays
	// until the context is cancelled or the server goes away.
	Matches      int
	OnMatchStart func(start protocol.MatchStart)
	OnEvent      func(event protocol.Event)
	OnMatchEnd   func(end protocol.MatchEnd)
}

// Client represents a WebSocket client playing one seat with an Agent.
type Client struct {
	serverURL string
	name      string
	agent     game.Agent
	options   Options
	logger    *log.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	closeOnce sync.Once
}

// NewClient creates a new WebSocket client
func NewClient(serverURL, name string, agent game.Agent, logger *log.Logger, options Options) *Client {
	return &Client{
		serverURL: serverURL,
		name:      name,
		agent:     agent,
		options:   options,
		logger:    logger.WithPrefix("client").With("player", name),
	}
}

// Connect establishes a WebSocket connection to the server
func (c *Client) Connect(ctx context.Context) error {
	u, err := websocketURL(c.serverURL)
	if err != nil {
		return err
	}
	c.logger.Info("Connecting to server", "url", u)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	return nil
}

// websocketURL turns http(s) into ws(s) and adds the /ws path.
func websocketURL(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("invalid server URL scheme %q", u.Scheme)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}
	return u.String(), nil
}

// Close closes the WebSocket connection
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.conn != nil {
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			err = c.conn.Close()
		}
	})
	return err
}

// Play joins the lobby and answers action requests until Options.Matches
// matches have ended or ctx is cancelled. It returns how many matches were
// completed.
func (c *Client) Play(ctx context.Context) (int, error) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return 0, ErrNotConnected
	}

	stop := context.AfterFunc(ctx, func() { _ = c.Close() })
	defer stop()

	if err := c.send(conn, protocol.TypeJoin, protocol.Join{Name: c.name}); err != nil {
		return 0, err
	}

	completed := 0
	for c.options.Matches == 0 || completed < c.options.Matches {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return completed, ctx.Err()
			}
			return completed, fmt.Errorf("read: %w", err)
		}
		msg, err := protocol.Unmarshal(frame)
		if err != nil {
			return completed, fmt.Errorf("read: %w", err)
		}
		done, err := c.handleMessage(conn, msg)
		if err != nil {
			return completed, err
		}
		if done {
			completed++
		}
	}
	return completed, nil
}

// handleMessage reacts to one server message, reporting whether it ended a
// match.
func (c *Client) handleMessage(conn *websocket.Conn, msg *protocol.Message) (bool, error) {
	switch msg.Type {
	case protocol.TypeWelcome:
		var welcome protocol.Welcome
		if err := msg.Decode(&welcome); err != nil {
			return false, err
		}
		c.logger.Info("Joined lobby", "waiting", welcome.Waiting, "players", welcome.Players)

	case protocol.TypeMatchStart:
		var start protocol.MatchStart
		if err := msg.Decode(&start); err != nil {
			return false, err
		}
		c.logger.Info("Match starting", "match", start.MatchID, "seat", start.Seat)
		if c.options.OnMatchStart != nil {
			c.options.OnMatchStart(start)
		}

	case protocol.TypeActionRequest:
		var req protocol.ActionRequest
		if err := msg.Decode(&req); err != nil {
			return false, err
		}
		decision := c.agent.Decide(req.View)
		c.logger.Debug("Deciding", "decision", decision)
		return false, c.send(conn, protocol.TypeDecision, protocol.Decision{RequestID: req.RequestID, Decision: decision})

	case protocol.TypeEvent:
		var event protocol.Event
		if err := msg.Decode(&event); err != nil {
			return false, err
		}
		if c.options.OnEvent != nil {
			c.options.OnEvent(event)
		}

	case protocol.TypeMatchEnd:
		var end protocol.MatchEnd
		if err := msg.Decode(&end); err != nil {
			return false, err
		}
		c.logger.Info("Match over", "match", end.MatchID, "winner", end.Winner, "tied", end.Tied)
		if c.options.OnMatchEnd != nil {
			c.options.OnMatchEnd(end)
		}
		return true, nil

	case protocol.TypeError:
		var e protocol.Error
		if err := msg.Decode(&e); err != nil {
			return false, err
		}
		c.logger.Warn("Server error", "code", e.Code, "message", e.Message)

	default:
		c.logger.Debug("Ignoring message", "type", msg.Type)
	}
	return false, nil
}

func (c *Client) send(conn *websocket.Conn, messageType protocol.MessageType, data any) error {
	msg, err := protocol.NewMessage(messageType, data, time.Now())
	if err != nil {
		return err
	}
	frame, err := protocol.Marshal(msg)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		return fmt.Errorf("send %s: %w", messageType, err)
	}
	return nil
}
