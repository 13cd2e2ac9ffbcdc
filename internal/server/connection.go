package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/lox/shellroulette/internal/protocol"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

// ErrConnectionClosed is returned when sending on a closed connection.
var ErrConnectionClosed = errors.New("connection closed")

// Connection represents a WebSocket connection to a remote player
type Connection struct {
	conn      *websocket.Conn
	send      chan *protocol.Message
	decisions chan protocol.Decision
	lobby     *Lobby
	clock     quartz.Clock
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	name      string
	closeOnce sync.Once
	// binary is set once the client sends a msgpack frame; replies follow.
	binary atomic.Bool
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, lobby *Lobby, clock quartz.Clock, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &Connection{
		conn:      conn,
		send:      make(chan *protocol.Message, 256),
		decisions: make(chan protocol.Decision, 1),
		lobby:     lobby,
		clock:     clock,
		logger:    logger.WithPrefix("conn"),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.conn.Close()
	})
	return err
}

// Done is closed once the connection has gone away.
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Decisions delivers decision messages from the player.
func (c *Connection) Decisions() <-chan protocol.Decision {
	return c.decisions
}

// Name returns the name the player joined with.
func (c *Connection) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

// Send queues a message for the client.
func (c *Connection) Send(messageType protocol.MessageType, data any) error {
	msg, err := protocol.NewMessage(messageType, data, c.clock.Now())
	if err != nil {
		return err
	}

	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}
	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
		c.logger.Warn("Connection send buffer full, closing connection", "player", c.Name())
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() {
		c.lobby.Leave(c)
		_ = c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		frameType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}
		msg, err := c.decode(frameType, data)
		if err != nil {
			c.logger.Debug("Undecodable frame", "error", err)
			c.sendError("invalid_message", "Failed to parse message")
			continue
		}
		c.handleMessage(msg)
	}
}

// decode parses a frame: msgpack for binary frames, JSON otherwise.
func (c *Connection) decode(frameType int, data []byte) (*protocol.Message, error) {
	if frameType == websocket.BinaryMessage {
		c.binary.Store(true)
		return protocol.Unmarshal(data)
	}
	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *Connection) write(message *protocol.Message) error {
	if !c.binary.Load() {
		return c.conn.WriteJSON(message)
	}
	frame, err := protocol.Marshal(message)
	if err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.BinaryMessage, frame)
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.write(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *protocol.Message) {
	c.logger.Debug("Received message", "type", msg.Type, "player", c.Name())

	switch msg.Type {
	case protocol.TypeJoin:
		var data protocol.Join
		if err := msg.Decode(&data); err != nil {
			c.sendError("invalid_message", "Failed to parse join data")
			return
		}
		c.handleJoin(data)

	case protocol.TypeDecision:
		var data protocol.Decision
		if err := msg.Decode(&data); err != nil {
			c.sendError("invalid_message", "Failed to parse decision data")
			return
		}
		c.handleDecision(data)

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	_ = c.Send(protocol.TypeError, protocol.Error{Code: code, Message: message})
}

func (c *Connection) handleJoin(data protocol.Join) {
	if data.Name == "" {
		c.sendError("invalid_join", "Player name required")
		return
	}
	c.mu.Lock()
	if c.name != "" {
		c.mu.Unlock()
		c.sendError("already_joined", "Already joined as "+c.name)
		return
	}
	c.name = data.Name
	c.mu.Unlock()

	c.logger.Info("Player joined", "player", data.Name)
	waiting := c.lobby.Join(c)
	_ = c.Send(protocol.TypeWelcome, protocol.Welcome{
		Name:    data.Name,
		Waiting: waiting,
		Players: c.lobby.Players(),
	})
}

func (c *Connection) handleDecision(data protocol.Decision) {
	if c.Name() == "" {
		c.sendError("not_joined", "Must join first")
		return
	}
	select {
	case c.decisions <- data:
	default:
		c.sendError("unexpected_decision", "No decision was requested")
	}
}
