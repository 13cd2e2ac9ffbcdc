// Package protocol defines the messages exchanged over the websocket between
// the server and remote players. Text frames carry JSON; binary frames carry
// the same envelope as msgpack (see Marshal).
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lox/shellroulette/internal/game"
)

// ErrUnknownMessageType is returned for envelopes with an unrecognised type.
var ErrUnknownMessageType = errors.New("unknown message type")

// MessageType identifies the type of message
type MessageType string

const (
	// Client -> Server
	TypeJoin     MessageType = "join"
	TypeDecision MessageType = "decision"

	// Server -> Client
	TypeWelcome       MessageType = "welcome"
	TypeMatchStart    MessageType = "match_start"
	TypeActionRequest MessageType = "action_request"
	TypeEvent         MessageType = "event"
	TypeMatchEnd      MessageType = "match_end"
	TypeError         MessageType = "error"
)

func (t MessageType) String() string {
	return string(t)
}

// Message is the envelope for every websocket frame.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage wraps data in an envelope stamped with at.
func NewMessage(messageType MessageType, data any, at time.Time) (*Message, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", messageType, err)
		}
		raw = b
	}
	return &Message{Type: messageType, Data: raw, Timestamp: at}, nil
}

// Decode unmarshals the payload into v.
func (m *Message) Decode(v any) error {
	if len(m.Data) == 0 {
		return fmt.Errorf("%s message has no data", m.Type)
	}
	if err := json.Unmarshal(m.Data, v); err != nil {
		return fmt.Errorf("decode %s: %w", m.Type, err)
	}
	return nil
}

// Join asks for a seat in the next match.
type Join struct {
	Name string `json:"name"`
}

// Welcome acknowledges a join.
type Welcome struct {
	Name    string `json:"name"`
	Waiting int    `json:"waiting"`
	Players int    `json:"players"`
}

// MatchStart tells a remote player which seat they have.
type MatchStart struct {
	MatchID string            `json:"match_id"`
	Seat    game.PlayerNumber `json:"seat"`
	Seats   []game.SeatInfo   `json:"seats"`
}

// ActionRequest asks the seat's owner for a decision.
type ActionRequest struct {
	RequestID string        `json:"request_id"`
	View      game.TurnView `json:"view"`
	TimeoutMS int64         `json:"timeout_ms"`
}

// Timeout returns the decision deadline as a duration.
func (r ActionRequest) Timeout() time.Duration {
	return time.Duration(r.TimeoutMS) * time.Millisecond
}

// Decision answers an ActionRequest.
type Decision struct {
	RequestID string        `json:"request_id"`
	Decision  game.Decision `json:"decision"`
}

// Event carries one formatted game event from the receiving player's
// perspective.
type Event struct {
	Type game.EventType `json:"type"`
	Text string         `json:"text"`
}

// MatchEnd reports the final standings.
type MatchEnd struct {
	MatchID   string            `json:"match_id"`
	Standings []game.Standing   `json:"standings"`
	Winner    game.PlayerNumber `json:"winner,omitempty"`
	Tied      bool              `json:"tied"`
}

// Error reports a problem with something the client sent.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e Error) Error() string {
	return e.Code + ": " + e.Message
}
