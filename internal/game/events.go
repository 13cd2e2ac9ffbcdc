package game

import (
	"slices"
	"sync"
	"time"
)

// GameEvent is anything published on the EventBus.
type GameEvent interface {
	EventType() EventType
	Timestamp() time.Time
}

// SeatInfo names the agent sitting in a seat.
type SeatInfo struct {
	Player PlayerNumber `json:"player"`
	Name   string       `json:"name"`
}

// MatchStartEvent is published before the first action of a match.
type MatchStartEvent struct {
	MatchID   string
	Seats     []SeatInfo
	timestamp time.Time
}

func (e MatchStartEvent) EventType() EventType { return EventTypeMatchStart }
func (e MatchStartEvent) Timestamp() time.Time { return e.timestamp }

// NewMatchStartEvent creates a match start event.
func NewMatchStartEvent(matchID string, seats []SeatInfo, at time.Time) MatchStartEvent {
	return MatchStartEvent{MatchID: matchID, Seats: slices.Clone(seats), timestamp: at}
}

// RoundStartEvent is published when a round begins.
type RoundStartEvent struct {
	Round     RoundNumber
	MaxHealth int
	First     PlayerNumber
	timestamp time.Time
}

func (e RoundStartEvent) EventType() EventType { return EventTypeRoundStart }
func (e RoundStartEvent) Timestamp() time.Time { return e.timestamp }

// NewRoundStartEvent creates a round start event.
func NewRoundStartEvent(round RoundNumber, maxHealth int, first PlayerNumber, at time.Time) RoundStartEvent {
	return RoundStartEvent{Round: round, MaxHealth: maxHealth, First: first, timestamp: at}
}

// LoadoutEvent announces a fresh loadout and the items it handed out.
type LoadoutEvent struct {
	Round     RoundNumber
	Report    LoadoutReport
	timestamp time.Time
}

func (e LoadoutEvent) EventType() EventType { return EventTypeLoadout }
func (e LoadoutEvent) Timestamp() time.Time { return e.timestamp }

// NewLoadoutEvent creates a loadout event.
func NewLoadoutEvent(round RoundNumber, report LoadoutReport, at time.Time) LoadoutEvent {
	return LoadoutEvent{Round: round, Report: report, timestamp: at}
}

// ActionEvent is published for every item use, successful or not. Private
// reveals are included; subscribers that show other players' views must
// hide them.
type ActionEvent struct {
	Round     RoundNumber
	Player    PlayerNumber
	Decision  Decision
	Item      Item
	Stolen    Item
	Victim    PlayerNumber
	Result    ItemResult
	Err       error
	Fallback  bool
	timestamp time.Time
}

func (e ActionEvent) EventType() EventType { return EventTypeAction }
func (e ActionEvent) Timestamp() time.Time { return e.timestamp }

// NewActionEvent creates an action event from an applied action.
func NewActionEvent(round RoundNumber, decision Decision, action Action, fallback bool, at time.Time) ActionEvent {
	result, err := action.Result()
	return ActionEvent{
		Round:     round,
		Player:    action.Player(),
		Decision:  decision,
		Item:      action.Item(),
		Stolen:    action.Stolen(),
		Victim:    action.Victim(),
		Result:    result,
		Err:       err,
		Fallback:  fallback,
		timestamp: at,
	}
}

// ShotEvent is published for every trigger pull.
type ShotEvent struct {
	Round     RoundNumber
	Shot      ShotResult
	Reasoning string
	Fallback  bool
	timestamp time.Time
}

func (e ShotEvent) EventType() EventType { return EventTypeShot }
func (e ShotEvent) Timestamp() time.Time { return e.timestamp }

// NewShotEvent creates a shot event.
func NewShotEvent(round RoundNumber, shot ShotResult, reasoning string, fallback bool, at time.Time) ShotEvent {
	return ShotEvent{Round: round, Shot: shot, Reasoning: reasoning, Fallback: fallback, timestamp: at}
}

// EliminationEvent is published when a shot removes a player from the round.
type EliminationEvent struct {
	Round     RoundNumber
	Player    PlayerNumber
	By        PlayerNumber
	timestamp time.Time
}

func (e EliminationEvent) EventType() EventType { return EventTypeElimination }
func (e EliminationEvent) Timestamp() time.Time { return e.timestamp }

// NewEliminationEvent creates an elimination event.
func NewEliminationEvent(round RoundNumber, player, by PlayerNumber, at time.Time) EliminationEvent {
	return EliminationEvent{Round: round, Player: player, By: by, timestamp: at}
}

// RoundEndEvent is published once a round has a winner.
type RoundEndEvent struct {
	Summary   RoundSummary
	timestamp time.Time
}

func (e RoundEndEvent) EventType() EventType { return EventTypeRoundEnd }
func (e RoundEndEvent) Timestamp() time.Time { return e.timestamp }

// NewRoundEndEvent creates a round end event.
func NewRoundEndEvent(summary RoundSummary, at time.Time) RoundEndEvent {
	return RoundEndEvent{Summary: summary, timestamp: at}
}

// MatchEndEvent is published after the final round.
type MatchEndEvent struct {
	MatchID   string
	Standings []Standing
	Winner    PlayerNumber
	Tied      bool
	timestamp time.Time
}

func (e MatchEndEvent) EventType() EventType { return EventTypeMatchEnd }
func (e MatchEndEvent) Timestamp() time.Time { return e.timestamp }

// NewMatchEndEvent creates a match end event. winner is zero on a tie.
func NewMatchEndEvent(matchID string, standings []Standing, winner PlayerNumber, at time.Time) MatchEndEvent {
	return MatchEndEvent{
		MatchID:   matchID,
		Standings: standings,
		Winner:    winner,
		Tied:      winner == 0,
		timestamp: at,
	}
}

// EventSubscriber can subscribe to game events
type EventSubscriber interface {
	OnEvent(event GameEvent)
}

// EventSubscriberFunc adapts a function to EventSubscriber. Function values
// cannot be compared, so subscribers registered this way cannot be removed.
type EventSubscriberFunc func(event GameEvent)

// OnEvent implements EventSubscriber.
func (f EventSubscriberFunc) OnEvent(event GameEvent) { f(event) }

// EventBus manages event publishing and subscription
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event GameEvent)
}

// SimpleEventBus is an in-memory, synchronous event bus. Subscribers are
// called in subscription order on the publishing goroutine.
type SimpleEventBus struct {
	mu          sync.RWMutex
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() EventBus {
	return &SimpleEventBus{}
}

// Subscribe adds a subscriber to receive events
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber from receiving events
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	for i, sub := range bus.subscribers {
		if sub == subscriber {
			bus.subscribers = slices.Delete(bus.subscribers, i, i+1)
			break
		}
	}
}

// Publish sends an event to all subscribers
func (bus *SimpleEventBus) Publish(event GameEvent) {
	bus.mu.RLock()
	subscribers := slices.Clone(bus.subscribers)
	bus.mu.RUnlock()
	for _, subscriber := range subscribers {
		subscriber.OnEvent(event)
	}
}
