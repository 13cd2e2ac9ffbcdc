package game

// EventType identifies a game event.
type EventType string

const (
	EventTypeMatchStart  EventType = "match_start"
	EventTypeRoundStart  EventType = "round_start"
	EventTypeLoadout     EventType = "loadout"
	EventTypeAction      EventType = "action"
	EventTypeShot        EventType = "shot"
	EventTypeElimination EventType = "elimination"
	EventTypeRoundEnd    EventType = "round_end"
	EventTypeMatchEnd    EventType = "match_end"
)

func (et EventType) String() string {
	return string(et)
}
