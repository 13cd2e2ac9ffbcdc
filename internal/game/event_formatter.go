package game

import (
	"errors"
	"fmt"
	"strings"
)

// FormattingOptions controls how events are formatted for different contexts
type FormattingOptions struct {
	ShowReasonings bool // Include agent reasoning (for history review)
	// ShowReveals prints every private reveal. When false only the
	// Perspective player's own reveals are shown.
	ShowReveals bool
	Perspective PlayerNumber
	Seats       []SeatInfo
}

// EventFormatter provides centralized formatting for all game events
type EventFormatter struct {
	opts FormattingOptions
}

// NewEventFormatter creates a new event formatter with the given options
func NewEventFormatter(opts FormattingOptions) *EventFormatter {
	return &EventFormatter{opts: opts}
}

// SetSeats updates the names used for players.
func (ef *EventFormatter) SetSeats(seats []SeatInfo) {
	ef.opts.Seats = seats
}

// Format renders any event as one or more lines of text. Events with nothing
// to show return an empty string.
func (ef *EventFormatter) Format(event GameEvent) string {
	switch e := event.(type) {
	case MatchStartEvent:
		ef.SetSeats(e.Seats)
		return ef.FormatMatchStart(e)
	case RoundStartEvent:
		return ef.FormatRoundStart(e)
	case LoadoutEvent:
		return ef.FormatLoadout(e)
	case ActionEvent:
		return ef.FormatAction(e)
	case ShotEvent:
		return ef.FormatShot(e)
	case EliminationEvent:
		return fmt.Sprintf("%s is out", ef.name(e.Player))
	case RoundEndEvent:
		return fmt.Sprintf("Round %s won by %s", e.Summary.Round, ef.name(e.Summary.Winner))
	case MatchEndEvent:
		return ef.FormatMatchEnd(e)
	default:
		return ""
	}
}

// FormatMatchStart lists the seats.
func (ef *EventFormatter) FormatMatchStart(event MatchStartEvent) string {
	names := make([]string, len(event.Seats))
	for i, s := range event.Seats {
		names[i] = fmt.Sprintf("%s %s", s.Player, s.Name)
	}
	header := "Match"
	if event.MatchID != "" {
		header += " " + event.MatchID
	}
	return fmt.Sprintf("%s\n%d players: %s", header, len(event.Seats), strings.Join(names, ", "))
}

// FormatRoundStart formats a round header.
func (ef *EventFormatter) FormatRoundStart(event RoundStartEvent) string {
	return fmt.Sprintf("\n*** ROUND %d *** max health %d, %s starts", event.Round, event.MaxHealth, ef.name(event.First))
}

// FormatLoadout announces the shells and the items handed out.
func (ef *EventFormatter) FormatLoadout(event LoadoutEvent) string {
	l := event.Report.Loadout
	var b strings.Builder
	fmt.Fprintf(&b, "Loading %d live, %d blank", l.Live, l.Blank)
	if len(event.Report.Grants) == 0 {
		return b.String()
	}
	byPlayer := make(map[PlayerNumber][]string)
	var order []PlayerNumber
	for _, g := range event.Report.Grants {
		if _, ok := byPlayer[g.Player]; !ok {
			order = append(order, g.Player)
		}
		byPlayer[g.Player] = append(byPlayer[g.Player], g.Item.String())
	}
	for _, p := range order {
		fmt.Fprintf(&b, "\n  %s receives %s", ef.name(p), strings.Join(byPlayer[p], ", "))
	}
	return b.String()
}

// FormatAction formats an item use.
func (ef *EventFormatter) FormatAction(event ActionEvent) string {
	who := ef.name(event.Player)
	if event.Err != nil {
		text := fmt.Sprintf("%s: %s rejected (%s)", who, event.Decision, describeError(event.Err))
		return ef.withReasoning(text, event.Decision.Reasoning)
	}

	var text string
	if event.Stolen != 0 {
		text = fmt.Sprintf("%s: takes %s from %s", who, event.Stolen, ef.name(event.Victim))
	} else {
		text = fmt.Sprintf("%s: uses %s", who, event.Item)
	}

	r := event.Result
	switch r.Kind {
	case ResultLearnedShell:
		if ef.opts.ShowReveals || event.Player == ef.opts.Perspective {
			text += fmt.Sprintf(", shell %d is %s", r.Learned.RelativeIndex+1, r.Learned.Type)
		}
	case ResultShellEjected:
		text += fmt.Sprintf(", racks a %s", r.Ejected)
		if r.Empty {
			text += " (gun empty)"
		}
	case ResultStunnedPlayer:
		text += fmt.Sprintf(", %s is stunned", ef.name(r.Stunned))
	default:
		if r.Healed > 0 {
			text += fmt.Sprintf(", heals %d", r.Healed)
		}
	}
	return ef.withReasoning(text, event.Decision.Reasoning)
}

// FormatShot formats a trigger pull.
func (ef *EventFormatter) FormatShot(event ShotEvent) string {
	s := event.Shot
	target := ef.name(s.Target)
	if s.Target == s.Shooter {
		target = "self"
	}
	text := fmt.Sprintf("%s: shoots %s", ef.name(s.Shooter), target)
	if s.Sawn {
		text += " with a sawn barrel"
	}
	if s.Shell == Live {
		text += fmt.Sprintf(": LIVE, %d damage (health %d)", s.Damage, s.HealthAfter)
	} else {
		text += ": blank"
	}
	if event.Fallback {
		text += " [forced]"
	}
	return ef.withReasoning(text, event.Reasoning)
}

// FormatMatchEnd summarises the final standings.
func (ef *EventFormatter) FormatMatchEnd(event MatchEndEvent) string {
	var b strings.Builder
	b.WriteString("\n=== Match Complete ===")
	for _, s := range event.Standings {
		fmt.Fprintf(&b, "\n%s: %d round(s)", ef.name(s.Player), len(s.Wins))
	}
	if event.Tied {
		b.WriteString("\nResult: tie")
	} else {
		fmt.Fprintf(&b, "\nWinner: %s", ef.name(event.Winner))
	}
	return b.String()
}

func (ef *EventFormatter) withReasoning(text, reasoning string) string {
	if ef.opts.ShowReasonings && reasoning != "" {
		return fmt.Sprintf("%s (%s)", text, reasoning)
	}
	return text
}

func (ef *EventFormatter) name(p PlayerNumber) string {
	for _, s := range ef.opts.Seats {
		if s.Player == p && s.Name != "" && s.Name != p.String() {
			return fmt.Sprintf("%s (%s)", s.Name, p)
		}
	}
	return p.String()
}

func describeError(err error) string {
	switch {
	case errors.Is(err, ErrItemAbsent):
		return "item not held"
	case errors.Is(err, ErrDoubleSaw):
		return "barrel already sawn"
	case errors.Is(err, ErrDoubleStun):
		return "target already stunned"
	case errors.Is(err, ErrInvalidStunTarget):
		return "invalid stun target"
	case errors.Is(err, ErrBadAdrenalineTarget):
		return "nothing to steal"
	case errors.Is(err, ErrInvalidShotTarget):
		return "invalid shot target"
	default:
		return err.Error()
	}
}
