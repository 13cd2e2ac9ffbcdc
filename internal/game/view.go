package game

import "slices"

// KnownShell is a shell the acting player has seen through an item.
// Index is relative to the front of the queue.
type KnownShell struct {
	Index int       `json:"index"`
	Type  ShellType `json:"type"`
}

// TurnView is the read-only state an Agent decides on. It carries only what
// the acting player is allowed to know.
type TurnView struct {
	Round             RoundNumber  `json:"round"`
	Player            PlayerNumber `json:"player"`
	Health            int          `json:"health"`
	MaxHealth         int          `json:"max_health"`
	Items             []Item       `json:"items"`
	Seats             []SeatView   `json:"seats"`
	ShellsRemaining   int          `json:"shells_remaining"`
	LiveRemaining     int          `json:"live_remaining"`
	BlankRemaining    int          `json:"blank_remaining"`
	Known             []KnownShell `json:"known,omitempty"`
	Sawn              bool         `json:"sawn"`
	TurnOrderInverted bool         `json:"turn_order_inverted"`
}

// NewTurnView snapshots t. memory may be nil, in which case only the
// announced loadout counts are used.
func NewTurnView(t *Turn, memory *ShellMemory) TurnView {
	player := t.Player()
	v := TurnView{
		Round:             t.Round(),
		Player:            player.Number(),
		Health:            player.Health(),
		MaxHealth:         player.MaxHealth(),
		Items:             t.Items(),
		Seats:             t.Seats(),
		ShellsRemaining:   t.ShellsRemaining(),
		Sawn:              t.Sawn(),
		TurnOrderInverted: t.TurnOrderInverted(),
	}
	if memory != nil {
		v.LiveRemaining, v.BlankRemaining = memory.Remaining(v.ShellsRemaining)
		v.Known = memory.Known(v.Player)
	} else {
		l := t.Loadout()
		v.LiveRemaining = min(l.Live, v.ShellsRemaining)
		v.BlankRemaining = v.ShellsRemaining - v.LiveRemaining
	}
	return v
}

// Has reports whether the acting player holds item.
func (v TurnView) Has(item Item) bool {
	return slices.Contains(v.Items, item)
}

// Opponents returns the occupied seats other than the acting player's.
func (v TurnView) Opponents() []SeatView {
	out := make([]SeatView, 0, len(v.Seats))
	for _, s := range v.Seats {
		if s.Occupied && s.Player != v.Player {
			out = append(out, s)
		}
	}
	return out
}

// Seat returns the view of player p's seat.
func (v TurnView) Seat(p PlayerNumber) (SeatView, bool) {
	for _, s := range v.Seats {
		if s.Player == p {
			return s, true
		}
	}
	return SeatView{}, false
}

// KnownAt returns the type of the shell at index if the player has seen it.
func (v TurnView) KnownAt(index int) (ShellType, bool) {
	for _, k := range v.Known {
		if k.Index == index {
			return k.Type, true
		}
	}
	return 0, false
}

// LiveChance estimates the probability that the next shell is live.
func (v TurnView) LiveChance() float64 {
	if t, ok := v.KnownAt(0); ok {
		if t == Live {
			return 1
		}
		return 0
	}
	live, total := v.LiveRemaining, v.ShellsRemaining
	// Known shells further back are not the next one.
	for _, k := range v.Known {
		if k.Index == 0 {
			continue
		}
		total--
		if k.Type == Live {
			live--
		}
	}
	if total <= 0 {
		return 0
	}
	return float64(max(live, 0)) / float64(total)
}
