package game

import "slices"

// Seat is a fixed slot in turn order. The seat outlives its occupant: once
// the player is eliminated it stays vacant for the rest of the round.
type Seat struct {
	number PlayerNumber
	player *RoundPlayer
	items  []Item
}

func newSeat(player *RoundPlayer) *Seat {
	return &Seat{
		number: player.number,
		player: player,
		items:  make([]Item, 0, MaxInventory),
	}
}

// Number returns the player number the seat belongs to.
func (s *Seat) Number() PlayerNumber { return s.number }

// Occupied reports whether the seat's player is still alive.
func (s *Seat) Occupied() bool { return s.player != nil }

// Player returns a copy of the occupant's state.
func (s *Seat) Player() (RoundPlayer, bool) {
	if s.player == nil {
		return RoundPlayer{number: s.number}, false
	}
	return *s.player, true
}

// Items returns a copy of the inventory.
func (s *Seat) Items() []Item {
	return slices.Clone(s.items)
}

// Count returns how many copies of item the seat holds.
func (s *Seat) Count(item Item) int {
	n := 0
	for _, it := range s.items {
		if it == item {
			n++
		}
	}
	return n
}

// Has reports whether the seat holds at least one copy of item.
func (s *Seat) Has(item Item) bool {
	return slices.Contains(s.items, item)
}

// Full reports whether the inventory is at capacity.
func (s *Seat) Full() bool {
	return len(s.items) >= MaxInventory
}

func (s *Seat) add(item Item) bool {
	if s.Full() {
		return false
	}
	s.items = append(s.items, item)
	return true
}

func (s *Seat) remove(item Item) bool {
	i := slices.Index(s.items, item)
	if i < 0 {
		return false
	}
	s.items = slices.Delete(s.items, i, i+1)
	return true
}

// vacate removes the occupant. Their items leave the table with them.
func (s *Seat) vacate() {
	s.player = nil
	s.items = s.items[:0]
}

// View returns a read-only snapshot of the seat.
func (s *Seat) View() SeatView {
	v := SeatView{
		Player: s.number,
		Items:  s.Items(),
	}
	if s.player != nil {
		v.Occupied = true
		v.Health = s.player.health
		v.Stun = s.player.stun
	}
	return v
}

// SeatView is a snapshot of a seat that is safe to hand to other players.
type SeatView struct {
	Player   PlayerNumber `json:"player"`
	Occupied bool         `json:"occupied"`
	Health   int          `json:"health"`
	Stun     StunState    `json:"stun"`
	Items    []Item       `json:"items"`
}

// Count returns how many copies of item the seat holds.
func (v SeatView) Count(item Item) int {
	n := 0
	for _, it := range v.Items {
		if it == item {
			n++
		}
	}
	return n
}

// Has reports whether the seat holds item.
func (v SeatView) Has(item Item) bool {
	return slices.Contains(v.Items, item)
}
