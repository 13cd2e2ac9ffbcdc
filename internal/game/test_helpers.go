package game

import (
	"fmt"

	"github.com/lox/shellroulette/internal/randutil"
)

// TestRoundOption configures test round creation
type TestRoundOption func(*testRoundBuilder)

type testRoundBuilder struct {
	seed      int64
	players   int
	shells    []ShellType
	keepItems bool
	items     map[PlayerNumber][]Item
	health    map[PlayerNumber]int
	stun      map[PlayerNumber]StunState
	maxHealth int
	active    PlayerNumber
}

// WithSeed sets the seed of the round's random stream.
func WithSeed(seed int64) TestRoundOption {
	return func(b *testRoundBuilder) { b.seed = seed }
}

// WithPlayers sets the number of seats.
func WithPlayers(n int) TestRoundOption {
	return func(b *testRoundBuilder) { b.players = n }
}

// WithShells replaces the shell queue, front first. The current loadout's
// counts are updated to match.
func WithShells(shells ...ShellType) TestRoundOption {
	return func(b *testRoundBuilder) { b.shells = shells }
}

// WithDealtItems keeps the randomly dealt inventories. By default every
// inventory starts empty.
func WithDealtItems() TestRoundOption {
	return func(b *testRoundBuilder) { b.keepItems = true }
}

// WithInventory sets a player's inventory.
func WithInventory(p PlayerNumber, items ...Item) TestRoundOption {
	return func(b *testRoundBuilder) { b.items[p] = items }
}

// WithHealth sets a player's current health.
func WithHealth(p PlayerNumber, health int) TestRoundOption {
	return func(b *testRoundBuilder) { b.health[p] = health }
}

// WithStun sets a player's stun state.
func WithStun(p PlayerNumber, state StunState) TestRoundOption {
	return func(b *testRoundBuilder) { b.stun[p] = state }
}

// WithMaxHealth sets every player's maximum and current health.
func WithMaxHealth(hp int) TestRoundOption {
	return func(b *testRoundBuilder) { b.maxHealth = hp }
}

// WithActive sets the player who acts first.
func WithActive(p PlayerNumber) TestRoundOption {
	return func(b *testRoundBuilder) { b.active = p }
}

// NewTestRound creates a round one for tests with sensible defaults: seed 42,
// two players, empty inventories. Options override individual pieces of
// state after the normal construction has run.
func NewTestRound(opts ...TestRoundOption) *Round {
	b := &testRoundBuilder{
		seed:    42,
		players: 2,
		items:   make(map[PlayerNumber][]Item),
		health:  make(map[PlayerNumber]int),
		stun:    make(map[PlayerNumber]StunState),
	}
	for _, opt := range opts {
		opt(b)
	}

	players := NewGamePlayers(b.players).Numbers()
	r := NewRound(randutil.New(b.seed), players)

	for _, seat := range r.seats {
		if !b.keepItems {
			seat.items = seat.items[:0]
		}
		if b.maxHealth > 0 {
			seat.player.maxHealth = b.maxHealth
			seat.player.health = b.maxHealth
		}
	}
	if b.maxHealth > 0 {
		r.maxHealth = b.maxHealth
	}
	for p, items := range b.items {
		seat := mustSeat(r, p)
		seat.items = append(seat.items[:0], items...)
	}
	for p, hp := range b.health {
		mustSeat(r, p).player.health = hp
	}
	for p, state := range b.stun {
		mustSeat(r, p).player.stun = state
	}
	if b.shells != nil {
		r.shells = r.shells[:0]
		live := 0
		for _, t := range b.shells {
			r.shells = append(r.shells, NewShell(t))
			if t == Live {
				live++
			}
		}
		r.loadout.Live, r.loadout.Blank = live, len(b.shells)-live
	}
	if b.active != 0 {
		for i, seat := range r.seats {
			if seat.number == b.active {
				r.active = i
			}
		}
	}
	return r
}

func mustSeat(r *Round, p PlayerNumber) *Seat {
	seat := r.seatOf(p)
	if seat == nil {
		panic(fmt.Sprintf("game: test round has no seat for %s", p))
	}
	return seat
}
