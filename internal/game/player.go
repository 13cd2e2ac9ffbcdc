package game

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// MinPlayers and MaxPlayers bound the table size.
const (
	MinPlayers = 2
	MaxPlayers = 4
)

// PlayerNumber identifies a player for the whole match. Seat order follows
// player number.
type PlayerNumber uint8

const (
	PlayerOne PlayerNumber = iota + 1
	PlayerTwo
	PlayerThree
	PlayerFour
)

// Valid reports whether p names one of the four possible players.
func (p PlayerNumber) Valid() bool {
	return p >= PlayerOne && p <= PlayerFour
}

func (p PlayerNumber) String() string {
	return "P" + strconv.Itoa(int(p))
}

// MarshalText implements encoding.TextMarshaler.
func (p PlayerNumber) MarshalText() ([]byte, error) {
	return []byte(strconv.Itoa(int(p))), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Both "2" and "P2" are
// accepted, and "0" decodes to the zero value MarshalText produces for it.
func (p *PlayerNumber) UnmarshalText(text []byte) error {
	if string(text) == "0" {
		*p = 0
		return nil
	}
	n, err := ParsePlayerNumber(string(text))
	if err != nil {
		return err
	}
	*p = n
	return nil
}

// ParsePlayerNumber parses "3" or "P3".
func ParsePlayerNumber(s string) (PlayerNumber, error) {
	s = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "P")
	n, err := strconv.Atoi(s)
	if err != nil || !PlayerNumber(n).Valid() {
		return 0, fmt.Errorf("invalid player number %q", s)
	}
	return PlayerNumber(n), nil
}

// RoundNumber counts rounds within a match. A match always has exactly three.
type RoundNumber uint8

const (
	RoundOne RoundNumber = iota + 1
	RoundTwo
	RoundThree
)

// FinalRound is the last round of every match.
const FinalRound = RoundThree

// Next returns the following round. There is no round after FinalRound.
func (r RoundNumber) Next() RoundNumber {
	if r >= FinalRound {
		panic("game: a match has no round " + strconv.Itoa(int(r)+1))
	}
	return r + 1
}

func (r RoundNumber) String() string {
	return strconv.Itoa(int(r))
}

// Player is a match participant and their round wins.
type Player struct {
	number PlayerNumber
	wins   []RoundNumber
}

// Number returns the player's number.
func (p *Player) Number() PlayerNumber {
	return p.number
}

// Wins returns the rounds this player has won, in order.
func (p *Player) Wins() []RoundNumber {
	return slices.Clone(p.wins)
}

// HasWon reports whether the player won the given round.
func (p *Player) HasWon(round RoundNumber) bool {
	return slices.Contains(p.wins, round)
}

// GamePlayers holds the players of one match.
type GamePlayers struct {
	players []*Player
}

// NewGamePlayers creates players One through count.
func NewGamePlayers(count int) *GamePlayers {
	if count < MinPlayers || count > MaxPlayers {
		panic(fmt.Sprintf("game: player count must be %d-%d, got %d", MinPlayers, MaxPlayers, count))
	}
	players := make([]*Player, count)
	for i := range players {
		players[i] = &Player{
			number: PlayerNumber(i + 1),
			wins:   make([]RoundNumber, 0, int(FinalRound)),
		}
	}
	return &GamePlayers{players: players}
}

// Count returns the number of players.
func (g *GamePlayers) Count() int {
	return len(g.players)
}

// All returns the players in seat order.
func (g *GamePlayers) All() []*Player {
	return slices.Clone(g.players)
}

// Numbers returns the player numbers in seat order.
func (g *GamePlayers) Numbers() []PlayerNumber {
	out := make([]PlayerNumber, len(g.players))
	for i, p := range g.players {
		out[i] = p.number
	}
	return out
}

// Get returns the player with the given number, or nil.
func (g *GamePlayers) Get(n PlayerNumber) *Player {
	for _, p := range g.players {
		if p.number == n {
			return p
		}
	}
	return nil
}

// RegisterWin records that player n won the given round.
func (g *GamePlayers) RegisterWin(n PlayerNumber, round RoundNumber) error {
	for _, p := range g.players {
		if p.HasWon(round) {
			return fmt.Errorf("%w: round %s already won by %s", ErrDuplicateWin, round, p.number)
		}
	}
	p := g.Get(n)
	if p == nil {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, n)
	}
	p.wins = append(p.wins, round)
	return nil
}
