package game

import "fmt"

// StunState tracks a Jammer's effect on a player.
type StunState uint8

const (
	Unstunned StunState = iota
	Stunned
	Recovering
)

func (s StunState) String() string {
	switch s {
	case Unstunned:
		return "unstunned"
	case Stunned:
		return "stunned"
	case Recovering:
		return "recovering"
	default:
		return fmt.Sprintf("stun(%d)", uint8(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s StunState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *StunState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "unstunned":
		*s = Unstunned
	case "stunned":
		*s = Stunned
	case "recovering":
		*s = Recovering
	default:
		return fmt.Errorf("invalid stun state %q", text)
	}
	return nil
}

// RoundPlayer is a player's combat state for a single round.
type RoundPlayer struct {
	number    PlayerNumber
	health    int
	maxHealth int
	stun      StunState
}

func newRoundPlayer(number PlayerNumber, maxHealth int) *RoundPlayer {
	return &RoundPlayer{
		number:    number,
		health:    maxHealth,
		maxHealth: maxHealth,
	}
}

// Number returns the player's number.
func (p RoundPlayer) Number() PlayerNumber { return p.number }

// Health returns the current health.
func (p RoundPlayer) Health() int { return p.health }

// MaxHealth returns the round's health cap.
func (p RoundPlayer) MaxHealth() int { return p.maxHealth }

// StunState returns the player's stun state.
func (p RoundPlayer) StunState() StunState { return p.stun }

// damage removes health, never going below zero, and reports whether the
// player was eliminated by this hit.
func (p *RoundPlayer) damage(amount int) bool {
	if amount <= 0 || p.health == 0 {
		return false
	}
	p.health = max(p.health-amount, 0)
	return p.health == 0
}

// heal restores health up to the round maximum and returns the amount gained.
func (p *RoundPlayer) heal(amount int) int {
	before := p.health
	p.health = min(p.health+amount, p.maxHealth)
	return p.health - before
}

// passTurn applies the stun transition when turn order reaches this player
// and reports whether they may act.
func (p *RoundPlayer) passTurn() bool {
	switch p.stun {
	case Stunned:
		p.stun = Recovering
		return false
	case Recovering:
		p.stun = Unstunned
		return false
	default:
		return true
	}
}
