// Package bot holds the built-in strategies. Every strategy is a game.Agent
// and only ever sees the TurnView the engine hands it.
package bot

import (
	"errors"
	"fmt"
	"io"
	rand "math/rand/v2"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/lox/shellroulette/internal/game"
)

// ErrUnknownStrategy is returned by New for names it does not recognise.
var ErrUnknownStrategy = errors.New("unknown strategy")

type constructor func(rng *rand.Rand, logger *log.Logger) game.Agent

var registry = map[string]constructor{
	"self":  func(_ *rand.Rand, logger *log.Logger) game.Agent { return NewSelfBot(logger) },
	"aggro": func(_ *rand.Rand, logger *log.Logger) game.Agent { return NewAggroBot(logger) },
	"rand":  func(rng *rand.Rand, logger *log.Logger) game.Agent { return NewRandBot(rng, logger) },
	"smart": func(rng *rand.Rand, logger *log.Logger) game.Agent { return NewSmartBot(rng, logger) },
}

// Strategies returns the names New accepts, sorted.
func Strategies() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// New builds the named strategy. rng must not be the round's random stream;
// derive a separate one so bots cannot perturb the game.
func New(name string, rng *rand.Rand, logger *log.Logger) (game.Agent, error) {
	ctor, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w %q (want one of %s)", ErrUnknownStrategy, name, strings.Join(Strategies(), ", "))
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return ctor(rng, logger.WithPrefix(name)), nil
}

// ThinkingContext accumulates thoughts during decision making
type ThinkingContext struct {
	thoughts []string
}

// AddThought adds a thought to the thinking process
func (tc *ThinkingContext) AddThought(format string, args ...any) {
	tc.thoughts = append(tc.thoughts, fmt.Sprintf(format, args...))
}

// GetThoughts returns the complete stream of thoughts
func (tc *ThinkingContext) GetThoughts() string {
	if len(tc.thoughts) == 0 {
		return "No clear reasoning available"
	}
	return strings.Join(tc.thoughts, ". ")
}

// weakestOpponent is the living opponent with the least health, lowest seat
// first on ties.
func weakestOpponent(view game.TurnView) (game.SeatView, bool) {
	opponents := view.Opponents()
	if len(opponents) == 0 {
		return game.SeatView{}, false
	}
	best := opponents[0]
	for _, s := range opponents[1:] {
		if s.Health < best.Health {
			best = s
		}
	}
	return best, true
}

// strongestJammable is the healthiest opponent that can still be stunned.
func strongestJammable(view game.TurnView) (game.SeatView, bool) {
	var best game.SeatView
	found := false
	for _, s := range view.Opponents() {
		if s.Stun != game.Unstunned {
			continue
		}
		if !found || s.Health > best.Health {
			best, found = s, true
		}
	}
	return best, found
}

// holder returns an opponent holding item.
func holder(view game.TurnView, item game.Item) (game.SeatView, bool) {
	for _, s := range view.Opponents() {
		if s.Has(item) {
			return s, true
		}
	}
	return game.SeatView{}, false
}
