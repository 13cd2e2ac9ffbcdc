package bot

import (
	rand "math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/lox/shellroulette/internal/game"
)

// SmartBot plays from what it knows: it gathers information before
// shooting, heals when hurt, keeps the healthiest opponent jammed and
// borrows opponents' items with Adrenaline when its own run out.
type SmartBot struct {
	rng    *rand.Rand
	logger *log.Logger
}

// NewSmartBot creates a new SmartBot instance
func NewSmartBot(rng *rand.Rand, logger *log.Logger) *SmartBot {
	return &SmartBot{rng: rng, logger: logger}
}

func (s *SmartBot) Decide(view game.TurnView) game.Decision {
	thinking := &ThinkingContext{}
	decision := s.decide(view, thinking)
	decision.Reasoning = thinking.GetThoughts()
	s.logger.Debug("Decision made",
		"player", view.Player,
		"decision", decision,
		"liveChance", view.LiveChance(),
		"health", view.Health,
		"reasoning", decision.Reasoning)
	return decision
}

func (s *SmartBot) decide(view game.TurnView, thinking *ThinkingContext) game.Decision {
	if view.Health < view.MaxHealth && view.Has(game.Cigarettes) {
		thinking.AddThought("Down to %d of %d health, smoking", view.Health, view.MaxHealth)
		return game.UseItem(game.Cigarettes, "")
	}

	if target, ok := strongestJammable(view); ok && view.Has(game.Jammer) {
		thinking.AddThought("Jamming %s at %d health", target.Player, target.Health)
		return game.Jam(target.Player, "")
	}

	front, known := view.KnownAt(0)
	if !known {
		if d, ok := s.lookAhead(view, thinking); ok {
			return d
		}
	}

	if view.ShellsRemaining > 2 && view.Has(game.Phone) {
		thinking.AddThought("Calling ahead about the back of the queue")
		return game.UseItem(game.Phone, "")
	}

	chance := view.LiveChance()
	if known {
		thinking.AddThought("Next shell is %s", front)
	} else {
		thinking.AddThought("Next shell is live with probability %.2f", chance)
	}

	if known && front == game.Blank && view.Has(game.Inverter) {
		thinking.AddThought("Flipping the blank")
		return game.UseItem(game.Inverter, "")
	}

	if !known && view.ShellsRemaining > 1 && chance > 0.35 && chance < 0.65 && view.Has(game.Beer) {
		thinking.AddThought("Too close to call, racking it")
		return game.UseItem(game.Beer, "")
	}

	target, ok := weakestOpponent(view)
	if !ok {
		return game.Shoot(view.Player, "")
	}

	if chance >= 0.5 {
		if !view.Sawn && chance == 1 && view.Has(game.Handsaw) {
			thinking.AddThought("Certain live, sawing first")
			return game.UseItem(game.Handsaw, "")
		}
		thinking.AddThought("Shooting %s at %d health", target.Player, target.Health)
		return game.Shoot(target.Player, "")
	}

	if view.Sawn {
		// Never point a sawn barrel at ourselves.
		thinking.AddThought("Barrel is sawn, taking the shot at %s anyway", target.Player)
		return game.Shoot(target.Player, "")
	}
	thinking.AddThought("Likely blank, shooting self to keep the turn")
	return game.Shoot(view.Player, "")
}

// lookAhead tries to reveal the front shell with an own or stolen
// magnifying glass.
func (s *SmartBot) lookAhead(view game.TurnView, thinking *ThinkingContext) (game.Decision, bool) {
	if view.Has(game.MagnifyingGlass) {
		thinking.AddThought("Checking the chamber")
		return game.UseItem(game.MagnifyingGlass, ""), true
	}
	if !view.Has(game.Adrenaline) {
		return game.Decision{}, false
	}
	if victim, ok := holder(view, game.MagnifyingGlass); ok {
		thinking.AddThought("Borrowing %s's magnifying glass", victim.Player)
		return game.Steal(victim.Player, game.MagnifyingGlass, ""), true
	}
	if view.Health < view.MaxHealth {
		if victim, ok := holder(view, game.Cigarettes); ok {
			thinking.AddThought("Borrowing %s's cigarettes", victim.Player)
			return game.Steal(victim.Player, game.Cigarettes, ""), true
		}
	}
	if victim, ok := holder(view, game.Jammer); ok {
		if target, ok := strongestJammable(view); ok {
			thinking.AddThought("Taking %s's jammer for %s", victim.Player, target.Player)
			return game.StealJammer(victim.Player, target.Player, ""), true
		}
	}
	return game.Decision{}, false
}
