package bot

import (
	"github.com/charmbracelet/log"

	"github.com/lox/shellroulette/internal/game"
)

// AggroBot saws the barrel whenever it can and shoots the weakest opponent.
type AggroBot struct {
	logger *log.Logger
}

// NewAggroBot creates a new AggroBot instance
func NewAggroBot(logger *log.Logger) *AggroBot {
	return &AggroBot{logger: logger}
}

func (a *AggroBot) Decide(view game.TurnView) game.Decision {
	if view.Has(game.Handsaw) && !view.Sawn {
		return game.UseItem(game.Handsaw, "aggro-bot sawing off the barrel")
	}
	target, ok := weakestOpponent(view)
	if !ok {
		return game.Shoot(view.Player, "aggro-bot has nobody left to shoot")
	}
	a.logger.Debug("Shooting weakest opponent", "target", target.Player, "health", target.Health)
	return game.Shoot(target.Player, "aggro-bot shooting the weakest opponent")
}
