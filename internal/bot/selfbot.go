package bot

import (
	"github.com/charmbracelet/log"

	"github.com/lox/shellroulette/internal/game"
)

// SelfBot always points the gun at itself and never touches its items.
type SelfBot struct {
	logger *log.Logger
}

// NewSelfBot creates a new SelfBot instance
func NewSelfBot(logger *log.Logger) *SelfBot {
	return &SelfBot{logger: logger}
}

func (s *SelfBot) Decide(view game.TurnView) game.Decision {
	return game.Shoot(view.Player, "self-bot shooting itself")
}
