package bot

import (
	rand "math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/lox/shellroulette/internal/game"
)

// RandBot is a simple bot that picks uniformly among the moves it can make:
// every held item it can use right now, and a shot at every living seat.
type RandBot struct {
	rng    *rand.Rand
	logger *log.Logger
}

// NewRandBot creates a new RandBot instance
func NewRandBot(rng *rand.Rand, logger *log.Logger) *RandBot {
	return &RandBot{rng: rng, logger: logger}
}

func (r *RandBot) Decide(view game.TurnView) game.Decision {
	moves := r.moves(view)
	return moves[r.rng.IntN(len(moves))]
}

func (r *RandBot) moves(view game.TurnView) []game.Decision {
	var moves []game.Decision
	for _, s := range view.Seats {
		if s.Occupied {
			moves = append(moves, game.Shoot(s.Player, "rand-bot random shot"))
		}
	}

	for _, item := range uniqueItems(view.Items) {
		switch item {
		case game.Handsaw:
			if !view.Sawn {
				moves = append(moves, game.UseItem(item, "rand-bot random item"))
			}
		case game.Jammer:
			for _, s := range view.Opponents() {
				if s.Stun == game.Unstunned {
					moves = append(moves, game.Jam(s.Player, "rand-bot random jam"))
				}
			}
		case game.Adrenaline:
			for _, s := range view.Opponents() {
				for _, stolen := range uniqueItems(s.Items) {
					if stolen.IsUnary() && (stolen != game.Handsaw || !view.Sawn) {
						moves = append(moves, game.Steal(s.Player, stolen, "rand-bot random steal"))
					}
				}
			}
		default:
			moves = append(moves, game.UseItem(item, "rand-bot random item"))
		}
	}
	return moves
}

func uniqueItems(items []game.Item) []game.Item {
	var out []game.Item
	seen := make(map[game.Item]bool, len(items))
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}
