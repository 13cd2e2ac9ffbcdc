// Package game implements the rules of shell roulette for two to four
// players.
//
// A Match is three Rounds. Each Round seats every player at full health and
// repeatedly loads the shotgun with a Loadout: a shuffled queue of live and
// blank shells, plus a handful of items dealt round-robin to the living
// players. Players take turns using items and eventually firing at someone,
// themselves included. The last player standing wins the round.
//
// # Driving a round
//
// Round.TakeAction is the only way to change state. It hands the active
// player a single-use Turn and applies the Action the decision function
// returns:
//
//	rng := randutil.New(42)
//	m := game.NewMatch(rng, 2)
//	out, err := m.TakeAction(func(t *game.Turn) game.Action {
//	    a := t.UseItem(game.MagnifyingGlass)
//	    if r, _ := a.Result(); r.Kind == game.ResultLearnedShell && r.Learned.Type == game.Blank {
//	        return a.Next().Shoot(game.PlayerOne)
//	    }
//	    return a.Next().Shoot(game.PlayerTwo)
//	})
//
// Every Turn method consumes the Turn. Actions that leave the turn open
// return a fresh Turn from Action.Next, so several items can be chained in
// one decision call. Reusing a consumed Turn, or keeping one past the
// decision call, panics.
//
// # Agents
//
// Engine plays a whole Match with one Agent per seat. Agents see a TurnView
// and return a Decision; the Engine applies it, tracks what each player has
// learned in a ShellMemory and publishes events on an EventBus.
//
// # Randomness
//
// All randomness comes from the *rand.Rand passed to NewMatch or NewRound.
// The same seed and the same decisions always replay the same game.
package game
