package game

import "fmt"

// Turn is the capability handed to a decision function for one call of
// Round.TakeAction. It grants exclusive use of the acting seat and read-only
// views of everything else.
//
// A Turn is single use: the first action method consumes it and any further
// call panics. Continued actions hand out a fresh Turn through Action.Next.
// Every Turn expires when the decision function returns.
type Turn struct {
	round *Round
	seat  *Seat
	epoch uint64
	spent bool
}

func (t *Turn) checkLive() {
	if t.epoch != t.round.epoch {
		panic("game: turn used after its decision call returned")
	}
}

func (t *Turn) claim() {
	t.checkLive()
	if t.spent {
		panic("game: turn already used; chain through Action.Next")
	}
	t.spent = true
}

// Player returns the acting player's state.
func (t *Turn) Player() RoundPlayer {
	t.checkLive()
	return *t.seat.player
}

// Items returns the acting player's inventory.
func (t *Turn) Items() []Item {
	t.checkLive()
	return t.seat.Items()
}

// Has reports whether the acting player holds item.
func (t *Turn) Has(item Item) bool {
	t.checkLive()
	return t.seat.Has(item)
}

// Seats returns views of every seat in seat order, the acting seat included.
func (t *Turn) Seats() []SeatView {
	t.checkLive()
	return t.round.Seats()
}

// ShellsRemaining returns the number of shells left in the queue.
func (t *Turn) ShellsRemaining() int {
	t.checkLive()
	return len(t.round.shells)
}

// Sawn reports whether the next shot deals double damage.
func (t *Turn) Sawn() bool {
	t.checkLive()
	return t.round.sawn
}

// TurnOrderInverted reports whether turn order currently runs backwards.
func (t *Turn) TurnOrderInverted() bool {
	t.checkLive()
	return t.round.inverted
}

// Round returns the current round number.
func (t *Turn) Round() RoundNumber {
	t.checkLive()
	return t.round.number
}

// Loadout returns the announced counts of the current loadout.
func (t *Turn) Loadout() Loadout {
	t.checkLive()
	return t.round.loadout
}

// UseItem uses one of the unary items: Remote, Phone, Inverter,
// MagnifyingGlass, Cigarettes, Handsaw or Beer.
func (t *Turn) UseItem(item Item) Action {
	t.claim()
	if !item.IsUnary() {
		panic(fmt.Sprintf("game: UseItem called with %s; use the targeted variant", item))
	}
	if !t.seat.Has(item) {
		return t.fail(item, ErrItemAbsent)
	}
	result, terminal, err := t.round.applyUnary(t.seat, item)
	if err != nil {
		return t.fail(item, err)
	}
	t.seat.remove(item)
	return t.succeed(item, result, terminal)
}

// UseJammer stuns target so they lose their next two turns.
func (t *Turn) UseJammer(target PlayerNumber) Action {
	t.claim()
	if !t.seat.Has(Jammer) {
		return t.fail(Jammer, ErrItemAbsent)
	}
	result, err := t.round.jam(t.seat, target)
	if err != nil {
		return t.fail(Jammer, err)
	}
	t.seat.remove(Jammer)
	return t.succeed(Jammer, result, false)
}

// UseAdrenaline takes one unary item from another player and uses it at
// once as if it were the acting player's own.
func (t *Turn) UseAdrenaline(from PlayerNumber, item Item) Action {
	t.claim()
	if !t.seat.Has(Adrenaline) {
		return t.fail(Adrenaline, ErrItemAbsent)
	}
	if !item.IsUnary() {
		return t.fail(Adrenaline, ErrBadAdrenalineTarget)
	}
	victim, err := t.round.stealable(t.seat, from, item)
	if err != nil {
		return t.fail(Adrenaline, err)
	}
	result, terminal, err := t.round.applyUnary(t.seat, item)
	if err != nil {
		return t.fail(Adrenaline, err)
	}
	t.seat.remove(Adrenaline)
	victim.remove(item)
	a := t.succeed(Adrenaline, result, terminal)
	a.stolen, a.victim = item, from
	return a
}

// UseAdrenalineJammer takes a Jammer from another player and stuns target
// with it in the same action.
func (t *Turn) UseAdrenalineJammer(from, target PlayerNumber) Action {
	t.claim()
	if !t.seat.Has(Adrenaline) {
		return t.fail(Adrenaline, ErrItemAbsent)
	}
	victim, err := t.round.stealable(t.seat, from, Jammer)
	if err != nil {
		return t.fail(Adrenaline, err)
	}
	result, err := t.round.jam(t.seat, target)
	if err != nil {
		return t.fail(Adrenaline, err)
	}
	t.seat.remove(Adrenaline)
	victim.remove(Jammer)
	a := t.succeed(Adrenaline, result, false)
	a.stolen, a.victim = Jammer, from
	return a
}

// Shoot fires the next shell at target, which may be the acting player.
// Shooting a vacant or unknown seat is rejected and the turn stays open.
func (t *Turn) Shoot(target PlayerNumber) Action {
	t.claim()
	seat := t.round.seatOf(target)
	if seat == nil || !seat.Occupied() {
		return t.fail(0, ErrInvalidShotTarget)
	}
	return Action{
		kind:   ActionShot,
		player: t.seat.number,
		target: target,
		epoch:  t.epoch,
		seq:    t.round.stamp(),
		round:  t.round,
	}
}

// reject consumes the turn without doing anything.
func (t *Turn) reject(err error) Action {
	t.claim()
	return t.fail(0, err)
}

func (t *Turn) fail(item Item, err error) Action {
	return Action{
		kind:   ActionContinued,
		player: t.seat.number,
		item:   item,
		err:    err,
		next:   t.round.issue(t.seat),
		epoch:  t.epoch,
		seq:    t.round.stamp(),
		round:  t.round,
	}
}

func (t *Turn) succeed(item Item, result ItemResult, terminal bool) Action {
	a := Action{
		kind:   ActionContinued,
		player: t.seat.number,
		item:   item,
		result: result,
		epoch:  t.epoch,
		seq:    t.round.stamp(),
		round:  t.round,
	}
	if terminal {
		a.kind = ActionTerminalItem
	} else {
		a.next = t.round.issue(t.seat)
	}
	return a
}
