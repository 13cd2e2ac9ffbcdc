package game

import (
	"fmt"
	rand "math/rand/v2"
	"slices"
)

// OutcomeKind is what TakeAction reports back to the driver.
type OutcomeKind uint8

const (
	// TurnOpen means the same player acts again.
	TurnOpen OutcomeKind = iota + 1
	// TurnEnded means control passed to another seat.
	TurnEnded
	// RoundEnded is terminal: one occupied seat remains.
	RoundEnded
)

func (k OutcomeKind) String() string {
	switch k {
	case TurnOpen:
		return "turn_open"
	case TurnEnded:
		return "turn_ended"
	case RoundEnded:
		return "round_ended"
	default:
		return "unknown"
	}
}

// LoadoutTransition reports whether the action exhausted the shell queue.
type LoadoutTransition uint8

const (
	LoadoutContinues LoadoutTransition = iota
	LoadoutEnded
)

// Outcome is the result of one TakeAction call.
type Outcome struct {
	Kind   OutcomeKind
	Player PlayerNumber
	Action Action
	// Shot is set when the action fired the shotgun.
	Shot *ShotResult
	// Loadout is LoadoutEnded when the queue ran dry; NewLoadout then
	// describes the loadout that replaced it. The round-ending shot never
	// triggers a refresh.
	Loadout    LoadoutTransition
	NewLoadout *LoadoutReport
	// Next is the player due to act, zero once the round has ended.
	Next      PlayerNumber
	Winner    PlayerNumber
	FirstDead PlayerNumber
}

// Round owns one round of play: the seat table, the shell queue, the
// cross-turn modifiers and the random stream. It is driven by a single
// goroutine through TakeAction.
type Round struct {
	number    RoundNumber
	rng       *rand.Rand
	seats     []*Seat
	active    int
	shells    []Shell
	inverted  bool
	sawn      bool
	maxHealth int
	loadout   Loadout
	loadouts  int
	last      LoadoutReport
	firstDead PlayerNumber
	winner    PlayerNumber
	ended     bool
	consumed  bool
	epoch     uint64
	// seq stamps every Action so only the newest one in a chain is accepted.
	seq uint64
}

// NewRound starts round one for the given seats. Player One, when seated,
// takes the first turn. The first loadout is generated before returning.
func NewRound(rng *rand.Rand, players []PlayerNumber) *Round {
	if rng == nil {
		panic("game: rng is required for round creation")
	}
	return newRound(rng, players, RoundOne, PlayerOne)
}

// NextRound builds the following round from a finished one. The random
// stream moves to the new round and the first player eliminated in prev
// takes the first turn. prev cannot be used again.
func NextRound(prev *Round) *Round {
	if !prev.ended {
		panic("game: NextRound called before the round ended")
	}
	if prev.consumed {
		panic("game: round already replaced")
	}
	number := prev.number.Next()
	players := make([]PlayerNumber, len(prev.seats))
	for i, seat := range prev.seats {
		players[i] = seat.number
	}
	rng := prev.rng
	prev.rng = nil
	prev.consumed = true
	return newRound(rng, players, number, prev.firstDead)
}

func newRound(rng *rand.Rand, players []PlayerNumber, number RoundNumber, first PlayerNumber) *Round {
	if len(players) < MinPlayers || len(players) > MaxPlayers {
		panic(fmt.Sprintf("game: a round needs %d-%d players, got %d", MinPlayers, MaxPlayers, len(players)))
	}
	for i, p := range players {
		if !p.Valid() || slices.Contains(players[:i], p) {
			panic(fmt.Sprintf("game: invalid seat assignment %v", players))
		}
	}

	r := &Round{
		number: number,
		rng:    rng,
		seats:  make([]*Seat, len(players)),
	}
	r.maxHealth = rollMaxHealth(len(players), rng)
	for i, p := range players {
		r.seats[i] = newSeat(newRoundPlayer(p, r.maxHealth))
		if p == first {
			r.active = i
		}
	}
	r.load()
	return r
}

// TakeAction hands the active player's Turn to decide and applies the action
// it returns. decide must return an Action produced by that Turn or by a Turn
// chained from it.
func (r *Round) TakeAction(decide func(*Turn) Action) Outcome {
	if r.ended {
		panic("game: action requested on a finished round")
	}
	seat := r.seats[r.active]
	r.epoch++
	epoch := r.epoch
	action := decide(r.issue(seat))
	r.epoch++
	if action.round != r || action.epoch != epoch {
		panic("game: decision returned an action that did not come from its turn")
	}
	if action.seq != r.seq {
		panic("game: decision returned an earlier action; return the last action of the chain")
	}

	switch action.kind {
	case ActionContinued:
		return Outcome{
			Kind:   TurnOpen,
			Player: seat.number,
			Action: action,
			Next:   seat.number,
		}
	case ActionTerminalItem:
		r.sawn = false
		r.advance()
		report := r.load()
		return Outcome{
			Kind:       TurnEnded,
			Player:     seat.number,
			Action:     action,
			Loadout:    LoadoutEnded,
			NewLoadout: &report,
			Next:       r.ActivePlayer(),
		}
	case ActionShot:
		return r.resolveShot(seat, action)
	default:
		panic("game: decision returned an empty action")
	}
}

func (r *Round) resolveShot(shooter *Seat, action Action) Outcome {
	shell := r.shells[0]
	r.shells = r.shells[1:]

	damage := 0
	if shell.Type() == Live {
		damage = 1
		if r.sawn {
			damage = 2
		}
	}
	shot := ShotResult{
		Shooter: shooter.number,
		Target:  action.target,
		Shell:   shell.Type(),
		Sawn:    r.sawn,
		Damage:  damage,
	}
	r.sawn = false

	target := r.seatOf(action.target)
	shot.Eliminated = target.player.damage(damage)
	shot.HealthAfter = target.player.health

	out := Outcome{
		Kind:   TurnEnded,
		Player: shooter.number,
		Action: action,
		Shot:   &shot,
	}

	if shot.Eliminated {
		target.vacate()
		if r.firstDead == 0 {
			r.firstDead = target.number
		}
		if occupiedSeats(r.seats) == 1 {
			r.ended = true
			r.winner = r.survivor()
			out.Kind = RoundEnded
			out.Winner = r.winner
			out.FirstDead = r.firstDead
			return out
		}
	}

	if shot.SelfBlank() {
		out.Kind = TurnOpen
	} else {
		r.advance()
	}

	if len(r.shells) == 0 {
		report := r.load()
		out.Loadout = LoadoutEnded
		out.NewLoadout = &report
	}
	out.Next = r.ActivePlayer()
	return out
}

// advance moves to the next occupied seat in turn order that is allowed to
// act, applying the stun transition to each occupied seat it passes. At
// least two seats are occupied and stun states only count down, so the scan
// terminates.
func (r *Round) advance() {
	n := len(r.seats)
	step := 1
	if r.inverted {
		step = n - 1
	}
	i := r.active
	for {
		i = (i + step) % n
		seat := r.seats[i]
		if seat.player == nil {
			continue
		}
		if seat.player.passTurn() {
			r.active = i
			return
		}
	}
}

// load generates a loadout, refills the queue and hands out items.
func (r *Round) load() LoadoutReport {
	l := newLoadout(len(r.seats), r.rng)
	r.shells = l.shells(r.rng)
	grants := distributeItems(r.seats, l.NewItems, r.rng)
	r.loadout = l
	r.loadouts++
	r.last = LoadoutReport{Loadout: l, Grants: grants}
	return r.last
}

func (r *Round) stamp() uint64 {
	r.seq++
	return r.seq
}

func (r *Round) issue(seat *Seat) *Turn {
	return &Turn{round: r, seat: seat, epoch: r.epoch}
}

func (r *Round) seatOf(p PlayerNumber) *Seat {
	for _, seat := range r.seats {
		if seat.number == p {
			return seat
		}
	}
	return nil
}

func (r *Round) survivor() PlayerNumber {
	for _, seat := range r.seats {
		if seat.Occupied() {
			return seat.number
		}
	}
	return 0
}

// applyUnary resolves a unary item for actor. Every failure is detected
// before anything is changed.
func (r *Round) applyUnary(actor *Seat, item Item) (ItemResult, bool, error) {
	switch item {
	case Remote:
		r.inverted = !r.inverted
	case Phone:
		if len(r.shells) > 2 {
			idx := 2 + r.rng.IntN(len(r.shells)-2)
			return ItemResult{
				Kind:    ResultLearnedShell,
				Learned: LearnedShell{RelativeIndex: idx, Type: r.shells[idx].Type()},
			}, false, nil
		}
	case Inverter:
		r.shells[0].Invert()
	case MagnifyingGlass:
		return ItemResult{
			Kind:    ResultLearnedShell,
			Learned: LearnedShell{RelativeIndex: 0, Type: r.shells[0].Type()},
		}, false, nil
	case Cigarettes:
		// TODO: confirm whether Cigarettes used at max health should stay in
		// the inventory instead of being spent.
		return ItemResult{Healed: actor.player.heal(1)}, false, nil
	case Handsaw:
		if r.sawn {
			return ItemResult{}, false, ErrDoubleSaw
		}
		r.sawn = true
	case Beer:
		ejected := r.shells[0]
		r.shells = r.shells[1:]
		empty := len(r.shells) == 0
		return ItemResult{
			Kind:    ResultShellEjected,
			Ejected: ejected.Type(),
			Empty:   empty,
		}, empty, nil
	default:
		panic(fmt.Sprintf("game: %s is not a unary item", item))
	}
	return ItemResult{}, false, nil
}

func (r *Round) jam(actor *Seat, target PlayerNumber) (ItemResult, error) {
	seat := r.seatOf(target)
	if seat == nil || !seat.Occupied() || seat == actor {
		return ItemResult{}, ErrInvalidStunTarget
	}
	if seat.player.stun != Unstunned {
		return ItemResult{}, ErrDoubleStun
	}
	seat.player.stun = Stunned
	return ItemResult{Kind: ResultStunnedPlayer, Stunned: target}, nil
}

func (r *Round) stealable(actor *Seat, from PlayerNumber, item Item) (*Seat, error) {
	seat := r.seatOf(from)
	if seat == nil || !seat.Occupied() || seat == actor {
		return nil, ErrBadAdrenalineTarget
	}
	if !item.Stealable() || !seat.Has(item) {
		return nil, ErrBadAdrenalineTarget
	}
	return seat, nil
}

// Number returns the round number.
func (r *Round) Number() RoundNumber { return r.number }

// MaxHealth returns the starting and maximum health for this round.
func (r *Round) MaxHealth() int { return r.maxHealth }

// PlayerCount returns the number of seats.
func (r *Round) PlayerCount() int { return len(r.seats) }

// ActivePlayer returns the player whose turn it is.
func (r *Round) ActivePlayer() PlayerNumber { return r.seats[r.active].number }

// Seats returns a snapshot of every seat in seat order.
func (r *Round) Seats() []SeatView {
	out := make([]SeatView, len(r.seats))
	for i, seat := range r.seats {
		out[i] = seat.View()
	}
	return out
}

// Seat returns a snapshot of one seat.
func (r *Round) Seat(p PlayerNumber) (SeatView, bool) {
	seat := r.seatOf(p)
	if seat == nil {
		return SeatView{}, false
	}
	return seat.View(), true
}

// Alive returns the number of occupied seats.
func (r *Round) Alive() int { return occupiedSeats(r.seats) }

// ShellsRemaining returns the size of the shell queue. Its contents are only
// ever revealed through items.
func (r *Round) ShellsRemaining() int { return len(r.shells) }

// TurnOrderInverted reports whether a Remote has reversed turn order.
func (r *Round) TurnOrderInverted() bool { return r.inverted }

// Sawn reports whether the next shot deals double damage.
func (r *Round) Sawn() bool { return r.sawn }

// Loadout returns the announced counts of the current loadout.
func (r *Round) Loadout() Loadout { return r.loadout }

// LastLoadout returns the most recent loadout and its item grants.
func (r *Round) LastLoadout() LoadoutReport { return r.last }

// Loadouts returns how many loadouts this round has generated.
func (r *Round) Loadouts() int { return r.loadouts }

// FirstDeadPlayer returns the first player eliminated this round.
func (r *Round) FirstDeadPlayer() (PlayerNumber, bool) {
	return r.firstDead, r.firstDead != 0
}

// Winner returns the last player standing once the round has ended.
func (r *Round) Winner() (PlayerNumber, bool) {
	return r.winner, r.ended
}

// Ended reports whether the round is over.
func (r *Round) Ended() bool { return r.ended }
