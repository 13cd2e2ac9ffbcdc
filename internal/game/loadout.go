package game

import (
	rand "math/rand/v2"

	"github.com/lox/shellroulette/internal/randutil"
)

// shellPair is one canonical (live, blank) combination.
type shellPair struct {
	live  int
	blank int
}

func sp(live, blank int) shellPair { return shellPair{live: live, blank: blank} }

// shellPairs are the hand-tuned shell counts per table size. A pair is drawn
// uniformly by index, so duplicated entries weight that pair.
var shellPairs = map[int][]shellPair{
	2: {sp(1, 1), sp(1, 2), sp(2, 1), sp(2, 2), sp(2, 3), sp(3, 1), sp(3, 2), sp(3, 3), sp(4, 2)},
	3: {sp(1, 1), sp(2, 2), sp(2, 3), sp(3, 1), sp(3, 2), sp(3, 3), sp(3, 4), sp(4, 2), sp(4, 3), sp(4, 4)},
	4: {sp(2, 1), sp(2, 2), sp(3, 1), sp(3, 2), sp(3, 3), sp(3, 4), sp(3, 4), sp(4, 2), sp(4, 3), sp(4, 4)},
}

// intRange is an inclusive [lo, hi] range.
type intRange struct {
	lo, hi int
}

var newItemRanges = map[int]intRange{
	2: {2, 4},
	3: {3, 5},
	4: {2, 4},
}

var maxHealthRanges = map[int]intRange{
	2: {2, 4},
	3: {3, 5},
	4: {3, 6},
}

// Loadout is one batch of shells and the number of items handed to each seat
// alongside it. The live and blank counts are announced to the table.
type Loadout struct {
	Live     int `json:"live"`
	Blank    int `json:"blank"`
	NewItems int `json:"new_items"`
}

// Shells returns the total shell count.
func (l Loadout) Shells() int { return l.Live + l.Blank }

// ItemGrant records one item drawn into a seat.
type ItemGrant struct {
	Player PlayerNumber `json:"player"`
	Item   Item         `json:"item"`
}

// LoadoutReport describes a freshly generated loadout.
type LoadoutReport struct {
	Loadout Loadout     `json:"loadout"`
	Grants  []ItemGrant `json:"grants"`
}

func rollMaxHealth(players int, rng *rand.Rand) int {
	r := maxHealthRanges[players]
	return randutil.IntRange(rng, r.lo, r.hi)
}

// newLoadout draws the shell pair first and the item count second.
func newLoadout(players int, rng *rand.Rand) Loadout {
	pairs := shellPairs[players]
	pair := pairs[rng.IntN(len(pairs))]
	r := newItemRanges[players]
	return Loadout{
		Live:     pair.live,
		Blank:    pair.blank,
		NewItems: randutil.IntRange(rng, r.lo, r.hi),
	}
}

// shells materialises the queue. A fair coin picks the next type while both
// remain; whatever is left over is appended as one block, so the tail leans
// towards the type that had the surplus.
func (l Loadout) shells(rng *rand.Rand) []Shell {
	out := make([]Shell, 0, l.Shells())
	live, blank := l.Live, l.Blank
	for live > 0 && blank > 0 {
		if rng.IntN(2) == 0 {
			out = append(out, NewShell(Live))
			live--
		} else {
			out = append(out, NewShell(Blank))
			blank--
		}
	}
	for ; live > 0; live-- {
		out = append(out, NewShell(Live))
	}
	for ; blank > 0; blank-- {
		out = append(out, NewShell(Blank))
	}
	return out
}

// itemCounts maps each item to the number of copies on the table.
type itemCounts map[Item]int

func tableCounts(seats []*Seat) itemCounts {
	counts := make(itemCounts, len(allItems))
	for _, seat := range seats {
		for _, item := range seat.items {
			counts[item]++
		}
	}
	return counts
}

func occupiedSeats(seats []*Seat) int {
	n := 0
	for _, seat := range seats {
		if seat.Occupied() {
			n++
		}
	}
	return n
}

// distributeItems hands out newItems items per occupied seat, one item per
// seat per pass in seat order. global is updated after every single draw so
// later seats in the same pass see it.
func distributeItems(seats []*Seat, newItems int, rng *rand.Rand) []ItemGrant {
	global := tableCounts(seats)
	alive := occupiedSeats(seats)
	grants := make([]ItemGrant, 0, newItems*len(seats))
	pool := make([]Item, 0, len(allItems))

	for pass := 0; pass < newItems; pass++ {
		for _, seat := range seats {
			if !seat.Occupied() || seat.Full() {
				continue
			}
			pool = drawable(pool[:0], seat, global, alive)
			if len(pool) == 0 {
				continue
			}
			item := pool[rng.IntN(len(pool))]
			seat.add(item)
			global[item]++
			grants = append(grants, ItemGrant{Player: seat.number, Item: item})
		}
	}
	return grants
}

// drawable appends to dst every item the seat may currently receive.
func drawable(dst []Item, seat *Seat, global itemCounts, alive int) []Item {
	for _, item := range allItems {
		if seat.Count(item) >= item.PerPlayerLimit() {
			continue
		}
		if global[item] >= item.GlobalLimit() {
			continue
		}
		if item == Remote && alive < 3 {
			continue
		}
		dst = append(dst, item)
	}
	return dst
}
