package game

import (
	"fmt"
	"strings"
)

// MaxInventory is the number of items a seat can hold.
const MaxInventory = 8

// Item is one of the closed set of consumables handed out with each loadout.
type Item uint8

const (
	Remote Item = iota + 1
	Phone
	Inverter
	MagnifyingGlass
	Cigarettes
	Handsaw
	Beer
	Jammer
	Adrenaline
)

// allItems is the canonical item order. Candidate pools are built in this
// order, so changing it changes which item a given draw selects.
var allItems = [...]Item{
	Remote,
	Phone,
	Inverter,
	MagnifyingGlass,
	Cigarettes,
	Handsaw,
	Beer,
	Jammer,
	Adrenaline,
}

type supplyLimit struct {
	perPlayer int
	global    int
}

var supplyLimits = [...]supplyLimit{
	Remote:          {perPlayer: 1, global: 2},
	Phone:           {perPlayer: 8, global: 32},
	Inverter:        {perPlayer: 8, global: 32},
	MagnifyingGlass: {perPlayer: 8, global: 32},
	Cigarettes:      {perPlayer: 1, global: 32},
	Handsaw:         {perPlayer: 2, global: 32},
	Beer:            {perPlayer: 8, global: 32},
	Jammer:          {perPlayer: 1, global: 1},
	Adrenaline:      {perPlayer: 4, global: 32},
}

var itemNames = [...]string{
	Remote:          "remote",
	Phone:           "phone",
	Inverter:        "inverter",
	MagnifyingGlass: "magnifying_glass",
	Cigarettes:      "cigarettes",
	Handsaw:         "handsaw",
	Beer:            "beer",
	Jammer:          "jammer",
	Adrenaline:      "adrenaline",
}

// Items returns every item in canonical order.
func Items() []Item {
	out := make([]Item, len(allItems))
	copy(out, allItems[:])
	return out
}

// Valid reports whether i is a known item.
func (i Item) Valid() bool {
	return i >= Remote && i <= Adrenaline
}

// IsUnary reports whether the item needs no target to use.
func (i Item) IsUnary() bool {
	return i.Valid() && i != Jammer && i != Adrenaline
}

// Stealable reports whether Adrenaline may take this item from another seat.
func (i Item) Stealable() bool {
	return i.Valid() && i != Adrenaline
}

// PerPlayerLimit is the most copies of the item a single seat may hold.
func (i Item) PerPlayerLimit() int {
	if !i.Valid() {
		return 0
	}
	return supplyLimits[i].perPlayer
}

// GlobalLimit is the most copies of the item that may be on the table at once.
func (i Item) GlobalLimit() int {
	if !i.Valid() {
		return 0
	}
	return supplyLimits[i].global
}

func (i Item) String() string {
	if !i.Valid() {
		return fmt.Sprintf("item(%d)", uint8(i))
	}
	return itemNames[i]
}

// MarshalText implements encoding.TextMarshaler.
func (i Item) MarshalText() ([]byte, error) {
	if !i.Valid() {
		return nil, fmt.Errorf("invalid item %d", uint8(i))
	}
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *Item) UnmarshalText(text []byte) error {
	item, err := ParseItem(string(text))
	if err != nil {
		return err
	}
	*i = item
	return nil
}

var itemAliases = map[string]Item{
	"glass":     MagnifyingGlass,
	"magnifier": MagnifyingGlass,
	"cigs":      Cigarettes,
	"cigarette": Cigarettes,
	"saw":       Handsaw,
	"adrenalin": Adrenaline,
}

// ParseItem resolves an item from its name. Matching is case-insensitive and
// accepts a few short aliases.
func ParseItem(name string) (Item, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, "-", "_")
	key = strings.ReplaceAll(key, " ", "_")
	for _, item := range allItems {
		if itemNames[item] == key {
			return item, nil
		}
	}
	if item, ok := itemAliases[key]; ok {
		return item, nil
	}
	return 0, fmt.Errorf("unknown item %q", name)
}
