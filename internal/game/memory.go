package game

import "sort"

// ShellMemory tracks what each player knows about the current loadout: the
// announced counts, every shell that has publicly left the gun, and each
// player's private reveals. Positions are absolute within the loadout so
// they survive shells being fired in front of them.
type ShellMemory struct {
	loadout    Loadout
	spent      int
	liveSpent  int
	blankSpent int
	// uncertain is set once an Inverter is used, after which the announced
	// counts no longer add up exactly.
	uncertain bool
	known     map[PlayerNumber]map[int]ShellType
}

// NewShellMemory returns an empty memory.
func NewShellMemory() *ShellMemory {
	return &ShellMemory{known: make(map[PlayerNumber]map[int]ShellType)}
}

// Reset forgets everything and starts tracking a new loadout.
func (m *ShellMemory) Reset(l Loadout) {
	m.loadout = l
	m.spent, m.liveSpent, m.blankSpent = 0, 0, 0
	m.uncertain = false
	clear(m.known)
}

// Learn records a private reveal. index is relative to the current front.
func (m *ShellMemory) Learn(p PlayerNumber, index int, t ShellType) {
	seen, ok := m.known[p]
	if !ok {
		seen = make(map[int]ShellType)
		m.known[p] = seen
	}
	seen[m.spent+index] = t
}

// Remove records that the front shell left the gun and was shown to everyone.
func (m *ShellMemory) Remove(t ShellType) {
	for _, seen := range m.known {
		delete(seen, m.spent)
	}
	m.spent++
	if t == Live {
		m.liveSpent++
	} else {
		m.blankSpent++
	}
}

// InvertFront records a public Inverter use. Everyone who knew the front
// shell now knows its new type; the public counts stop being exact.
func (m *ShellMemory) InvertFront() {
	for _, seen := range m.known {
		if t, ok := seen[m.spent]; ok {
			if t == Live {
				seen[m.spent] = Blank
			} else {
				seen[m.spent] = Live
			}
		}
	}
	m.uncertain = true
}

// Known returns p's reveals relative to the current front, nearest first.
func (m *ShellMemory) Known(p PlayerNumber) []KnownShell {
	seen := m.known[p]
	if len(seen) == 0 {
		return nil
	}
	out := make([]KnownShell, 0, len(seen))
	for pos, t := range seen {
		if pos >= m.spent {
			out = append(out, KnownShell{Index: pos - m.spent, Type: t})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// Remaining estimates the live and blank shells left, given the actual queue
// length. The estimate is exact unless an Inverter was used.
func (m *ShellMemory) Remaining(shells int) (live, blank int) {
	live = m.loadout.Live - m.liveSpent
	live = max(min(live, shells), 0)
	return live, shells - live
}

// Uncertain reports whether an Inverter has made the counts unreliable.
func (m *ShellMemory) Uncertain() bool { return m.uncertain }

// Observe folds one outcome into the memory.
func (m *ShellMemory) Observe(out Outcome) {
	action := out.Action
	if action.Err() == nil {
		result, _ := action.Result()
		switch result.Kind {
		case ResultLearnedShell:
			m.Learn(out.Player, result.Learned.RelativeIndex, result.Learned.Type)
		case ResultShellEjected:
			m.Remove(result.Ejected)
		}
		if action.Effective() == Inverter {
			m.InvertFront()
		}
	}
	if out.Shot != nil {
		m.Remove(out.Shot.Shell)
	}
	if out.NewLoadout != nil {
		m.Reset(out.NewLoadout.Loadout)
	}
}
