package game

// ActionKind says whether an action left the turn open.
type ActionKind uint8

const (
	// ActionContinued means the player may act again in the same turn.
	ActionContinued ActionKind = iota + 1
	// ActionTerminalItem ends the turn without a shot. Only a Beer that
	// racks the last shell does this.
	ActionTerminalItem
	// ActionShot fires the shotgun and ends the decision call.
	ActionShot
)

func (k ActionKind) String() string {
	switch k {
	case ActionContinued:
		return "continued"
	case ActionTerminalItem:
		return "terminal_item"
	case ActionShot:
		return "shot"
	default:
		return "none"
	}
}

// ItemResultKind classifies what an item use revealed or changed.
type ItemResultKind uint8

const (
	ResultDefault ItemResultKind = iota
	ResultLearnedShell
	ResultShellEjected
	ResultStunnedPlayer
)

func (k ItemResultKind) String() string {
	switch k {
	case ResultLearnedShell:
		return "learned_shell"
	case ResultShellEjected:
		return "shell_ejected"
	case ResultStunnedPlayer:
		return "stunned_player"
	default:
		return "default"
	}
}

// LearnedShell is a private reveal. RelativeIndex 0 is the next shell to fire.
type LearnedShell struct {
	RelativeIndex int       `json:"relative_index"`
	Type          ShellType `json:"type"`
}

// ItemResult is the effect of a successful item use.
type ItemResult struct {
	Kind    ItemResultKind `json:"kind"`
	Learned LearnedShell   `json:"learned,omitzero"`
	Ejected ShellType      `json:"ejected,omitempty"`
	// Empty is set when a Beer racked the last shell of the loadout.
	Empty   bool         `json:"empty,omitempty"`
	Stunned PlayerNumber `json:"stunned,omitempty"`
	Healed  int          `json:"healed,omitempty"`
}

// Action is the result of one call on a Turn.
type Action struct {
	kind   ActionKind
	player PlayerNumber
	item   Item
	stolen Item
	victim PlayerNumber
	result ItemResult
	err    error
	target PlayerNumber
	next   *Turn
	epoch  uint64
	seq    uint64
	round  *Round
}

// Kind reports how the action affects the turn.
func (a Action) Kind() ActionKind { return a.kind }

// Player is the acting player.
func (a Action) Player() PlayerNumber { return a.player }

// Item is the item that was used, or zero for a shot. A steal reports Adrenaline.
func (a Action) Item() Item { return a.item }

// Stolen is the item taken with Adrenaline, or zero.
func (a Action) Stolen() Item { return a.stolen }

// Victim is the player Adrenaline stole from, or zero.
func (a Action) Victim() PlayerNumber { return a.victim }

// Effective is the item whose effect was resolved: the stolen item for a
// steal, otherwise the used item.
func (a Action) Effective() Item {
	if a.stolen != 0 {
		return a.stolen
	}
	return a.item
}

// Target is the shot target for ActionShot.
func (a Action) Target() PlayerNumber { return a.target }

// Result returns the item effect, or the reason the action was rejected.
func (a Action) Result() (ItemResult, error) { return a.result, a.err }

// Err returns the rejection reason, if any.
func (a Action) Err() error { return a.err }

// EndsTurn reports whether the action is terminal.
func (a Action) EndsTurn() bool {
	return a.kind == ActionTerminalItem || a.kind == ActionShot
}

// Next hands out a fresh Turn for another action within the same decision
// call. It panics if the action ended the turn.
func (a Action) Next() *Turn {
	if a.kind != ActionContinued || a.next == nil {
		panic("game: Next called on an action that ended the turn")
	}
	return a.next
}

// ShotResult is the resolution of one trigger pull.
type ShotResult struct {
	Shooter     PlayerNumber `json:"shooter"`
	Target      PlayerNumber `json:"target"`
	Shell       ShellType    `json:"shell"`
	Sawn        bool         `json:"sawn"`
	Damage      int          `json:"damage"`
	HealthAfter int          `json:"health_after"`
	Eliminated  bool         `json:"eliminated"`
}

// SelfBlank reports whether the shooter fired a blank at themselves, which
// keeps their turn going.
func (s ShotResult) SelfBlank() bool {
	return s.Shooter == s.Target && s.Shell == Blank
}
