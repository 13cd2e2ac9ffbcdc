package game

import (
	"fmt"
	"strings"
)

// DecisionKind is the type of move an agent chose.
type DecisionKind uint8

const (
	DecideShoot DecisionKind = iota + 1
	DecideItem
)

func (k DecisionKind) String() string {
	switch k {
	case DecideShoot:
		return "shoot"
	case DecideItem:
		return "item"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k DecisionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *DecisionKind) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "shoot":
		*k = DecideShoot
	case "item":
		*k = DecideItem
	default:
		return fmt.Errorf("invalid decision kind %q", text)
	}
	return nil
}

// Decision is one move chosen by an agent.
//
// Target is the shot target for DecideShoot. For items it is the Jammer's
// target, or the player Adrenaline steals from. Steal names the stolen item
// and StunTarget is who a stolen Jammer is used on.
type Decision struct {
	Kind       DecisionKind `json:"kind"`
	Target     PlayerNumber `json:"target,omitempty"`
	Item       Item         `json:"item,omitempty"`
	Steal      Item         `json:"steal,omitempty"`
	StunTarget PlayerNumber `json:"stun_target,omitempty"`
	Reasoning  string       `json:"reasoning,omitempty"`
}

// Agent is anything that picks moves for a seat: a bot, a human at a
// terminal, or a remote client. Agents only decide; the engine applies.
type Agent interface {
	Decide(view TurnView) Decision
}

// AgentFunc adapts a function to the Agent interface.
type AgentFunc func(view TurnView) Decision

// Decide implements Agent.
func (f AgentFunc) Decide(view TurnView) Decision { return f(view) }

// Shoot decides to fire at target.
func Shoot(target PlayerNumber, reasoning string) Decision {
	return Decision{Kind: DecideShoot, Target: target, Reasoning: reasoning}
}

// UseItem decides to use a unary item.
func UseItem(item Item, reasoning string) Decision {
	return Decision{Kind: DecideItem, Item: item, Reasoning: reasoning}
}

// Jam decides to use a Jammer on target.
func Jam(target PlayerNumber, reasoning string) Decision {
	return Decision{Kind: DecideItem, Item: Jammer, Target: target, Reasoning: reasoning}
}

// Steal decides to use Adrenaline to take item from victim.
func Steal(victim PlayerNumber, item Item, reasoning string) Decision {
	return Decision{Kind: DecideItem, Item: Adrenaline, Target: victim, Steal: item, Reasoning: reasoning}
}

// StealJammer decides to take victim's Jammer and use it on stunTarget.
func StealJammer(victim, stunTarget PlayerNumber, reasoning string) Decision {
	return Decision{Kind: DecideItem, Item: Adrenaline, Target: victim, Steal: Jammer, StunTarget: stunTarget, Reasoning: reasoning}
}

// Validate checks the decision is well formed. It does not check whether the
// move is legal in the current state; the Turn does that.
func (d Decision) Validate() error {
	switch d.Kind {
	case DecideShoot:
		if !d.Target.Valid() {
			return fmt.Errorf("%w: shoot needs a target", ErrInvalidDecision)
		}
	case DecideItem:
		if !d.Item.Valid() {
			return fmt.Errorf("%w: unknown item", ErrInvalidDecision)
		}
		switch d.Item {
		case Jammer:
			if !d.Target.Valid() {
				return fmt.Errorf("%w: jammer needs a target", ErrInvalidDecision)
			}
		case Adrenaline:
			if !d.Target.Valid() || !d.Steal.Valid() {
				return fmt.Errorf("%w: adrenaline needs a victim and an item", ErrInvalidDecision)
			}
			if d.Steal == Jammer && !d.StunTarget.Valid() {
				return fmt.Errorf("%w: stolen jammer needs a stun target", ErrInvalidDecision)
			}
		}
	default:
		return fmt.Errorf("%w: unknown kind", ErrInvalidDecision)
	}
	return nil
}

// Apply performs the decision on t, consuming it.
func (d Decision) Apply(t *Turn) Action {
	if err := d.Validate(); err != nil {
		return t.reject(err)
	}
	if d.Kind == DecideShoot {
		return t.Shoot(d.Target)
	}
	switch d.Item {
	case Jammer:
		return t.UseJammer(d.Target)
	case Adrenaline:
		if d.Steal == Jammer {
			return t.UseAdrenalineJammer(d.Target, d.StunTarget)
		}
		return t.UseAdrenaline(d.Target, d.Steal)
	default:
		return t.UseItem(d.Item)
	}
}

func (d Decision) String() string {
	if d.Kind == DecideShoot {
		return "shoot " + d.Target.String()
	}
	switch d.Item {
	case Jammer:
		return "jam " + d.Target.String()
	case Adrenaline:
		if d.Steal == Jammer {
			return fmt.Sprintf("steal jammer from %s and jam %s", d.Target, d.StunTarget)
		}
		return fmt.Sprintf("steal %s from %s", d.Steal, d.Target)
	default:
		return "use " + d.Item.String()
	}
}
