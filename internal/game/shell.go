package game

import "fmt"

// ShellType is what a shell does when fired.
type ShellType uint8

const (
	Live ShellType = iota + 1
	Blank
)

func (t ShellType) String() string {
	switch t {
	case Live:
		return "live"
	case Blank:
		return "blank"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t ShellType) MarshalText() ([]byte, error) {
	if t != Live && t != Blank {
		return nil, fmt.Errorf("invalid shell type %d", uint8(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ShellType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "live":
		*t = Live
	case "blank":
		*t = Blank
	default:
		return fmt.Errorf("invalid shell type %q", text)
	}
	return nil
}

// Shell is a single loaded shell. Its type only changes through Invert.
type Shell struct {
	kind ShellType
}

// NewShell creates a shell of the given type.
func NewShell(t ShellType) Shell {
	return Shell{kind: t}
}

// Type returns the shell's current type.
func (s Shell) Type() ShellType {
	return s.kind
}

// Invert flips a live shell to blank and a blank shell to live. A shell
// with no valid type is left as it is.
func (s *Shell) Invert() {
	switch s.kind {
	case Live:
		s.kind = Blank
	case Blank:
		s.kind = Live
	}
}
