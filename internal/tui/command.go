package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lox/shellroulette/internal/game"
)

var (
	// ErrUnknownCommand is returned for input that names no command.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrBadArguments is returned when a command has the wrong arguments.
	ErrBadArguments = errors.New("bad arguments")
	// ErrHelp is returned for "help"; its text is the usage summary.
	ErrHelp = errors.New(usage)
)

const usage = "commands: shoot <n|me>, use <item>, jam <n>, steal <n> <item> [<stun n>], quit"

// IsQuit reports whether input asks to leave the game.
func IsQuit(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "quit", "q", "exit":
		return true
	}
	return false
}

// ParseCommand turns a line typed by the acting player into a decision.
// Player numbers may be written "2", "P2", or "me" for the acting player.
func ParseCommand(input string, view game.TurnView) (game.Decision, error) {
	fields := strings.Fields(strings.ToLower(input))
	if len(fields) == 0 {
		return game.Decision{}, ErrHelp
	}
	verb, args := fields[0], fields[1:]

	switch verb {
	case "shoot", "s", "fire":
		if len(args) != 1 {
			return game.Decision{}, fmt.Errorf("%w: shoot <n|me>", ErrBadArguments)
		}
		target, err := parseTarget(args[0], view)
		if err != nil {
			return game.Decision{}, err
		}
		return game.Shoot(target, ""), nil

	case "use", "u":
		if len(args) == 0 {
			return game.Decision{}, fmt.Errorf("%w: use <item>", ErrBadArguments)
		}
		item, err := game.ParseItem(strings.Join(args, "_"))
		if err != nil {
			return game.Decision{}, fmt.Errorf("%w: %w", ErrBadArguments, err)
		}
		switch item {
		case game.Jammer:
			return game.Decision{}, fmt.Errorf("%w: use jam <n> for the jammer", ErrBadArguments)
		case game.Adrenaline:
			return game.Decision{}, fmt.Errorf("%w: use steal <n> <item> for adrenaline", ErrBadArguments)
		}
		return game.UseItem(item, ""), nil

	case "jam", "j":
		if len(args) != 1 {
			return game.Decision{}, fmt.Errorf("%w: jam <n>", ErrBadArguments)
		}
		target, err := parseTarget(args[0], view)
		if err != nil {
			return game.Decision{}, err
		}
		return game.Jam(target, ""), nil

	case "steal":
		if len(args) < 2 || len(args) > 3 {
			return game.Decision{}, fmt.Errorf("%w: steal <n> <item> [<stun n>]", ErrBadArguments)
		}
		victim, err := parseTarget(args[0], view)
		if err != nil {
			return game.Decision{}, err
		}
		item, err := game.ParseItem(args[1])
		if err != nil {
			return game.Decision{}, fmt.Errorf("%w: %w", ErrBadArguments, err)
		}
		if item != game.Jammer {
			if len(args) == 3 {
				return game.Decision{}, fmt.Errorf("%w: only a stolen jammer takes a stun target", ErrBadArguments)
			}
			return game.Steal(victim, item, ""), nil
		}
		if len(args) != 3 {
			return game.Decision{}, fmt.Errorf("%w: a stolen jammer needs a stun target", ErrBadArguments)
		}
		stun, err := parseTarget(args[2], view)
		if err != nil {
			return game.Decision{}, err
		}
		return game.StealJammer(victim, stun, ""), nil

	case "help", "h", "?":
		return game.Decision{}, ErrHelp
	}
	return game.Decision{}, fmt.Errorf("%w %q; %s", ErrUnknownCommand, verb, usage)
}

func parseTarget(s string, view game.TurnView) (game.PlayerNumber, error) {
	switch s {
	case "me", "self", "myself":
		return view.Player, nil
	}
	p, err := game.ParsePlayerNumber(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBadArguments, err)
	}
	return p, nil
}
