package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/shellroulette/internal/game"
)

func TestParseCommand(t *testing.T) {
	t.Parallel()
	view := game.TurnView{Player: game.PlayerTwo}

	tests := []struct {
		input string
		want  game.Decision
	}{
		{"shoot 3", game.Shoot(game.PlayerThree, "")},
		{"SHOOT P1", game.Shoot(game.PlayerOne, "")},
		{"s me", game.Shoot(game.PlayerTwo, "")},
		{"use beer", game.UseItem(game.Beer, "")},
		{"use magnifying glass", game.UseItem(game.MagnifyingGlass, "")},
		{"u saw", game.UseItem(game.Handsaw, "")},
		{"jam 4", game.Jam(game.PlayerFour, "")},
		{"steal 1 cigs", game.Steal(game.PlayerOne, game.Cigarettes, "")},
		{"steal 3 jammer 1", game.StealJammer(game.PlayerThree, game.PlayerOne, "")},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCommand(tt.input, view)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, got.Validate())
		})
	}
}

func TestParseCommandErrors(t *testing.T) {
	t.Parallel()
	view := game.TurnView{Player: game.PlayerOne}

	tests := []struct {
		input string
		want  error
	}{
		{"", ErrHelp},
		{"help", ErrHelp},
		{"dance", ErrUnknownCommand},
		{"shoot", ErrBadArguments},
		{"shoot 5", ErrBadArguments},
		{"shoot 2 3", ErrBadArguments},
		{"use", ErrBadArguments},
		{"use banana", ErrBadArguments},
		{"use jammer", ErrBadArguments},
		{"use adrenaline", ErrBadArguments},
		{"jam", ErrBadArguments},
		{"steal 2", ErrBadArguments},
		{"steal 2 jammer", ErrBadArguments},
		{"steal 2 beer 3", ErrBadArguments},
		{"steal x beer", ErrBadArguments},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParseCommand(tt.input, view)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestIsQuit(t *testing.T) {
	t.Parallel()
	for _, input := range []string{"quit", "Q", " exit "} {
		assert.True(t, IsQuit(input), input)
	}
	for _, input := range []string{"", "shoot 1", "quitter"} {
		assert.False(t, IsQuit(input), input)
	}
}
