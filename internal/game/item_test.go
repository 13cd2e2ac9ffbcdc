package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseItem(t *testing.T) {
	t.Parallel()

	cases := map[string]Item{
		"remote":           Remote,
		"Magnifying Glass": MagnifyingGlass,
		"magnifying-glass": MagnifyingGlass,
		"glass":            MagnifyingGlass,
		"cigs":             Cigarettes,
		"SAW":              Handsaw,
		" beer ":           Beer,
		"adrenalin":        Adrenaline,
	}
	for name, want := range cases {
		got, err := ParseItem(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseItem("shotgun")
	assert.Error(t, err)
}

func TestItemClassification(t *testing.T) {
	t.Parallel()

	assert.Len(t, Items(), 9)
	for _, item := range Items() {
		assert.True(t, item.Valid())
		assert.Positive(t, item.PerPlayerLimit())
		assert.GreaterOrEqual(t, item.GlobalLimit(), item.PerPlayerLimit())

		name, err := item.MarshalText()
		require.NoError(t, err)
		var back Item
		require.NoError(t, back.UnmarshalText(name))
		assert.Equal(t, item, back)
	}

	assert.False(t, Jammer.IsUnary())
	assert.False(t, Adrenaline.IsUnary())
	assert.True(t, Beer.IsUnary())
	assert.False(t, Adrenaline.Stealable())
	assert.True(t, Jammer.Stealable())
	assert.False(t, Item(0).Valid())
	assert.Equal(t, 1, Jammer.GlobalLimit())
	assert.Equal(t, 2, Remote.GlobalLimit())
}

func TestShellInvert(t *testing.T) {
	t.Parallel()

	s := NewShell(Live)
	s.Invert()
	assert.Equal(t, Blank, s.Type())
	s.Invert()
	assert.Equal(t, Live, s.Type())

	var zero Shell
	zero.Invert()
	assert.Equal(t, ShellType(0), zero.Type(), "invalid shells stay invalid")
}

func TestStunTransitions(t *testing.T) {
	t.Parallel()

	p := newRoundPlayer(PlayerOne, 3)
	assert.True(t, p.passTurn())

	p.stun = Stunned
	assert.False(t, p.passTurn())
	assert.Equal(t, Recovering, p.StunState())
	assert.False(t, p.passTurn())
	assert.Equal(t, Unstunned, p.StunState())
	assert.True(t, p.passTurn())
}

func TestRoundPlayerHealth(t *testing.T) {
	t.Parallel()

	p := newRoundPlayer(PlayerOne, 3)
	assert.Equal(t, 0, p.heal(1), "capped at max")
	assert.False(t, p.damage(2))
	assert.Equal(t, 1, p.Health())
	assert.Equal(t, 2, p.heal(5), "only up to max")
	assert.True(t, p.damage(5))
	assert.Equal(t, 0, p.Health(), "floored at zero")
	assert.False(t, p.damage(1), "already eliminated")
}

func TestParsePlayerNumber(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"2", "P2", "p2", " 2 "} {
		p, err := ParsePlayerNumber(s)
		require.NoError(t, err, s)
		assert.Equal(t, PlayerTwo, p)
	}
	for _, s := range []string{"0", "5", "P", "two"} {
		_, err := ParsePlayerNumber(s)
		assert.Error(t, err, s)
	}
}
