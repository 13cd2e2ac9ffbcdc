package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecisionValidate(t *testing.T) {
	t.Parallel()

	valid := []Decision{
		Shoot(PlayerTwo, ""),
		UseItem(Beer, ""),
		Jam(PlayerTwo, ""),
		Steal(PlayerTwo, Beer, ""),
		StealJammer(PlayerTwo, PlayerThree, ""),
	}
	for _, d := range valid {
		assert.NoError(t, d.Validate(), d.String())
	}

	invalid := []Decision{
		{},
		{Kind: DecideShoot},
		{Kind: DecideItem},
		{Kind: DecideItem, Item: Jammer},
		{Kind: DecideItem, Item: Adrenaline, Target: PlayerTwo},
		{Kind: DecideItem, Item: Adrenaline, Target: PlayerTwo, Steal: Jammer},
	}
	for _, d := range invalid {
		assert.ErrorIs(t, d.Validate(), ErrInvalidDecision, "%+v", d)
	}
}

func TestDecisionApply(t *testing.T) {
	t.Parallel()

	t.Run("malformed decision is rejected and keeps the turn", func(t *testing.T) {
		t.Parallel()
		r := NewTestRound()
		out := r.TakeAction(Decision{Kind: DecideShoot}.Apply)
		assert.Equal(t, TurnOpen, out.Kind)
		assert.ErrorIs(t, out.Action.Err(), ErrInvalidDecision)
	})

	t.Run("dispatches to the matching turn method", func(t *testing.T) {
		t.Parallel()
		r := NewTestRound(
			WithPlayers(3),
			WithMaxHealth(4),
			WithShells(Live, Blank, Blank, Live),
			WithInventory(PlayerOne, Beer, Jammer, Adrenaline, Adrenaline),
			WithInventory(PlayerTwo, MagnifyingGlass, Jammer),
		)

		out := r.TakeAction(UseItem(Beer, "").Apply)
		require.NoError(t, out.Action.Err())
		assert.Equal(t, Beer, out.Action.Item())

		out = r.TakeAction(Jam(PlayerThree, "").Apply)
		require.NoError(t, out.Action.Err())
		assert.Equal(t, Jammer, out.Action.Item())

		out = r.TakeAction(Steal(PlayerTwo, MagnifyingGlass, "").Apply)
		require.NoError(t, out.Action.Err())
		assert.Equal(t, MagnifyingGlass, out.Action.Stolen())

		out = r.TakeAction(StealJammer(PlayerTwo, PlayerThree, "").Apply)
		assert.ErrorIs(t, out.Action.Err(), ErrDoubleStun)

		out = r.TakeAction(Shoot(PlayerTwo, "").Apply)
		require.NotNil(t, out.Shot)
		assert.Equal(t, Blank, out.Shot.Shell)
	})
}

func TestDecisionJSON(t *testing.T) {
	t.Parallel()

	d := StealJammer(PlayerTwo, PlayerThree, "lock them down")
	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"item","target":"2","item":"adrenaline","steal":"jammer","stun_target":"3","reasoning":"lock them down"}`, string(data))

	var back Decision
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, d, back)

	var shot Decision
	require.NoError(t, json.Unmarshal([]byte(`{"kind":"shoot","target":"P1"}`), &shot))
	assert.Equal(t, Decision{Kind: DecideShoot, Target: PlayerOne}, shot)
}
