package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/shellroulette/internal/randutil"
)

// shootNextOpponent fires at the first living seat after the shooter.
func shootNextOpponent(t *Turn) Action {
	self := t.Player().Number()
	for _, s := range t.Seats() {
		if s.Occupied && s.Player != self {
			return t.Shoot(s.Player)
		}
	}
	panic("no opponent")
}

func shootSelf(t *Turn) Action {
	return t.Shoot(t.Player().Number())
}

func playOut(t *testing.T, m *Match, decide func(*Turn) Action) []Outcome {
	t.Helper()
	var ended []Outcome
	for steps := 0; !m.Over(); steps++ {
		require.Less(t, steps, 10_000, "match did not terminate")
		out, err := m.TakeAction(decide)
		require.NoError(t, err)
		if out.Kind == RoundEnded {
			ended = append(ended, out)
			if !m.Over() {
				assert.Equal(t, out.FirstDead, m.Round().ActivePlayer(), "first eliminated player opens the next round")
			}
		}
	}
	return ended
}

func TestMatchTwoPlayersShootingEachOther(t *testing.T) {
	t.Parallel()

	for seed := int64(1); seed <= 20; seed++ {
		m := NewMatch(randutil.New(seed), 2)
		ended := playOut(t, m, shootNextOpponent)

		require.Len(t, ended, 3)
		for i, out := range ended {
			assert.NotZero(t, out.Winner)
			assert.NotEqual(t, out.Winner, out.FirstDead)
			assert.Equal(t, RoundNumber(i+1), m.Results()[i].Round)
		}

		wins := 0
		for _, s := range m.Standings() {
			wins += len(s.Wins)
		}
		assert.Equal(t, 3, wins)

		winner, ok := m.Winner()
		require.True(t, ok, "two players cannot tie over three rounds")
		assert.GreaterOrEqual(t, len(m.Players().Get(winner).Wins()), 2)

		_, err := m.TakeAction(shootNextOpponent)
		assert.ErrorIs(t, err, ErrMatchOver)
		assert.Nil(t, m.Round())
		require.NotNil(t, m.LastRound())
		assert.Equal(t, RoundThree, m.LastRound().Number())
	}
}

func TestMatchFourPlayersShootingThemselves(t *testing.T) {
	t.Parallel()

	for seed := int64(1); seed <= 10; seed++ {
		eliminations := map[RoundNumber]int{}
		m := NewMatch(randutil.New(seed), 4)
		for !m.Over() {
			round := m.Round().Number()
			out, err := m.TakeAction(shootSelf)
			require.NoError(t, err)
			if out.Shot.Eliminated {
				eliminations[round]++
			}
		}

		assert.Equal(t, map[RoundNumber]int{RoundOne: 3, RoundTwo: 3, RoundThree: 3}, eliminations)
		assert.Len(t, m.Results(), 3)
	}
}

func TestMatchRoundHook(t *testing.T) {
	t.Parallel()

	var summaries []RoundSummary
	m := NewMatch(randutil.New(99), 3, WithRoundHook(func(s RoundSummary) {
		summaries = append(summaries, s)
	}))
	playOut(t, m, shootNextOpponent)

	require.Len(t, summaries, 3)
	assert.Equal(t, m.Results(), summaries)
	for _, s := range summaries {
		assert.True(t, m.Players().Get(s.Winner).HasWon(s.Round))
		assert.Positive(t, s.Loadouts)
	}
}

func TestMatchWinner(t *testing.T) {
	t.Parallel()

	t.Run("running match has no winner", func(t *testing.T) {
		t.Parallel()
		m := NewMatch(randutil.New(1), 2)
		_, ok := m.Winner()
		assert.False(t, ok)
	})

	t.Run("majority wins", func(t *testing.T) {
		t.Parallel()
		m := NewMatch(randutil.New(1), 3)
		require.NoError(t, m.players.RegisterWin(PlayerTwo, RoundOne))
		require.NoError(t, m.players.RegisterWin(PlayerThree, RoundTwo))
		require.NoError(t, m.players.RegisterWin(PlayerTwo, RoundThree))
		m.round = nil

		winner, ok := m.Winner()
		require.True(t, ok)
		assert.Equal(t, PlayerTwo, winner)
	})

	t.Run("three-way split is a tie", func(t *testing.T) {
		t.Parallel()
		m := NewMatch(randutil.New(1), 4)
		require.NoError(t, m.players.RegisterWin(PlayerOne, RoundOne))
		require.NoError(t, m.players.RegisterWin(PlayerTwo, RoundTwo))
		require.NoError(t, m.players.RegisterWin(PlayerFour, RoundThree))
		m.round = nil

		_, ok := m.Winner()
		assert.False(t, ok)
	})
}

func TestGamePlayers(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { NewGamePlayers(1) })
	assert.Panics(t, func() { NewGamePlayers(5) })

	g := NewGamePlayers(3)
	assert.Equal(t, []PlayerNumber{PlayerOne, PlayerTwo, PlayerThree}, g.Numbers())
	assert.Nil(t, g.Get(PlayerFour))

	require.NoError(t, g.RegisterWin(PlayerTwo, RoundOne))
	assert.ErrorIs(t, g.RegisterWin(PlayerThree, RoundOne), ErrDuplicateWin)
	assert.ErrorIs(t, g.RegisterWin(PlayerFour, RoundTwo), ErrUnknownPlayer)
	assert.Equal(t, []RoundNumber{RoundOne}, g.Get(PlayerTwo).Wins())
}

func TestRoundNumberNext(t *testing.T) {
	t.Parallel()

	assert.Equal(t, RoundTwo, RoundOne.Next())
	assert.Equal(t, RoundThree, RoundTwo.Next())
	assert.Panics(t, func() { RoundThree.Next() })
}
