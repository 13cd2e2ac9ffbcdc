package game

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventFormatter_FormatShot(t *testing.T) {
	tests := []struct {
		name     string
		opts     FormattingOptions
		event    ShotEvent
		expected string
	}{
		{
			name: "live at opponent",
			event: ShotEvent{
				Shot:      ShotResult{Shooter: PlayerOne, Target: PlayerTwo, Shell: Live, Damage: 1, HealthAfter: 2},
				timestamp: time.Now(),
			},
			expected: "P1: shoots P2: LIVE, 1 damage (health 2)",
		},
		{
			name: "sawn blank at self",
			event: ShotEvent{
				Shot: ShotResult{Shooter: PlayerTwo, Target: PlayerTwo, Shell: Blank, Sawn: true},
			},
			expected: "P2: shoots self with a sawn barrel: blank",
		},
		{
			name: "forced shot with reasoning and names",
			opts: FormattingOptions{ShowReasonings: true, Seats: []SeatInfo{{Player: PlayerOne, Name: "alice"}}},
			event: ShotEvent{
				Shot:      ShotResult{Shooter: PlayerOne, Target: PlayerTwo, Shell: Blank},
				Reasoning: "fallback",
				Fallback:  true,
			},
			expected: "alice (P1): shoots P2: blank [forced] (fallback)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter := NewEventFormatter(tt.opts)
			assert.Equal(t, tt.expected, formatter.FormatShot(tt.event))
		})
	}
}

func TestEventFormatter_FormatAction(t *testing.T) {
	tests := []struct {
		name     string
		opts     FormattingOptions
		event    ActionEvent
		expected string
	}{
		{
			name: "reveal hidden from other players",
			opts: FormattingOptions{Perspective: PlayerTwo},
			event: ActionEvent{
				Player: PlayerOne,
				Item:   MagnifyingGlass,
				Result: ItemResult{Kind: ResultLearnedShell, Learned: LearnedShell{Type: Live}},
			},
			expected: "P1: uses magnifying_glass",
		},
		{
			name: "own reveal shown",
			opts: FormattingOptions{Perspective: PlayerOne},
			event: ActionEvent{
				Player: PlayerOne,
				Item:   Phone,
				Result: ItemResult{Kind: ResultLearnedShell, Learned: LearnedShell{RelativeIndex: 3, Type: Blank}},
			},
			expected: "P1: uses phone, shell 4 is blank",
		},
		{
			name: "beer racks the last shell",
			event: ActionEvent{
				Player: PlayerTwo,
				Item:   Beer,
				Result: ItemResult{Kind: ResultShellEjected, Ejected: Live, Empty: true},
			},
			expected: "P2: uses beer, racks a live (gun empty)",
		},
		{
			name: "stolen jammer",
			event: ActionEvent{
				Player: PlayerOne,
				Item:   Adrenaline,
				Stolen: Jammer,
				Victim: PlayerThree,
				Result: ItemResult{Kind: ResultStunnedPlayer, Stunned: PlayerTwo},
			},
			expected: "P1: takes jammer from P3, P2 is stunned",
		},
		{
			name: "cigarettes",
			event: ActionEvent{
				Player: PlayerOne,
				Item:   Cigarettes,
				Result: ItemResult{Healed: 1},
			},
			expected: "P1: uses cigarettes, heals 1",
		},
		{
			name: "rejected",
			event: ActionEvent{
				Player:   PlayerOne,
				Decision: UseItem(Handsaw, ""),
				Item:     Handsaw,
				Err:      fmt.Errorf("wrapped: %w", ErrDoubleSaw),
			},
			expected: "P1: use handsaw rejected (barrel already sawn)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter := NewEventFormatter(tt.opts)
			assert.Equal(t, tt.expected, formatter.FormatAction(tt.event))
		})
	}
}

func TestEventFormatter_Format(t *testing.T) {
	formatter := NewEventFormatter(FormattingOptions{})
	now := time.Now()

	start := formatter.Format(NewMatchStartEvent("abc", []SeatInfo{{PlayerOne, "alice"}, {PlayerTwo, "bob"}}, now))
	assert.Equal(t, "Match abc\n2 players: P1 alice, P2 bob", start)

	assert.Equal(t, "bob (P2) is out", formatter.Format(NewEliminationEvent(RoundOne, PlayerTwo, PlayerOne, now)))
	assert.Equal(t, "\n*** ROUND 2 *** max health 4, alice (P1) starts",
		formatter.Format(NewRoundStartEvent(RoundTwo, 4, PlayerOne, now)))

	loadout := formatter.Format(NewLoadoutEvent(RoundOne, LoadoutReport{
		Loadout: Loadout{Live: 2, Blank: 1, NewItems: 2},
		Grants: []ItemGrant{
			{PlayerOne, Beer}, {PlayerTwo, Phone}, {PlayerOne, Handsaw}, {PlayerTwo, Beer},
		},
	}, now))
	assert.Equal(t, "Loading 2 live, 1 blank\n  alice (P1) receives beer, handsaw\n  bob (P2) receives phone, beer", loadout)

	end := formatter.Format(NewMatchEndEvent("abc", []Standing{
		{Player: PlayerOne, Wins: []RoundNumber{RoundOne, RoundThree}},
		{Player: PlayerTwo, Wins: []RoundNumber{RoundTwo}},
	}, PlayerOne, now))
	assert.Equal(t, "\n=== Match Complete ===\nalice (P1): 2 round(s)\nbob (P2): 1 round(s)\nWinner: alice (P1)", end)
}
