package tui

import (
	"io"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/shellroulette/internal/game"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func testView() game.TurnView {
	return game.TurnView{
		Round:     game.RoundTwo,
		Player:    game.PlayerOne,
		Health:    2,
		MaxHealth: 4,
		Items:     []game.Item{game.Beer, game.Handsaw},
		Seats: []game.SeatView{
			{Player: game.PlayerOne, Occupied: true, Health: 2, Items: []game.Item{game.Beer, game.Handsaw}},
			{Player: game.PlayerTwo, Occupied: true, Health: 4, Stun: game.Stunned},
			{Player: game.PlayerThree},
		},
		ShellsRemaining: 5,
		LiveRemaining:   3,
		BlankRemaining:  2,
		Known:           []game.KnownShell{{Index: 0, Type: game.Live}},
		Sawn:            true,
	}
}

// syncAgent builds an agent whose messages go straight to a test-mode model.
func syncAgent(t *testing.T, onQuit func()) (*TUIAgent, *TUIModel, func() []string) {
	t.Helper()
	var mu sync.Mutex
	model := NewTUIModelWithOptions(game.PlayerOne, testLogger(), true)
	send := func(msg tea.Msg) {
		mu.Lock()
		defer mu.Unlock()
		model.Update(msg)
	}
	captured := func() []string {
		mu.Lock()
		defer mu.Unlock()
		return model.GetCapturedLog()
	}
	return newAgent(model, nil, send, game.PlayerOne, testLogger(), onQuit), model, captured
}

func TestTUITestMode(t *testing.T) {
	t.Run("test mode captures log entries", func(t *testing.T) {
		tui := NewTUIModelWithOptions(game.PlayerOne, testLogger(), true)
		assert.True(t, tui.IsTestMode())
		assert.Empty(t, tui.GetCapturedLog())

		tui.Update(LogMsg{Text: "Round 1 begins"})
		tui.AddLogEntry("P1 shoots P2")
		assert.Equal(t, []string{"Round 1 begins", "P1 shoots P2"}, tui.GetCapturedLog())
	})

	t.Run("production mode does not capture logs", func(t *testing.T) {
		tui := NewTUIModel(game.PlayerOne, testLogger())
		assert.False(t, tui.IsTestMode())
		tui.AddLogEntry("Some log entry")
		assert.Nil(t, tui.GetCapturedLog())
		assert.Error(t, tui.InjectAction("shoot 2"))
	})
}

func TestEnterSubmitsOnlyOnHumansTurn(t *testing.T) {
	m := NewTUIModelWithOptions(game.PlayerOne, testLogger(), true)

	m.actionInput.SetValue("shoot 2")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []string{InfoStyle.Render("Not your turn")}, m.GetCapturedLog())
	assert.Empty(t, m.actionInput.Value())

	m.Update(TurnMsg{View: testView()})
	assert.True(t, m.IsHumansTurn())
	m.actionInput.SetValue("  shoot 2 ")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ActionResult{Input: "shoot 2"}, m.WaitForAction())

	m.Update(WaitingMsg{})
	assert.False(t, m.IsHumansTurn())
}

func TestCtrlCQuits(t *testing.T) {
	m := NewTUIModelWithOptions(game.PlayerOne, testLogger(), true)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.NotNil(t, cmd)
	assert.True(t, m.WaitForAction().Quit)
	assert.Empty(t, m.View())
}

func TestViewRendersTable(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	m := NewTUIModelWithOptions(game.PlayerOne, testLogger(), true)
	assert.Equal(t, "Loading...", m.View())

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m.Update(SeatsMsg{Seats: []game.SeatInfo{
		{Player: game.PlayerOne, Name: "you"},
		{Player: game.PlayerTwo, Name: "smart-bot"},
		{Player: game.PlayerThree, Name: "aggro-bot"},
	}})
	m.Update(TurnMsg{View: testView()})

	out := m.View()
	for _, want := range []string{
		"Shell Roulette", "Round 2", "smart-bot", "stunned", "aggro-bot out",
		"beer, handsaw", "3 live", "2 blank", "#1 live", "Sawn off",
		"Your turn, you", "next shell live 100%",
	} {
		assert.Contains(t, out, want)
	}
}

func TestAgentDecide(t *testing.T) {
	agent, model, captured := syncAgent(t, nil)

	decided := make(chan game.Decision, 1)
	go func() { decided <- agent.Decide(testView()) }()

	require.NoError(t, model.InjectAction("dance"))
	require.Eventually(t, func() bool { return len(captured()) == 1 }, time.Second, time.Millisecond)
	assert.Contains(t, captured()[0], "unknown command")

	require.NoError(t, model.InjectAction("use saw"))
	select {
	case d := <-decided:
		assert.Equal(t, game.UseItem(game.Handsaw, ""), d)
	case <-time.After(5 * time.Second):
		t.Fatal("no decision")
	}
}

func TestAgentQuit(t *testing.T) {
	quits := 0
	agent, model, _ := syncAgent(t, func() { quits++ })

	require.NoError(t, model.InjectAction("quit"))
	d := agent.Decide(testView())
	assert.Equal(t, "player quit", d.Reasoning)

	agent.quit()
	assert.Equal(t, 1, quits)
}

func TestAgentLogsEvents(t *testing.T) {
	agent, _, captured := syncAgent(t, nil)
	seats := []game.SeatInfo{{Player: game.PlayerOne, Name: "you"}, {Player: game.PlayerTwo, Name: "bot"}}

	agent.OnEvent(game.NewMatchStartEvent("m1", seats, time.Time{}))
	agent.OnEvent(game.NewRoundStartEvent(game.RoundOne, 3, game.PlayerOne, time.Time{}))

	lines := captured()
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "bot")
}
