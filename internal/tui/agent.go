package tui

import (
	"errors"
	"fmt"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/lox/shellroulette/internal/game"
)

// TUIAgent handles human player interaction through a TUI. It is both the
// seat's game.Agent and a subscriber that writes events to the log pane.
type TUIAgent struct {
	model     *TUIModel
	program   *tea.Program
	send      func(tea.Msg)
	formatter *game.EventFormatter
	logger    *log.Logger
	onQuit    func()
	quitOnce  sync.Once
	done      chan struct{}
}

// NewTUIAgent creates a TUI for the human in seat. onQuit is called once if
// the human leaves; callers use it to cancel the match.
func NewTUIAgent(seat game.PlayerNumber, logger *log.Logger, onQuit func()) *TUIAgent {
	lipgloss.SetColorProfile(termenv.NewOutput(os.Stdout).EnvColorProfile())

	model := NewTUIModel(seat, logger)
	program := tea.NewProgram(model, tea.WithAltScreen())
	return newAgent(model, program, program.Send, seat, logger, onQuit)
}

func newAgent(model *TUIModel, program *tea.Program, send func(tea.Msg), seat game.PlayerNumber, logger *log.Logger, onQuit func()) *TUIAgent {
	if onQuit == nil {
		onQuit = func() {}
	}
	return &TUIAgent{
		model:     model,
		program:   program,
		send:      send,
		formatter: game.NewEventFormatter(game.FormattingOptions{Perspective: seat}),
		logger:    logger.WithPrefix("ui"),
		onQuit:    onQuit,
		done:      make(chan struct{}),
	}
}

// Start runs the TUI program in the background
func (ta *TUIAgent) Start() {
	go func() {
		defer close(ta.done)
		if _, err := ta.program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			ta.logger.Error("Error running TUI", "error", err)
		}
		ta.quit()
	}()
}

// Close stops the TUI and waits for the terminal to be restored.
func (ta *TUIAgent) Close() {
	if ta.program == nil {
		return
	}
	ta.program.Quit()
	<-ta.done
}

func (ta *TUIAgent) quit() {
	ta.quitOnce.Do(ta.onQuit)
}

// Log writes a line to the log pane.
func (ta *TUIAgent) Log(format string, args ...any) {
	ta.send(LogMsg{Text: fmt.Sprintf(format, args...)})
}

// OnEvent implements game.EventSubscriber.
func (ta *TUIAgent) OnEvent(event game.GameEvent) {
	if start, ok := event.(game.MatchStartEvent); ok {
		ta.send(SeatsMsg{Seats: start.Seats})
	}
	if text := ta.formatter.Format(event); text != "" {
		ta.send(LogMsg{Text: text})
	}
}

// Decide implements game.Agent by waiting for the human to type a command.
// Lines that do not parse are reported and the human is asked again.
func (ta *TUIAgent) Decide(view game.TurnView) game.Decision {
	ta.send(TurnMsg{View: view})
	for {
		result := ta.model.WaitForAction()
		if result.Quit {
			ta.logger.Info("User chose to quit")
			ta.quit()
			ta.send(WaitingMsg{})
			return game.Shoot(view.Player, "player quit")
		}

		decision, err := ParseCommand(result.Input, view)
		if err != nil {
			ta.send(LogMsg{Text: ErrorStyle.Render(err.Error())})
			continue
		}
		ta.logger.Debug("Received user action", "decision", decision)
		ta.send(WaitingMsg{})
		return decision
	}
}
