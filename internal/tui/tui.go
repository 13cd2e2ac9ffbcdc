// Package tui is the terminal interface for playing shell roulette against
// bots.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/shellroulette/internal/game"
)

// TUIModel represents the Bubble Tea model for the game
type TUIModel struct {
	logger *log.Logger

	// UI components
	logViewport viewport.Model
	actionInput textinput.Model

	// State
	gameLog      []string
	actionResult chan ActionResult
	quitSignal   chan struct{}
	quitting     bool
	focusedPane  int // 0 = log, 1 = input

	// Display state, fed by messages from the game goroutine
	seat         game.PlayerNumber
	seats        []game.SeatInfo
	view         game.TurnView
	haveView     bool
	isHumansTurn bool

	// Dimensions
	width       int
	height      int
	initialized bool // Track if viewport has been properly sized

	// Test mode
	testMode    bool
	capturedLog []string
}

// ActionResult represents a line the user entered
type ActionResult struct {
	Input string
	Quit  bool
}

// QuitMsg is a custom message to signal quit
type QuitMsg struct{}

// LogMsg appends a line to the game log.
type LogMsg struct {
	Text string
}

// TurnMsg shows the human's view and asks them for a command.
type TurnMsg struct {
	View game.TurnView
}

// WaitingMsg marks the human's turn as over.
type WaitingMsg struct{}

// SeatsMsg names the players in the sidebar.
type SeatsMsg struct {
	Seats []game.SeatInfo
}

// NewTUIModel creates a new TUI model for the human in seat
func NewTUIModel(seat game.PlayerNumber, logger *log.Logger) *TUIModel {
	return NewTUIModelWithOptions(seat, logger, false)
}

// NewTUIModelWithOptions creates a new TUI model with test mode option
func NewTUIModelWithOptions(seat game.PlayerNumber, logger *log.Logger, testMode bool) *TUIModel {
	// Will be properly sized when WindowSizeMsg arrives
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "shoot 2, use beer, jam 3, steal 2 saw ..."
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 100
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	return &TUIModel{
		logger:       logger.WithPrefix("tui"),
		logViewport:  vp,
		actionInput:  ti,
		actionResult: make(chan ActionResult, 1),
		quitSignal:   make(chan struct{}, 1),
		focusedPane:  1, // Start with input focused
		seat:         seat,
		testMode:     testMode,
	}
}

// Init initializes the TUI model
func (m *TUIModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.listenForQuit())
}

// listenForQuit returns a command that listens for quit signals
func (m *TUIModel) listenForQuit() tea.Cmd {
	return func() tea.Msg {
		<-m.quitSignal
		return QuitMsg{}
	}
}

// Update handles messages in the TUI
func (m *TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case QuitMsg:
		m.quitting = true
		return m, tea.Sequence(tea.ClearScreen, tea.Quit)

	case LogMsg:
		m.AddLogEntry(msg.Text)
		return m, nil

	case TurnMsg:
		m.SetTurn(msg.View)
		return m, nil

	case WaitingMsg:
		m.isHumansTurn = false
		return m, nil

	case SeatsMsg:
		m.seats = msg.Seats
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			m.submit(ActionResult{Quit: true})
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.actionInput.Focus()
			} else {
				m.focusedPane = 0
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				m.processAction(m.actionInput.Value())
				m.actionInput.SetValue("")
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "pgup", "b":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageUp()
			}
		case "pgdown", "f":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageDown()
			}
		case "home", "g":
			if m.focusedPane == 0 {
				m.logViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == 0 {
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the TUI
func (m *TUIModel) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	actionPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.borderColor(1)).
		Width(max(m.width-2, 1)).
		Height(max(actionHeight-2, 1)).
		Render(actionContent)

	sidebarContent := m.renderSidebarPane()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 28)
	paneHeight := max(m.height-actionHeight-4, 1)
	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	m.logViewport.SetContent(m.renderLogPane())
	m.logViewport.Width = max(m.width-sidebarWidth-4, 1)
	m.logViewport.Height = paneHeight
	if !m.initialized && m.logViewport.Width > 1 && m.logViewport.Height > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}
	logPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.borderColor(0)).
		Width(m.logViewport.Width).
		Height(paneHeight).
		Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

func (m *TUIModel) borderColor(pane int) lipgloss.Color {
	if m.focusedPane == pane {
		return lipgloss.Color("#04B575")
	}
	return lipgloss.Color("#626262")
}

// renderLogPane renders the game log pane content
func (m *TUIModel) renderLogPane() string {
	return strings.Join(m.gameLog, "\n")
}

// renderSidebarPane shows the table: every seat's health, stun and items,
// then what the human knows about the shotgun.
func (m *TUIModel) renderSidebarPane() string {
	var content strings.Builder
	content.WriteString(HeaderStyle.Render(" Shell Roulette "))
	content.WriteString("\n\n")
	if !m.haveView {
		content.WriteString(InfoStyle.Render("Waiting for the first turn"))
		return content.String()
	}

	v := m.view
	content.WriteString(InfoStyle.Render(fmt.Sprintf("Round %s", v.Round)))
	content.WriteString("\n")
	for _, s := range v.Seats {
		line := fmt.Sprintf("%s %s", m.name(s.Player), healthBar(s.Health, v.MaxHealth))
		switch {
		case !s.Occupied:
			line = InfoStyle.Render(m.name(s.Player) + " out")
		case s.Stun != game.Unstunned:
			line += " " + StunStyle.Render(s.Stun.String())
		}
		if s.Player == m.seat {
			line = PlayerInfoStyle.Bold(true).Render("> ") + line
		} else {
			line = "  " + line
		}
		content.WriteString(line)
		content.WriteString("\n")
		if s.Occupied && len(s.Items) > 0 {
			content.WriteString("    " + ItemStyle.Render(formatItems(s.Items)))
			content.WriteString("\n")
		}
	}

	content.WriteString("\n")
	content.WriteString(fmt.Sprintf("Shells: %d (%s / %s)\n", v.ShellsRemaining,
		LiveShellStyle.Render(fmt.Sprintf("%d live", v.LiveRemaining)),
		BlankShellStyle.Render(fmt.Sprintf("%d blank", v.BlankRemaining))))
	if len(v.Known) > 0 {
		content.WriteString("Known: " + formatKnown(v.Known) + "\n")
	}
	if v.Sawn {
		content.WriteString(WarningStyle.Render("Sawn off: double damage") + "\n")
	}
	if v.TurnOrderInverted {
		content.WriteString(WarningStyle.Render("Turn order reversed") + "\n")
	}
	return content.String()
}

// renderActionPane renders the action input pane
func (m *TUIModel) renderActionPane() string {
	var content strings.Builder

	if m.isHumansTurn {
		content.WriteString(TurnInfoStyle.Render(fmt.Sprintf("Your turn, %s. Health %d/%d, next shell live %.0f%%",
			m.name(m.view.Player), m.view.Health, m.view.MaxHealth, m.view.LiveChance()*100)))
		content.WriteString("\n")
		content.WriteString(ActionsStyle.Render("Items: " + formatItems(m.view.Items)))
		content.WriteString("\n")
		m.actionInput.Placeholder = "shoot 2, use beer, jam 3, steal 2 saw ..."
	} else {
		content.WriteString(TurnInfoStyle.Render("Waiting..."))
		content.WriteString("\n")
		m.actionInput.Placeholder = "'quit' to exit"
	}

	content.WriteString(m.actionInput.View())
	content.WriteString("\n")

	help := "Tab to scroll log • Ctrl+C to quit"
	switch {
	case m.focusedPane == 0:
		help = "Log focused: ↑↓ scroll, PgUp/PgDn half page, Home/End, Tab to input"
	case m.isHumansTurn:
		help = "Tab to scroll log • Enter to submit • help for commands • Ctrl+C to quit"
	}
	content.WriteString(InfoStyle.Render(help))
	return content.String()
}

func (m *TUIModel) name(p game.PlayerNumber) string {
	for _, s := range m.seats {
		if s.Player == p && s.Name != "" {
			return s.Name
		}
	}
	return p.String()
}

func healthBar(health, maxHealth int) string {
	if maxHealth <= 0 {
		return fmt.Sprintf("%d", health)
	}
	return HealthStyle.Render(strings.Repeat("■", max(health, 0))) +
		LostHealthStyle.Render(strings.Repeat("□", max(maxHealth-health, 0)))
}

func formatItems(items []game.Item) string {
	if len(items) == 0 {
		return "none"
	}
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.String()
	}
	return strings.Join(names, ", ")
}

func formatKnown(known []game.KnownShell) string {
	parts := make([]string, len(known))
	for i, k := range known {
		style := BlankShellStyle
		if k.Type == game.Live {
			style = LiveShellStyle
		}
		parts[i] = style.Render(fmt.Sprintf("#%d %s", k.Index+1, k.Type))
	}
	return strings.Join(parts, " ")
}

// AddLogEntry adds an entry to the game log
func (m *TUIModel) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)

	if m.testMode {
		m.capturedLog = append(m.capturedLog, entry)
		return // Skip UI updates in test mode
	}

	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// SetTurn shows view and waits for the human to act on it.
func (m *TUIModel) SetTurn(view game.TurnView) {
	m.view = view
	m.haveView = true
	m.isHumansTurn = true
}

// IsHumansTurn reports whether the model is waiting for a command.
func (m *TUIModel) IsHumansTurn() bool {
	return m.isHumansTurn
}

// processAction handles a submitted line
func (m *TUIModel) processAction(input string) {
	input = strings.TrimSpace(input)
	if IsQuit(input) {
		m.submit(ActionResult{Quit: true})
		m.SendQuitSignal()
		return
	}
	if !m.isHumansTurn {
		if input != "" {
			m.AddLogEntry(InfoStyle.Render("Not your turn"))
		}
		return
	}
	m.submit(ActionResult{Input: input})
}

func (m *TUIModel) submit(result ActionResult) {
	select {
	case m.actionResult <- result:
	default:
		m.logger.Debug("Dropping input, previous one not consumed", "input", result.Input)
	}
}

// WaitForAction blocks until the user submits a line
func (m *TUIModel) WaitForAction() ActionResult {
	return <-m.actionResult
}

// SendQuitSignal signals the TUI to quit gracefully
func (m *TUIModel) SendQuitSignal() {
	select {
	case m.quitSignal <- struct{}{}:
	default:
		// Channel is full, quit signal already sent
	}
}

// GetCapturedLog returns the captured log entries (test mode only)
func (m *TUIModel) GetCapturedLog() []string {
	if !m.testMode {
		return nil
	}
	result := make([]string, len(m.capturedLog))
	copy(result, m.capturedLog)
	return result
}

// InjectAction programmatically submits a line (test mode only)
func (m *TUIModel) InjectAction(input string) error {
	if !m.testMode {
		return fmt.Errorf("action injection only available in test mode")
	}
	select {
	case m.actionResult <- ActionResult{Input: input, Quit: IsQuit(input)}:
		return nil
	default:
		return fmt.Errorf("action channel full")
	}
}

// IsTestMode returns whether the TUI is in test mode
func (m *TUIModel) IsTestMode() bool {
	return m.testMode
}
