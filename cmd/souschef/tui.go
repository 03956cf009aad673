//go:build cgo

package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	session "github.com/souschef/voice-core/core"
	"github.com/souschef/voice-core/core/events"
)

type (
	stateMsg           session.State
	userTranscriptMsg  string
	modelTranscriptMsg string
	turnMsg            events.Turn
	timersMsg          []session.Timer
	stepMsg            int
	connectionLostMsg  string
	noticeMsg          string
	connectFailedMsg   struct{ err error }
)

var (
	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	stateStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	currentStepStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	stepStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	userStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	modelStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	timerStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	noticeStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	helpStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

type model struct {
	session *session.Session
	spinner spinner.Model

	width  int
	state  session.State
	step   int
	timers []session.Timer

	userLine  string
	modelLine string
	history   []events.Turn

	notice string
	err    error
}

func newModel(s *session.Session) model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return model{
		session: s,
		spinner: sp,
		width:   80,
		state:   session.StateConnecting,
	}
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.session.Close()
			return m, tea.Quit
		case "left", "p":
			m.session.SelectStep(m.step - 1)
		case "right", "n":
			m.session.SelectStep(m.step + 1)
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case stateMsg:
		m.state = session.State(msg)
	case userTranscriptMsg:
		m.userLine = string(msg)
	case modelTranscriptMsg:
		m.modelLine = string(msg)
	case turnMsg:
		if msg.UserText != "" || msg.ModelText != "" {
			m.history = append(m.history, events.Turn(msg))
		}
	case timersMsg:
		m.timers = msg
	case stepMsg:
		m.step = int(msg)
	case connectionLostMsg:
		m.notice = string(msg)
	case noticeMsg:
		m.notice = string(msg)
	case connectFailedMsg:
		m.err = msg.err
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	recipe := m.session.Recipe()
	b.WriteString(titleStyle.Render(recipe.Title))
	b.WriteString("  ")
	b.WriteString(m.stateLine())
	b.WriteString("\n\n")

	for i, instruction := range recipe.Instructions {
		line := fmt.Sprintf("%d. %s", i+1, instruction)
		if i == m.step {
			b.WriteString(currentStepStyle.Render("> " + line))
		} else {
			b.WriteString(stepStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(m.timers) > 0 {
		parts := make([]string, 0, len(m.timers))
		for _, timer := range m.timers {
			parts = append(parts, fmt.Sprintf("%s %s", timer.Label, formatSeconds(timer.RemainingSeconds)))
		}
		b.WriteString(timerStyle.Render("Timers: " + strings.Join(parts, "  |  ")))
		b.WriteString("\n\n")
	}

	for _, turn := range tail(m.history, 3) {
		if turn.UserText != "" {
			b.WriteString(userStyle.Render(m.wrap("You: " + turn.UserText)))
			b.WriteString("\n")
		}
		if turn.ModelText != "" {
			b.WriteString(modelStyle.Render(m.wrap("Chef: " + turn.ModelText)))
			b.WriteString("\n")
		}
	}
	if m.userLine != "" {
		b.WriteString(userStyle.Render(m.wrap("You: " + m.userLine)))
		b.WriteString("\n")
	}
	if m.modelLine != "" {
		b.WriteString(modelStyle.Render(m.wrap("Chef: " + m.modelLine)))
		b.WriteString("\n")
	}

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(noticeStyle.Render(m.wrap(m.notice)))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(noticeStyle.Render(m.wrap("Could not connect: " + m.err.Error())))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("←/→ change step · q quit"))
	return b.String()
}

func (m model) stateLine() string {
	switch m.state {
	case session.StateConnecting:
		return stateStyle.Render(m.spinner.View() + "connecting")
	case session.StateListening:
		return stateStyle.Render("listening")
	case session.StateProcessing:
		return stateStyle.Render(m.spinner.View() + "thinking")
	case session.StateSpeaking:
		return stateStyle.Render("speaking")
	default:
		return stateStyle.Render(string(m.state))
	}
}

func (m model) wrap(text string) string {
	width := m.width - 2
	if width < 20 {
		width = 20
	}
	return wordwrap.String(text, width)
}

func formatSeconds(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func tail(turns []events.Turn, n int) []events.Turn {
	if len(turns) <= n {
		return turns
	}
	return turns[len(turns)-n:]
}
