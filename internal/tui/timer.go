package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"grove/internal/engine"
)

// timerModel is the main countdown view. All timer state lives in the
// engine; this model only translates keys and renders.
type timerModel struct {
	eng    *engine.Engine
	width  int
	height int
}

func newTimerModel(eng *engine.Engine) timerModel {
	return timerModel{eng: eng}
}

func (m *timerModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m timerModel) update(msg tea.Msg) (timerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Toggle):
			m.eng.Toggle()
			return m, nil
		case key.Matches(msg, keys.Reset):
			m.eng.Reset()
			return m, func() tea.Msg { return statusMsg{text: "Timer reset"} }
		case key.Matches(msg, keys.Finish):
			if m.eng.Mode() == engine.ModeWork && m.eng.ActiveTask() != nil {
				title := m.eng.ActiveTask().Title
				m.eng.FinishEarly()
				return m, func() tea.Msg {
					return statusMsg{text: "Finished early: " + title}
				}
			}
			m.eng.FinishEarly()
			return m, nil
		}
	}
	return m, nil
}

func (m timerModel) view() string {
	w := m.width - 4

	var modeLabel string
	switch m.eng.Mode() {
	case engine.ModeWork:
		modeLabel = accentStyle.Bold(true).Render("FOCUS")
	case engine.ModeShortBreak:
		modeLabel = successStyle.Bold(true).Render("SHORT BREAK")
	}

	clock := engine.FormatClock(m.eng.TimeLeft())
	var clockDisplay string
	switch {
	case m.eng.Active() && m.eng.Mode() == engine.ModeWork:
		clockDisplay = timerRunningStyle.Width(w - 6).Render(clock)
	case m.eng.Active():
		clockDisplay = timerBreakStyle.Width(w - 6).Render(clock)
	default:
		clockDisplay = timerStyle.Width(w - 6).Render(clock)
	}

	var state string
	if m.eng.Active() {
		state = successStyle.Render("●  RUNNING")
	} else {
		state = mutedStyle.Render("■  PAUSED")
	}

	taskLine := mutedStyle.Render("No active task. Pick one in Tasks.")
	if t := m.eng.ActiveTask(); t != nil {
		taskLine = highlightStyle.Render(t.Title) +
			mutedStyle.Render("  "+formatSeconds(t.TimeSpent))
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		modeLabel,
		"",
		clockDisplay,
		state,
		"",
		m.renderRounds(),
		"",
		taskLine,
		"",
		mutedStyle.Render("space: start/pause  r: reset  f: finish early"),
	)

	if m.eng.Active() {
		return activePanelStyle.Width(w).Render(content)
	}
	return panelStyle.Width(w).Render(content)
}

// renderRounds shows the position within the current long-break cycle.
func (m timerModel) renderRounds() string {
	interval := m.eng.Config().LongBreakInterval
	done := m.eng.Rounds() % interval

	var parts []string
	for i := 0; i < interval; i++ {
		if i < done {
			parts = append(parts, successStyle.Render("●"))
		} else {
			parts = append(parts, mutedStyle.Render("○"))
		}
	}
	return strings.Join(parts, " ")
}
