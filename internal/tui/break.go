package tui

import (
	"github.com/charmbracelet/lipgloss"

	"grove/internal/engine"
)

// breakModel is the fullscreen long-break view. It runs its own
// countdown off the shared tick and closes itself at zero; the main
// timer stays parked underneath.
type breakModel struct {
	remaining int
	total     int
}

func newBreakModel(seconds int) breakModel {
	return breakModel{remaining: seconds, total: seconds}
}

// tick advances the break countdown and reports whether it finished.
func (m *breakModel) tick() bool {
	if m.remaining > 0 {
		m.remaining--
	}
	return m.remaining == 0
}

func (m breakModel) view(width, height int) string {
	clock := timerBreakStyle.Render(engine.FormatClock(m.remaining))

	content := lipgloss.JoinVertical(lipgloss.Center,
		highlightStyle.Bold(true).Render("LONG BREAK"),
		"",
		mutedStyle.Render("Step away from the keyboard."),
		"",
		clock,
		"",
		mutedStyle.Render("space/esc: skip break"),
	)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
