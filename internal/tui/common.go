package tui

import (
	"fmt"
	"time"

	"grove/internal/ai"
	"grove/internal/config"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTimer viewState = iota
	viewTasks
	viewStats
	viewSettings
)

var viewNames = []string{"Timer", "Tasks", "Stats", "Settings"}

// --- Messages ---

type tickMsg time.Time

type statusMsg struct {
	text    string
	isError bool
}

// aiAnalysisMsg carries the result of analyzing a raw task description.
type aiAnalysisMsg struct {
	input    string
	analysis ai.Analysis
	err      error
}

// aiPlanMsg carries generated plan steps for an existing task.
type aiPlanMsg struct {
	taskID string
	steps  []string
	err    error
}

type aiSummaryMsg struct {
	text string
	err  error
}

type exportDoneMsg struct {
	path string
}

type settingsSavedMsg struct {
	cfg config.Config
}

// --- Helpers ---

func formatSeconds(secs int) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatMinutes(mins int) string {
	if mins < 60 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dh %02dm", mins/60, mins%60)
}
