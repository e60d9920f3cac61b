package ai

import (
	"fmt"
	"strings"

	"grove/internal/session"
	"grove/internal/task"
)

// SummaryPrompt formats today's session and task data into the prompt
// text fed to Summarize.
func SummaryPrompt(sessions []session.Session, tasks []*task.Task, today string) string {
	totalSecs := 0
	for _, s := range sessions {
		if s.Date == today {
			totalSecs += s.Duration
		}
	}

	var completed, ongoing []string
	for _, t := range tasks {
		if t.Completed {
			completed = append(completed, t.Title)
		} else {
			ongoing = append(ongoing, t.Title)
		}
	}

	return fmt.Sprintf(
		"Date: %s\nTotal Focus Time Today: %.1f minutes.\nCompleted Tasks: %s.\nOngoing Tasks: %s.\n\nPlease analyze my productivity today.",
		today,
		float64(totalSecs)/60,
		orNone(completed),
		orNone(ongoing),
	)
}

func orNone(titles []string) string {
	if len(titles) == 0 {
		return "None"
	}
	return strings.Join(titles, ", ")
}
