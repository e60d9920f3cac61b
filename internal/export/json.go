package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"grove/internal/session"
	"grove/internal/task"
)

type jsonExport struct {
	ExportedAt string        `json:"exported_at"`
	Sessions   []jsonSession `json:"sessions"`
	Tasks      []jsonTask    `json:"tasks"`
}

type jsonSession struct {
	Date        string `json:"date"`
	DurationSec int    `json:"duration_seconds"`
	Duration    string `json:"duration"`
}

type jsonTask struct {
	Title        string `json:"title"`
	Status       string `json:"status"`
	Pomodoros    int    `json:"pomodoros"`
	TimeSpentSec int    `json:"time_spent_seconds"`
	TimeSpent    string `json:"time_spent"`
	CompletedAt  string `json:"completed_at,omitempty"`
}

func ToJSON(sessions []session.Session, tasks []*task.Task, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
	}

	for _, s := range sessions {
		export.Sessions = append(export.Sessions, jsonSession{
			Date:        s.Date,
			DurationSec: s.Duration,
			Duration:    formatDuration(s.Duration),
		})
	}

	for _, t := range tasks {
		completedStr := ""
		if t.CompletedAt != nil {
			completedStr = t.CompletedAt.Local().Format(time.RFC3339)
		}
		export.Tasks = append(export.Tasks, jsonTask{
			Title:        t.Title,
			Status:       string(t.Status),
			Pomodoros:    t.Pomodoros,
			TimeSpentSec: t.TimeSpent,
			TimeSpent:    formatDuration(t.TimeSpent),
			CompletedAt:  completedStr,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
