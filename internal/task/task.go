// Package task holds the work-item registry: task CRUD, lifecycle
// status, and the title index behind find-or-create.
package task

import (
	"time"

	"github.com/google/uuid"
)

// Status is the task lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusPaused     Status = "paused"
	StatusCompleted  Status = "completed"
)

// Subtask is one ordered step of a task plan.
type Subtask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Task is a single work item. TimeSpent accumulates one second per
// work-mode tick while the task is active; Pomodoros counts completed
// work intervals.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	TimeSpent   int        `json:"timeSpent"`
	Completed   bool       `json:"completed"`
	Status      Status     `json:"status"`
	Pomodoros   int        `json:"pomodoros"`
	Plan        string     `json:"plan,omitempty"`
	Subtasks    []Subtask  `json:"subtasks,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// NewID returns a fresh task or subtask identifier.
func NewID() string {
	return uuid.NewString()
}
