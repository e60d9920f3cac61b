package task

import (
	"encoding/json"
	"fmt"
	"time"
)

// Registry owns all tasks. Alongside the primary collection it keeps a
// title index so find-or-create is a map lookup instead of a scan.
// Tasks are deduplicated by exact title match.
type Registry struct {
	order   []string // insertion order of task IDs
	byID    map[string]*Task
	byTitle map[string]string // title -> task ID
}

func NewRegistry() *Registry {
	return &Registry{
		byID:    make(map[string]*Task),
		byTitle: make(map[string]string),
	}
}

// FindOrCreate looks a task up by exact title and creates it if absent.
// The bool reports whether a new task was created. The plan is only
// applied to newly created tasks.
func (r *Registry) FindOrCreate(title, plan string) (*Task, bool) {
	if id, ok := r.byTitle[title]; ok {
		return r.byID[id], false
	}
	t := &Task{
		ID:     NewID(),
		Title:  title,
		Status: StatusPending,
		Plan:   plan,
	}
	r.order = append(r.order, t.ID)
	r.byID[t.ID] = t
	r.byTitle[title] = t.ID
	return t, true
}

// Get returns the task with the given ID, or nil.
func (r *Registry) Get(id string) *Task {
	return r.byID[id]
}

// FindByTitle returns the task with the exact title, or nil.
func (r *Registry) FindByTitle(title string) *Task {
	if id, ok := r.byTitle[title]; ok {
		return r.byID[id]
	}
	return nil
}

// All returns every task in insertion order.
func (r *Registry) All() []*Task {
	out := make([]*Task, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Active returns the not-yet-completed partition.
func (r *Registry) Active() []*Task {
	var out []*Task
	for _, id := range r.order {
		if t := r.byID[id]; !t.Completed {
			out = append(out, t)
		}
	}
	return out
}

// Archive returns the completed partition.
func (r *Registry) Archive() []*Task {
	var out []*Task
	for _, id := range r.order {
		if t := r.byID[id]; t.Completed {
			out = append(out, t)
		}
	}
	return out
}

// Len returns the number of tasks.
func (r *Registry) Len() int {
	return len(r.order)
}

// Delete removes the task. Returns false if the ID is unknown.
func (r *Registry) Delete(id string) bool {
	t, ok := r.byID[id]
	if !ok {
		return false
	}
	delete(r.byID, id)
	delete(r.byTitle, t.Title)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Rename changes a task title, keeping the index consistent. It fails
// when another task already carries the new title.
func (r *Registry) Rename(id, title string) error {
	t, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("rename: unknown task %s", id)
	}
	if other, exists := r.byTitle[title]; exists && other != id {
		return fmt.Errorf("rename: title %q already in use", title)
	}
	delete(r.byTitle, t.Title)
	t.Title = title
	r.byTitle[title] = id
	return nil
}

// SetStatus updates the lifecycle status without touching completion.
func (r *Registry) SetStatus(id string, s Status) {
	if t, ok := r.byID[id]; ok {
		t.Status = s
	}
}

// Complete marks the task done at the given time.
func (r *Registry) Complete(id string, now time.Time) {
	t, ok := r.byID[id]
	if !ok {
		return
	}
	t.Completed = true
	t.Status = StatusCompleted
	t.CompletedAt = &now
}

// Reopen clears a task's completion so it can be worked on again.
func (r *Registry) Reopen(id string) {
	t, ok := r.byID[id]
	if !ok {
		return
	}
	t.Completed = false
	t.CompletedAt = nil
}

// AccrueSecond adds one second of focused time to the task.
func (r *Registry) AccrueSecond(id string) {
	if t, ok := r.byID[id]; ok {
		t.TimeSpent++
	}
}
// AddPomodoro increments the task's completed work-interval count.
func (r *Registry) AddPomodoro(id string) {
	if t, ok := r.byID[id]; ok {
		t.Pomodoros++
	}
}

// SetPlan replaces the free-text plan.
func (r *Registry) SetPlan(id, plan string) {
	if t, ok := r.byID[id]; ok {
		t.Plan = plan
	}
}

// SetSubtasks replaces the ordered step list with fresh subtasks built
// from the given titles.
func (r *Registry) SetSubtasks(id string, titles []string) {
	t, ok := r.byID[id]
	if !ok {
		return
	}
	subs := make([]Subtask, 0, len(titles))
	for _, title := range titles {
		subs = append(subs, Subtask{ID: NewID(), Title: title})
	}
	t.Subtasks = subs
}

// ToggleSubtask flips the completion of one step.
func (r *Registry) ToggleSubtask(taskID, subID string) {
	t, ok := r.byID[taskID]
	if !ok {
		return
	}
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == subID {
			t.Subtasks[i].Completed = !t.Subtasks[i].Completed
			return
		}
	}
}

// Snapshot serializes all tasks as one JSON array.
func (r *Registry) Snapshot() (string, error) {
	tasks := r.All()
	if tasks == nil {
		tasks = []*Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return "", fmt.Errorf("marshal tasks: %w", err)
	}
	return string(data), nil
}

// Restore replaces the registry contents from a JSON snapshot and
// rebuilds the indexes. Any task persisted as in_progress is demoted to
// paused: the active-task linkage does not survive a restart.
func (r *Registry) Restore(data string) error {
	var tasks []*Task
	if err := json.Unmarshal([]byte(data), &tasks); err != nil {
		return fmt.Errorf("unmarshal tasks: %w", err)
	}
	r.order = r.order[:0]
	r.byID = make(map[string]*Task, len(tasks))
	r.byTitle = make(map[string]string, len(tasks))
	for _, t := range tasks {
		if t.ID == "" || t.Title == "" {
			continue
		}
		if _, dup := r.byTitle[t.Title]; dup {
			continue
		}
		if t.Status == StatusInProgress {
			t.Status = StatusPaused
		}
		if t.Status == "" {
			t.Status = StatusPending
		}
		r.order = append(r.order, t.ID)
		r.byID[t.ID] = t
		r.byTitle[t.Title] = t.ID
	}
	return nil
}
