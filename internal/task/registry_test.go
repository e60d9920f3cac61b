package task

import (
	"testing"
	"time"
)

func TestFindOrCreateNew(t *testing.T) {
	r := NewRegistry()
	tk, created := r.FindOrCreate("Write report", "")
	if !created {
		t.Fatal("expected a new task")
	}
	if tk.ID == "" {
		t.Fatal("expected non-empty ID")
	}
	if tk.Status != StatusPending {
		t.Fatalf("expected pending, got %q", tk.Status)
	}
	if tk.TimeSpent != 0 || tk.Pomodoros != 0 || tk.Completed {
		t.Fatalf("fresh task has stale counters: %+v", tk)
	}
	if r.Len() != 1 {
		t.Fatalf("expected exactly one task, got %d", r.Len())
	}
}

func TestFindOrCreateDeduplicatesByTitle(t *testing.T) {
	r := NewRegistry()
	a, _ := r.FindOrCreate("Write report", "")
	b, created := r.FindOrCreate("Write report", "ignored plan")
	if created {
		t.Fatal("expected lookup, not creation")
	}
	if a.ID != b.ID {
		t.Fatal("expected the same task back")
	}
	if b.Plan != "" {
		t.Fatalf("plan should not be applied to existing tasks, got %q", b.Plan)
	}
	if r.Len() != 1 {
		t.Fatalf("expected one task, got %d", r.Len())
	}
}

func TestFindByTitleUsesIndex(t *testing.T) {
	r := NewRegistry()
	tk, _ := r.FindOrCreate("Deep work", "")
	if got := r.FindByTitle("Deep work"); got == nil || got.ID != tk.ID {
		t.Fatal("index lookup failed")
	}
	if r.FindByTitle("deep work") != nil {
		t.Fatal("title match must be exact")
	}
}

func TestDeleteClearsIndex(t *testing.T) {
	r := NewRegistry()
	tk, _ := r.FindOrCreate("Gone soon", "")
	if !r.Delete(tk.ID) {
		t.Fatal("delete failed")
	}
	if r.Get(tk.ID) != nil || r.FindByTitle("Gone soon") != nil {
		t.Fatal("task still reachable after delete")
	}
	if r.Delete(tk.ID) {
		t.Fatal("second delete should report false")
	}
	// Title is free again.
	if _, created := r.FindOrCreate("Gone soon", ""); !created {
		t.Fatal("expected a fresh task after delete")
	}
}

func TestRename(t *testing.T) {
	r := NewRegistry()
	a, _ := r.FindOrCreate("Old name", "")
	r.FindOrCreate("Taken", "")

	if err := r.Rename(a.ID, "Taken"); err == nil {
		t.Fatal("expected collision error")
	}
	if err := r.Rename(a.ID, "New name"); err != nil {
		t.Fatal(err)
	}
	if r.FindByTitle("Old name") != nil {
		t.Fatal("old title still indexed")
	}
	if got := r.FindByTitle("New name"); got == nil || got.ID != a.ID {
		t.Fatal("new title not indexed")
	}
}

func TestCompleteAndReopen(t *testing.T) {
	r := NewRegistry()
	tk, _ := r.FindOrCreate("Finish me", "")
	now := time.Date(2026, 8, 27, 10, 0, 0, 0, time.Local)

	r.Complete(tk.ID, now)
	if !tk.Completed || tk.Status != StatusCompleted {
		t.Fatalf("not completed: %+v", tk)
	}
	if tk.CompletedAt == nil || !tk.CompletedAt.Equal(now) {
		t.Fatal("completedAt not set")
	}

	r.Reopen(tk.ID)
	if tk.Completed || tk.CompletedAt != nil {
		t.Fatalf("reopen did not clear completion: %+v", tk)
	}
}

func TestPartitions(t *testing.T) {
	r := NewRegistry()
	a, _ := r.FindOrCreate("a", "")
	r.FindOrCreate("b", "")
	r.Complete(a.ID, time.Now())

	active := r.Active()
	if len(active) != 1 || active[0].Title != "b" {
		t.Fatalf("active partition wrong: %v", active)
	}
	archive := r.Archive()
	if len(archive) != 1 || archive[0].Title != "a" {
		t.Fatalf("archive partition wrong: %v", archive)
	}
}

func TestAccrueAndPomodoro(t *testing.T) {
	r := NewRegistry()
	tk, _ := r.FindOrCreate("count", "")
	for i := 0; i < 3; i++ {
		r.AccrueSecond(tk.ID)
	}
	r.AddPomodoro(tk.ID)
	if tk.TimeSpent != 3 || tk.Pomodoros != 1 {
		t.Fatalf("counters wrong: %+v", tk)
	}
	// Unknown IDs are ignored.
	r.AccrueSecond("nope")
	r.AddPomodoro("nope")
}

func TestSubtasks(t *testing.T) {
	r := NewRegistry()
	tk, _ := r.FindOrCreate("plan me", "")
	r.SetSubtasks(tk.ID, []string{"first", "second"})
	if len(tk.Subtasks) != 2 {
		t.Fatalf("expected 2 subtasks, got %d", len(tk.Subtasks))
	}
	if tk.Subtasks[0].Title != "first" || tk.Subtasks[0].ID == "" {
		t.Fatalf("bad subtask: %+v", tk.Subtasks[0])
	}

	r.ToggleSubtask(tk.ID, tk.Subtasks[1].ID)
	if !tk.Subtasks[1].Completed {
		t.Fatal("toggle did not complete subtask")
	}
	r.ToggleSubtask(tk.ID, tk.Subtasks[1].ID)
	if tk.Subtasks[1].Completed {
		t.Fatal("toggle did not uncomplete subtask")
	}
}

func TestSnapshotRestore(t *testing.T) {
	r := NewRegistry()
	a, _ := r.FindOrCreate("alpha", "plan text")
	r.FindOrCreate("beta", "")
	r.SetStatus(a.ID, StatusInProgress)
	r.AccrueSecond(a.ID)
	r.SetSubtasks(a.ID, []string{"step"})

	snap, err := r.Snapshot()
	if err != nil {
		t.Fatal(err)
	}

	r2 := NewRegistry()
	if err := r2.Restore(snap); err != nil {
		t.Fatal(err)
	}
	if r2.Len() != 2 {
		t.Fatalf("expected 2 tasks, got %d", r2.Len())
	}
	got := r2.FindByTitle("alpha")
	if got == nil || got.TimeSpent != 1 || got.Plan != "plan text" || len(got.Subtasks) != 1 {
		t.Fatalf("restored task wrong: %+v", got)
	}
	// in_progress never survives a restart: there is no active task yet.
	if got.Status != StatusPaused {
		t.Fatalf("expected in_progress demoted to paused, got %q", got.Status)
	}
}

func TestRestoreEmptyArray(t *testing.T) {
	r := NewRegistry()
	r.FindOrCreate("stale", "")
	if err := r.Restore("[]"); err != nil {
		t.Fatal(err)
	}
	if r.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", r.Len())
	}
}

func TestRestoreRejectsGarbage(t *testing.T) {
	r := NewRegistry()
	if err := r.Restore("{oops"); err == nil {
		t.Fatal("expected an error")
	}
}
