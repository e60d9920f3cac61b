// Package engine implements the timer/task session state machine: the
// work/break countdown, active-task selection, round counting, and the
// bookkeeping fired on interval completion. It owns no scheduling of
// its own; the caller drives it with one Tick per second from a single
// cooperative loop, so every operation runs to completion before the
// next and no locking is needed.
package engine

import (
	"fmt"
	"time"

	"grove/internal/bridge"
	"grove/internal/config"
	"grove/internal/session"
	"grove/internal/task"
)

// Mode is the main timer mode. Long breaks are not a mode: they run in
// a separate surface and leave the main timer parked in work mode.
type Mode string

const (
	ModeWork       Mode = "work"
	ModeShortBreak Mode = "short_break"
)

// Notifier is the desktop-notification sink. Failures are ignored.
type Notifier interface {
	Send(title, message string) error
}

// Saver receives fire-and-forget persistence callbacks after every
// relevant state change. Implementations swallow their own errors; a
// failed write never blocks or corrupts the state machine.
type Saver interface {
	SaveTasks()
	SaveSessions()
	SaveTrees(n int)
	HandoffBreak(seconds int)
}

// NopSaver discards all persistence callbacks.
type NopSaver struct{}

func (NopSaver) SaveTasks()       {}
func (NopSaver) SaveSessions()    {}
func (NopSaver) SaveTrees(int)    {}
func (NopSaver) HandoffBreak(int) {}

const appTitle = "grove"

// Engine is the session state machine. Not safe for concurrent use;
// drive it from one goroutine.
type Engine struct {
	cfg     config.Config
	pending *config.Config // config change deferred while running

	tasks    *task.Registry
	log      *session.Log
	bridge   bridge.Bridge
	notifier Notifier
	saver    Saver
	now      func() time.Time

	mode         Mode
	timeLeft     int // seconds
	active       bool
	rounds       int // cumulative this process; resets on restart
	trees        int // persisted forest counter
	activeTaskID string
}

// Option configures the Engine.
type Option func(*Engine)

func WithBridge(b bridge.Bridge) Option {
	return func(e *Engine) { e.bridge = b }
}

func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

func WithSaver(s Saver) Option {
	return func(e *Engine) { e.saver = s }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithTrees seeds the persisted forest counter.
func WithTrees(n int) Option {
	return func(e *Engine) { e.trees = n }
}

// New builds an engine in idle work mode with a full countdown.
func New(cfg config.Config, tasks *task.Registry, log *session.Log, opts ...Option) *Engine {
	e := &Engine{
		cfg:      cfg,
		tasks:    tasks,
		log:      log,
		bridge:   bridge.Noop{},
		notifier: noopNotifier{},
		saver:    NopSaver{},
		now:      time.Now,
		mode:     ModeWork,
	}
	for _, o := range opts {
		o(e)
	}
	e.timeLeft = e.durationFor(e.mode)
	return e
}

type noopNotifier struct{}

func (noopNotifier) Send(string, string) error { return nil }

// Accessors.

func (e *Engine) Mode() Mode    { return e.mode }
func (e *Engine) TimeLeft() int { return e.timeLeft }
func (e *Engine) Active() bool  { return e.active }
func (e *Engine) Rounds() int   { return e.rounds }
func (e *Engine) Trees() int    { return e.trees }

func (e *Engine) Config() config.Config { return e.cfg }

// ActiveTask returns the task currently being timed, or nil.
func (e *Engine) ActiveTask() *task.Task {
	if e.activeTaskID == "" {
		return nil
	}
	return e.tasks.Get(e.activeTaskID)
}

// Progress reports the remaining fraction of the current interval.
func (e *Engine) Progress() float64 {
	total := e.durationFor(e.mode)
	if total == 0 {
		return 0
	}
	return float64(e.timeLeft) / float64(total)
}

// Toggle flips the running flag. Always legal.
func (e *Engine) Toggle() {
	e.active = !e.active
}

// Reset stops the countdown and re-seeds timeLeft for the current mode.
// Mode and rounds are untouched. A deferred config change takes effect
// here.
func (e *Engine) Reset() {
	e.applyPending()
	e.active = false
	e.timeLeft = e.durationFor(e.mode)
}

// Tick advances the countdown by one second. The caller invokes it once
// per second; a tick on an inactive engine is a no-op. Reaching zero
// while active is the sole completion trigger, checked before the
// decrement so exactly one completion fires per crossing.
func (e *Engine) Tick() {
	if !e.active {
		return
	}
	if e.timeLeft == 0 {
		e.intervalComplete()
		return
	}
	e.timeLeft--
	if e.mode == ModeWork && e.activeTaskID != "" {
		e.tasks.AccrueSecond(e.activeTaskID)
		e.saver.SaveTasks()
	}
	e.bridge.UpdateTrayTitle(FormatClock(e.timeLeft))
}

// intervalComplete handles the zero crossing for the current mode.
func (e *Engine) intervalComplete() {
	e.active = false

	switch e.mode {
	case ModeWork:
		e.rounds++
		e.trees++
		e.saver.SaveTrees(e.trees)

		if e.activeTaskID != "" {
			e.tasks.AddPomodoro(e.activeTaskID)
			e.saver.SaveTasks()
		}

		// The session records the config that was live for the
		// interval; a deferred change only applies afterwards.
		e.log.Record(session.Session{
			Date:     e.now().Format(session.DateLayout),
			Duration: e.cfg.WorkSeconds(),
		})
		e.saver.SaveSessions()

		e.notifier.Send(appTitle, "Time to take a break.")
		e.bridge.UpdateTrayTitle("Break Time")

		e.applyPending()
		if e.rounds%e.cfg.LongBreakInterval == 0 {
			// The long break runs in its own surface; the main
			// timer stays parked in work mode, rewound and idle.
			e.saver.HandoffBreak(e.cfg.LongBreakSeconds())
			e.bridge.OpenBreakWindow()
			e.timeLeft = e.cfg.WorkSeconds()
		} else {
			e.mode = ModeShortBreak
			e.timeLeft = e.cfg.BreakSeconds()
		}

	case ModeShortBreak:
		e.applyPending()
		e.mode = ModeWork
		e.timeLeft = e.cfg.WorkSeconds()
		e.notifier.Send(appTitle, "Back to work.")
		e.bridge.UpdateTrayTitle("Focus Time")
	}
}

// FinishEarly is the manual short-circuit of a work interval: the task
// is done before the clock is. It stops the timer, moves to a short
// break, and completes the active task. No round, session, or pomodoro
// bookkeeping happens. Outside work mode it is a no-op.
func (e *Engine) FinishEarly() {
	if e.mode != ModeWork {
		return
	}
	e.active = false
	e.applyPending()
	e.mode = ModeShortBreak
	e.timeLeft = e.cfg.BreakSeconds()

	if e.activeTaskID != "" {
		e.tasks.Complete(e.activeTaskID, e.now())
		e.activeTaskID = ""
		e.saver.SaveTasks()
	}
}

// SetConfig installs a new configuration. While idle it re-seeds the
// countdown for the current mode immediately; while running it is
// deferred and only affects future resets and mode transitions.
func (e *Engine) SetConfig(cfg config.Config) {
	if e.active {
		pending := cfg
		e.pending = &pending
		return
	}
	e.pending = nil
	e.cfg = cfg
	e.timeLeft = e.durationFor(e.mode)
}

func (e *Engine) applyPending() {
	if e.pending != nil {
		e.cfg = *e.pending
		e.pending = nil
	}
}

// StartOrResume finds or creates a task by exact title, makes it the
// single in-progress task, and starts a fresh work countdown. The
// previously active task, if different, is demoted to paused.
func (e *Engine) StartOrResume(title, plan string) *task.Task {
	t, _ := e.tasks.FindOrCreate(title, plan)
	if e.activeTaskID != "" && e.activeTaskID != t.ID {
		e.tasks.SetStatus(e.activeTaskID, task.StatusPaused)
	}
	e.tasks.Reopen(t.ID)
	e.tasks.SetStatus(t.ID, task.StatusInProgress)
	e.activeTaskID = t.ID

	e.applyPending()
	e.mode = ModeWork
	e.timeLeft = e.cfg.WorkSeconds()
	e.active = true
	e.saver.SaveTasks()
	return t
}

// ToggleActive pauses the task if it is already active, otherwise
// switches the active slot to it (reactivating it even if completed)
// and starts the timer fresh in work mode.
func (e *Engine) ToggleActive(id string) {
	t := e.tasks.Get(id)
	if t == nil {
		return
	}

	if e.activeTaskID == id {
		e.activeTaskID = ""
		e.active = false
		e.tasks.SetStatus(id, task.StatusPaused)
		e.saver.SaveTasks()
		return
	}

	if e.activeTaskID != "" {
		e.tasks.SetStatus(e.activeTaskID, task.StatusPaused)
	}
	e.tasks.Reopen(id)
	e.tasks.SetStatus(id, task.StatusInProgress)
	e.activeTaskID = id

	e.applyPending()
	e.mode = ModeWork
	e.timeLeft = e.cfg.WorkSeconds()
	e.active = true
	e.saver.SaveTasks()
}

// ManualComplete marks a task done regardless of timer state. If it was
// the active task the timer stops and the active slot clears.
func (e *Engine) ManualComplete(id string) {
	if e.tasks.Get(id) == nil {
		return
	}
	e.tasks.Complete(id, e.now())
	if e.activeTaskID == id {
		e.activeTaskID = ""
		e.active = false
	}
	e.saver.SaveTasks()
}

// DeleteTask removes a task (the caller is responsible for user
// confirmation). If it was active the timer stops.
func (e *Engine) DeleteTask(id string) bool {
	if !e.tasks.Delete(id) {
		return false
	}
	if e.activeTaskID == id {
		e.activeTaskID = ""
		e.active = false
	}
	e.saver.SaveTasks()
	return true
}

func (e *Engine) durationFor(m Mode) int {
	if m == ModeWork {
		return e.cfg.WorkSeconds()
	}
	return e.cfg.BreakSeconds()
}

// FormatClock renders seconds as M:SS, the tray-title format.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
