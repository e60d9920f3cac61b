package tui

import (
	"os"

	"github.com/muesli/termenv"

	"grove/internal/session"
	"grove/internal/store"
	"grove/internal/task"
)

// persister implements engine.Saver on top of the snapshot store. Writes
// are best-effort: a failed save never interrupts the timer.
type persister struct {
	st    *store.Store
	tasks *task.Registry
	log   *session.Log
}

func (p *persister) SaveTasks() {
	snap, err := p.tasks.Snapshot()
	if err != nil {
		return
	}
	p.st.Set(store.KeyTasks, snap)
}

func (p *persister) SaveSessions() {
	snap, err := p.log.Snapshot()
	if err != nil {
		return
	}
	p.st.Set(store.KeySessions, snap)
}

func (p *persister) SaveTrees(n int) {
	p.st.SetTrees(n)
}

func (p *persister) HandoffBreak(seconds int) {
	p.st.SetBreakHandoff(seconds)
}

// uiBridge implements bridge.Bridge for the terminal. The tray title
// maps onto the terminal window title; the break window maps onto the
// fullscreen break view, requested via a flag the app drains after each
// engine call.
type uiBridge struct {
	out            *termenv.Output
	breakRequested bool
}

func newUIBridge() *uiBridge {
	return &uiBridge{out: termenv.NewOutput(os.Stdout)}
}

func (b *uiBridge) OpenBreakWindow() {
	b.breakRequested = true
}

func (b *uiBridge) CloseBreakWindow() {
	b.breakRequested = false
}

func (b *uiBridge) UpdateTrayTitle(title string) {
	if b.out != nil {
		b.out.SetWindowTitle("grove · " + title)
	}
}

// takeBreakRequest reports and clears a pending break-window request.
func (b *uiBridge) takeBreakRequest() bool {
	req := b.breakRequested
	b.breakRequested = false
	return req
}
