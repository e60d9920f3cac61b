// Package bridge defines the host-shell surface the timer engine talks
// to: the break window and the tray title. All calls are fire-and-forget
// and best-effort; running without a host degrades them to no-ops.
package bridge

// Bridge is consumed by the timer engine. Implementations must never
// block or fail loudly.
type Bridge interface {
	OpenBreakWindow()
	CloseBreakWindow()
	UpdateTrayTitle(title string)
}

// Noop is the hostless bridge.
type Noop struct{}

func (Noop) OpenBreakWindow()       {}
func (Noop) CloseBreakWindow()      {}
func (Noop) UpdateTrayTitle(string) {}

// Funcs adapts plain callbacks to the Bridge interface. Nil funcs are
// no-ops.
type Funcs struct {
	OpenBreak  func()
	CloseBreak func()
	TrayTitle  func(title string)
}

func (f Funcs) OpenBreakWindow() {
	if f.OpenBreak != nil {
		f.OpenBreak()
	}
}

func (f Funcs) CloseBreakWindow() {
	if f.CloseBreak != nil {
		f.CloseBreak()
	}
}

func (f Funcs) UpdateTrayTitle(title string) {
	if f.TrayTitle != nil {
		f.TrayTitle(title)
	}
}
