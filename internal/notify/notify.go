// Package notify provides best-effort desktop notifications using the
// native mechanisms on macOS (osascript) and Linux (notify-send).
package notify

// Notifier sends a desktop notification. Failures are expected on
// headless systems and callers treat them as non-fatal.
type Notifier interface {
	Send(title, message string) error
	IsSupported() bool
}

type noopNotifier struct{}

func (noopNotifier) Send(title, message string) error { return nil }
func (noopNotifier) IsSupported() bool                { return false }

// Noop returns a notifier that silently drops everything.
func Noop() Notifier {
	return noopNotifier{}
}

// New creates a platform-specific notifier, falling back to a no-op
// when the platform has no supported mechanism.
func New() Notifier {
	n := newPlatformNotifier()
	if n == nil || !n.IsSupported() {
		return noopNotifier{}
	}
	return n
}
