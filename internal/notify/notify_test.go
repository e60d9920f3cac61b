package notify

import "testing"

func TestNewNeverNil(t *testing.T) {
	n := New()
	if n == nil {
		t.Fatal("New returned nil")
	}
}

func TestNoopSend(t *testing.T) {
	n := Noop()
	if n.IsSupported() {
		t.Fatal("noop must report unsupported")
	}
	if err := n.Send("title", "message"); err != nil {
		t.Fatalf("noop send must not fail: %v", err)
	}
}
