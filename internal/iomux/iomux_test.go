//go:build unix

package iomux

import (
	"os"
	"testing"
	"time"
)

func TestPollDispatchesReadReady(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	m := New()
	fired := make(chan struct{}, 1)
	m.RegisterRead(int(r.Fd()), func(fd int) { fired <- struct{}{} })

	if _, err := w.Write([]byte("x")); err != nil {
		t.Fatal(err)
	}

	if err := m.Poll(2 * time.Second); err != nil {
		t.Fatalf("Poll() error: %v", err)
	}

	select {
	case <-fired:
	default:
		t.Fatal("expected read handler to fire")
	}
}

func TestPollTimesOutWithNoActivity(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	m := New()
	m.RegisterRead(int(r.Fd()), func(fd int) { t.Fatal("handler should not fire") })

	start := time.Now()
	if err := m.Poll(200 * time.Millisecond); err != nil {
		t.Fatalf("Poll() error: %v", err)
	}
	if time.Since(start) < 150*time.Millisecond {
		t.Error("Poll returned too quickly for a plain timeout")
	}
}

func TestEmptyPollReturnsImmediately(t *testing.T) {
	m := New()
	if !m.Empty() {
		t.Fatal("expected a freshly constructed IOMap to be empty")
	}
	start := time.Now()
	if err := m.Poll(5 * time.Second); err != nil {
		t.Fatalf("Poll() error: %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("Poll() on an empty map should return immediately")
	}
}

func TestUnregister(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	m := New()
	m.RegisterRead(int(r.Fd()), func(fd int) {})
	if m.Empty() {
		t.Fatal("expected non-empty after RegisterRead")
	}
	m.Unregister(int(r.Fd()))
	if !m.Empty() {
		t.Fatal("expected empty after Unregister")
	}
}
