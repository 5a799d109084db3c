package schedule

import (
	"testing"
	"time"
)

func TestManualRunsDueCallsInOrder(t *testing.T) {
	m := NewManual(time.Date(2026, time.October, 18, 0, 0, 0, 0, time.UTC))
	var got []string

	m.Schedule(2*time.Second, func() { got = append(got, "b") })
	m.Schedule(time.Second, func() { got = append(got, "a") })
	m.Schedule(5*time.Second, func() { got = append(got, "c") })

	m.Advance(3 * time.Second)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("after 3s got %v, want [a b]", got)
	}
	if m.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", m.Pending())
	}

	m.Advance(2 * time.Second)
	if len(got) != 3 || got[2] != "c" {
		t.Fatalf("after 5s got %v, want [a b c]", got)
	}
}

func TestManualStop(t *testing.T) {
	m := NewManual(time.Time{})
	ran := false
	timer := m.Schedule(time.Second, func() { ran = true })

	if !timer.Stop() {
		t.Fatalf("Stop() = false, want true")
	}
	if timer.Stop() {
		t.Fatalf("second Stop() = true, want false")
	}
	m.Advance(time.Minute)
	if ran {
		t.Fatalf("stopped call ran")
	}
	if m.Pending() != 0 {
		t.Fatalf("Pending() = %d, want 0", m.Pending())
	}
}

func TestRealSchedule(t *testing.T) {
	done := make(chan struct{})
	Real{}.Schedule(time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("scheduled call did not run")
	}
}
