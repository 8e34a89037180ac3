package sched

import (
	"testing"
	"time"
)

func TestAfterRunsOnceAtDeadline(t *testing.T) {
	s := New()
	fired := 0
	s.After(time.Second, func() { fired++ })

	s.Advance(999 * time.Millisecond)
	if fired != 0 {
		t.Fatalf("fired early")
	}
	s.Advance(time.Millisecond)
	if fired != 1 {
		t.Fatalf("fired=%d at deadline, want 1", fired)
	}
	s.Advance(5 * time.Second)
	if fired != 1 || s.Len() != 0 {
		t.Fatalf("one-shot fired again: %d, pending %d", fired, s.Len())
	}
}

func TestCancelPreventsCallback(t *testing.T) {
	s := New()
	fired := false
	id := s.After(100*time.Millisecond, func() { fired = true })
	if !s.Cancel(id) {
		t.Fatalf("cancel of pending task returned false")
	}
	if s.Cancel(id) {
		t.Fatalf("second cancel should report false")
	}
	s.Advance(time.Second)
	if fired {
		t.Fatalf("cancelled task ran")
	}
	if s.Cancel(0) {
		t.Fatalf("zero id cancel must be a no-op")
	}
}

func TestEveryRepeatsUntilCancelled(t *testing.T) {
	s := New()
	var id TaskID
	n := 0
	id = s.Every(time.Second, func() {
		n++
		if n == 3 {
			s.Cancel(id)
		}
	})
	s.Advance(10 * time.Second)
	if n != 3 {
		t.Fatalf("interval ran %d times, want 3", n)
	}
	if s.Pending(id) {
		t.Fatalf("interval still pending after cancel")
	}
}

func TestClockDuringCallbackIsDeadline(t *testing.T) {
	s := New()
	var seen []time.Duration
	s.After(300*time.Millisecond, func() { seen = append(seen, s.Now()) })
	s.After(100*time.Millisecond, func() { seen = append(seen, s.Now()) })
	s.Advance(time.Second)
	if len(seen) != 2 || seen[0] != 100*time.Millisecond || seen[1] != 300*time.Millisecond {
		t.Fatalf("callbacks saw clock %v", seen)
	}
	if s.Now() != time.Second {
		t.Fatalf("clock after advance = %v", s.Now())
	}
}

func TestCancelAll(t *testing.T) {
	s := New()
	fired := 0
	s.After(time.Millisecond, func() { fired++ })
	s.Every(time.Millisecond, func() { fired++ })
	s.CancelAll()
	s.Advance(time.Second)
	if fired != 0 || s.Len() != 0 {
		t.Fatalf("tasks survived CancelAll: fired=%d pending=%d", fired, s.Len())
	}
}

func TestCallbackCanScheduleWithinWindow(t *testing.T) {
	s := New()
	order := []string{}
	s.After(10*time.Millisecond, func() {
		order = append(order, "a")
		s.After(10*time.Millisecond, func() { order = append(order, "b") })
	})
	s.Advance(50 * time.Millisecond)
	if len(order) != 2 || order[1] != "b" {
		t.Fatalf("nested task did not run in window: %v", order)
	}
}
