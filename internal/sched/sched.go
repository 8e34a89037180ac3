// Package sched runs delayed and repeating callbacks on a virtual clock. The
// owner advances the clock from its loop, so callbacks never run concurrently
// with each other or with the owner.
package sched

import (
	"container/heap"
	"time"
)

// TaskID identifies a scheduled task. The zero TaskID is never issued and
// cancelling it is a no-op.
type TaskID uint64

type task struct {
	id       TaskID
	due      time.Duration
	every    time.Duration
	fn       func()
	index    int
	canceled bool
	seq      uint64
}

type taskHeap []*task

func (h taskHeap) Len() int { return len(h) }
func (h taskHeap) Less(i, j int) bool {
	if h[i].due != h[j].due {
		return h[i].due < h[j].due
	}
	return h[i].seq < h[j].seq
}
func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *taskHeap) Push(x any) {
	t := x.(*task)
	t.index = len(*h)
	*h = append(*h, t)
}
func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

// Scheduler is a virtual-time task queue. Not safe for concurrent use.
type Scheduler struct {
	now   time.Duration
	next  TaskID
	seq   uint64
	queue taskHeap
	byID  map[TaskID]*task
}

// New creates a scheduler whose clock starts at zero.
func New() *Scheduler {
	return &Scheduler{byID: make(map[TaskID]*task)}
}

// Now returns the virtual time elapsed since the scheduler was created.
func (s *Scheduler) Now() time.Duration { return s.now }

// After runs fn once, d after the current time.
func (s *Scheduler) After(d time.Duration, fn func()) TaskID {
	return s.add(d, 0, fn)
}

// Every runs fn each period, first at now+period. A non-positive period is
// treated as a one-shot After(0).
func (s *Scheduler) Every(period time.Duration, fn func()) TaskID {
	if period <= 0 {
		return s.add(0, 0, fn)
	}
	return s.add(period, period, fn)
}

func (s *Scheduler) add(d, every time.Duration, fn func()) TaskID {
	if d < 0 {
		d = 0
	}
	s.next++
	s.seq++
	t := &task{id: s.next, due: s.now + d, every: every, fn: fn, seq: s.seq}
	heap.Push(&s.queue, t)
	s.byID[t.id] = t
	return t.id
}

// Cancel stops a pending task. It reports whether the task was still pending.
func (s *Scheduler) Cancel(id TaskID) bool {
	t, ok := s.byID[id]
	if !ok {
		return false
	}
	delete(s.byID, id)
	t.canceled = true
	if t.index >= 0 {
		heap.Remove(&s.queue, t.index)
	}
	return true
}

// CancelAll drops every pending task.
func (s *Scheduler) CancelAll() {
	for _, t := range s.queue {
		t.canceled = true
	}
	s.queue = nil
	s.byID = make(map[TaskID]*task)
}

// Pending reports whether id is still scheduled.
func (s *Scheduler) Pending(id TaskID) bool {
	_, ok := s.byID[id]
	return ok
}

// Len returns the number of pending tasks.
func (s *Scheduler) Len() int { return len(s.byID) }

// Advance moves the clock forward by d, running every task that falls due in
// deadline order. Tasks scheduled by callbacks run in the same call when they
// fall due inside the window. It returns the number of callbacks run.
func (s *Scheduler) Advance(d time.Duration) int {
	if d < 0 {
		d = 0
	}
	end := s.now + d
	ran := 0
	for len(s.queue) > 0 && s.queue[0].due <= end {
		t := heap.Pop(&s.queue).(*task)
		if t.due > s.now {
			s.now = t.due
		}
		if t.every > 0 {
			s.seq++
			t.due += t.every
			t.seq = s.seq
			heap.Push(&s.queue, t)
		} else {
			delete(s.byID, t.id)
		}
		t.fn()
		ran++
	}
	s.now = end
	return ran
}
