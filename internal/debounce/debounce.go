// Package debounce collapses bursts of calls into one call after a quiet period.
package debounce

import (
	"sync"
	"time"

	"github.com/facebookgo/clock"
)

// Handle is one scheduled call.
type Handle struct {
	s     *Scheduler
	fn    func()
	timer *clock.Timer
	done  bool
}

// Cancel discards the call if it has not run yet. It reports whether the
// call was still pending.
func (h *Handle) Cancel() bool {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	return h.s.cancelLocked(h)
}

// Scheduler keeps at most one pending call. Scheduling a new call cancels
// the previous one.
type Scheduler struct {
	clock clock.Clock

	mu      sync.Mutex
	pending *Handle
}

// New creates a Scheduler on clk. A nil clk uses the wall clock.
func New(clk clock.Clock) *Scheduler {
	if clk == nil {
		clk = clock.New()
	}
	return &Scheduler{clock: clk}
}

// Schedule arms fn to run after delay, replacing any pending call.
func (s *Scheduler) Schedule(fn func(), delay time.Duration) *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		s.cancelLocked(s.pending)
	}

	h := &Handle{s: s, fn: fn}
	h.timer = s.clock.AfterFunc(delay, func() { s.fire(h) })
	s.pending = h
	return h
}

// Pending reports whether a call is waiting to run.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Flush runs the pending call now, if any. It reports whether a call ran.
func (s *Scheduler) Flush() bool {
	s.mu.Lock()
	h := s.pending
	if h == nil {
		s.mu.Unlock()
		return false
	}
	h.timer.Stop()
	h.done = true
	s.pending = nil
	s.mu.Unlock()

	h.fn()
	return true
}

// Stop cancels the pending call, if any.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		s.cancelLocked(s.pending)
	}
}

func (s *Scheduler) fire(h *Handle) {
	s.mu.Lock()
	if h.done || s.pending != h {
		s.mu.Unlock()
		return
	}
	h.done = true
	s.pending = nil
	s.mu.Unlock()

	h.fn()
}

func (s *Scheduler) cancelLocked(h *Handle) bool {
	if h.done {
		return false
	}
	h.done = true
	if h.timer != nil {
		h.timer.Stop()
	}
	if s.pending == h {
		s.pending = nil
	}
	return true
}
