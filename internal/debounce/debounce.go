// Package debounce provides keyed, cancellable scheduled tasks.
//
// Scheduling a task under a key cancels whatever task was pending under the
// same key, so a burst of Schedule calls collapses into a single execution
// of the last one, run after the quiet window.
package debounce

import (
	"sync"
	"time"
)

// Timer is the part of *time.Timer the scheduler needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it once adapted.
type AfterFunc func(d time.Duration, f func()) Timer

// Scheduler runs at most one pending task per key.
type Scheduler struct {
	mu        sync.Mutex
	gen       uint64
	tasks     map[string]*task
	afterFunc AfterFunc
}

type task struct {
	gen   uint64
	timer Timer
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithAfterFunc replaces the timer source. Tests use it to drive time by hand.
func WithAfterFunc(fn AfterFunc) Option {
	return func(s *Scheduler) {
		s.afterFunc = fn
	}
}

// New creates a scheduler backed by time.AfterFunc.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		tasks: make(map[string]*task),
		afterFunc: func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, f)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule runs fn after delay unless another Schedule or Cancel for key
// happens first. It reports whether a pending task was superseded.
func (s *Scheduler) Schedule(key string, delay time.Duration, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	superseded := s.stopLocked(key)

	s.gen++
	t := &task{gen: s.gen}
	gen := t.gen
	t.timer = s.afterFunc(delay, func() {
		s.mu.Lock()
		cur, ok := s.tasks[key]
		// A timer that fired while being superseded must not run.
		if !ok || cur.gen != gen {
			s.mu.Unlock()
			return
		}
		delete(s.tasks, key)
		s.mu.Unlock()

		fn()
	})
	s.tasks[key] = t

	return superseded
}

// Cancel drops the pending task for key and reports whether one existed.
func (s *Scheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopLocked(key)
}

// CancelAll drops every pending task.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.tasks {
		s.stopLocked(key)
	}
}

// Pending reports whether a task is waiting under key.
func (s *Scheduler) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[key]
	return ok
}

func (s *Scheduler) stopLocked(key string) bool {
	t, ok := s.tasks[key]
	if !ok {
		return false
	}
	t.timer.Stop()
	delete(s.tasks, key)
	return true
}
