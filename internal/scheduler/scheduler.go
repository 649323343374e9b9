// Package scheduler runs delayed and repeating tasks on a clock, one at a
// time. Every task and every Do call holds the same loop lock, so state owned
// by a scheduler's callers is only ever touched by one goroutine at once.
package scheduler

import (
	"errors"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
)

// ErrClosed is returned by Do after Close.
var ErrClosed = errors.New("scheduler closed")

// Token identifies a scheduled task. The zero Token is never issued.
type Token uint64

type task struct {
	timer  *quartz.Timer
	every  time.Duration
	fn     func()
	repeat bool
}

// Scheduler owns a set of cancellable timers.
type Scheduler struct {
	clock  quartz.Clock
	logger zerolog.Logger
	tag    string

	loop sync.Mutex // held while a task or Do body runs

	mu     sync.Mutex
	next   Token
	tasks  map[Token]*task
	closed bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger used for task panics.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// WithTag tags every timer, so tests can trap them on a quartz mock.
func WithTag(tag string) Option {
	return func(s *Scheduler) { s.tag = tag }
}

// New returns a scheduler driven by clock.
func New(clock quartz.Clock, opts ...Option) *Scheduler {
	s := &Scheduler{
		clock:  clock,
		logger: zerolog.Nop(),
		tag:    "scheduler",
		tasks:  make(map[Token]*task),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Clock returns the clock the scheduler runs on.
func (s *Scheduler) Clock() quartz.Clock {
	return s.clock
}

// After runs fn once after d. It returns 0 if the scheduler is closed.
func (s *Scheduler) After(d time.Duration, fn func()) Token {
	return s.schedule(&task{every: d, fn: fn})
}

// Every runs fn every d until cancelled. The next run is armed only after fn
// returns, so a slow fn never overlaps itself.
func (s *Scheduler) Every(d time.Duration, fn func()) Token {
	if d <= 0 {
		d = time.Millisecond
	}
	return s.schedule(&task{every: d, fn: fn, repeat: true})
}

func (s *Scheduler) schedule(t *task) Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0
	}
	s.next++
	tok := s.next
	s.tasks[tok] = t
	s.arm(tok, t)
	return tok
}

// arm must be called with mu held.
func (s *Scheduler) arm(tok Token, t *task) {
	t.timer = s.clock.AfterFunc(t.every, func() { s.fire(tok, t) }, s.tag)
}

func (s *Scheduler) fire(tok Token, t *task) {
	s.loop.Lock()
	defer s.loop.Unlock()

	if !s.live(tok, t) {
		return
	}
	if !t.repeat {
		s.mu.Lock()
		delete(s.tasks, tok)
		s.mu.Unlock()
	}

	s.run(tok, t.fn)

	if t.repeat {
		s.mu.Lock()
		if !s.closed && s.tasks[tok] == t {
			s.arm(tok, t)
		}
		s.mu.Unlock()
	}
}

func (s *Scheduler) live(tok Token, t *task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.tasks[tok] == t
}

func (s *Scheduler) run(tok Token, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Uint64("token", uint64(tok)).Interface("panic", r).Msg("Scheduled task panicked")
		}
	}()
	fn()
}

// Cancel stops a pending task. It reports whether the task was pending.
func (s *Scheduler) Cancel(tok Token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[tok]
	if !ok {
		return false
	}
	t.timer.Stop()
	delete(s.tasks, tok)
	return true
}

// CancelAll stops every pending task.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for tok, t := range s.tasks {
		t.timer.Stop()
		delete(s.tasks, tok)
	}
}

// Pending returns the number of tasks that have not yet run or been
// cancelled. Repeating tasks count until cancelled.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Do runs fn on the loop, serialised with scheduled tasks. It must not be
// called from inside a task.
func (s *Scheduler) Do(fn func()) error {
	s.loop.Lock()
	defer s.loop.Unlock()
	if s.Closed() {
		return ErrClosed
	}
	fn()
	return nil
}

// Close cancels everything and rejects further work. It is safe to call more
// than once and from inside a task.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for tok, t := range s.tasks {
		t.timer.Stop()
		delete(s.tasks, tok)
	}
}

// Closed reports whether Close has been called.
func (s *Scheduler) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
