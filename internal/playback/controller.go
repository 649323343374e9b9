// Package playback steps through replay frames like a VCR: play, pause,
// seek, and change speed, with autoplay driven by a scheduler tick.
package playback

import (
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/lox/handreplay/internal/replay"
	"github.com/lox/handreplay/internal/scheduler"
)

// MinSpeed is the fastest autoplay interval.
const MinSpeed = time.Millisecond

// DefaultSpeed is used when a controller is created with no speed.
const DefaultSpeed = 800 * time.Millisecond

// initialSpeed maps a constructor speed: zero or negative means "unset" and
// gives DefaultSpeed, anything else is floored like SetSpeed.
func initialSpeed(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultSpeed
	}
	return max(d, MinSpeed)
}

// State is what a viewer renders.
type State struct {
	Index   int
	Total   int
	Playing bool
	Speed   time.Duration
	Frame   replay.Frame // zero when Total is 0
	Err     error        // replay failure, if any
	// StoppedAt is the action index the replay failed on.
	StoppedAt int
}

// HasFrame reports whether Frame is populated.
func (s State) HasFrame() bool { return s.Total > 0 }

// AtEnd reports whether the last frame is showing.
func (s State) AtEnd() bool { return s.Total == 0 || s.Index == s.Total-1 }

// Option configures a Controller.
type Option func(*Controller)

// WithClock sets the clock autoplay ticks on.
func WithClock(c quartz.Clock) Option {
	return func(ctl *Controller) { ctl.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(ctl *Controller) { ctl.logger = l }
}

// Controller is safe for use from multiple goroutines. Change listeners are
// called without the controller's lock held, so they may call back into it.
type Controller struct {
	clock  quartz.Clock
	logger zerolog.Logger
	sched  *scheduler.Scheduler

	mu        sync.Mutex
	result    *replay.Result
	index     int
	playing   bool
	speed     time.Duration
	tick      scheduler.Token
	gen       uint64 // bumped per interval
	listeners map[int]func(State)
	nextID    int
}

// New wraps result, paused on frame 0. A speed of zero or less selects
// DefaultSpeed; SetSpeed instead treats it as a request for MinSpeed.
func New(result *replay.Result, speed time.Duration, opts ...Option) *Controller {
	c := &Controller{
		clock:     quartz.NewReal(),
		logger:    zerolog.Nop(),
		result:    result,
		listeners: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.speed = initialSpeed(speed)
	c.logger = c.logger.With().Str("component", "playback").Logger()
	c.sched = scheduler.New(c.clock, scheduler.WithLogger(c.logger), scheduler.WithTag("playback"))
	return c
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	s := State{
		Index:   c.index,
		Total:   c.total(),
		Playing: c.playing,
		Speed:   c.speed,
	}
	if c.result != nil {
		s.Err = c.result.Err
		s.StoppedAt = c.result.StoppedAtActionIndex
		if s.Total > 0 {
			s.Frame = c.result.Frames[c.index]
		}
	}
	return s
}

func (c *Controller) total() int {
	if c.result == nil {
		return 0
	}
	return len(c.result.Frames)
}

// OnChange registers fn to run after every state change. The returned func
// removes it.
func (c *Controller) OnChange(fn func(State)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// update applies fn under the lock and notifies listeners if it reports a
// change.
func (c *Controller) update(fn func() bool) {
	c.mu.Lock()
	if !fn() {
		c.mu.Unlock()
		return
	}
	s := c.stateLocked()
	listeners := make([]func(State), 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	c.mu.Unlock()

	for _, l := range listeners {
		l(s)
	}
}

// Play starts autoplay, rewinding first when already on the last frame.
func (c *Controller) Play() {
	c.update(func() bool {
		total := c.total()
		if total == 0 || c.playing {
			return false
		}
		if c.index == total-1 {
			c.index = 0
		}
		c.playing = true
		c.startLocked()
		return true
	})
}

// Pause stops autoplay.
func (c *Controller) Pause() {
	c.update(func() bool {
		if !c.playing {
			return false
		}
		c.pauseLocked()
		return true
	})
}

// TogglePlayPause flips between playing and paused.
func (c *Controller) TogglePlayPause() {
	c.mu.Lock()
	playing := c.playing
	c.mu.Unlock()
	if playing {
		c.Pause()
	} else {
		c.Play()
	}
}

// NextFrame steps forward one frame.
func (c *Controller) NextFrame() {
	c.update(func() bool { return c.seekLocked(c.index + 1) })
}

// PrevFrame steps back one frame.
func (c *Controller) PrevFrame() {
	c.update(func() bool { return c.seekLocked(c.index - 1) })
}

// GoToFrame jumps to i, clamped into range.
func (c *Controller) GoToFrame(i int) {
	c.update(func() bool { return c.seekLocked(i) })
}

func (c *Controller) seekLocked(i int) bool {
	total := c.total()
	if total == 0 {
		return false
	}
	i = min(max(i, 0), total-1)
	if i == c.index {
		return false
	}
	c.index = i
	return true
}

// SetSpeed changes the autoplay interval without moving. Intervals below
// MinSpeed are raised to it.
func (c *Controller) SetSpeed(d time.Duration) {
	c.update(func() bool {
		d = max(d, MinSpeed)
		if d == c.speed {
			return false
		}
		c.speed = d
		if c.playing {
			c.sched.Cancel(c.tick)
			c.startLocked()
		}
		return true
	})
}

// Load swaps in another replay, paused on frame 0. Loading the result
// already shown does nothing.
func (c *Controller) Load(result *replay.Result) {
	c.update(func() bool {
		if result == c.result {
			return false
		}
		c.pauseLocked()
		c.result = result
		c.index = 0
		c.logger.Debug().Int("frames", c.total()).Msg("Loaded replay")
		return true
	})
}

// Close stops autoplay for good.
func (c *Controller) Close() {
	c.Pause()
	c.sched.Close()
}

func (c *Controller) startLocked() {
	c.gen++
	gen := c.gen
	c.tick = c.sched.Every(c.speed, func() { c.advance(gen) })
}

func (c *Controller) pauseLocked() {
	if c.tick != 0 {
		c.sched.Cancel(c.tick)
		c.tick = 0
	}
	c.playing = false
}

// advance is one autoplay tick. A tick from a replaced interval is ignored.
func (c *Controller) advance(gen uint64) {
	c.update(func() bool {
		if !c.playing || c.gen != gen {
			return false
		}
		last := c.total() - 1
		if c.index+1 > last {
			c.index = max(last, 0)
			c.pauseLocked()
			return true
		}
		c.index++
		return true
	})
}
