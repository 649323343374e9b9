package playback

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/handreplay/internal/replay"
)

func frames(n int) *replay.Result {
	res := &replay.Result{}
	for i := range n {
		res.Frames = append(res.Frames, replay.Frame{ActionIndex: i - 1, Timestamp: time.Duration(i) * replay.FrameInterval})
	}
	return res
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func tick(ctx context.Context, t *testing.T, clk *quartz.Mock) {
	t.Helper()
	_, ok := clk.Peek()
	require.True(t, ok, "no tick armed")
	_, w := clk.AdvanceNext()
	w.MustWait(ctx)
}

func TestStartsPausedAtZero(t *testing.T) {
	c := New(frames(4), 0, WithClock(quartz.NewMock(t)))
	defer c.Close()

	s := c.State()
	assert.Equal(t, 0, s.Index)
	assert.Equal(t, 4, s.Total)
	assert.False(t, s.Playing)
	assert.Equal(t, DefaultSpeed, s.Speed)
	assert.Equal(t, -1, s.Frame.ActionIndex)
}

func TestConstructorSpeed(t *testing.T) {
	tests := []struct {
		in, want time.Duration
	}{
		{0, DefaultSpeed},
		{-time.Second, DefaultSpeed},
		{time.Nanosecond, MinSpeed},
		{250 * time.Millisecond, 250 * time.Millisecond},
	}
	for _, tt := range tests {
		c := New(frames(2), tt.in, WithClock(quartz.NewMock(t)))
		assert.Equal(t, tt.want, c.State().Speed, "New(%s)", tt.in)
		c.SetSpeed(0)
		assert.Equal(t, MinSpeed, c.State().Speed, "SetSpeed(0) after New(%s)", tt.in)
		c.Close()
	}
}

func TestNavigationClamps(t *testing.T) {
	c := New(frames(3), time.Second, WithClock(quartz.NewMock(t)))
	defer c.Close()

	c.PrevFrame()
	assert.Equal(t, 0, c.State().Index)

	c.NextFrame()
	c.NextFrame()
	c.NextFrame()
	assert.Equal(t, 2, c.State().Index)
	assert.True(t, c.State().AtEnd())

	for _, tt := range []struct{ in, want int }{{-5, 0}, {1, 1}, {99, 2}} {
		c.GoToFrame(tt.in)
		assert.Equal(t, tt.want, c.State().Index, "GoToFrame(%d)", tt.in)
	}
}

func TestEmptyResultIsInert(t *testing.T) {
	clk := quartz.NewMock(t)
	c := New(&replay.Result{Err: errors.New("bad hex")}, time.Second, WithClock(clk))
	defer c.Close()

	c.NextFrame()
	c.PrevFrame()
	c.GoToFrame(3)
	c.Play()

	s := c.State()
	assert.Equal(t, 0, s.Index)
	assert.False(t, s.Playing)
	assert.False(t, s.HasFrame())
	assert.EqualError(t, s.Err, "bad hex")
	_, armed := clk.Peek()
	assert.False(t, armed)
}

func TestAutoplayPausesAtEnd(t *testing.T) {
	ctx := testContext(t)
	clk := quartz.NewMock(t)
	c := New(frames(3), 500*time.Millisecond, WithClock(clk))
	defer c.Close()

	c.Play()
	d, ok := clk.Peek()
	require.True(t, ok)
	assert.Equal(t, 500*time.Millisecond, d)

	tick(ctx, t, clk)
	assert.Equal(t, 1, c.State().Index)
	tick(ctx, t, clk)
	assert.Equal(t, 2, c.State().Index)
	assert.True(t, c.State().Playing)

	tick(ctx, t, clk)
	s := c.State()
	assert.Equal(t, 2, s.Index)
	assert.False(t, s.Playing)
	_, armed := clk.Peek()
	assert.False(t, armed, "interval torn down")
}

func TestPlayAtEndRestarts(t *testing.T) {
	ctx := testContext(t)
	clk := quartz.NewMock(t)
	c := New(frames(3), time.Second, WithClock(clk))
	defer c.Close()

	c.GoToFrame(2)
	c.Play()
	assert.Equal(t, 0, c.State().Index)
	assert.True(t, c.State().Playing)

	tick(ctx, t, clk)
	assert.Equal(t, 1, c.State().Index)
}

func TestToggleAndPause(t *testing.T) {
	ctx := testContext(t)
	clk := quartz.NewMock(t)
	c := New(frames(5), time.Second, WithClock(clk))
	defer c.Close()

	c.TogglePlayPause()
	assert.True(t, c.State().Playing)
	tick(ctx, t, clk)

	c.TogglePlayPause()
	s := c.State()
	assert.False(t, s.Playing)
	assert.Equal(t, 1, s.Index)
	_, armed := clk.Peek()
	assert.False(t, armed)
}

func TestSetSpeed(t *testing.T) {
	ctx := testContext(t)
	clk := quartz.NewMock(t)
	c := New(frames(10), time.Second, WithClock(clk))
	defer c.Close()

	c.SetSpeed(0)
	assert.Equal(t, MinSpeed, c.State().Speed)
	c.SetSpeed(-time.Second)
	assert.Equal(t, MinSpeed, c.State().Speed)

	c.SetSpeed(time.Second)
	c.Play()
	tick(ctx, t, clk)
	tick(ctx, t, clk)
	require.Equal(t, 2, c.State().Index)

	c.SetSpeed(250 * time.Millisecond)
	d, ok := clk.Peek()
	require.True(t, ok)
	assert.Equal(t, 250*time.Millisecond, d)
	assert.Equal(t, 2, c.State().Index, "speed change keeps position")
	assert.True(t, c.State().Playing)

	tick(ctx, t, clk)
	assert.Equal(t, 3, c.State().Index)
}

func TestLoadResets(t *testing.T) {
	ctx := testContext(t)
	clk := quartz.NewMock(t)
	first := frames(5)
	c := New(first, time.Second, WithClock(clk))
	defer c.Close()

	c.Play()
	tick(ctx, t, clk)
	tick(ctx, t, clk)

	c.Load(first)
	assert.Equal(t, 2, c.State().Index, "same result is not a reload")
	assert.True(t, c.State().Playing)

	c.Load(frames(2))
	s := c.State()
	assert.Equal(t, 0, s.Index)
	assert.Equal(t, 2, s.Total)
	assert.False(t, s.Playing)
	_, armed := clk.Peek()
	assert.False(t, armed)
}

func TestOnChange(t *testing.T) {
	c := New(frames(3), time.Second, WithClock(quartz.NewMock(t)))
	defer c.Close()

	var mu sync.Mutex
	var seen []int
	stop := c.OnChange(func(s State) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, s.Index)
	})

	c.NextFrame()
	c.NextFrame()
	c.NextFrame() // clamped, no change
	c.PrevFrame()
	stop()
	c.GoToFrame(0)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2, 1}, seen)
}

func TestListenersMayCallBack(t *testing.T) {
	c := New(frames(3), time.Second, WithClock(quartz.NewMock(t)))
	defer c.Close()

	c.OnChange(func(s State) {
		if s.Index == 1 {
			c.GoToFrame(2)
		}
	})
	c.NextFrame()
	assert.Equal(t, 2, c.State().Index)
}
