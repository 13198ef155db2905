package loop

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHost struct {
	sizes    [][2]int
	calls    int
	closeAt  int
	closeHit bool
}

func (h *fakeHost) ShouldClose() bool {
	if h.closeAt > 0 && h.calls >= h.closeAt {
		h.closeHit = true
		return true
	}
	return false
}

func (h *fakeHost) Size() (int, int) {
	i := h.calls
	if i >= len(h.sizes) {
		i = len(h.sizes) - 1
	}
	h.calls++
	return h.sizes[i][0], h.sizes[i][1]
}

type fakeClock struct {
	now  time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

func TestRun_StopsWhenHostCloses(t *testing.T) {
	host := &fakeHost{sizes: [][2]int{{800, 600}}, closeAt: 5}
	var frames []Frame
	l := New(host, Options{
		Clock:   &fakeClock{now: time.Unix(0, 0), step: 16 * time.Millisecond},
		OnFrame: func(f Frame) { frames = append(frames, f) },
	})

	require.NoError(t, l.Run(context.Background()))
	assert.True(t, host.closeHit)
	require.Len(t, frames, 5)

	for i, f := range frames {
		assert.Equal(t, uint64(i), f.Index)
	}
	assert.Equal(t, 16*time.Millisecond, frames[0].Elapsed)
	assert.Equal(t, 80*time.Millisecond, frames[4].Elapsed)
	assert.Equal(t, 16*time.Millisecond, frames[3].Delta)
}

func TestRun_ResizeOnStartAndOnChange(t *testing.T) {
	host := &fakeHost{
		sizes:   [][2]int{{1024, 768}, {1024, 768}, {700, 900}, {700, 900}, {700, 900}},
		closeAt: 5,
	}
	var resizes [][2]int
	l := New(host, Options{
		OnResize: func(w, h int) { resizes = append(resizes, [2]int{w, h}) },
	})

	require.NoError(t, l.Run(context.Background()))
	assert.Equal(t, [][2]int{{1024, 768}, {700, 900}}, resizes)
}

func TestRun_ResizeBeforeFirstFrame(t *testing.T) {
	host := &fakeHost{sizes: [][2]int{{640, 480}}, closeAt: 1}
	var order []string
	l := New(host, Options{
		OnResize: func(w, h int) { order = append(order, "resize") },
		OnFrame:  func(Frame) { order = append(order, "frame") },
	})

	require.NoError(t, l.Run(context.Background()))
	assert.Equal(t, []string{"resize", "frame"}, order)
}

func TestStop_EndsLoop(t *testing.T) {
	host := &fakeHost{sizes: [][2]int{{800, 600}}}
	var count int
	var l *Loop
	l = New(host, Options{
		OnFrame: func(f Frame) {
			count++
			if f.Index == 2 {
				l.Stop()
				l.Stop()
			}
		},
	})

	require.NoError(t, l.Run(context.Background()))
	assert.Equal(t, 3, count)

	require.NoError(t, l.Run(context.Background()))
	assert.Equal(t, 3, count, "a stopped loop runs no further frames")
}

func TestRun_ContextCancel(t *testing.T) {
	host := &fakeHost{sizes: [][2]int{{800, 600}}}
	ctx, cancel := context.WithCancel(context.Background())

	var count atomic.Int32
	l := New(host, Options{
		OnFrame: func(Frame) {
			if count.Add(1) == 4 {
				cancel()
			}
		},
	})

	err := l.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(4), count.Load())
}

func TestStop_FromAnotherGoroutine(t *testing.T) {
	host := &fakeHost{sizes: [][2]int{{800, 600}}}
	l := New(host, Options{OnFrame: func(Frame) { time.Sleep(time.Millisecond) }})

	go func() {
		time.Sleep(10 * time.Millisecond)
		l.Stop()
	}()

	done := make(chan error, 1)
	go func() { done <- l.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop")
	}
}
