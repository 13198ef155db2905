package loop

import (
	"context"
	"sync"
	"time"
)

// Host is the window the loop runs against.
type Host interface {
	// ShouldClose reports whether the user asked to close the window.
	ShouldClose() bool
	// Size returns the current window size in screen units.
	Size() (width, height int)
}

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Frame is handed to the frame callback once per iteration.
type Frame struct {
	Index   uint64
	Elapsed time.Duration
	Delta   time.Duration
}

type Options struct {
	Clock    Clock
	OnResize func(width, height int)
	OnFrame  func(Frame)
}

// Loop runs a cooperative, single-threaded frame loop. Stop may be called
// from any goroutine; callbacks always run on the goroutine calling Run.
type Loop struct {
	host     Host
	clock    Clock
	onResize func(width, height int)
	onFrame  func(Frame)

	stop     chan struct{}
	stopOnce sync.Once
}

func New(host Host, opts Options) *Loop {
	clock := opts.Clock
	if clock == nil {
		clock = systemClock{}
	}
	return &Loop{
		host:     host,
		clock:    clock,
		onResize: opts.OnResize,
		onFrame:  opts.OnFrame,
		stop:     make(chan struct{}),
	}
}

// Stop ends the loop after the current frame. Safe to call repeatedly.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// Run drives frames until the host closes, Stop is called or ctx ends. It
// returns ctx.Err() on cancellation and nil otherwise.
func (l *Loop) Run(ctx context.Context) error {
	start := l.clock.Now()
	last := start
	lastW, lastH := -1, -1

	for index := uint64(0); ; index++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.stop:
			return nil
		default:
		}

		if l.host.ShouldClose() {
			return nil
		}

		if w, h := l.host.Size(); w != lastW || h != lastH {
			lastW, lastH = w, h
			if l.onResize != nil {
				l.onResize(w, h)
			}
		}

		now := l.clock.Now()
		frame := Frame{
			Index:   index,
			Elapsed: now.Sub(start),
			Delta:   now.Sub(last),
		}
		last = now

		if l.onFrame != nil {
			l.onFrame(frame)
		}
	}
}
