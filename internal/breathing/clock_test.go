package breathing

import (
	"sync"
	"time"
)

// fakeClock fires tickers only when advanced. Advance delivers each due tick
// synchronously to the ticker's reader, in time order.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(0, 0)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) NewTicker(d time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTicker{
		d:       d,
		next:    f.now.Add(d),
		c:       make(chan time.Time),
		stopped: make(chan struct{}),
	}
	f.tickers = append(f.tickers, t)
	return t
}

// liveTickers counts tickers that have not been stopped.
func (f *fakeClock) liveTickers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.tickers {
		if !t.isStopped() {
			n++
		}
	}
	return n
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	f.mu.Unlock()

	for {
		f.mu.Lock()
		var due *fakeTicker
		for _, t := range f.tickers {
			if t.isStopped() || t.next.After(target) {
				continue
			}
			if due == nil || t.next.Before(due.next) {
				due = t
			}
		}
		if due == nil {
			f.now = target
			f.mu.Unlock()
			return
		}
		f.now = due.next
		due.next = due.next.Add(due.d)
		at := f.now
		f.mu.Unlock()

		select {
		case due.c <- at:
		case <-due.stopped:
		}
	}
}

type fakeTicker struct {
	d       time.Duration
	next    time.Time
	c       chan time.Time
	stopped chan struct{}
	once    sync.Once
}

func (t *fakeTicker) C() <-chan time.Time { return t.c }

func (t *fakeTicker) Stop() {
	t.once.Do(func() { close(t.stopped) })
}

func (t *fakeTicker) isStopped() bool {
	select {
	case <-t.stopped:
		return true
	default:
		return false
	}
}

// gateClock wraps fakeClock so that Stop on the first ticker it hands out
// signals entered and then blocks until release is closed.
type gateClock struct {
	*fakeClock
	entered chan struct{}
	release chan struct{}

	mu    sync.Mutex
	gated bool
}

func newGateClock() *gateClock {
	return &gateClock{
		fakeClock: newFakeClock(),
		entered:   make(chan struct{}),
		release:   make(chan struct{}),
	}
}

func (g *gateClock) NewTicker(d time.Duration) Ticker {
	t := g.fakeClock.NewTicker(d).(*fakeTicker)
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gated {
		return t
	}
	g.gated = true
	return &gatedTicker{fakeTicker: t, gate: g}
}

type gatedTicker struct {
	*fakeTicker
	gate *gateClock
	once sync.Once
}

func (t *gatedTicker) Stop() {
	t.once.Do(func() {
		close(t.gate.entered)
		<-t.gate.release
	})
	t.fakeTicker.Stop()
}
