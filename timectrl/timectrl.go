package timectrl

import (
	"sync"
	"time"
)

// Clock abstracts wall-clock access and tick scheduling so the tracking
// loop can be driven deterministically in tests instead of by real time.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
	// NewTicker returns a ticker firing every interval.
	NewTicker(interval time.Duration) Ticker
}

// Ticker delivers tick instants on C until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// WallClock is the production Clock backed by the time package.
type WallClock struct{}

// Now returns time.Now.
func (WallClock) Now() time.Time { return time.Now() }

// NewTicker wraps time.NewTicker.
func (WallClock) NewTicker(interval time.Duration) Ticker {
	return &wallTicker{t: time.NewTicker(interval)}
}

type wallTicker struct {
	t *time.Ticker
}

func (w *wallTicker) C() <-chan time.Time { return w.t.C }
func (w *wallTicker) Stop()               { w.t.Stop() }

// ManualClock is a test clock whose time only moves when Advance is
// called. Each Advance delivers exactly one tick to every live ticker,
// so a test controls tick cadence precisely.
type ManualClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*manualTicker
}

// NewManualClock constructs a manual clock starting at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the clock's current time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves time forward by d and fires every live ticker once.
// Delivery is non-blocking: a ticker whose consumer has not drained the
// previous tick is skipped, mirroring time.Ticker's coalescing.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	tickers := append([]*manualTicker(nil), c.tickers...)
	c.mu.Unlock()

	for _, t := range tickers {
		select {
		case t.ch <- now:
		default:
		}
	}
}

// NewTicker registers a ticker with the clock. The interval is ignored;
// ticks fire on Advance.
func (c *ManualClock) NewTicker(interval time.Duration) Ticker {
	t := &manualTicker{clock: c, ch: make(chan time.Time, 1)}
	c.mu.Lock()
	c.tickers = append(c.tickers, t)
	c.mu.Unlock()
	return t
}

type manualTicker struct {
	clock *ManualClock
	ch    chan time.Time
}

func (t *manualTicker) C() <-chan time.Time { return t.ch }

func (t *manualTicker) Stop() {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	for i, other := range t.clock.tickers {
		if other == t {
			t.clock.tickers = append(t.clock.tickers[:i], t.clock.tickers[i+1:]...)
			return
		}
	}
}
