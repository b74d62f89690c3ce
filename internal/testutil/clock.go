// Package testutil provides deterministic clock and randomness sources for tests.
package testutil

import (
	"sync"
	"time"

	"github.com/pdftools/backend/internal/clock"
)

// ManualClock is a clock.Clock whose tickers and timers fire only when
// the test says so.
type ManualClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*manualTicker
	timers  []chan time.Time
	created chan struct{}
}

// NewManualClock returns a clock frozen at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start, created: make(chan struct{}, 64)}
}

// Now returns the frozen time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the frozen time forward. Tickers and timers are not fired.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// NewTicker returns a ticker driven by Tick.
func (c *ManualClock) NewTicker(time.Duration) clock.Ticker {
	t := &manualTicker{c: make(chan time.Time), stopped: make(chan struct{})}
	c.mu.Lock()
	c.tickers = append(c.tickers, t)
	c.mu.Unlock()
	return t
}

// After returns a channel that fires on the next FireTimers call.
func (c *ManualClock) After(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	c.mu.Lock()
	c.timers = append(c.timers, ch)
	c.mu.Unlock()
	select {
	case c.created <- struct{}{}:
	default:
	}
	return ch
}

// Tick delivers one tick to every live ticker and returns after each of
// them has been received. Stopped tickers are skipped. It reports how
// many tickers received the tick.
func (c *ManualClock) Tick() int {
	c.mu.Lock()
	live := make([]*manualTicker, 0, len(c.tickers))
	for _, t := range c.tickers {
		if !t.isStopped() {
			live = append(live, t)
		}
	}
	c.tickers = live
	now := c.now
	c.mu.Unlock()

	delivered := 0
	for _, t := range live {
		select {
		case t.c <- now:
			delivered++
		case <-t.stopped:
		}
	}
	return delivered
}

// WaitForTimer blocks until After has been called, or the timeout passes.
func (c *ManualClock) WaitForTimer(timeout time.Duration) bool {
	select {
	case <-c.created:
		return true
	case <-time.After(timeout):
		return false
	}
}

// FireTimers fires every pending After channel.
func (c *ManualClock) FireTimers() {
	c.mu.Lock()
	timers := c.timers
	c.timers = nil
	now := c.now
	c.mu.Unlock()

	for _, ch := range timers {
		ch <- now
	}
}

type manualTicker struct {
	c       chan time.Time
	once    sync.Once
	stopped chan struct{}
}

func (t *manualTicker) C() <-chan time.Time { return t.c }

func (t *manualTicker) Stop() {
	t.once.Do(func() { close(t.stopped) })
}

func (t *manualTicker) isStopped() bool {
	select {
	case <-t.stopped:
		return true
	default:
		return false
	}
}

// SequenceRandom returns the given values in order, repeating the last one.
type SequenceRandom struct {
	mu     sync.Mutex
	values []float64
	next   int
}

// NewSequenceRandom returns a source yielding values in order.
func NewSequenceRandom(values ...float64) *SequenceRandom {
	return &SequenceRandom{values: values}
}

// Float64 returns the next value of the sequence.
func (r *SequenceRandom) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.values) == 0 {
		return 0
	}
	v := r.values[r.next]
	if r.next < len(r.values)-1 {
		r.next++
	}
	return v
}
