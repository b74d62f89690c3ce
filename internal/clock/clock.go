// Package clock abstracts timers and randomness so the progress
// simulation can be driven deterministically in tests.
package clock

import (
	"math/rand"
	"time"
)

// Ticker delivers ticks on C until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock creates timers.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
	After(d time.Duration) <-chan time.Time
}

// Random yields floats in [0, 1).
type Random interface {
	Float64() float64
}

// Real returns the wall clock.
func Real() Clock { return realClock{} }

// DefaultRandom returns the process-wide random source.
func DefaultRandom() Random { return globalRandom{} }

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

func (realClock) NewTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

type realTicker struct {
	t *time.Ticker
}

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }

type globalRandom struct{}

func (globalRandom) Float64() float64 { return rand.Float64() }
