package wizard

import (
	"context"
	"time"

	"github.com/pdftools/backend/internal/clock"
)

// Simulation defaults match the timing of the original progress animation.
const (
	DefaultTickInterval    = 200 * time.Millisecond
	DefaultMaxIncrement    = 15.0
	DefaultCompletionDelay = 500 * time.Millisecond
)

// SimulationConfig tunes the fake progress animation.
type SimulationConfig struct {
	Interval        time.Duration // time between ticks
	MaxIncrement    float64       // each tick adds a value in [0, MaxIncrement)
	CompletionDelay time.Duration // pause at 100% before the complete step
}

func (c SimulationConfig) withDefaults() SimulationConfig {
	if c.Interval <= 0 {
		c.Interval = DefaultTickInterval
	}
	if c.MaxIncrement <= 0 {
		c.MaxIncrement = DefaultMaxIncrement
	}
	if c.CompletionDelay <= 0 {
		c.CompletionDelay = DefaultCompletionDelay
	}
	return c
}

// simulate advances progress on every tick until it reaches 100, then
// waits CompletionDelay and completes the run. It returns early when ctx
// is cancelled or the run is superseded.
func (w *Wizard) simulate(ctx context.Context, run int, ticker clock.Ticker) {
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			done, current := w.advance(run)
			if !current {
				return
			}
			if done {
				ticker.Stop()
				select {
				case <-ctx.Done():
					return
				case <-w.clock.After(w.sim.CompletionDelay):
				}
				w.complete(run)
				return
			}
		}
	}
}
