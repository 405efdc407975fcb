package ticker

import (
	"time"

	"github.com/zeusync/timepilot/internal/core/clock"
	"github.com/zeusync/timepilot/internal/core/events/bus"
	"github.com/zeusync/timepilot/internal/core/observability/log"
)

const (
	// DefaultInterval is the wall-clock gap between ticks, roughly 60 Hz.
	DefaultInterval = 17 * time.Millisecond
	// DefaultPeriod is used by AddSchedule when the caller passes 0.
	DefaultPeriod uint64 = 1
)

type Option func(*Ticker)

func WithInterval(d time.Duration) Option {
	return func(t *Ticker) {
		if d > 0 {
			t.interval = d
		}
	}
}

// WithDefaultPeriod changes what AddSchedule(cb, 0) means. Passing the
// interval in milliseconds reproduces the legacy coupling of the two units.
func WithDefaultPeriod(period uint64) Option {
	return func(t *Ticker) {
		if period > 0 {
			t.defaultPeriod = period
		}
	}
}

func WithClock(c clock.Clock) Option {
	return func(t *Ticker) {
		if c != nil {
			t.clock = c
		}
	}
}

func WithLogger(l log.Log) Option {
	return func(t *Ticker) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithBus publishes EventFault for every failed callback.
func WithBus(b bus.EventBus) Option {
	return func(t *Ticker) {
		t.bus = b
	}
}

func WithFaultHandler(fn func(Fault)) Option {
	return func(t *Ticker) {
		t.onFault = fn
	}
}
