// Package ticker implements the game's fixed-step scheduler: one interval
// timer advancing a tick counter, and a table of callbacks that each fire on
// every Nth tick.
package ticker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/zeusync/timepilot/internal/core/clock"
	"github.com/zeusync/timepilot/internal/core/events/bus"
	"github.com/zeusync/timepilot/internal/core/observability/log"
)

// EventFault is the bus event type published when a scheduled callback fails.
const EventFault = "ticker.fault"

// EventID identifies a scheduled callback. IDs start at 1 and are never reused.
type EventID uint64

// Callback runs on every tick whose count is a multiple of its period.
type Callback func(tick uint64) error

type State uint8

const (
	StateStopped State = iota
	StateRunning
)

func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "stopped"
}

// Fault describes a callback that returned an error or panicked.
type Fault struct {
	EventID EventID
	Tick    uint64
	Err     error
}

func (f Fault) Error() string {
	return fmt.Sprintf("event %d on tick %d: %v", f.EventID, f.Tick, f.Err)
}

func (f Fault) Unwrap() error { return f.Err }

type event struct {
	id       EventID
	callback Callback
	period   uint64
}

// Ticker is a multiplexed fixed-interval scheduler. Callbacks run one after
// another on a single goroutine; a slow callback delays the rest of its tick
// and the next tick.
type Ticker struct {
	interval      time.Duration
	defaultPeriod uint64
	clock         clock.Clock
	logger        log.Log
	bus           bus.EventBus
	onFault       func(Fault)

	// dispatchMu serializes ticks between the timer loop and Step callers.
	dispatchMu sync.Mutex

	mu       sync.Mutex
	schedule []event
	nextID   EventID
	ticks    uint64
	running  bool
	timer    clock.Ticker
	stopCh   chan struct{}
	done     chan struct{}
}

// New creates a stopped ticker.
func New(opts ...Option) *Ticker {
	t := &Ticker{
		interval:      DefaultInterval,
		defaultPeriod: DefaultPeriod,
		clock:         clock.Real(),
		logger:        log.NewNop(),
		done:          make(chan struct{}),
	}
	close(t.done)

	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.With(log.Component("ticker"))

	return t
}

// Start begins firing ticks every interval. Starting a running ticker is
// rejected rather than creating a second timer.
func (t *Ticker) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return ErrAlreadyRunning
	}

	timer := t.clock.NewTicker(t.interval)
	t.timer = timer
	t.stopCh = make(chan struct{})
	t.done = make(chan struct{})
	t.running = true

	go t.loop(timer, t.stopCh, t.done)

	t.logger.Info("Ticker started",
		log.Duration("interval", t.interval),
		log.Int("events", len(t.schedule)))

	return nil
}

// Stop cancels future ticks. A tick already being dispatched runs to
// completion; wait on Done to observe the loop exit.
func (t *Ticker) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return ErrNotRunning
	}

	t.running = false
	t.timer.Stop()
	close(t.stopCh)

	t.logger.Info("Ticker stopped", log.Tick(t.ticks))

	return nil
}

// Done is closed once the timer loop has exited. It is already closed for a
// ticker that was never started.
func (t *Ticker) Done() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// Run starts the ticker and blocks until ctx is cancelled, then stops it.
func (t *Ticker) Run(ctx context.Context) error {
	if err := t.Start(); err != nil {
		return err
	}
	done := t.Done()

	select {
	case <-ctx.Done():
	case <-done:
		return nil
	}

	if err := t.Stop(); err != nil && !errors.Is(err, ErrNotRunning) {
		return err
	}
	<-done
	return nil
}

func (t *Ticker) loop(timer clock.Ticker, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		case <-timer.C():
			select {
			case <-stop:
				return
			default:
			}
			t.Step()
		}
	}
}

// Step advances the counter by one and dispatches every due callback before
// returning the new tick count. Callbacks must not call Step themselves.
func (t *Ticker) Step() uint64 {
	t.dispatchMu.Lock()
	defer t.dispatchMu.Unlock()

	t.mu.Lock()
	t.ticks++
	tick := t.ticks
	due := make([]event, 0, len(t.schedule))
	for _, ev := range t.schedule {
		if tick%ev.period == 0 {
			due = append(due, ev)
		}
	}
	t.mu.Unlock()

	for _, ev := range due {
		// an earlier callback in this tick may have removed it
		if !t.scheduled(ev.id) {
			continue
		}
		t.invoke(ev, tick)
	}

	return tick
}

func (t *Ticker) invoke(ev event, tick uint64) {
	err := safeCall(ev.callback, tick)
	if err == nil {
		return
	}

	fault := Fault{EventID: ev.id, Tick: tick, Err: err}
	t.logger.Error("Scheduled callback failed",
		log.Uint64("event_id", uint64(ev.id)),
		log.Tick(tick),
		log.Error(err))

	if t.bus != nil {
		if pubErr := t.bus.Publish(bus.NewEvent(EventFault, "ticker", tick, fault)); pubErr != nil {
			t.logger.Warn("Fault subscribers failed", log.Tick(tick), log.Error(pubErr))
		}
	}
	if t.onFault != nil {
		t.onFault(fault)
	}
}

func safeCall(cb Callback, tick uint64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrCallbackPanic, r)
		}
	}()
	return cb(tick)
}

// AddSchedule registers cb to run every period ticks, aligned to the absolute
// tick count. A period of 0 selects the default period.
func (t *Ticker) AddSchedule(cb Callback, period uint64) EventID {
	t.mu.Lock()
	defer t.mu.Unlock()

	if period == 0 {
		period = t.defaultPeriod
	}
	t.nextID++
	id := t.nextID
	t.schedule = append(t.schedule, event{id: id, callback: cb, period: period})

	t.logger.Debug("Schedule added",
		log.Uint64("event_id", uint64(id)),
		log.Uint64("period", period))

	return id
}

// RemoveSchedule unregisters id. It reports true whether or not id was
// registered, so repeated removal is harmless.
func (t *Ticker) RemoveSchedule(id EventID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, ev := range t.schedule {
		if ev.id == id {
			t.schedule = append(t.schedule[:i:i], t.schedule[i+1:]...)
			break
		}
	}
	return true
}

func (t *Ticker) ClearSchedule() {
	t.mu.Lock()
	t.schedule = nil
	t.mu.Unlock()
}

// ClearTicks resets the counter to zero without touching the timer.
func (t *Ticker) ClearTicks() {
	t.mu.Lock()
	t.ticks = 0
	t.mu.Unlock()
}

func (t *Ticker) Ticks() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ticks
}

func (t *Ticker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return StateRunning
	}
	return StateStopped
}

func (t *Ticker) ScheduleCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.schedule)
}

func (t *Ticker) Interval() time.Duration {
	return t.interval
}

func (t *Ticker) scheduled(id EventID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, ev := range t.schedule {
		if ev.id == id {
			return true
		}
	}
	return false
}
