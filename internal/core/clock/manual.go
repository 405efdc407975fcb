package clock

import (
	"sync"
	"time"
)

// Manual is a virtual clock. Time only moves when Advance or Set is called,
// and tickers fire from inside those calls.
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*manualTicker
}

// NewManual creates a manual clock starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) NewTicker(d time.Duration) Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTicker{
		owner:    m,
		c:        make(chan time.Time, 1),
		interval: d,
		next:     m.now.Add(d),
	}
	m.tickers = append(m.tickers, t)
	return t
}

// Advance moves time forward by d and fires every ticker whose deadline was
// reached. A ticker whose channel is still full drops the tick.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.setLocked(m.now.Add(d))
	m.mu.Unlock()
}

// Set jumps to t. Moving backwards never fires tickers.
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	m.setLocked(t)
	m.mu.Unlock()
}

// Tickers reports how many tickers are still active.
func (m *Manual) Tickers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tickers)
}

func (m *Manual) setLocked(t time.Time) {
	m.now = t
	for _, tk := range m.tickers {
		fired := false
		for !tk.next.After(t) {
			tk.next = tk.next.Add(tk.interval)
			fired = true
		}
		if fired {
			select {
			case tk.c <- t:
			default:
			}
		}
	}
}

func (m *Manual) remove(t *manualTicker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, candidate := range m.tickers {
		if candidate == t {
			m.tickers = append(m.tickers[:i:i], m.tickers[i+1:]...)
			return
		}
	}
}

type manualTicker struct {
	owner    *Manual
	c        chan time.Time
	interval time.Duration
	next     time.Time
	stopOnce sync.Once
}

func (t *manualTicker) C() <-chan time.Time { return t.c }

func (t *manualTicker) Stop() {
	t.stopOnce.Do(func() { t.owner.remove(t) })
}
