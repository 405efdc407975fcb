package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestManualTickerFiresOnDeadline(t *testing.T) {
	m := NewManual(epoch)
	tk := m.NewTicker(17 * time.Millisecond)
	defer tk.Stop()

	m.Advance(16 * time.Millisecond)
	select {
	case <-tk.C():
		t.Fatal("ticker fired early")
	default:
	}

	m.Advance(time.Millisecond)
	select {
	case at := <-tk.C():
		assert.Equal(t, epoch.Add(17*time.Millisecond), at)
	default:
		t.Fatal("ticker did not fire on deadline")
	}
}

func TestManualTickerCoalescesMissedTicks(t *testing.T) {
	m := NewManual(epoch)
	tk := m.NewTicker(10 * time.Millisecond)
	defer tk.Stop()

	m.Advance(55 * time.Millisecond)
	<-tk.C()
	select {
	case <-tk.C():
		t.Fatal("missed ticks should be dropped, not queued")
	default:
	}

	// next deadline is 60ms
	m.Advance(5 * time.Millisecond)
	select {
	case <-tk.C():
	default:
		t.Fatal("ticker lost its phase after coalescing")
	}
}

func TestManualStopDetaches(t *testing.T) {
	m := NewManual(epoch)
	tk := m.NewTicker(time.Millisecond)
	require.Equal(t, 1, m.Tickers())

	tk.Stop()
	tk.Stop()
	assert.Equal(t, 0, m.Tickers())

	m.Advance(time.Second)
	select {
	case <-tk.C():
		t.Fatal("stopped ticker fired")
	default:
	}
}

func TestManualSetBackwardsDoesNotFire(t *testing.T) {
	m := NewManual(epoch)
	tk := m.NewTicker(time.Millisecond)
	defer tk.Stop()

	m.Set(epoch.Add(-time.Hour))
	assert.Equal(t, epoch.Add(-time.Hour), m.Now())
	select {
	case <-tk.C():
		t.Fatal("fired while moving backwards")
	default:
	}
}

func TestRealClockTicks(t *testing.T) {
	tk := Real().NewTicker(time.Millisecond)
	defer tk.Stop()
	select {
	case <-tk.C():
	case <-time.After(time.Second):
		t.Fatal("real ticker never fired")
	}
}
