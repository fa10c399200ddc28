package timectrl

import (
	"testing"
	"time"
)

func TestManualClockNowAndAdvance(t *testing.T) {
	start := time.Unix(1000, 0)
	c := NewManualClock(start)

	if got := c.Now(); !got.Equal(start) {
		t.Errorf("Now = %v, want %v", got, start)
	}

	c.Advance(3 * time.Second)
	if got := c.Now(); !got.Equal(start.Add(3 * time.Second)) {
		t.Errorf("Now after Advance = %v", got)
	}
}

func TestManualTickerFiresOnAdvance(t *testing.T) {
	c := NewManualClock(time.Unix(1000, 0))
	ticker := c.NewTicker(time.Second)
	defer ticker.Stop()

	c.Advance(time.Second)
	select {
	case got := <-ticker.C():
		if !got.Equal(time.Unix(1001, 0)) {
			t.Errorf("tick time = %v, want %v", got, time.Unix(1001, 0))
		}
	default:
		t.Fatal("no tick delivered after Advance")
	}
}

func TestManualTickerCoalesces(t *testing.T) {
	c := NewManualClock(time.Unix(1000, 0))
	ticker := c.NewTicker(time.Second)
	defer ticker.Stop()

	// Two advances without draining: only one tick is buffered.
	c.Advance(time.Second)
	c.Advance(time.Second)

	<-ticker.C()
	select {
	case extra := <-ticker.C():
		t.Errorf("unexpected second buffered tick at %v", extra)
	default:
	}
}

func TestManualTickerStop(t *testing.T) {
	c := NewManualClock(time.Unix(1000, 0))
	ticker := c.NewTicker(time.Second)
	ticker.Stop()

	c.Advance(time.Second)
	select {
	case got := <-ticker.C():
		t.Errorf("stopped ticker fired at %v", got)
	default:
	}
}

func TestManualClockMultipleTickers(t *testing.T) {
	c := NewManualClock(time.Unix(1000, 0))
	a := c.NewTicker(time.Second)
	b := c.NewTicker(time.Second)
	defer a.Stop()
	defer b.Stop()

	c.Advance(time.Second)

	for name, tk := range map[string]Ticker{"a": a, "b": b} {
		select {
		case <-tk.C():
		default:
			t.Errorf("ticker %s did not fire", name)
		}
	}
}

func TestWallClock(t *testing.T) {
	var c Clock = WallClock{}

	before := time.Now()
	got := c.Now()
	if got.Before(before.Add(-time.Second)) || got.After(before.Add(time.Second)) {
		t.Errorf("WallClock.Now = %v, not near %v", got, before)
	}

	ticker := c.NewTicker(time.Millisecond)
	defer ticker.Stop()
	select {
	case <-ticker.C():
	case <-time.After(2 * time.Second):
		t.Fatal("wall ticker did not fire")
	}
}
