package view

import (
	"testing"
	"time"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestThrottle_LeadingEdge(t *testing.T) {
	clock := newFakeClock()
	th := NewThrottle(300*time.Millisecond, clock.Now)

	steps := []struct {
		advance time.Duration
		want    bool
	}{
		{0, true},                       // first event runs immediately
		{100 * time.Millisecond, false}, // inside window: dropped
		{100 * time.Millisecond, false}, // still inside
		{100 * time.Millisecond, true},  // window closed at 300ms
		{299 * time.Millisecond, false},
		{1 * time.Millisecond, true},
	}

	for i, s := range steps {
		clock.Advance(s.advance)
		if got := th.Allow(); got != s.want {
			t.Errorf("step %d: Allow() = %v, want %v", i, got, s.want)
		}
	}
}

func TestThrottle_DroppedEventsAreNotQueued(t *testing.T) {
	clock := newFakeClock()
	th := NewThrottle(time.Second, clock.Now)

	runs := 0
	for i := 0; i < 10; i++ {
		th.Do(func() { runs++ })
		clock.Advance(10 * time.Millisecond)
	}
	if runs != 1 {
		t.Fatalf("runs inside one window = %d, want 1", runs)
	}

	clock.Advance(time.Second)
	if runs != 1 {
		t.Errorf("runs after window closed without new event = %d, want 1 (no trailing call)", runs)
	}

	th.Do(func() { runs++ })
	if runs != 2 {
		t.Errorf("runs after new event = %d, want 2", runs)
	}
}

func TestThrottle_ZeroDelayAlwaysAllows(t *testing.T) {
	th := NewThrottle(0, nil)
	for i := 0; i < 3; i++ {
		if !th.Allow() {
			t.Fatalf("Allow() = false on call %d with zero delay", i)
		}
	}
}
