package view

import "time"

// DefaultThrottleDelay is the input throttle window used for typed search
// and free-text filters.
const DefaultThrottleDelay = 300 * time.Millisecond

// Throttle is a leading-edge rate limiter: the first event runs immediately
// and opens a window of length delay; events inside the window are dropped,
// not queued. The first event after the window closes runs and opens the next.
//
// Unlike a debounce there is no trailing call. Callers that must not lose the
// last event record state before asking the throttle (see [Table.SearchInput]).
type Throttle struct {
	delay   time.Duration
	now     func() time.Time
	opened  time.Time
	started bool
}

// NewThrottle returns a throttle with the given window. A nil clock uses
// time.Now; a non-positive delay never drops events.
func NewThrottle(delay time.Duration, now func() time.Time) *Throttle {
	if now == nil {
		now = time.Now
	}
	return &Throttle{delay: delay, now: now}
}

// Allow reports whether an event arriving now may run, opening a new window
// when it does.
func (t *Throttle) Allow() bool {
	if t.delay <= 0 {
		return true
	}
	now := t.now()
	if t.started && now.Sub(t.opened) < t.delay {
		return false
	}
	t.opened = now
	t.started = true
	return true
}

// Do runs fn if Allow permits it and reports whether it ran.
func (t *Throttle) Do(fn func()) bool {
	if !t.Allow() {
		return false
	}
	fn()
	return true
}

// Delay returns the window length.
func (t *Throttle) Delay() time.Duration { return t.delay }
