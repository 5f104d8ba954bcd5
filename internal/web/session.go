package web

// session.go keeps one view.Table per viewer.
//
// A Table is single-threaded, so every session serialises access with its
// own mutex; the store lock only guards the session map. Sessions expire
// after an idle TTL and are removed by a background sweeper. When the store
// is full, the least recently used session is evicted.

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/tablesorter/internal/view"
)

// TableFactory builds a fresh table for a new session. It receives the
// renderer and the change listener the session needs wired in.
type TableFactory func(r view.Renderer, onChange func(view.ChangeEvent)) (*view.Table, error)

// Session is one viewer's table.
type Session struct {
	ID      string
	Created time.Time

	mu       sync.Mutex
	table    *view.Table
	frames   *view.FrameRecorder
	lastSeen time.Time

	listenerMu sync.Mutex
	listeners  []chan view.ChangeEvent
	closed     bool
}

// State is a consistent snapshot of a session's table.
type State struct {
	Frame   view.Frame   // last rendered frame
	Pending bool         // a throttled input has not been rendered yet
	Search  string       // current search, which may be ahead of Frame
	Filters view.Filters // current filters, which may be ahead of Frame
	Records int          // backing data length, ignoring filters
	Options view.Options
}

// Do runs fn with exclusive access to the session's table and returns the
// resulting state. The state is captured even when fn fails.
func (s *Session) Do(fn func(t *view.Table) error) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := fn(s.table)
	return State{
		Frame:   s.frames.Last(),
		Pending: s.table.Pending(),
		Search:  s.table.Search(),
		Filters: s.table.Filters(),
		Records: s.table.Len(),
		Options: s.table.Options(),
	}, err
}

// touch records activity for TTL accounting. Callers hold the store lock.
func (s *Session) touch(now time.Time) {
	s.lastSeen = now
}

// Subscribe returns a channel of change events and a cancel function.
// Slow subscribers miss events rather than block the table.
func (s *Session) Subscribe() (<-chan view.ChangeEvent, func()) {
	ch := make(chan view.ChangeEvent, 10)

	s.listenerMu.Lock()
	if s.closed {
		close(ch)
	} else {
		s.listeners = append(s.listeners, ch)
	}
	s.listenerMu.Unlock()

	cancel := func() {
		s.listenerMu.Lock()
		defer s.listenerMu.Unlock()
		for i, l := range s.listeners {
			if l == ch {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				close(ch)
				return
			}
		}
	}
	return ch, cancel
}

// notify fans a change event out to subscribers.
func (s *Session) notify(ev view.ChangeEvent) {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()

	for _, ch := range s.listeners {
		select {
		case ch <- ev:
		default:
			// Listener is slow, skip this update
		}
	}
}

// close ends every subscription.
func (s *Session) close() {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()

	for _, ch := range s.listeners {
		close(ch)
	}
	s.listeners = nil
	s.closed = true
}

// SessionStore holds live sessions keyed by UUID.
type SessionStore struct {
	factory TableFactory
	ttl     time.Duration
	max     int
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionStore creates a store. A non-positive max means unlimited; a
// nil clock uses time.Now.
func NewSessionStore(factory TableFactory, ttl time.Duration, max int, now func() time.Time) *SessionStore {
	if now == nil {
		now = time.Now
	}
	return &SessionStore{
		factory:  factory,
		ttl:      ttl,
		max:      max,
		now:      now,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session with its own table.
func (st *SessionStore) Create() (*Session, error) {
	now := st.now()
	sess := &Session{
		ID:       uuid.NewString(),
		Created:  now,
		frames:   &view.FrameRecorder{},
		lastSeen: now,
	}

	table, err := st.factory(sess.frames, sess.notify)
	if err != nil {
		return nil, fmt.Errorf("create table: %w", err)
	}
	sess.table = table

	st.mu.Lock()
	if st.max > 0 && len(st.sessions) >= st.max {
		st.evictOldestLocked()
	}
	st.sessions[sess.ID] = sess
	st.mu.Unlock()

	return sess, nil
}

// Get returns a live session and marks it active.
func (st *SessionStore) Get(id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	sess, ok := st.sessions[id]
	if !ok || st.expiredLocked(sess) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	sess.touch(st.now())
	return sess, nil
}

// Delete removes a session. Unknown IDs are ignored.
func (st *SessionStore) Delete(id string) {
	st.mu.Lock()
	sess, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()

	if ok {
		sess.close()
	}
}

// Len returns the number of sessions held, expired or not.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Each calls fn for every live session. fn must not call back into the store.
func (st *SessionStore) Each(fn func(*Session)) {
	st.mu.RLock()
	live := make([]*Session, 0, len(st.sessions))
	for _, sess := range st.sessions {
		if !st.expiredLocked(sess) {
			live = append(live, sess)
		}
	}
	st.mu.RUnlock()

	for _, sess := range live {
		fn(sess)
	}
}

// Sweep removes expired sessions and returns how many were removed.
func (st *SessionStore) Sweep() int {
	st.mu.Lock()
	var expired []*Session
	for id, sess := range st.sessions {
		if st.expiredLocked(sess) {
			expired = append(expired, sess)
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()

	for _, sess := range expired {
		sess.close()
	}
	return len(expired)
}

// StartSweeper removes expired sessions every interval until ctx is done.
func (st *SessionStore) StartSweeper(ctx context.Context, interval time.Duration) {
	slog.Info("session sweeper started", "interval", interval, "ttl", st.ttl)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case <-ticker.C:
			if n := st.Sweep(); n > 0 {
				slog.Info("expired sessions removed", "count", n, "remaining", st.Len())
			}
		}
	}
}

func (st *SessionStore) expiredLocked(sess *Session) bool {
	return st.ttl > 0 && st.now().Sub(sess.lastSeen) > st.ttl
}

func (st *SessionStore) evictOldestLocked() {
	var oldest *Session
	for _, sess := range st.sessions {
		if oldest == nil || sess.lastSeen.Before(oldest.lastSeen) {
			oldest = sess
		}
	}
	if oldest != nil {
		delete(st.sessions, oldest.ID)
		oldest.close()
		slog.Info("session evicted", "session", oldest.ID)
	}
}
