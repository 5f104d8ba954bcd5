package web

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/tablesorter/internal/view"
)

func testFactory(r view.Renderer, onChange func(view.ChangeEvent)) (*view.Table, error) {
	return view.New(testOptions(), r, view.OnChange(onChange))
}

func TestSessionStore_CreateAndGet(t *testing.T) {
	store := NewSessionStore(testFactory, time.Minute, 0, nil)

	sess, err := store.Create()
	require.NoError(t, err)
	_, err = uuid.Parse(sess.ID)
	require.NoError(t, err)

	got, err := store.Get(sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, got)

	st, err := got.Do(func(*view.Table) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, 12, st.Records)
	assert.Len(t, st.Frame.Rows, 10, "the initial render is recorded")

	_, err = store.Get("not-a-uuid")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = store.Get(uuid.NewString())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStore_FactoryError(t *testing.T) {
	boom := errors.New("boom")
	store := NewSessionStore(func(view.Renderer, func(view.ChangeEvent)) (*view.Table, error) {
		return nil, boom
	}, time.Minute, 0, nil)

	_, err := store.Create()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, store.Len())
}

func TestSessionStore_ExpiresIdleSessions(t *testing.T) {
	clock := newFakeClock()
	store := NewSessionStore(testFactory, 10*time.Minute, 0, clock.Now)

	active, err := store.Create()
	require.NoError(t, err)
	idle, err := store.Create()
	require.NoError(t, err)

	clock.Advance(6 * time.Minute)
	_, err = store.Get(active.ID)
	require.NoError(t, err)

	clock.Advance(6 * time.Minute)
	_, err = store.Get(idle.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound, "idle past the TTL")
	assert.Equal(t, 2, store.Len(), "expired sessions stay until swept")

	var live []string
	store.Each(func(s *Session) { live = append(live, s.ID) })
	assert.Equal(t, []string{active.ID}, live)

	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, 0, store.Sweep())
}

func TestSessionStore_EvictsLeastRecentlyUsed(t *testing.T) {
	clock := newFakeClock()
	store := NewSessionStore(testFactory, time.Hour, 2, clock.Now)

	first, err := store.Create()
	require.NoError(t, err)
	clock.Advance(time.Second)
	second, err := store.Create()
	require.NoError(t, err)
	clock.Advance(time.Second)

	// Touch the first so the second becomes the oldest
	_, err = store.Get(first.ID)
	require.NoError(t, err)
	clock.Advance(time.Second)

	third, err := store.Create()
	require.NoError(t, err)

	assert.Equal(t, 2, store.Len())
	_, err = store.Get(second.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = store.Get(first.ID)
	assert.NoError(t, err)
	_, err = store.Get(third.ID)
	assert.NoError(t, err)
}

func TestSession_SubscribeReceivesChanges(t *testing.T) {
	store := NewSessionStore(testFactory, time.Hour, 0, nil)
	sess, err := store.Create()
	require.NoError(t, err)

	events, cancel := sess.Subscribe()
	defer cancel()

	_, err = sess.Do(func(t *view.Table) error { return t.SetFilter("status", "off") })
	require.NoError(t, err)

	select {
	case ev := <-events:
		assert.Equal(t, view.ChangeEvent{CurrentPage: 1, TotalRecords: 4, ActiveFilterCount: 1}, ev)
	case <-time.After(time.Second):
		t.Fatal("no change event")
	}
}

func TestSession_SlowSubscriberDoesNotBlock(t *testing.T) {
	store := NewSessionStore(testFactory, time.Hour, 0, nil)
	sess, err := store.Create()
	require.NoError(t, err)

	_, cancel := sess.Subscribe()
	defer cancel()

	for range 50 {
		_, err := sess.Do(func(t *view.Table) error { return t.Refresh() })
		require.NoError(t, err)
	}
}

func TestSession_DeleteClosesSubscriptions(t *testing.T) {
	store := NewSessionStore(testFactory, time.Hour, 0, nil)
	sess, err := store.Create()
	require.NoError(t, err)

	events, cancel := sess.Subscribe()
	store.Delete(sess.ID)

	_, ok := <-events
	assert.False(t, ok, "channel closed")
	cancel() // safe after close

	late, _ := sess.Subscribe()
	_, ok = <-late
	assert.False(t, ok, "subscribing to a closed session yields a closed channel")

	store.Delete(sess.ID) // unknown IDs are ignored
}

func TestSession_DoReportsErrorWithState(t *testing.T) {
	store := NewSessionStore(testFactory, time.Hour, 0, nil)
	sess, err := store.Create()
	require.NoError(t, err)

	st, err := sess.Do(func(t *view.Table) error { return t.SetSort("nope", view.Asc) })
	assert.ErrorIs(t, err, view.ErrUnknownColumn)
	assert.Equal(t, 12, st.Records)
	assert.False(t, st.Pending)
}
