package location

import (
	"context"
	"testing"
	"time"
	"wayfinder-route-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newFeed(t *testing.T, granted bool) (*DeviceFeed, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)}
	f := NewDeviceFeed(granted, Options{MinInterval: time.Second, MinDisplacementMeters: 5}, WithClock(clock.Now))
	return f, clock
}

func recv(t *testing.T, ch <-chan domain.Position) domain.Position {
	t.Helper()
	select {
	case p, ok := <-ch:
		require.True(t, ok, "channel closed")
		return p
	case <-time.After(time.Second):
		t.Fatal("no position delivered")
		return domain.Position{}
	}
}

func TestSubscribeWithoutPermission(t *testing.T) {
	f, _ := newFeed(t, false)

	_, err := f.Subscribe(context.Background())
	require.ErrorIs(t, err, domain.ErrPermissionDenied)
	assert.Zero(t, f.ActiveRegistrations())
}

func TestUnsubscribeReleasesExactlyOnce(t *testing.T) {
	f, _ := newFeed(t, true)

	sub, err := f.Subscribe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, f.ActiveRegistrations())

	sub.Unsubscribe()
	assert.Equal(t, 0, f.ActiveRegistrations())
	assert.EqualValues(t, 1, f.Releases())

	sub.Unsubscribe()
	assert.EqualValues(t, 1, f.Releases())

	_, ok := <-sub.Positions()
	assert.False(t, ok)
}

func TestContextCancelReleases(t *testing.T) {
	f, _ := newFeed(t, true)
	ctx, cancel := context.WithCancel(context.Background())

	sub, err := f.Subscribe(ctx)
	require.NoError(t, err)

	cancel()
	require.Eventually(t, func() bool { return f.ActiveRegistrations() == 0 }, time.Second, 5*time.Millisecond)

	sub.Unsubscribe()
	assert.EqualValues(t, 1, f.Releases())
}

func TestPushDeliversLatestOnly(t *testing.T) {
	f, clock := newFeed(t, true)
	sub, err := f.Subscribe(context.Background())
	require.NoError(t, err)
	defer sub.Unsubscribe()

	for i := range 3 {
		clock.Advance(2 * time.Second)
		ok, err := f.Push(domain.Position{Lat: 12.97 + float64(i)*0.001, Lng: 79.15})
		require.NoError(t, err)
		require.True(t, ok)
	}

	got := recv(t, sub.Positions())
	assert.InDelta(t, 12.972, got.Lat, 1e-9)
	assert.Equal(t, clock.Now(), got.RecordedAt)
}

func TestPushThrottle(t *testing.T) {
	f, clock := newFeed(t, true)
	start := domain.Position{Lat: 12.9716, Lng: 79.1594}

	ok, err := f.Push(start)
	require.NoError(t, err)
	require.True(t, ok)

	// same spot, too soon
	clock.Advance(200 * time.Millisecond)
	ok, err = f.Push(domain.Position{Lat: 12.97161, Lng: 79.1594})
	require.NoError(t, err)
	assert.False(t, ok)

	// about 11 m north, still too soon: displacement wins
	ok, err = f.Push(domain.Position{Lat: 12.9717, Lng: 79.1594})
	require.NoError(t, err)
	assert.True(t, ok)

	// no movement but the interval has passed
	clock.Advance(time.Second)
	ok, err = f.Push(domain.Position{Lat: 12.9717, Lng: 79.1594})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPushRejectsInvalidAndDenied(t *testing.T) {
	f, _ := newFeed(t, true)

	_, err := f.Push(domain.Position{Lat: 91, Lng: 0})
	assert.ErrorIs(t, err, ErrInvalidPosition)

	f.SetPermission(false)
	_, err = f.Push(domain.Position{Lat: 1, Lng: 1})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestSubscribeReplaysLastKnownFix(t *testing.T) {
	f, _ := newFeed(t, true)
	_, err := f.Push(domain.Position{Lat: 12.9716, Lng: 79.1594})
	require.NoError(t, err)

	sub, err := f.Subscribe(context.Background())
	require.NoError(t, err)
	defer sub.Unsubscribe()

	got := recv(t, sub.Positions())
	assert.True(t, got.SameFix(domain.Position{Lat: 12.9716, Lng: 79.1594}))
}

func TestRevokeClosesRegistrations(t *testing.T) {
	f, _ := newFeed(t, true)

	a, err := f.Subscribe(context.Background())
	require.NoError(t, err)
	b, err := f.Subscribe(context.Background())
	require.NoError(t, err)

	f.SetPermission(false)
	assert.Zero(t, f.ActiveRegistrations())
	assert.EqualValues(t, 2, f.Releases())

	_, ok := <-a.Positions()
	assert.False(t, ok)

	// already released by the revoke
	a.Unsubscribe()
	b.Unsubscribe()
	assert.EqualValues(t, 2, f.Releases())

	f.SetPermission(true)
	c, err := f.Subscribe(context.Background())
	require.NoError(t, err)
	c.Unsubscribe()
	assert.EqualValues(t, 3, f.Releases())
}
