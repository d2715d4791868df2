package sessions

import (
	"context"
	"testing"
	"time"
	"wayfinder-route-service/internal/adapters/directions"
	"wayfinder-route-service/internal/adapters/location"
	"wayfinder-route-service/internal/domain"
	"wayfinder-route-service/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCatalog struct {
	buildings map[string][]domain.Destination
}

func (m memoryCatalog) ListCategories(ctx context.Context) ([]domain.Category, error) {
	out := make([]domain.Category, 0, len(m.buildings))
	for name := range m.buildings {
		out = append(out, domain.Category{Name: name})
	}
	return out, nil
}

func (m memoryCatalog) ListBuildings(ctx context.Context, category string) ([]domain.Destination, error) {
	return m.buildings[category], nil
}

var library = domain.Destination{Name: "Central library", Lat: 12.969222, Lng: 79.155937}

func newManager(t *testing.T) *Manager {
	t.Helper()

	m := NewManager(
		directions.NewMockDirectionsProvider(nil),
		memoryCatalog{buildings: map[string][]domain.Destination{"Library": {library}}},
		Options{Location: location.Options{MinInterval: 0}, FetchTimeout: time.Second},
		nil,
	)
	t.Cleanup(m.CloseAll)
	return m
}

func TestSessionRoutesFromPushedFix(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	s, err := m.Create(ctx, true)
	require.NoError(t, err)
	assert.Len(t, s.View().Catalog.Categories, 1)

	require.NoError(t, s.SelectDestination(ctx, library))
	ok, err := s.PushPosition(domain.Position{Lat: 12.9716, Lng: 79.1594})
	require.NoError(t, err)
	require.True(t, ok)

	require.Eventually(t, func() bool {
		return s.View().Route.State == domain.RouteStateSettled
	}, 2*time.Second, 5*time.Millisecond)

	v := s.View()
	require.NotNil(t, v.Route.Route)
	assert.Len(t, v.Route.Route.Polyline, 2)
	assert.Equal(t, library, *v.Route.Destination)
}

func TestSessionWithoutPermissionWaitsForGrant(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	s, err := m.Create(ctx, false)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return s.View().Route.Location == services.LocationDenied
	}, 2*time.Second, 5*time.Millisecond)

	_, err = s.PushPosition(domain.Position{Lat: 1, Lng: 1})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	s.SetPermission(true)
	require.Eventually(t, func() bool { return s.Feed().ActiveRegistrations() == 1 }, 2*time.Second, 5*time.Millisecond)

	ok, err := s.PushPosition(domain.Position{Lat: 12.9716, Lng: 79.1594})
	require.NoError(t, err)
	require.True(t, ok)
	require.Eventually(t, func() bool {
		return s.View().Route.Location == services.LocationOK
	}, 2*time.Second, 5*time.Millisecond)
}

func TestRevokedPermissionFallsBackToAwaitingFix(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	s, err := m.Create(ctx, true)
	require.NoError(t, err)
	require.NoError(t, s.SelectDestination(ctx, library))
	_, err = s.PushPosition(domain.Position{Lat: 12.9716, Lng: 79.1594})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return s.View().Route.State == domain.RouteStateSettled
	}, 2*time.Second, 5*time.Millisecond)

	s.SetPermission(false)
	require.Eventually(t, func() bool {
		v := s.View().Route
		return v.State == domain.RouteStateAwaitingFirstFix && v.Location == services.LocationDenied
	}, 2*time.Second, 5*time.Millisecond)
}

func TestCloseReleasesLocationRegistration(t *testing.T) {
	m := newManager(t)

	s, err := m.Create(context.Background(), true)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return s.Feed().ActiveRegistrations() == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, m.Close(s.ID))
	assert.Zero(t, s.Feed().ActiveRegistrations())
	assert.EqualValues(t, 1, s.Feed().Releases())

	select {
	case <-s.Done():
	default:
		t.Fatal("engine still running after close")
	}

	_, err = m.Get(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.Close(s.ID), ErrSessionNotFound)
}

func TestCloseAllStopsEverything(t *testing.T) {
	m := newManager(t)

	a, err := m.Create(context.Background(), true)
	require.NoError(t, err)
	b, err := m.Create(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())

	m.CloseAll()
	assert.Zero(t, m.Len())
	<-a.Done()
	<-b.Done()

	_, err = m.Create(context.Background(), true)
	assert.Error(t, err)
}

func TestSelectCategoryThroughSession(t *testing.T) {
	m := newManager(t)

	s, err := m.Create(context.Background(), true)
	require.NoError(t, err)

	got := s.SelectCategory(context.Background(), "Library")
	assert.Equal(t, []domain.Destination{library}, got)
	assert.Equal(t, "Library", s.View().Catalog.Selected)
}
