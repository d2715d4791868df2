package directions

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
	"wayfinder-route-service/internal/domain"
)

// MockRoute is a canned answer for one origin/destination pair.
type MockRoute struct {
	Origin      domain.Position
	Destination domain.Destination
	Route       domain.RouteSummary
	Err         error
}

// MockDirectionsProvider answers from a fixed table. Pairs not in the table
// get a straight two-point route unless Strict is set.
type MockDirectionsProvider struct {
	mu     sync.RWMutex
	routes map[string]MockRoute
	delay  time.Duration
	strict bool
	calls  atomic.Int64
}

func NewMockDirectionsProvider(routes []MockRoute) *MockDirectionsProvider {
	m := make(map[string]MockRoute, len(routes))
	for _, r := range routes {
		m[mockKey(r.Origin, r.Destination)] = r
	}
	return &MockDirectionsProvider{routes: m}
}

// WithDelay makes every call wait d (or until ctx is done) before answering.
func (p *MockDirectionsProvider) WithDelay(d time.Duration) *MockDirectionsProvider {
	p.delay = d
	return p
}

// Strict makes unknown pairs fail instead of returning a straight line.
func (p *MockDirectionsProvider) Strict() *MockDirectionsProvider {
	p.strict = true
	return p
}

func (p *MockDirectionsProvider) Set(r MockRoute) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.routes[mockKey(r.Origin, r.Destination)] = r
}

func (p *MockDirectionsProvider) Calls() int64 { return p.calls.Load() }

func (p *MockDirectionsProvider) FetchRoute(
	ctx context.Context,
	origin domain.Position,
	destination domain.Destination,
) (domain.RouteSummary, error) {
	p.calls.Add(1)

	if p.delay > 0 {
		t := time.NewTimer(p.delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return domain.RouteSummary{}, fmt.Errorf("%w: %w", domain.ErrRouteUnavailable, ctx.Err())
		case <-t.C:
		}
	}

	p.mu.RLock()
	r, ok := p.routes[mockKey(origin, destination)]
	p.mu.RUnlock()

	switch {
	case ok && r.Err != nil:
		return domain.RouteSummary{}, fmt.Errorf("%w: %w", domain.ErrRouteUnavailable, r.Err)
	case ok:
		return r.Route, nil
	case p.strict:
		return domain.RouteSummary{}, fmt.Errorf("%w: missing pair %s -> %s",
			domain.ErrRouteUnavailable, origin.LatLng(), destination.LatLng())
	}

	meters := domain.DistanceMeters(origin, destination.Position())
	return domain.RouteSummary{
		Polyline:     []domain.Position{origin, destination.Position()},
		DistanceText: fmt.Sprintf("%.0f m", meters),
		DurationText: fmt.Sprintf("%.0f mins", meters/80),
	}, nil
}

func mockKey(origin domain.Position, destination domain.Destination) string {
	return origin.LatLng() + "|" + destination.LatLng()
}
