package directions

import (
	"context"
	"errors"
	"testing"
	"time"
	"wayfinder-route-service/internal/domain"
)

func TestMockDirectionsProvider(t *testing.T) {
	canned := domain.RouteSummary{DistanceText: "0.5 km", DurationText: "6 mins"}
	p := NewMockDirectionsProvider([]MockRoute{
		{Origin: testOrigin, Destination: testDest, Route: canned},
	})
	ctx := context.Background()

	got, err := p.FetchRoute(ctx, testOrigin, testDest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.DistanceText != "0.5 km" {
		t.Fatalf("distance = %q, want 0.5 km", got.DistanceText)
	}

	other := domain.Position{Lat: 12.9700, Lng: 79.1600}
	straight, err := p.FetchRoute(ctx, other, testDest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(straight.Polyline) != 2 {
		t.Fatalf("points = %d, want 2", len(straight.Polyline))
	}

	if _, err := p.Strict().FetchRoute(ctx, other, testDest); !errors.Is(err, domain.ErrRouteUnavailable) {
		t.Fatalf("err = %v, want ErrRouteUnavailable", err)
	}
	if p.Calls() != 3 {
		t.Fatalf("calls = %d, want 3", p.Calls())
	}
}

func TestMockDirectionsProviderDelayHonoursContext(t *testing.T) {
	p := NewMockDirectionsProvider(nil).WithDelay(time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := p.FetchRoute(ctx, testOrigin, testDest); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}
