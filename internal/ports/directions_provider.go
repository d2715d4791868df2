package ports

import (
	"context"
	"wayfinder-route-service/internal/domain"
)

// Contract for retrieving a walking route between a position and a destination.
type DirectionsProvider interface {
	// One round trip, no retry. Failures wrap domain.ErrRouteUnavailable.
	FetchRoute(ctx context.Context, origin domain.Position, destination domain.Destination) (domain.RouteSummary, error)
}
