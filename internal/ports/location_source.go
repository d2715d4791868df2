package ports

import (
	"context"
	"wayfinder-route-service/internal/domain"
)

// A live registration on a location source.
type LocationSubscription interface {
	// Positions is closed once the registration is released.
	Positions() <-chan domain.Position
	// Unsubscribe releases the registration. Calling it again is a no-op.
	Unsubscribe()
}

// Push-based, cancel-aware stream of device positions.
type LocationSource interface {
	// Subscribe fails with domain.ErrPermissionDenied when location access is absent.
	// Cancelling ctx releases the registration.
	Subscribe(ctx context.Context) (LocationSubscription, error)
}
