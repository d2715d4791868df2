package ports

import (
	"context"
	"wayfinder-route-service/internal/domain"
)

// Cache of directions results keyed by domain.SyncKey.CacheKey.
type RouteCache interface {
	Get(ctx context.Context, key string) (domain.RouteSummary, bool, error)
	Put(ctx context.Context, key string, route domain.RouteSummary) error
}
