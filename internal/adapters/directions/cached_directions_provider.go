package directions

import (
	"context"
	"wayfinder-route-service/internal/domain"
	"wayfinder-route-service/internal/platform/logger"
	"wayfinder-route-service/internal/ports"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CachedDirectionsProvider puts a RouteCache in front of another provider and
// collapses concurrent identical lookups into one upstream call.
//
// A failing cache never fails a fetch; it is logged and skipped.
type CachedDirectionsProvider struct {
	next   ports.DirectionsProvider
	cache  ports.RouteCache
	group  singleflight.Group
	logger *zap.Logger
}

func NewCachedDirectionsProvider(
	next ports.DirectionsProvider,
	cache ports.RouteCache,
	l *zap.Logger,
) *CachedDirectionsProvider {
	return &CachedDirectionsProvider{
		next:   next,
		cache:  cache,
		logger: logger.OrNop(l),
	}
}

func (c *CachedDirectionsProvider) FetchRoute(
	ctx context.Context,
	origin domain.Position,
	destination domain.Destination,
) (domain.RouteSummary, error) {
	key := domain.SyncKey{Destination: destination, Origin: origin}.CacheKey()

	if route, ok, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Warn("route cache get failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		return route, nil
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		route, err := c.next.FetchRoute(ctx, origin, destination)
		if err != nil {
			return domain.RouteSummary{}, err
		}

		if err := c.cache.Put(ctx, key, route); err != nil {
			c.logger.Warn("route cache put failed", zap.String("key", key), zap.Error(err))
		}
		return route, nil
	})
	if err != nil {
		return domain.RouteSummary{}, err
	}
	if shared {
		c.logger.Debug("route fetch shared", zap.String("key", key))
	}

	return v.(domain.RouteSummary), nil
}
