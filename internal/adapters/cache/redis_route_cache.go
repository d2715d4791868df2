package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"wayfinder-route-service/internal/domain"
	"wayfinder-route-service/internal/platform/obs"

	"github.com/redis/go-redis/v9"
)

const routeKeyPrefix = "route:"

type cachedPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type cachedRoute struct {
	Distance string        `json:"distance"`
	Duration string        `json:"duration"`
	Points   []cachedPoint `json:"points"`
}

// RedisRouteCache stores route summaries as JSON with a fixed TTL.
type RedisRouteCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisRouteCache(client redis.UniversalClient, ttl time.Duration) *RedisRouteCache {
	return &RedisRouteCache{client: client, ttl: ttl}
}

func (c *RedisRouteCache) Get(ctx context.Context, key string) (_ domain.RouteSummary, _ bool, err error) {
	defer obs.Time(ctx, "route.cache.redis.Get")(&err)

	raw, err := c.client.Get(ctx, routeKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.RouteSummary{}, false, nil
	}
	if err != nil {
		return domain.RouteSummary{}, false, fmt.Errorf("get route cache key=%q: %w", key, err)
	}

	var cr cachedRoute
	if err := json.Unmarshal(raw, &cr); err != nil {
		return domain.RouteSummary{}, false, fmt.Errorf("get route cache key=%q: decode: %w", key, err)
	}

	return cr.toDomain(), true, nil
}

func (c *RedisRouteCache) Put(ctx context.Context, key string, route domain.RouteSummary) error {
	raw, err := json.Marshal(fromDomain(route))
	if err != nil {
		return fmt.Errorf("put route cache key=%q: encode: %w", key, err)
	}

	if err := c.client.Set(ctx, routeKeyPrefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("put route cache key=%q: %w", key, err)
	}
	return nil
}

func fromDomain(r domain.RouteSummary) cachedRoute {
	pts := make([]cachedPoint, len(r.Polyline))
	for i, p := range r.Polyline {
		pts[i] = cachedPoint{Lat: p.Lat, Lng: p.Lng}
	}
	return cachedRoute{Distance: r.DistanceText, Duration: r.DurationText, Points: pts}
}

func (c cachedRoute) toDomain() domain.RouteSummary {
	pts := make([]domain.Position, len(c.Points))
	for i, p := range c.Points {
		pts[i] = domain.Position{Lat: p.Lat, Lng: p.Lng}
	}
	return domain.RouteSummary{DistanceText: c.Distance, DurationText: c.Duration, Polyline: pts}
}
