package cache

import (
	"context"
	"testing"
	"time"
	"wayfinder-route-service/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisCache(t *testing.T, ttl time.Duration) (*RedisRouteCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisRouteCache(client, ttl), mr
}

func sampleRoute() domain.RouteSummary {
	return domain.RouteSummary{
		Polyline: []domain.Position{
			{Lat: 12.97160, Lng: 79.15940},
			{Lat: 12.96920, Lng: 79.15590},
		},
		DistanceText: "0.4 km",
		DurationText: "5 mins",
	}
}

func TestRedisRouteCacheMiss(t *testing.T) {
	c, _ := newRedisCache(t, time.Minute)

	_, ok, err := c.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisRouteCacheRoundTrip(t *testing.T) {
	c, mr := newRedisCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "lib|a|b", sampleRoute()))
	assert.True(t, mr.Exists(routeKeyPrefix+"lib|a|b"))

	got, ok, err := c.Get(ctx, "lib|a|b")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleRoute(), got)
}

func TestRedisRouteCacheExpires(t *testing.T) {
	c, mr := newRedisCache(t, 30*time.Second)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "k", sampleRoute()))
	mr.FastForward(31 * time.Second)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisRouteCacheCorruptValue(t *testing.T) {
	c, mr := newRedisCache(t, time.Minute)
	require.NoError(t, mr.Set(routeKeyPrefix+"k", "{broken"))

	_, _, err := c.Get(context.Background(), "k")
	assert.Error(t, err)
}

func TestRedisRouteCacheServerDown(t *testing.T) {
	c, mr := newRedisCache(t, time.Minute)
	mr.Close()

	_, _, err := c.Get(context.Background(), "k")
	assert.Error(t, err)
}
