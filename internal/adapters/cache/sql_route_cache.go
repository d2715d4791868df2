package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"wayfinder-route-service/internal/domain"
	"wayfinder-route-service/internal/platform/geometry"
	"wayfinder-route-service/internal/platform/obs"
)

// SQLRouteCache is a Postgres-backed cache for directions results.
// The walking path is stored as an encoded polyline.
type SQLRouteCache struct {
	DB  *sql.DB
	TTL time.Duration
	now func() time.Time
}

func NewSQLRouteCache(db *sql.DB, ttl time.Duration) *SQLRouteCache {
	return &SQLRouteCache{DB: db, TTL: ttl, now: time.Now}
}

func (s *SQLRouteCache) Get(ctx context.Context, key string) (_ domain.RouteSummary, _ bool, err error) {
	defer obs.Time(ctx, "route.cache.sql.Get")(&err)

	if s.DB == nil {
		return domain.RouteSummary{}, false, errors.New("route cache: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return domain.RouteSummary{}, false, errors.New("get route cache: key must not be empty")
	}

	q := `
	SELECT distance_text, duration_text, polyline
	FROM route_cache
	WHERE cache_key = $1
		AND expires_at > $2;
	`

	var distance, duration, encoded string
	err = s.DB.QueryRowContext(ctx, q, key, s.now().UTC()).Scan(&distance, &duration, &encoded)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RouteSummary{}, false, nil
	}
	if err != nil {
		return domain.RouteSummary{}, false, fmt.Errorf("get route cache: query route_cache table: %w", err)
	}

	path, err := geometry.Decode(encoded)
	if err != nil {
		return domain.RouteSummary{}, false, fmt.Errorf("get route cache key=%q: %w", key, err)
	}

	return domain.RouteSummary{
		Polyline:     path,
		DistanceText: distance,
		DurationText: duration,
	}, true, nil
}

func (s *SQLRouteCache) Put(ctx context.Context, key string, route domain.RouteSummary) error {
	if s.DB == nil {
		return errors.New("route cache: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return errors.New("insert route cache: key must not be empty")
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT INTO route_cache (cache_key, distance_text, duration_text, polyline, expires_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (cache_key) DO UPDATE
	SET distance_text = EXCLUDED.distance_text,
		duration_text = EXCLUDED.duration_text,
		polyline = EXCLUDED.polyline,
		expires_at = EXCLUDED.expires_at;
	`, key, route.DistanceText, route.DurationText, geometry.Encode(route.Polyline), s.now().UTC().Add(s.TTL))
	if err != nil {
		return fmt.Errorf("insert route cache key=%q: %w", key, err)
	}

	return nil
}
