package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"PORT", "APP_ENV", "DATABASE_URL", "CATALOG_BACKEND", "FIRESTORE_PROJECT_ID",
		"DIRECTIONS_API_KEY", "DIRECTIONS_TIMEOUT", "ROUTE_CACHE_BACKEND", "ROUTE_CACHE_TTL",
		"REDIS_DB", "LOCATION_MIN_INTERVAL", "LOCATION_MIN_DISPLACEMENT_METERS",
	} {
		t.Setenv(key, "")
	}
}

func writeTOML(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromTOMLWithEnvOverride(t *testing.T) {
	path := writeTOML(t, `
port = "9090"
database_url = "postgres://campus@localhost/wayfinder"

[directions]
api_key = "file-key"
timeout = "3s"

[route_cache]
backend = "redis"
ttl = "90s"

[location]
min_interval = "500ms"
min_displacement_meters = 8.5
`)
	clearEnv(t)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("DIRECTIONS_API_KEY", "env-key")
	t.Setenv("REDIS_DB", "2")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, "env-key", cfg.Directions.APIKey)
	require.Equal(t, 3*time.Second, cfg.Directions.Timeout.Duration)
	require.Equal(t, CacheRedis, cfg.RouteCache.Backend)
	require.Equal(t, 90*time.Second, cfg.RouteCache.TTL.Duration)
	require.Equal(t, 2, cfg.RouteCache.RedisDB)
	require.Equal(t, 500*time.Millisecond, cfg.Location.MinInterval.Duration)
	require.InDelta(t, 8.5, cfg.Location.MinDisplacementMeters, 1e-9)
	require.Equal(t, "buildings", cfg.Catalog.FirestoreCollection)
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("DIRECTIONS_API_KEY", "k")
	t.Setenv("DATABASE_URL", "postgres://localhost/db")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, CatalogPostgres, cfg.Catalog.Backend)
	require.Equal(t, CacheNone, cfg.RouteCache.Backend)
	require.Equal(t, time.Second, cfg.Location.MinInterval.Duration)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		c := defaults()
		c.Directions.APIKey = "k"
		c.DatabaseURL = "postgres://localhost/db"
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing api key", mutate: func(c *Config) { c.Directions.APIKey = " " }, wantErr: true},
		{name: "unknown catalog", mutate: func(c *Config) { c.Catalog.Backend = "mongo" }, wantErr: true},
		{name: "firestore without project", mutate: func(c *Config) { c.Catalog.Backend = CatalogFirestore }, wantErr: true},
		{
			name: "firestore needs no database",
			mutate: func(c *Config) {
				c.Catalog.Backend = CatalogFirestore
				c.Catalog.FirestoreProjectID = "campus"
				c.DatabaseURL = ""
			},
		},
		{name: "postgres cache without database", mutate: func(c *Config) {
			c.Catalog.Backend = CatalogFirestore
			c.Catalog.FirestoreProjectID = "campus"
			c.RouteCache.Backend = CachePostgres
			c.DatabaseURL = ""
		}, wantErr: true},
		{name: "unknown cache", mutate: func(c *Config) { c.RouteCache.Backend = "memcached" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)

			err := c.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("DIRECTIONS_API_KEY", "k")
	t.Setenv("DATABASE_URL", "postgres://localhost/db")
	t.Setenv("ROUTE_CACHE_TTL", "soon")

	_, err := Load()
	require.Error(t, err)
}
