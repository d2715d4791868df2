package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	CatalogPostgres  = "postgres"
	CatalogFirestore = "firestore"

	CacheRedis    = "redis"
	CachePostgres = "postgres"
	CacheNone     = "none"
)

// Config holds every runtime setting of the route service.
type Config struct {
	Port   string `toml:"port"`
	AppEnv string `toml:"app_env"`

	DatabaseURL string `toml:"database_url"`

	Catalog    CatalogConfig    `toml:"catalog"`
	Directions DirectionsConfig `toml:"directions"`
	RouteCache RouteCacheConfig `toml:"route_cache"`
	Location   LocationConfig   `toml:"location"`
}

type CatalogConfig struct {
	Backend             string `toml:"backend"`
	FirestoreProjectID  string `toml:"firestore_project_id"`
	FirestoreCollection string `toml:"firestore_collection"`
}

type DirectionsConfig struct {
	APIKey  string   `toml:"api_key"`
	BaseURL string   `toml:"base_url"`
	Timeout Duration `toml:"timeout"`
}

type RouteCacheConfig struct {
	Backend       string   `toml:"backend"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	TTL           Duration `toml:"ttl"`
}

type LocationConfig struct {
	MinInterval           Duration `toml:"min_interval"`
	MinDisplacementMeters float64  `toml:"min_displacement_meters"`
}

// Duration decodes TOML strings such as "750ms" or "2m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func defaults() Config {
	return Config{
		Port:   "8080",
		AppEnv: "development",
		Catalog: CatalogConfig{
			Backend:             CatalogPostgres,
			FirestoreCollection: "buildings",
		},
		Directions: DirectionsConfig{
			BaseURL: "https://maps.googleapis.com",
			Timeout: Duration{10 * time.Second},
		},
		RouteCache: RouteCacheConfig{
			Backend:   CacheNone,
			RedisAddr: "localhost:6379",
			TTL:       Duration{2 * time.Minute},
		},
		Location: LocationConfig{
			MinInterval:           Duration{time.Second},
			MinDisplacementMeters: 5,
		},
	}
}

// Load reads .env (optional), then the TOML file named by CONFIG_PATH
// (optional, default config.toml), then environment overrides.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	path := Get("CONFIG_PATH", "config.toml")
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("load config: decode %q: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load config: stat %q: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	cfg.Port = Get("PORT", cfg.Port)
	cfg.AppEnv = Get("APP_ENV", cfg.AppEnv)
	cfg.DatabaseURL = Get("DATABASE_URL", cfg.DatabaseURL)

	cfg.Catalog.Backend = Get("CATALOG_BACKEND", cfg.Catalog.Backend)
	cfg.Catalog.FirestoreProjectID = Get("FIRESTORE_PROJECT_ID", cfg.Catalog.FirestoreProjectID)
	cfg.Catalog.FirestoreCollection = Get("FIRESTORE_COLLECTION", cfg.Catalog.FirestoreCollection)

	cfg.Directions.APIKey = Get("DIRECTIONS_API_KEY", cfg.Directions.APIKey)
	cfg.Directions.BaseURL = Get("DIRECTIONS_BASE_URL", cfg.Directions.BaseURL)

	cfg.RouteCache.Backend = Get("ROUTE_CACHE_BACKEND", cfg.RouteCache.Backend)
	cfg.RouteCache.RedisAddr = Get("REDIS_ADDR", cfg.RouteCache.RedisAddr)
	cfg.RouteCache.RedisPassword = Get("REDIS_PASSWORD", cfg.RouteCache.RedisPassword)

	var err error
	if cfg.Directions.Timeout.Duration, err = getDuration("DIRECTIONS_TIMEOUT", cfg.Directions.Timeout.Duration); err != nil {
		return err
	}
	if cfg.RouteCache.TTL.Duration, err = getDuration("ROUTE_CACHE_TTL", cfg.RouteCache.TTL.Duration); err != nil {
		return err
	}
	if cfg.Location.MinInterval.Duration, err = getDuration("LOCATION_MIN_INTERVAL", cfg.Location.MinInterval.Duration); err != nil {
		return err
	}

	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_DB: %w", err)
		}
		cfg.RouteCache.RedisDB = n
	}

	if v := os.Getenv("LOCATION_MIN_DISPLACEMENT_METERS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("LOCATION_MIN_DISPLACEMENT_METERS: %w", err)
		}
		cfg.Location.MinDisplacementMeters = f
	}

	return nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Directions.APIKey) == "" {
		return errors.New("DIRECTIONS_API_KEY is required")
	}

	switch c.Catalog.Backend {
	case CatalogPostgres:
	case CatalogFirestore:
		if c.Catalog.FirestoreProjectID == "" {
			return errors.New("FIRESTORE_PROJECT_ID is required for the firestore catalog")
		}
	default:
		return fmt.Errorf("unknown catalog backend %q", c.Catalog.Backend)
	}

	switch c.RouteCache.Backend {
	case CacheRedis, CachePostgres, CacheNone:
	default:
		return fmt.Errorf("unknown route cache backend %q", c.RouteCache.Backend)
	}

	if c.NeedsDatabase() && strings.TrimSpace(c.DatabaseURL) == "" {
		return errors.New("DATABASE_URL is required for postgres backends")
	}

	if c.Directions.Timeout.Duration <= 0 {
		return errors.New("directions timeout must be positive")
	}

	return nil
}

func (c *Config) NeedsDatabase() bool {
	return c.Catalog.Backend == CatalogPostgres || c.RouteCache.Backend == CachePostgres
}

// Get returns the environment value for key, or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
