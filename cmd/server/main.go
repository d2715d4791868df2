package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	"wayfinder-route-service/internal/adapters/cache"
	"wayfinder-route-service/internal/adapters/directions"
	"wayfinder-route-service/internal/adapters/location"
	"wayfinder-route-service/internal/adapters/repositories"
	"wayfinder-route-service/internal/api"
	"wayfinder-route-service/internal/config"
	"wayfinder-route-service/internal/platform/db"
	"wayfinder-route-service/internal/platform/logger"
	"wayfinder-route-service/internal/ports"
	"wayfinder-route-service/internal/sessions"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// main is the application composition root.
// It wires concrete adapters (Postgres or Firestore, Redis, Google Directions)
// behind ports and runs the HTTP server until SIGINT or SIGTERM.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	l, err := logger.New(cfg.AppEnv, "wayfinder")
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()
	zap.ReplaceGlobals(l)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, l); err != nil {
		l.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, l *zap.Logger) error {
	var conn *sql.DB
	if cfg.NeedsDatabase() {
		var err error
		conn, err = db.Open(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer conn.Close()
	}

	store, closeStore, err := newCatalogStore(ctx, cfg, conn)
	if err != nil {
		return err
	}
	defer closeStore()

	provider, closeProvider, err := newDirectionsProvider(cfg, conn, l)
	if err != nil {
		return err
	}
	defer closeProvider()

	manager := sessions.NewManager(provider, store, sessions.Options{
		Location: location.Options{
			MinInterval:           cfg.Location.MinInterval.Duration,
			MinDisplacementMeters: cfg.Location.MinDisplacementMeters,
		},
		FetchTimeout: cfg.Directions.Timeout.Duration,
	}, l)

	if cfg.AppEnv == "production" || cfg.AppEnv == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	// No WriteTimeout: session streams are long-lived WebSockets.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(manager, l),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		l.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		l.Info("shutting down")

		manager.CloseAll()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newCatalogStore(ctx context.Context, cfg *config.Config, conn *sql.DB) (ports.CatalogStore, func(), error) {
	switch cfg.Catalog.Backend {
	case config.CatalogFirestore:
		client, err := firestore.NewClient(ctx, cfg.Catalog.FirestoreProjectID)
		if err != nil {
			return nil, nil, fmt.Errorf("firestore client: %w", err)
		}
		return repositories.NewFirestoreCatalogStore(client, cfg.Catalog.FirestoreCollection),
			func() { _ = client.Close() }, nil
	default:
		return repositories.NewSQLCatalogStore(conn), func() {}, nil
	}
}

// newDirectionsProvider builds the Google client and, unless caching is off,
// wraps it with the configured route cache.
func newDirectionsProvider(cfg *config.Config, conn *sql.DB, l *zap.Logger) (ports.DirectionsProvider, func(), error) {
	google, err := directions.NewGoogleDirectionsProvider(
		cfg.Directions.APIKey,
		directions.WithBaseURL(cfg.Directions.BaseURL),
		directions.WithTimeout(cfg.Directions.Timeout.Duration),
		directions.WithLogger(l.Named("directions")),
	)
	if err != nil {
		return nil, nil, err
	}

	switch cfg.RouteCache.Backend {
	case config.CacheRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RouteCache.RedisAddr,
			Password: cfg.RouteCache.RedisPassword,
			DB:       cfg.RouteCache.RedisDB,
		})
		rc := cache.NewRedisRouteCache(client, cfg.RouteCache.TTL.Duration)
		return directions.NewCachedDirectionsProvider(google, rc, l.Named("route_cache")),
			func() { _ = client.Close() }, nil

	case config.CachePostgres:
		rc := cache.NewSQLRouteCache(conn, cfg.RouteCache.TTL.Duration)
		return directions.NewCachedDirectionsProvider(google, rc, l.Named("route_cache")), func() {}, nil

	default:
		return google, func() {}, nil
	}
}
