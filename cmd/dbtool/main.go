package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"wayfinder-route-service/internal/adapters/repositories"
	"wayfinder-route-service/internal/config"
	"wayfinder-route-service/internal/platform/db"
	"wayfinder-route-service/internal/platform/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	l, err := logger.New(config.Get("APP_ENV", "development"), "dbtool")
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		l.Fatal("DATABASE_URL is required")
	}

	conn, err := db.Open(databaseURL)
	if err != nil {
		l.Fatal("open database", zap.Error(err))
	}
	defer conn.Close()

	seedPath := config.Get("SEED_PATH", "data/seeds/campus.json")
	if err := initAndSeed(context.Background(), conn, seedPath, l); err != nil {
		l.Fatal("dbtool failed", zap.Error(err))
	}
}

func initAndSeed(ctx context.Context, conn *sql.DB, seedPath string, l *zap.Logger) error {
	l.Info("initializing database schema")
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	l.Info("schema ready")

	l.Info("seeding catalog", zap.String("seed_path", seedPath))
	if err := repositories.SeedFromJSON(ctx, conn, seedPath); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	l.Info("seeding complete")

	return nil
}
