package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
)

// Initialize the Postgres schema for the catalog and the route cache.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createCategoriesQuery := `
	CREATE TABLE IF NOT EXISTS categories (
		name TEXT PRIMARY KEY
	);
	`

	createBuildingsQuery := `
	CREATE TABLE IF NOT EXISTS buildings (
		id SERIAL PRIMARY KEY,
		category TEXT NOT NULL REFERENCES categories(name) ON DELETE CASCADE,
		name TEXT NOT NULL,
		lat DOUBLE PRECISION NOT NULL DEFAULT 0,
		long DOUBLE PRECISION NOT NULL DEFAULT 0,
		UNIQUE (category, name)
	);
	`

	createRouteCacheQuery := `
	CREATE TABLE IF NOT EXISTS route_cache (
		cache_key TEXT PRIMARY KEY,
		distance_text TEXT NOT NULL,
		duration_text TEXT NOT NULL,
		polyline TEXT NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_route_cache_expires_at
	ON route_cache(expires_at);
	`

	statements := []string{
		createCategoriesQuery,
		createBuildingsQuery,
		createRouteCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type BuildingSeed struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
}

type CategorySeed struct {
	Name      string         `json:"name"`
	Buildings []BuildingSeed `json:"buildings"`
}

// Populate the catalog from a JSON file. Re-seeding a category replaces its
// buildings.
func SeedFromJSON(ctx context.Context, db *sql.DB, jsonPath string) error {
	if db == nil {
		return errors.New("seed catalog: DB is nil")
	}

	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed catalog: read %q: %w", jsonPath, err)
	}

	var data []CategorySeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed catalog: parse json: %w", err)
	}

	rows, err := validateSeed(data)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed catalog: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, c := range rows {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO categories (name) VALUES ($1) ON CONFLICT (name) DO NOTHING;`,
			c.Name,
		); err != nil {
			return fmt.Errorf("seed catalog: insert category=%q: %w", c.Name, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM buildings WHERE category = $1;`, c.Name); err != nil {
			return fmt.Errorf("seed catalog: clear category=%q: %w", c.Name, err)
		}

		for _, b := range c.Buildings {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO buildings (category, name, lat, long) VALUES ($1, $2, $3, $4);`,
				c.Name, b.Name, b.Lat, b.Long,
			); err != nil {
				return fmt.Errorf("seed catalog: insert building=%q category=%q: %w", b.Name, c.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed catalog: commit tx: %w", err)
	}

	return nil
}

func validateSeed(data []CategorySeed) ([]CategorySeed, error) {
	out := make([]CategorySeed, 0, len(data))
	for i, c := range data {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("seed catalog: category at index %d: name cannot be empty", i+1)
		}

		buildings := make([]BuildingSeed, 0, len(c.Buildings))
		for j, b := range c.Buildings {
			b.Name = strings.TrimSpace(b.Name)
			if b.Name == "" {
				return nil, fmt.Errorf("seed catalog: category %q building at index %d: name cannot be empty", name, j+1)
			}
			if math.Abs(b.Lat) > 90 || math.Abs(b.Long) > 180 {
				return nil, fmt.Errorf("seed catalog: building %q: coordinates out of range", b.Name)
			}
			buildings = append(buildings, b)
		}
		out = append(out, CategorySeed{Name: name, Buildings: buildings})
	}
	return out, nil
}
