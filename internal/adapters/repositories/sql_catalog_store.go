package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"wayfinder-route-service/internal/domain"
	"wayfinder-route-service/internal/platform/obs"
)

// Postgres-backed implementation of the CatalogStore port.
type SQLCatalogStore struct{ DB *sql.DB }

func NewSQLCatalogStore(db *sql.DB) *SQLCatalogStore {
	return &SQLCatalogStore{DB: db}
}

func (s *SQLCatalogStore) ListCategories(ctx context.Context) (_ []domain.Category, err error) {
	defer obs.Time(ctx, "catalog.sql.ListCategories")(&err)

	if s.DB == nil {
		return nil, errors.New("sql catalog store: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT name FROM categories ORDER BY name;`)
	if err != nil {
		return nil, fmt.Errorf("list categories: query categories table: %w", err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0, 16)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list categories: scan row: %w", err)
		}
		categories = append(categories, domain.Category{Name: name})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: row iteration: %w", err)
	}

	return categories, nil
}

// Return the buildings of one category. An unknown category yields an empty list.
func (s *SQLCatalogStore) ListBuildings(ctx context.Context, category string) (_ []domain.Destination, err error) {
	defer obs.Time(ctx, "catalog.sql.ListBuildings")(&err)

	if s.DB == nil {
		return nil, errors.New("sql catalog store: DB is nil")
	}

	query := `
	SELECT
		name,
		lat,
		long
	FROM buildings
	WHERE category = $1
	ORDER BY id;
	`
	rows, err := s.DB.QueryContext(ctx, query, category)
	if err != nil {
		return nil, fmt.Errorf("list buildings category=%q: query buildings table: %w", category, err)
	}
	defer rows.Close()

	buildings := make([]domain.Destination, 0, 32)
	for rows.Next() {
		var b domain.Destination
		if err := rows.Scan(&b.Name, &b.Lat, &b.Lng); err != nil {
			return nil, fmt.Errorf("list buildings category=%q: scan row: %w", category, err)
		}
		buildings = append(buildings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list buildings category=%q: row iteration: %w", category, err)
	}

	return buildings, nil
}
