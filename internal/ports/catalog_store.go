package ports

import (
	"context"
	"wayfinder-route-service/internal/domain"
)

// Port: a boundary for reading the campus building catalog from a remote store.
type CatalogStore interface {
	// List every top-level building category.
	ListCategories(ctx context.Context) ([]domain.Category, error)
	// List the buildings filed under one category.
	ListBuildings(ctx context.Context, category string) ([]domain.Destination, error)
}
