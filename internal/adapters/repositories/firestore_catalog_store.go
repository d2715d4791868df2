package repositories

import (
	"context"
	"errors"
	"fmt"
	"wayfinder-route-service/internal/domain"
	"wayfinder-route-service/internal/platform/obs"

	"cloud.google.com/go/firestore"
)

// FirestoreCatalogStore reads the campus catalog from Firestore.
//
// Layout: every document of the root collection is a category (its id is the
// category name); its buildings live in the sub-collection "<category>_" with
// fields name, lat and long.
type FirestoreCatalogStore struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreCatalogStore(client *firestore.Client, collection string) *FirestoreCatalogStore {
	return &FirestoreCatalogStore{client: client, collection: collection}
}

func (s *FirestoreCatalogStore) ListCategories(ctx context.Context) (_ []domain.Category, err error) {
	defer obs.Time(ctx, "catalog.firestore.ListCategories")(&err)

	if s.client == nil {
		return nil, errors.New("firestore catalog store: client is nil")
	}

	docs, err := s.client.Collection(s.collection).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list categories collection=%q: %w", s.collection, err)
	}

	categories := make([]domain.Category, 0, len(docs))
	for _, doc := range docs {
		categories = append(categories, domain.Category{Name: doc.Ref.ID})
	}
	return categories, nil
}

func (s *FirestoreCatalogStore) ListBuildings(ctx context.Context, category string) (_ []domain.Destination, err error) {
	defer obs.Time(ctx, "catalog.firestore.ListBuildings")(&err)

	if s.client == nil {
		return nil, errors.New("firestore catalog store: client is nil")
	}
	if category == "" {
		return nil, errors.New("list buildings: category must not be empty")
	}

	docs, err := s.client.Collection(s.collection).
		Doc(category).
		Collection(category + "_").
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, fmt.Errorf("list buildings category=%q: %w", category, err)
	}

	buildings := make([]domain.Destination, 0, len(docs))
	for _, doc := range docs {
		buildings = append(buildings, buildingFromData(doc.Data()))
	}
	return buildings, nil
}

// buildingFromData maps one building document. A missing or non-string name
// maps to "" and missing coordinates to 0; the catalog cache drops nameless
// entries.
func buildingFromData(data map[string]any) domain.Destination {
	name, _ := data["name"].(string)
	return domain.Destination{
		Name: name,
		Lat:  number(data["lat"]),
		Lng:  number(data["long"]),
	}
}

// Firestore hands back whole numbers as int64.
func number(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	default:
		return 0
	}
}
