package repositories

import (
	"context"
	"testing"
	"wayfinder-route-service/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestBuildingFromData(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
		want domain.Destination
	}{
		{
			name: "float coordinates",
			data: map[string]any{"name": "main library", "lat": 12.9692, "long": 79.1559},
			want: domain.Destination{Name: "main library", Lat: 12.9692, Lng: 79.1559},
		},
		{
			name: "integer coordinates",
			data: map[string]any{"name": "gate", "lat": int64(13), "long": int64(79)},
			want: domain.Destination{Name: "gate", Lat: 13, Lng: 79},
		},
		{
			name: "missing coordinates default to zero",
			data: map[string]any{"name": "annex"},
			want: domain.Destination{Name: "annex"},
		},
		{
			name: "non string name",
			data: map[string]any{"name": 42, "lat": 1.0, "long": 2.0},
			want: domain.Destination{Lat: 1, Lng: 2},
		},
		{
			name: "wrong coordinate type",
			data: map[string]any{"name": "x", "lat": "12.9"},
			want: domain.Destination{Name: "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildingFromData(tt.data))
		})
	}
}

func TestFirestoreCatalogStoreNilClient(t *testing.T) {
	s := NewFirestoreCatalogStore(nil, "buildings")

	_, err := s.ListCategories(context.Background())
	assert.Error(t, err)

	_, err = s.ListBuildings(context.Background(), "Library")
	assert.Error(t, err)
}
