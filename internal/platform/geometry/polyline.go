// Package geometry converts route paths to and from the encoded polyline
// format (precision 1e-5) used by the directions API and the route cache.
package geometry

import (
	"fmt"
	"wayfinder-route-service/internal/domain"

	"github.com/twpayne/go-polyline"
)

func Decode(encoded string) ([]domain.Position, error) {
	if encoded == "" {
		return nil, nil
	}

	coords, rest, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%d trailing bytes", len(rest))
	}

	out := make([]domain.Position, 0, len(coords))
	for _, c := range coords {
		out = append(out, domain.Position{Lat: c[0], Lng: c[1]})
	}
	return out, nil
}

func Encode(points []domain.Position) string {
	coords := make([][]float64, 0, len(points))
	for _, p := range points {
		coords = append(coords, []float64{p.Lat, p.Lng})
	}
	return string(polyline.EncodeCoords(coords))
}
