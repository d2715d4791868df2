package domain

import (
	"fmt"
	"math"
	"time"
)

const earthRadiusMeters = 6371000.0

// A single device location reading.
// Positions are immutable values; each new fix supersedes the previous one.
type Position struct {
	Lat        float64
	Lng        float64
	RecordedAt time.Time
}

// SameFix reports whether two readings point at the same coordinates.
// RecordedAt is ignored: a repeated fix at the same spot is not a new origin.
func (p Position) SameFix(other Position) bool {
	return p.Lat == other.Lat && p.Lng == other.Lng
}

// Return coordinates as "lat,lng" for external API compatibility.
func (p Position) LatLng() string {
	return fmt.Sprintf("%f,%f", p.Lat, p.Lng)
}

func (p Position) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// DistanceMeters returns the great-circle distance between a and b (haversine).
func DistanceMeters(a, b Position) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
