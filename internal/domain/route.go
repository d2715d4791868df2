package domain

import "fmt"

// Distance, duration and walking path between an origin and a destination.
// A RouteSummary is always replaced wholesale, never patched.
type RouteSummary struct {
	Polyline     []Position
	DistanceText string
	DurationText string
}

// SyncKey is the (destination, origin) pair a route fetch was issued for.
type SyncKey struct {
	Destination Destination
	Origin      Position
}

// Equal compares destinations by value and origins by coordinates.
func (k SyncKey) Equal(other SyncKey) bool {
	return k.Destination.Equal(other.Destination) && k.Origin.SameFix(other.Origin)
}

// CacheKey is a stable string for route caches. Coordinates are rounded to
// five decimals (about a metre) so GPS jitter maps onto the same entry.
func (k SyncKey) CacheKey() string {
	return fmt.Sprintf(
		"%s|%.5f,%.5f|%.5f,%.5f",
		k.Destination.Name,
		k.Destination.Lat, k.Destination.Lng,
		k.Origin.Lat, k.Origin.Lng,
	)
}
