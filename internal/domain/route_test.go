package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSyncKeyEqual(t *testing.T) {
	lib := Destination{Name: "Library", Lat: 12.9721, Lng: 77.5933}
	hostel := Destination{Name: "Hostel", Lat: 12.9730, Lng: 77.5950}
	p1 := Position{Lat: 12.9716, Lng: 77.5946, RecordedAt: time.Unix(1, 0)}
	p1Later := Position{Lat: 12.9716, Lng: 77.5946, RecordedAt: time.Unix(2, 0)}
	p2 := Position{Lat: 12.9718, Lng: 77.5946}

	assert.True(t, SyncKey{Destination: lib, Origin: p1}.Equal(SyncKey{Destination: lib, Origin: p1Later}))
	assert.False(t, SyncKey{Destination: lib, Origin: p1}.Equal(SyncKey{Destination: lib, Origin: p2}))
	assert.False(t, SyncKey{Destination: lib, Origin: p1}.Equal(SyncKey{Destination: hostel, Origin: p1}))
}

func TestSyncKeyCacheKeyRoundsCoordinates(t *testing.T) {
	lib := Destination{Name: "Library", Lat: 12.9721, Lng: 77.5933}
	a := SyncKey{Destination: lib, Origin: Position{Lat: 12.971600001, Lng: 77.594600004}}
	b := SyncKey{Destination: lib, Origin: Position{Lat: 12.971600004, Lng: 77.594600001}}

	assert.Equal(t, a.CacheKey(), b.CacheKey())
	assert.Equal(t, "Library|12.97210,77.59330|12.97160,77.59460", a.CacheKey())
}

func TestRouteStateIsRouting(t *testing.T) {
	assert.False(t, RouteStateIdle.IsRouting())
	assert.True(t, RouteStateAwaitingFirstFix.IsRouting())
	assert.True(t, RouteStateFetching.IsRouting())
	assert.True(t, RouteStateSettled.IsRouting())
	assert.True(t, RouteStateUnavailable.IsRouting())
}
