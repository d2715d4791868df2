package dto

import (
	"time"
	"wayfinder-route-service/internal/domain"
	"wayfinder-route-service/internal/services"
	"wayfinder-route-service/internal/sessions"
)

type CreateSessionRequest struct {
	LocationPermission bool `json:"location_permission"`
}

type PositionRequest struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

type PermissionRequest struct {
	Granted *bool `json:"granted" binding:"required"`
}

// Lat and Lng may be omitted when name matches a building in the
// session's current catalog list.
type DestinationRequest struct {
	Name string   `json:"name" binding:"required"`
	Lat  *float64 `json:"lat"`
	Lng  *float64 `json:"lng"`
}

type PointResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type PositionResponse struct {
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	RecordedAt time.Time `json:"recorded_at"`
}

type DestinationResponse struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

type RouteResponse struct {
	DistanceText string          `json:"distance_text"`
	DurationText string          `json:"duration_text"`
	Polyline     []PointResponse `json:"polyline"`
}

type StatsResponse struct {
	Issued    int64 `json:"issued"`
	Committed int64 `json:"committed"`
	Discarded int64 `json:"discarded"`
	Failed    int64 `json:"failed"`
}

type SessionResponse struct {
	ID                 string               `json:"id"`
	CreatedAt          time.Time            `json:"created_at"`
	State              string               `json:"state"`
	LocationPermission bool                 `json:"location_permission"`
	LocationStatus     string               `json:"location_status"`
	Destination        *DestinationResponse `json:"destination"`
	Position           *PositionResponse    `json:"position"`
	Route              *RouteResponse       `json:"route"`
	Version            uint64               `json:"version"`
	Stats              StatsResponse        `json:"stats"`
	Catalog            CatalogResponse      `json:"catalog"`
}

type PositionResult struct {
	Accepted bool `json:"accepted"`
}

func SessionFromView(v sessions.View) SessionResponse {
	snap := v.Route

	res := SessionResponse{
		ID:                 v.ID,
		CreatedAt:          v.CreatedAt,
		State:              snap.State.String(),
		LocationPermission: v.LocationPermission,
		LocationStatus:     string(snap.Location),
		Version:            snap.Version,
		Stats:              statsFrom(snap.Stats),
		Catalog:            CatalogFromView(v.Catalog),
	}

	if snap.Destination != nil {
		d := DestinationFrom(*snap.Destination)
		res.Destination = &d
	}
	if snap.Position != nil {
		res.Position = &PositionResponse{
			Lat:        snap.Position.Lat,
			Lng:        snap.Position.Lng,
			RecordedAt: snap.Position.RecordedAt,
		}
	}
	if snap.Route != nil {
		res.Route = routeFrom(*snap.Route)
	}

	return res
}

func DestinationFrom(d domain.Destination) DestinationResponse {
	return DestinationResponse{Name: d.Name, Lat: d.Lat, Lng: d.Lng}
}

func routeFrom(r domain.RouteSummary) *RouteResponse {
	points := make([]PointResponse, 0, len(r.Polyline))
	for _, p := range r.Polyline {
		points = append(points, PointResponse{Lat: p.Lat, Lng: p.Lng})
	}
	return &RouteResponse{
		DistanceText: r.DistanceText,
		DurationText: r.DurationText,
		Polyline:     points,
	}
}

func statsFrom(s services.RouteStats) StatsResponse {
	return StatsResponse{
		Issued:    s.Issued,
		Committed: s.Committed,
		Discarded: s.Discarded,
		Failed:    s.Failed,
	}
}
