package directions

import (
	"fmt"
	"wayfinder-route-service/internal/domain"
	"wayfinder-route-service/internal/platform/geometry"
)

type textValue struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}

type directionsStep struct {
	Polyline struct {
		Points string `json:"points"`
	} `json:"polyline"`
}

type directionsLeg struct {
	Distance textValue        `json:"distance"`
	Duration textValue        `json:"duration"`
	Steps    []directionsStep `json:"steps"`
}

type directionsRoute struct {
	Legs []directionsLeg `json:"legs"`
}

type directionsResponse struct {
	Status       string            `json:"status"`
	ErrorMessage string            `json:"error_message"`
	Routes       []directionsRoute `json:"routes"`
}

// toRouteSummary takes the first route: distance and duration text come from
// its first leg, geometry is every step of every leg decoded in order.
func (r *directionsResponse) toRouteSummary() (domain.RouteSummary, error) {
	if len(r.Routes) == 0 {
		if r.ErrorMessage != "" {
			return domain.RouteSummary{}, fmt.Errorf("no routes (status=%s): %s", r.Status, r.ErrorMessage)
		}
		return domain.RouteSummary{}, fmt.Errorf("no routes (status=%s)", r.Status)
	}

	route := r.Routes[0]
	if len(route.Legs) == 0 {
		return domain.RouteSummary{}, fmt.Errorf("route has no legs")
	}

	path := make([]domain.Position, 0, 64)
	for i, leg := range route.Legs {
		for j, step := range leg.Steps {
			points, err := geometry.Decode(step.Polyline.Points)
			if err != nil {
				return domain.RouteSummary{}, fmt.Errorf("decode polyline leg=%d step=%d: %w", i, j, err)
			}
			path = append(path, points...)
		}
	}

	first := route.Legs[0]

	return domain.RouteSummary{
		Polyline:     path,
		DistanceText: first.Distance.Text,
		DurationText: first.Duration.Text,
	}, nil
}
