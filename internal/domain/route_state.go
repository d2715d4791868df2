package domain

// RouteState is the phase of the route synchronization engine.
type RouteState string

const (
	// No destination selected; no route displayed.
	RouteStateIdle RouteState = "idle"
	// Destination selected, waiting for the first position fix.
	RouteStateAwaitingFirstFix RouteState = "awaiting_first_fix"
	// A directions fetch for the current pair is in flight.
	RouteStateFetching RouteState = "fetching"
	// The route for the current pair is published.
	RouteStateSettled RouteState = "settled"
	// The fetch for the current pair failed; the previous route, if any, stays displayed.
	RouteStateUnavailable RouteState = "unavailable"
)

// IsRouting returns true while a destination is selected.
func (s RouteState) IsRouting() bool {
	return s != RouteStateIdle && s != ""
}

func (s RouteState) String() string {
	return string(s)
}
