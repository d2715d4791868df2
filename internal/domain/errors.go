package domain

import "errors"

var (
	// The device has not granted location access; the location stream cannot start.
	ErrPermissionDenied = errors.New("location permission denied")

	// Any directions failure: transport, HTTP status, empty route list or decode error.
	ErrRouteUnavailable = errors.New("route unavailable")

	// Catalog reads degrade to empty lists; this marks the logged cause.
	ErrCatalogFetchFailed = errors.New("catalog fetch failed")
)
