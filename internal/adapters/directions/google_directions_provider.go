package directions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"wayfinder-route-service/internal/domain"
	"wayfinder-route-service/internal/platform/logger"
	"wayfinder-route-service/internal/platform/obs"

	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://maps.googleapis.com"
	directionsPath = "/maps/api/directions/json"
	walkingMode    = "walking"
)

// GoogleDirectionsProvider implements DirectionsProvider using the Google
// Directions API in walking mode.
//
// Every call is a single round trip: there is no retry, because the caller
// re-requests on the next position or destination change anyway.
// The provider is safe for concurrent use.
type GoogleDirectionsProvider struct {
	session *http.Client
	apiKey  string
	baseURL string
	mode    string
	logger  *zap.Logger
}

type Option func(*GoogleDirectionsProvider)

func WithBaseURL(u string) Option {
	return func(g *GoogleDirectionsProvider) { g.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(c *http.Client) Option {
	return func(g *GoogleDirectionsProvider) { g.session = c }
}

func WithTimeout(d time.Duration) Option {
	return func(g *GoogleDirectionsProvider) { g.session.Timeout = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(g *GoogleDirectionsProvider) { g.logger = logger.OrNop(l) }
}

func NewGoogleDirectionsProvider(apiKey string, opts ...Option) (*GoogleDirectionsProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("directions api key is empty")
	}

	provider := &GoogleDirectionsProvider{
		session: &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		mode:    walkingMode,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(provider)
	}

	return provider, nil
}

// FetchRoute requests a walking route from origin to destination.
// Every failure is wrapped with domain.ErrRouteUnavailable.
func (g *GoogleDirectionsProvider) FetchRoute(
	ctx context.Context,
	origin domain.Position,
	destination domain.Destination,
) (_ domain.RouteSummary, err error) {
	defer obs.Time(ctx, "directions.FetchRoute")(&err)

	summary, err := g.fetch(ctx, origin, destination)
	if err != nil {
		return domain.RouteSummary{}, fmt.Errorf(
			"fetch route %s -> %q: %w: %w",
			origin.LatLng(), destination.Name, domain.ErrRouteUnavailable, err,
		)
	}

	return summary, nil
}

func (g *GoogleDirectionsProvider) fetch(
	ctx context.Context,
	origin domain.Position,
	destination domain.Destination,
) (domain.RouteSummary, error) {
	req, err := g.newRequest(ctx, g.baseURL+directionsPath, map[string]string{
		"origin":      origin.LatLng(),
		"destination": destination.LatLng(),
		"mode":        g.mode,
	})
	if err != nil {
		return domain.RouteSummary{}, err
	}

	resp, err := g.do(req)
	if err != nil {
		return domain.RouteSummary{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.RouteSummary{}, fmt.Errorf("decode directions response: %w", err)
	}

	summary, err := decoded.toRouteSummary()
	if err != nil {
		return domain.RouteSummary{}, err
	}

	g.logger.Debug("route decoded",
		zap.String("destination", destination.Name),
		zap.String("distance", summary.DistanceText),
		zap.String("duration", summary.DurationText),
		zap.Int("points", len(summary.Polyline)),
	)

	return summary, nil
}
