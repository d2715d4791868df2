package sessions

import (
	"context"
	"errors"
	"time"
	"wayfinder-route-service/internal/adapters/location"
	"wayfinder-route-service/internal/domain"
	"wayfinder-route-service/internal/services"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Session is one map screen: a device feed, the route engine fed by it and
// the catalog behind the destination picker.
type Session struct {
	ID        string
	CreatedAt time.Time

	feed    *location.DeviceFeed
	engine  *services.RouteSyncEngine
	catalog *services.CatalogCache
	logger  *zap.Logger

	retry  chan struct{}
	cancel context.CancelFunc
	group  *errgroup.Group
}

type View struct {
	ID                 string
	CreatedAt          time.Time
	LocationPermission bool
	Route              services.RouteSnapshot
	Catalog            services.CatalogView
}

func (s *Session) start(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel

	g, ctx := errgroup.WithContext(ctx)
	s.group = g

	g.Go(func() error { return s.engine.Run(ctx) })
	g.Go(func() error {
		s.pumpLocation(ctx)
		return nil
	})
}

// pumpLocation forwards fixes from the feed into the engine. When the feed
// refuses or drops the registration it reports that to the engine and waits
// for the permission to change.
func (s *Session) pumpLocation(ctx context.Context) {
	for {
		sub, err := s.feed.Subscribe(ctx)
		if err != nil {
			_ = s.engine.ReportLocationError(ctx, err)
			if !s.waitRetry(ctx) {
				return
			}
			continue
		}

		s.forward(ctx, sub.Positions())
		sub.Unsubscribe()

		if ctx.Err() != nil {
			return
		}
		_ = s.engine.ReportLocationError(ctx, domain.ErrPermissionDenied)
		if !s.waitRetry(ctx) {
			return
		}
	}
}

func (s *Session) forward(ctx context.Context, positions <-chan domain.Position) {
	for {
		select {
		case <-ctx.Done():
			return
		case p, ok := <-positions:
			if !ok {
				return
			}
			if err := s.engine.UpdatePosition(ctx, p); err != nil {
				return
			}
		}
	}
}

func (s *Session) waitRetry(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-s.retry:
		return true
	}
}

// PushPosition offers a device fix. It reports whether the fix passed the
// feed throttle.
func (s *Session) PushPosition(p domain.Position) (bool, error) {
	return s.feed.Push(p)
}

func (s *Session) SetPermission(granted bool) {
	s.feed.SetPermission(granted)
	if !granted {
		return
	}
	select {
	case s.retry <- struct{}{}:
	default:
	}
}

func (s *Session) SelectDestination(ctx context.Context, d domain.Destination) error {
	return s.engine.SelectDestination(ctx, d)
}

func (s *Session) CancelRouting(ctx context.Context) error {
	return s.engine.CancelRouting(ctx)
}

func (s *Session) SelectCategory(ctx context.Context, category string) []domain.Destination {
	return s.catalog.SelectCategory(ctx, category)
}

// Catalog exposes the session's catalog cache.
func (s *Session) Catalog() *services.CatalogCache { return s.catalog }

func (s *Session) Watch() (<-chan services.RouteSnapshot, func()) {
	return s.engine.Watch()
}

func (s *Session) View() View {
	return s.ViewOf(s.engine.Snapshot())
}

// ViewOf combines a snapshot taken from Watch with the current catalog.
func (s *Session) ViewOf(route services.RouteSnapshot) View {
	return View{
		ID:                 s.ID,
		CreatedAt:          s.CreatedAt,
		LocationPermission: s.feed.Permission(),
		Route:              route,
		Catalog:            s.catalog.View(),
	}
}

// Done is closed once the session has stopped.
func (s *Session) Done() <-chan struct{} { return s.engine.Done() }

// Feed exposes the location feed, mainly for diagnostics.
func (s *Session) Feed() *location.DeviceFeed { return s.feed }

func (s *Session) close() error {
	s.cancel()
	err := s.group.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	s.logger.Info("session closed", zap.Int64("location_releases", s.feed.Releases()))
	return err
}
