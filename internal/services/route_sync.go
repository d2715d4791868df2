package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
	"wayfinder-route-service/internal/domain"
	"wayfinder-route-service/internal/platform/logger"
	"wayfinder-route-service/internal/ports"

	"go.uber.org/zap"
)

var ErrEngineStopped = errors.New("route sync engine stopped")

type LocationStatus string

const (
	LocationUnknown     LocationStatus = "unknown"
	LocationOK          LocationStatus = "ok"
	LocationDenied      LocationStatus = "permission_denied"
	LocationUnavailable LocationStatus = "unavailable"
)

type RouteStats struct {
	Issued    int64
	Committed int64
	Discarded int64
	Failed    int64
}

// RouteSnapshot is an immutable view of the engine after one event.
// Nil pointers mean "none".
type RouteSnapshot struct {
	State       domain.RouteState
	Destination *domain.Destination
	Position    *domain.Position
	Route       *domain.RouteSummary
	Location    LocationStatus
	Version     uint64
	Stats       RouteStats
}

type EngineOptions struct {
	// Upper bound for one directions round trip. Zero means 10s.
	FetchTimeout time.Duration
}

// Events consumed by the engine loop, in arrival order.
type (
	positionUpdated      struct{ position domain.Position }
	destinationSelected  struct{ destination domain.Destination }
	destinationCancelled struct{}
	locationFailed       struct{ err error }
	fetchCompleted       struct {
		key   domain.SyncKey
		route domain.RouteSummary
		err   error
	}
)

type envelope struct {
	event   any
	applied chan struct{}
}

// RouteSyncEngine keeps the published route in step with the latest
// (destination, position) pair.
//
// All state lives in the Run goroutine and changes only in response to
// events read from one channel. Every directions fetch is tagged with the
// pair it was issued for; a completion is committed only while that pair is
// still current, otherwise it is dropped. Fetches are never cancelled on
// supersede, they just lose.
type RouteSyncEngine struct {
	provider     ports.DirectionsProvider
	destination  *DestinationState
	fetchTimeout time.Duration
	logger       *zap.Logger

	events  chan envelope
	done    chan struct{}
	started atomic.Bool
	fetches sync.WaitGroup

	// loop-owned
	position    domain.Position
	hasPosition bool
	lastIssued  domain.SyncKey
	hasIssued   bool
	route       *domain.RouteSummary
	state       domain.RouteState
	location    LocationStatus
	stats       RouteStats
	version     uint64

	mu          sync.RWMutex
	snapshot    RouteSnapshot
	watchers    map[uint64]chan RouteSnapshot
	nextWatcher uint64
	stopped     bool
}

func NewRouteSyncEngine(
	provider ports.DirectionsProvider,
	destination *DestinationState,
	opts EngineOptions,
	l *zap.Logger,
) *RouteSyncEngine {
	if destination == nil {
		destination = &DestinationState{}
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 10 * time.Second
	}

	e := &RouteSyncEngine{
		provider:     provider,
		destination:  destination,
		fetchTimeout: opts.FetchTimeout,
		logger:       logger.OrNop(l),
		events:       make(chan envelope, 64),
		done:         make(chan struct{}),
		state:        domain.RouteStateIdle,
		location:     LocationUnknown,
		watchers:     make(map[uint64]chan RouteSnapshot),
	}
	e.snapshot = e.buildSnapshot()
	return e
}

// Run processes events until ctx is done. It waits for outstanding fetches
// before returning and closes every watcher on the way out.
func (e *RouteSyncEngine) Run(ctx context.Context) error {
	if !e.started.CompareAndSwap(false, true) {
		return errors.New("route sync engine: already running")
	}
	defer e.shutdown()

	for {
		select {
		case <-ctx.Done():
			e.fetches.Wait()
			return nil
		case env := <-e.events:
			e.apply(ctx, env.event)
			e.publish()
			if env.applied != nil {
				close(env.applied)
			}
		}
	}
}

// Done is closed once Run has returned.
func (e *RouteSyncEngine) Done() <-chan struct{} { return e.done }

// UpdatePosition feeds a new origin fix. It returns once the engine has applied it.
func (e *RouteSyncEngine) UpdatePosition(ctx context.Context, p domain.Position) error {
	return e.dispatch(ctx, positionUpdated{position: p})
}

func (e *RouteSyncEngine) SelectDestination(ctx context.Context, d domain.Destination) error {
	return e.dispatch(ctx, destinationSelected{destination: d})
}

// CancelRouting clears destination and route together. When it returns the
// snapshot already shows neither, and any fetch still in flight is discarded.
func (e *RouteSyncEngine) CancelRouting(ctx context.Context) error {
	return e.dispatch(ctx, destinationCancelled{})
}

// ReportLocationError tells the engine the location stream is gone. The
// engine then behaves as if no fix had arrived yet.
func (e *RouteSyncEngine) ReportLocationError(ctx context.Context, err error) error {
	return e.dispatch(ctx, locationFailed{err: err})
}

func (e *RouteSyncEngine) Snapshot() RouteSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshot
}

// Watch returns a channel primed with the current snapshot. Slow readers
// only ever see the newest snapshot. The channel is closed by the returned
// func or when the engine stops.
func (e *RouteSyncEngine) Watch() (<-chan RouteSnapshot, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ch := make(chan RouteSnapshot, 1)
	if e.stopped {
		close(ch)
		return ch, func() {}
	}

	e.nextWatcher++
	id := e.nextWatcher
	e.watchers[id] = ch
	ch <- e.snapshot

	return ch, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if w, ok := e.watchers[id]; ok {
			delete(e.watchers, id)
			close(w)
		}
	}
}

func (e *RouteSyncEngine) dispatch(ctx context.Context, ev any) error {
	env := envelope{event: ev, applied: make(chan struct{})}

	select {
	case e.events <- env:
	case <-e.done:
		return ErrEngineStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-env.applied:
		return nil
	case <-e.done:
		return ErrEngineStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *RouteSyncEngine) apply(ctx context.Context, ev any) {
	switch ev := ev.(type) {
	case positionUpdated:
		e.position, e.hasPosition = ev.position, true
		e.location = LocationOK
		e.reconcile(ctx)

	case destinationSelected:
		if current, ok := e.destination.Current(); !ok || !current.Equal(ev.destination) {
			e.destination.Select(ev.destination)
			// A route to the old destination must not linger.
			e.route = nil
		}
		e.reconcile(ctx)

	case destinationCancelled:
		e.destination.Cancel()
		e.route = nil
		e.hasIssued = false
		e.state = domain.RouteStateIdle

	case locationFailed:
		e.hasPosition = false
		e.hasIssued = false
		if errors.Is(ev.err, domain.ErrPermissionDenied) {
			e.location = LocationDenied
		} else {
			e.location = LocationUnavailable
		}
		e.logger.Info("location stream lost", zap.Error(ev.err))
		e.reconcile(ctx)

	case fetchCompleted:
		e.complete(ev)
	}
}

func (e *RouteSyncEngine) currentKey() (domain.SyncKey, bool) {
	d, ok := e.destination.Current()
	if !ok || !e.hasPosition {
		return domain.SyncKey{}, false
	}
	return domain.SyncKey{Destination: d, Origin: e.position}, true
}

// reconcile derives the state from destination and position and issues a
// fetch when the pair differs from the last one issued.
func (e *RouteSyncEngine) reconcile(ctx context.Context) {
	if _, ok := e.destination.Current(); !ok {
		e.state = domain.RouteStateIdle
		return
	}

	key, ok := e.currentKey()
	if !ok {
		e.state = domain.RouteStateAwaitingFirstFix
		return
	}

	if e.hasIssued && key.Equal(e.lastIssued) {
		return
	}

	e.lastIssued, e.hasIssued = key, true
	e.state = domain.RouteStateFetching
	e.stats.Issued++

	e.logger.Debug("route fetch issued",
		zap.String("destination", key.Destination.Name),
		zap.String("origin", key.Origin.LatLng()),
	)

	e.fetches.Add(1)
	go e.fetch(ctx, key)
}

func (e *RouteSyncEngine) fetch(ctx context.Context, key domain.SyncKey) {
	defer e.fetches.Done()

	fctx, cancel := context.WithTimeout(ctx, e.fetchTimeout)
	defer cancel()

	route, err := e.provider.FetchRoute(fctx, key.Origin, key.Destination)

	select {
	case e.events <- envelope{event: fetchCompleted{key: key, route: route, err: err}}:
	case <-ctx.Done():
	}
}

func (e *RouteSyncEngine) complete(ev fetchCompleted) {
	key, ok := e.currentKey()
	if !ok || !key.Equal(ev.key) {
		e.stats.Discarded++
		e.logger.Debug("stale route result discarded",
			zap.String("destination", ev.key.Destination.Name),
			zap.String("origin", ev.key.Origin.LatLng()),
		)
		return
	}

	if ev.err != nil {
		e.stats.Failed++
		e.state = domain.RouteStateUnavailable
		e.logger.Warn("route fetch failed",
			zap.String("destination", ev.key.Destination.Name),
			zap.Error(ev.err),
		)
		return
	}

	route := ev.route
	e.route = &route
	e.state = domain.RouteStateSettled
	e.stats.Committed++
}

func (e *RouteSyncEngine) buildSnapshot() RouteSnapshot {
	s := RouteSnapshot{
		State:    e.state,
		Location: e.location,
		Version:  e.version,
		Stats:    e.stats,
		Route:    e.route,
	}
	if d, ok := e.destination.Current(); ok {
		s.Destination = &d
	}
	if e.hasPosition {
		p := e.position
		s.Position = &p
	}
	return s
}

func (e *RouteSyncEngine) publish() {
	e.version++
	snap := e.buildSnapshot()

	e.mu.Lock()
	defer e.mu.Unlock()

	e.snapshot = snap
	for _, ch := range e.watchers {
		select {
		case ch <- snap:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

func (e *RouteSyncEngine) shutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopped = true
	for id, ch := range e.watchers {
		delete(e.watchers, id)
		close(ch)
	}
	close(e.done)
}
