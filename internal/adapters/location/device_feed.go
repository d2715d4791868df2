// Package location turns fixes pushed by a device into a cancel-aware
// ports.LocationSource.
package location

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
	"wayfinder-route-service/internal/domain"
	"wayfinder-route-service/internal/platform/logger"
	"wayfinder-route-service/internal/ports"

	"go.uber.org/zap"
)

var ErrInvalidPosition = errors.New("invalid position")

type Options struct {
	// A fix is accepted once MinInterval has passed since the last accepted
	// one, or earlier when the device moved at least MinDisplacementMeters.
	MinInterval           time.Duration
	MinDisplacementMeters float64
}

// DeviceFeed is the platform location provider for one device. Fixes arrive
// through Push; consumers register through Subscribe. Each registration holds
// at most one undelivered fix (latest wins).
type DeviceFeed struct {
	mu           sync.Mutex
	granted      bool
	regs         map[uint64]*registration
	nextID       uint64
	last         domain.Position
	hasLast      bool
	lastAccepted time.Time

	opts     Options
	now      func() time.Time
	releases atomic.Int64
	logger   *zap.Logger
}

type FeedOption func(*DeviceFeed)

func WithClock(now func() time.Time) FeedOption {
	return func(f *DeviceFeed) { f.now = now }
}

func WithLogger(l *zap.Logger) FeedOption {
	return func(f *DeviceFeed) { f.logger = logger.OrNop(l) }
}

func NewDeviceFeed(granted bool, opts Options, fopts ...FeedOption) *DeviceFeed {
	f := &DeviceFeed{
		granted: granted,
		regs:    make(map[uint64]*registration),
		opts:    opts,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, o := range fopts {
		o(f)
	}
	return f
}

// Subscribe acquires one registration. The last accepted fix, if any, is
// queued immediately. Cancelling ctx releases the registration.
func (f *DeviceFeed) Subscribe(ctx context.Context) (ports.LocationSubscription, error) {
	f.mu.Lock()
	if !f.granted {
		f.mu.Unlock()
		return nil, domain.ErrPermissionDenied
	}

	f.nextID++
	r := &registration{id: f.nextID, ch: make(chan domain.Position, 1)}
	if f.hasLast {
		r.ch <- f.last
	}
	f.regs[r.id] = r
	f.mu.Unlock()

	sub := &Subscription{feed: f, reg: r}
	stop := context.AfterFunc(ctx, sub.Unsubscribe)
	f.mu.Lock()
	sub.stop = stop
	f.mu.Unlock()

	f.logger.Debug("location registration acquired", zap.Uint64("registration", r.id))
	return sub, nil
}

// Push offers a new fix. It reports whether the fix was accepted; throttled
// fixes return false with a nil error.
func (f *DeviceFeed) Push(p domain.Position) (bool, error) {
	if !p.Valid() {
		return false, fmt.Errorf("%w: %s", ErrInvalidPosition, p.LatLng())
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.granted {
		return false, domain.ErrPermissionDenied
	}

	now := f.now()
	if f.hasLast && now.Sub(f.lastAccepted) < f.opts.MinInterval &&
		domain.DistanceMeters(f.last, p) < f.opts.MinDisplacementMeters {
		return false, nil
	}

	if p.RecordedAt.IsZero() {
		p.RecordedAt = now
	}
	f.last, f.hasLast, f.lastAccepted = p, true, now

	for _, r := range f.regs {
		r.offer(p)
	}
	return true, nil
}

// SetPermission updates the location permission. Revoking closes every
// registration; subscribers must subscribe again once it is granted.
func (f *DeviceFeed) SetPermission(granted bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.granted = granted
	if granted {
		return
	}

	for _, r := range f.regs {
		f.releaseLocked(r)
	}
	f.logger.Info("location permission revoked")
}

func (f *DeviceFeed) Permission() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.granted
}

// LastKnown returns the last accepted fix.
func (f *DeviceFeed) LastKnown() (domain.Position, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last, f.hasLast
}

func (f *DeviceFeed) ActiveRegistrations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.regs)
}

// Releases counts registrations released so far, by any path.
func (f *DeviceFeed) Releases() int64 { return f.releases.Load() }

func (f *DeviceFeed) releaseLocked(r *registration) {
	if r.released {
		return
	}
	r.released = true
	delete(f.regs, r.id)
	close(r.ch)
	f.releases.Add(1)
}

type registration struct {
	id       uint64
	ch       chan domain.Position
	released bool
}

// offer replaces any undelivered fix. Callers hold the feed lock, so the
// feed is the only sender.
func (r *registration) offer(p domain.Position) {
	select {
	case r.ch <- p:
		return
	default:
	}
	select {
	case <-r.ch:
	default:
	}
	select {
	case r.ch <- p:
	default:
	}
}

var _ ports.LocationSource = (*DeviceFeed)(nil)

// Subscription is one live registration on a DeviceFeed.
type Subscription struct {
	feed *DeviceFeed
	reg  *registration
	stop func() bool
}

// Positions is closed once the registration is released.
func (s *Subscription) Positions() <-chan domain.Position { return s.reg.ch }

// Unsubscribe releases the registration before returning. Later calls do nothing.
func (s *Subscription) Unsubscribe() {
	s.feed.mu.Lock()
	released := s.reg.released
	s.feed.releaseLocked(s.reg)
	stop := s.stop
	s.feed.mu.Unlock()

	if stop != nil {
		stop()
	}
	if !released {
		s.feed.logger.Debug("location registration released", zap.Uint64("registration", s.reg.id))
	}
}
