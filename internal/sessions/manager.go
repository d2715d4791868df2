package sessions

import (
	"context"
	"errors"
	"sync"
	"time"
	"wayfinder-route-service/internal/adapters/location"
	"wayfinder-route-service/internal/platform/logger"
	"wayfinder-route-service/internal/ports"
	"wayfinder-route-service/internal/services"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrSessionNotFound = errors.New("session not found")

type Options struct {
	Location     location.Options
	FetchTimeout time.Duration
}

// Manager owns every live session. Sessions outlive the requests that
// create them and stop on Close or CloseAll.
type Manager struct {
	provider ports.DirectionsProvider
	store    ports.CatalogStore
	opts     Options
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(
	provider ports.DirectionsProvider,
	store ports.CatalogStore,
	opts Options,
	l *zap.Logger,
) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		provider: provider,
		store:    store,
		opts:     opts,
		logger:   logger.OrNop(l),
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*Session),
	}
}

// Create starts a session. The category list is loaded before it returns;
// ctx bounds only that load.
func (m *Manager) Create(ctx context.Context, permissionGranted bool) (*Session, error) {
	if err := m.ctx.Err(); err != nil {
		return nil, errors.New("session manager is closed")
	}

	id := uuid.NewString()
	sl := m.logger.With(zap.String("session_id", id))

	destination := &services.DestinationState{}
	s := &Session{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		feed:      location.NewDeviceFeed(permissionGranted, m.opts.Location, location.WithLogger(sl)),
		engine: services.NewRouteSyncEngine(
			m.provider,
			destination,
			services.EngineOptions{FetchTimeout: m.opts.FetchTimeout},
			sl,
		),
		catalog: services.NewCatalogCache(m.store, sl),
		logger:  sl,
		retry:   make(chan struct{}, 1),
	}
	s.catalog.LoadCategories(ctx)
	s.start(m.ctx)

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	sl.Info("session created", zap.Bool("location_permission", permissionGranted))
	return s, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	return s.close()
}

// CloseAll stops every session and refuses new ones.
func (m *Manager) CloseAll() {
	m.cancel()

	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		all = append(all, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, s := range all {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.close(); err != nil {
				m.logger.Warn("session close failed", zap.String("session_id", s.ID), zap.Error(err))
			}
		}()
	}
	wg.Wait()
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
