package services

import (
	"sync"
	"wayfinder-route-service/internal/domain"
)

// DestinationState holds the chosen destination, or none.
// It knows nothing about routes; RouteSyncEngine is its only writer.
type DestinationState struct {
	mu      sync.RWMutex
	current domain.Destination
	set     bool
}

func (s *DestinationState) Select(d domain.Destination) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current, s.set = d, true
}

func (s *DestinationState) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current, s.set = domain.Destination{}, false
}

func (s *DestinationState) Current() (domain.Destination, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.set
}
