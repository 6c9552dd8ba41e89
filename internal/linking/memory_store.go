package linking

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu    sync.RWMutex
	links map[string]map[string]struct{}
}

// NewMemoryStore creates a process-lifetime in-memory link store.
func NewMemoryStore() Store {
	return &memoryStore{links: make(map[string]map[string]struct{})}
}

func (s *memoryStore) IsLinked(_ context.Context, identityID, externalAccountID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.links[identityID]
	if !ok {
		return false, nil
	}
	_, linked := set[externalAccountID]
	return linked, nil
}

func (s *memoryStore) Count(_ context.Context, identityID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.links[identityID]), nil
}

func (s *memoryStore) Add(_ context.Context, identityID, externalAccountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.links[identityID]
	if !ok {
		set = make(map[string]struct{})
		s.links[identityID] = set
	}
	set[externalAccountID] = struct{}{}
	return nil
}
