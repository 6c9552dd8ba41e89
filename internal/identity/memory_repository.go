package identity

import (
	"context"
	"errors"
	"sync"
)

type memoryRepository struct {
	mu         sync.RWMutex
	identities map[string]Identity
	keys       map[string]APIKey
}

// NewMemoryRepository builds an in-memory identity store. State lives for the
// process lifetime only.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		identities: make(map[string]Identity),
		keys:       make(map[string]APIKey),
	}
}

func (r *memoryRepository) CreateIdentity(_ context.Context, id Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.identities[id.ID]; exists {
		return errors.New("identity exists")
	}
	r.identities[id.ID] = id
	return nil
}

func (r *memoryRepository) FindIdentity(_ context.Context, id string) (Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ident, ok := r.identities[id]
	if !ok {
		return Identity{}, ErrNotFound
	}
	return ident, nil
}

func (r *memoryRepository) CreateAPIKey(_ context.Context, key APIKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.keys[key.Key]; exists {
		return errors.New("key exists")
	}
	r.keys[key.Key] = key
	return nil
}

func (r *memoryRepository) FindAPIKey(_ context.Context, key string) (APIKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.keys[key]
	if !ok {
		return APIKey{}, ErrNotFound
	}
	return rec, nil
}

func (r *memoryRepository) RevokeAPIKey(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.keys[key]
	if !ok {
		return ErrNotFound
	}
	rec.Active = false
	r.keys[key] = rec
	return nil
}
