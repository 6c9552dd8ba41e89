package linking

import (
	"context"
	"sync"

	"github.com/adsgate/adsgate/internal/identity"
)

// LinkOutcome classifies the result of an EnsureLinked call.
type LinkOutcome string

const (
	// NewlyLinked means the pair was recorded and one unit of quota consumed.
	NewlyLinked LinkOutcome = "newly_linked"
	// AlreadyLinked means the pair existed; no mutation, no quota consumed.
	AlreadyLinked LinkOutcome = "already_linked"
	// LimitReached means the identity's quota is exhausted; no mutation.
	LimitReached LinkOutcome = "limit_reached"
)

// LinkResult carries the outcome plus the identity's configured limit, which
// callers surface on limit failures.
type LinkResult struct {
	Outcome LinkOutcome
	Limit   int
}

// Linked reports whether the pair is usable after the call.
func (r LinkResult) Linked() bool {
	return r.Outcome == NewlyLinked || r.Outcome == AlreadyLinked
}

// Registry enforces the per-identity link quota. The check-then-act sequence
// is serialized per identity so concurrent calls cannot both pass the limit
// check when one slot remains.
type Registry struct {
	store Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRegistry builds a registry over the given link store.
func NewRegistry(store Store) *Registry {
	return &Registry{store: store, locks: make(map[string]*sync.Mutex)}
}

// EnsureLinked records the (identity, externalAccountID) pair if quota allows.
// Re-presenting an existing pair is a no-op success that consumes no quota.
func (r *Registry) EnsureLinked(ctx context.Context, ident identity.Identity, externalAccountID string) (LinkResult, error) {
	lock := r.identityLock(ident.ID)
	lock.Lock()
	defer lock.Unlock()

	linked, err := r.store.IsLinked(ctx, ident.ID, externalAccountID)
	if err != nil {
		return LinkResult{}, err
	}
	if linked {
		return LinkResult{Outcome: AlreadyLinked, Limit: ident.LinkLimit}, nil
	}

	count, err := r.store.Count(ctx, ident.ID)
	if err != nil {
		return LinkResult{}, err
	}
	if count >= ident.LinkLimit {
		return LinkResult{Outcome: LimitReached, Limit: ident.LinkLimit}, nil
	}

	if err := r.store.Add(ctx, ident.ID, externalAccountID); err != nil {
		return LinkResult{}, err
	}
	return LinkResult{Outcome: NewlyLinked, Limit: ident.LinkLimit}, nil
}

// Count exposes the identity's current linked-account count.
func (r *Registry) Count(ctx context.Context, identityID string) (int, error) {
	return r.store.Count(ctx, identityID)
}

func (r *Registry) identityLock(identityID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[identityID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[identityID] = lock
	}
	return lock
}
