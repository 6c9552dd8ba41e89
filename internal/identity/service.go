package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	sharedDisplayName = "shared-pin-holders"

	// sharedIdentityID is fixed so that, under a durable store, PIN holders
	// keep their identity and recorded links across restarts.
	sharedIdentityID = "00000000-0000-0000-0000-000000000001"
)

// Service manages identity lifecycle and API key issuance.
type Service struct {
	repo             Repository
	defaultLinkLimit int
}

// NewService creates a new identity service. defaultLinkLimit applies to
// identities registered without an explicit limit.
func NewService(repo Repository, defaultLinkLimit int) *Service {
	return &Service{repo: repo, defaultLinkLimit: defaultLinkLimit}
}

// RegisterInput captures registration parameters.
type RegisterInput struct {
	DisplayName string
	LinkLimit   int
}

// Register creates a new identity and issues its first API key.
func (s *Service) Register(ctx context.Context, input RegisterInput) (Identity, APIKey, error) {
	if input.DisplayName == "" {
		return Identity{}, APIKey{}, errors.New("display name is required")
	}
	limit := input.LinkLimit
	if limit <= 0 {
		limit = s.defaultLinkLimit
	}

	ident := Identity{
		ID:          uuid.New().String(),
		DisplayName: input.DisplayName,
		LinkLimit:   limit,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.CreateIdentity(ctx, ident); err != nil {
		return Identity{}, APIKey{}, err
	}

	key, err := s.IssueKey(ctx, ident.ID)
	if err != nil {
		return Identity{}, APIKey{}, err
	}
	return ident, key, nil
}

// IssueKey mints a fresh active API key bound to the given identity.
func (s *Service) IssueKey(ctx context.Context, identityID string) (APIKey, error) {
	if _, err := s.repo.FindIdentity(ctx, identityID); err != nil {
		return APIKey{}, err
	}
	key := APIKey{
		Key:        uuid.NewString(),
		IdentityID: identityID,
		Active:     true,
		IssuedAt:   time.Now().UTC(),
	}
	if err := s.repo.CreateAPIKey(ctx, key); err != nil {
		return APIKey{}, err
	}
	return key, nil
}

// RevokeKey deactivates an issued key; later verifications must reject it.
func (s *Service) RevokeKey(ctx context.Context, key string) error {
	return s.repo.RevokeAPIKey(ctx, key)
}

// EnsureSharedIdentity creates (once) the implicit identity that all valid PIN
// holders resolve to, and returns its id. The id is stable, so an existing row
// in a durable store is reused rather than replaced.
func (s *Service) EnsureSharedIdentity(ctx context.Context) (string, error) {
	if _, err := s.repo.FindIdentity(ctx, sharedIdentityID); err == nil {
		return sharedIdentityID, nil
	} else if !errors.Is(err, ErrNotFound) {
		return "", err
	}
	ident := Identity{
		ID:          sharedIdentityID,
		DisplayName: sharedDisplayName,
		LinkLimit:   s.defaultLinkLimit,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.CreateIdentity(ctx, ident); err != nil {
		return "", err
	}
	return sharedIdentityID, nil
}
