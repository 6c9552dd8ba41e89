package credential

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adsgate/adsgate/internal/identity"
)

// Verifier resolves a presented credential to exactly one identity or a typed
// failure. Verification is deterministic and side-effect-free: it reads stores
// but never mutates them, so it is safe to call any number of times.
type Verifier struct {
	pins             []string
	sharedIdentityID string
	repo             identity.Repository
	secret           []byte
}

// NewVerifier wires a verifier over the PIN allow-set, the implicit shared
// identity all PIN holders resolve to, the identity store, and the session
// signing secret.
func NewVerifier(pins []string, sharedIdentityID string, repo identity.Repository, secret string) *Verifier {
	return &Verifier{
		pins:             pins,
		sharedIdentityID: sharedIdentityID,
		repo:             repo,
		secret:           []byte(secret),
	}
}

// Verify dispatches on the credential scheme and resolves it to an identity.
// Client-side failures are ErrInvalidCredential; a key bound to a missing
// identity is ErrConsistency.
func (v *Verifier) Verify(ctx context.Context, cred Credential) (identity.Identity, error) {
	switch cred.Scheme {
	case SchemePIN:
		return v.verifyPIN(ctx, cred.Value)
	case SchemeAPIKey:
		return v.verifyAPIKey(ctx, cred.Value)
	case SchemeSessionToken:
		return v.verifySessionToken(ctx, cred.Value)
	default:
		return identity.Identity{}, ErrInvalidCredential
	}
}

func (v *Verifier) verifyPIN(ctx context.Context, presented string) (identity.Identity, error) {
	presented = strings.TrimSpace(presented)
	if presented == "" {
		return identity.Identity{}, ErrInvalidCredential
	}
	for _, pin := range v.pins {
		if presented == pin {
			ident, err := v.repo.FindIdentity(ctx, v.sharedIdentityID)
			if err != nil {
				return identity.Identity{}, fmt.Errorf("%w: shared identity missing", ErrConsistency)
			}
			return ident, nil
		}
	}
	return identity.Identity{}, ErrInvalidCredential
}

func (v *Verifier) verifyAPIKey(ctx context.Context, key string) (identity.Identity, error) {
	if key == "" {
		return identity.Identity{}, ErrInvalidCredential
	}
	rec, err := v.repo.FindAPIKey(ctx, key)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return identity.Identity{}, ErrInvalidCredential
		}
		return identity.Identity{}, err
	}
	if !rec.Active {
		return identity.Identity{}, ErrInvalidCredential
	}
	ident, err := v.repo.FindIdentity(ctx, rec.IdentityID)
	if err != nil {
		// An active key whose identity is gone means the store itself is
		// corrupt, not that the client presented a bad credential.
		return identity.Identity{}, fmt.Errorf("%w: key %s bound to missing identity", ErrConsistency, rec.Key)
	}
	return ident, nil
}

func (v *Verifier) verifySessionToken(ctx context.Context, token string) (identity.Identity, error) {
	if token == "" {
		return identity.Identity{}, ErrInvalidCredential
	}
	claims, err := ParseAndVerifyHS256(token, v.secret)
	if err != nil {
		return identity.Identity{}, ErrInvalidCredential
	}
	exp, ok := claims["exp"].(float64)
	if !ok || time.Now().Unix() >= int64(exp) {
		return identity.Identity{}, ErrInvalidCredential
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return identity.Identity{}, ErrInvalidCredential
	}
	ident, err := v.repo.FindIdentity(ctx, sub)
	if err != nil {
		return identity.Identity{}, ErrInvalidCredential
	}
	return ident, nil
}
