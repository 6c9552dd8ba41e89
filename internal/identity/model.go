package identity

import "time"

// Identity represents an authorized principal with a link quota.
type Identity struct {
	ID          string
	DisplayName string
	LinkLimit   int
	CreatedAt   time.Time
}

// APIKey is an opaque credential bound 1:1 to an identity at issuance.
// Revocation clears Active and is honored by all later verifications.
type APIKey struct {
	Key        string
	IdentityID string
	Active     bool
	IssuedAt   time.Time
}
