package credential

import (
	"time"
)

// Issuer mints signed session tokens asserting an identity id.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

// NewIssuer creates a session token issuer signing with the given secret.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

// Issue signs a session token for the identity and returns the token along
// with its validity in seconds.
func (i *Issuer) Issue(identityID string) (string, int64, error) {
	now := time.Now()
	exp := now.Add(i.ttl)
	claims := map[string]any{
		"sub": identityID,
		"iat": now.Unix(),
		"exp": exp.Unix(),
	}
	signed, err := SignHS256(claims, i.secret)
	if err != nil {
		return "", 0, err
	}
	return signed, int64(i.ttl.Seconds()), nil
}
