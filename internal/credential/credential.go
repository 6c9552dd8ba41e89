package credential

import "errors"

// Scheme identifies how a presented credential should be checked.
type Scheme string

const (
	// SchemePIN is the shared-secret scheme: any value in the configured
	// allow-set resolves to the implicit shared identity.
	SchemePIN Scheme = "pin"
	// SchemeAPIKey is an opaque issued key bound to exactly one identity.
	SchemeAPIKey Scheme = "api_key"
	// SchemeSessionToken is a signed, time-bound assertion of an identity id.
	SchemeSessionToken Scheme = "session_token"
)

// Credential is the tagged variant a caller presents for verification.
type Credential struct {
	Scheme Scheme
	Value  string
}

var (
	// ErrInvalidCredential covers every client-side verification failure:
	// missing, unknown, revoked, malformed, or expired credentials. Callers
	// get no finer distinction.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrConsistency signals internal store corruption (an issued key whose
	// bound identity is gone). Non-retryable, never exposed verbatim.
	ErrConsistency = errors.New("credential store inconsistent")
)
