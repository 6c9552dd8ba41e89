package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrMalformedInput indicates the request failed shape checks before any
	// outbound call was attempted.
	ErrMalformedInput = errors.New("missing or invalid parameters")

	// ErrUpstreamUnreachable indicates a transport failure reaching the
	// provider. Safe to retry only with a fresh amount check.
	ErrUpstreamUnreachable = errors.New("upstream unreachable")
)

// RejectedError is a definitive provider decision: the call completed but the
// reply lacked a success marker or redirect. Not retryable.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	return "upstream rejected: " + e.Message
}

const defaultRejectionMessage = "payment provider request failed or returned unexpected data"

// Service forwards payment initiations to the provider and normalizes the
// reply. It performs no retries and attaches no idempotency key: every call
// is a fresh attempt.
type Service struct {
	gateway Gateway
}

// NewService constructs a payment service over the given gateway.
func NewService(gateway Gateway) *Service {
	return &Service{gateway: gateway}
}

// Initiate sends one shaped request upstream. Callers must have authorized
// and linked the identity/account pair before invoking this; only shape
// checks happen here.
func (s *Service) Initiate(ctx context.Context, req Request) (Redirect, error) {
	if err := validateShape(req); err != nil {
		return Redirect{}, err
	}

	reply, err := s.gateway.InitiatePayment(ctx, req)
	if err != nil {
		return Redirect{}, fmt.Errorf("%w: %v", ErrUpstreamUnreachable, err)
	}

	if reply.Code != 0 || reply.RedirectURL == "" {
		msg := reply.Message
		if msg == "" {
			msg = defaultRejectionMessage
		}
		return Redirect{}, &RejectedError{Message: msg}
	}

	return Redirect{URL: reply.RedirectURL}, nil
}

func validateShape(req Request) error {
	if req.ExternalAccountID == "" || req.CSRFToken == "" || req.MSToken == "" {
		return ErrMalformedInput
	}
	if req.Amount <= 0 || math.IsInf(req.Amount, 0) || math.IsNaN(req.Amount) {
		return ErrMalformedInput
	}
	return nil
}
