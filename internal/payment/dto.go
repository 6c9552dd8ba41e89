package payment

// Request is the ephemeral value object describing one payment initiation.
// It lives only for the duration of a single proxy call and is never stored.
type Request struct {
	ExternalAccountID string
	Amount            float64
	CSRFToken         string
	MSToken           string
	Cookies           string
}

// Redirect is the normalized success outcome: where the client should send
// the user to complete payment.
type Redirect struct {
	URL string
}

// UpstreamReply captures the fields consumed from the provider response. The
// payload is upstream-owned; everything else in it is ignored.
type UpstreamReply struct {
	Code        int
	RedirectURL string
	Message     string
}
