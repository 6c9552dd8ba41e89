package gateway

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/adsgate/adsgate/internal/credential"
	"github.com/adsgate/adsgate/internal/linking"
	"github.com/adsgate/adsgate/internal/payment"
)

// Handler runs the verify and payment pipelines: credential check, link
// enforcement, then (for payments) the upstream proxy call.
type Handler struct {
	verifier *credential.Verifier
	links    *linking.Registry
	payments *payment.Service
	logger   *slog.Logger
}

// NewHandler constructs the gateway handler.
func NewHandler(verifier *credential.Verifier, links *linking.Registry, payments *payment.Service, logger *slog.Logger) *Handler {
	return &Handler{verifier: verifier, links: links, payments: payments, logger: logger}
}

type gatewayRequest struct {
	PIN       string `json:"pin"`
	APIKey    string `json:"api_key"`
	Token     string `json:"token"`
	AdsID     string `json:"ads_id"`
	Amount    any    `json:"amount"`
	CSRFToken string `json:"csrftoken"`
	MSToken   string `json:"mstoken"`
	Cookies   string `json:"cookies"`
}

// amountFrom coerces the amount field, which the extension sends either as a
// JSON number or a numeric string.
func amountFrom(v any) (float64, bool) {
	switch a := v.(type) {
	case float64:
		return a, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// credentialOf picks the presented scheme: session token, then issued key,
// then shared PIN.
func (r gatewayRequest) credentialOf() credential.Credential {
	switch {
	case r.Token != "":
		return credential.Credential{Scheme: credential.SchemeSessionToken, Value: r.Token}
	case r.APIKey != "":
		return credential.Credential{Scheme: credential.SchemeAPIKey, Value: r.APIKey}
	default:
		return credential.Credential{Scheme: credential.SchemePIN, Value: r.PIN}
	}
}

// Verify checks the presented credential and, when an ads account id is
// supplied, ensures it is linked within the identity's quota.
func (h *Handler) Verify(c *fiber.Ctx) error {
	var req gatewayRequest
	if err := c.BodyParser(&req); err != nil {
		return malformed(c)
	}

	ident, err := h.verifier.Verify(c.UserContext(), req.credentialOf())
	if err != nil {
		return h.credentialFailure(c, err)
	}

	if req.AdsID != "" {
		res, err := h.links.EnsureLinked(c.UserContext(), ident, req.AdsID)
		if err != nil {
			return h.internalFailure(c, "ensure link", err)
		}
		if res.Outcome == linking.LimitReached {
			return limitReached(c, res.Limit)
		}
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{"status": true, "valid": true})
}

// ProcessBalance runs the full pipeline and proxies the payment initiation
// upstream, translating the reply into a redirect instruction.
func (h *Handler) ProcessBalance(c *fiber.Ctx) error {
	var req gatewayRequest
	if err := c.BodyParser(&req); err != nil {
		return malformed(c)
	}

	ident, err := h.verifier.Verify(c.UserContext(), req.credentialOf())
	if err != nil {
		return h.credentialFailure(c, err)
	}

	amount, ok := amountFrom(req.Amount)
	if !ok || req.AdsID == "" || req.CSRFToken == "" || req.MSToken == "" || amount <= 0 {
		return malformed(c)
	}

	// Link accounting is final before the upstream call: a later proxy
	// failure does not roll back the recorded link.
	res, err := h.links.EnsureLinked(c.UserContext(), ident, req.AdsID)
	if err != nil {
		return h.internalFailure(c, "ensure link", err)
	}
	if res.Outcome == linking.LimitReached {
		return limitReached(c, res.Limit)
	}

	redirect, err := h.payments.Initiate(c.UserContext(), payment.Request{
		ExternalAccountID: req.AdsID,
		Amount:            amount,
		CSRFToken:         req.CSRFToken,
		MSToken:           req.MSToken,
		Cookies:           req.Cookies,
	})
	if err != nil {
		return h.paymentFailure(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"status":  http.StatusOK,
		"message": "OK",
		"data":    fiber.Map{"redirect_url": redirect.URL},
	})
}

func (h *Handler) credentialFailure(c *fiber.Ctx, err error) error {
	if errors.Is(err, credential.ErrConsistency) {
		return h.internalFailure(c, "verify credential", err)
	}
	if !errors.Is(err, credential.ErrInvalidCredential) {
		return h.internalFailure(c, "verify credential", err)
	}
	return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"status": false, "error": "Invalid credential"})
}

func (h *Handler) paymentFailure(c *fiber.Ctx, err error) error {
	var rejected *payment.RejectedError
	switch {
	case errors.Is(err, payment.ErrMalformedInput):
		return malformed(c)
	case errors.As(err, &rejected):
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"status": false, "message": rejected.Message})
	case errors.Is(err, payment.ErrUpstreamUnreachable):
		h.logger.Error("upstream unreachable", slog.Any("error", err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"status":  false,
			"message": "Failed to process request via payment provider.",
		})
	default:
		return h.internalFailure(c, "initiate payment", err)
	}
}

func (h *Handler) internalFailure(c *fiber.Ctx, op string, err error) error {
	h.logger.Error(op, slog.Any("error", err))
	return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"status": false, "message": "Internal server error"})
}

func malformed(c *fiber.Ctx) error {
	return c.Status(http.StatusBadRequest).JSON(fiber.Map{"status": false, "message": "Missing or invalid parameters"})
}

func limitReached(c *fiber.Ctx, limit int) error {
	return c.Status(http.StatusBadRequest).JSON(fiber.Map{
		"status": false,
		"error":  fmt.Sprintf("Account limit reached (%d)", limit),
	})
}
