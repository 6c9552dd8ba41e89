package identity

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// TokenIssuer mints signed session tokens asserting an identity id.
type TokenIssuer interface {
	Issue(identityID string) (string, int64, error)
}

// Handler exposes registration and credential-issuance endpoints.
type Handler struct {
	svc    *Service
	issuer TokenIssuer
}

// NewHandler constructs an identity handler.
func NewHandler(svc *Service, issuer TokenIssuer) *Handler {
	return &Handler{svc: svc, issuer: issuer}
}

type registerRequest struct {
	Name      string `json:"name"`
	LinkLimit int    `json:"link_limit"`
}

type registerResponse struct {
	IdentityID string `json:"identity_id"`
	APIKey     string `json:"api_key"`
	LinkLimit  int    `json:"link_limit"`
}

// Register creates an identity and issues its first API key.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Missing or invalid parameters")
	}
	ident, key, err := h.svc.Register(c.UserContext(), RegisterInput{DisplayName: req.Name, LinkLimit: req.LinkLimit})
	if err != nil {
		return badRequest(c, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(registerResponse{
		IdentityID: ident.ID,
		APIKey:     key.Key,
		LinkLimit:  ident.LinkLimit,
	})
}

type tokenRequest struct {
	APIKey string `json:"api_key"`
}

// Token exchanges an active API key for a signed session token.
func (h *Handler) Token(c *fiber.Ctx) error {
	var req tokenRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Missing or invalid parameters")
	}
	key, err := h.svc.repo.FindAPIKey(c.UserContext(), req.APIKey)
	if err != nil || !key.Active {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"status": false, "error": "Invalid credential"})
	}
	token, expiresIn, err := h.issuer.Issue(key.IdentityID)
	if err != nil {
		return internalError(c)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"token": token, "expires_in": expiresIn})
}

type revokeRequest struct {
	APIKey string `json:"api_key"`
}

// Revoke deactivates an issued API key.
func (h *Handler) Revoke(c *fiber.Ctx) error {
	var req revokeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Missing or invalid parameters")
	}
	if req.APIKey == "" {
		return badRequest(c, "api_key is required")
	}
	if err := h.svc.RevokeKey(c.UserContext(), req.APIKey); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"status": false, "message": "key not found"})
		}
		return internalError(c)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "revoked"})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(http.StatusBadRequest).JSON(fiber.Map{"status": false, "message": msg})
}

func internalError(c *fiber.Ctx) error {
	return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"status": false, "message": "Internal server error"})
}
