package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/adsgate/adsgate/internal/identity"
)

// RegisterIdentityRoutes wires registration and credential issuance.
func RegisterIdentityRoutes(r fiber.Router, h *identity.Handler) {
	r.Post("/register", h.Register)
	r.Post("/token", h.Token)
	r.Post("/keys/revoke", h.Revoke)
}
