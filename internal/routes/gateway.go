package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/adsgate/adsgate/internal/gateway"
)

// RegisterGatewayRoutes wires the verification and payment-proxy endpoints.
func RegisterGatewayRoutes(r fiber.Router, h *gateway.Handler, rateLimiter fiber.Handler) {
	if rateLimiter != nil {
		r.Post("/verify", rateLimiter, h.Verify)
		r.Post("/process-balance", rateLimiter, h.ProcessBalance)
		return
	}
	r.Post("/verify", h.Verify)
	r.Post("/process-balance", h.ProcessBalance)
}
