package routes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/adsgate/adsgate/internal/config"
	"github.com/adsgate/adsgate/internal/credential"
	"github.com/adsgate/adsgate/internal/gateway"
	"github.com/adsgate/adsgate/internal/identity"
	"github.com/adsgate/adsgate/internal/linking"
	"github.com/adsgate/adsgate/internal/middleware"
	"github.com/adsgate/adsgate/internal/payment"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger

	// Gateway overrides the upstream connector; nil selects the HTTP
	// implementation against Cfg.UpstreamURL.
	Gateway payment.Gateway
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}
	if len(d.Cfg.ValidPINs) == 0 {
		d.Logger.Warn("no VALID_PINS configured; PIN credentials will all be rejected")
	}

	// Middlewares
	app.Use(recover.New())
	// The calling extension runs in a browser context.
	app.Use(cors.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))

	// Health
	RegisterHealthRoutes(app, d)

	// Stores: Postgres when available, process-lifetime memory otherwise.
	var identityRepo identity.Repository
	var linkStore linking.Store
	if d.DB != nil {
		identityRepo = identity.NewPostgresRepository(d.DB)
		linkStore = linking.NewPostgresStore(d.DB)
	} else {
		identityRepo = identity.NewMemoryRepository()
		linkStore = linking.NewMemoryStore()
	}

	identitySvc := identity.NewService(identityRepo, d.Cfg.LinkLimit)
	sharedID, err := identitySvc.EnsureSharedIdentity(context.Background())
	if err != nil {
		return fmt.Errorf("bootstrap shared identity: %w", err)
	}

	verifier := credential.NewVerifier(d.Cfg.ValidPINs, sharedID, identityRepo, d.Cfg.SessionSecret)
	issuer := credential.NewIssuer(d.Cfg.SessionSecret, d.Cfg.SessionTTL)
	registry := linking.NewRegistry(linkStore)

	upstream := d.Gateway
	if upstream == nil {
		upstream = payment.NewHTTPGateway(d.Cfg.UpstreamURL, nil)
	}
	paymentSvc := payment.NewService(upstream)

	gatewayHandler := gateway.NewHandler(verifier, registry, paymentSvc, d.Logger)
	identityHandler := identity.NewHandler(identitySvc, issuer)

	// API routes
	api := app.Group("/api")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	rateLimiter := middleware.VerifyRateLimit(d.Cache, 10)
	RegisterGatewayRoutes(api, gatewayHandler, rateLimiter)
	RegisterIdentityRoutes(api, identityHandler)

	return nil
}
