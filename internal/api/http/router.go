package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/marketplace-service/internal/api/http/handlers"
	"github.com/spec-kit/marketplace-service/internal/auth"
	"github.com/spec-kit/marketplace-service/internal/observability"
)

// multipartOverhead leaves room for boundaries and form fields around an upload.
const multipartOverhead = 64 << 10

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Listings       *handlers.ListingsHandler
	Uploads        *handlers.UploadsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// NewApp creates the Fiber application with a body limit sized for uploads of maxUpload bytes.
func NewApp(name string, maxUpload int64) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:               name,
		BodyLimit:             int(maxUpload) + multipartOverhead,
		DisableStartupMessage: true,
	})
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	requireAuth := cfg.AuthMiddleware.Handle

	app.Post("/users", cfg.Users.Register)
	app.Post("/login", cfg.Users.Login)
	app.Get("/users/me", requireAuth, cfg.Users.Me)
	app.Get("/users/:id", requireAuth, cfg.Users.Get)

	listings := app.Group("/listings")
	listings.Get("/", cfg.Listings.List)
	listings.Post("/", requireAuth, cfg.Listings.Create)
	listings.Get("/:id", cfg.Listings.Get)
	listings.Patch("/:id", requireAuth, cfg.Listings.Update)
	listings.Delete("/:id", requireAuth, cfg.Listings.Delete)
	listings.Get("/:id/media", cfg.Listings.Media)

	uploads := app.Group("/uploads", requireAuth)
	uploads.Post("/listing/:id", cfg.Uploads.Listing)
	uploads.Post("/users/:id", cfg.Uploads.Profile)
}
