package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"go.uber.org/zap"

	"github.com/queuely/queue-service/internal/api/http/handlers"
	"github.com/queuely/queue-service/internal/auth"
	"github.com/queuely/queue-service/internal/cache"
	"github.com/queuely/queue-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Queues         *handlers.QueuesHandler
	AuthMiddleware *auth.AuthMiddleware
	SearchLimiter  *cache.RateLimiter
	Metrics        *observability.Metrics
	Logger         *zap.Logger
}

// RegisterRoutes wires HTTP routes. Static queue paths are registered before /:id.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.Health != nil {
		app.Get("/health/live", cfg.Health.Live)
		app.Get("/health/ready", cfg.Health.Ready)
	}
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	signedIn := func(h fiber.Handler) []fiber.Handler {
		return []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireAnyRole(), h}
	}
	adminOnly := func(h fiber.Handler) []fiber.Handler {
		return []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireAdmin(), h}
	}

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	dashboard := api.Group("/dashboard")
	dashboard.Get("/me", signedIn(cfg.Auth.Me)...)
	dashboard.Post("/logout", cfg.Auth.Logout)

	queues := api.Group("/queues")
	queues.Get("/search/:queueId", rateLimitMiddleware(cfg.SearchLimiter, logger), cfg.Queues.Search)
	queues.Post("/create", adminOnly(cfg.Queues.Create)...)
	queues.Get("/my-queues", adminOnly(cfg.Queues.ListMine)...)
	queues.Get("/my-joined", signedIn(cfg.Queues.ListJoined)...)

	queues.Get("/:id", adminOnly(cfg.Queues.Get)...)
	queues.Delete("/:id", adminOnly(cfg.Queues.Delete)...)
	queues.Patch("/:id/status", adminOnly(cfg.Queues.UpdateStatus)...)
	queues.Post("/:id/call-next", adminOnly(cfg.Queues.CallNext)...)
	queues.Post("/:id/join", signedIn(cfg.Queues.Join)...)
	queues.Post("/:id/leave", signedIn(cfg.Queues.Leave)...)
}
