package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/globetrotter/internal/pkg/metrics"
)

const requestTimeout = 15 * time.Second

// SetupRoutes registers the globe page, REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP. Probes and the socket are exempt.
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			switch c.Path() {
			case "/v1/health", "/v1/ready", "/metrics", "/ws":
				return true
			}
			return false
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout; fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	app.Get("/", IndexHandler())

	v1 := app.Group("/v1")
	v1.Get("/journey", timeout.NewWithContext(GetJourneyHandler(deps), requestTimeout))
	v1.Get("/journey/segments", timeout.NewWithContext(ListSegmentsHandler(deps), requestTimeout))
	v1.Get("/journey/path.geojson", timeout.NewWithContext(JourneyPathHandler(deps), requestTimeout))
	v1.Post("/journey/reset", timeout.NewWithContext(ResetJourneyHandler(deps), requestTimeout))
	v1.Post("/runs", timeout.NewWithContext(AddRunHandler(deps), requestTimeout))
	v1.Get("/cities", timeout.NewWithContext(ListCitiesHandler(deps), requestTimeout))
	v1.Get("/cities/nearest", timeout.NewWithContext(NearestCityHandler(deps), requestTimeout))
	v1.Get("/project", ProjectHandler(deps))
	v1.Get("/animation", AnimationHandler(deps))
	v1.Post("/animation/toggle", ToggleAnimationHandler(deps))

	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps)))

	app.Use(NotFoundHandler)
}
