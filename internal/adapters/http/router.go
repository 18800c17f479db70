package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/fleetspot/internal/pkg/metrics"
)

const (
	apiPrefix      = "/api/v1"
	requestTimeout = 15 * time.Second
)

// randomPointsSunset is when GET /api/v1/random-points stops being served.
var randomPointsSunset = time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
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

	rateLimit := deps.RateLimit
	if rateLimit <= 0 {
		rateLimit = 300
	}
	app.Use(limiter.New(limiter.Config{
		Max:        rateLimit,
		Expiration: 1 * time.Minute,
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

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler())
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group(apiPrefix)
	v1.Use(DeprecationMiddleware([]DeprecatedRoute{{
		Method:      fiber.MethodGet,
		Path:        apiPrefix + "/random-points",
		SunsetDate:  randomPointsSunset,
		Alternative: apiPrefix + "/random-points",
	}}))
	v1.Get("/get-hotspots", timeout.NewWithContext(HotspotsHandler(deps), requestTimeout))
	v1.Get("/calculate-distance", timeout.NewWithContext(DistanceHandler(deps), requestTimeout))
	v1.Get("/random-points", timeout.NewWithContext(RandomPointsHandler(deps), requestTimeout))
	v1.Post("/random-points", timeout.NewWithContext(RandomPointsHandler(deps), requestTimeout))
	v1.Post("/create-driver", timeout.NewWithContext(CreateDriverHandler(deps), requestTimeout))
	v1.Get("/all-drivers", timeout.NewWithContext(ListDriversHandler(deps), requestTimeout))
	v1.Post("/add-location", timeout.NewWithContext(AddLocationHandler(deps), requestTimeout))
	v1.Get("/drivers/:id/last-location", timeout.NewWithContext(LastLocationHandler(deps), requestTimeout))

	app.Post("/graphql", GraphQLHandler(deps))

	SetupDocs(app)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
