package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control on GET responses that did not set it.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet || c.Get(fiber.HeaderCacheControl) != "" {
			return err
		}
		if ttl := cacheControlFor(c.Path()); ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}
		return err
	}
}

func cacheControlFor(path string) string {
	switch {
	case path == "/v1/health" || path == "/v1/ready":
		return "public, max-age=10"
	case path == "/metrics":
		return "no-cache"
	case path == apiPrefix+"/get-hotspots":
		return "public, max-age=60"
	case path == apiPrefix+"/calculate-distance":
		return "public, max-age=60"
	case path == apiPrefix+"/random-points":
		// GET still writes samples
		return "no-store"
	case strings.HasSuffix(path, "/last-location"):
		return "no-cache"
	case path == apiPrefix+"/all-drivers":
		return "private, max-age=0"
	case strings.HasPrefix(path, "/docs"):
		return "public, max-age=3600"
	}
	return ""
}
