package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware fills in Cache-Control on GET responses whose handler
// did not choose one.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}
		if existing := c.GetRespHeader(fiber.HeaderCacheControl); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10"

		case path == "/metrics":
			ttl = "no-cache"

		case strings.HasPrefix(path, "/v1/journey"), strings.HasPrefix(path, "/v1/animation"):
			ttl = "no-cache" // live session state

		case strings.HasPrefix(path, "/docs"):
			ttl = "public, max-age=3600"

		case path == "/":
			ttl = "no-cache"

		case strings.HasPrefix(path, "/v1/"):
			ttl = "public, max-age=300"
		}

		if ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}

		return err
	}
}
