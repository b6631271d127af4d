package middleware

import (
	"time"

	"lead_server/pkg/metrics"

	"github.com/gofiber/fiber/v2"
)

// RouteMetrics records per-route latency into the registry. Routes are
// keyed by method and route pattern, so /leads/:id buckets as one route.
func RouteMetrics(registry *metrics.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := c.Route().Path
		if route == "" || route == "/" && c.Path() != "/" {
			route = c.Path()
		}
		registry.Record(c.Method()+" "+route, time.Since(start))

		return err
	}
}
