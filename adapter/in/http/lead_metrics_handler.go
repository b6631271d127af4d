package http

import (
	"lead_server/pkg/metrics"
	"lead_server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MetricsHandler exposes the in-process latency registry.
type MetricsHandler struct {
	registry *metrics.Registry
}

func NewMetricsHandler(registry *metrics.Registry) *MetricsHandler {
	return &MetricsHandler{registry: registry}
}

// Register registers the metrics routes on the admin group.
func (h *MetricsHandler) Register(admin fiber.Router) {
	admin.Get("/metrics", h.Latency)
	admin.Post("/metrics/reset", h.Reset)
}

// Latency returns per-route latency percentiles since process start.
// ?route=<method+pattern> narrows the response to a single route.
func (h *MetricsHandler) Latency(c *fiber.Ctx) error {
	if route := c.Query("route"); route != "" {
		return response.OK(c, fiber.Map{"route": route, "latency": h.registry.Snapshot(route)})
	}
	return response.OK(c, fiber.Map{"routes": h.registry.All()})
}

// Reset discards all latency samples, e.g. after a deploy.
func (h *MetricsHandler) Reset(c *fiber.Ctx) error {
	h.registry.Reset()
	return response.OK(c, fiber.Map{"reset": true})
}
