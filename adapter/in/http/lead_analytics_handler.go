package http

import (
	"lead_server/core/service/analytics"
	"lead_server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AnalyticsHandler handles the reporting and data verification endpoints.
type AnalyticsHandler struct {
	analyticsService *analytics.Service
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(analyticsService *analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// Register registers analytics routes on the admin group.
func (h *AnalyticsHandler) Register(admin fiber.Router) {
	admin.Get("/analytics/summary", h.Summary)
	admin.Get("/analytics/timeseries", h.TimeSeries)
	admin.Get("/verify", h.VerifyData)
}

// Summary returns totals, breakdowns, and daily trends.
func (h *AnalyticsHandler) Summary(c *fiber.Ctx) error {
	days := c.QueryInt("days", 0)

	summary, err := h.analyticsService.Summary(c.Context(), days)
	if err != nil {
		return AppErrorResponse(c, err)
	}

	return response.OK(c, summary)
}

// TimeSeries returns bucketed lead and error series.
func (h *AnalyticsHandler) TimeSeries(c *fiber.Ctx) error {
	days := c.QueryInt("days", 0)
	granularity := analytics.Granularity(c.Query("granularity"))

	series, err := h.analyticsService.TimeSeries(c.Context(), days, granularity)
	if err != nil {
		return AppErrorResponse(c, err)
	}

	return response.OK(c, series)
}

// VerifyData runs the collection health check.
func (h *AnalyticsHandler) VerifyData(c *fiber.Ctx) error {
	report, err := h.analyticsService.VerifyData(c.Context())
	if err != nil {
		return AppErrorResponse(c, err)
	}

	return response.OK(c, report)
}
