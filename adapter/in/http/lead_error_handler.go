package http

import (
	"lead_server/core/domain"
	"lead_server/core/service/errorlog"
	"lead_server/core/service/search"
	"lead_server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ErrorReportHandler handles client error report capture and search.
type ErrorReportHandler struct {
	errorService *errorlog.Service
}

// NewErrorReportHandler creates a new error report handler.
func NewErrorReportHandler(errorService *errorlog.Service) *ErrorReportHandler {
	return &ErrorReportHandler{errorService: errorService}
}

// Register registers error report routes. Capture is public so the front
// end can report failures; search is admin only.
func (h *ErrorReportHandler) Register(public fiber.Router, admin fiber.Router) {
	public.Post("/errors", h.CaptureError)
	admin.Get("/errors/search", h.SearchErrors)
}

// CaptureError stores one client error report.
func (h *ErrorReportHandler) CaptureError(c *fiber.Ctx) error {
	var report domain.ErrorReport
	if err := c.BodyParser(&report); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if report.UserAgent == "" {
		report.UserAgent = c.Get(fiber.HeaderUserAgent)
	}

	stored, err := h.errorService.Capture(c.Context(), &report)
	if err != nil {
		return AppErrorResponse(c, err)
	}

	return response.Created(c, fiber.Map{"id": stored.ID})
}

// SearchErrors runs the filtered error report search.
func (h *ErrorReportHandler) SearchErrors(c *fiber.Ctx) error {
	criteria := search.ParseErrorCriteria(queryParams{c})

	result, err := h.errorService.Search(c.Context(), criteria)
	if err != nil {
		return AppErrorResponse(c, err)
	}

	return response.OKWithMeta(c, result, &response.Meta{
		Total:  result.Total,
		Limit:  result.Limit,
		Offset: result.Offset,
	})
}
