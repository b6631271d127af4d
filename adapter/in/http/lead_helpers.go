package http

import (
	"lead_server/pkg/apperr"
	"lead_server/pkg/logger"
	"lead_server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// queryParams adapts the fiber query string to the service-level parameter
// bag, keeping the criteria parsers free of fiber.
type queryParams struct {
	c *fiber.Ctx
}

func (q queryParams) Get(key string) string {
	return q.c.Query(key)
}

// AppErrorResponse maps an apperr.AppError onto the response envelope.
// Internal-class errors are logged with full detail and answered with a
// generic message so store errors never leak to clients.
func AppErrorResponse(c *fiber.Ctx, err error) error {
	appErr := apperr.AsAppError(err)

	if appErr.Status >= fiber.StatusInternalServerError {
		logger.WithError(err).
			WithField("path", c.Path()).
			Error("request failed")
		return response.Error(c, appErr.Status, appErr.Code, "request failed")
	}

	return response.Error(c, appErr.Status, appErr.Code, appErr.Message)
}
