package handler

import (
	"log/slog"
	"tickerpulse/pkg/apperr"

	"github.com/gin-gonic/gin"
)

// respondError writes err as {error, details}. fallback heads errors that
// carry no kind of their own.
func respondError(c *gin.Context, err error, fallback string) {
	status := apperr.HTTPStatus(err)
	message, details := apperr.Describe(err, fallback)

	if status >= 500 {
		slog.Error(message, "path", c.FullPath(), "status", status, "error", err)
	} else {
		slog.Warn(message, "path", c.FullPath(), "status", status, "error", err)
	}

	c.JSON(status, ErrorResponse{Error: message, Details: details})
}
