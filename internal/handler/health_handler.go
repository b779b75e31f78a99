package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

type DBPinger interface {
	Ping() error
}

type CachePinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db    DBPinger
	cache CachePinger
}

// NewHealthHandler accepts nil for backends that are not configured.
func NewHealthHandler(db DBPinger, cache CachePinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

func (h *HealthHandler) GetHealth(c *gin.Context) {
	status := http.StatusOK
	res := gin.H{"status": "healthy", "database": "disabled", "cache": "disabled"}

	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			slog.Error("database health check failed", "error", err)
			status = http.StatusServiceUnavailable
			res["status"] = "unhealthy"
			res["database"] = "disconnected"
		} else {
			res["database"] = "connected"
		}
	}

	if h.cache != nil {
		if err := h.cache.Ping(c.Request.Context()); err != nil {
			slog.Warn("cache health check failed", "error", err)
			res["cache"] = "disconnected"
		} else {
			res["cache"] = "connected"
		}
	}

	c.JSON(status, res)
}
