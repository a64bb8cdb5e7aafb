package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/sbs-x/internal/sbs-api/biz"
	"github.com/kart-io/sbs-x/pkg/infra/app"
)

// HealthHandler reports whether the document store answers.
type HealthHandler struct {
	volumes *biz.VolumeService
	timeout time.Duration
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(volumes *biz.VolumeService) *HealthHandler {
	return &HealthHandler{volumes: volumes, timeout: 2 * time.Second}
}

// Healthz handles GET /healthz.
func (h *HealthHandler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.volumes.Ping(ctx); err != nil {
		logger.Warnw("Health check failed", "error", err.Error())
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Version handles GET /version.
func (h *HealthHandler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, app.GetBuildInfo())
}
