package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/affgate/affgate/internal/cache"
	"github.com/affgate/affgate/pkg/logger"
)

// HealthHandler provides liveness and readiness endpoints.
type HealthHandler struct {
	redis *cache.Redis // nil when no fallback tier is configured
	log   logger.Logger
}

// NewHealthHandler creates a HealthHandler. redis may be nil.
func NewHealthHandler(redis *cache.Redis, log logger.Logger) *HealthHandler {
	return &HealthHandler{redis: redis, log: log}
}

// LivenessCheck reports that the process is up.
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now().UTC(),
	})
}

// ReadinessCheck reports dependency health. A degraded cache backend is
// reported but does not fail readiness: the gateway works without it.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	checks := gin.H{}

	if h.redis != nil {
		if err := h.redis.Ping(c.Request.Context()); err != nil {
			checks["redis"] = "degraded: " + err.Error()
		} else {
			checks["redis"] = "ok"
		}
	} else {
		checks["redis"] = "not configured"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"checks":    checks,
	})
}
