package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/payrelay/internal/signature"
	"github.com/GTDGit/payrelay/internal/utils"
)

var startTime = time.Now()

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides health endpoints.
type HealthHandler struct {
	scheme signature.Scheme
	redis  Pinger
}

// NewHealthHandler creates a new HealthHandler. redis may be nil.
func NewHealthHandler(scheme signature.Scheme, redis Pinger) *HealthHandler {
	return &HealthHandler{scheme: scheme, redis: redis}
}

// GetRoot responds with a plain liveness line.
func (h *HealthHandler) GetRoot(c *gin.Context) {
	c.String(200, "Payment relay is running")
}

// GetHealth responds with service and Redis status.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	redisStatus := "disabled"
	if h.redis != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.redis.Ping(ctx); err != nil {
			redisStatus = "disconnected"
		} else {
			redisStatus = "connected"
		}
	}

	utils.Success(c, 200, "Service is healthy", gin.H{
		"status":  "healthy",
		"version": "1.0.0",
		"uptime":  int(time.Since(startTime).Seconds()),
		"scheme":  string(h.scheme),
		"redis": gin.H{
			"status": redisStatus,
		},
	})
}
