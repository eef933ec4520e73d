package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Parham-dev/ai-agent-cs-sub004/internal/database"
	"github.com/Parham-dev/ai-agent-cs-sub004/pkg/utils"
)

type HealthHandler struct {
	db    database.Database
	redis database.RedisClient
}

func NewHealthHandler(db database.Database, redis database.RedisClient) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

// Health reports liveness plus per-dependency status. Redis is
// optional so a missing client reports as disabled, not degraded.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	checks := map[string]interface{}{}

	if err := h.db.Ping(); err != nil {
		status = "unhealthy"
		checks["database"] = map[string]string{"status": "down", "error": err.Error()}
	} else {
		checks["database"] = map[string]string{"status": "up"}
	}

	if h.redis == nil {
		checks["redis"] = map[string]string{"status": "disabled"}
	} else if err := h.redis.Ping(ctx); err != nil {
		checks["redis"] = map[string]string{"status": "down", "error": err.Error()}
	} else {
		checks["redis"] = map[string]string{"status": "up"}
	}

	utils.HealthCheck(c, status, checks)
}

// Live reports process liveness without touching dependencies.
func (h *HealthHandler) Live(c *gin.Context) {
	utils.HealthCheck(c, "healthy", nil)
}

// Ready is the minimal readiness probe.
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.db.Ping(); err != nil {
		utils.HealthCheck(c, "unhealthy", map[string]interface{}{
			"database": map[string]string{"status": "down"},
		})
		return
	}
	utils.HealthCheck(c, "healthy", nil)
}
