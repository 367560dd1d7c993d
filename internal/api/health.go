package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/grocerylist/backend/internal/database"
	"github.com/pageza/grocerylist/backend/internal/logging"
)

const (
	statusOK       = "ok"
	statusDisabled = "disabled"
	statusDown     = "unavailable"
)

// HealthHandler reports whether the API and its dependencies are reachable.
type HealthHandler struct {
	db       *gorm.DB
	redis    *redis.Client
	provider string
}

func NewHealthHandler(db *gorm.DB, redisClient *redis.Client, provider string) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient, provider: provider}
}

// HealthCheck returns 200 while the database answers. Redis is optional and
// only reported.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := gin.H{
		"status":   "healthy",
		"database": statusOK,
		"redis":    statusDisabled,
		"provider": h.provider,
	}

	if err := database.HealthCheck(ctx, h.db); err != nil {
		logging.FromContext(ctx).WithError(err).Error("Database health check failed")
		status = http.StatusServiceUnavailable
		body["status"] = "unhealthy"
		body["database"] = statusDown
	}

	if h.redis != nil {
		body["redis"] = statusOK
		if err := h.redis.Ping(ctx).Err(); err != nil {
			logging.FromContext(ctx).WithError(err).Warn("Redis health check failed")
			body["redis"] = statusDown
		}
	}

	c.JSON(status, body)
}
