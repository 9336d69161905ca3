package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/atlasjobs/atlas/internal/queue"
)

// HealthHandler backs GET /health: pings both the store and the queue
// so a load balancer can distinguish "process is up" from "process can
// actually do its job".
type HealthHandler struct {
	db    *gorm.DB
	queue queue.WorkQueue
}

func NewHealthHandler(db *gorm.DB, q queue.WorkQueue) *HealthHandler {
	return &HealthHandler{db: db, queue: q}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := gin.H{"store": "ok", "queue": "ok"}
	healthy := true

	sqlDB, err := h.db.DB()
	if err != nil || sqlDB.PingContext(ctx) != nil {
		status["store"] = "down"
		healthy = false
	}

	if _, err := h.queue.Depth(ctx); err != nil {
		status["queue"] = "down"
		healthy = false
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, status)
		return
	}
	c.JSON(http.StatusOK, status)
}
