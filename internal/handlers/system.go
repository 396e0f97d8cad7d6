package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"autovision/backend/internal/middleware"
	"autovision/backend/internal/queue"
)

// SystemStatus reports pipeline health: queue depth, pending deliveries,
// worker liveness and the detector's current state.
func (h HandlerSet) SystemStatus(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ctx := c.Request.Context()

	queueDepth, err := h.cache.XLen(ctx, h.cfg.Redis.Stream).Result()
	if err != nil && err != redis.Nil {
		h.log.Warn().Err(err).Msg("read queue depth failed")
	}

	var pendingJobs int64
	if pending, err := h.cache.XPending(ctx, h.cfg.Redis.Stream, h.cfg.Redis.Group).Result(); err == nil {
		pendingJobs = pending.Count
	}

	workerAlive := false
	var lastHeartbeat time.Time
	if raw, err := h.cache.Get(ctx, queue.KeyWorkerHeartbeat).Result(); err == nil {
		if unix, err := strconv.ParseInt(raw, 10, 64); err == nil {
			lastHeartbeat = time.Unix(unix, 0)
			workerAlive = time.Since(lastHeartbeat) < h.cfg.Detection.HeartbeatTTL
		}
	}

	processing, err := h.videos.CountProcessing(ctx, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	status := gin.H{
		"queueDepth":       queueDepth,
		"pendingJobs":      pendingJobs,
		"workerAlive":      workerAlive,
		"processingVideos": processing,
		"detector":         h.controller.Summary(),
	}
	if !lastHeartbeat.IsZero() {
		status["lastHeartbeat"] = lastHeartbeat.UTC()
	}
	c.JSON(http.StatusOK, status)
}
