package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"autovision/backend/internal/middleware"
)

// AnalyticsStats aggregates the dashboard numbers: video totals by status,
// event totals by type, alert counts and the last week of daily activity.
func (h HandlerSet) AnalyticsStats(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	videoStats, err := h.videos.StatsByUser(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	eventStats, err := h.events.StatsByUser(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"videos": gin.H{
			"total":       videoStats.TotalVideos,
			"totalSizeMb": float64(videoStats.TotalBytes) / (1 << 20),
			"byStatus":    videoStats.StatusCounts,
		},
		"events": gin.H{
			"total":       eventStats.TotalEvents,
			"totalAlerts": eventStats.TotalAlerts,
			"byType":      eventStats.TypeCounts,
			"dailyCounts": eventStats.DailyCounts,
		},
	})
}
