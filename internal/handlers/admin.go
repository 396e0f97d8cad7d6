package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (h HandlerSet) AdminListVideos(c *gin.Context) {
	limit := 50
	offset := 0

	if perPage := c.Query("perPage"); perPage != "" {
		if v, err := strconv.Atoi(perPage); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}
	if page := c.Query("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 1 {
			offset = (v - 1) * limit
		}
	}

	videos, err := h.videos.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]map[string]interface{}, 0, len(videos))
	for _, v := range videos {
		items = append(items, map[string]interface{}{
			"id":                v.ID,
			"userId":            v.UserID,
			"originalName":      v.OriginalName,
			"status":            v.Status,
			"sizeBytes":         v.SizeBytes,
			"durationSeconds":   v.DurationSeconds,
			"framesProcessed":   v.FramesProcessed,
			"anomaliesDetected": v.AnomaliesDetected,
			"createdAt":         v.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
	})
}
