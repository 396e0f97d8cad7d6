package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"autovision/backend/internal/middleware"
	"autovision/backend/internal/service"
)

func (h HandlerSet) CleanupPreview(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	preview, err := h.cleanupService.Preview(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, preview)
}

func (h HandlerSet) CleanupRun(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.cleanupService.RunForUser(c.Request.Context(), user.ID)
	if err != nil {
		if errors.Is(err, service.ErrAutoDeleteDisabled) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "auto_delete_disabled"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if h.metrics != nil {
		h.metrics.VideosDeleted.Add(float64(result.VideosDeleted))
	}
	c.JSON(http.StatusOK, result)
}
