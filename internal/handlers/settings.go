package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"autovision/backend/internal/middleware"
	"autovision/backend/internal/models"
)

type settingsResponse struct {
	AnomalyThreshold    float64   `json:"anomalyThreshold"`
	FrameSamplingRate   int       `json:"frameSamplingRate"`
	AutoDeleteOldVideos bool      `json:"autoDeleteOldVideos"`
	VideoRetentionDays  int       `json:"videoRetentionDays"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

func newSettingsResponse(s models.UserSettings) settingsResponse {
	return settingsResponse{
		AnomalyThreshold:    s.AnomalyThreshold,
		FrameSamplingRate:   s.FrameSamplingRate,
		AutoDeleteOldVideos: s.AutoDeleteOldVideos,
		VideoRetentionDays:  s.VideoRetentionDays,
		UpdatedAt:           s.UpdatedAt,
	}
}

func (h HandlerSet) GetSettings(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	settings, err := h.settings.Get(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": newSettingsResponse(settings)})
}

type updateSettingsRequest struct {
	AnomalyThreshold    *float64 `json:"anomalyThreshold"`
	FrameSamplingRate   *int     `json:"frameSamplingRate"`
	AutoDeleteOldVideos *bool    `json:"autoDeleteOldVideos"`
	VideoRetentionDays  *int     `json:"videoRetentionDays"`
}

// UpdateSettings merges the provided fields over the stored settings, so a
// partial body leaves the other knobs alone.
func (h HandlerSet) UpdateSettings(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings, err := h.settings.Get(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if req.AnomalyThreshold != nil {
		settings.AnomalyThreshold = *req.AnomalyThreshold
	}
	if req.FrameSamplingRate != nil {
		settings.FrameSamplingRate = *req.FrameSamplingRate
	}
	if req.AutoDeleteOldVideos != nil {
		settings.AutoDeleteOldVideos = *req.AutoDeleteOldVideos
	}
	if req.VideoRetentionDays != nil {
		settings.VideoRetentionDays = *req.VideoRetentionDays
	}

	if err := settings.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.settings.Upsert(c.Request.Context(), settings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	saved, err := h.settings.Get(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": newSettingsResponse(saved)})
}
