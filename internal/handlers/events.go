package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"autovision/backend/internal/detect"
	"autovision/backend/internal/middleware"
	"autovision/backend/internal/queue"
	"autovision/backend/internal/repository"
)

func (h HandlerSet) ListEvents(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit := intQuery(c, "limit", 100)
	events, err := h.events.ListByUser(c.Request.Context(), user.ID, c.Query("type"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]eventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, newEventResponse(e))
	}
	c.JSON(http.StatusOK, gin.H{"events": resp})
}

func (h HandlerSet) ListVideoEvents(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	video, err := h.videoService.Get(c.Request.Context(), user.ID, c.Param("videoId"))
	if err != nil {
		h.renderVideoError(c, err)
		return
	}

	events, err := h.events.ListByVideo(c.Request.Context(), video.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]eventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, newEventResponse(e))
	}
	c.JSON(http.StatusOK, gin.H{"events": resp})
}

type feedbackRequest struct {
	IsFalsePositive *bool    `json:"isFalsePositive" binding:"required"`
	FeedbackScore   *float64 `json:"feedbackScore" binding:"omitempty,gte=-1,lte=1"`
	Comments        string   `json:"comments"`
}

// EventFeedback records the operator verdict and runs one learning episode
// on the threshold controller. The updated threshold is published so the
// worker picks it up for subsequent jobs.
func (h HandlerSet) EventFeedback(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.events.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "event_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if event.UserID != user.ID {
		c.JSON(http.StatusNotFound, gin.H{"error": "event_not_found"})
		return
	}

	isFalsePositive := *req.IsFalsePositive
	if err := h.events.SetFeedback(c.Request.Context(), event.ID, isFalsePositive); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if req.Comments != "" || req.FeedbackScore != nil {
		entry := h.log.Info().Str("event_id", event.ID).Str("user_id", user.ID)
		if req.FeedbackScore != nil {
			entry = entry.Float64("feedback_score", *req.FeedbackScore)
		}
		entry.Str("comments", req.Comments).Msg("event feedback detail")
	}

	newThreshold := h.controller.Apply(detect.Feedback{
		FalsePositive: isFalsePositive && event.IsAlert,
		FalseNegative: !isFalsePositive && !event.IsAlert,
		TruePositive:  !isFalsePositive && event.IsAlert,
		Score:         event.AnomalyScore,
	})

	if err := h.cache.Set(c.Request.Context(), queue.KeyCurrentThreshold,
		fmt.Sprintf("%.4f", newThreshold), 0).Err(); err != nil {
		h.log.Warn().Err(err).Msg("publish threshold failed")
	}

	c.JSON(http.StatusOK, gin.H{
		"eventId":          event.ID,
		"isFalsePositive":  isFalsePositive,
		"currentThreshold": newThreshold,
	})
}
