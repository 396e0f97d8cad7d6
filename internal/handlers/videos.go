package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"autovision/backend/internal/middleware"
	"autovision/backend/internal/models"
	"autovision/backend/internal/repository"
	"autovision/backend/internal/service"
)

type videoResponse struct {
	ID                string    `json:"id"`
	Filename          string    `json:"filename"`
	OriginalName      string    `json:"originalName"`
	SizeBytes         int64     `json:"sizeBytes"`
	DurationSeconds   float64   `json:"durationSeconds"`
	FPS               float64   `json:"fps"`
	Resolution        string    `json:"resolution"`
	Status            string    `json:"status"`
	FramesProcessed   int       `json:"framesProcessed"`
	AnomaliesDetected int       `json:"anomaliesDetected"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func newVideoResponse(v models.Video) videoResponse {
	return videoResponse{
		ID:                v.ID,
		Filename:          v.Filename,
		OriginalName:      v.OriginalName,
		SizeBytes:         v.SizeBytes,
		DurationSeconds:   v.DurationSeconds,
		FPS:               v.FPS,
		Resolution:        v.Resolution,
		Status:            string(v.Status),
		FramesProcessed:   v.FramesProcessed,
		AnomaliesDetected: v.AnomaliesDetected,
		CreatedAt:         v.CreatedAt,
		UpdatedAt:         v.UpdatedAt,
	}
}

func (h HandlerSet) UploadVideo(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if c.Request.ContentLength > h.videoService.MaxBytes() {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file_too_large"})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_required"})
		return
	}
	defer file.Close()

	video, err := h.videoService.Upload(c.Request.Context(), user.ID, header.Filename, file, header.Size)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVideoTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file_too_large"})
		case errors.Is(err, service.ErrUnsupportedFormat):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported_format"})
		default:
			h.log.Error().Err(err).Str("user_id", user.ID).Msg("upload failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "upload_failed"})
		}
		return
	}

	if h.metrics != nil {
		h.metrics.VideosUploaded.Inc()
	}
	c.JSON(http.StatusCreated, gin.H{"video": newVideoResponse(video)})
}

func (h HandlerSet) ListVideos(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)

	videos, err := h.videos.ListByUser(c.Request.Context(), user.ID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]videoResponse, 0, len(videos))
	for _, v := range videos {
		resp = append(resp, newVideoResponse(v))
	}
	c.JSON(http.StatusOK, gin.H{"videos": resp})
}

func (h HandlerSet) GetVideo(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	video, err := h.videoService.Get(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		h.renderVideoError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"video": newVideoResponse(video)})
}

// StreamVideo redirects to a short-lived presigned URL instead of proxying
// bytes through the API.
func (h HandlerSet) StreamVideo(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	url, err := h.videoService.StreamURL(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		h.renderVideoError(c, err)
		return
	}
	c.Redirect(http.StatusFound, url)
}

type eventResponse struct {
	ID               string    `json:"id"`
	VideoID          string    `json:"videoId"`
	EventType        string    `json:"eventType"`
	AnomalyScore     float64   `json:"anomalyScore"`
	Confidence       float64   `json:"confidence"`
	TimestampSeconds float64   `json:"timestampSeconds"`
	FrameNumber      int       `json:"frameNumber"`
	Description      string    `json:"description"`
	IsAlert          bool      `json:"isAlert"`
	IsFalsePositive  *bool     `json:"isFalsePositive"`
	CreatedAt        time.Time `json:"createdAt"`
}

func newEventResponse(e models.Event) eventResponse {
	return eventResponse{
		ID:               e.ID,
		VideoID:          e.VideoID,
		EventType:        string(e.EventType),
		AnomalyScore:     e.AnomalyScore,
		Confidence:       e.Confidence,
		TimestampSeconds: e.TimestampSeconds,
		FrameNumber:      e.FrameNumber,
		Description:      e.Description,
		IsAlert:          e.IsAlert,
		IsFalsePositive:  e.IsFalsePositive,
		CreatedAt:        e.CreatedAt,
	}
}

// GetVideoAnalysis bundles the video record with its detected events.
func (h HandlerSet) GetVideoAnalysis(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	video, err := h.videoService.Get(c.Request.Context(), user.ID, c.Param("id"))
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
	byType := map[string]int{}
	var alerts, highRisk int
	var maxScore, scoreSum float64
	for _, e := range events {
		if e.IsAlert {
			alerts++
		}
		if e.AnomalyScore >= 0.8 {
			highRisk++
		}
		if e.AnomalyScore > maxScore {
			maxScore = e.AnomalyScore
		}
		scoreSum += e.AnomalyScore
		byType[string(e.EventType)]++
		resp = append(resp, newEventResponse(e))
	}
	avgScore := 0.0
	if len(events) > 0 {
		avgScore = scoreSum / float64(len(events))
	}

	c.JSON(http.StatusOK, gin.H{
		"video":  newVideoResponse(video),
		"events": resp,
		"summary": gin.H{
			"eventCount":    len(resp),
			"alertCount":    alerts,
			"highRiskCount": highRisk,
			"byType":        byType,
			"maxScore":      maxScore,
			"avgScore":      avgScore,
		},
	})
}

func (h HandlerSet) ProcessVideo(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	force := c.Query("force") == "true"
	if err := h.videoService.Reprocess(c.Request.Context(), user.ID, c.Param("id"), force); err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyProcessing):
			c.JSON(http.StatusConflict, gin.H{"error": "already_processing"})
		case errors.Is(err, service.ErrAlreadyCompleted):
			c.JSON(http.StatusOK, gin.H{"status": "completed", "message": "video already processed, pass force=true to reprocess"})
		default:
			h.renderVideoError(c, err)
		}
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

func (h HandlerSet) DeleteVideo(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.videoService.Delete(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		h.renderVideoError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) renderVideoError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrVideoNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "video_not_found"})
	case errors.Is(err, service.ErrNotOwner):
		// Not-found rather than forbidden, so IDs cannot be probed.
		c.JSON(http.StatusNotFound, gin.H{"error": "video_not_found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
