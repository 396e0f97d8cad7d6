package models

import (
	"fmt"
	"time"
)

const (
	DefaultAnomalyThreshold  = 0.5
	DefaultFrameSamplingRate = 10
	DefaultRetentionDays     = 30
)

type UserSettings struct {
	UserID              string
	AnomalyThreshold    float64
	FrameSamplingRate   int
	AutoDeleteOldVideos bool
	VideoRetentionDays  int
	UpdatedAt           time.Time
}

// DefaultSettings is what a user gets before their first save.
func DefaultSettings(userID string) UserSettings {
	return UserSettings{
		UserID:              userID,
		AnomalyThreshold:    DefaultAnomalyThreshold,
		FrameSamplingRate:   DefaultFrameSamplingRate,
		AutoDeleteOldVideos: false,
		VideoRetentionDays:  DefaultRetentionDays,
	}
}

// Validate enforces the accepted ranges before a save.
func (s UserSettings) Validate() error {
	if s.AnomalyThreshold < 0 || s.AnomalyThreshold > 1 {
		return fmt.Errorf("anomaly_threshold must be between 0 and 1")
	}
	if s.FrameSamplingRate < 1 || s.FrameSamplingRate > 100 {
		return fmt.Errorf("frame_sampling_rate must be between 1 and 100")
	}
	if s.VideoRetentionDays < 1 || s.VideoRetentionDays > 365 {
		return fmt.Errorf("video_retention_days must be between 1 and 365")
	}
	return nil
}
