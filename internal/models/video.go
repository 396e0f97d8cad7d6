package models

import "time"

type VideoStatus string

const (
	VideoStatusUploaded   VideoStatus = "uploaded"
	VideoStatusProcessing VideoStatus = "processing"
	VideoStatusCompleted  VideoStatus = "completed"
	VideoStatusFailed     VideoStatus = "failed"
)

type StorageProvider string

const (
	StorageProviderMinio StorageProvider = "minio"
	StorageProviderLocal StorageProvider = "local"
)

type Video struct {
	ID                string
	UserID            string
	Filename          string
	OriginalName      string
	Bucket            string
	ObjectKey         string
	SizeBytes         int64
	DurationSeconds   float64
	FPS               float64
	Resolution        string
	Status            VideoStatus
	StorageProvider   StorageProvider
	FramesProcessed   int
	AnomaliesDetected int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CanTransitionTo reports whether the lifecycle allows moving to next.
// The only backward edge is completed -> processing (explicit reprocess).
func (s VideoStatus) CanTransitionTo(next VideoStatus) bool {
	switch s {
	case VideoStatusUploaded:
		return next == VideoStatusProcessing
	case VideoStatusProcessing:
		return next == VideoStatusCompleted || next == VideoStatusFailed
	case VideoStatusCompleted:
		return next == VideoStatusProcessing
	case VideoStatusFailed:
		return next == VideoStatusProcessing
	default:
		return false
	}
}
