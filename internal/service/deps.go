package service

import (
	"context"
	"io"
	"time"

	"autovision/backend/internal/models"
	"autovision/backend/internal/queue"
)

// Services depend on the slices of the repository and infrastructure
// surface they actually call, so tests can swap in fakes.

type videoRepo interface {
	Create(ctx context.Context, video models.Video) error
	GetByID(ctx context.Context, id string) (models.Video, error)
	UpdateStatus(ctx context.Context, id string, status models.VideoStatus) error
	Delete(ctx context.Context, id string) error
	ListOlderThan(ctx context.Context, userID string, cutoff time.Time) ([]models.Video, error)
}

type eventRepo interface {
	DeleteByVideo(ctx context.Context, videoID string) (int64, error)
}

type settingsRepo interface {
	Get(ctx context.Context, userID string) (models.UserSettings, error)
	ListAutoDeleteUsers(ctx context.Context) ([]models.UserSettings, error)
}

type blobStore interface {
	Put(ctx context.Context, bucket, objectKey string, reader io.Reader, size int64, contentType string) (int64, error)
	Remove(ctx context.Context, bucket, objectKey string) error
	PresignedGetURL(ctx context.Context, bucket, objectKey string, expiry time.Duration, downloadName string) (string, error)
	VideoBucket() string
}

type jobEnqueuer interface {
	Enqueue(ctx context.Context, job queue.Job) error
}
