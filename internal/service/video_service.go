package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"autovision/backend/internal/ids"
	"autovision/backend/internal/media/sniffer"
	"autovision/backend/internal/models"
	"autovision/backend/internal/queue"
)

var (
	ErrVideoTooLarge     = errors.New("video exceeds maximum upload size")
	ErrUnsupportedFormat = errors.New("unsupported video format")
	ErrNotOwner          = errors.New("video belongs to another user")
	ErrAlreadyProcessing = errors.New("video is already processing")
	ErrAlreadyCompleted  = errors.New("video is already processed")
)

const (
	sniffHeadSize  = 512
	streamURLValid = time.Hour
)

type VideoService struct {
	videos    videoRepo
	events    eventRepo
	store     blobStore
	publisher jobEnqueuer
	maxBytes  int64
	log       zerolog.Logger
}

func NewVideoService(
	videos videoRepo,
	events eventRepo,
	store blobStore,
	publisher jobEnqueuer,
	maxVideoSizeMB int64,
	log zerolog.Logger,
) *VideoService {
	return &VideoService{
		videos:    videos,
		events:    events,
		store:     store,
		publisher: publisher,
		maxBytes:  maxVideoSizeMB << 20,
		log:       log.With().Str("component", "video_service").Logger(),
	}
}

func (s *VideoService) MaxBytes() int64 { return s.maxBytes }

// Upload sniffs the container format, streams the payload into the object
// store and records the video row, then enqueues a processing job.
func (s *VideoService) Upload(ctx context.Context, userID, originalName string, reader io.Reader, size int64) (models.Video, error) {
	if size > s.maxBytes {
		return models.Video{}, ErrVideoTooLarge
	}

	head := make([]byte, sniffHeadSize)
	n, err := io.ReadFull(reader, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return models.Video{}, fmt.Errorf("read upload head: %w", err)
	}
	head = head[:n]

	detected, err := sniffer.DetectHead(head)
	if err != nil {
		return models.Video{}, ErrUnsupportedFormat
	}

	videoID := ids.New()
	objectKey := fmt.Sprintf("%s/%s.%s", userID, videoID, detected.Type)
	body := io.MultiReader(bytes.NewReader(head), reader)

	written, err := s.store.Put(ctx, s.store.VideoBucket(), objectKey, body, size, detected.MIME)
	if err != nil {
		return models.Video{}, fmt.Errorf("store video: %w", err)
	}

	video := models.Video{
		ID:              videoID,
		UserID:          userID,
		Filename:        fmt.Sprintf("%s.%s", videoID, detected.Type),
		OriginalName:    originalName,
		Bucket:          s.store.VideoBucket(),
		ObjectKey:       objectKey,
		SizeBytes:       written,
		Status:          models.VideoStatusUploaded,
		StorageProvider: models.StorageProviderMinio,
	}
	if err := s.videos.Create(ctx, video); err != nil {
		if rmErr := s.store.Remove(ctx, video.Bucket, objectKey); rmErr != nil {
			s.log.Error().Err(rmErr).Str("object_key", objectKey).Msg("orphan object left in store")
		}
		return models.Video{}, fmt.Errorf("record video: %w", err)
	}

	if err := s.publisher.Enqueue(ctx, queue.Job{
		Type:    queue.JobTypeProcess,
		VideoID: video.ID,
		UserID:  userID,
	}); err != nil {
		// The row stays in uploaded state; a later reprocess call requeues it.
		s.log.Warn().Err(err).Str("video_id", video.ID).Msg("enqueue processing job failed")
	}

	s.log.Info().
		Str("video_id", video.ID).
		Str("user_id", userID).
		Int64("size_bytes", written).
		Msg("video uploaded")
	return video, nil
}

func (s *VideoService) Get(ctx context.Context, userID, videoID string) (models.Video, error) {
	video, err := s.videos.GetByID(ctx, videoID)
	if err != nil {
		return models.Video{}, err
	}
	if video.UserID != userID {
		return models.Video{}, ErrNotOwner
	}
	return video, nil
}

// StreamURL returns a presigned GET URL the client can play directly.
func (s *VideoService) StreamURL(ctx context.Context, userID, videoID string) (string, error) {
	video, err := s.Get(ctx, userID, videoID)
	if err != nil {
		return "", err
	}
	return s.store.PresignedGetURL(ctx, video.Bucket, video.ObjectKey, streamURLValid, video.OriginalName)
}

// Reprocess requeues a video for analysis. Videos already in flight are
// rejected so the worker never races itself on one video, and completed
// videos are skipped unless force is set. The record moves to processing
// right away so the caller can poll the status immediately.
func (s *VideoService) Reprocess(ctx context.Context, userID, videoID string, force bool) error {
	video, err := s.Get(ctx, userID, videoID)
	if err != nil {
		return err
	}
	if video.Status == models.VideoStatusProcessing {
		return ErrAlreadyProcessing
	}
	if video.Status == models.VideoStatusCompleted && !force {
		return ErrAlreadyCompleted
	}

	if err := s.videos.UpdateStatus(ctx, video.ID, models.VideoStatusProcessing); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}
	if err := s.publisher.Enqueue(ctx, queue.Job{
		Type:    queue.JobTypeProcess,
		VideoID: video.ID,
		UserID:  userID,
	}); err != nil {
		if stErr := s.videos.UpdateStatus(ctx, video.ID, video.Status); stErr != nil {
			s.log.Error().Err(stErr).Str("video_id", video.ID).Msg("status revert failed")
		}
		return fmt.Errorf("enqueue processing job: %w", err)
	}
	return nil
}

// Delete removes the video row, its events and the stored object.
func (s *VideoService) Delete(ctx context.Context, userID, videoID string) error {
	video, err := s.Get(ctx, userID, videoID)
	if err != nil {
		return err
	}

	removed, err := s.events.DeleteByVideo(ctx, video.ID)
	if err != nil {
		return fmt.Errorf("delete events: %w", err)
	}
	if err := s.videos.Delete(ctx, video.ID); err != nil {
		return err
	}
	if err := s.store.Remove(ctx, video.Bucket, video.ObjectKey); err != nil {
		s.log.Error().Err(err).Str("object_key", video.ObjectKey).Msg("orphan object left in store")
	}

	s.log.Info().
		Str("video_id", video.ID).
		Int64("events_removed", removed).
		Msg("video deleted")
	return nil
}
