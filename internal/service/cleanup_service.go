package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/rs/zerolog"

	"autovision/backend/internal/models"
)

var ErrAutoDeleteDisabled = errors.New("auto delete is disabled for this user")

// CutoffDate is the oldest creation time a video may have before retention
// cleanup removes it.
func CutoffDate(now time.Time, retentionDays int) time.Time {
	return now.AddDate(0, 0, -retentionDays)
}

type CleanupPreview struct {
	VideosToDelete int                  `json:"videosToDelete"`
	SpaceToFreeMB  float64              `json:"spaceToFreeMb"`
	RetentionDays  int                  `json:"retentionDays"`
	CutoffDate     time.Time            `json:"cutoffDate"`
	AutoDelete     bool                 `json:"autoDeleteEnabled"`
	Message        string               `json:"message,omitempty"`
	Videos         []CleanupPreviewItem `json:"videos"`
}

type CleanupPreviewItem struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"originalName"`
	SizeMB       float64   `json:"sizeMb"`
	CreatedAt    time.Time `json:"createdAt"`
}

type CleanupResult struct {
	VideosDeleted int     `json:"videosDeleted"`
	EventsDeleted int64   `json:"eventsDeleted"`
	SpaceFreedMB  float64 `json:"spaceFreedMb"`
}

type CleanupService struct {
	videos   videoRepo
	events   eventRepo
	settings settingsRepo
	store    blobStore
	log      zerolog.Logger
}

func NewCleanupService(
	videos videoRepo,
	events eventRepo,
	settings settingsRepo,
	store blobStore,
	log zerolog.Logger,
) *CleanupService {
	return &CleanupService{
		videos:   videos,
		events:   events,
		settings: settings,
		store:    store,
		log:      log.With().Str("component", "cleanup_service").Logger(),
	}
}

// Preview reports what a cleanup run would remove, without removing anything.
// Users who have not opted in to auto delete get a zero-count preview.
func (s *CleanupService) Preview(ctx context.Context, userID string) (CleanupPreview, error) {
	settings, err := s.settings.Get(ctx, userID)
	if err != nil {
		return CleanupPreview{}, err
	}

	cutoff := CutoffDate(time.Now(), settings.VideoRetentionDays)
	if !settings.AutoDeleteOldVideos {
		return CleanupPreview{
			RetentionDays: settings.VideoRetentionDays,
			CutoffDate:    cutoff,
			Message:       "auto delete is not enabled",
			Videos:        []CleanupPreviewItem{},
		}, nil
	}

	videos, err := s.videos.ListOlderThan(ctx, userID, cutoff)
	if err != nil {
		return CleanupPreview{}, err
	}

	preview := CleanupPreview{
		VideosToDelete: len(videos),
		RetentionDays:  settings.VideoRetentionDays,
		CutoffDate:     cutoff,
		AutoDelete:     settings.AutoDeleteOldVideos,
		Videos:         make([]CleanupPreviewItem, 0, len(videos)),
	}
	var totalBytes int64
	for _, v := range videos {
		totalBytes += v.SizeBytes
		preview.Videos = append(preview.Videos, CleanupPreviewItem{
			ID:           v.ID,
			OriginalName: v.OriginalName,
			SizeMB:       bytesToMB(v.SizeBytes),
			CreatedAt:    v.CreatedAt,
		})
	}
	preview.SpaceToFreeMB = bytesToMB(totalBytes)
	return preview, nil
}

// RunForUser deletes expired videos for one user. It refuses to run when the
// user has not opted in to auto delete.
func (s *CleanupService) RunForUser(ctx context.Context, userID string) (CleanupResult, error) {
	settings, err := s.settings.Get(ctx, userID)
	if err != nil {
		return CleanupResult{}, err
	}
	if !settings.AutoDeleteOldVideos {
		return CleanupResult{}, ErrAutoDeleteDisabled
	}
	return s.run(ctx, settings)
}

// RunAll walks every opted-in user. One user failing does not stop the rest.
func (s *CleanupService) RunAll(ctx context.Context) (CleanupResult, error) {
	users, err := s.settings.ListAutoDeleteUsers(ctx)
	if err != nil {
		return CleanupResult{}, err
	}

	var total CleanupResult
	for _, settings := range users {
		result, err := s.run(ctx, settings)
		if err != nil {
			s.log.Error().Err(err).Str("user_id", settings.UserID).Msg("cleanup failed for user")
			continue
		}
		total.VideosDeleted += result.VideosDeleted
		total.EventsDeleted += result.EventsDeleted
		total.SpaceFreedMB += result.SpaceFreedMB
	}
	total.SpaceFreedMB = roundMB(total.SpaceFreedMB)
	return total, nil
}

func (s *CleanupService) run(ctx context.Context, settings models.UserSettings) (CleanupResult, error) {
	cutoff := CutoffDate(time.Now(), settings.VideoRetentionDays)
	videos, err := s.videos.ListOlderThan(ctx, settings.UserID, cutoff)
	if err != nil {
		return CleanupResult{}, err
	}

	var result CleanupResult
	var freedBytes int64
	for _, v := range videos {
		events, err := s.events.DeleteByVideo(ctx, v.ID)
		if err != nil {
			s.log.Error().Err(err).Str("video_id", v.ID).Msg("delete events failed")
			continue
		}
		if err := s.videos.Delete(ctx, v.ID); err != nil {
			s.log.Error().Err(err).Str("video_id", v.ID).Msg("delete video row failed")
			continue
		}
		if err := s.store.Remove(ctx, v.Bucket, v.ObjectKey); err != nil {
			s.log.Error().Err(err).Str("object_key", v.ObjectKey).Msg("orphan object left in store")
		}
		result.VideosDeleted++
		result.EventsDeleted += events
		freedBytes += v.SizeBytes
	}
	result.SpaceFreedMB = bytesToMB(freedBytes)

	if result.VideosDeleted > 0 {
		s.log.Info().
			Str("user_id", settings.UserID).
			Int("videos_deleted", result.VideosDeleted).
			Float64("space_freed_mb", result.SpaceFreedMB).
			Msg("retention cleanup done")
	}
	return result, nil
}

func bytesToMB(b int64) float64 {
	return roundMB(float64(b) / (1 << 20))
}

func roundMB(mb float64) float64 {
	return math.Round(mb*100) / 100
}
