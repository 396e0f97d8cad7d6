package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autovision/backend/internal/models"
)

func TestCutoffDate(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	cutoff := CutoffDate(now, 30)
	assert.Equal(t, time.Date(2025, 5, 16, 12, 0, 0, 0, time.UTC), cutoff)

	// A 31 day old video falls before the cutoff, a 29 day old one does not.
	assert.True(t, now.AddDate(0, 0, -31).Before(cutoff))
	assert.False(t, now.AddDate(0, 0, -29).Before(cutoff))
}

func TestCutoffDateSingleDay(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), CutoffDate(now, 1))
}

func TestPreviewDisabledReturnsZeroCounts(t *testing.T) {
	videos := newFakeVideoRepo()
	videos.older = []models.Video{{
		ID:        "vid-old",
		UserID:    "user-1",
		SizeBytes: 5 << 20,
		CreatedAt: time.Now().AddDate(0, 0, -90),
	}}
	settings := &fakeSettingsRepo{settings: map[string]models.UserSettings{
		"user-1": {
			UserID:              "user-1",
			AutoDeleteOldVideos: false,
			VideoRetentionDays:  30,
		},
	}}
	svc := NewCleanupService(videos, &fakeEventRepo{}, settings, &fakeBlobStore{}, zerolog.Nop())

	preview, err := svc.Preview(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, 0, preview.VideosToDelete)
	assert.Equal(t, 0.0, preview.SpaceToFreeMB)
	assert.False(t, preview.AutoDelete)
	assert.NotEmpty(t, preview.Message)
	assert.Empty(t, preview.Videos)
	// No candidate scan happens for opted-out users.
	assert.Equal(t, 0, videos.olderCalls)
}

func TestPreviewListsExpiredVideos(t *testing.T) {
	now := time.Now()
	videos := newFakeVideoRepo()
	videos.older = []models.Video{
		{ID: "vid-old", UserID: "user-1", OriginalName: "lobby.mp4", SizeBytes: 2 << 20, CreatedAt: now.AddDate(0, 0, -45)},
		{ID: "vid-new", UserID: "user-1", OriginalName: "dock.mp4", SizeBytes: 8 << 20, CreatedAt: now.AddDate(0, 0, -3)},
	}
	settings := &fakeSettingsRepo{settings: map[string]models.UserSettings{
		"user-1": {
			UserID:              "user-1",
			AutoDeleteOldVideos: true,
			VideoRetentionDays:  30,
		},
	}}
	svc := NewCleanupService(videos, &fakeEventRepo{}, settings, &fakeBlobStore{}, zerolog.Nop())

	preview, err := svc.Preview(context.Background(), "user-1")
	require.NoError(t, err)

	assert.True(t, preview.AutoDelete)
	assert.Equal(t, 1, preview.VideosToDelete)
	assert.Equal(t, 2.0, preview.SpaceToFreeMB)
	require.Len(t, preview.Videos, 1)
	assert.Equal(t, "vid-old", preview.Videos[0].ID)
	assert.Empty(t, preview.Message)
}

func TestBytesToMB(t *testing.T) {
	assert.Equal(t, 0.0, bytesToMB(0))
	assert.Equal(t, 1.0, bytesToMB(1<<20))
	assert.Equal(t, 1.5, bytesToMB(3<<19))
	assert.Equal(t, 0.1, bytesToMB(104858)) // ~0.1 MB rounded to two decimals
}
