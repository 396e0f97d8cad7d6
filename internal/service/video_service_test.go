package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autovision/backend/internal/models"
	"autovision/backend/internal/queue"
)

func newVideoServiceForTest(videos *fakeVideoRepo, publisher *fakeEnqueuer) *VideoService {
	return NewVideoService(videos, &fakeEventRepo{}, &fakeBlobStore{}, publisher, 100, zerolog.Nop())
}

func TestReprocessMarksProcessingBeforeQueueing(t *testing.T) {
	videos := newFakeVideoRepo(models.Video{
		ID:     "vid-1",
		UserID: "user-1",
		Status: models.VideoStatusUploaded,
	})
	publisher := &fakeEnqueuer{}
	svc := newVideoServiceForTest(videos, publisher)

	err := svc.Reprocess(context.Background(), "user-1", "vid-1", false)
	require.NoError(t, err)

	// Status is written before the job goes out, so a poll right after the
	// call observes processing.
	stored, err := videos.GetByID(context.Background(), "vid-1")
	require.NoError(t, err)
	assert.Equal(t, models.VideoStatusProcessing, stored.Status)
	assert.Equal(t, []models.VideoStatus{models.VideoStatusProcessing}, videos.statusWrites)

	require.Len(t, publisher.jobs, 1)
	assert.Equal(t, queue.JobTypeProcess, publisher.jobs[0].Type)
	assert.Equal(t, "vid-1", publisher.jobs[0].VideoID)
	assert.Equal(t, "user-1", publisher.jobs[0].UserID)
}

func TestReprocessStatusGuards(t *testing.T) {
	tests := []struct {
		name    string
		status  models.VideoStatus
		force   bool
		wantErr error
	}{
		{"in flight", models.VideoStatusProcessing, false, ErrAlreadyProcessing},
		{"in flight even forced", models.VideoStatusProcessing, true, ErrAlreadyProcessing},
		{"completed without force", models.VideoStatusCompleted, false, ErrAlreadyCompleted},
		{"completed with force", models.VideoStatusCompleted, true, nil},
		{"failed", models.VideoStatusFailed, false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			videos := newFakeVideoRepo(models.Video{
				ID:     "vid-1",
				UserID: "user-1",
				Status: tt.status,
			})
			publisher := &fakeEnqueuer{}
			svc := newVideoServiceForTest(videos, publisher)

			err := svc.Reprocess(context.Background(), "user-1", "vid-1", tt.force)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, videos.statusWrites)
				assert.Empty(t, publisher.jobs)
				return
			}

			require.NoError(t, err)
			stored, _ := videos.GetByID(context.Background(), "vid-1")
			assert.Equal(t, models.VideoStatusProcessing, stored.Status)
			assert.Len(t, publisher.jobs, 1)
		})
	}
}

func TestReprocessForeignVideoHidden(t *testing.T) {
	videos := newFakeVideoRepo(models.Video{
		ID:     "vid-1",
		UserID: "owner",
		Status: models.VideoStatusUploaded,
	})
	svc := newVideoServiceForTest(videos, &fakeEnqueuer{})

	err := svc.Reprocess(context.Background(), "intruder", "vid-1", false)
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.Empty(t, videos.statusWrites)
}

func TestReprocessRevertsStatusWhenEnqueueFails(t *testing.T) {
	videos := newFakeVideoRepo(models.Video{
		ID:     "vid-1",
		UserID: "user-1",
		Status: models.VideoStatusUploaded,
	})
	publisher := &fakeEnqueuer{err: errors.New("stream unavailable")}
	svc := newVideoServiceForTest(videos, publisher)

	err := svc.Reprocess(context.Background(), "user-1", "vid-1", false)
	require.Error(t, err)

	stored, _ := videos.GetByID(context.Background(), "vid-1")
	assert.Equal(t, models.VideoStatusUploaded, stored.Status)
}
