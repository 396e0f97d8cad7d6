package service

import (
	"context"
	"io"
	"time"

	"autovision/backend/internal/models"
	"autovision/backend/internal/queue"
	"autovision/backend/internal/repository"
)

type fakeVideoRepo struct {
	byID          map[string]models.Video
	statusWrites  []models.VideoStatus
	older         []models.Video
	olderCalls    int
	updateStatErr error
}

func newFakeVideoRepo(videos ...models.Video) *fakeVideoRepo {
	f := &fakeVideoRepo{byID: make(map[string]models.Video)}
	for _, v := range videos {
		f.byID[v.ID] = v
	}
	return f
}

func (f *fakeVideoRepo) Create(_ context.Context, v models.Video) error {
	f.byID[v.ID] = v
	return nil
}

func (f *fakeVideoRepo) GetByID(_ context.Context, id string) (models.Video, error) {
	v, ok := f.byID[id]
	if !ok {
		return models.Video{}, repository.ErrVideoNotFound
	}
	return v, nil
}

func (f *fakeVideoRepo) UpdateStatus(_ context.Context, id string, status models.VideoStatus) error {
	if f.updateStatErr != nil {
		return f.updateStatErr
	}
	v, ok := f.byID[id]
	if !ok {
		return repository.ErrVideoNotFound
	}
	v.Status = status
	f.byID[id] = v
	f.statusWrites = append(f.statusWrites, status)
	return nil
}

func (f *fakeVideoRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return repository.ErrVideoNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeVideoRepo) ListOlderThan(_ context.Context, userID string, cutoff time.Time) ([]models.Video, error) {
	f.olderCalls++
	var matched []models.Video
	for _, v := range f.older {
		if v.UserID == userID && v.CreatedAt.Before(cutoff) {
			matched = append(matched, v)
		}
	}
	return matched, nil
}

type fakeEventRepo struct {
	deletedVideos []string
	perVideo      int64
}

func (f *fakeEventRepo) DeleteByVideo(_ context.Context, videoID string) (int64, error) {
	f.deletedVideos = append(f.deletedVideos, videoID)
	return f.perVideo, nil
}

type fakeSettingsRepo struct {
	settings map[string]models.UserSettings
}

func (f *fakeSettingsRepo) Get(_ context.Context, userID string) (models.UserSettings, error) {
	if s, ok := f.settings[userID]; ok {
		return s, nil
	}
	return models.DefaultSettings(userID), nil
}

func (f *fakeSettingsRepo) ListAutoDeleteUsers(_ context.Context) ([]models.UserSettings, error) {
	var opted []models.UserSettings
	for _, s := range f.settings {
		if s.AutoDeleteOldVideos {
			opted = append(opted, s)
		}
	}
	return opted, nil
}

type fakeBlobStore struct {
	removed []string
	putErr  error
}

func (f *fakeBlobStore) Put(_ context.Context, _, _ string, reader io.Reader, _ int64, _ string) (int64, error) {
	if f.putErr != nil {
		return 0, f.putErr
	}
	return io.Copy(io.Discard, reader)
}

func (f *fakeBlobStore) Remove(_ context.Context, _, objectKey string) error {
	f.removed = append(f.removed, objectKey)
	return nil
}

func (f *fakeBlobStore) PresignedGetURL(_ context.Context, bucket, objectKey string, _ time.Duration, _ string) (string, error) {
	return "https://store.local/" + bucket + "/" + objectKey, nil
}

func (f *fakeBlobStore) VideoBucket() string { return "videos" }

type fakeEnqueuer struct {
	jobs []queue.Job
	err  error
}

func (f *fakeEnqueuer) Enqueue(_ context.Context, job queue.Job) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}
