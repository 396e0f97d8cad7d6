package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJob(t *testing.T) {
	job, err := DecodeJob(map[string]interface{}{
		"type":    "process",
		"videoId": "vid-1",
		"userId":  "user-1",
	})
	require.NoError(t, err)

	assert.Equal(t, JobTypeProcess, job.Type)
	assert.Equal(t, "vid-1", job.VideoID)
	assert.Equal(t, "user-1", job.UserID)
}

func TestDecodeJobCleanupWithoutVideo(t *testing.T) {
	job, err := DecodeJob(map[string]interface{}{"type": "cleanup"})
	require.NoError(t, err)

	assert.Equal(t, JobTypeCleanup, job.Type)
	assert.Empty(t, job.VideoID)
	assert.Empty(t, job.UserID)
}

func TestDecodeJobMissingType(t *testing.T) {
	_, err := DecodeJob(map[string]interface{}{"videoId": "vid-1"})
	assert.Error(t, err)
}

func TestDecodeJobIgnoresExtraFields(t *testing.T) {
	job, err := DecodeJob(map[string]interface{}{
		"type":    "process",
		"videoId": "vid-1",
		"attempt": "3",
	})
	require.NoError(t, err)
	assert.Equal(t, "vid-1", job.VideoID)
}
