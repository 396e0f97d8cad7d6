package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "autovision:jobs", cfg.Redis.Stream)
	assert.Equal(t, "autovision-workers", cfg.Redis.Group)
	assert.Equal(t, "autovision-videos", cfg.Storage.BucketVideos)
	assert.Equal(t, 15*time.Minute, cfg.Security.JWTAccessTTL)
	assert.Equal(t, 10, cfg.Security.MaxSessions)
	assert.Equal(t, 0.8, cfg.Detection.AlertThreshold)
	assert.Equal(t, 0.5, cfg.Detection.InitialThreshold)
	assert.Equal(t, 0.01, cfg.Detection.LearningRate)
	assert.Equal(t, int64(100), cfg.Detection.MaxVideoSizeMB)
	assert.Equal(t, 512, cfg.Detection.FrameSize)
	assert.Equal(t, 30*time.Second, cfg.Worker.ClaimInterval)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadEnvOverride(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("AUTOVISION_HTTP_PORT", "9090")
	t.Setenv("AUTOVISION_ENVIRONMENT", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 9090, cfg.HTTP.Port)
}
