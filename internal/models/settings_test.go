package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings("user-1")

	assert.Equal(t, "user-1", s.UserID)
	assert.Equal(t, 0.5, s.AnomalyThreshold)
	assert.Equal(t, 10, s.FrameSamplingRate)
	assert.False(t, s.AutoDeleteOldVideos)
	assert.Equal(t, 30, s.VideoRetentionDays)

	require.NoError(t, s.Validate())
}

func TestSettingsValidate(t *testing.T) {
	base := DefaultSettings("user-1")

	tests := []struct {
		name    string
		mutate  func(*UserSettings)
		wantErr bool
	}{
		{"defaults", func(s *UserSettings) {}, false},
		{"threshold zero", func(s *UserSettings) { s.AnomalyThreshold = 0 }, false},
		{"threshold one", func(s *UserSettings) { s.AnomalyThreshold = 1 }, false},
		{"threshold negative", func(s *UserSettings) { s.AnomalyThreshold = -0.1 }, true},
		{"threshold above one", func(s *UserSettings) { s.AnomalyThreshold = 1.1 }, true},
		{"sampling rate min", func(s *UserSettings) { s.FrameSamplingRate = 1 }, false},
		{"sampling rate max", func(s *UserSettings) { s.FrameSamplingRate = 100 }, false},
		{"sampling rate zero", func(s *UserSettings) { s.FrameSamplingRate = 0 }, true},
		{"sampling rate too high", func(s *UserSettings) { s.FrameSamplingRate = 101 }, true},
		{"retention min", func(s *UserSettings) { s.VideoRetentionDays = 1 }, false},
		{"retention max", func(s *UserSettings) { s.VideoRetentionDays = 365 }, false},
		{"retention zero", func(s *UserSettings) { s.VideoRetentionDays = 0 }, true},
		{"retention too long", func(s *UserSettings) { s.VideoRetentionDays = 366 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
