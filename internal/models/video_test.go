package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVideoStatusTransitions(t *testing.T) {
	tests := []struct {
		from VideoStatus
		to   VideoStatus
		want bool
	}{
		{VideoStatusUploaded, VideoStatusProcessing, true},
		{VideoStatusUploaded, VideoStatusCompleted, false},
		{VideoStatusUploaded, VideoStatusFailed, false},
		{VideoStatusProcessing, VideoStatusCompleted, true},
		{VideoStatusProcessing, VideoStatusFailed, true},
		{VideoStatusProcessing, VideoStatusUploaded, false},
		{VideoStatusCompleted, VideoStatusProcessing, true},
		{VideoStatusCompleted, VideoStatusFailed, false},
		{VideoStatusFailed, VideoStatusProcessing, true},
		{VideoStatusFailed, VideoStatusCompleted, false},
		{VideoStatus("bogus"), VideoStatusProcessing, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}
