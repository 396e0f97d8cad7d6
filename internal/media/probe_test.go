package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProbeOutput(t *testing.T) {
	output := "width=1920\nheight=1080\nr_frame_rate=30000/1001\nduration=12.480000\n"

	meta, err := parseProbeOutput(output)
	require.NoError(t, err)

	assert.Equal(t, 1920, meta.Width)
	assert.Equal(t, 1080, meta.Height)
	assert.InDelta(t, 29.97, meta.FPS, 0.01)
	assert.InDelta(t, 12.48, meta.DurationSeconds, 1e-9)
	assert.Equal(t, "1920x1080", meta.Resolution())
}

func TestParseProbeOutputSkipsNA(t *testing.T) {
	output := "width=640\nheight=480\nr_frame_rate=N/A\nduration=3.5\n"

	meta, err := parseProbeOutput(output)
	require.NoError(t, err)

	assert.Zero(t, meta.FPS)
	assert.Equal(t, "640x480", meta.Resolution())
}

func TestParseProbeOutputRejectsMissingDuration(t *testing.T) {
	_, err := parseProbeOutput("width=640\nheight=480\n")
	assert.Error(t, err)
}

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		value string
		want  float64
	}{
		{"30/1", 30},
		{"30000/1001", 29.97002997002997},
		{"25", 25},
		{"0/0", 0},
		{"garbage", 0},
		{"x/y", 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, parseFrameRate(tt.value), 1e-9, "value %q", tt.value)
	}
}

func TestResolutionEmptyWhenUnknown(t *testing.T) {
	assert.Empty(t, Metadata{}.Resolution())
	assert.Empty(t, Metadata{Width: 1920}.Resolution())
}
