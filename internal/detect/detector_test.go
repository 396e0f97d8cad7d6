package detect

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autovision/backend/internal/models"
)

func encodeFrame(t *testing.T, fill func(x, y int) color.Color) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, fill(x, y))
		}
	}

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func TestDetectFrameStaticSceneScoresLow(t *testing.T) {
	detector := NewDetector(NewThresholdController(0.5, 0.01))

	gray := encodeFrame(t, func(x, y int) color.Color {
		return color.Gray{Y: 128}
	})

	for i := 0; i < 3; i++ {
		det, err := detector.DetectFrame(gray)
		require.NoError(t, err)
		assert.False(t, det.IsAnomaly, "static frame %d flagged as anomaly", i)
		assert.Less(t, det.Score, 0.3)
	}
}

func TestDetectFrameLargeMotionScoresHigh(t *testing.T) {
	detector := NewDetector(NewThresholdController(0.5, 0.01))

	black := encodeFrame(t, func(x, y int) color.Color {
		return color.Gray{Y: 0}
	})
	white := encodeFrame(t, func(x, y int) color.Color {
		return color.Gray{Y: 255}
	})

	_, err := detector.DetectFrame(black)
	require.NoError(t, err)

	det, err := detector.DetectFrame(white)
	require.NoError(t, err)
	assert.True(t, det.IsAnomaly)
	assert.Greater(t, det.Score, 0.9)
}

func TestDetectFrameConfidenceBounds(t *testing.T) {
	detector := NewDetector(NewThresholdController(0.5, 0.01))

	frame := encodeFrame(t, func(x, y int) color.Color {
		if (x+y)%2 == 0 {
			return color.Gray{Y: 0}
		}
		return color.Gray{Y: 255}
	})

	det, err := detector.DetectFrame(frame)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, det.Confidence, 0.5)
	assert.LessOrEqual(t, det.Confidence, 0.95)
}

func TestDetectFrameRejectsGarbage(t *testing.T) {
	detector := NewDetector(NewThresholdController(0.5, 0.01))

	_, err := detector.DetectFrame([]byte("not a jpeg"))
	assert.Error(t, err)
}

func TestDetectorResetDropsMotionState(t *testing.T) {
	detector := NewDetector(NewThresholdController(0.5, 0.01))

	black := encodeFrame(t, func(x, y int) color.Color {
		return color.Gray{Y: 0}
	})
	white := encodeFrame(t, func(x, y int) color.Color {
		return color.Gray{Y: 255}
	})

	_, err := detector.DetectFrame(black)
	require.NoError(t, err)

	detector.Reset()

	// After a reset the white frame is a first frame again: no motion.
	det, err := detector.DetectFrame(white)
	require.NoError(t, err)
	assert.False(t, det.IsAnomaly)
}

func TestClassifyScore(t *testing.T) {
	tests := []struct {
		score float64
		want  models.EventType
	}{
		{0.0, models.EventTypeNormal},
		{0.29, models.EventTypeNormal},
		{0.3, models.EventTypeLoitering},
		{0.49, models.EventTypeLoitering},
		{0.5, models.EventTypeRunning},
		{0.69, models.EventTypeRunning},
		{0.7, models.EventTypeCrowdGathering},
		{0.79, models.EventTypeCrowdGathering},
		{0.8, models.EventTypeIntrusion},
		{0.89, models.EventTypeIntrusion},
		{0.9, models.EventTypeFighting},
		{1.0, models.EventTypeFighting},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyScore(tt.score), "score %.2f", tt.score)
	}
}

func TestDescribe(t *testing.T) {
	normal := Detection{Score: 0.12, Type: models.EventTypeNormal}
	assert.Contains(t, Describe(normal), "Normal surveillance scene")

	intrusion := Detection{Score: 0.85, Type: models.EventTypeIntrusion}
	assert.Contains(t, Describe(intrusion), "intrusion")
	assert.Contains(t, Describe(intrusion), "0.85")
}

func TestCombineScoreClamped(t *testing.T) {
	assert.Equal(t, 1.0, combineScore(10, 1000))
	assert.InDelta(t, 0.1, combineScore(0, 0), 1e-9)
}
