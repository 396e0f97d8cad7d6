package detect

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"math"

	"autovision/backend/internal/models"
)

// Detection is the scoring result for a single frame.
type Detection struct {
	Score      float64
	IsAnomaly  bool
	Confidence float64
	Type       models.EventType
}

const lumaGridSize = 32

// Detector scores frames by comparing a downsampled luma grid against the
// previous frame (motion energy) and measuring in-frame contrast. Scores are
// deterministic for a given frame sequence, so reprocessing a video yields
// the same events.
type Detector struct {
	controller *ThresholdController
	prevLuma   []float64
}

func NewDetector(controller *ThresholdController) *Detector {
	return &Detector{controller: controller}
}

// Reset drops the inter-frame state. Call between videos.
func (d *Detector) Reset() {
	d.prevLuma = nil
}

func (d *Detector) DetectFrame(frameData []byte) (Detection, error) {
	img, _, err := image.Decode(bytes.NewReader(frameData))
	if err != nil {
		return Detection{}, fmt.Errorf("decode frame: %w", err)
	}

	luma := lumaGrid(img, lumaGridSize)

	motion := 0.0
	if d.prevLuma != nil {
		motion = meanAbsDiff(luma, d.prevLuma)
	}
	d.prevLuma = luma

	contrast := stddev(luma)

	score := combineScore(motion, contrast)
	threshold := d.controller.Current()

	confidence := math.Abs(score-threshold) * 1.5
	confidence = clamp(confidence, 0.5, 0.95)

	return Detection{
		Score:      score,
		IsAnomaly:  score > threshold,
		Confidence: confidence,
		Type:       ClassifyScore(score),
	}, nil
}

// combineScore maps motion energy and contrast onto [0,1]. Motion dominates:
// a static scene scores low regardless of texture.
func combineScore(motion, contrast float64) float64 {
	score := 0.1 + 3.0*motion + 0.15*(contrast/64.0)
	return clamp(score, 0, 1)
}

// ClassifyScore buckets a score into an event type.
func ClassifyScore(score float64) models.EventType {
	switch {
	case score < 0.3:
		return models.EventTypeNormal
	case score < 0.5:
		return models.EventTypeLoitering
	case score < 0.7:
		return models.EventTypeRunning
	case score < 0.8:
		return models.EventTypeCrowdGathering
	case score < 0.9:
		return models.EventTypeIntrusion
	default:
		return models.EventTypeFighting
	}
}

// Describe renders the human-readable event description stored with each
// detection.
func Describe(det Detection) string {
	if det.Type == models.EventTypeNormal {
		return fmt.Sprintf("Normal surveillance scene with low anomaly score (%.2f)", det.Score)
	}
	return fmt.Sprintf("Anomaly detected: %s with score %.2f", det.Type, det.Score)
}

// lumaGrid downsamples the image to a size x size grid of luma values in
// [0,255].
func lumaGrid(img image.Image, size int) []float64 {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	grid := make([]float64, size*size)
	if w == 0 || h == 0 {
		return grid
	}

	for gy := 0; gy < size; gy++ {
		for gx := 0; gx < size; gx++ {
			px := bounds.Min.X + gx*w/size
			py := bounds.Min.Y + gy*h/size
			r, g, b, _ := img.At(px, py).RGBA()
			// BT.601 luma from 16-bit channel values.
			grid[gy*size+gx] = (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 257.0
		}
	}
	return grid
}

func meanAbsDiff(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	sum := 0.0
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}
	return sum / float64(len(a)) / 255.0
}

func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
