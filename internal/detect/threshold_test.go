package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThresholdControllerStaysInBounds(t *testing.T) {
	c := NewThresholdController(0.5, 0.01)

	for i := 0; i < 500; i++ {
		c.Apply(Feedback{FalsePositive: true, Score: 0.9})
	}
	assert.GreaterOrEqual(t, c.Current(), 0.1)
	assert.LessOrEqual(t, c.Current(), 0.9)

	for i := 0; i < 500; i++ {
		c.Apply(Feedback{FalseNegative: true, Score: 0.2})
	}
	assert.GreaterOrEqual(t, c.Current(), 0.1)
	assert.LessOrEqual(t, c.Current(), 0.9)
}

func TestThresholdControllerInitialClamp(t *testing.T) {
	assert.Equal(t, 0.1, NewThresholdController(-3, 0.01).Current())
	assert.Equal(t, 0.9, NewThresholdController(2, 0.01).Current())
	assert.Equal(t, 0.5, NewThresholdController(0.5, 0.01).Current())
}

func TestThresholdControllerSetCurrent(t *testing.T) {
	c := NewThresholdController(0.5, 0.01)
	c.Apply(Feedback{TruePositive: true, Score: 0.8})

	c.SetCurrent(0.75)
	assert.Equal(t, 0.75, c.Current())
	// Learned state survives a SetCurrent.
	assert.Equal(t, 1, c.Summary().Episodes)

	c.SetCurrent(5)
	assert.Equal(t, 0.9, c.Current())
}

func TestThresholdControllerCountsFeedback(t *testing.T) {
	c := NewThresholdController(0.5, 0.01)

	c.Apply(Feedback{FalsePositive: true, Score: 0.9})
	c.Apply(Feedback{FalsePositive: true, Score: 0.85})
	c.Apply(Feedback{FalseNegative: true, Score: 0.2})
	c.Apply(Feedback{TruePositive: true, Score: 0.95})

	summary := c.Summary()
	assert.Equal(t, 2, summary.FalsePositives)
	assert.Equal(t, 1, summary.FalseNegatives)
	assert.Equal(t, 1, summary.TruePositives)
	assert.Equal(t, 4, summary.Episodes)
	assert.InDelta(t, -1.0-1.0-1.5+2.0, summary.TotalReward, 1e-9)
}

func TestThresholdControllerReset(t *testing.T) {
	c := NewThresholdController(0.5, 0.01)
	for i := 0; i < 20; i++ {
		c.Apply(Feedback{FalsePositive: true, Score: 0.9})
	}

	c.Reset(0.6)

	summary := c.Summary()
	assert.Equal(t, 0.6, summary.CurrentThreshold)
	assert.Equal(t, 0, summary.Episodes)
	assert.Equal(t, 0, summary.FalsePositives)
	assert.Equal(t, 0, summary.QStates)
	assert.Zero(t, summary.TotalReward)
}

func TestDiscretizeThreshold(t *testing.T) {
	tests := []struct {
		threshold float64
		want      int
	}{
		{0.1, 0},
		{0.29, 0},
		{0.3, 1},
		{0.49, 1},
		{0.5, 2},
		{0.69, 2},
		{0.7, 3},
		{0.9, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, discretizeThreshold(tt.threshold), "threshold %.2f", tt.threshold)
	}
}
