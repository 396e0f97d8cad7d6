package detect

import (
	"math/rand"
	"sync"
	"time"
)

// Feedback is the operator's verdict on a detection, fed back from the
// events feedback endpoint.
type Feedback struct {
	FalsePositive bool
	FalseNegative bool
	TruePositive  bool
	Score         float64 // -1.0 to 1.0
}

// Summary is the controller state exposed on the system status endpoint.
type Summary struct {
	CurrentThreshold float64 `json:"currentThreshold"`
	Episodes         int     `json:"episodes"`
	TotalReward      float64 `json:"totalReward"`
	FalsePositives   int     `json:"falsePositives"`
	FalseNegatives   int     `json:"falseNegatives"`
	TruePositives    int     `json:"truePositives"`
	QStates          int     `json:"qStates"`
}

type state struct {
	thresholdBin int
	fpBin        int
	fnBin        int
}

type stateAction struct {
	s state
	a int
}

const (
	actionLower = iota
	actionKeep
	actionRaise
	numActions

	thresholdStep = 0.05
	minThreshold  = 0.1
	maxThreshold  = 0.9

	discountFactor  = 0.95
	explorationRate = 0.1
)

// ThresholdController tunes the anomaly threshold with tabular Q-learning.
// States discretize the threshold and the recent false-positive/negative
// counts; actions nudge the threshold by a fixed step.
type ThresholdController struct {
	mu sync.Mutex

	threshold    float64
	learningRate float64
	qTable       map[stateAction]float64
	rng          *rand.Rand

	falsePositives int
	falseNegatives int
	truePositives  int
	trueNegatives  int
	episodes       int
	totalReward    float64
}

func NewThresholdController(initial, learningRate float64) *ThresholdController {
	return &ThresholdController{
		threshold:    clamp(initial, minThreshold, maxThreshold),
		learningRate: learningRate,
		qTable:       make(map[stateAction]float64),
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *ThresholdController) Current() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.threshold
}

// Apply runs one Q-learning episode from an operator feedback signal and
// adjusts the threshold.
func (c *ThresholdController) Apply(fb Feedback) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.state()
	reward := c.reward(fb)

	action := c.selectAction(prev)
	c.applyAction(action)

	next := c.state()
	c.updateQ(prev, action, reward, next)

	c.episodes++
	c.totalReward += reward

	return c.threshold
}

// SetCurrent overrides the working threshold without touching learned state.
// The worker uses it to adopt the threshold published by the API process.
func (c *ThresholdController) SetCurrent(threshold float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.threshold = clamp(threshold, minThreshold, maxThreshold)
}

func (c *ThresholdController) Reset(initial float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.threshold = clamp(initial, minThreshold, maxThreshold)
	c.qTable = make(map[stateAction]float64)
	c.falsePositives = 0
	c.falseNegatives = 0
	c.truePositives = 0
	c.trueNegatives = 0
	c.episodes = 0
	c.totalReward = 0
}

func (c *ThresholdController) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Summary{
		CurrentThreshold: c.threshold,
		Episodes:         c.episodes,
		TotalReward:      c.totalReward,
		FalsePositives:   c.falsePositives,
		FalseNegatives:   c.falseNegatives,
		TruePositives:    c.truePositives,
		QStates:          len(c.qTable),
	}
}

func (c *ThresholdController) reward(fb Feedback) float64 {
	switch {
	case fb.FalsePositive:
		c.falsePositives++
		return -1.0
	case fb.FalseNegative:
		c.falseNegatives++
		return -1.5
	case fb.TruePositive:
		c.truePositives++
		return 2.0
	default:
		c.trueNegatives++
		return 0.5
	}
}

func (c *ThresholdController) state() state {
	return state{
		thresholdBin: discretizeThreshold(c.threshold),
		fpBin:        min(c.falsePositives/5, 5),
		fnBin:        min(c.falseNegatives/5, 5),
	}
}

func discretizeThreshold(threshold float64) int {
	bins := []float64{0.0, 0.3, 0.5, 0.7, 1.0}
	for i := 0; i < len(bins)-1; i++ {
		if threshold >= bins[i] && threshold < bins[i+1] {
			return i
		}
	}
	return len(bins) - 2
}

func (c *ThresholdController) selectAction(s state) int {
	if c.rng.Float64() < explorationRate {
		return c.rng.Intn(numActions)
	}

	best, bestQ := actionKeep, c.qTable[stateAction{s, actionKeep}]
	for a := 0; a < numActions; a++ {
		if q := c.qTable[stateAction{s, a}]; q > bestQ {
			best, bestQ = a, q
		}
	}
	return best
}

func (c *ThresholdController) applyAction(action int) {
	switch action {
	case actionLower:
		c.threshold = clamp(c.threshold-thresholdStep, minThreshold, maxThreshold)
	case actionRaise:
		c.threshold = clamp(c.threshold+thresholdStep, minThreshold, maxThreshold)
	}
}

func (c *ThresholdController) updateQ(prev state, action int, reward float64, next state) {
	key := stateAction{prev, action}
	current := c.qTable[key]

	maxNext := c.qTable[stateAction{next, 0}]
	for a := 1; a < numActions; a++ {
		if q := c.qTable[stateAction{next, a}]; q > maxNext {
			maxNext = q
		}
	}

	c.qTable[key] = current + c.learningRate*(reward+discountFactor*maxNext-current)
}
