package models

import "time"

type EventType string

const (
	EventTypeNormal         EventType = "normal"
	EventTypeLoitering      EventType = "loitering"
	EventTypeRunning        EventType = "running"
	EventTypeCrowdGathering EventType = "crowd_gathering"
	EventTypeIntrusion      EventType = "intrusion"
	EventTypeFighting       EventType = "fighting"
	EventTypeUnknown        EventType = "unknown"
)

type Event struct {
	ID               string
	VideoID          string
	UserID           string
	EventType        EventType
	AnomalyScore     float64
	Confidence       float64
	TimestampSeconds float64
	FrameNumber      int
	Description      string
	IsAlert          bool
	IsFalsePositive  *bool
	CreatedAt        time.Time
}
