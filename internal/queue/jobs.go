package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	JobTypeProcess = "process"
	JobTypeCleanup = "cleanup"
)

// Shared Redis keys. The API publishes threshold updates and reads the
// worker heartbeat; the worker does the reverse.
const (
	KeyWorkerHeartbeat  = "autovision:worker:heartbeat"
	KeyCurrentThreshold = "autovision:detector:threshold"
)

// Job is one unit of work on the stream. All fields are strings because
// Redis Stream values are strings on the wire.
type Job struct {
	Type    string `json:"type"`
	VideoID string `json:"videoId,omitempty"`
	UserID  string `json:"userId,omitempty"`
}

func DecodeJob(values map[string]interface{}) (Job, error) {
	raw, err := json.Marshal(values)
	if err != nil {
		return Job{}, fmt.Errorf("encode stream values: %w", err)
	}
	var job Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return Job{}, fmt.Errorf("decode job: %w", err)
	}
	if job.Type == "" {
		return Job{}, fmt.Errorf("job missing type")
	}
	return job, nil
}

// Publisher appends jobs to the stream the worker group consumes.
type Publisher struct {
	client *redis.Client
	stream string
}

func NewPublisher(client *redis.Client, stream string) *Publisher {
	return &Publisher{client: client, stream: stream}
}

func (p *Publisher) Enqueue(ctx context.Context, job Job) error {
	values := map[string]any{"type": job.Type}
	if job.VideoID != "" {
		values["videoId"] = job.VideoID
	}
	if job.UserID != "" {
		values["userId"] = job.UserID
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: values,
	}).Err(); err != nil {
		return fmt.Errorf("enqueue %s job: %w", job.Type, err)
	}
	return nil
}

func (p *Publisher) Stream() string {
	return p.stream
}
