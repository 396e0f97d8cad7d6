package tasks

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"autovision/backend/internal/queue"
)

// Heartbeat advertises worker liveness through an expiring Redis key the
// API's system status endpoint checks.
type Heartbeat struct {
	cache    *redis.Client
	interval time.Duration
	ttl      time.Duration
	log      zerolog.Logger
}

func NewHeartbeat(cache *redis.Client, interval, ttl time.Duration, log zerolog.Logger) *Heartbeat {
	return &Heartbeat{
		cache:    cache,
		interval: interval,
		ttl:      ttl,
		log:      log.With().Str("component", "heartbeat").Logger(),
	}
}

// Run beats until ctx is cancelled.
func (h *Heartbeat) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.beat(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.beat(ctx)
		}
	}
}

func (h *Heartbeat) beat(ctx context.Context) {
	now := strconv.FormatInt(time.Now().Unix(), 10)
	if err := h.cache.Set(ctx, queue.KeyWorkerHeartbeat, now, h.ttl).Err(); err != nil && ctx.Err() == nil {
		h.log.Warn().Err(err).Msg("heartbeat write failed")
	}
}
