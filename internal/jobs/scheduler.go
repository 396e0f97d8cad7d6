package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"autovision/backend/internal/queue"
)

// Scheduler enqueues the nightly retention cleanup. It runs inside the API
// process so a single instance drives the schedule.
type Scheduler struct {
	cron      *cron.Cron
	publisher *queue.Publisher
	log       zerolog.Logger
}

func NewScheduler(publisher *queue.Publisher, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithSeconds()),
		publisher: publisher,
		log:       log.With().Str("component", "scheduler").Logger(),
	}
}

func (s *Scheduler) Start() error {
	if s.publisher == nil {
		return nil
	}

	if _, err := s.cron.AddFunc("0 0 0 * * *", s.enqueueCleanup); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop waits for any in-flight cron job, up to five seconds.
func (s *Scheduler) Stop() {
	select {
	case <-s.cron.Stop().Done():
	case <-time.After(5 * time.Second):
	}
}

func (s *Scheduler) enqueueCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.publisher.Enqueue(ctx, queue.Job{Type: queue.JobTypeCleanup}); err != nil {
		s.log.Error().Err(err).Msg("enqueue cleanup failed")
		return
	}
	s.log.Info().Msg("nightly cleanup enqueued")
}
