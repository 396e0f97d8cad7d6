package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"autovision/backend/internal/config"
	"autovision/backend/internal/detect"
	"autovision/backend/internal/ids"
	"autovision/backend/internal/media"
	"autovision/backend/internal/models"
	"autovision/backend/internal/queue"
	"autovision/backend/internal/repository"
	"autovision/backend/internal/service"
	"autovision/backend/internal/storage"
	"autovision/backend/internal/telemetry"
)

const fallbackFPS = 30.0

// Processor executes jobs delivered by the stream consumer: the anomaly
// detection pipeline for process jobs and retention sweeps for cleanup jobs.
type Processor struct {
	cfg        *config.AppConfig
	videos     *repository.VideoRepository
	events     *repository.EventRepository
	settings   *repository.SettingsRepository
	store      *storage.ObjectStore
	extractor  *media.FrameExtractor
	detector   *detect.Detector
	controller *detect.ThresholdController
	cleanup    *service.CleanupService
	cache      *redis.Client
	metrics    *telemetry.Metrics
	log        zerolog.Logger
}

func NewProcessor(
	cfg *config.AppConfig,
	videos *repository.VideoRepository,
	events *repository.EventRepository,
	settings *repository.SettingsRepository,
	store *storage.ObjectStore,
	extractor *media.FrameExtractor,
	controller *detect.ThresholdController,
	cleanup *service.CleanupService,
	cache *redis.Client,
	metrics *telemetry.Metrics,
	log zerolog.Logger,
) *Processor {
	return &Processor{
		cfg:        cfg,
		videos:     videos,
		events:     events,
		settings:   settings,
		store:      store,
		extractor:  extractor,
		detector:   detect.NewDetector(controller),
		controller: controller,
		cleanup:    cleanup,
		cache:      cache,
		metrics:    metrics,
		log:        log.With().Str("component", "processor").Logger(),
	}
}

func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	job, err := queue.DecodeJob(msg.Values)
	if err != nil {
		p.log.Warn().Err(err).Str("message_id", msg.ID).Msg("undecodable job dropped")
		return nil
	}

	switch job.Type {
	case queue.JobTypeProcess:
		return p.handleProcess(ctx, job)
	case queue.JobTypeCleanup:
		return p.handleCleanup(ctx, job)
	default:
		p.log.Warn().Str("type", job.Type).Msg("unknown job type")
		return nil
	}
}

func (p *Processor) handleProcess(ctx context.Context, job queue.Job) error {
	started := time.Now()

	video, err := p.videos.GetByID(ctx, job.VideoID)
	if err != nil {
		// The video may have been deleted between enqueue and delivery.
		p.log.Warn().Err(err).Str("video_id", job.VideoID).Msg("process job skipped")
		return nil
	}

	if video.Status != models.VideoStatusProcessing &&
		!video.Status.CanTransitionTo(models.VideoStatusProcessing) {
		p.log.Warn().
			Str("video_id", video.ID).
			Str("status", string(video.Status)).
			Msg("video not processable")
		return nil
	}
	if err := p.videos.UpdateStatus(ctx, video.ID, models.VideoStatusProcessing); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}

	if err := p.runPipeline(ctx, video); err != nil {
		p.log.Error().Err(err).Str("video_id", video.ID).Msg("processing failed")
		if stErr := p.videos.UpdateStatus(ctx, video.ID, models.VideoStatusFailed); stErr != nil {
			p.log.Error().Err(stErr).Str("video_id", video.ID).Msg("mark failed errored")
		}
		if p.metrics != nil {
			p.metrics.JobsProcessed.WithLabelValues(queue.JobTypeProcess, "failure").Inc()
		}
		return err
	}

	if p.metrics != nil {
		p.metrics.JobsProcessed.WithLabelValues(queue.JobTypeProcess, "success").Inc()
		p.metrics.ProcessingDuration.Observe(time.Since(started).Seconds())
	}
	return nil
}

func (p *Processor) runPipeline(ctx context.Context, video models.Video) error {
	settings, err := p.settings.Get(ctx, video.UserID)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	// The learned threshold wins once feedback exists; the user's configured
	// threshold seeds the detector until then.
	if !p.adoptPublishedThreshold(ctx) {
		p.controller.SetCurrent(settings.AnomalyThreshold)
	}

	workDir, err := os.MkdirTemp(p.cfg.Worker.TempDir, "process-")
	if err != nil {
		return fmt.Errorf("create work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	videoPath := filepath.Join(workDir, video.Filename)
	if err := p.store.Download(ctx, video.Bucket, video.ObjectKey, videoPath); err != nil {
		return fmt.Errorf("download video: %w", err)
	}

	fps := video.FPS
	if video.DurationSeconds == 0 || fps == 0 {
		meta, err := media.Probe(ctx, videoPath)
		if err != nil {
			p.log.Warn().Err(err).Str("video_id", video.ID).Msg("probe failed")
		} else {
			fps = meta.FPS
			if err := p.videos.UpdateMetadata(ctx, video.ID, meta.DurationSeconds, meta.FPS, meta.Resolution()); err != nil {
				p.log.Warn().Err(err).Str("video_id", video.ID).Msg("store metadata failed")
			}
		}
	}
	if fps <= 0 {
		fps = fallbackFPS
	}

	frames, err := p.extractor.SampleFrames(ctx, videoPath, settings.FrameSamplingRate)
	if err != nil {
		return fmt.Errorf("extract frames: %w", err)
	}
	if len(frames) == 0 {
		return fmt.Errorf("no frames extracted")
	}

	// Reprocessing replaces the previous run's events wholesale.
	if _, err := p.events.DeleteByVideo(ctx, video.ID); err != nil {
		return fmt.Errorf("clear previous events: %w", err)
	}

	p.detector.Reset()
	detected := make([]models.Event, 0)
	for _, frame := range frames {
		detection, err := p.detector.DetectFrame(frame.Data)
		if err != nil {
			p.log.Warn().Err(err).Int("frame", frame.Number).Msg("frame skipped")
			continue
		}
		if p.metrics != nil {
			p.metrics.FramesScored.Inc()
		}
		if !detection.IsAnomaly {
			continue
		}

		if p.metrics != nil {
			p.metrics.AnomaliesDetected.Inc()
		}
		detected = append(detected, models.Event{
			ID:               ids.New(),
			VideoID:          video.ID,
			UserID:           video.UserID,
			EventType:        detection.Type,
			AnomalyScore:     detection.Score,
			Confidence:       detection.Confidence,
			TimestampSeconds: float64(frame.Number) / fps,
			FrameNumber:      frame.Number,
			Description:      detect.Describe(detection),
			IsAlert:          detection.Score > p.cfg.Detection.AlertThreshold,
		})
	}

	if len(detected) > 0 {
		if err := p.events.CreateBatch(ctx, detected); err != nil {
			return fmt.Errorf("store events: %w", err)
		}
	}

	if err := p.videos.RecordProcessingResult(ctx, video.ID, len(frames), len(detected)); err != nil {
		return fmt.Errorf("record result: %w", err)
	}

	p.log.Info().
		Str("video_id", video.ID).
		Int("frames", len(frames)).
		Int("events", len(detected)).
		Msg("video processed")
	return nil
}

func (p *Processor) handleCleanup(ctx context.Context, job queue.Job) error {
	var result service.CleanupResult
	var err error
	if job.UserID != "" {
		result, err = p.cleanup.RunForUser(ctx, job.UserID)
	} else {
		result, err = p.cleanup.RunAll(ctx)
	}
	if err != nil {
		if p.metrics != nil {
			p.metrics.JobsProcessed.WithLabelValues(queue.JobTypeCleanup, "failure").Inc()
		}
		return fmt.Errorf("cleanup run: %w", err)
	}

	if p.metrics != nil {
		p.metrics.JobsProcessed.WithLabelValues(queue.JobTypeCleanup, "success").Inc()
		p.metrics.VideosDeleted.Add(float64(result.VideosDeleted))
	}
	return nil
}

// adoptPublishedThreshold picks up the latest threshold the API learned from
// operator feedback. Missing key means nothing was published yet.
func (p *Processor) adoptPublishedThreshold(ctx context.Context) bool {
	raw, err := p.cache.Get(ctx, queue.KeyCurrentThreshold).Result()
	if err != nil {
		if err != redis.Nil {
			p.log.Warn().Err(err).Msg("read published threshold failed")
		}
		return false
	}
	threshold, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return false
	}
	p.controller.SetCurrent(threshold)
	return true
}
