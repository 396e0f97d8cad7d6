package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"autovision/backend/internal/models"
)

var ErrVideoNotFound = errors.New("video not found")

type VideoRepository struct {
	pool *pgxpool.Pool
}

func NewVideoRepository(pool *pgxpool.Pool) *VideoRepository {
	return &VideoRepository{pool: pool}
}

const videoColumns = `
	id, user_id, filename, original_name, bucket, object_key, size_bytes,
	duration_seconds, fps, resolution, upload_status, storage_provider,
	frames_processed, anomalies_detected, created_at, updated_at
`

func (r *VideoRepository) Create(ctx context.Context, video models.Video) error {
	const query = `
		INSERT INTO videos (
			id, user_id, filename, original_name, bucket, object_key, size_bytes,
			duration_seconds, fps, resolution, upload_status, storage_provider,
			frames_processed, anomalies_detected, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12,
			0, 0, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		video.ID,
		video.UserID,
		video.Filename,
		video.OriginalName,
		video.Bucket,
		video.ObjectKey,
		video.SizeBytes,
		video.DurationSeconds,
		video.FPS,
		video.Resolution,
		video.Status,
		video.StorageProvider,
	)
	return err
}

func (r *VideoRepository) GetByID(ctx context.Context, id string) (models.Video, error) {
	const query = `SELECT ` + videoColumns + ` FROM videos WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *VideoRepository) UpdateStatus(ctx context.Context, id string, status models.VideoStatus) error {
	const query = `
		UPDATE videos SET upload_status = $2, updated_at = NOW() WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrVideoNotFound
	}
	return nil
}

// UpdateMetadata fills in probe results discovered after upload.
func (r *VideoRepository) UpdateMetadata(ctx context.Context, id string, durationSeconds, fps float64, resolution string) error {
	const query = `
		UPDATE videos
		SET duration_seconds = $2, fps = $3, resolution = $4, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, id, durationSeconds, fps, resolution)
	return err
}

// RecordProcessingResult marks a run complete and stores pipeline counters.
func (r *VideoRepository) RecordProcessingResult(ctx context.Context, id string, framesProcessed, anomaliesDetected int) error {
	const query = `
		UPDATE videos
		SET upload_status = $2,
		    frames_processed = $3,
		    anomalies_detected = $4,
		    updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, id, models.VideoStatusCompleted, framesProcessed, anomaliesDetected)
	return err
}

func (r *VideoRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM videos WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrVideoNotFound
	}
	return nil
}

func (r *VideoRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Video, error) {
	const query = `
		SELECT ` + videoColumns + `
		FROM videos
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanMany(rows)
}

func (r *VideoRepository) List(ctx context.Context, limit, offset int) ([]models.Video, error) {
	const query = `
		SELECT ` + videoColumns + `
		FROM videos
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanMany(rows)
}

// ListOlderThan returns a user's videos created strictly before cutoff,
// oldest first. Used by retention cleanup.
func (r *VideoRepository) ListOlderThan(ctx context.Context, userID string, cutoff time.Time) ([]models.Video, error) {
	const query = `
		SELECT ` + videoColumns + `
		FROM videos
		WHERE user_id = $1 AND created_at < $2
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, userID, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanMany(rows)
}

// CountProcessing reports how many of the user's videos are mid-pipeline.
func (r *VideoRepository) CountProcessing(ctx context.Context, userID string) (int, error) {
	const query = `
		SELECT COUNT(*) FROM videos WHERE user_id = $1 AND upload_status = $2
	`
	var count int
	if err := r.pool.QueryRow(ctx, query, userID, models.VideoStatusProcessing).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

type VideoStats struct {
	TotalVideos  int
	TotalBytes   int64
	StatusCounts map[models.VideoStatus]int
}

func (r *VideoRepository) StatsByUser(ctx context.Context, userID string) (VideoStats, error) {
	const query = `
		SELECT upload_status, COUNT(*), COALESCE(SUM(size_bytes), 0)
		FROM videos
		WHERE user_id = $1
		GROUP BY upload_status
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return VideoStats{}, err
	}
	defer rows.Close()

	stats := VideoStats{StatusCounts: make(map[models.VideoStatus]int)}
	for rows.Next() {
		var status models.VideoStatus
		var count int
		var bytes int64
		if err := rows.Scan(&status, &count, &bytes); err != nil {
			return VideoStats{}, err
		}
		stats.StatusCounts[status] = count
		stats.TotalVideos += count
		stats.TotalBytes += bytes
	}
	return stats, rows.Err()
}

func (r *VideoRepository) scanOne(row pgx.Row) (models.Video, error) {
	var video models.Video
	if err := row.Scan(
		&video.ID,
		&video.UserID,
		&video.Filename,
		&video.OriginalName,
		&video.Bucket,
		&video.ObjectKey,
		&video.SizeBytes,
		&video.DurationSeconds,
		&video.FPS,
		&video.Resolution,
		&video.Status,
		&video.StorageProvider,
		&video.FramesProcessed,
		&video.AnomaliesDetected,
		&video.CreatedAt,
		&video.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrVideoNotFound
		}
		return models.Video{}, err
	}
	return video, nil
}

func (r *VideoRepository) scanMany(rows pgx.Rows) ([]models.Video, error) {
	var videos []models.Video
	for rows.Next() {
		var video models.Video
		if err := rows.Scan(
			&video.ID,
			&video.UserID,
			&video.Filename,
			&video.OriginalName,
			&video.Bucket,
			&video.ObjectKey,
			&video.SizeBytes,
			&video.DurationSeconds,
			&video.FPS,
			&video.Resolution,
			&video.Status,
			&video.StorageProvider,
			&video.FramesProcessed,
			&video.AnomaliesDetected,
			&video.CreatedAt,
			&video.UpdatedAt,
		); err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}
	return videos, rows.Err()
}
