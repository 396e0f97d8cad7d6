package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"autovision/backend/internal/models"
)

type SettingsRepository struct {
	pool *pgxpool.Pool
}

func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// Get returns the user's settings, falling back to defaults when no row
// exists yet. Defaults are not persisted until the first save.
func (r *SettingsRepository) Get(ctx context.Context, userID string) (models.UserSettings, error) {
	const query = `
		SELECT user_id, anomaly_threshold, frame_sampling_rate, auto_delete_old_videos, video_retention_days, updated_at
		FROM user_settings
		WHERE user_id = $1
	`

	var settings models.UserSettings
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&settings.UserID,
		&settings.AnomalyThreshold,
		&settings.FrameSamplingRate,
		&settings.AutoDeleteOldVideos,
		&settings.VideoRetentionDays,
		&settings.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.DefaultSettings(userID), nil
		}
		return models.UserSettings{}, err
	}
	return settings, nil
}

func (r *SettingsRepository) Upsert(ctx context.Context, settings models.UserSettings) error {
	const query = `
		INSERT INTO user_settings (
			user_id, anomaly_threshold, frame_sampling_rate, auto_delete_old_videos, video_retention_days, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, NOW()
		)
		ON CONFLICT (user_id)
		DO UPDATE SET
			anomaly_threshold = EXCLUDED.anomaly_threshold,
			frame_sampling_rate = EXCLUDED.frame_sampling_rate,
			auto_delete_old_videos = EXCLUDED.auto_delete_old_videos,
			video_retention_days = EXCLUDED.video_retention_days,
			updated_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query,
		settings.UserID,
		settings.AnomalyThreshold,
		settings.FrameSamplingRate,
		settings.AutoDeleteOldVideos,
		settings.VideoRetentionDays,
	)
	return err
}

// ListAutoDeleteUsers returns the settings rows with auto-delete enabled.
// The scheduled retention pass iterates these.
func (r *SettingsRepository) ListAutoDeleteUsers(ctx context.Context) ([]models.UserSettings, error) {
	const query = `
		SELECT user_id, anomaly_threshold, frame_sampling_rate, auto_delete_old_videos, video_retention_days, updated_at
		FROM user_settings
		WHERE auto_delete_old_videos = TRUE
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.UserSettings
	for rows.Next() {
		var settings models.UserSettings
		if err := rows.Scan(
			&settings.UserID,
			&settings.AnomalyThreshold,
			&settings.FrameSamplingRate,
			&settings.AutoDeleteOldVideos,
			&settings.VideoRetentionDays,
			&settings.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, settings)
	}
	return result, rows.Err()
}
