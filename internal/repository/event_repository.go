package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"autovision/backend/internal/models"
)

var ErrEventNotFound = errors.New("event not found")

type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

const eventColumns = `
	id, video_id, user_id, event_type, anomaly_score, confidence,
	timestamp_seconds, frame_number, description, is_alert, is_false_positive,
	created_at
`

func (r *EventRepository) Create(ctx context.Context, event models.Event) error {
	const query = `
		INSERT INTO events (
			id, video_id, user_id, event_type, anomaly_score, confidence,
			timestamp_seconds, frame_number, description, is_alert, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		event.ID,
		event.VideoID,
		event.UserID,
		event.EventType,
		event.AnomalyScore,
		event.Confidence,
		event.TimestampSeconds,
		event.FrameNumber,
		event.Description,
		event.IsAlert,
	)
	return err
}

// CreateBatch inserts detection events from one processing run in a single
// round trip.
func (r *EventRepository) CreateBatch(ctx context.Context, events []models.Event) error {
	if len(events) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	const query = `
		INSERT INTO events (
			id, video_id, user_id, event_type, anomaly_score, confidence,
			timestamp_seconds, frame_number, description, is_alert, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW()
		)
	`
	for _, event := range events {
		batch.Queue(query,
			event.ID,
			event.VideoID,
			event.UserID,
			event.EventType,
			event.AnomalyScore,
			event.Confidence,
			event.TimestampSeconds,
			event.FrameNumber,
			event.Description,
			event.IsAlert,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range events {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (models.Event, error) {
	const query = `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *EventRepository) ListByUser(ctx context.Context, userID string, eventType string, limit int) ([]models.Event, error) {
	const query = `
		SELECT ` + eventColumns + `
		FROM events
		WHERE user_id = $1 AND ($2 = '' OR event_type = $2)
		ORDER BY created_at DESC
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, userID, eventType, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanMany(rows)
}

func (r *EventRepository) ListByVideo(ctx context.Context, videoID string) ([]models.Event, error) {
	const query = `
		SELECT ` + eventColumns + `
		FROM events
		WHERE video_id = $1
		ORDER BY timestamp_seconds ASC
	`
	rows, err := r.pool.Query(ctx, query, videoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanMany(rows)
}

// SetFeedback stores the operator's false-positive verdict. Events are
// otherwise immutable.
func (r *EventRepository) SetFeedback(ctx context.Context, id string, isFalsePositive bool) error {
	const query = `
		UPDATE events SET is_false_positive = $2 WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id, isFalsePositive)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *EventRepository) DeleteByVideo(ctx context.Context, videoID string) (int64, error) {
	const query = `DELETE FROM events WHERE video_id = $1`
	cmd, err := r.pool.Exec(ctx, query, videoID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

type EventStats struct {
	TotalEvents int
	TotalAlerts int
	TypeCounts  map[models.EventType]int
	DailyCounts map[string]int // ISO date -> count, last 7 days
}

func (r *EventRepository) StatsByUser(ctx context.Context, userID string) (EventStats, error) {
	stats := EventStats{
		TypeCounts:  make(map[models.EventType]int),
		DailyCounts: make(map[string]int),
	}

	const typeQuery = `
		SELECT event_type, COUNT(*), COUNT(*) FILTER (WHERE is_alert)
		FROM events
		WHERE user_id = $1
		GROUP BY event_type
	`
	rows, err := r.pool.Query(ctx, typeQuery, userID)
	if err != nil {
		return EventStats{}, err
	}
	for rows.Next() {
		var eventType models.EventType
		var count, alerts int
		if err := rows.Scan(&eventType, &count, &alerts); err != nil {
			rows.Close()
			return EventStats{}, err
		}
		stats.TypeCounts[eventType] = count
		stats.TotalEvents += count
		stats.TotalAlerts += alerts
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return EventStats{}, err
	}

	const dailyQuery = `
		SELECT DATE(created_at), COUNT(*)
		FROM events
		WHERE user_id = $1 AND created_at >= $2
		GROUP BY DATE(created_at)
	`
	weekAgo := time.Now().UTC().AddDate(0, 0, -7)
	rows, err = r.pool.Query(ctx, dailyQuery, userID, weekAgo)
	if err != nil {
		return EventStats{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var day time.Time
		var count int
		if err := rows.Scan(&day, &count); err != nil {
			return EventStats{}, err
		}
		stats.DailyCounts[day.Format("2006-01-02")] = count
	}
	return stats, rows.Err()
}

func (r *EventRepository) scanOne(row pgx.Row) (models.Event, error) {
	var event models.Event
	if err := row.Scan(
		&event.ID,
		&event.VideoID,
		&event.UserID,
		&event.EventType,
		&event.AnomalyScore,
		&event.Confidence,
		&event.TimestampSeconds,
		&event.FrameNumber,
		&event.Description,
		&event.IsAlert,
		&event.IsFalsePositive,
		&event.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Event{}, ErrEventNotFound
		}
		return models.Event{}, err
	}
	return event, nil
}

func (r *EventRepository) scanMany(rows pgx.Rows) ([]models.Event, error) {
	var events []models.Event
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(
			&event.ID,
			&event.VideoID,
			&event.UserID,
			&event.EventType,
			&event.AnomalyScore,
			&event.Confidence,
			&event.TimestampSeconds,
			&event.FrameNumber,
			&event.Description,
			&event.IsAlert,
			&event.IsFalsePositive,
			&event.CreatedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
