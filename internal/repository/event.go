package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/efeborasaglam/studyflow-thinknest/internal/database"
	"github.com/efeborasaglam/studyflow-thinknest/internal/models"
)

const eventColumns = `id, title, start_time, end_time, color, is_completed,
	 is_exam, importance, related_exam_id, created_at`

// EventRepository is the Postgres-backed scheduler.EventStore.
type EventRepository struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) FindOverlapping(ctx context.Context, start, end time.Time, excludeID string) (*models.Event, error) {
	event := &models.Event{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT `+eventColumns+`
		 FROM event
		 WHERE start_time < $2 AND end_time > $1
		 AND ($3 = '' OR id <> $3)
		 ORDER BY end_time ASC
		 LIMIT 1`,
		start, end, excludeID,
	).Scan(&event.ID, &event.Title, &event.Start, &event.End, &event.Color,
		&event.IsCompleted, &event.IsExam, &event.Importance, &event.RelatedExamID,
		&event.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (r *EventRepository) FindByRelation(ctx context.Context, examID string) ([]*models.Event, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+eventColumns+`
		 FROM event WHERE related_exam_id = $1
		 ORDER BY start_time ASC`,
		examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (r *EventRepository) FindStartingBetween(ctx context.Context, from, to time.Time) ([]*models.Event, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+eventColumns+`
		 FROM event WHERE start_time >= $1 AND start_time < $2
		 ORDER BY start_time ASC`,
		from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	event := &models.Event{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT `+eventColumns+`
		 FROM event WHERE id = $1`,
		id,
	).Scan(&event.ID, &event.Title, &event.Start, &event.End, &event.Color,
		&event.IsCompleted, &event.IsExam, &event.Importance, &event.RelatedExamID,
		&event.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (r *EventRepository) List(ctx context.Context) ([]*models.Event, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+eventColumns+`
		 FROM event ORDER BY start_time ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (r *EventRepository) Insert(ctx context.Context, event *models.Event) error {
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO event (id, title, start_time, end_time, color, is_completed,
		 is_exam, importance, related_exam_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at`,
		event.ID, event.Title, event.Start, event.End, event.Color,
		event.IsCompleted, event.IsExam, event.Importance, event.RelatedExamID,
	).Scan(&event.CreatedAt)
}

func (r *EventRepository) InsertMany(ctx context.Context, events []*models.Event) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, event := range events {
		if err := tx.QueryRow(ctx,
			`INSERT INTO event (id, title, start_time, end_time, color, is_completed,
			 is_exam, importance, related_exam_id)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 RETURNING created_at`,
			event.ID, event.Title, event.Start, event.End, event.Color,
			event.IsCompleted, event.IsExam, event.Importance, event.RelatedExamID,
		).Scan(&event.CreatedAt); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE event SET title = $1, start_time = $2, end_time = $3, color = $4,
		 is_completed = $5, is_exam = $6, importance = $7, related_exam_id = $8
		 WHERE id = $9`,
		event.Title, event.Start, event.End, event.Color, event.IsCompleted,
		event.IsExam, event.Importance, event.RelatedExamID, event.ID,
	)
	return err
}

func (r *EventRepository) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM event WHERE id = $1`, id)
	return err
}

func (r *EventRepository) DeleteByRelation(ctx context.Context, examID string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM event WHERE related_exam_id = $1`, examID)
	return err
}

func (r *EventRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM event`)
	return err
}

func scanEvents(rows pgx.Rows) ([]*models.Event, error) {
	var events []*models.Event
	for rows.Next() {
		event := &models.Event{}
		if err := rows.Scan(&event.ID, &event.Title, &event.Start, &event.End,
			&event.Color, &event.IsCompleted, &event.IsExam, &event.Importance,
			&event.RelatedExamID, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
