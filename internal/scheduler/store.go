package scheduler

import (
	"context"
	"time"

	"github.com/efeborasaglam/studyflow-thinknest/internal/models"
)

// EventStore is the persistence boundary of the scheduling engine. It is
// injected so tests can run against an in-memory implementation and
// production against Postgres.
type EventStore interface {
	// FindOverlapping returns the stored event with the earliest end time
	// among all events whose [start, end) interval overlaps the given one,
	// or nil when the interval is free. The event identified by excludeID
	// (if non-empty) is ignored.
	FindOverlapping(ctx context.Context, start, end time.Time, excludeID string) (*models.Event, error)

	// FindByRelation returns all study sessions generated for the given exam.
	FindByRelation(ctx context.Context, examID string) ([]*models.Event, error)

	// FindStartingBetween returns events with from <= start < to, ordered by
	// start time. Used by the reminder notifier.
	FindStartingBetween(ctx context.Context, from, to time.Time) ([]*models.Event, error)

	// GetByID returns the event or nil when no event has that id.
	GetByID(ctx context.Context, id string) (*models.Event, error)

	// List returns all events ordered by start time.
	List(ctx context.Context) ([]*models.Event, error)

	Insert(ctx context.Context, event *models.Event) error
	InsertMany(ctx context.Context, events []*models.Event) error
	Update(ctx context.Context, event *models.Event) error
	DeleteByID(ctx context.Context, id string) error

	// DeleteByRelation removes every study session owned by the given exam.
	DeleteByRelation(ctx context.Context, examID string) error
	DeleteAll(ctx context.Context) error
}
