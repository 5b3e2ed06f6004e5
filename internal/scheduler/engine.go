package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/efeborasaglam/studyflow-thinknest/internal/models"
)

const (
	defaultDayStartHour         = 6
	defaultMediumSessionsPerDay = 1
	defaultSessionColor         = "blue"
	defaultMaxSlotProbes        = 1000

	defaultLeadDays        = 7
	defaultSessionDuration = time.Hour
	defaultImportance      = 50
)

// Config holds the scheduling policy knobs. The zero value is usable; every
// field falls back to its default.
type Config struct {
	// DayStartHour is the local hour at which study sessions may begin on a
	// study day.
	DayStartHour int

	// MediumSessionsPerDay is the session count for durations in the
	// [30min, 60min) bucket. Fixed rather than randomized so plans are
	// reproducible.
	MediumSessionsPerDay int

	// SessionColor is the display color given to generated study sessions
	// when the caller does not pick one.
	SessionColor string

	// MaxSlotProbes caps the slot finder's forward search.
	MaxSlotProbes int
}

func (c Config) withDefaults() Config {
	if c.DayStartHour <= 0 || c.DayStartHour > 23 {
		c.DayStartHour = defaultDayStartHour
	}
	if c.MediumSessionsPerDay <= 0 {
		c.MediumSessionsPerDay = defaultMediumSessionsPerDay
	}
	if c.SessionColor == "" {
		c.SessionColor = defaultSessionColor
	}
	if c.MaxSlotProbes <= 0 {
		c.MaxSlotProbes = defaultMaxSlotProbes
	}
	return c
}

// Engine implements the calendar operations: conflict-checked event writes,
// study plan generation for exams and the cascade rules that keep generated
// sessions in sync with their exam.
//
// All mutating operations are serialized through one mutex so that two
// writers can never both pass the conflict check for overlapping intervals
// and both commit.
type Engine struct {
	store EventStore
	cfg   Config

	mu sync.Mutex
}

func New(store EventStore, cfg Config) *Engine {
	return &Engine{
		store: store,
		cfg:   cfg.withDefaults(),
	}
}

// EventInput carries the caller-settable fields of an event. RelatedExamID
// is deliberately absent: study sessions are created only by the engine.
type EventInput struct {
	Title       string
	Start       time.Time
	End         time.Time // zero value defaults to Start + 1 hour
	Color       string
	IsCompleted bool
	IsExam      bool
	Importance  int // zero value defaults to 50
}

// PlanParams carries the study plan parameters supplied alongside an exam.
type PlanParams struct {
	// LeadDays is the number of days before the exam across which sessions
	// are spread. Zero value defaults to 7.
	LeadDays int

	// SessionDuration is the length of one study session. Zero value
	// defaults to one hour.
	SessionDuration time.Duration

	// SessionColor overrides the engine's configured session color.
	SessionColor string
}

// CreateEvent validates and persists a new event. If the event is an exam,
// the full study plan is generated and persisted with it; a plan failure
// rolls the exam back so no half-planned exam is left behind.
func (e *Engine) CreateEvent(ctx context.Context, in EventInput, plan PlanParams) (*models.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	event, err := buildEvent(in)
	if err != nil {
		return nil, err
	}

	busy, err := e.conflicts(ctx, event.Start, event.End, "")
	if err != nil {
		return nil, err
	}
	if busy {
		return nil, fmt.Errorf("%w: %s to %s is taken",
			ErrConflict, event.Start.Format(time.RFC3339), event.End.Format(time.RFC3339))
	}

	event.ID = uuid.NewString()
	if err := e.store.Insert(ctx, event); err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}

	if event.IsExam {
		if err := e.regeneratePlan(ctx, event, plan); err != nil {
			if delErr := e.store.DeleteByID(ctx, event.ID); delErr != nil {
				return nil, errors.Join(err, fmt.Errorf("rollback exam: %w", delErr))
			}
			return nil, err
		}
	}

	return event, nil
}

// UpdateEvent replaces the fields of an existing event. Any study sessions
// generated for the old version are removed first; if the updated event is
// still (or newly) an exam, a fresh plan is generated from the new
// parameters. An update that turns an exam into a plain event leaves it with
// no sessions.
func (e *Engine) UpdateEvent(ctx context.Context, id string, in EventInput, plan PlanParams) (*models.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	existing, err := e.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if existing == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	event, err := buildEvent(in)
	if err != nil {
		return nil, err
	}
	event.ID = existing.ID
	event.CreatedAt = existing.CreatedAt

	busy, err := e.conflicts(ctx, event.Start, event.End, id)
	if err != nil {
		return nil, err
	}
	if busy {
		return nil, fmt.Errorf("%w: %s to %s is taken",
			ErrConflict, event.Start.Format(time.RFC3339), event.End.Format(time.RFC3339))
	}

	// The old plan is superseded regardless of whether the update keeps the
	// event an exam.
	if err := e.store.DeleteByRelation(ctx, id); err != nil {
		return nil, fmt.Errorf("delete stale sessions: %w", err)
	}

	if err := e.store.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}

	if event.IsExam {
		if err := e.regeneratePlan(ctx, event, plan); err != nil {
			return nil, err
		}
	}

	return event, nil
}

// DeleteEvent removes an event; an exam takes its generated sessions with it.
func (e *Engine) DeleteEvent(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	existing, err := e.store.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get event: %w", err)
	}
	if existing == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if existing.IsExam {
		if err := e.store.DeleteByRelation(ctx, id); err != nil {
			return fmt.Errorf("delete sessions: %w", err)
		}
	}
	if err := e.store.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// ToggleCompleted flips an event's completion flag. Completion has no
// scheduling effect, so no conflict check or cascade runs.
func (e *Engine) ToggleCompleted(ctx context.Context, id string) (*models.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	event, err := e.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	event.IsCompleted = !event.IsCompleted
	if err := e.store.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

// ListEvents returns every stored event ordered by start time.
func (e *Engine) ListEvents(ctx context.Context) ([]*models.Event, error) {
	events, err := e.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// DeleteAllEvents clears the calendar.
func (e *Engine) DeleteAllEvents(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.store.DeleteAll(ctx); err != nil {
		return fmt.Errorf("delete all events: %w", err)
	}
	return nil
}

// ImportEvents persists a batch of externally sourced events (e.g. an ICS
// upload). Each event is conflict-checked against the store and against the
// already accepted part of the batch; overlapping entries are skipped rather
// than inserted, preserving the no-overlap invariant. Returns the inserted
// and skipped counts.
func (e *Engine) ImportEvents(ctx context.Context, events []*models.Event) (inserted, skipped int, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	accepted := make([]*models.Event, 0, len(events))
	for _, in := range events {
		event, err := buildEvent(EventInput{
			Title:       in.Title,
			Start:       in.Start,
			End:         in.End,
			Color:       in.Color,
			IsCompleted: in.IsCompleted,
		})
		if err != nil {
			skipped++
			continue
		}

		busy, err := e.conflicts(ctx, event.Start, event.End, "")
		if err != nil {
			return inserted, skipped, err
		}
		if !busy {
			for _, a := range accepted {
				if a.Overlaps(event.Start, event.End) {
					busy = true
					break
				}
			}
		}
		if busy {
			skipped++
			continue
		}

		event.ID = uuid.NewString()
		accepted = append(accepted, event)
		inserted++
	}

	if len(accepted) > 0 {
		if err := e.store.InsertMany(ctx, accepted); err != nil {
			return 0, skipped, fmt.Errorf("insert imported events: %w", err)
		}
	}
	return inserted, skipped, nil
}

// regeneratePlan builds the full study plan for an exam and persists it in
// one batch. Nothing is written unless every session found a slot.
func (e *Engine) regeneratePlan(ctx context.Context, exam *models.Event, plan PlanParams) error {
	sessions, err := e.buildStudyPlan(ctx, exam, plan)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		return nil
	}
	if err := e.store.InsertMany(ctx, sessions); err != nil {
		return fmt.Errorf("insert study sessions: %w", err)
	}
	return nil
}

// buildEvent validates the input and applies field defaults. It runs before
// any store access.
func buildEvent(in EventInput) (*models.Event, error) {
	if in.Start.IsZero() {
		return nil, fmt.Errorf("%w: start is required", ErrValidation)
	}

	end := in.End
	if end.IsZero() {
		end = in.Start.Add(models.DefaultEventDuration)
	}
	if !in.Start.Before(end) {
		return nil, fmt.Errorf("%w: start must be before end", ErrValidation)
	}

	importance := in.Importance
	if importance == 0 {
		importance = defaultImportance
	}
	if in.IsExam && (importance < 1 || importance > 100) {
		return nil, fmt.Errorf("%w: importance must be in [1,100], got %d", ErrValidation, in.Importance)
	}

	color := in.Color
	if color == "" {
		color = defaultSessionColor
	}

	return &models.Event{
		Title:       in.Title,
		Start:       in.Start,
		End:         end,
		Color:       color,
		IsCompleted: in.IsCompleted,
		IsExam:      in.IsExam,
		Importance:  importance,
	}, nil
}
