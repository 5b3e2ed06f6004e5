package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/efeborasaglam/studyflow-thinknest/internal/models"
	"github.com/efeborasaglam/studyflow-thinknest/internal/repository"
)

// day returns a clock time d days after a fixed reference Monday.
func day(d, hour, min int) time.Time {
	return time.Date(2026, 6, 15+d, hour, min, 0, 0, time.UTC)
}

func newEngine(t *testing.T, cfg Config) (*Engine, *repository.MemoryEventStore) {
	t.Helper()
	store := repository.NewMemoryEventStore()
	return New(store, cfg), store
}

func mustCreate(t *testing.T, e *Engine, in EventInput, plan PlanParams) *models.Event {
	t.Helper()
	event, err := e.CreateEvent(context.Background(), in, plan)
	if err != nil {
		t.Fatalf("CreateEvent(%+v): %v", in, err)
	}
	return event
}

func sessionsOf(t *testing.T, store *repository.MemoryEventStore, examID string) []*models.Event {
	t.Helper()
	sessions, err := store.FindByRelation(context.Background(), examID)
	if err != nil {
		t.Fatalf("FindByRelation(%s): %v", examID, err)
	}
	return sessions
}

// assertNoOverlaps checks the no-overlap invariant over every stored pair.
func assertNoOverlaps(t *testing.T, store *repository.MemoryEventStore) {
	t.Helper()
	events, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for i := 0; i < len(events); i++ {
		for j := i + 1; j < len(events); j++ {
			if events[i].Overlaps(events[j].Start, events[j].End) {
				t.Fatalf("overlap between %q [%s,%s) and %q [%s,%s)",
					events[i].Title, events[i].Start, events[i].End,
					events[j].Title, events[j].Start, events[j].End)
			}
		}
	}
}

func TestCreateEventDefaultsEndToOneHour(t *testing.T) {
	e, _ := newEngine(t, Config{})

	event := mustCreate(t, e, EventInput{Title: "Dentist", Start: day(0, 10, 0)}, PlanParams{})

	if want := day(0, 11, 0); !event.End.Equal(want) {
		t.Errorf("End = %s, want %s", event.End, want)
	}
}

func TestCreateEventValidation(t *testing.T) {
	e, store := newEngine(t, Config{})

	tests := []struct {
		name string
		in   EventInput
	}{
		{"missing start", EventInput{Title: "no start"}},
		{"end before start", EventInput{Title: "backwards", Start: day(0, 10, 0), End: day(0, 9, 0)}},
		{"end equals start", EventInput{Title: "empty", Start: day(0, 10, 0), End: day(0, 10, 0)}},
		{"importance too high", EventInput{Title: "exam", Start: day(0, 10, 0), IsExam: true, Importance: 101}},
		{"negative importance", EventInput{Title: "exam", Start: day(0, 10, 0), IsExam: true, Importance: -3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.CreateEvent(context.Background(), tt.in, PlanParams{})
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
		})
	}

	// Validation happens before any store access.
	events, _ := store.List(context.Background())
	if len(events) != 0 {
		t.Errorf("store has %d events after rejected input, want 0", len(events))
	}
}

func TestCreateEventRejectsOverlap(t *testing.T) {
	e, store := newEngine(t, Config{})
	mustCreate(t, e, EventInput{Title: "Lecture", Start: day(0, 10, 0), End: day(0, 11, 0)}, PlanParams{})

	overlapping := []EventInput{
		{Title: "inside", Start: day(0, 10, 15), End: day(0, 10, 45)},
		{Title: "straddles start", Start: day(0, 9, 30), End: day(0, 10, 30)},
		{Title: "straddles end", Start: day(0, 10, 30), End: day(0, 11, 30)},
		{Title: "covers", Start: day(0, 9, 0), End: day(0, 12, 0)},
		{Title: "identical", Start: day(0, 10, 0), End: day(0, 11, 0)},
	}
	for _, in := range overlapping {
		if _, err := e.CreateEvent(context.Background(), in, PlanParams{}); !errors.Is(err, ErrConflict) {
			t.Errorf("%s: err = %v, want ErrConflict", in.Title, err)
		}
	}

	// Rejected creates must not leave partial writes.
	events, _ := store.List(context.Background())
	if len(events) != 1 {
		t.Fatalf("store has %d events, want 1", len(events))
	}
}

func TestBackToBackEventsAllowed(t *testing.T) {
	e, _ := newEngine(t, Config{})
	mustCreate(t, e, EventInput{Title: "first", Start: day(0, 10, 0), End: day(0, 11, 0)}, PlanParams{})

	// Touching endpoints do not conflict under half-open intervals.
	mustCreate(t, e, EventInput{Title: "second", Start: day(0, 11, 0), End: day(0, 12, 0)}, PlanParams{})
	mustCreate(t, e, EventInput{Title: "before", Start: day(0, 9, 0), End: day(0, 10, 0)}, PlanParams{})
}

func TestCreateExamEndToEnd(t *testing.T) {
	// Midterm on day D 10:00-11:00, importance 10, 6 lead days, 30 minute
	// sessions, empty store. Importance 10 means a study day every 3 days:
	// offsets 0 and 3, one 30-minute session each.
	e, store := newEngine(t, Config{})

	exam := mustCreate(t, e, EventInput{
		Title:      "Midterm",
		Start:      day(0, 10, 0),
		End:        day(0, 11, 0),
		IsExam:     true,
		Importance: 10,
	}, PlanParams{LeadDays: 6, SessionDuration: 30 * time.Minute})

	sessions := sessionsOf(t, store, exam.ID)
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions))
	}

	wantStarts := []time.Time{day(-3, 6, 0), day(0, 6, 0)} // sorted by start
	for i, s := range sessions {
		if !s.Start.Equal(wantStarts[i]) {
			t.Errorf("session %d start = %s, want %s", i, s.Start, wantStarts[i])
		}
		if got := s.End.Sub(s.Start); got != 30*time.Minute {
			t.Errorf("session %d duration = %s, want 30m", i, got)
		}
		if s.RelatedExamID != exam.ID {
			t.Errorf("session %d RelatedExamID = %q, want %q", i, s.RelatedExamID, exam.ID)
		}
		if s.Title != "Study for Midterm" {
			t.Errorf("session %d title = %q", i, s.Title)
		}
		if s.IsExam {
			t.Errorf("session %d is flagged as exam", i)
		}
	}

	assertNoOverlaps(t, store)
}

func TestCreateExamHighImportanceDailySessions(t *testing.T) {
	// Importance 80 studies daily; lead 3 gives offsets {0,1,2}. Default
	// one hour sessions place two per day.
	e, store := newEngine(t, Config{})

	exam := mustCreate(t, e, EventInput{
		Title:      "Final",
		Start:      day(0, 14, 0),
		End:        day(0, 16, 0),
		IsExam:     true,
		Importance: 80,
	}, PlanParams{LeadDays: 3})

	sessions := sessionsOf(t, store, exam.ID)
	if len(sessions) != 6 {
		t.Fatalf("got %d sessions, want 6 (3 days x 2)", len(sessions))
	}

	days := map[string]int{}
	for _, s := range sessions {
		days[s.Start.Format("2006-01-02")]++
	}
	for _, offset := range []int{0, -1, -2} {
		key := day(offset, 0, 0).Format("2006-01-02")
		if days[key] != 2 {
			t.Errorf("day %s has %d sessions, want 2", key, days[key])
		}
	}

	assertNoOverlaps(t, store)
}

func TestCreateExamShortSessionsFourPerDay(t *testing.T) {
	e, store := newEngine(t, Config{})

	exam := mustCreate(t, e, EventInput{
		Title:      "Quiz",
		Start:      day(0, 15, 0),
		End:        day(0, 16, 0),
		IsExam:     true,
		Importance: 80,
	}, PlanParams{LeadDays: 1, SessionDuration: 20 * time.Minute})

	sessions := sessionsOf(t, store, exam.ID)
	if len(sessions) != 4 {
		t.Fatalf("got %d sessions, want 4", len(sessions))
	}

	// Empty store: the requested uniform grid from the day start survives.
	for i, s := range sessions {
		want := day(0, 6, 0).Add(time.Duration(i) * 20 * time.Minute)
		if !s.Start.Equal(want) {
			t.Errorf("session %d start = %s, want %s", i, s.Start, want)
		}
	}
}

func TestCreateExamConflictLeavesNothingBehind(t *testing.T) {
	e, store := newEngine(t, Config{})
	mustCreate(t, e, EventInput{Title: "Lecture", Start: day(0, 10, 0), End: day(0, 12, 0)}, PlanParams{})

	_, err := e.CreateEvent(context.Background(), EventInput{
		Title:      "Clashing exam",
		Start:      day(0, 11, 0),
		End:        day(0, 13, 0),
		IsExam:     true,
		Importance: 80,
	}, PlanParams{LeadDays: 3})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}

	events, _ := store.List(context.Background())
	if len(events) != 1 {
		t.Fatalf("store has %d events, want only the lecture", len(events))
	}
}

func TestCreateExamPlanFailureRollsBackExam(t *testing.T) {
	// A probe cap of 1 makes the first blocked slot search fail, which must
	// roll the already inserted exam back out of the store.
	e, store := newEngine(t, Config{MaxSlotProbes: 1})
	blocker := mustCreate(t, e, EventInput{Title: "Breakfast", Start: day(0, 6, 0), End: day(0, 7, 0)}, PlanParams{})

	_, err := e.CreateEvent(context.Background(), EventInput{
		Title:      "Doomed exam",
		Start:      day(0, 10, 0),
		End:        day(0, 11, 0),
		IsExam:     true,
		Importance: 80,
	}, PlanParams{LeadDays: 1})
	if !errors.Is(err, ErrSchedulingExhausted) {
		t.Fatalf("err = %v, want ErrSchedulingExhausted", err)
	}

	events, _ := store.List(context.Background())
	if len(events) != 1 || events[0].ID != blocker.ID {
		t.Fatalf("store should hold only the blocker, got %d events", len(events))
	}
}

func TestUpdateEventNotFound(t *testing.T) {
	e, _ := newEngine(t, Config{})
	_, err := e.UpdateEvent(context.Background(), "missing", EventInput{Title: "x", Start: day(0, 10, 0)}, PlanParams{})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateEventExcludesSelfFromConflictCheck(t *testing.T) {
	e, _ := newEngine(t, Config{})
	event := mustCreate(t, e, EventInput{Title: "Gym", Start: day(0, 10, 0), End: day(0, 11, 0)}, PlanParams{})

	// Shifting within its own old interval must not conflict with itself.
	updated, err := e.UpdateEvent(context.Background(), event.ID, EventInput{
		Title: "Gym",
		Start: day(0, 10, 30),
		End:   day(0, 11, 30),
	}, PlanParams{})
	if err != nil {
		t.Fatalf("UpdateEvent: %v", err)
	}
	if !updated.Start.Equal(day(0, 10, 30)) {
		t.Errorf("Start = %s, want %s", updated.Start, day(0, 10, 30))
	}
}

func TestUpdateExamRegeneratesPlan(t *testing.T) {
	e, store := newEngine(t, Config{})

	exam := mustCreate(t, e, EventInput{
		Title:      "History",
		Start:      day(0, 14, 0),
		End:        day(0, 15, 0),
		IsExam:     true,
		Importance: 80,
	}, PlanParams{LeadDays: 3})

	before := sessionsOf(t, store, exam.ID)
	if len(before) != 6 {
		t.Fatalf("initial plan has %d sessions, want 6", len(before))
	}
	oldIDs := map[string]bool{}
	for _, s := range before {
		oldIDs[s.ID] = true
	}

	// Dropping importance to 10 spaces study days three apart: offsets
	// {0,3} over 6 lead days, two hour-long sessions each.
	if _, err := e.UpdateEvent(context.Background(), exam.ID, EventInput{
		Title:      "History",
		Start:      day(0, 14, 0),
		End:        day(0, 15, 0),
		IsExam:     true,
		Importance: 10,
	}, PlanParams{LeadDays: 6}); err != nil {
		t.Fatalf("UpdateEvent: %v", err)
	}

	after := sessionsOf(t, store, exam.ID)
	if len(after) != 4 {
		t.Fatalf("regenerated plan has %d sessions, want 4", len(after))
	}
	for _, s := range after {
		if oldIDs[s.ID] {
			t.Errorf("session %s survived regeneration", s.ID)
		}
	}

	days := map[string]bool{}
	for _, s := range after {
		days[s.Start.Format("2006-01-02")] = true
	}
	for _, offset := range []int{0, -3} {
		if key := day(offset, 0, 0).Format("2006-01-02"); !days[key] {
			t.Errorf("no sessions on expected study day %s", key)
		}
	}

	assertNoOverlaps(t, store)
}

func TestUpdateExamToPlainEventDropsSessions(t *testing.T) {
	e, store := newEngine(t, Config{})

	exam := mustCreate(t, e, EventInput{
		Title:      "Oral exam",
		Start:      day(0, 9, 0),
		End:        day(0, 10, 0),
		IsExam:     true,
		Importance: 80,
	}, PlanParams{LeadDays: 2})

	if n := len(sessionsOf(t, store, exam.ID)); n == 0 {
		t.Fatal("expected generated sessions before the update")
	}

	if _, err := e.UpdateEvent(context.Background(), exam.ID, EventInput{
		Title: "Oral exam (cancelled)",
		Start: day(0, 9, 0),
		End:   day(0, 10, 0),
	}, PlanParams{}); err != nil {
		t.Fatalf("UpdateEvent: %v", err)
	}

	if n := len(sessionsOf(t, store, exam.ID)); n != 0 {
		t.Fatalf("%d sessions remain after demoting the exam, want 0", n)
	}
}

func TestDeleteExamCascades(t *testing.T) {
	// 45 minute sessions fall in the medium bucket (one per day); five lead
	// days at importance 80 give exactly five sessions.
	e, store := newEngine(t, Config{})

	exam := mustCreate(t, e, EventInput{
		Title:      "Physics",
		Start:      day(0, 13, 0),
		End:        day(0, 14, 0),
		IsExam:     true,
		Importance: 80,
	}, PlanParams{LeadDays: 5, SessionDuration: 45 * time.Minute})

	if n := len(sessionsOf(t, store, exam.ID)); n != 5 {
		t.Fatalf("plan has %d sessions, want 5", n)
	}

	if err := e.DeleteEvent(context.Background(), exam.ID); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}

	if got, _ := store.GetByID(context.Background(), exam.ID); got != nil {
		t.Error("exam still present after delete")
	}
	if n := len(sessionsOf(t, store, exam.ID)); n != 0 {
		t.Errorf("%d sessions remain after deleting the exam, want 0", n)
	}
	events, _ := store.List(context.Background())
	if len(events) != 0 {
		t.Errorf("store has %d events, want 0", len(events))
	}
}

func TestDeleteEventNotFound(t *testing.T) {
	e, _ := newEngine(t, Config{})
	if err := e.DeleteEvent(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDeletePlainEventKeepsOthers(t *testing.T) {
	e, store := newEngine(t, Config{})
	keep := mustCreate(t, e, EventInput{Title: "keep", Start: day(0, 8, 0), End: day(0, 9, 0)}, PlanParams{})
	drop := mustCreate(t, e, EventInput{Title: "drop", Start: day(0, 9, 0), End: day(0, 10, 0)}, PlanParams{})

	if err := e.DeleteEvent(context.Background(), drop.ID); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
	events, _ := store.List(context.Background())
	if len(events) != 1 || events[0].ID != keep.ID {
		t.Fatalf("unexpected store contents after delete: %d events", len(events))
	}
}

func TestToggleCompleted(t *testing.T) {
	e, _ := newEngine(t, Config{})
	event := mustCreate(t, e, EventInput{Title: "Homework", Start: day(0, 16, 0)}, PlanParams{})

	toggled, err := e.ToggleCompleted(context.Background(), event.ID)
	if err != nil {
		t.Fatalf("ToggleCompleted: %v", err)
	}
	if !toggled.IsCompleted {
		t.Error("IsCompleted = false after first toggle")
	}

	toggled, err = e.ToggleCompleted(context.Background(), event.ID)
	if err != nil {
		t.Fatalf("ToggleCompleted: %v", err)
	}
	if toggled.IsCompleted {
		t.Error("IsCompleted = true after second toggle")
	}
}

func TestImportEventsSkipsConflicts(t *testing.T) {
	e, store := newEngine(t, Config{})
	mustCreate(t, e, EventInput{Title: "Standing meeting", Start: day(0, 10, 0), End: day(0, 11, 0)}, PlanParams{})

	batch := []*models.Event{
		{Title: "clean", Start: day(0, 12, 0), End: day(0, 13, 0)},
		{Title: "clashes with store", Start: day(0, 10, 30), End: day(0, 11, 30)},
		{Title: "clashes with batch", Start: day(0, 12, 30), End: day(0, 13, 30)},
		{Title: "no end", Start: day(0, 14, 0)},
	}

	inserted, skipped, err := e.ImportEvents(context.Background(), batch)
	if err != nil {
		t.Fatalf("ImportEvents: %v", err)
	}
	if inserted != 2 || skipped != 2 {
		t.Fatalf("inserted=%d skipped=%d, want 2/2", inserted, skipped)
	}

	assertNoOverlaps(t, store)

	events, _ := store.List(context.Background())
	if len(events) != 3 {
		t.Fatalf("store has %d events, want 3", len(events))
	}
}

func TestNoOverlapInvariantAcrossOperations(t *testing.T) {
	e, store := newEngine(t, Config{})
	ctx := context.Background()

	mustCreate(t, e, EventInput{Title: "class", Start: day(0, 8, 0), End: day(0, 9, 0)}, PlanParams{})
	exam := mustCreate(t, e, EventInput{
		Title: "exam", Start: day(0, 12, 0), End: day(0, 13, 0),
		IsExam: true, Importance: 60,
	}, PlanParams{LeadDays: 2})
	assertNoOverlaps(t, store)

	if _, err := e.UpdateEvent(ctx, exam.ID, EventInput{
		Title: "exam", Start: day(0, 12, 0), End: day(0, 13, 0),
		IsExam: true, Importance: 30,
	}, PlanParams{LeadDays: 4}); err != nil {
		t.Fatalf("UpdateEvent: %v", err)
	}
	assertNoOverlaps(t, store)

	if err := e.DeleteEvent(ctx, exam.ID); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
	assertNoOverlaps(t, store)
}
