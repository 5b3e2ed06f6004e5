package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/efeborasaglam/studyflow-thinknest/internal/models"
)

// MemoryEventStore is a mutex-guarded in-memory scheduler.EventStore. It
// backs the server when no DATABASE_URI is configured and the engine tests.
type MemoryEventStore struct {
	mu     sync.RWMutex
	events map[string]*models.Event
}

func NewMemoryEventStore() *MemoryEventStore {
	return &MemoryEventStore{events: make(map[string]*models.Event)}
}

func (s *MemoryEventStore) FindOverlapping(ctx context.Context, start, end time.Time, excludeID string) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var earliest *models.Event
	for _, ev := range s.events {
		if excludeID != "" && ev.ID == excludeID {
			continue
		}
		if !ev.Overlaps(start, end) {
			continue
		}
		if earliest == nil || ev.End.Before(earliest.End) {
			earliest = ev
		}
	}
	if earliest == nil {
		return nil, nil
	}
	return copyEvent(earliest), nil
}

func (s *MemoryEventStore) FindByRelation(ctx context.Context, examID string) ([]*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Event
	for _, ev := range s.events {
		if ev.RelatedExamID == examID {
			out = append(out, copyEvent(ev))
		}
	}
	sortByStart(out)
	return out, nil
}

func (s *MemoryEventStore) FindStartingBetween(ctx context.Context, from, to time.Time) ([]*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Event
	for _, ev := range s.events {
		if !ev.Start.Before(from) && ev.Start.Before(to) {
			out = append(out, copyEvent(ev))
		}
	}
	sortByStart(out)
	return out, nil
}

func (s *MemoryEventStore) GetByID(ctx context.Context, id string) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ev, ok := s.events[id]
	if !ok {
		return nil, nil
	}
	return copyEvent(ev), nil
}

func (s *MemoryEventStore) List(ctx context.Context) ([]*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Event, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, copyEvent(ev))
	}
	sortByStart(out)
	return out, nil
}

func (s *MemoryEventStore) Insert(ctx context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertLocked(event)
	return nil
}

func (s *MemoryEventStore) InsertMany(ctx context.Context, events []*models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ev := range events {
		s.insertLocked(ev)
	}
	return nil
}

func (s *MemoryEventStore) insertLocked(event *models.Event) {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	s.events[event.ID] = copyEvent(event)
}

func (s *MemoryEventStore) Update(ctx context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[event.ID]; !ok {
		return nil
	}
	s.events[event.ID] = copyEvent(event)
	return nil
}

func (s *MemoryEventStore) DeleteByID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.events, id)
	return nil
}

func (s *MemoryEventStore) DeleteByRelation(ctx context.Context, examID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ev := range s.events {
		if ev.RelatedExamID == examID {
			delete(s.events, id)
		}
	}
	return nil
}

func (s *MemoryEventStore) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[string]*models.Event)
	return nil
}

func copyEvent(ev *models.Event) *models.Event {
	c := *ev
	return &c
}

func sortByStart(events []*models.Event) {
	sort.Slice(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
}
