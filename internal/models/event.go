package models

import "time"

// DefaultEventDuration is applied when a caller omits the end time.
const DefaultEventDuration = time.Hour

type Event struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	Color         string    `json:"backgroundColor"` // display only
	IsCompleted   bool      `json:"isCompleted"`
	IsExam        bool      `json:"isExam"`
	Importance    int       `json:"importance"` // 1..100, only meaningful for exams
	RelatedExamID string    `json:"relatedExamId,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// IsStudySession returns true if this event was generated for an exam.
func (e *Event) IsStudySession() bool {
	return e.RelatedExamID != ""
}

// Overlaps reports whether the event's [start, end) interval overlaps the
// given one. Touching endpoints do not overlap, so back-to-back events are
// allowed.
func (e *Event) Overlaps(start, end time.Time) bool {
	return e.Start.Before(end) && start.Before(e.End)
}
