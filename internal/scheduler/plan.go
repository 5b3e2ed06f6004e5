package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/efeborasaglam/studyflow-thinknest/internal/models"
)

// studyInterval maps an exam's importance to the spacing in days between
// study days. Low importance means sparser reinforcement: <=20 every third
// day, <=50 every second day, otherwise daily.
func studyInterval(importance int) int {
	switch {
	case importance <= 20:
		return 3
	case importance <= 50:
		return 2
	default:
		return 1
	}
}

// sessionsPerDay maps the session duration to the number of sessions placed
// on each study day. The middle bucket is a fixed configured count so the
// same inputs always produce the same plan.
func (e *Engine) sessionsPerDay(duration time.Duration) int {
	switch {
	case duration < 30*time.Minute:
		return 4
	case duration < time.Hour:
		return e.cfg.MediumSessionsPerDay
	default:
		return 2
	}
}

// buildStudyPlan computes the full set of study sessions for an exam without
// persisting anything. Candidate days are exam day minus 0, interval,
// 2*interval, ... while under LeadDays, so the sessions closest to the exam
// are generated first. On each day the requested starts form a uniform grid
// from DayStartHour; actual placement may be pushed later by conflicts.
func (e *Engine) buildStudyPlan(ctx context.Context, exam *models.Event, p PlanParams) ([]*models.Event, error) {
	leadDays := p.LeadDays
	if leadDays <= 0 {
		leadDays = defaultLeadDays
	}
	duration := p.SessionDuration
	if duration <= 0 {
		duration = defaultSessionDuration
	}
	color := p.SessionColor
	if color == "" {
		color = e.cfg.SessionColor
	}

	interval := studyInterval(exam.Importance)
	perDay := e.sessionsPerDay(duration)

	var sessions []*models.Event
	for i := 0; i < leadDays; i += interval {
		day := exam.Start.AddDate(0, 0, -i)
		cursor := time.Date(day.Year(), day.Month(), day.Day(),
			e.cfg.DayStartHour, 0, 0, 0, day.Location())

		for j := 0; j < perDay; j++ {
			// The exam's own interval never blocks its sessions, and the
			// pending ones keep the plan internally overlap-free before it
			// is persisted.
			start, end, err := e.findSlot(ctx, cursor, duration, exam.ID, sessions)
			if err != nil {
				return nil, err
			}

			// A conflict chain can push the slot past midnight into the
			// small hours of the next day; pull it back to the day start
			// boundary and resolve again.
			if start.Hour() < e.cfg.DayStartHour {
				clamped := time.Date(start.Year(), start.Month(), start.Day(),
					e.cfg.DayStartHour, 0, 0, 0, start.Location())
				start, end, err = e.findSlot(ctx, clamped, duration, exam.ID, sessions)
				if err != nil {
					return nil, err
				}
			}

			sessions = append(sessions, &models.Event{
				ID:            uuid.NewString(),
				Title:         "Study for " + exam.Title,
				Start:         start,
				End:           end,
				Color:         color,
				RelatedExamID: exam.ID,
			})

			// Advance by the requested duration, not the resolved end, to
			// keep requesting a uniform grid.
			cursor = cursor.Add(duration)
		}
	}
	return sessions, nil
}
