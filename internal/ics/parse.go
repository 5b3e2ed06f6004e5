package ics

import (
	"bytes"
	"errors"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/efeborasaglam/studyflow-thinknest/internal/logger"
	"github.com/efeborasaglam/studyflow-thinknest/internal/models"
	"github.com/efeborasaglam/studyflow-thinknest/internal/rrule"
)

const (
	// expandHorizon bounds how far into the future recurring VEVENTs are
	// materialized.
	expandHorizon = 180 * 24 * time.Hour

	// maxOccurrences caps expansion per recurring VEVENT.
	maxOccurrences = 100
)

// Parse turns an ICS payload into calendar events ready for import. Events
// without an end time get the default one-hour duration; recurring events
// are expanded into individual occurrences within a bounded horizon from
// now. Malformed VEVENTs are logged and skipped, the rest keep parsing.
func Parse(body []byte, now time.Time) ([]*models.Event, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var events []*models.Event
	for _, ve := range cal.Events() {
		parsed, err := parseVEvent(ve, now)
		if err != nil {
			logger.Error("skipping malformed VEVENT", err)
			continue
		}
		events = append(events, parsed...)
	}

	logger.Info("parsed ICS payload", "event_count", len(events))
	return events, nil
}

func parseVEvent(ve *ical.VEvent, now time.Time) ([]*models.Event, error) {
	title := "Untitled Event"
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil && p.Value != "" {
		title = p.Value
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return nil, err
	}

	end, err := ve.GetEndAt()
	if err != nil || !start.Before(end) {
		end = start.Add(models.DefaultEventDuration)
	}
	duration := end.Sub(start)

	base := &models.Event{
		Title: title,
		Start: start,
		End:   end,
	}

	ruleProp := ve.GetProperty(ical.ComponentPropertyRrule)
	if ruleProp == nil || ruleProp.Value == "" {
		return []*models.Event{base}, nil
	}

	occurrences, err := rrule.Occurrences(ruleProp.Value, start, now.Add(expandHorizon), maxOccurrences)
	if err != nil {
		return nil, err
	}

	events := make([]*models.Event, 0, len(occurrences))
	for _, occ := range occurrences {
		events = append(events, &models.Event{
			Title: title,
			Start: occ,
			End:   occ.Add(duration),
		})
	}
	return events, nil
}
