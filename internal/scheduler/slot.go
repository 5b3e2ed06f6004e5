package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/efeborasaglam/studyflow-thinknest/internal/models"
)

// slotBuffer keeps a gap between a found conflict and the next proposed
// start so consecutive events are never flush against each other.
const slotBuffer = time.Minute

// findSlot returns the earliest interval of the given duration at or after
// desired that overlaps neither a stored event (excludeID aside) nor one of
// the pending, not-yet-persisted events.
//
// Each probe advances past the end of the earliest-ending conflict, so the
// search terminates against any finite store; the probe cap turns a
// pathological store into ErrSchedulingExhausted instead of a hang.
func (e *Engine) findSlot(ctx context.Context, desired time.Time, duration time.Duration, excludeID string, pending []*models.Event) (time.Time, time.Time, error) {
	start := desired
	end := start.Add(duration)

	for probe := 0; probe < e.cfg.MaxSlotProbes; probe++ {
		blocking, err := e.store.FindOverlapping(ctx, start, end, excludeID)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("find overlapping: %w", err)
		}
		for _, p := range pending {
			if p.Overlaps(start, end) && (blocking == nil || p.End.Before(blocking.End)) {
				blocking = p
			}
		}
		if blocking == nil {
			return start, end, nil
		}

		start = blocking.End.Add(slotBuffer)
		end = start.Add(duration)
	}

	return time.Time{}, time.Time{}, fmt.Errorf("%w: no %s slot within %d probes after %s",
		ErrSchedulingExhausted, duration, e.cfg.MaxSlotProbes, desired.Format(time.RFC3339))
}
