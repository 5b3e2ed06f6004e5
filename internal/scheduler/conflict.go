package scheduler

import (
	"context"
	"fmt"
	"time"
)

// conflicts reports whether any stored event other than excludeID overlaps
// the half-open interval [start, end). Touching endpoints do not conflict,
// so back-to-back events are allowed. Read-only.
func (e *Engine) conflicts(ctx context.Context, start, end time.Time, excludeID string) (bool, error) {
	event, err := e.store.FindOverlapping(ctx, start, end, excludeID)
	if err != nil {
		return false, fmt.Errorf("find overlapping: %w", err)
	}
	return event != nil, nil
}
