package scheduler

import "errors"

var (
	// ErrValidation is returned when an event's fields are rejected before
	// any store access.
	ErrValidation = errors.New("invalid event")

	// ErrConflict is returned when an event's interval overlaps an already
	// stored event.
	ErrConflict = errors.New("event overlaps an existing event")

	// ErrNotFound is returned when an operation targets an id that is not
	// in the store.
	ErrNotFound = errors.New("event not found")

	// ErrSchedulingExhausted is returned when the slot finder gives up after
	// its probe cap instead of searching forever.
	ErrSchedulingExhausted = errors.New("no free slot found")
)
