package engine

import "errors"

var (
	// ErrEventNotFound is returned when the event does not exist.
	ErrEventNotFound = errors.New("event not found")

	// ErrInvalidConstraints is returned when constraints fail validation.
	ErrInvalidConstraints = errors.New("invalid constraints")

	// ErrArrangementInProgress is returned when another run or manual move
	// holds the event and the lock policy rejects waiting.
	ErrArrangementInProgress = errors.New("arrangement already in progress")

	// ErrRunFailed is returned alongside a failed Result when a data-access
	// fault stopped the run.
	ErrRunFailed = errors.New("arrangement run failed")

	// ErrGuestNotFound is returned when a guest does not belong to the event.
	ErrGuestNotFound = errors.New("guest not found")

	// ErrTableNotFound is returned when a table does not belong to the event.
	ErrTableNotFound = errors.New("table not found")

	// ErrTableFull is returned when a manual assignment would exceed capacity.
	ErrTableFull = errors.New("table is full")
)
