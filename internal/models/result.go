package models

// RunState is a step of the arrangement run state machine.
type RunState int

const (
	RunIdle RunState = iota
	RunGrouping
	RunAllocating
	RunSynchronizing
	RunScoring
	RunComplete
	RunFailed
)

func (s RunState) String() string {
	switch s {
	case RunIdle:
		return "idle"
	case RunGrouping:
		return "grouping"
	case RunAllocating:
		return "allocating"
	case RunSynchronizing:
		return "synchronizing"
	case RunScoring:
		return "scoring"
	case RunComplete:
		return "complete"
	case RunFailed:
		return "failed"
	}
	return "unknown"
}

// MarshalText renders the state by name.
func (s RunState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether no further transition is possible.
func (s RunState) Terminal() bool {
	return s == RunComplete || s == RunFailed
}

// TableAssignment is one table's membership in a result snapshot.
type TableAssignment struct {
	TableID   string
	TableName string
	GuestIDs  []string
}

// Result represents the outcome of one arrangement run.
type Result struct {
	// Success is true when the run reached RunComplete.
	// A successful run may still carry conflicts.
	Success bool

	// Message summarizes the run for humans.
	Message string

	// State is the terminal state of the run.
	State RunState

	// ArrangedGuests counts guests with a table assignment after the run,
	// including guests frozen at locked tables.
	ArrangedGuests int

	// Score is the arrangement quality in [0, 1].
	Score float64

	// Conflicts lists the issues found, errors first.
	Conflicts []Conflict

	// Assignments is the resulting table → guests snapshot, in table order.
	Assignments []TableAssignment

	// SyncedGuests is the number of guest moves applied.
	SyncedGuests int

	// AttemptedGuests is the number of guest moves the run tried to apply.
	AttemptedGuests int
}

// ValidationReport is the outcome of a read-only consistency check.
//
// Errors and Warnings only concern the guest↔table link. Notes are seating
// observations that say nothing about consistency, such as accepted guests
// left without a table.
type ValidationReport struct {
	IsValid  bool
	Errors   []string
	Warnings []string
	Notes    []string
}
