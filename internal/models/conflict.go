package models

// Severity ranks a conflict.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ConflictKind identifies what was detected.
type ConflictKind string

const (
	ConflictInsufficientCapacity ConflictKind = "insufficient_capacity"
	ConflictGroupSplit           ConflictKind = "group_split"
	ConflictUnderfilledTable     ConflictKind = "underfilled_table"
	ConflictDietaryMix           ConflictKind = "dietary_mix"
	ConflictOverCapacity         ConflictKind = "over_capacity"
)

// Severity returns the fixed severity of a conflict kind.
func (k ConflictKind) Severity() Severity {
	switch k {
	case ConflictInsufficientCapacity, ConflictOverCapacity:
		return SeverityError
	case ConflictGroupSplit, ConflictUnderfilledTable, ConflictDietaryMix:
		return SeverityWarning
	}
	return SeverityWarning
}

// Conflict is an issue detected in an arrangement.
// Conflicts are expected output, not failures: a tight venue produces
// insufficient-capacity conflicts on every run.
type Conflict struct {
	Kind     ConflictKind
	Severity Severity

	// Message is a human-readable description.
	Message string

	// TableID names the table involved, if any.
	TableID string

	// GuestIDs lists the guests involved, if any.
	GuestIDs []string
}

// NewConflict creates a conflict whose severity follows from its kind.
func NewConflict(kind ConflictKind, message string) Conflict {
	return Conflict{Kind: kind, Severity: kind.Severity(), Message: message}
}
