package models

// Event represents an occasion with its own guest list and venue tables.
type Event struct {
	// ID is the unique identifier for the event (UUID format unless imported).
	ID string

	// Name is the display name of the event (e.g., "Ana & Luis Wedding").
	Name string

	// CreatedAt is the Unix timestamp when the event was created.
	CreatedAt int64
}
