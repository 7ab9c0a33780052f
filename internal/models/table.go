package models

import "math"

// Position is a point on the venue floor plan.
type Position struct {
	X float64
	Y float64
}

// Distance returns the Euclidean distance between two positions.
func (p Position) Distance(o Position) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

// Table represents a seating table at the venue.
type Table struct {
	// ID is the unique identifier for the table (UUID format).
	ID string

	// EventID is the event this table belongs to.
	EventID string

	// Name is the display name of the table (e.g., "Table 1", "Head Table").
	// Tables are ordered by name, then ID, wherever the engine needs a stable order.
	Name string

	// Capacity is the number of seats at the table. Always positive.
	Capacity int

	// IsLocked freezes the table and its occupants during automatic arrangement.
	IsLocked bool

	// Position is the table's location on the floor plan.
	// Only consulted when venue proximity optimization is requested.
	Position Position

	// AssignedGuests is the authoritative set of guest IDs seated here.
	AssignedGuests []string

	// CreatedAt is the Unix timestamp when the table was created.
	CreatedAt int64
}

// HasGuest reports whether guestID is a member of the table.
func (t *Table) HasGuest(guestID string) bool {
	for _, id := range t.AssignedGuests {
		if id == guestID {
			return true
		}
	}
	return false
}

// TableLess orders tables by name, then by ID.
func TableLess(a, b *Table) bool {
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.ID < b.ID
}
