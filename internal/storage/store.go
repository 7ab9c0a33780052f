// Package storage provides abstractions for the guest, table and event directories.
package storage

import (
	"context"
	"errors"

	"github.com/dezmenn/Konfem-RSVP-sub001/internal/models"
)

var (
	// ErrNotFound is returned when an event, guest or table does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable is returned when the backing store refuses requests,
	// for example while a circuit breaker is open.
	ErrUnavailable = errors.New("store unavailable")
)

// EventDirectory stores events.
type EventDirectory interface {
	// CreateEvent persists a new event. The event.ID field is populated when empty.
	CreateEvent(ctx context.Context, event *models.Event) error

	// GetEvent retrieves an event by ID. Returns ErrNotFound when missing.
	GetEvent(ctx context.Context, eventID string) (*models.Event, error)
}

// GuestDirectory is the source of guests and the sink for guest back-references.
type GuestDirectory interface {
	// CreateGuest persists a new guest. The guest.ID field is populated when empty.
	CreateGuest(ctx context.Context, guest *models.Guest) error

	// ListGuests returns the guests of an event ordered by ID.
	ListGuests(ctx context.Context, eventID string) ([]models.Guest, error)

	// SetTableAssignment sets a guest's back-reference. An empty tableID clears it.
	// Returns ErrNotFound when the guest does not exist.
	SetTableAssignment(ctx context.Context, guestID, tableID string) error
}

// TableDirectory is the source of tables and the sink for table memberships.
type TableDirectory interface {
	// CreateTable persists a new table. The table.ID field is populated when empty.
	CreateTable(ctx context.Context, table *models.Table) error

	// ListTables returns the tables of an event, memberships included.
	ListTables(ctx context.Context, eventID string) ([]models.Table, error)

	// SetAssignedGuests replaces a table's membership. Duplicate IDs are dropped.
	// Returns ErrNotFound when the table does not exist.
	SetAssignedGuests(ctx context.Context, tableID string, guestIDs []string) error

	// SetTableLocked toggles a table's lock flag.
	// Returns ErrNotFound when the table does not exist.
	SetTableLocked(ctx context.Context, tableID string, locked bool) error
}

// Store groups the directories behind one backend.
// This abstraction allows swapping storage backends (SQLite, in-memory)
// without changing the engine.
type Store interface {
	EventDirectory
	GuestDirectory
	TableDirectory

	// Close releases any resources held by the store.
	Close() error
}

// Mover is implemented by stores that can move a guest atomically.
//
// MoveGuest removes the guest from fromTableID's membership (when non-empty),
// adds it to toTableID's membership (when non-empty) and sets the guest's
// back-reference to toTableID, all or nothing.
type Mover interface {
	MoveGuest(ctx context.Context, guestID, fromTableID, toTableID string) error
}
