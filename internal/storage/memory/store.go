// Package memory provides an in-memory implementation of storage.Store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dezmenn/Konfem-RSVP-sub001/internal/models"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps events, guests and tables in maps.
// Safe for concurrent use. It does not implement storage.Mover: every write
// is applied on its own.
type Store struct {
	mu     sync.RWMutex
	events map[string]models.Event
	guests map[string]*models.Guest
	tables map[string]*models.Table
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		events: make(map[string]models.Event),
		guests: make(map[string]*models.Guest),
		tables: make(map[string]*models.Table),
	}
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

// CreateEvent stores a new event.
func (s *Store) CreateEvent(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt == 0 {
		event.CreatedAt = time.Now().Unix()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.events[event.ID]; exists {
		return fmt.Errorf("failed to insert event: duplicate id %s", event.ID)
	}
	s.events[event.ID] = *event
	return nil
}

// GetEvent returns a copy of the event.
func (s *Store) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	event, ok := s.events[eventID]
	if !ok {
		return nil, fmt.Errorf("event %s: %w", eventID, storage.ErrNotFound)
	}
	return &event, nil
}

// CreateGuest stores a copy of the guest with deduplicated restrictions.
func (s *Store) CreateGuest(ctx context.Context, guest *models.Guest) error {
	if guest.ID == "" {
		guest.ID = uuid.New().String()
	}
	if guest.CreatedAt == 0 {
		guest.CreatedAt = time.Now().Unix()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.guests[guest.ID]; exists {
		return fmt.Errorf("failed to insert guest: duplicate id %s", guest.ID)
	}
	stored := copyGuest(guest)
	stored.DietaryRestrictions = normalizeRestrictions(stored.DietaryRestrictions)
	s.guests[guest.ID] = stored
	return nil
}

// ListGuests returns copies of the event's guests ordered by ID.
func (s *Store) ListGuests(ctx context.Context, eventID string) ([]models.Guest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var guests []models.Guest
	for _, g := range s.guests {
		if g.EventID == eventID {
			guests = append(guests, *copyGuest(g))
		}
	}
	sort.Slice(guests, func(i, j int) bool { return guests[i].ID < guests[j].ID })
	return guests, nil
}

// SetTableAssignment updates a guest's back-reference.
func (s *Store) SetTableAssignment(ctx context.Context, guestID, tableID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.guests[guestID]
	if !ok {
		return fmt.Errorf("guest %s: %w", guestID, storage.ErrNotFound)
	}
	g.TableAssignment = tableID
	return nil
}

// CreateTable stores a copy of the table.
func (s *Store) CreateTable(ctx context.Context, table *models.Table) error {
	if table.ID == "" {
		table.ID = uuid.New().String()
	}
	if table.CreatedAt == 0 {
		table.CreatedAt = time.Now().Unix()
	}
	if table.Capacity <= 0 {
		return fmt.Errorf("failed to insert table: capacity must be positive, got %d", table.Capacity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tables[table.ID]; exists {
		return fmt.Errorf("failed to insert table: duplicate id %s", table.ID)
	}
	stored := *table
	stored.AssignedGuests = dedupe(table.AssignedGuests)
	s.tables[table.ID] = &stored
	return nil
}

// ListTables returns copies of the event's tables ordered by name, then ID.
func (s *Store) ListTables(ctx context.Context, eventID string) ([]models.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tables []models.Table
	for _, t := range s.tables {
		if t.EventID == eventID {
			c := *t
			c.AssignedGuests = append([]string(nil), t.AssignedGuests...)
			tables = append(tables, c)
		}
	}
	sort.Slice(tables, func(i, j int) bool { return models.TableLess(&tables[i], &tables[j]) })
	return tables, nil
}

// SetAssignedGuests replaces a table's membership.
func (s *Store) SetAssignedGuests(ctx context.Context, tableID string, guestIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[tableID]
	if !ok {
		return fmt.Errorf("table %s: %w", tableID, storage.ErrNotFound)
	}
	t.AssignedGuests = dedupe(guestIDs)
	return nil
}

// SetTableLocked toggles a table's lock flag.
func (s *Store) SetTableLocked(ctx context.Context, tableID string, locked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[tableID]
	if !ok {
		return fmt.Errorf("table %s: %w", tableID, storage.ErrNotFound)
	}
	t.IsLocked = locked
	return nil
}

func copyGuest(g *models.Guest) *models.Guest {
	c := *g
	c.DietaryRestrictions = append([]string(nil), g.DietaryRestrictions...)
	return &c
}

// dedupe drops repeated IDs and keeps first-seen order.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// normalizeRestrictions trims, dedupes and sorts restrictions, matching the
// SQLite store's read order.
func normalizeRestrictions(rs []string) []string {
	var out []string
	for _, r := range rs {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	sort.Strings(out)
	out = dedupe(out)
	if len(out) == 0 {
		return nil
	}
	return out
}
