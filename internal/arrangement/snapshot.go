package arrangement

import (
	"sort"

	"github.com/dezmenn/Konfem-RSVP-sub001/internal/models"
)

// Snapshot is a private copy of an event's guests and tables taken at the
// start of a run. Changes made to the directories afterwards, including lock
// toggles, are not observed by the run.
type Snapshot struct {
	Constraints models.Constraints

	// Tables are ordered by name, then ID.
	Tables []*models.Table

	// Guests are ordered by ID.
	Guests []*models.Guest

	// Frozen maps guests seated at a locked table to that table.
	Frozen map[string]string

	// Eligible holds the guests the allocator may place: RSVP-eligible and not
	// frozen at a locked table.
	Eligible []*models.Guest

	guestsByID map[string]*models.Guest
	tablesByID map[string]*models.Table
}

// NewSnapshot copies guests and tables and classifies guests as frozen or eligible.
func NewSnapshot(guests []models.Guest, tables []models.Table, c models.Constraints) *Snapshot {
	s := &Snapshot{
		Constraints: c,
		Frozen:      make(map[string]string),
		guestsByID:  make(map[string]*models.Guest, len(guests)),
		tablesByID:  make(map[string]*models.Table, len(tables)),
	}

	for i := range guests {
		g := guests[i]
		g.DietaryRestrictions = append([]string(nil), g.DietaryRestrictions...)
		s.Guests = append(s.Guests, &g)
		s.guestsByID[g.ID] = &g
	}
	sort.Slice(s.Guests, func(i, j int) bool { return s.Guests[i].ID < s.Guests[j].ID })

	for i := range tables {
		t := tables[i]
		t.AssignedGuests = append([]string(nil), t.AssignedGuests...)
		s.Tables = append(s.Tables, &t)
		s.tablesByID[t.ID] = &t
	}
	sort.Slice(s.Tables, func(i, j int) bool { return models.TableLess(s.Tables[i], s.Tables[j]) })

	for _, t := range s.Tables {
		if !t.IsLocked {
			continue
		}
		for _, id := range t.AssignedGuests {
			if _, known := s.guestsByID[id]; !known {
				continue
			}
			if _, taken := s.Frozen[id]; !taken {
				s.Frozen[id] = t.ID
			}
		}
	}

	for _, g := range s.Guests {
		if _, frozen := s.Frozen[g.ID]; frozen {
			continue
		}
		if c.Eligible(g.RSVPStatus) {
			s.Eligible = append(s.Eligible, g)
		}
	}

	return s
}

// Guest returns the guest with the given ID, or nil.
func (s *Snapshot) Guest(id string) *models.Guest {
	return s.guestsByID[id]
}

// Table returns the table with the given ID, or nil.
func (s *Snapshot) Table(id string) *models.Table {
	return s.tablesByID[id]
}

// FrozenGuests returns the guests seated at locked tables, ordered by ID.
func (s *Snapshot) FrozenGuests() []*models.Guest {
	var frozen []*models.Guest
	for _, g := range s.Guests {
		if _, ok := s.Frozen[g.ID]; ok {
			frozen = append(frozen, g)
		}
	}
	return frozen
}
