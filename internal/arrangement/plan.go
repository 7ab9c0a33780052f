package arrangement

import (
	"sort"

	"github.com/dezmenn/Konfem-RSVP-sub001/internal/models"
)

// TableState tracks a table's occupancy while a plan is being built.
type TableState struct {
	Table *models.Table

	// Capacity is the effective capacity after MaxGuestsPerTable is applied.
	Capacity int

	// Occupied is the number of seats taken.
	Occupied int

	// Guests are the seated guests in placement order.
	Guests []*models.Guest
}

// Remaining returns the free seats at the table.
func (t *TableState) Remaining() int {
	return t.Capacity - t.Occupied
}

// Locked reports whether the table is frozen for this run.
func (t *TableState) Locked() bool {
	return t.Table.IsLocked
}

// sideSeats returns the seats taken by guests of one side.
func (t *TableState) sideSeats(side models.Side) int {
	seats := 0
	for _, g := range t.Guests {
		if g.Side == side {
			seats += g.SeatDemand()
		}
	}
	return seats
}

// holds reports whether any seated guest belongs to the group key.
func (t *TableState) holds(key GroupKey) bool {
	for _, g := range t.Guests {
		if KeyOf(g) == key {
			return true
		}
	}
	return false
}

// Plan is the guest → table mapping computed by the allocator.
type Plan struct {
	Snapshot *Snapshot

	// Tables mirrors Snapshot.Tables in the same order.
	Tables []*TableState

	// Assignments maps every seated guest, frozen ones included, to a table ID.
	Assignments map[string]string

	// Unplaced lists eligible guests that fit nowhere.
	Unplaced []*models.Guest

	// Conflicts holds the conflicts raised during allocation.
	Conflicts []models.Conflict

	byID map[string]*TableState
}

// newPlan seeds a plan with the frozen occupants of locked tables.
// Unlocked tables start empty: a run reallocates all of them.
func newPlan(s *Snapshot) *Plan {
	p := &Plan{
		Snapshot:    s,
		Assignments: make(map[string]string),
		byID:        make(map[string]*TableState, len(s.Tables)),
	}
	for _, t := range s.Tables {
		state := &TableState{Table: t, Capacity: t.Capacity}
		if !t.IsLocked {
			state.Capacity = s.Constraints.EffectiveCapacity(t)
		}
		p.Tables = append(p.Tables, state)
		p.byID[t.ID] = state
	}
	for _, g := range s.FrozenGuests() {
		state := p.byID[s.Frozen[g.ID]]
		state.Guests = append(state.Guests, g)
		state.Occupied += g.SeatDemand()
		p.Assignments[g.ID] = state.Table.ID
	}
	return p
}

// place seats a guest at a table.
func (p *Plan) place(t *TableState, g *models.Guest) {
	t.Guests = append(t.Guests, g)
	t.Occupied += g.SeatDemand()
	p.Assignments[g.ID] = t.Table.ID
}

// writable returns the unlocked tables in table order.
func (p *Plan) writable() []*TableState {
	var tables []*TableState
	for _, t := range p.Tables {
		if !t.Locked() {
			tables = append(tables, t)
		}
	}
	return tables
}

// TableFor returns the state of the table with the given ID, or nil.
func (p *Plan) TableFor(id string) *TableState {
	return p.byID[id]
}

// Members returns the planned guest IDs of a table, sorted.
func (p *Plan) Members(tableID string) []string {
	t := p.byID[tableID]
	if t == nil {
		return nil
	}
	ids := guestIDs(t.Guests)
	sort.Strings(ids)
	return ids
}

// TableAssignments returns the planned membership of every table in table order.
func (p *Plan) TableAssignments() []models.TableAssignment {
	out := make([]models.TableAssignment, 0, len(p.Tables))
	for _, t := range p.Tables {
		out = append(out, models.TableAssignment{
			TableID:   t.Table.ID,
			TableName: t.Table.Name,
			GuestIDs:  p.Members(t.Table.ID),
		})
	}
	return out
}
