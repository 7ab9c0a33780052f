package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/dezmenn/Konfem-RSVP-sub001/internal/models"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/storage"
)

// directory is a consistent read of one event's guests and tables.
type directory struct {
	guests []models.Guest
	tables []*models.Table
}

func (e *Engine) load(ctx context.Context, eventID string) (*directory, error) {
	guests, err := e.store.ListGuests(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list guests: %w", err)
	}
	tables, err := e.store.ListTables(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	d := &directory{guests: guests}
	for i := range tables {
		d.tables = append(d.tables, &tables[i])
	}
	slices.SortFunc(d.tables, func(a, b *models.Table) int {
		switch {
		case models.TableLess(a, b):
			return -1
		case models.TableLess(b, a):
			return 1
		}
		return 0
	})
	return d, nil
}

func (d *directory) guest(id string) *models.Guest {
	for i := range d.guests {
		if d.guests[i].ID == id {
			return &d.guests[i]
		}
	}
	return nil
}

func (d *directory) table(id string) *models.Table {
	for _, t := range d.tables {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// seats returns the seat demand of the known guests listed at t, skipping skipID.
func (d *directory) seats(t *models.Table, skipID string) int {
	total := 0
	for _, id := range t.AssignedGuests {
		if id == skipID {
			continue
		}
		if g := d.guest(id); g != nil {
			total += g.SeatDemand()
		}
	}
	return total
}

// AssignGuest seats a guest at a table, moving it out of any table it was in.
// Manual assignment may target a locked table. It fails with ErrTableFull when
// the guest's seats do not fit.
func (e *Engine) AssignGuest(ctx context.Context, eventID, guestID, tableID string) error {
	if err := e.requireEvent(ctx, eventID); err != nil {
		return err
	}
	return e.withEventLock(ctx, eventID, func(ctx context.Context) error {
		d, err := e.load(ctx, eventID)
		if err != nil {
			return err
		}
		g := d.guest(guestID)
		if g == nil {
			return fmt.Errorf("%w: %s", ErrGuestNotFound, guestID)
		}
		t := d.table(tableID)
		if t == nil {
			return fmt.Errorf("%w: %s", ErrTableNotFound, tableID)
		}
		if d.seats(t, guestID)+g.SeatDemand() > t.Capacity {
			return fmt.Errorf("%w: %s has %d of %d seats taken, %s needs %d",
				ErrTableFull, t.Name, d.seats(t, guestID), t.Capacity, g.Name, g.SeatDemand())
		}

		if err := e.relocate(ctx, d, g, tableID); err != nil {
			return err
		}
		e.logger.Info("Guest assigned", "event_id", eventID, "guest_id", guestID, "table_id", tableID)
		return nil
	})
}

// UnassignGuest removes a guest from every table and clears its back-reference.
func (e *Engine) UnassignGuest(ctx context.Context, eventID, guestID string) error {
	if err := e.requireEvent(ctx, eventID); err != nil {
		return err
	}
	return e.withEventLock(ctx, eventID, func(ctx context.Context) error {
		d, err := e.load(ctx, eventID)
		if err != nil {
			return err
		}
		g := d.guest(guestID)
		if g == nil {
			return fmt.Errorf("%w: %s", ErrGuestNotFound, guestID)
		}

		if err := e.relocate(ctx, d, g, ""); err != nil {
			return err
		}
		e.logger.Info("Guest unassigned", "event_id", eventID, "guest_id", guestID)
		return nil
	})
}

// relocate moves g to tableID ("" to unassign) and drops it from any other
// table still listing it.
func (e *Engine) relocate(ctx context.Context, d *directory, g *models.Guest, tableID string) error {
	members := newMemberships(d.tables)
	holders := members.holders(g.ID, d.tables, false)
	if settled(holders, tableID) && g.TableAssignment == tableID {
		return nil
	}

	from := ""
	if len(holders) > 0 {
		from = holders[0]
	}
	if err := e.sync.move(ctx, members, g.ID, from, tableID); err != nil {
		e.metrics.GuestMove(false)
		return fmt.Errorf("failed to move guest %s: %w", g.ID, err)
	}
	e.metrics.GuestMove(true)

	for _, extra := range holders[min(1, len(holders)):] {
		if extra == tableID {
			continue
		}
		if err := e.store.SetAssignedGuests(ctx, extra, without(members[extra], g.ID)); err != nil {
			return fmt.Errorf("failed to remove guest %s from table %s: %w", g.ID, extra, err)
		}
	}
	return nil
}

// SetTableLock toggles whether a table is frozen during arrangement runs.
// A run already in progress keeps the lock state it read at its start.
func (e *Engine) SetTableLock(ctx context.Context, eventID, tableID string, locked bool) error {
	if err := e.requireEvent(ctx, eventID); err != nil {
		return err
	}
	tables, err := e.store.ListTables(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}
	if !slices.ContainsFunc(tables, func(t models.Table) bool { return t.ID == tableID }) {
		return fmt.Errorf("%w: %s", ErrTableNotFound, tableID)
	}

	if err := e.store.SetTableLocked(ctx, tableID, locked); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrTableNotFound, tableID)
		}
		return fmt.Errorf("failed to set table lock: %w", err)
	}
	e.logger.Info("Table lock changed", "event_id", eventID, "table_id", tableID, "locked", locked)
	return nil
}
