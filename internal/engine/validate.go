package engine

import (
	"context"
	"fmt"

	"github.com/dezmenn/Konfem-RSVP-sub001/internal/models"
)

// Validate checks the event's guest↔table consistency without writing.
//
// Errors: a table listing an unknown guest, a guest listed at more than one
// table, a back-reference that disagrees with the tables, a table seating more
// than its capacity. Warnings: a table listing the same guest twice. Notes:
// seated guests who declined or were never invited, accepted guests seated
// nowhere.
func (e *Engine) Validate(ctx context.Context, eventID string) (*models.ValidationReport, error) {
	if err := e.requireEvent(ctx, eventID); err != nil {
		return nil, err
	}
	d, err := e.load(ctx, eventID)
	if err != nil {
		return nil, err
	}

	report := &models.ValidationReport{}
	errorf := func(format string, args ...any) {
		report.Errors = append(report.Errors, fmt.Sprintf(format, args...))
	}
	warnf := func(format string, args ...any) {
		report.Warnings = append(report.Warnings, fmt.Sprintf(format, args...))
	}
	notef := func(format string, args ...any) {
		report.Notes = append(report.Notes, fmt.Sprintf(format, args...))
	}

	listedAt := make(map[string][]*models.Table)
	for _, t := range d.tables {
		seen := make(map[string]bool)
		seats := 0
		for _, id := range t.AssignedGuests {
			if seen[id] {
				warnf("table %s lists guest %s more than once", t.Name, id)
				continue
			}
			seen[id] = true
			g := d.guest(id)
			if g == nil {
				errorf("table %s lists unknown guest %s", t.Name, id)
				continue
			}
			seats += g.SeatDemand()
			listedAt[id] = append(listedAt[id], t)
		}
		if seats > t.Capacity {
			errorf("table %s is over capacity: %d of %d seats", t.Name, seats, t.Capacity)
		}
	}

	unseated := 0
	for i := range d.guests {
		g := &d.guests[i]
		tables := listedAt[g.ID]

		switch {
		case len(tables) > 1:
			names := make([]string, len(tables))
			for j, t := range tables {
				names[j] = t.Name
			}
			errorf("guest %s is listed at %d tables: %v", g.Name, len(tables), names)
		case len(tables) == 1 && g.TableAssignment != tables[0].ID:
			errorf("guest %s is listed at table %s but references %q", g.Name, tables[0].Name, g.TableAssignment)
		case len(tables) == 0 && g.IsAssigned():
			if t := d.table(g.TableAssignment); t != nil {
				errorf("guest %s references table %s which does not list them", g.Name, t.Name)
			} else {
				errorf("guest %s references unknown table %s", g.Name, g.TableAssignment)
			}
		}

		seated := len(tables) > 0
		switch {
		case seated && (g.RSVPStatus == models.RSVPDeclined || g.RSVPStatus == models.RSVPNotInvited):
			notef("guest %s is seated but their RSVP is %s", g.Name, g.RSVPStatus)
		case !seated && g.RSVPStatus == models.RSVPAccepted:
			unseated++
		}
	}
	if unseated > 0 {
		notef("%d accepted guests are not seated", unseated)
	}

	report.IsValid = len(report.Errors) == 0
	e.logger.Debug("Validation finished",
		"event_id", eventID,
		"errors", len(report.Errors),
		"warnings", len(report.Warnings),
		"notes", len(report.Notes),
	)
	return report, nil
}
