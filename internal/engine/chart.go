package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/dezmenn/Konfem-RSVP-sub001/internal/models"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/storage"
)

// Chart returns the event's current seating as stored in the directories.
func (e *Engine) Chart(ctx context.Context, eventID string) (*models.Chart, error) {
	event, err := e.store.GetEvent(ctx, eventID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	d, err := e.load(ctx, eventID)
	if err != nil {
		return nil, err
	}

	chart := &models.Chart{Event: *event}
	seated := make(map[string]bool)
	for _, t := range d.tables {
		ct := models.ChartTable{Table: *t}
		for _, id := range t.AssignedGuests {
			g := d.guest(id)
			if g == nil || seated[id] {
				continue
			}
			seated[id] = true
			ct.Guests = append(ct.Guests, *g)
			ct.Seats += g.SeatDemand()
		}
		chart.Tables = append(chart.Tables, ct)
	}

	for _, g := range d.guests {
		if seated[g.ID] {
			continue
		}
		if g.RSVPStatus == models.RSVPAccepted || g.RSVPStatus == models.RSVPPending {
			chart.Unassigned = append(chart.Unassigned, g)
		}
	}
	return chart, nil
}
