package service

import (
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/models"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/rpc"
)

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func toArrangeResponse(r *models.Result) *rpc.ArrangeResponse {
	resp := &rpc.ArrangeResponse{
		Success:         r.Success,
		Message:         r.Message,
		State:           r.State.String(),
		ArrangedGuests:  r.ArrangedGuests,
		Score:           r.Score,
		Conflicts:       make([]rpc.Conflict, len(r.Conflicts)),
		Assignments:     make([]rpc.TableAssignment, len(r.Assignments)),
		SyncedGuests:    r.SyncedGuests,
		AttemptedGuests: r.AttemptedGuests,
	}
	for i, c := range r.Conflicts {
		resp.Conflicts[i] = rpc.Conflict{
			Kind:     string(c.Kind),
			Severity: string(c.Severity),
			Message:  c.Message,
			TableID:  c.TableID,
			GuestIDs: c.GuestIDs,
		}
	}
	for i, a := range r.Assignments {
		resp.Assignments[i] = rpc.TableAssignment{
			TableID:   a.TableID,
			TableName: a.TableName,
			GuestIDs:  nonNil(a.GuestIDs),
		}
	}
	return resp
}

func toGuest(g models.Guest) rpc.Guest {
	return rpc.Guest{
		ID:                   g.ID,
		Name:                 g.Name,
		RelationshipType:     string(g.RelationshipType),
		Side:                 string(g.Side),
		RSVPStatus:           string(g.RSVPStatus),
		AdditionalGuestCount: g.AdditionalGuestCount,
		DietaryRestrictions:  g.DietaryRestrictions,
	}
}

func toGuests(guests []models.Guest) []rpc.Guest {
	out := make([]rpc.Guest, len(guests))
	for i, g := range guests {
		out[i] = toGuest(g)
	}
	return out
}

func toChartResponse(c *models.Chart) *rpc.GetChartResponse {
	resp := &rpc.GetChartResponse{
		EventID:       c.Event.ID,
		EventName:     c.Event.Name,
		Tables:        make([]rpc.ChartTable, len(c.Tables)),
		Unassigned:    toGuests(c.Unassigned),
		TotalSeats:    c.TotalSeats(),
		TotalCapacity: c.TotalCapacity(),
	}
	for i, t := range c.Tables {
		resp.Tables[i] = rpc.ChartTable{
			ID:       t.Table.ID,
			Name:     t.Table.Name,
			Capacity: t.Table.Capacity,
			Locked:   t.Table.IsLocked,
			X:        t.Table.Position.X,
			Y:        t.Table.Position.Y,
			Seats:    t.Seats,
			Guests:   toGuests(t.Guests),
		}
	}
	return resp
}
