package arrangement

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dezmenn/Konfem-RSVP-sub001/internal/models"
)

func guest(id string, side models.Side, rel models.RelationshipType, extra int) models.Guest {
	return models.Guest{
		ID:                   id,
		EventID:              "ev-1",
		Name:                 "Guest " + id,
		RelationshipType:     rel,
		Side:                 side,
		RSVPStatus:           models.RSVPAccepted,
		AdditionalGuestCount: extra,
	}
}

func table(id string, capacity int) models.Table {
	return models.Table{ID: id, EventID: "ev-1", Name: id, Capacity: capacity}
}

// singles returns n accepted guests of one group, each needing a single seat.
func singles(prefix string, n int, side models.Side, rel models.RelationshipType) []models.Guest {
	out := make([]models.Guest, n)
	for i := range out {
		out[i] = guest(fmt.Sprintf("%s%02d", prefix, i+1), side, rel, 0)
	}
	return out
}

func allocate(t *testing.T, guests []models.Guest, tables []models.Table, c models.Constraints) (*Snapshot, *Plan) {
	t.Helper()
	snap := NewSnapshot(guests, tables, c)
	plan, err := NewAllocator(nil).Allocate(context.Background(), snap, GroupGuests(snap.Eligible))
	require.NoError(t, err)
	return snap, plan
}

func seatsAt(p *Plan, tableID string) int {
	return p.TableFor(tableID).Occupied
}

func conflictsOf(conflicts []models.Conflict, kind models.ConflictKind) []models.Conflict {
	var out []models.Conflict
	for _, c := range conflicts {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}
