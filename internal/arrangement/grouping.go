// Package arrangement implements the seating heuristics: relationship
// grouping, table allocation, and conflict/score reporting.
//
// Everything in this package is pure and deterministic. Given the same
// snapshot and constraints, Allocate returns the same plan and Evaluate the
// same score, so repeated runs against unchanged data are idempotent.
package arrangement

import (
	"fmt"
	"sort"

	"github.com/dezmenn/Konfem-RSVP-sub001/internal/models"
)

// GroupKey identifies a relationship group.
type GroupKey struct {
	Side         models.Side
	Relationship models.RelationshipType
}

// KeyOf returns the relationship group key of a guest.
func KeyOf(g *models.Guest) GroupKey {
	return GroupKey{Side: g.Side, Relationship: g.RelationshipType}
}

// Less orders keys by side, then relationship type.
func (k GroupKey) Less(o GroupKey) bool {
	if k.Side != o.Side {
		return k.Side < o.Side
	}
	return k.Relationship < o.Relationship
}

func (k GroupKey) String() string {
	return fmt.Sprintf("%s/%s", k.Side, k.Relationship)
}

// Group is the set of guests sharing a (side, relationship) pair.
type Group struct {
	Key GroupKey

	// Members are ordered by seat demand (largest first), then name, then ID.
	Members []*models.Guest

	// TotalSeats is the sum of the members' seat demand.
	TotalSeats int
}

// GroupGuests partitions guests into relationship groups.
// Groups are sorted by total seats descending; ties are broken by key so the
// order never depends on input order.
func GroupGuests(guests []*models.Guest) []Group {
	byKey := make(map[GroupKey]*Group)
	for _, g := range guests {
		key := KeyOf(g)
		group, exists := byKey[key]
		if !exists {
			group = &Group{Key: key}
			byKey[key] = group
		}
		group.Members = append(group.Members, g)
		group.TotalSeats += g.SeatDemand()
	}

	groups := make([]Group, 0, len(byKey))
	for _, group := range byKey {
		sortUnits(group.Members)
		groups = append(groups, *group)
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].TotalSeats != groups[j].TotalSeats {
			return groups[i].TotalSeats > groups[j].TotalSeats
		}
		return groups[i].Key.Less(groups[j].Key)
	})

	return groups
}

// sortUnits orders guests largest seat demand first, then by name and ID.
func sortUnits(guests []*models.Guest) {
	sort.SliceStable(guests, func(i, j int) bool {
		a, b := guests[i], guests[j]
		if a.SeatDemand() != b.SeatDemand() {
			return a.SeatDemand() > b.SeatDemand()
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
}

// guestIDs returns the IDs of guests in order.
func guestIDs(guests []*models.Guest) []string {
	ids := make([]string, len(guests))
	for i, g := range guests {
		ids[i] = g.ID
	}
	return ids
}
