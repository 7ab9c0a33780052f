package arrangement

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dezmenn/Konfem-RSVP-sub001/internal/models"
)

func TestAllocate_DistinctRelationshipsOnePerTable(t *testing.T) {
	guests := []models.Guest{
		guest("g1", models.SideBride, models.RelationshipParent, 0),
		guest("g2", models.SideBride, models.RelationshipSibling, 0),
		guest("g3", models.SideBride, models.RelationshipCousin, 0),
		guest("g4", models.SideBride, models.RelationshipFriend, 0),
		guest("g5", models.SideBride, models.RelationshipColleague, 0),
	}
	tables := []models.Table{table("T1", 1), table("T2", 1), table("T3", 1), table("T4", 1), table("T5", 1)}
	c := models.Constraints{RespectRelationships: true, MaxGuestsPerTable: 1}

	_, plan := allocate(t, guests, tables, c)

	assert.Len(t, plan.Assignments, 5)
	used := make(map[string]bool)
	for _, tableID := range plan.Assignments {
		used[tableID] = true
	}
	assert.Len(t, used, 5)
	assert.Empty(t, plan.Unplaced)

	report := Evaluate(plan, DefaultWeights())
	assert.Empty(t, report.Conflicts)
	assert.InDelta(t, 1.0, report.Score, 1e-9)
}

func TestAllocate_SplitsOversizedGroup(t *testing.T) {
	guests := singles("c", 10, models.SideBride, models.RelationshipCousin)
	tables := []models.Table{table("X", 8), table("Y", 4)}
	c := models.Constraints{RespectRelationships: true, KeepFamiliesTogether: true}

	_, plan := allocate(t, guests, tables, c)

	assert.Equal(t, 8, seatsAt(plan, "X"))
	assert.Equal(t, 2, seatsAt(plan, "Y"))
	assert.Len(t, plan.Assignments, 10)
	assert.Empty(t, plan.Unplaced)

	splits := conflictsOf(plan.Conflicts, models.ConflictGroupSplit)
	require.Len(t, splits, 1)
	assert.Equal(t, models.SeverityWarning, splits[0].Severity)
	assert.Contains(t, splits[0].Message, "split across 2 tables")
}

func TestAllocate_SplitNeverBreaksAGuestUnit(t *testing.T) {
	guests := append(
		[]models.Guest{guest("big", models.SideGroom, models.RelationshipFriend, 3)},
		singles("f", 6, models.SideGroom, models.RelationshipFriend)...,
	)
	tables := []models.Table{table("X", 8), table("Y", 4)}
	c := models.Constraints{RespectRelationships: true, KeepFamiliesTogether: true}

	_, plan := allocate(t, guests, tables, c)

	assert.Equal(t, "X", plan.Assignments["big"])
	assert.Equal(t, 8, seatsAt(plan, "X"))
	assert.Equal(t, 2, seatsAt(plan, "Y"))
}

func TestAllocate_WithoutKeepFamiliesPlacesUnitsIndependently(t *testing.T) {
	guests := singles("c", 5, models.SideBride, models.RelationshipCousin)
	tables := []models.Table{table("X", 3), table("Y", 3)}

	_, plan := allocate(t, guests, tables, models.Constraints{RespectRelationships: true})

	assert.Len(t, plan.Assignments, 5)
	assert.Empty(t, conflictsOf(plan.Conflicts, models.ConflictGroupSplit))
}

func TestAllocate_InsufficientCapacity(t *testing.T) {
	guests := []models.Guest{
		guest("family", models.SideBride, models.RelationshipUncle, 5),
		guest("solo", models.SideBride, models.RelationshipFriend, 0),
	}
	tables := []models.Table{table("T1", 4)}
	c := models.Constraints{RespectRelationships: true, KeepFamiliesTogether: true}

	_, plan := allocate(t, guests, tables, c)

	assert.Equal(t, "T1", plan.Assignments["solo"])
	require.Len(t, plan.Unplaced, 1)
	assert.Equal(t, "family", plan.Unplaced[0].ID)

	errs := conflictsOf(plan.Conflicts, models.ConflictInsufficientCapacity)
	require.Len(t, errs, 1)
	assert.Equal(t, models.SeverityError, errs[0].Severity)
	assert.True(t, strings.HasPrefix(errs[0].Message, "insufficient venue capacity"))
	assert.Equal(t, []string{"family"}, errs[0].GuestIDs)
}

func TestAllocate_MaxGuestsPerTableCapsCapacity(t *testing.T) {
	guests := singles("f", 4, models.SideGroom, models.RelationshipFriend)
	tables := []models.Table{table("T1", 10), table("T2", 10)}
	c := models.Constraints{RespectRelationships: true, KeepFamiliesTogether: true, MaxGuestsPerTable: 2}

	_, plan := allocate(t, guests, tables, c)

	assert.Equal(t, 2, seatsAt(plan, "T1"))
	assert.Equal(t, 2, seatsAt(plan, "T2"))
}

func TestAllocate_BestFitPrefersSmallestSufficientTable(t *testing.T) {
	guests := singles("f", 3, models.SideGroom, models.RelationshipFriend)
	tables := []models.Table{table("A", 10), table("B", 3), table("C", 4)}

	_, plan := allocate(t, guests, tables, models.Constraints{RespectRelationships: true})

	for _, g := range guests {
		assert.Equal(t, "B", plan.Assignments[g.ID])
	}
}

func TestAllocate_LockedTablesAreFrozen(t *testing.T) {
	locked := table("L", 2)
	locked.IsLocked = true
	locked.AssignedGuests = []string{"g1"}

	guests := singles("g", 3, models.SideBride, models.RelationshipFriend)
	tables := []models.Table{locked, table("T", 2)}

	_, plan := allocate(t, guests, tables, models.Constraints{RespectRelationships: true})

	assert.Equal(t, "L", plan.Assignments["g1"])
	assert.Equal(t, "T", plan.Assignments["g2"])
	assert.Equal(t, "T", plan.Assignments["g3"])
	assert.Equal(t, 1, seatsAt(plan, "L"), "free seat at a locked table is not offered")
}

func TestAllocate_LockedTableSeatsAreNotOffered(t *testing.T) {
	locked := table("L", 10)
	locked.IsLocked = true

	guests := singles("g", 2, models.SideBride, models.RelationshipFriend)

	_, plan := allocate(t, guests, []models.Table{locked}, models.DefaultConstraints())

	assert.Empty(t, plan.Assignments)
	assert.Len(t, plan.Unplaced, 2)
}

func TestAllocate_EnhancedReservesHeadTable(t *testing.T) {
	guests := append(
		singles("f", 3, models.SideBride, models.RelationshipFriend),
		singles("p", 2, models.SideBride, models.RelationshipParent)...,
	)
	tables := []models.Table{table("A Head", 4), table("B", 10)}

	_, plan := allocate(t, guests, tables, models.Constraints{RespectRelationships: true})
	assert.Equal(t, "A Head", plan.Assignments["f01"], "best fit without enhanced mode")
	assert.Equal(t, "B", plan.Assignments["p01"])

	_, plan = allocate(t, guests, tables, models.Constraints{RespectRelationships: true, Enhanced: true})
	assert.Equal(t, "A Head", plan.Assignments["p01"])
	assert.Equal(t, "A Head", plan.Assignments["p02"])
	assert.Equal(t, "B", plan.Assignments["f01"])
}

func TestAllocate_EnhancedFallsBackToHeadTableWhenNothingElseFits(t *testing.T) {
	guests := append(
		singles("f", 3, models.SideBride, models.RelationshipFriend),
		guest("p1", models.SideBride, models.RelationshipParent, 0),
	)
	tables := []models.Table{table("A Head", 4), table("B", 2)}
	c := models.Constraints{RespectRelationships: true, Enhanced: true}

	_, plan := allocate(t, guests, tables, c)

	assert.Equal(t, "A Head", plan.Assignments["p1"])
	assert.Equal(t, "A Head", plan.Assignments["f01"])
	assert.Empty(t, plan.Unplaced)
}

func TestAllocate_EnhancedLeavesHeadTableOpenWhenFamilyCannotFit(t *testing.T) {
	guests := append(
		singles("p", 3, models.SideGroom, models.RelationshipParent),
		singles("f", 2, models.SideBride, models.RelationshipFriend)...,
	)
	tables := []models.Table{table("A Head", 2), table("B", 3), table("C", 5)}

	_, plan := allocate(t, guests, tables, models.Constraints{RespectRelationships: true, Enhanced: true})

	assert.Equal(t, "B", plan.Assignments["p01"], "parents need more seats than the head table has")
	assert.Equal(t, "A Head", plan.Assignments["f01"], "friends take the head table by best fit")
	assert.Equal(t, "A Head", plan.Assignments["f02"])
	assert.Empty(t, plan.Unplaced)
}

func TestAllocate_VenueProximity(t *testing.T) {
	anchor := table("L", 2)
	anchor.IsLocked = true
	anchor.AssignedGuests = []string{"f01"}

	near := table("Near", 10)
	near.Position = models.Position{X: 1}
	far := table("Far", 3)
	far.Position = models.Position{X: 10}

	guests := singles("f", 3, models.SideBride, models.RelationshipFriend)
	tables := []models.Table{anchor, near, far}

	_, plan := allocate(t, guests, tables, models.Constraints{RespectRelationships: true})
	assert.Equal(t, "Far", plan.Assignments["f02"], "best fit without proximity")

	c := models.Constraints{RespectRelationships: true, OptimizeVenueProximity: true, PreferredTableDistance: 5}
	_, plan = allocate(t, guests, tables, c)
	assert.Equal(t, "Near", plan.Assignments["f02"])
	assert.Equal(t, "Near", plan.Assignments["f03"])

	c.PreferredTableDistance = 0.5
	_, plan = allocate(t, guests, tables, c)
	assert.Equal(t, "Far", plan.Assignments["f02"], "no table within range falls back to best fit")
}

func TestAllocate_BalancesSides(t *testing.T) {
	guests := append(
		singles("b", 2, models.SideBride, models.RelationshipFriend),
		singles("g", 2, models.SideGroom, models.RelationshipFriend)...,
	)
	tables := []models.Table{table("T1", 2), table("T2", 2)}
	c := models.Constraints{BalanceBrideGroomSides: true}

	_, plan := allocate(t, guests, tables, c)

	for _, id := range []string{"T1", "T2"} {
		state := plan.TableFor(id)
		assert.Equal(t, 1, state.sideSeats(models.SideBride), id)
		assert.Equal(t, 1, state.sideSeats(models.SideGroom), id)
	}
}

func TestAllocate_BalanceReportsUnplacedUnits(t *testing.T) {
	guests := append(
		singles("b", 2, models.SideBride, models.RelationshipFriend),
		guest("g1", models.SideGroom, models.RelationshipFriend, 4),
	)
	tables := []models.Table{table("T1", 3)}

	_, plan := allocate(t, guests, tables, models.Constraints{BalanceBrideGroomSides: true})

	require.Len(t, plan.Unplaced, 1)
	assert.Equal(t, "g1", plan.Unplaced[0].ID)
	assert.Len(t, plan.Assignments, 2)
}

func TestAllocate_IsDeterministic(t *testing.T) {
	guests := append(singles("f", 7, models.SideBride, models.RelationshipFriend),
		singles("c", 5, models.SideGroom, models.RelationshipCousin)...)
	guests = append(guests, guest("u1", models.SideGroom, models.RelationshipUncle, 2))
	tables := []models.Table{table("T1", 4), table("T2", 6), table("T3", 5), table("T4", 3)}
	c := models.Constraints{RespectRelationships: true, KeepFamiliesTogether: true}

	_, first := allocate(t, guests, tables, c)
	want := Evaluate(first, DefaultWeights())

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 5; i++ {
		shuffledGuests := append([]models.Guest(nil), guests...)
		rng.Shuffle(len(shuffledGuests), func(a, b int) { shuffledGuests[a], shuffledGuests[b] = shuffledGuests[b], shuffledGuests[a] })
		shuffledTables := append([]models.Table(nil), tables...)
		rng.Shuffle(len(shuffledTables), func(a, b int) { shuffledTables[a], shuffledTables[b] = shuffledTables[b], shuffledTables[a] })

		_, plan := allocate(t, shuffledGuests, shuffledTables, c)
		assert.Equal(t, first.Assignments, plan.Assignments)
		assert.Equal(t, want.Score, Evaluate(plan, DefaultWeights()).Score)
	}
}

func TestAllocate_NeverExceedsEffectiveCapacity(t *testing.T) {
	var guests []models.Guest
	for i, extra := range []int{0, 3, 1, 2, 0, 0, 5, 1, 0, 2, 4, 0} {
		side := models.SideBride
		if i%2 == 1 {
			side = models.SideGroom
		}
		rel := models.RelationshipTypes[i%len(models.RelationshipTypes)]
		guests = append(guests, guest(string(rune('a'+i)), side, rel, extra))
	}
	tables := []models.Table{table("T1", 6), table("T2", 5), table("T3", 7)}

	modes := []models.Constraints{
		{RespectRelationships: true, KeepFamiliesTogether: true},
		{RespectRelationships: true},
		{BalanceBrideGroomSides: true},
		{},
		{RespectRelationships: true, KeepFamiliesTogether: true, Enhanced: true, MaxGuestsPerTable: 5},
	}
	for _, c := range modes {
		_, plan := allocate(t, guests, tables, c)
		seen := make(map[string]bool)
		for _, state := range plan.Tables {
			assert.LessOrEqual(t, state.Occupied, state.Capacity, "%+v", c)
			for _, g := range state.Guests {
				assert.False(t, seen[g.ID], "guest %s seated twice", g.ID)
				seen[g.ID] = true
			}
		}
		assert.Equal(t, len(guests), len(plan.Assignments)+len(plan.Unplaced))
	}
}

func TestAllocate_HonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	snap := NewSnapshot(singles("f", 2, models.SideBride, models.RelationshipFriend),
		[]models.Table{table("T1", 4)}, models.DefaultConstraints())
	_, err := NewAllocator(nil).Allocate(ctx, snap, GroupGuests(snap.Eligible))
	assert.ErrorIs(t, err, context.Canceled)
}
