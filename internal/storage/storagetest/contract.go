// Package storagetest holds a behavioral test suite shared by storage.Store
// implementations.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dezmenn/Konfem-RSVP-sub001/internal/models"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/storage"
)

// RunStoreContract verifies that a Store implementation adheres to the
// directory contract. newStore must return an empty store on every call.
func RunStoreContract(t *testing.T, newStore func(t *testing.T) storage.Store) {
	ctx := context.Background()

	seed := func(t *testing.T) (storage.Store, *models.Event) {
		store := newStore(t)
		event := &models.Event{Name: "Contract"}
		require.NoError(t, store.CreateEvent(ctx, event))
		require.NotEmpty(t, event.ID)
		return store, event
	}

	t.Run("GetEvent", func(t *testing.T) {
		store, event := seed(t)

		got, err := store.GetEvent(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, event.Name, got.Name)

		_, err = store.GetEvent(ctx, "missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("ListGuests is scoped and ordered", func(t *testing.T) {
		store, event := seed(t)
		other := &models.Event{Name: "Other"}
		require.NoError(t, store.CreateEvent(ctx, other))

		for _, g := range []*models.Guest{
			{ID: "c", EventID: event.ID, Name: "C"},
			{ID: "a", EventID: event.ID, Name: "A", DietaryRestrictions: []string{"vegan", "kosher"}},
			{ID: "b", EventID: other.ID, Name: "B"},
		} {
			g.RelationshipType = models.RelationshipFriend
			g.Side = models.SideBride
			g.RSVPStatus = models.RSVPAccepted
			require.NoError(t, store.CreateGuest(ctx, g))
		}

		guests, err := store.ListGuests(ctx, event.ID)
		require.NoError(t, err)
		require.Len(t, guests, 2)
		assert.Equal(t, "a", guests[0].ID)
		assert.Equal(t, "c", guests[1].ID)
		assert.Equal(t, []string{"kosher", "vegan"}, guests[0].DietaryRestrictions)
	})

	t.Run("ListTables is ordered by name then ID", func(t *testing.T) {
		store, event := seed(t)
		for _, tb := range []*models.Table{
			{ID: "t3", Name: "B", Capacity: 2},
			{ID: "t2", Name: "A", Capacity: 2},
			{ID: "t1", Name: "B", Capacity: 2},
		} {
			tb.EventID = event.ID
			require.NoError(t, store.CreateTable(ctx, tb))
		}

		tables, err := store.ListTables(ctx, event.ID)
		require.NoError(t, err)
		var ids []string
		for _, tb := range tables {
			ids = append(ids, tb.ID)
		}
		assert.Equal(t, []string{"t2", "t1", "t3"}, ids)
	})

	t.Run("writes are visible and isolated", func(t *testing.T) {
		store, event := seed(t)
		require.NoError(t, store.CreateGuest(ctx, &models.Guest{
			ID: "g1", EventID: event.ID, Name: "G", RelationshipType: models.RelationshipCousin,
			Side: models.SideGroom, RSVPStatus: models.RSVPAccepted,
		}))
		require.NoError(t, store.CreateTable(ctx, &models.Table{ID: "t1", EventID: event.ID, Name: "T", Capacity: 4}))

		require.NoError(t, store.SetAssignedGuests(ctx, "t1", []string{"g1", "g1"}))
		require.NoError(t, store.SetTableAssignment(ctx, "g1", "t1"))
		require.NoError(t, store.SetTableLocked(ctx, "t1", true))

		tables, err := store.ListTables(ctx, event.ID)
		require.NoError(t, err)
		require.Len(t, tables, 1)
		assert.Equal(t, []string{"g1"}, tables[0].AssignedGuests)
		assert.True(t, tables[0].IsLocked)

		tables[0].AssignedGuests[0] = "mutated"
		again, err := store.ListTables(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"g1"}, again[0].AssignedGuests)

		guests, err := store.ListGuests(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, "t1", guests[0].TableAssignment)

		require.NoError(t, store.SetTableAssignment(ctx, "g1", ""))
		guests, err = store.ListGuests(ctx, event.ID)
		require.NoError(t, err)
		assert.False(t, guests[0].IsAssigned())
	})

	t.Run("writes to missing rows", func(t *testing.T) {
		store, _ := seed(t)
		assert.ErrorIs(t, store.SetTableAssignment(ctx, "missing", ""), storage.ErrNotFound)
		assert.ErrorIs(t, store.SetAssignedGuests(ctx, "missing", nil), storage.ErrNotFound)
		assert.ErrorIs(t, store.SetTableLocked(ctx, "missing", false), storage.ErrNotFound)
	})
}
