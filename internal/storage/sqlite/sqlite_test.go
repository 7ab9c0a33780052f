package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/dezmenn/Konfem-RSVP-sub001/internal/models"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/storage"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/storage/storagetest"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func seedEvent(t *testing.T, store *SQLiteStore) *models.Event {
	t.Helper()
	event := &models.Event{Name: "Ana & Luis"}
	if err := store.CreateEvent(context.Background(), event); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}
	return event
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	event := seedEvent(t, store)

	t.Run("CreateEvent generates ID and timestamp", func(t *testing.T) {
		if event.ID == "" {
			t.Error("Expected event ID to be generated")
		}
		if event.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}

		got, err := store.GetEvent(ctx, event.ID)
		if err != nil {
			t.Fatalf("GetEvent failed: %v", err)
		}
		if got.Name != event.Name {
			t.Errorf("Name mismatch: got %s, want %s", got.Name, event.Name)
		}
	})

	t.Run("GetEvent returns ErrNotFound for nonexistent event", func(t *testing.T) {
		_, err := store.GetEvent(ctx, "nonexistent-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("CreateGuest round-trips every field", func(t *testing.T) {
		guest := &models.Guest{
			ID:                   "g-1",
			EventID:              event.ID,
			Name:                 "Marta",
			RelationshipType:     models.RelationshipAunt,
			Side:                 models.SideBride,
			RSVPStatus:           models.RSVPAccepted,
			AdditionalGuestCount: 2,
			DietaryRestrictions:  []string{"vegan", " ", "halal", "vegan"},
		}
		if err := store.CreateGuest(ctx, guest); err != nil {
			t.Fatalf("CreateGuest failed: %v", err)
		}

		guests, err := store.ListGuests(ctx, event.ID)
		if err != nil {
			t.Fatalf("ListGuests failed: %v", err)
		}
		if len(guests) != 1 {
			t.Fatalf("Expected 1 guest, got %d", len(guests))
		}
		got := guests[0]
		if got.Name != "Marta" || got.RelationshipType != models.RelationshipAunt || got.Side != models.SideBride {
			t.Errorf("Unexpected guest: %+v", got)
		}
		if got.SeatDemand() != 3 {
			t.Errorf("Seat demand mismatch: got %d, want 3", got.SeatDemand())
		}
		if want := []string{"halal", "vegan"}; !reflect.DeepEqual(got.DietaryRestrictions, want) {
			t.Errorf("Dietary mismatch: got %v, want %v", got.DietaryRestrictions, want)
		}
		if got.IsAssigned() {
			t.Error("Expected new guest to be unassigned")
		}
	})

	t.Run("CreateTable keeps membership order", func(t *testing.T) {
		table := &models.Table{
			EventID:        event.ID,
			Name:           "Table 1",
			Capacity:       8,
			Position:       models.Position{X: 1.5, Y: -2},
			AssignedGuests: []string{"g-2", "g-1", "g-2"},
		}
		if err := store.CreateTable(ctx, table); err != nil {
			t.Fatalf("CreateTable failed: %v", err)
		}

		tables, err := store.ListTables(ctx, event.ID)
		if err != nil {
			t.Fatalf("ListTables failed: %v", err)
		}
		if len(tables) != 1 {
			t.Fatalf("Expected 1 table, got %d", len(tables))
		}
		if want := []string{"g-2", "g-1"}; !reflect.DeepEqual(tables[0].AssignedGuests, want) {
			t.Errorf("Members mismatch: got %v, want %v", tables[0].AssignedGuests, want)
		}
		if tables[0].Position != table.Position {
			t.Errorf("Position mismatch: got %+v, want %+v", tables[0].Position, table.Position)
		}
	})

	t.Run("CreateTable rejects non-positive capacity", func(t *testing.T) {
		err := store.CreateTable(ctx, &models.Table{EventID: event.ID, Name: "Broken", Capacity: 0})
		if err == nil {
			t.Error("Expected error for zero capacity, got nil")
		}
	})
}

func TestSQLiteStore_Writes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	event := seedEvent(t, store)

	for _, id := range []string{"a", "b"} {
		if err := store.CreateGuest(ctx, &models.Guest{
			ID: id, EventID: event.ID, Name: id,
			RelationshipType: models.RelationshipFriend, Side: models.SideGroom, RSVPStatus: models.RSVPAccepted,
		}); err != nil {
			t.Fatalf("CreateGuest failed: %v", err)
		}
	}
	for _, id := range []string{"t1", "t2"} {
		if err := store.CreateTable(ctx, &models.Table{ID: id, EventID: event.ID, Name: id, Capacity: 4}); err != nil {
			t.Fatalf("CreateTable failed: %v", err)
		}
	}

	members := func(tableID string) []string {
		t.Helper()
		tables, err := store.ListTables(ctx, event.ID)
		if err != nil {
			t.Fatalf("ListTables failed: %v", err)
		}
		for _, table := range tables {
			if table.ID == tableID {
				return table.AssignedGuests
			}
		}
		t.Fatalf("table %s not listed", tableID)
		return nil
	}
	assignment := func(guestID string) string {
		t.Helper()
		guests, err := store.ListGuests(ctx, event.ID)
		if err != nil {
			t.Fatalf("ListGuests failed: %v", err)
		}
		for _, g := range guests {
			if g.ID == guestID {
				return g.TableAssignment
			}
		}
		t.Fatalf("guest %s not listed", guestID)
		return ""
	}

	t.Run("SetAssignedGuests replaces and dedupes", func(t *testing.T) {
		if err := store.SetAssignedGuests(ctx, "t1", []string{"a", "b", "a"}); err != nil {
			t.Fatalf("SetAssignedGuests failed: %v", err)
		}
		if got := members("t1"); !reflect.DeepEqual(got, []string{"a", "b"}) {
			t.Errorf("Members mismatch: got %v", got)
		}
		if err := store.SetAssignedGuests(ctx, "t1", nil); err != nil {
			t.Fatalf("SetAssignedGuests failed: %v", err)
		}
		if got := members("t1"); len(got) != 0 {
			t.Errorf("Expected empty table, got %v", got)
		}
	})

	t.Run("MoveGuest updates both sides", func(t *testing.T) {
		if err := store.MoveGuest(ctx, "a", "", "t1"); err != nil {
			t.Fatalf("MoveGuest failed: %v", err)
		}
		if err := store.MoveGuest(ctx, "a", "t1", "t2"); err != nil {
			t.Fatalf("MoveGuest failed: %v", err)
		}
		if got := members("t1"); len(got) != 0 {
			t.Errorf("Expected t1 empty, got %v", got)
		}
		if got := members("t2"); !reflect.DeepEqual(got, []string{"a"}) {
			t.Errorf("Expected t2 = [a], got %v", got)
		}
		if got := assignment("a"); got != "t2" {
			t.Errorf("Assignment mismatch: got %q, want t2", got)
		}

		if err := store.MoveGuest(ctx, "a", "t2", ""); err != nil {
			t.Fatalf("MoveGuest failed: %v", err)
		}
		if got := assignment("a"); got != "" {
			t.Errorf("Expected unassigned, got %q", got)
		}
	})

	t.Run("MoveGuest to unknown table changes nothing", func(t *testing.T) {
		if err := store.MoveGuest(ctx, "b", "", "t1"); err != nil {
			t.Fatalf("MoveGuest failed: %v", err)
		}
		err := store.MoveGuest(ctx, "b", "t1", "missing")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("Expected ErrNotFound, got %v", err)
		}
		if got := members("t1"); !reflect.DeepEqual(got, []string{"b"}) {
			t.Errorf("Expected rollback to keep b at t1, got %v", got)
		}
		if got := assignment("b"); got != "t1" {
			t.Errorf("Expected rollback to keep assignment t1, got %q", got)
		}
	})

	t.Run("not found errors", func(t *testing.T) {
		checks := map[string]error{
			"SetTableAssignment": store.SetTableAssignment(ctx, "missing", "t1"),
			"SetAssignedGuests":  store.SetAssignedGuests(ctx, "missing", nil),
			"SetTableLocked":     store.SetTableLocked(ctx, "missing", true),
			"MoveGuest":          store.MoveGuest(ctx, "missing", "", "t1"),
		}
		for name, err := range checks {
			if !errors.Is(err, storage.ErrNotFound) {
				t.Errorf("%s: expected ErrNotFound, got %v", name, err)
			}
		}
	})

	t.Run("SetTableLocked toggles", func(t *testing.T) {
		if err := store.SetTableLocked(ctx, "t2", true); err != nil {
			t.Fatalf("SetTableLocked failed: %v", err)
		}
		tables, err := store.ListTables(ctx, event.ID)
		if err != nil {
			t.Fatalf("ListTables failed: %v", err)
		}
		for _, table := range tables {
			if table.IsLocked != (table.ID == "t2") {
				t.Errorf("Table %s locked = %v", table.ID, table.IsLocked)
			}
		}
	})
}

func TestSQLiteStore_Contract(t *testing.T) {
	storagetest.RunStoreContract(t, func(t *testing.T) storage.Store {
		return newTestStore(t)
	})
}
