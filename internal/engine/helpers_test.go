package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dezmenn/Konfem-RSVP-sub001/internal/models"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/storage"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/storage/memory"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/storage/sqlite"
)

const eventID = "ev-1"

// backends lists the store implementations every engine behavior must hold for.
var backends = map[string]func(t *testing.T) storage.Store{
	"memory": func(t *testing.T) storage.Store { return memory.NewStore() },
	"sqlite": func(t *testing.T) storage.Store {
		store, err := sqlite.New(filepath.Join(t.TempDir(), "seating.db"))
		require.NoError(t, err)
		t.Cleanup(func() { store.Close() })
		return store
	},
}

func guest(id string, side models.Side, rel models.RelationshipType, extra int) models.Guest {
	return models.Guest{
		ID:                   id,
		EventID:              eventID,
		Name:                 "Guest " + id,
		RelationshipType:     rel,
		Side:                 side,
		RSVPStatus:           models.RSVPAccepted,
		AdditionalGuestCount: extra,
	}
}

func singles(prefix string, n int, side models.Side, rel models.RelationshipType) []models.Guest {
	out := make([]models.Guest, n)
	for i := range out {
		out[i] = guest(fmt.Sprintf("%s%02d", prefix, i+1), side, rel, 0)
	}
	return out
}

func table(id string, capacity int, members ...string) models.Table {
	return models.Table{ID: id, EventID: eventID, Name: id, Capacity: capacity, AssignedGuests: members}
}

func seed(t *testing.T, store storage.Store, guests []models.Guest, tables []models.Table) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.CreateEvent(ctx, &models.Event{ID: eventID, Name: "Wedding"}))
	for i := range guests {
		require.NoError(t, store.CreateGuest(ctx, &guests[i]))
	}
	for i := range tables {
		require.NoError(t, store.CreateTable(ctx, &tables[i]))
	}
}

func newEngine(store storage.Store) *Engine {
	return New(store, Options{})
}

// tableMembers returns table ID → members as stored.
func tableMembers(t *testing.T, store storage.Store) map[string][]string {
	t.Helper()
	tables, err := store.ListTables(context.Background(), eventID)
	require.NoError(t, err)
	out := make(map[string][]string, len(tables))
	for _, tb := range tables {
		out[tb.ID] = tb.AssignedGuests
	}
	return out
}

// backRefs returns guest ID → table assignment as stored.
func backRefs(t *testing.T, store storage.Store) map[string]string {
	t.Helper()
	guests, err := store.ListGuests(context.Background(), eventID)
	require.NoError(t, err)
	out := make(map[string]string, len(guests))
	for _, g := range guests {
		out[g.ID] = g.TableAssignment
	}
	return out
}

// requireConsistent asserts that every guest is listed at most once and that
// back-references agree with the tables.
func requireConsistent(t *testing.T, store storage.Store) {
	t.Helper()
	listed := make(map[string]string)
	for tableID, members := range tableMembers(t, store) {
		for _, id := range members {
			prev, dup := listed[id]
			require.False(t, dup, "guest %s listed at %s and %s", id, prev, tableID)
			listed[id] = tableID
		}
	}
	for guestID, ref := range backRefs(t, store) {
		require.Equal(t, listed[guestID], ref, "back-reference of %s", guestID)
	}
}

// faultyStore injects failures and pauses into a memory store.
type faultyStore struct {
	*memory.Store

	mu            sync.Mutex
	failRefFor    string
	failTablesFor string

	// duplicate maps a table ID to a guest ID listed a second time on read.
	duplicate map[string]string

	// When gate is set, the first ListGuests call closes entered and waits on gate.
	gate    chan struct{}
	entered chan struct{}
	once    sync.Once
}

var errDisk = errors.New("disk I/O error")

func newFaultyStore() *faultyStore {
	return &faultyStore{Store: memory.NewStore()}
}

func (f *faultyStore) ListGuests(ctx context.Context, eventID string) ([]models.Guest, error) {
	if f.gate != nil {
		f.once.Do(func() {
			close(f.entered)
			<-f.gate
		})
	}
	return f.Store.ListGuests(ctx, eventID)
}

func (f *faultyStore) ListTables(ctx context.Context, eventID string) ([]models.Table, error) {
	tables, err := f.Store.ListTables(ctx, eventID)
	if err != nil {
		return nil, err
	}
	for i := range tables {
		if id, ok := f.duplicate[tables[i].ID]; ok {
			tables[i].AssignedGuests = append(tables[i].AssignedGuests, id)
		}
	}
	return tables, nil
}

func (f *faultyStore) SetTableAssignment(ctx context.Context, guestID, tableID string) error {
	f.mu.Lock()
	fail := guestID == f.failRefFor
	f.mu.Unlock()
	if fail {
		return errDisk
	}
	return f.Store.SetTableAssignment(ctx, guestID, tableID)
}

func (f *faultyStore) SetAssignedGuests(ctx context.Context, tableID string, guestIDs []string) error {
	f.mu.Lock()
	fail := tableID == f.failTablesFor
	f.mu.Unlock()
	if fail {
		return errDisk
	}
	return f.Store.SetAssignedGuests(ctx, tableID, guestIDs)
}
