package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/dezmenn/Konfem-RSVP-sub001/internal/arrangement"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/models"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/observability"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/storage"
)

// synchronizer writes a plan back to the directories, keeping every guest in
// at most one table set and its back-reference pointing at that table.
type synchronizer struct {
	store   storage.Store
	mover   storage.Mover
	metrics *observability.Collector
	logger  *slog.Logger
}

func newSynchronizer(store storage.Store, metrics *observability.Collector, logger *slog.Logger) *synchronizer {
	s := &synchronizer{store: store, metrics: metrics, logger: logger}
	if m, ok := store.(storage.Mover); ok {
		s.mover = m
	}
	return s
}

// syncStats counts guest moves.
type syncStats struct {
	synced    int
	attempted int

	// assigned counts guests holding a back-reference once every write is done.
	assigned int
}

// memberships is a working copy of table memberships kept in step with the
// writes the synchronizer makes.
type memberships map[string][]string

func newMemberships(tables []*models.Table) memberships {
	m := make(memberships, len(tables))
	for _, t := range tables {
		m[t.ID] = append([]string(nil), t.AssignedGuests...)
	}
	return m
}

// holders returns the tables listing guestID, in the given table order.
func (m memberships) holders(guestID string, tables []*models.Table, unlockedOnly bool) []string {
	var ids []string
	for _, t := range tables {
		if unlockedOnly && t.IsLocked {
			continue
		}
		if slices.Contains(m[t.ID], guestID) {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

func without(ids []string, guestID string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != guestID {
			out = append(out, id)
		}
	}
	return out
}

func with(ids []string, guestID string) []string {
	if slices.Contains(ids, guestID) {
		return slices.Clone(ids)
	}
	return append(slices.Clone(ids), guestID)
}

// apply moves every non-frozen guest whose directory state differs from the
// plan, in guest ID order, then rewrites unlocked tables still holding
// anything the plan does not seat there. Locked tables are never written.
func (s *synchronizer) apply(ctx context.Context, snap *arrangement.Snapshot, plan *arrangement.Plan) (syncStats, error) {
	members := newMemberships(snap.Tables)
	var stats syncStats

	for _, g := range snap.Guests {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if _, frozen := snap.Frozen[g.ID]; frozen {
			continue
		}

		target := plan.Assignments[g.ID]
		holders := members.holders(g.ID, snap.Tables, true)
		if settled(holders, target) && g.TableAssignment == target {
			continue
		}

		from := ""
		if len(holders) > 0 {
			from = holders[0]
		}
		stats.attempted++
		if err := s.move(ctx, members, g.ID, from, target); err != nil {
			s.metrics.GuestMove(false)
			return stats, fmt.Errorf("failed to move guest %s: %w", g.ID, err)
		}
		s.metrics.GuestMove(true)
		stats.synced++
	}

	for _, t := range snap.Tables {
		if t.IsLocked {
			continue
		}
		want := plan.Members(t.ID)
		if sameSet(members[t.ID], want) {
			continue
		}
		if err := s.store.SetAssignedGuests(ctx, t.ID, want); err != nil {
			return stats, fmt.Errorf("failed to reconcile table %s: %w", t.ID, err)
		}
		members[t.ID] = want
	}

	for _, g := range snap.Guests {
		ref := plan.Assignments[g.ID]
		if _, frozen := snap.Frozen[g.ID]; frozen {
			// Frozen guests are never written, so their stored reference stands.
			ref = g.TableAssignment
		}
		if ref != "" {
			stats.assigned++
		}
	}
	return stats, nil
}

// settled reports whether the holders already match the target table.
func settled(holders []string, target string) bool {
	if target == "" {
		return len(holders) == 0
	}
	return len(holders) == 1 && holders[0] == target
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sa, sb := slices.Clone(a), slices.Clone(b)
	slices.Sort(sa)
	slices.Sort(sb)
	return slices.Equal(sa, sb)
}

// move performs one unassign-then-assign step and updates members.
func (s *synchronizer) move(ctx context.Context, members memberships, guestID, from, to string) error {
	if s.mover != nil {
		if err := s.mover.MoveGuest(ctx, guestID, from, to); err != nil {
			return err
		}
	} else if err := s.moveStepwise(ctx, members, guestID, from, to); err != nil {
		return err
	}

	if from != "" {
		members[from] = without(members[from], guestID)
	}
	if to != "" {
		members[to] = with(members[to], guestID)
	}
	return nil
}

// moveStepwise runs the three writes of a move in order and compensates the
// earlier ones when a later one fails.
func (s *synchronizer) moveStepwise(ctx context.Context, members memberships, guestID, from, to string) error {
	prevFrom, prevTo := members[from], members[to]
	undoCtx := context.WithoutCancel(ctx)

	afterFrom := prevFrom
	if from != "" {
		afterFrom = without(prevFrom, guestID)
		if err := s.store.SetAssignedGuests(ctx, from, afterFrom); err != nil {
			return err
		}
	}

	var undo []func() error
	if from != "" {
		undo = append(undo, func() error { return s.store.SetAssignedGuests(undoCtx, from, prevFrom) })
	}

	if to != "" {
		base := prevTo
		if to == from {
			base = afterFrom
		}
		if err := s.store.SetAssignedGuests(ctx, to, with(base, guestID)); err != nil {
			return s.compensate(guestID, err, undo)
		}
		if to != from {
			undo = append([]func() error{func() error { return s.store.SetAssignedGuests(undoCtx, to, prevTo) }}, undo...)
		}
	}

	if err := s.store.SetTableAssignment(ctx, guestID, to); err != nil {
		return s.compensate(guestID, err, undo)
	}
	return nil
}

func (s *synchronizer) compensate(guestID string, cause error, undo []func() error) error {
	var errs []error
	for _, fn := range undo {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return cause
	}
	s.logger.Error("Failed to compensate partial guest move", "guest_id", guestID, "error", errors.Join(errs...))
	return errors.Join(append([]error{cause}, errs...)...)
}
