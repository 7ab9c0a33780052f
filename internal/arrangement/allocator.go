package arrangement

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/dezmenn/Konfem-RSVP-sub001/internal/models"
)

// Allocator maps eligible guests onto writable tables.
type Allocator struct {
	logger *slog.Logger
}

// NewAllocator creates an allocator. A nil logger falls back to slog.Default.
func NewAllocator(logger *slog.Logger) *Allocator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Allocator{logger: logger}
}

// Allocate computes a plan for the snapshot.
//
// Algorithm:
//   - Relationship mode: each group goes whole into the best-fitting table;
//     oversized groups are split by guest unit when families must stay together.
//   - Side-balance mode: units alternate between bride and groom sides and land
//     where their side is least represented.
//   - Otherwise: units are placed independently by best fit.
//
// Units that fit nowhere are left unassigned with an insufficient-capacity
// conflict. The only error returned is a context error.
func (a *Allocator) Allocate(ctx context.Context, s *Snapshot, groups []Group) (*Plan, error) {
	p := newPlan(s)
	c := s.Constraints
	head := a.reservedHead(p, groups)

	var err error
	switch {
	case c.RespectRelationships:
		err = a.allocateGroups(ctx, p, groups, head)
	case c.BalanceBrideGroomSides:
		err = a.allocateBalanced(ctx, p, s.Eligible, head)
	default:
		err = a.allocateUnits(ctx, p, s.Eligible, head)
	}
	if err != nil {
		return nil, err
	}

	a.logger.Debug("Allocation finished",
		"eligible", len(s.Eligible),
		"frozen", len(s.Frozen),
		"unplaced", len(p.Unplaced),
	)
	return p, nil
}

// reservedHead returns the head table in enhanced mode, or nil when the mode is
// off or no immediate-family party fits it. A party is a whole group in
// relationship mode and a single guest unit otherwise.
func (a *Allocator) reservedHead(p *Plan, groups []Group) *TableState {
	if !p.Snapshot.Constraints.Enhanced {
		return nil
	}
	writable := p.writable()
	if len(writable) == 0 {
		return nil
	}
	head := writable[0]
	wholeGroups := p.Snapshot.Constraints.RespectRelationships

	for _, g := range groups {
		if !g.Key.Relationship.IsImmediateFamily() {
			continue
		}
		if wholeGroups {
			if g.TotalSeats <= head.Remaining() {
				return head
			}
			continue
		}
		for _, m := range g.Members {
			if m.SeatDemand() <= head.Remaining() {
				return head
			}
		}
	}
	a.logger.Debug("Head table left open", "table", head.Table.Name)
	return nil
}

func (a *Allocator) allocateGroups(ctx context.Context, p *Plan, groups []Group, head *TableState) error {
	placed := make(map[GroupKey]bool)

	// Immediate family claims the head table before anyone else is seated.
	if head != nil {
		for _, g := range groups {
			if !g.Key.Relationship.IsImmediateFamily() || head.Remaining() < g.TotalSeats {
				continue
			}
			for _, m := range g.Members {
				p.place(head, m)
			}
			placed[g.Key] = true
			a.logger.Debug("Group seated at head table", "group", g.Key.String(), "table", head.Table.Name)
		}
	}

	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return err
		}
		if placed[g.Key] {
			continue
		}

		exclude := head
		if g.Key.Relationship.IsImmediateFamily() {
			exclude = nil
		}
		if t := a.pickTable(p, g.TotalSeats, g.Key, exclude); t != nil {
			for _, m := range g.Members {
				p.place(t, m)
			}
			a.logger.Debug("Group seated", "group", g.Key.String(), "table", t.Table.Name, "seats", g.TotalSeats)
			continue
		}

		if p.Snapshot.Constraints.KeepFamiliesTogether {
			a.splitGroup(p, g)
			continue
		}
		for _, m := range g.Members {
			a.placeUnit(p, m, exclude)
		}
	}
	return nil
}

// splitGroup pours a group's units into the roomiest tables, one table at a
// time, so the group lands on as few tables as possible.
func (a *Allocator) splitGroup(p *Plan, g Group) {
	pending := append([]*models.Guest(nil), g.Members...)
	used := make(map[string]bool)

	for len(pending) > 0 {
		t := roomiestFitting(p.writable(), pending)
		if t == nil {
			break
		}
		var rest []*models.Guest
		for _, m := range pending {
			if m.SeatDemand() <= t.Remaining() {
				p.place(t, m)
				used[t.Table.ID] = true
				continue
			}
			rest = append(rest, m)
		}
		pending = rest
	}

	for _, m := range pending {
		p.unplaced(m)
	}

	if len(used) > 1 {
		conflict := models.NewConflict(models.ConflictGroupSplit,
			fmt.Sprintf("relationship group split across %d tables: %s", len(used), g.Key))
		conflict.GuestIDs = guestIDs(g.Members)
		p.Conflicts = append(p.Conflicts, conflict)
		a.logger.Debug("Group split", "group", g.Key.String(), "tables", len(used))
	}
}

// roomiestFitting returns the table with the most free seats that can take at
// least one pending unit. Ties keep table order.
func roomiestFitting(tables []*TableState, pending []*models.Guest) *TableState {
	smallest := math.MaxInt
	for _, m := range pending {
		if m.SeatDemand() < smallest {
			smallest = m.SeatDemand()
		}
	}
	var best *TableState
	for _, t := range tables {
		if t.Remaining() < smallest {
			continue
		}
		if best == nil || t.Remaining() > best.Remaining() {
			best = t
		}
	}
	return best
}

func (a *Allocator) allocateUnits(ctx context.Context, p *Plan, guests []*models.Guest, head *TableState) error {
	units := append([]*models.Guest(nil), guests...)
	sortUnits(units)
	for _, g := range units {
		if err := ctx.Err(); err != nil {
			return err
		}
		a.placeUnit(p, g, headFor(g, head))
	}
	return nil
}

func (a *Allocator) allocateBalanced(ctx context.Context, p *Plan, guests []*models.Guest, head *TableState) error {
	queues := map[models.Side][]*models.Guest{}
	var sideless []*models.Guest
	for _, g := range guests {
		if !g.Side.Valid() {
			sideless = append(sideless, g)
			continue
		}
		queues[g.Side] = append(queues[g.Side], g)
	}
	for side := range queues {
		sortUnits(queues[side])
	}
	sortUnits(sideless)

	seated := map[models.Side]int{}
	for len(queues[models.SideBride])+len(queues[models.SideGroom]) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		side := models.SideBride
		if seated[models.SideGroom] < seated[models.SideBride] {
			side = models.SideGroom
		}
		if len(queues[side]) == 0 {
			side = side.Other()
		}

		g := queues[side][0]
		queues[side] = queues[side][1:]

		t := a.pickBalanced(p, g, headFor(g, head))
		if t == nil {
			p.unplaced(g)
			continue
		}
		p.place(t, g)
		seated[side] += g.SeatDemand()
	}

	for _, g := range sideless {
		a.placeUnit(p, g, headFor(g, head))
	}
	return nil
}

// pickBalanced chooses the fitting table where the guest's side is least
// represented relative to the other side. Ties go to the roomiest table,
// then table order.
func (a *Allocator) pickBalanced(p *Plan, g *models.Guest, exclude *TableState) *TableState {
	candidates := fitting(p.writable(), g.SeatDemand(), exclude)
	if len(candidates) == 0 && exclude != nil {
		candidates = fitting(p.writable(), g.SeatDemand(), nil)
	}

	var best *TableState
	bestSkew := 0
	for _, t := range candidates {
		skew := t.sideSeats(g.Side) - t.sideSeats(g.Side.Other())
		if best == nil || skew < bestSkew || (skew == bestSkew && t.Remaining() > best.Remaining()) {
			best, bestSkew = t, skew
		}
	}
	return best
}

// placeUnit seats one guest by best fit or records it as unplaced.
func (a *Allocator) placeUnit(p *Plan, g *models.Guest, exclude *TableState) {
	t := a.pickTable(p, g.SeatDemand(), KeyOf(g), exclude)
	if t == nil {
		p.unplaced(g)
		return
	}
	p.place(t, g)
}

// pickTable selects a writable table with at least seats free.
//
// Preference order:
//  1. with proximity optimization, the fitting table nearest to a table that
//     already holds members of the group, within the preferred distance;
//  2. the fitting table with the fewest free seats (best fit);
//  3. table order as the tie-break.
//
// The excluded table is only used when nothing else fits.
func (a *Allocator) pickTable(p *Plan, seats int, key GroupKey, exclude *TableState) *TableState {
	candidates := fitting(p.writable(), seats, exclude)
	if len(candidates) == 0 && exclude != nil {
		candidates = fitting(p.writable(), seats, nil)
	}
	if len(candidates) == 0 {
		return nil
	}

	c := p.Snapshot.Constraints
	if c.OptimizeVenueProximity {
		if t := nearestToGroup(p, candidates, key, c.PreferredTableDistance); t != nil {
			return t
		}
	}

	best := candidates[0]
	for _, t := range candidates[1:] {
		if t.Remaining() < best.Remaining() {
			best = t
		}
	}
	return best
}

// nearestToGroup returns the candidate closest to any table holding members of
// the group, or nil when no such table exists or none is within maxDistance.
// A maxDistance of zero means unlimited.
func nearestToGroup(p *Plan, candidates []*TableState, key GroupKey, maxDistance float64) *TableState {
	var anchors []*TableState
	for _, t := range p.Tables {
		if t.holds(key) {
			anchors = append(anchors, t)
		}
	}
	if len(anchors) == 0 {
		return nil
	}

	var best *TableState
	bestDistance := math.Inf(1)
	for _, t := range candidates {
		d := math.Inf(1)
		for _, anchor := range anchors {
			d = math.Min(d, t.Table.Position.Distance(anchor.Table.Position))
		}
		if maxDistance > 0 && d > maxDistance {
			continue
		}
		if best == nil || d < bestDistance || (d == bestDistance && t.Remaining() < best.Remaining()) {
			best, bestDistance = t, d
		}
	}
	return best
}

// fitting filters tables with at least seats free, keeping table order.
func fitting(tables []*TableState, seats int, exclude *TableState) []*TableState {
	var out []*TableState
	for _, t := range tables {
		if t == exclude {
			continue
		}
		if t.Remaining() >= seats {
			out = append(out, t)
		}
	}
	return out
}

// headFor returns the table a guest must avoid: the reserved head table unless
// the guest is immediate family.
func headFor(g *models.Guest, head *TableState) *TableState {
	if head == nil || g.RelationshipType.IsImmediateFamily() {
		return nil
	}
	return head
}

// unplaced records a guest that could not be seated.
func (p *Plan) unplaced(g *models.Guest) {
	p.Unplaced = append(p.Unplaced, g)
	conflict := models.NewConflict(models.ConflictInsufficientCapacity,
		fmt.Sprintf("insufficient venue capacity: %s needs %d seats", g.Name, g.SeatDemand()))
	conflict.GuestIDs = []string{g.ID}
	p.Conflicts = append(p.Conflicts, conflict)
}
