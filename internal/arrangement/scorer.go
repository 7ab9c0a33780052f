package arrangement

import (
	"sort"

	"github.com/dezmenn/Konfem-RSVP-sub001/internal/models"
)

// Weights blends the score components.
type Weights struct {
	Purity   float64 `yaml:"purity"`
	Fill     float64 `yaml:"fill"`
	Capacity float64 `yaml:"capacity"`
}

// DefaultWeights returns the reference blend 0.5·purity + 0.3·fill + 0.2·capacity.
func DefaultWeights() Weights {
	return Weights{Purity: 0.5, Fill: 0.3, Capacity: 0.2}
}

// Report is the evaluation of a plan.
type Report struct {
	Score     float64
	Conflicts []models.Conflict

	// Purity is the fraction of occupied tables seating a single relationship group.
	Purity float64

	// FillRatio is the fraction of demanded seats that were seated.
	FillRatio float64

	// OverCapacityRatio is the fraction of tables named by an error conflict.
	OverCapacityRatio float64
}

// Evaluate scores a plan and collects its conflicts, errors first.
//
// The score is monotonic in purity, fill ratio and the share of tables free of
// error conflicts. Weights are normalized so the result stays within [0, 1].
func Evaluate(p *Plan, w Weights) Report {
	conflicts := append(append([]models.Conflict(nil), p.Conflicts...), inspect(p)...)
	sort.SliceStable(conflicts, func(i, j int) bool {
		return conflicts[i].Severity == models.SeverityError && conflicts[j].Severity != models.SeverityError
	})

	r := Report{Conflicts: conflicts}

	occupied, pure := 0, 0
	for _, t := range p.Tables {
		if len(t.Guests) == 0 {
			continue
		}
		occupied++
		if singleGroup(t.Guests) {
			pure++
		}
	}

	demand, seated := 0, 0
	for _, g := range p.Snapshot.Eligible {
		demand += g.SeatDemand()
		if _, ok := p.Assignments[g.ID]; ok {
			seated += g.SeatDemand()
		}
	}
	for _, g := range p.Snapshot.FrozenGuests() {
		demand += g.SeatDemand()
		seated += g.SeatDemand()
	}

	switch {
	case occupied > 0:
		r.Purity = float64(pure) / float64(occupied)
	case demand == 0:
		r.Purity = 1
	}

	r.FillRatio = 1
	if demand > 0 {
		r.FillRatio = float64(seated) / float64(demand)
	}

	errorTables := make(map[string]bool)
	for _, c := range conflicts {
		if c.Severity == models.SeverityError && c.TableID != "" {
			errorTables[c.TableID] = true
		}
	}
	if len(p.Tables) > 0 {
		r.OverCapacityRatio = float64(len(errorTables)) / float64(len(p.Tables))
	}

	r.Score = blend(w, r.Purity, r.FillRatio, 1-r.OverCapacityRatio)
	return r
}

func blend(w Weights, purity, fill, capacity float64) float64 {
	total := w.Purity + w.Fill + w.Capacity
	if total <= 0 {
		w, total = DefaultWeights(), 1
	}
	score := (w.Purity*purity + w.Fill*fill + w.Capacity*capacity) / total
	return min(max(score, 0), 1)
}

func singleGroup(guests []*models.Guest) bool {
	for _, g := range guests[1:] {
		if KeyOf(g) != KeyOf(guests[0]) {
			return false
		}
	}
	return true
}
