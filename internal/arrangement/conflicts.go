package arrangement

import (
	"fmt"
	"strings"

	"github.com/dezmenn/Konfem-RSVP-sub001/internal/models"
)

// exclusiveDiets lists restriction pairs that cannot share a table's service.
var exclusiveDiets = [][2]string{
	{"kosher", "halal"},
	{"vegan", "carnivore"},
	{"vegan", "paleo"},
	{"vegetarian", "carnivore"},
}

// inspect raises the post-allocation conflicts: over-capacity tables,
// underfilled tables and, when requested, dietary mixes.
func inspect(p *Plan) []models.Conflict {
	c := p.Snapshot.Constraints
	var conflicts []models.Conflict

	for _, t := range p.Tables {
		if t.Occupied > t.Table.Capacity {
			conflict := models.NewConflict(models.ConflictOverCapacity,
				fmt.Sprintf("table over capacity: %s seats %d of %d", t.Table.Name, t.Occupied, t.Table.Capacity))
			conflict.TableID = t.Table.ID
			conflict.GuestIDs = guestIDs(t.Guests)
			conflicts = append(conflicts, conflict)
		}
	}

	if c.MinGuestsPerTable > 0 {
		for _, t := range p.Tables {
			if t.Occupied > 0 && t.Occupied < c.MinGuestsPerTable {
				conflict := models.NewConflict(models.ConflictUnderfilledTable,
					fmt.Sprintf("underfilled table: %s seats %d, minimum is %d", t.Table.Name, t.Occupied, c.MinGuestsPerTable))
				conflict.TableID = t.Table.ID
				conflicts = append(conflicts, conflict)
			}
		}
	}

	if c.ConsiderDietaryRestrictions {
		for _, t := range p.Tables {
			conflicts = append(conflicts, dietaryMixes(t)...)
		}
	}

	return conflicts
}

// dietaryMixes reports each exclusive restriction pair present at a table.
func dietaryMixes(t *TableState) []models.Conflict {
	holders := make(map[string][]string)
	for _, g := range t.Guests {
		seen := make(map[string]bool)
		for _, r := range g.DietaryRestrictions {
			r = strings.ToLower(strings.TrimSpace(r))
			if r == "" || seen[r] {
				continue
			}
			seen[r] = true
			holders[r] = append(holders[r], g.ID)
		}
	}

	var conflicts []models.Conflict
	for _, pair := range exclusiveDiets {
		a, b := holders[pair[0]], holders[pair[1]]
		if len(a) == 0 || len(b) == 0 || (len(a) == 1 && len(b) == 1 && a[0] == b[0]) {
			continue
		}
		conflict := models.NewConflict(models.ConflictDietaryMix,
			fmt.Sprintf("table %s mixes exclusive dietary restrictions: %s/%s", t.Table.Name, pair[0], pair[1]))
		conflict.TableID = t.Table.ID
		conflict.GuestIDs = mergeIDs(a, b)
		conflicts = append(conflicts, conflict)
	}
	return conflicts
}

func mergeIDs(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, id := range append(append([]string(nil), a...), b...) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
