package models

// Constraints configures a single arrangement run.
type Constraints struct {
	// RespectRelationships places guests by (side, relationship) group.
	RespectRelationships bool `json:"respectRelationships" yaml:"respect_relationships" mapstructure:"respect_relationships"`

	// BalanceBrideGroomSides alternates bride and groom units across tables.
	// Only used when RespectRelationships is false.
	BalanceBrideGroomSides bool `json:"balanceBrideGroomSides" yaml:"balance_bride_groom_sides" mapstructure:"balance_bride_groom_sides"`

	// ConsiderDietaryRestrictions reports tables mixing exclusive diets.
	// It never changes placement.
	ConsiderDietaryRestrictions bool `json:"considerDietaryRestrictions" yaml:"consider_dietary_restrictions" mapstructure:"consider_dietary_restrictions"`

	// KeepFamiliesTogether splits an oversized group by guest unit onto as few
	// tables as possible instead of scattering it.
	KeepFamiliesTogether bool `json:"keepFamiliesTogether" yaml:"keep_families_together" mapstructure:"keep_families_together"`

	// OptimizeVenueProximity prefers tables close to tables that already hold
	// members of the same group.
	OptimizeVenueProximity bool `json:"optimizeVenueProximity" yaml:"optimize_venue_proximity" mapstructure:"optimize_venue_proximity"`

	// MaxGuestsPerTable caps the effective capacity of every table. 0 means no cap.
	MaxGuestsPerTable int `json:"maxGuestsPerTable" yaml:"max_guests_per_table" mapstructure:"max_guests_per_table" validate:"gte=0"`

	// MinGuestsPerTable is the advisory underfill threshold. 0 disables it.
	MinGuestsPerTable int `json:"minGuestsPerTable" yaml:"min_guests_per_table" mapstructure:"min_guests_per_table" validate:"gte=0"`

	// PreferredTableDistance is the proximity radius. 0 means unlimited.
	PreferredTableDistance float64 `json:"preferredTableDistance" yaml:"preferred_table_distance" mapstructure:"preferred_table_distance" validate:"gte=0"`

	// Enhanced reserves the first table for Bride, Groom and Parent groups.
	Enhanced bool `json:"enhanced" yaml:"enhanced" mapstructure:"enhanced"`

	// IncludePending makes guests with a pending RSVP eligible for seating.
	IncludePending bool `json:"includePending" yaml:"include_pending" mapstructure:"include_pending"`
}

// DefaultConstraints returns the constraints used when a caller sends none.
func DefaultConstraints() Constraints {
	return Constraints{
		RespectRelationships: true,
		KeepFamiliesTogether: true,
	}
}

// EffectiveCapacity returns the usable seats of a table under these constraints.
func (c Constraints) EffectiveCapacity(t *Table) int {
	if c.MaxGuestsPerTable > 0 && c.MaxGuestsPerTable < t.Capacity {
		return c.MaxGuestsPerTable
	}
	return t.Capacity
}

// Eligible reports whether a guest with the given RSVP status takes part in a run.
func (c Constraints) Eligible(status RSVPStatus) bool {
	if status == RSVPAccepted {
		return true
	}
	return c.IncludePending && status == RSVPPending
}
