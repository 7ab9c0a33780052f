package models

// RelationshipType describes how a guest relates to the couple.
type RelationshipType string

const (
	RelationshipBride       RelationshipType = "Bride"
	RelationshipGroom       RelationshipType = "Groom"
	RelationshipParent      RelationshipType = "Parent"
	RelationshipSibling     RelationshipType = "Sibling"
	RelationshipGrandparent RelationshipType = "Grandparent"
	RelationshipUncle       RelationshipType = "Uncle"
	RelationshipAunt        RelationshipType = "Aunt"
	RelationshipCousin      RelationshipType = "Cousin"
	RelationshipFriend      RelationshipType = "Friend"
	RelationshipColleague   RelationshipType = "Colleague"
	RelationshipOther       RelationshipType = "Other"
)

// RelationshipTypes lists every known relationship type.
var RelationshipTypes = []RelationshipType{
	RelationshipBride,
	RelationshipGroom,
	RelationshipParent,
	RelationshipSibling,
	RelationshipGrandparent,
	RelationshipUncle,
	RelationshipAunt,
	RelationshipCousin,
	RelationshipFriend,
	RelationshipColleague,
	RelationshipOther,
}

// Valid reports whether r is one of the known relationship types.
func (r RelationshipType) Valid() bool {
	switch r {
	case RelationshipBride, RelationshipGroom, RelationshipParent, RelationshipSibling,
		RelationshipGrandparent, RelationshipUncle, RelationshipAunt, RelationshipCousin,
		RelationshipFriend, RelationshipColleague, RelationshipOther:
		return true
	}
	return false
}

// IsImmediateFamily reports whether guests of this type get head-table priority.
func (r RelationshipType) IsImmediateFamily() bool {
	switch r {
	case RelationshipBride, RelationshipGroom, RelationshipParent:
		return true
	}
	return false
}

// Side is the half of the couple a guest was invited by.
type Side string

const (
	SideBride Side = "bride"
	SideGroom Side = "groom"
)

// Valid reports whether s is bride or groom.
func (s Side) Valid() bool {
	return s == SideBride || s == SideGroom
}

// Other returns the opposite side.
func (s Side) Other() Side {
	if s == SideBride {
		return SideGroom
	}
	return SideBride
}

// RSVPStatus is the state of a guest's invitation response.
type RSVPStatus string

const (
	RSVPAccepted   RSVPStatus = "accepted"
	RSVPDeclined   RSVPStatus = "declined"
	RSVPPending    RSVPStatus = "pending"
	RSVPNotInvited RSVPStatus = "not_invited"
)

// Valid reports whether s is a known RSVP status.
func (s RSVPStatus) Valid() bool {
	switch s {
	case RSVPAccepted, RSVPDeclined, RSVPPending, RSVPNotInvited:
		return true
	}
	return false
}

// Guest represents an invited person.
// A guest with additional guests (plus-ones, children) is placed as one unit:
// all of their seats land at the same table.
type Guest struct {
	// ID is the unique identifier for the guest (UUID format).
	ID string

	// EventID is the event this guest belongs to.
	EventID string

	// Name is the display name of the guest.
	Name string

	// RelationshipType describes how the guest relates to the couple.
	RelationshipType RelationshipType

	// Side is the half of the couple that invited the guest.
	Side Side

	// RSVPStatus is the guest's invitation response.
	RSVPStatus RSVPStatus

	// AdditionalGuestCount is the number of extra seats the guest brings.
	AdditionalGuestCount int

	// DietaryRestrictions is the set of restrictions declared by the guest
	// (e.g., "vegan", "halal"). Duplicates are ignored.
	DietaryRestrictions []string

	// TableAssignment is a back-reference to the table holding this guest.
	// Empty when the guest is unassigned. Table.AssignedGuests is authoritative.
	TableAssignment string

	// CreatedAt is the Unix timestamp when the guest was created.
	CreatedAt int64
}

// SeatDemand returns the number of seats this guest occupies.
func (g *Guest) SeatDemand() int {
	return 1 + g.AdditionalGuestCount
}

// IsAssigned reports whether the guest has a table back-reference.
func (g *Guest) IsAssigned() bool {
	return g.TableAssignment != ""
}
