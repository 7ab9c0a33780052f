// Package rpc defines the seating.v1.SeatingService wire messages and the
// Connect handler and client for them. Messages travel as JSON.
package rpc

import "github.com/dezmenn/Konfem-RSVP-sub001/internal/models"

// ArrangeRequest starts an arrangement run. Constraints, when present, win
// over Preset; with neither the default constraints apply.
type ArrangeRequest struct {
	EventID     string              `json:"eventId" validate:"required"`
	Preset      string              `json:"preset,omitempty"`
	Constraints *models.Constraints `json:"constraints,omitempty"`
}

type ArrangeResponse struct {
	Success         bool              `json:"success"`
	Message         string            `json:"message"`
	State           string            `json:"state"`
	ArrangedGuests  int               `json:"arrangedGuests"`
	Score           float64           `json:"score"`
	Conflicts       []Conflict        `json:"conflicts"`
	Assignments     []TableAssignment `json:"assignments"`
	SyncedGuests    int               `json:"syncedGuests"`
	AttemptedGuests int               `json:"attemptedGuests"`
}

type Conflict struct {
	Kind     string   `json:"kind"`
	Severity string   `json:"severity"`
	Message  string   `json:"message"`
	TableID  string   `json:"tableId,omitempty"`
	GuestIDs []string `json:"guestIds,omitempty"`
}

type TableAssignment struct {
	TableID   string   `json:"tableId"`
	TableName string   `json:"tableName"`
	GuestIDs  []string `json:"guestIds"`
}

type ValidateRequest struct {
	EventID string `json:"eventId" validate:"required"`
}

type ValidateResponse struct {
	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Notes    []string `json:"notes"`
}

type AssignGuestRequest struct {
	EventID string `json:"eventId" validate:"required"`
	GuestID string `json:"guestId" validate:"required"`
	TableID string `json:"tableId" validate:"required"`
}

type AssignGuestResponse struct{}

type UnassignGuestRequest struct {
	EventID string `json:"eventId" validate:"required"`
	GuestID string `json:"guestId" validate:"required"`
}

type UnassignGuestResponse struct{}

type SetTableLockRequest struct {
	EventID string `json:"eventId" validate:"required"`
	TableID string `json:"tableId" validate:"required"`
	Locked  bool   `json:"locked"`
}

type SetTableLockResponse struct{}

type GetChartRequest struct {
	EventID string `json:"eventId" validate:"required"`
}

type GetChartResponse struct {
	EventID       string       `json:"eventId"`
	EventName     string       `json:"eventName"`
	Tables        []ChartTable `json:"tables"`
	Unassigned    []Guest      `json:"unassigned"`
	TotalSeats    int          `json:"totalSeats"`
	TotalCapacity int          `json:"totalCapacity"`
}

type ChartTable struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Capacity int     `json:"capacity"`
	Locked   bool    `json:"locked"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Seats    int     `json:"seats"`
	Guests   []Guest `json:"guests"`
}

type Guest struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	RelationshipType     string   `json:"relationshipType"`
	Side                 string   `json:"side"`
	RSVPStatus           string   `json:"rsvpStatus"`
	AdditionalGuestCount int      `json:"additionalGuestCount"`
	DietaryRestrictions  []string `json:"dietaryRestrictions,omitempty"`
}

// GetEventID returns the event the request targets. Every request message
// has one, so interceptors can tag logs without knowing the procedure.
func (r *ArrangeRequest) GetEventID() string { return r.EventID }

func (r *ValidateRequest) GetEventID() string { return r.EventID }

func (r *AssignGuestRequest) GetEventID() string { return r.EventID }

func (r *UnassignGuestRequest) GetEventID() string { return r.EventID }

func (r *SetTableLockRequest) GetEventID() string { return r.EventID }

func (r *GetChartRequest) GetEventID() string { return r.EventID }
