package models

import (
	"fmt"
	"strings"
)

// ============================================================================
// GUEST MODELS
// ============================================================================

// GuestType distinguishes adults from children
type GuestType string

const (
	GuestTypeAdult GuestType = "adult"
	GuestTypeChild GuestType = "child"
)

// GuestKey identifies one selected room slot. Room and rate ids can collide
// across selections, so the slot index is part of the key.
type GuestKey struct {
	RoomID    string
	RateID    string
	RoomIndex int
}

// String renders the key in the form used by field-level validation errors:
// "<roomId>-<rateId>-<roomIndex>"
func (k GuestKey) String() string {
	return fmt.Sprintf("%s-%s-%d", k.RoomID, k.RateID, k.RoomIndex)
}

// FieldErrorKey builds the error-map key for one field of one occupant,
// e.g. "r1-rt1-0-adults-0-contactNumber".
func (k GuestKey) FieldErrorKey(guestType GuestType, index int, field string) string {
	group := "adults"
	if guestType == GuestTypeChild {
		group = "children"
	}
	return fmt.Sprintf("%s-%s-%d-%s", k.String(), group, index, field)
}

// GuestRecord is a person assigned to a room.
type GuestRecord struct {
	Title           string    `json:"title"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Email           string    `json:"email"`
	ISDCode         string    `json:"isd_code"`
	ContactNumber   string    `json:"contact_number"`
	PAN             string    `json:"pan,omitempty"`
	PassportNumber  string    `json:"passport_number,omitempty"`
	PassportExpiry  string    `json:"passport_expiry,omitempty"`
	Type            GuestType `json:"type"`
	Age             int       `json:"age,omitempty"` // children only
	IsLeadGuest     bool      `json:"is_lead_guest"`
	SpecialRequests string    `json:"special_requests,omitempty"`
}

// HasName reports whether both first and last name are present. Only named
// guests are submitted to the supplier during allocation.
func (g *GuestRecord) HasName() bool {
	return strings.TrimSpace(g.FirstName) != "" && strings.TrimSpace(g.LastName) != ""
}

// FullName returns the display name of the guest
func (g *GuestRecord) FullName() string {
	return strings.TrimSpace(g.FirstName + " " + g.LastName)
}

// RoomGuests holds the guest records collected for one room slot.
type RoomGuests struct {
	Adults   []*GuestRecord `json:"adults"`
	Children []*GuestRecord `json:"children"`
}

// Guest returns the record addressed by type and index, or nil.
func (r *RoomGuests) Guest(guestType GuestType, index int) *GuestRecord {
	switch guestType {
	case GuestTypeAdult:
		if index >= 0 && index < len(r.Adults) {
			return r.Adults[index]
		}
	case GuestTypeChild:
		if index >= 0 && index < len(r.Children) {
			return r.Children[index]
		}
	}
	return nil
}

// GuestRef points at a single occupant across the whole session.
type GuestRef struct {
	Key   GuestKey  `json:"key"`
	Type  GuestType `json:"type"`
	Index int       `json:"index"`
}
