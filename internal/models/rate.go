package models

import (
	"errors"
	"fmt"
)

// ============================================================================
// RATE & RECOMMENDATION MODELS (read-only, owned by the itinerary response)
// ============================================================================

// Rate is a priced offer for a room. A Rate is immutable once fetched from
// the supplier; a later price recheck supersedes it, it is never mutated.
type Rate struct {
	ID                   string                   `json:"id"`
	RoomID               string                   `json:"room_id"`
	BaseRate             float64                  `json:"base_rate"`
	TaxAmount            float64                  `json:"tax_amount"`
	FinalRate            float64                  `json:"final_rate"`
	Currency             string                   `json:"currency"`
	Refundable           bool                     `json:"refundable"`
	BoardBasis           string                   `json:"board_basis"`
	CancellationPolicies []CancellationPolicyRule `json:"cancellation_policies,omitempty"`
}

// CancellationPolicyRule is one time-windowed penalty rule. Rules are kept
// in the supplier's order (earliest window first).
type CancellationPolicyRule struct {
	FromDate      string  `json:"from_date"`
	ToDate        string  `json:"to_date"`
	PenaltyAmount float64 `json:"penalty_amount"`
	Currency      string  `json:"currency"`
}

// RoomRateRecommendation identifies a combination of room + rate options
// available for a stay. All rate ids in a recommendation must resolve to
// valid rates sharing the same stay dates.
type RoomRateRecommendation struct {
	ID      string   `json:"id"`
	GroupID string   `json:"group_id"`
	RateIDs []string `json:"rate_ids"`
}

// RoomDetails is the display snapshot of a room, carried into the
// selection so the voucher can be rendered without another lookup.
type RoomDetails struct {
	RoomID      string `json:"room_id"`
	RoomName    string `json:"room_name"`
	Description string `json:"description,omitempty"`
	BoardBasis  string `json:"board_basis,omitempty"`
}

// Occupancy describes who is staying in a specific room.
type Occupancy struct {
	RoomID    string `json:"room_id"`
	Adults    int    `json:"adults"`
	ChildAges []int  `json:"child_ages,omitempty"`
}

// ErrNoAdults indicates an occupancy without at least one adult
var ErrNoAdults = errors.New("occupancy must include at least one adult")

// Validate checks the occupancy invariants
func (o Occupancy) Validate() error {
	if o.Adults < 1 {
		return ErrNoAdults
	}
	for _, age := range o.ChildAges {
		if age < 1 || age > 17 {
			return fmt.Errorf("child age %d is outside the allowed range 1-17", age)
		}
	}
	return nil
}

// ChildCount returns the declared number of children. The child-ages list
// is the source of truth, its length is the child count.
func (o Occupancy) ChildCount() int {
	return len(o.ChildAges)
}

// SelectedRoom is one resolved room/rate pair of the operator's selection.
type SelectedRoom struct {
	RateID      string      `json:"rate_id"`
	RoomID      string      `json:"room_id"`
	Occupancy   Occupancy   `json:"occupancy"`
	RoomDetails RoomDetails `json:"room_details"`
}
