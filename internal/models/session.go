package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// WORKFLOW STATUS STATE MACHINE
// ============================================================================

// WorkflowStatus is the submission status of a booking session. Transitions
// are restricted to the legal set below; anything else is rejected, so an
// illegal jump (e.g. booking -> submitting) cannot happen silently.
type WorkflowStatus string

const (
	// StatusIdle is the resting state: before selection, during guest entry,
	// and after any recoverable failure of allocation or recheck.
	StatusIdle WorkflowStatus = "idle"
	// StatusSelectionPriceChanged means the initial price check reported drift;
	// the operator must accept or decline before guest entry opens.
	StatusSelectionPriceChanged WorkflowStatus = "selection_price_changed"
	// StatusSubmitting means a guest allocation call is in flight.
	StatusSubmitting WorkflowStatus = "submitting"
	// StatusRechecking means the post-allocation price recheck is in flight.
	StatusRechecking WorkflowStatus = "rechecking"
	// StatusPriceChanged means the recheck reported drift; explicit accept required.
	StatusPriceChanged WorkflowStatus = "price_changed"
	// StatusReadyToBook means the recheck confirmed the price; booking may proceed.
	StatusReadyToBook WorkflowStatus = "ready_to_book"
	// StatusBooking means the final book call is in flight.
	StatusBooking WorkflowStatus = "booking"
	// StatusCompleted means the booking is confirmed; terminal.
	StatusCompleted WorkflowStatus = "completed"
)

// legalTransitions defines every allowed status change. Booking failures
// revert to whichever confirmed state was active before the attempt, never
// to idle, so the operator can retry without redoing allocation.
var legalTransitions = map[WorkflowStatus][]WorkflowStatus{
	StatusIdle:                  {StatusSelectionPriceChanged, StatusSubmitting},
	StatusSelectionPriceChanged: {StatusIdle},
	StatusSubmitting:            {StatusRechecking, StatusIdle},
	StatusRechecking:            {StatusPriceChanged, StatusReadyToBook, StatusIdle},
	StatusPriceChanged:          {StatusBooking},
	StatusReadyToBook:           {StatusBooking},
	StatusBooking:               {StatusCompleted, StatusPriceChanged, StatusReadyToBook},
	StatusCompleted:             {},
}

// CanTransition reports whether from -> to is a legal status change
func CanTransition(from, to WorkflowStatus) bool {
	for _, allowed := range legalTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsBusy reports whether a network call is in flight for this status.
// Submission triggers are no-ops while busy.
func (s WorkflowStatus) IsBusy() bool {
	return s == StatusSubmitting || s == StatusRechecking || s == StatusBooking
}

// ============================================================================
// WORKFLOW CONFIG & PRICE CHANGE
// ============================================================================

// WorkflowConfig carries the server-supplied mandatory-field flags returned
// by the initial price check. It is fixed once for the session and treated
// as immutable afterwards.
type WorkflowConfig struct {
	PanMandatory      bool `json:"pan_mandatory"`
	PassportMandatory bool `json:"passport_mandatory"`
}

// PriceChangeRecord is the result of one price recheck. A fresh record is
// created on every recheck call; records are never merged.
type PriceChangeRecord struct {
	IsPriceChanged bool    `json:"is_price_changed"`
	PreviousTotal  float64 `json:"previous_total"`
	CurrentTotal   float64 `json:"current_total"`
	Delta          float64 `json:"delta"`
	Currency       string  `json:"currency"`
}

// ============================================================================
// BOOKING SESSION
// ============================================================================

var (
	// ErrIllegalTransition indicates a status change outside the legal set
	ErrIllegalTransition = errors.New("illegal workflow status transition")

	// ErrGuestNotFound indicates a lead-guest reference to a missing occupant
	ErrGuestNotFound = errors.New("guest not found")

	// ErrLeadGuestNotAdult indicates an attempt to flag a child as lead guest
	ErrLeadGuestNotAdult = errors.New("lead guest must be an adult")
)

// BookingSession aggregates everything the confirmation workflow needs for
// one hotel booking. It is created when the operator opens room selection
// and discarded on close or successful booking. The session is owned
// exclusively by the workflow service; nothing else mutates it.
type BookingSession struct {
	ID         uuid.UUID `json:"id"`
	OperatorID uuid.UUID `json:"operator_id"`
	HotelID    string    `json:"hotel_id"`

	// Identifiers captured at workflow start. These are the ones the final
	// book call uses; the supplier may rotate them during allocation, the
	// rotated pair is only valid for the recheck.
	TraceID       string `json:"trace_id"`
	ItineraryCode string `json:"itinerary_code"`

	RotatedTraceID       string `json:"rotated_trace_id,omitempty"`
	RotatedItineraryCode string `json:"rotated_itinerary_code,omitempty"`

	// Read-only search context, owned by the upstream itinerary response.
	Rooms           map[string]RoomDetails              `json:"rooms"`
	Rates           map[string]Rate                     `json:"rates"`
	Occupancies     map[string]Occupancy                `json:"occupancies"`
	Recommendations map[string][]RoomRateRecommendation `json:"recommendations"`

	// Operator selection and collected guest data.
	SelectedRecommendationID string                   `json:"selected_recommendation_id,omitempty"`
	SelectedRooms            []SelectedRoom           `json:"selected_rooms,omitempty"`
	Guests                   map[GuestKey]*RoomGuests `json:"-"`
	LeadGuest                *GuestRef                `json:"lead_guest,omitempty"`

	// Workflow state.
	Config      *WorkflowConfig    `json:"config,omitempty"`
	Status      WorkflowStatus     `json:"status"`
	PriorStatus WorkflowStatus     `json:"-"` // confirmed state to revert to on booking failure
	PriceChange *PriceChangeRecord `json:"price_change,omitempty"`

	// Pricing. ConfirmedRate is only trustworthy while RateConfirmed is set;
	// a failed recheck clears both so a stale figure can never be booked.
	TotalAmount   float64 `json:"total_amount"`
	Currency      string  `json:"currency"`
	ConfirmedRate float64 `json:"confirmed_rate,omitempty"`
	RateConfirmed bool    `json:"rate_confirmed"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired checks if the session has passed its TTL
func (s *BookingSession) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Transition moves the session to a new status, rejecting illegal changes.
func (s *BookingSession) Transition(to WorkflowStatus) error {
	if !CanTransition(s.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, s.Status, to)
	}
	s.Status = to
	return nil
}

// SetLeadGuest flags the referenced adult as the lead guest, silently
// clearing any previously flagged guest. At most one guest across the
// entire session carries the flag at any time.
func (s *BookingSession) SetLeadGuest(ref GuestRef) error {
	room, ok := s.Guests[ref.Key]
	if !ok {
		return ErrGuestNotFound
	}
	guest := room.Guest(ref.Type, ref.Index)
	if guest == nil {
		return ErrGuestNotFound
	}
	if guest.Type != GuestTypeAdult {
		return ErrLeadGuestNotAdult
	}

	s.clearLeadGuest()
	guest.IsLeadGuest = true
	s.LeadGuest = &ref
	return nil
}

func (s *BookingSession) clearLeadGuest() {
	for _, room := range s.Guests {
		for _, g := range room.Adults {
			g.IsLeadGuest = false
		}
		for _, g := range room.Children {
			g.IsLeadGuest = false
		}
	}
	s.LeadGuest = nil
}

// AllGuests flattens adults and children across all rooms, adults first
// within each room, iterating rooms in selection order.
func (s *BookingSession) AllGuests() []*GuestRecord {
	var out []*GuestRecord
	for i, room := range s.SelectedRooms {
		key := GuestKey{RoomID: room.RoomID, RateID: room.RateID, RoomIndex: i}
		guests, ok := s.Guests[key]
		if !ok {
			continue
		}
		out = append(out, guests.Adults...)
		out = append(out, guests.Children...)
	}
	return out
}

// ClearSelection discards the room selection and everything derived from
// it. Used when an initial price check fails or its drift is declined.
func (s *BookingSession) ClearSelection() {
	s.SelectedRecommendationID = ""
	s.SelectedRooms = nil
	s.Config = nil
	s.PriceChange = nil
	s.TotalAmount = 0
	s.RateConfirmed = false
	s.ConfirmedRate = 0
}
