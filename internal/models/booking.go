package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// PERSISTED BOOKING MODEL (hotel_bookings table)
// ============================================================================

// HotelBookingStatus represents the lifecycle of a stored booking
// Matches PostgreSQL ENUM: hotel_booking_status
type HotelBookingStatus string

const (
	HotelBookingConfirmed HotelBookingStatus = "confirmed"
	HotelBookingCancelled HotelBookingStatus = "cancelled"
)

// RoomConfirmation is the supplier's per-room confirmation status
type RoomConfirmation struct {
	RoomID             string `json:"room_id"`
	ConfirmationNumber string `json:"confirmation_number"`
	Status             string `json:"status"`
}

// RoomConfirmationList stores per-room confirmations in JSONB
type RoomConfirmationList []RoomConfirmation

func (l RoomConfirmationList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *RoomConfirmationList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed for RoomConfirmationList")
	}
	return json.Unmarshal(bytes, l)
}

// HotelBooking is a confirmed booking persisted for the CRM's list views.
type HotelBooking struct {
	ID         uuid.UUID `json:"id" db:"id"`
	SessionID  uuid.UUID `json:"session_id" db:"session_id"`
	OperatorID uuid.UUID `json:"operator_id" db:"operator_id"`

	HotelID       string `json:"hotel_id" db:"hotel_id"`
	ItineraryCode string `json:"itinerary_code" db:"itinerary_code"`
	TraceID       string `json:"trace_id" db:"trace_id"`

	SupplierConfirmation string               `json:"supplier_confirmation" db:"supplier_confirmation"`
	RoomConfirmations    RoomConfirmationList `json:"room_confirmations" db:"room_confirmations"`

	LeadGuestName string  `json:"lead_guest_name" db:"lead_guest_name"`
	GuestCount    int     `json:"guest_count" db:"guest_count"`
	FinalRate     float64 `json:"final_rate" db:"final_rate"`
	Currency      string  `json:"currency" db:"currency"`

	Status HotelBookingStatus `json:"status" db:"status"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ============================================================================
// REQUEST/RESPONSE STRUCTS
// ============================================================================

// CreateSessionRequest opens a booking session from the itinerary context.
type CreateSessionRequest struct {
	HotelID       string `json:"hotel_id" binding:"required"`
	TraceID       string `json:"trace_id" binding:"required"`
	ItineraryCode string `json:"itinerary_code" binding:"required"`

	Rooms           map[string]RoomDetails              `json:"rooms" binding:"required"`
	Rates           map[string]Rate                     `json:"rates" binding:"required"`
	Occupancies     map[string]Occupancy                `json:"occupancies" binding:"required"`
	Recommendations map[string][]RoomRateRecommendation `json:"recommendations" binding:"required"`
}

// Validate validates the session context beyond binding-level checks
func (r *CreateSessionRequest) Validate() error {
	if len(r.Rates) == 0 {
		return errors.New("at least one rate is required")
	}
	if len(r.Recommendations) == 0 {
		return errors.New("at least one recommendation is required")
	}
	for _, occ := range r.Occupancies {
		if err := occ.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SelectRoomsRequest submits the operator's recommendation choice for the
// initial price check.
type SelectRoomsRequest struct {
	RecommendationID string `json:"recommendation_id" binding:"required"`
}

// SelectRoomsResponse is returned by the initial price check
type SelectRoomsResponse struct {
	SessionID   uuid.UUID          `json:"session_id"`
	Status      WorkflowStatus     `json:"status"`
	TotalAmount float64            `json:"total_amount"`
	Currency    string             `json:"currency"`
	Config      *WorkflowConfig    `json:"config,omitempty"`
	PriceChange *PriceChangeRecord `json:"price_change,omitempty"`
}

// PriceDecisionRequest carries the operator's accept/decline of a drifted
// price reported by the initial price check.
type PriceDecisionRequest struct {
	Accept bool `json:"accept"`
}

// GuestInput is one occupant's form data as entered by the operator.
type GuestInput struct {
	RoomID    string    `json:"room_id" binding:"required"`
	RateID    string    `json:"rate_id" binding:"required"`
	RoomIndex int       `json:"room_index"`
	Type      GuestType `json:"type" binding:"required"`
	Index     int       `json:"index"`

	Title           string `json:"title"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	ISDCode         string `json:"isd_code"`
	ContactNumber   string `json:"contact_number"`
	PAN             string `json:"pan,omitempty"`
	PassportNumber  string `json:"passport_number,omitempty"`
	PassportExpiry  string `json:"passport_expiry,omitempty"`
	Age             int    `json:"age,omitempty"`
	IsLeadGuest     bool   `json:"is_lead_guest"`
	SpecialRequests string `json:"special_requests,omitempty"`
}

// SubmitGuestsRequest carries the full guest form for allocation.
type SubmitGuestsRequest struct {
	Guests []GuestInput `json:"guests" binding:"required,min=1"`
}

// SubmitGuestsResponse is returned after allocation + recheck.
type SubmitGuestsResponse struct {
	SessionID     uuid.UUID          `json:"session_id"`
	Status        WorkflowStatus     `json:"status"`
	ConfirmedRate float64            `json:"confirmed_rate"`
	Currency      string             `json:"currency"`
	PriceChange   *PriceChangeRecord `json:"price_change,omitempty"`
}

// BookRequest finalizes the booking. AcceptNewPrice must be set when the
// session sits in the price-changed state.
type BookRequest struct {
	AcceptNewPrice bool `json:"accept_new_price"`
}

// BookingConfirmation is handed back to the caller on success; the page
// shell uses it to advance its own step indicator.
type BookingConfirmation struct {
	BookingID            uuid.UUID            `json:"booking_id"`
	SessionID            uuid.UUID            `json:"session_id"`
	ItineraryCode        string               `json:"itinerary_code"`
	TraceID              string               `json:"trace_id"`
	SupplierConfirmation string               `json:"supplier_confirmation"`
	RoomConfirmations    RoomConfirmationList `json:"room_confirmations,omitempty"`
	Guests               []*GuestRecord       `json:"guests"`
	FinalRate            float64              `json:"final_rate"`
	Currency             string               `json:"currency"`
}

// SessionStatusResponse is the read-only view of a session
type SessionStatusResponse struct {
	SessionID     uuid.UUID          `json:"session_id"`
	Status        WorkflowStatus     `json:"status"`
	HotelID       string             `json:"hotel_id"`
	TotalAmount   float64            `json:"total_amount"`
	Currency      string             `json:"currency"`
	ConfirmedRate float64            `json:"confirmed_rate,omitempty"`
	RateConfirmed bool               `json:"rate_confirmed"`
	Config        *WorkflowConfig    `json:"config,omitempty"`
	PriceChange   *PriceChangeRecord `json:"price_change,omitempty"`
	ExpiresAt     time.Time          `json:"expires_at"`
	IsExpired     bool               `json:"is_expired"`
}

// CancelHotelBookingRequest represents the request to cancel a booking
type CancelHotelBookingRequest struct {
	CancellationReason *string `json:"cancellation_reason,omitempty"`
}

// ============================================================================
// VALIDATION ERROR
// ============================================================================

// GuestValidationError is returned when the guest form fails validation.
// Fields maps "<roomKey>-<adults|children>-<index>-<field>" to a message;
// the form-level lead-guest error sits under the "leadGuest" key.
type GuestValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *GuestValidationError) Error() string {
	return "guest information failed validation"
}
