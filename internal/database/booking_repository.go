package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sortyourtrip/hotel-crm-backend/internal/models"
)

// BookingRepository handles database operations for the hotel_bookings table
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// CreateBooking stores a confirmed booking
func (r *BookingRepository) CreateBooking(booking *models.HotelBooking) error {
	query := `
		INSERT INTO hotel_bookings (
			id, session_id, operator_id, hotel_id, itinerary_code, trace_id,
			supplier_confirmation, room_confirmations, lead_guest_name,
			guest_count, final_rate, currency, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
		RETURNING created_at, updated_at
	`

	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}

	err := r.db.QueryRow(
		query,
		booking.ID, booking.SessionID, booking.OperatorID, booking.HotelID,
		booking.ItineraryCode, booking.TraceID, booking.SupplierConfirmation,
		booking.RoomConfirmations, booking.LeadGuestName,
		booking.GuestCount, booking.FinalRate, booking.Currency, booking.Status,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create hotel booking: %w", err)
	}

	return nil
}

// GetBookingByID retrieves a booking by id. Returns (nil, nil) when no row
// matches.
func (r *BookingRepository) GetBookingByID(id uuid.UUID) (*models.HotelBooking, error) {
	query := `
		SELECT id, session_id, operator_id, hotel_id, itinerary_code, trace_id,
		       supplier_confirmation, room_confirmations, lead_guest_name,
		       guest_count, final_rate, currency, status, created_at, updated_at
		FROM hotel_bookings
		WHERE id = $1
	`

	var booking models.HotelBooking
	err := r.db.Get(&booking, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hotel booking: %w", err)
	}

	return &booking, nil
}

// ListBookingsByOperator lists an operator's bookings, newest first
func (r *BookingRepository) ListBookingsByOperator(operatorID uuid.UUID, limit, offset int) ([]models.HotelBooking, error) {
	query := `
		SELECT id, session_id, operator_id, hotel_id, itinerary_code, trace_id,
		       supplier_confirmation, room_confirmations, lead_guest_name,
		       guest_count, final_rate, currency, status, created_at, updated_at
		FROM hotel_bookings
		WHERE operator_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	bookings := []models.HotelBooking{}
	err := r.db.Select(&bookings, query, operatorID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list hotel bookings: %w", err)
	}

	return bookings, nil
}

// UpdateBookingStatus moves a booking to a new lifecycle status
func (r *BookingRepository) UpdateBookingStatus(id uuid.UUID, status models.HotelBookingStatus) error {
	query := `
		UPDATE hotel_bookings
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := r.db.Exec(query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("booking %s not found", id)
	}

	return nil
}
