package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sortyourtrip/hotel-crm-backend/internal/models"
	"github.com/sortyourtrip/hotel-crm-backend/internal/supplier"
	"github.com/sortyourtrip/hotel-crm-backend/pkg/validator"
)

var (
	// ErrNoSelection indicates a workflow step that needs a room selection
	ErrNoSelection = errors.New("no room selection in this session")

	// ErrMissingIdentifiers indicates the session lacks trace/itinerary context
	ErrMissingIdentifiers = errors.New("session is missing trace id or itinerary code")

	// ErrInvalidWorkflowState indicates the operation is not legal in the
	// session's current status
	ErrInvalidWorkflowState = errors.New("operation not allowed in current workflow state")

	// ErrNoPendingPriceChange indicates an accept/decline without a pending drift
	ErrNoPendingPriceChange = errors.New("no pending price change to respond to")

	// ErrPriceNotAccepted indicates a book attempt on a drifted price without
	// explicit acceptance
	ErrPriceNotAccepted = errors.New("the new price must be accepted before booking")

	// ErrRateNotConfirmed indicates a book attempt without a trusted recheck
	ErrRateNotConfirmed = errors.New("price has not been confirmed by a recheck")

	// ErrNoGuestsToAllocate indicates every room dropped out of allocation
	ErrNoGuestsToAllocate = errors.New("no rooms with named guests to allocate")

	// ErrUnknownGuestSlot indicates guest input addressed a non-existent occupant
	ErrUnknownGuestSlot = errors.New("guest input does not match any occupant slot")

	// ErrBookingNotFound indicates an unknown booking id
	ErrBookingNotFound = errors.New("booking not found")

	// ErrBookingNotCancellable indicates a cancel attempt on a non-confirmed booking
	ErrBookingNotCancellable = errors.New("booking is not in a cancellable state")
)

// BookingRepository persists confirmed bookings for the CRM's list views
type BookingRepository interface {
	CreateBooking(booking *models.HotelBooking) error
	GetBookingByID(id uuid.UUID) (*models.HotelBooking, error)
	ListBookingsByOperator(operatorID uuid.UUID, limit, offset int) ([]models.HotelBooking, error)
	UpdateBookingStatus(id uuid.UUID, status models.HotelBookingStatus) error
}

// BookingWorkflowService orchestrates the hotel booking confirmation
// workflow: room rate selection, initial price check, guest collection,
// allocation, price recheck and final booking. The supplier calls are
// strictly sequential; each step's output feeds the next.
type BookingWorkflowService struct {
	store     *SessionStore
	rates     *RoomRateService
	supplier  *supplier.Client
	bookings  BookingRepository
	validator *validator.GuestValidator
	logger    *logrus.Logger
}

// NewBookingWorkflowService creates a new booking workflow service
func NewBookingWorkflowService(
	store *SessionStore,
	rates *RoomRateService,
	supplierClient *supplier.Client,
	bookings BookingRepository,
	logger *logrus.Logger,
) *BookingWorkflowService {
	return &BookingWorkflowService{
		store:     store,
		rates:     rates,
		supplier:  supplierClient,
		bookings:  bookings,
		validator: validator.NewGuestValidator(),
		logger:    logger,
	}
}

// ============================================================================
// SESSION LIFECYCLE
// ============================================================================

// CreateSession opens a booking session from the itinerary context
func (s *BookingWorkflowService) CreateSession(operatorID uuid.UUID, req *models.CreateSessionRequest) (*models.BookingSession, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.TraceID == "" || req.ItineraryCode == "" {
		return nil, ErrMissingIdentifiers
	}

	session := &models.BookingSession{
		ID:              uuid.New(),
		OperatorID:      operatorID,
		HotelID:         req.HotelID,
		TraceID:         req.TraceID,
		ItineraryCode:   req.ItineraryCode,
		Rooms:           req.Rooms,
		Rates:           req.Rates,
		Occupancies:     req.Occupancies,
		Recommendations: req.Recommendations,
		Guests:          make(map[models.GuestKey]*models.RoomGuests),
		Status:          models.StatusIdle,
	}
	s.store.Create(session)

	s.logger.WithFields(logrus.Fields{
		"session_id":  session.ID,
		"operator_id": operatorID,
		"hotel_id":    req.HotelID,
	}).Info("Booking session created")

	return session, nil
}

// GetSessionStatus returns the read-only view of a session. The fields are
// copied out under the session lock so a concurrent workflow operation can
// never be observed mid-mutation.
func (s *BookingWorkflowService) GetSessionStatus(sessionID uuid.UUID) (*models.SessionStatusResponse, error) {
	var status *models.SessionStatusResponse
	err := s.store.View(sessionID, func(session *models.BookingSession) {
		status = &models.SessionStatusResponse{
			SessionID:     session.ID,
			Status:        session.Status,
			HotelID:       session.HotelID,
			TotalAmount:   session.TotalAmount,
			Currency:      session.Currency,
			ConfirmedRate: session.ConfirmedRate,
			RateConfirmed: session.RateConfirmed,
			Config:        session.Config,
			PriceChange:   session.PriceChange,
			ExpiresAt:     session.ExpiresAt,
			IsExpired:     session.IsExpired(),
		}
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}

// DiscardSession drops a session, mirroring the operator closing the form
func (s *BookingWorkflowService) DiscardSession(sessionID uuid.UUID) error {
	if _, err := s.store.Get(sessionID); err != nil {
		return err
	}
	s.store.Delete(sessionID)
	s.logger.WithField("session_id", sessionID).Info("Booking session discarded")
	return nil
}

// ============================================================================
// ROOM SELECTION & INITIAL PRICE CHECK
// ============================================================================

// SelectRooms resolves the chosen recommendation, replaces any prior
// selection and locks it in with the supplier. A failure discards all
// partial state; the session stays idle.
func (s *BookingWorkflowService) SelectRooms(ctx context.Context, sessionID uuid.UUID, req *models.SelectRoomsRequest) (*models.SelectRoomsResponse, error) {
	session, release, err := s.store.Acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	if session.Status != models.StatusIdle {
		return nil, fmt.Errorf("%w: cannot select rooms while %s", ErrInvalidWorkflowState, session.Status)
	}
	if session.TraceID == "" || session.ItineraryCode == "" {
		return nil, ErrMissingIdentifiers
	}

	rec, err := s.rates.ResolveRecommendation(session, req.RecommendationID)
	if err != nil {
		return nil, err
	}
	selection, err := s.rates.BuildSelection(session, rec)
	if err != nil {
		return nil, err
	}
	if len(selection) == 0 {
		return nil, ErrNoSelection
	}
	total, currency, err := s.rates.ComputeTotal(session, selection)
	if err != nil {
		return nil, err
	}

	supplierReq := &supplier.SelectRoomRatesRequest{
		TraceID:          session.TraceID,
		ItineraryCode:    session.ItineraryCode,
		RecommendationID: rec.ID,
		RoomsAndRates:    buildRateAllocations(selection),
	}
	result, err := s.supplier.SelectRoomRates(ctx, supplierReq)
	if err != nil {
		session.ClearSelection()
		session.Guests = make(map[models.GuestKey]*models.RoomGuests)
		s.logger.WithError(err).WithField("session_id", sessionID).Error("Initial price check failed")
		return nil, fmt.Errorf("initial price check failed: %w", err)
	}

	session.SelectedRecommendationID = rec.ID
	session.SelectedRooms = selection
	session.TotalAmount = total
	session.Currency = currency
	s.seedGuestSlots(session)

	first := result.Results[0]
	session.Config = &models.WorkflowConfig{
		PanMandatory:      first.IsPanMandatoryForBooking,
		PassportMandatory: first.IsPassportMandatoryForBooking,
	}

	if change := first.PriceChangeData; change != nil && change.IsPriceChanged {
		session.PriceChange = priceChangeRecord(change)
		session.TotalAmount = change.CurrentTotalAmount
		if change.Currency != "" {
			session.Currency = change.Currency
		}
		if err := session.Transition(models.StatusSelectionPriceChanged); err != nil {
			return nil, err
		}
	} else {
		session.PriceChange = nil
	}

	s.logger.WithFields(logrus.Fields{
		"session_id":        sessionID,
		"recommendation_id": rec.ID,
		"total_amount":      session.TotalAmount,
		"status":            session.Status,
	}).Info("Room selection locked in")

	return &models.SelectRoomsResponse{
		SessionID:   session.ID,
		Status:      session.Status,
		TotalAmount: session.TotalAmount,
		Currency:    session.Currency,
		Config:      session.Config,
		PriceChange: session.PriceChange,
	}, nil
}

// RespondToPriceChange resolves drift reported by the initial price check.
// Accept keeps the selection at the new total; decline discards the check
// along with the selection.
func (s *BookingWorkflowService) RespondToPriceChange(sessionID uuid.UUID, accept bool) (*models.SelectRoomsResponse, error) {
	session, release, err := s.store.Acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	if session.Status != models.StatusSelectionPriceChanged {
		return nil, ErrNoPendingPriceChange
	}

	if accept {
		if err := session.Transition(models.StatusIdle); err != nil {
			return nil, err
		}
		s.logger.WithFields(logrus.Fields{
			"session_id":   sessionID,
			"total_amount": session.TotalAmount,
		}).Info("Operator accepted the changed price")
	} else {
		session.ClearSelection()
		session.Guests = make(map[models.GuestKey]*models.RoomGuests)
		if err := session.Transition(models.StatusIdle); err != nil {
			return nil, err
		}
		s.logger.WithField("session_id", sessionID).Info("Operator declined the changed price")
	}

	return &models.SelectRoomsResponse{
		SessionID:   session.ID,
		Status:      session.Status,
		TotalAmount: session.TotalAmount,
		Currency:    session.Currency,
		Config:      session.Config,
		PriceChange: session.PriceChange,
	}, nil
}

// ============================================================================
// GUEST SUBMISSION: VALIDATE -> ALLOCATE -> RECHECK
// ============================================================================

// SubmitGuests validates the guest form and, if it passes, runs the
// allocation and price recheck calls back to back. The recheck must use
// the identifiers returned by the allocation, not the originals.
func (s *BookingWorkflowService) SubmitGuests(ctx context.Context, sessionID uuid.UUID, req *models.SubmitGuestsRequest) (*models.SubmitGuestsResponse, error) {
	session, release, err := s.store.Acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	if session.Status.IsBusy() {
		return nil, ErrWorkflowBusy
	}
	if session.Status != models.StatusIdle {
		return nil, fmt.Errorf("%w: cannot submit guests while %s", ErrInvalidWorkflowState, session.Status)
	}
	if len(session.SelectedRooms) == 0 || session.Config == nil {
		return nil, ErrNoSelection
	}

	if err := s.applyGuestInputs(session, req.Guests); err != nil {
		return nil, err
	}
	if verr := s.validateGuests(session); verr != nil {
		return nil, verr
	}

	if err := session.Transition(models.StatusSubmitting); err != nil {
		return nil, err
	}

	allocReq, err := s.buildAllocationRequest(session)
	if err != nil {
		session.Status = models.StatusIdle
		return nil, err
	}

	allocResult, err := s.supplier.AllocateGuests(ctx, allocReq)
	if err != nil {
		// Guest data stays in the session for correction.
		session.Status = models.StatusIdle
		s.logger.WithError(err).WithField("session_id", sessionID).Error("Guest allocation failed")
		return nil, fmt.Errorf("guest allocation failed: %w", err)
	}

	rotated := allocResult.Results[0]
	session.RotatedTraceID = rotated.TraceID
	session.RotatedItineraryCode = rotated.ItineraryCode

	if err := session.Transition(models.StatusRechecking); err != nil {
		return nil, err
	}

	recheckResult, err := s.supplier.RecheckPrice(ctx, &supplier.RecheckPriceRequest{
		ItineraryCode: session.RotatedItineraryCode,
		TraceID:       session.RotatedTraceID,
	})
	if err != nil {
		// A stale confirmed rate must never survive a failed recheck.
		session.Status = models.StatusIdle
		session.ConfirmedRate = 0
		session.RateConfirmed = false
		s.logger.WithError(err).WithField("session_id", sessionID).Error("Price recheck failed")
		return nil, fmt.Errorf("price recheck failed: %w", err)
	}

	detail := recheckResult.Details[0]
	confirmed := detail.PriceChangeData.CurrentTotalAmount
	if detail.RateDetails != nil && detail.RateDetails.FinalRate > 0 {
		confirmed = detail.RateDetails.FinalRate
	}
	session.ConfirmedRate = confirmed
	session.RateConfirmed = true
	session.PriceChange = priceChangeRecord(&detail.PriceChangeData)
	if detail.PriceChangeData.Currency != "" {
		session.Currency = detail.PriceChangeData.Currency
	}

	next := models.StatusReadyToBook
	if detail.PriceChangeData.IsPriceChanged {
		next = models.StatusPriceChanged
	}
	if err := session.Transition(next); err != nil {
		return nil, err
	}
	session.PriorStatus = next

	s.logger.WithFields(logrus.Fields{
		"session_id":     sessionID,
		"status":         session.Status,
		"confirmed_rate": session.ConfirmedRate,
	}).Info("Guest submission pipeline completed")

	return &models.SubmitGuestsResponse{
		SessionID:     session.ID,
		Status:        session.Status,
		ConfirmedRate: session.ConfirmedRate,
		Currency:      session.Currency,
		PriceChange:   session.PriceChange,
	}, nil
}

// ============================================================================
// FINAL BOOKING
// ============================================================================

// Book finalizes the booking with the supplier using the original trace id
// and itinerary code. On failure the session reverts to whichever confirmed
// state was active before the attempt so the operator can retry without
// redoing allocation.
func (s *BookingWorkflowService) Book(ctx context.Context, sessionID uuid.UUID, req *models.BookRequest) (*models.BookingConfirmation, error) {
	session, release, err := s.store.Acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	if session.Status.IsBusy() {
		return nil, ErrWorkflowBusy
	}
	if session.Status != models.StatusReadyToBook && session.Status != models.StatusPriceChanged {
		return nil, fmt.Errorf("%w: cannot book while %s", ErrInvalidWorkflowState, session.Status)
	}
	if session.Status == models.StatusPriceChanged && !req.AcceptNewPrice {
		return nil, ErrPriceNotAccepted
	}
	if !session.RateConfirmed {
		return nil, ErrRateNotConfirmed
	}

	session.PriorStatus = session.Status
	if err := session.Transition(models.StatusBooking); err != nil {
		return nil, err
	}

	result, err := s.supplier.BookHotel(ctx, &supplier.BookHotelRequest{
		TraceID:       session.TraceID,
		ItineraryCode: session.ItineraryCode,
	})
	if err != nil {
		if terr := session.Transition(session.PriorStatus); terr != nil {
			session.Status = session.PriorStatus
		}
		s.logger.WithError(err).WithField("session_id", sessionID).Error("Booking failed")
		return nil, fmt.Errorf("booking failed: %w", err)
	}

	if err := session.Transition(models.StatusCompleted); err != nil {
		return nil, err
	}

	guests := session.AllGuests()
	booking := &models.HotelBooking{
		ID:                   uuid.New(),
		SessionID:            session.ID,
		OperatorID:           session.OperatorID,
		HotelID:              session.HotelID,
		ItineraryCode:        session.ItineraryCode,
		TraceID:              session.TraceID,
		SupplierConfirmation: result.BookingDetails.ConfirmationNumber,
		RoomConfirmations:    roomConfirmations(result.BookingDetails.RoomConfirmations),
		LeadGuestName:        leadGuestName(session),
		GuestCount:           len(guests),
		FinalRate:            session.ConfirmedRate,
		Currency:             session.Currency,
		Status:               models.HotelBookingConfirmed,
	}
	if err := s.bookings.CreateBooking(booking); err != nil {
		// The supplier already confirmed; losing the local record must not
		// fail the operator's booking.
		s.logger.WithError(err).WithField("session_id", sessionID).Error("Failed to persist confirmed booking")
	}

	confirmation := &models.BookingConfirmation{
		BookingID:            booking.ID,
		SessionID:            session.ID,
		ItineraryCode:        session.ItineraryCode,
		TraceID:              session.TraceID,
		SupplierConfirmation: result.BookingDetails.ConfirmationNumber,
		RoomConfirmations:    booking.RoomConfirmations,
		Guests:               guests,
		FinalRate:            session.ConfirmedRate,
		Currency:             session.Currency,
	}

	s.logger.WithFields(logrus.Fields{
		"session_id":   sessionID,
		"booking_id":   booking.ID,
		"confirmation": booking.SupplierConfirmation,
		"final_rate":   booking.FinalRate,
	}).Info("Hotel booking completed")

	// The session served its purpose; drop it like a closed modal.
	s.store.Delete(sessionID)

	return confirmation, nil
}

// ============================================================================
// STORED BOOKINGS
// ============================================================================

// GetBooking fetches one stored booking, scoped to its operator
func (s *BookingWorkflowService) GetBooking(ctx context.Context, operatorID, bookingID uuid.UUID) (*models.HotelBooking, error) {
	booking, err := s.bookings.GetBookingByID(bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil || booking.OperatorID != operatorID {
		return nil, ErrBookingNotFound
	}
	return booking, nil
}

// ListBookings lists the operator's stored bookings
func (s *BookingWorkflowService) ListBookings(ctx context.Context, operatorID uuid.UUID, limit, offset int) ([]models.HotelBooking, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.bookings.ListBookingsByOperator(operatorID, limit, offset)
}

// CancelBooking cancels a confirmed booking with the supplier and marks
// the stored record cancelled.
func (s *BookingWorkflowService) CancelBooking(ctx context.Context, operatorID, bookingID uuid.UUID, reason *string) (*models.HotelBooking, error) {
	booking, err := s.GetBooking(ctx, operatorID, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.HotelBookingConfirmed {
		return nil, ErrBookingNotCancellable
	}

	_, err = s.supplier.CancelBooking(ctx, &supplier.CancelBookingRequest{
		BookingID: booking.SupplierConfirmation,
		TraceID:   booking.TraceID,
	})
	if err != nil {
		s.logger.WithError(err).WithField("booking_id", bookingID).Error("Supplier cancellation failed")
		return nil, fmt.Errorf("cancellation failed: %w", err)
	}

	if err := s.bookings.UpdateBookingStatus(bookingID, models.HotelBookingCancelled); err != nil {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}
	booking.Status = models.HotelBookingCancelled

	fields := logrus.Fields{"booking_id": bookingID}
	if reason != nil {
		fields["reason"] = *reason
	}
	s.logger.WithFields(fields).Info("Hotel booking cancelled")

	return booking, nil
}

// ============================================================================
// INTERNALS
// ============================================================================

// seedGuestSlots creates one empty guest record per occupant of the
// selection. Child ages are prefilled from the occupancy; the operator
// can still correct them on the form.
func (s *BookingWorkflowService) seedGuestSlots(session *models.BookingSession) {
	session.Guests = make(map[models.GuestKey]*models.RoomGuests)
	session.LeadGuest = nil
	for i, room := range session.SelectedRooms {
		key := models.GuestKey{RoomID: room.RoomID, RateID: room.RateID, RoomIndex: i}
		guests := &models.RoomGuests{}
		for a := 0; a < room.Occupancy.Adults; a++ {
			guests.Adults = append(guests.Adults, &models.GuestRecord{Type: models.GuestTypeAdult})
		}
		for _, age := range room.Occupancy.ChildAges {
			guests.Children = append(guests.Children, &models.GuestRecord{Type: models.GuestTypeChild, Age: age})
		}
		session.Guests[key] = guests
	}
}

// applyGuestInputs copies the submitted form into the session's guest
// slots. The lead-guest flag is applied through the session so previous
// flags are cleared.
func (s *BookingWorkflowService) applyGuestInputs(session *models.BookingSession, inputs []models.GuestInput) error {
	var lead *models.GuestRef
	for _, in := range inputs {
		key := models.GuestKey{RoomID: in.RoomID, RateID: in.RateID, RoomIndex: in.RoomIndex}
		room, ok := session.Guests[key]
		if !ok {
			return fmt.Errorf("%w: room %s", ErrUnknownGuestSlot, key)
		}
		guest := room.Guest(in.Type, in.Index)
		if guest == nil {
			return fmt.Errorf("%w: %s %s #%d", ErrUnknownGuestSlot, key, in.Type, in.Index)
		}

		guest.Title = in.Title
		guest.FirstName = in.FirstName
		guest.LastName = in.LastName
		guest.Email = in.Email
		guest.ISDCode = in.ISDCode
		guest.ContactNumber = s.validator.SanitizeNumber(in.ContactNumber)
		guest.PAN = in.PAN
		guest.PassportNumber = in.PassportNumber
		guest.PassportExpiry = in.PassportExpiry
		guest.SpecialRequests = in.SpecialRequests
		if in.Type == models.GuestTypeChild && in.Age != 0 {
			guest.Age = in.Age
		}
		if in.IsLeadGuest {
			lead = &models.GuestRef{Key: key, Type: in.Type, Index: in.Index}
		}
	}

	if lead != nil {
		if err := session.SetLeadGuest(*lead); err != nil {
			return err
		}
	}
	return nil
}

// validateGuests runs every field check and collects failures into the
// field-keyed error map. A nil return means the form may be submitted.
func (s *BookingWorkflowService) validateGuests(session *models.BookingSession) *models.GuestValidationError {
	fields := make(map[string]string)
	config := session.Config

	for i, room := range session.SelectedRooms {
		key := models.GuestKey{RoomID: room.RoomID, RateID: room.RateID, RoomIndex: i}
		guests, ok := session.Guests[key]
		if !ok {
			continue
		}
		for idx, guest := range guests.Adults {
			s.validateGuest(fields, key, models.GuestTypeAdult, idx, guest, config)
		}
		for idx, guest := range guests.Children {
			s.validateGuest(fields, key, models.GuestTypeChild, idx, guest, config)
			if err := s.validator.ValidateChildAge(guest.Age); err != nil {
				fields[key.FieldErrorKey(models.GuestTypeChild, idx, "age")] = err.Error()
			}
		}
	}

	if session.LeadGuest == nil {
		fields["leadGuest"] = "a lead guest must be selected"
	}

	if len(fields) == 0 {
		return nil
	}
	return &models.GuestValidationError{Fields: fields}
}

func (s *BookingWorkflowService) validateGuest(fields map[string]string, key models.GuestKey, guestType models.GuestType, idx int, guest *models.GuestRecord, config *models.WorkflowConfig) {
	if guest.Title == "" {
		fields[key.FieldErrorKey(guestType, idx, "title")] = "title is required"
	}
	if guest.FirstName == "" {
		fields[key.FieldErrorKey(guestType, idx, "firstName")] = "first name is required"
	}
	if guest.LastName == "" {
		fields[key.FieldErrorKey(guestType, idx, "lastName")] = "last name is required"
	}
	if err := s.validator.ValidateEmail(guest.Email); err != nil {
		fields[key.FieldErrorKey(guestType, idx, "email")] = err.Error()
	}
	if guest.ISDCode == "" {
		fields[key.FieldErrorKey(guestType, idx, "isdCode")] = "ISD code is required"
	}
	if err := s.validator.ValidateContactNumber(guest.ContactNumber); err != nil {
		fields[key.FieldErrorKey(guestType, idx, "contactNumber")] = err.Error()
	}
	if err := s.validator.ValidatePAN(guest.PAN, config.PanMandatory); err != nil {
		fields[key.FieldErrorKey(guestType, idx, "pan")] = err.Error()
	}
	if err := s.validator.ValidatePassportNumber(guest.PassportNumber, config.PassportMandatory); err != nil {
		fields[key.FieldErrorKey(guestType, idx, "passportNumber")] = err.Error()
	}
	if err := s.validator.ValidatePassportExpiry(guest.PassportExpiry, config.PassportMandatory); err != nil {
		fields[key.FieldErrorKey(guestType, idx, "passportExpiry")] = err.Error()
	}
}

// buildAllocationRequest turns the named guests into per-room allocations
// using the original identifiers. Rooms with no named guest are dropped;
// if every room drops, the submission aborts before any network call.
func (s *BookingWorkflowService) buildAllocationRequest(session *models.BookingSession) (*supplier.AllocateGuestsRequest, error) {
	var rooms []supplier.RoomAllocation
	for i, room := range session.SelectedRooms {
		key := models.GuestKey{RoomID: room.RoomID, RateID: room.RateID, RoomIndex: i}
		guests, ok := session.Guests[key]
		if !ok {
			continue
		}

		var payloads []supplier.GuestPayload
		for _, guest := range guests.Adults {
			if guest.HasName() {
				payloads = append(payloads, guestPayload(guest))
			}
		}
		for _, guest := range guests.Children {
			if guest.HasName() {
				payloads = append(payloads, guestPayload(guest))
			}
		}
		if len(payloads) == 0 {
			continue
		}
		rooms = append(rooms, supplier.RoomAllocation{
			RoomID: room.RoomID,
			RateID: room.RateID,
			Guests: payloads,
		})
	}

	if len(rooms) == 0 {
		return nil, ErrNoGuestsToAllocate
	}
	return &supplier.AllocateGuestsRequest{
		ItineraryCode: session.ItineraryCode,
		BookingArray: []supplier.BookingAllocation{
			{TraceID: session.TraceID, RoomsAllocations: rooms},
		},
	}, nil
}

func buildRateAllocations(selection []models.SelectedRoom) []supplier.RoomRateAllocation {
	out := make([]supplier.RoomRateAllocation, 0, len(selection))
	for _, room := range selection {
		out = append(out, supplier.RoomRateAllocation{
			RoomID:    room.RoomID,
			RateID:    room.RateID,
			Adults:    room.Occupancy.Adults,
			ChildAges: room.Occupancy.ChildAges,
		})
	}
	return out
}

func guestPayload(guest *models.GuestRecord) supplier.GuestPayload {
	return supplier.GuestPayload{
		Title:           guest.Title,
		FirstName:       guest.FirstName,
		LastName:        guest.LastName,
		Email:           guest.Email,
		ISDCode:         guest.ISDCode,
		ContactNumber:   guest.ContactNumber,
		PAN:             guest.PAN,
		PassportNumber:  guest.PassportNumber,
		PassportExpiry:  guest.PassportExpiry,
		GuestType:       string(guest.Type),
		Age:             guest.Age,
		IsLeadGuest:     guest.IsLeadGuest,
		SpecialRequests: guest.SpecialRequests,
	}
}

func priceChangeRecord(data *supplier.PriceChangeData) *models.PriceChangeRecord {
	delta := data.PriceChangeAmount
	if delta == 0 {
		delta = data.CurrentTotalAmount - data.PreviousTotalAmount
	}
	return &models.PriceChangeRecord{
		IsPriceChanged: data.IsPriceChanged,
		PreviousTotal:  data.PreviousTotalAmount,
		CurrentTotal:   data.CurrentTotalAmount,
		Delta:          delta,
		Currency:       data.Currency,
	}
}

func roomConfirmations(payloads []supplier.RoomConfirmationPayload) models.RoomConfirmationList {
	if len(payloads) == 0 {
		return nil
	}
	out := make(models.RoomConfirmationList, 0, len(payloads))
	for _, p := range payloads {
		out = append(out, models.RoomConfirmation{
			RoomID:             p.RoomID,
			ConfirmationNumber: p.ConfirmationNumber,
			Status:             p.Status,
		})
	}
	return out
}

func leadGuestName(session *models.BookingSession) string {
	if session.LeadGuest == nil {
		return ""
	}
	room, ok := session.Guests[session.LeadGuest.Key]
	if !ok {
		return ""
	}
	guest := room.Guest(session.LeadGuest.Type, session.LeadGuest.Index)
	if guest == nil {
		return ""
	}
	return guest.FullName()
}
