package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sortyourtrip/hotel-crm-backend/internal/config"
	"github.com/sortyourtrip/hotel-crm-backend/internal/models"
	"github.com/sortyourtrip/hotel-crm-backend/internal/supplier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// supplierStub fakes the supplier API. Each endpoint returns the configured
// payload and counts its calls so tests can assert on network activity.
type supplierStub struct {
	mu sync.Mutex

	selectCalls  int
	allocCalls   int
	recheckCalls int
	bookCalls    int
	cancelCalls  int

	lastAllocRequest   supplier.AllocateGuestsRequest
	lastRecheckRequest supplier.RecheckPriceRequest
	lastBookRequest    supplier.BookHotelRequest

	selectResponse  func() (int, interface{})
	allocResponse   func() (int, interface{})
	recheckResponse func() (int, interface{})
	bookResponse    func() (int, interface{})
	cancelResponse  func() (int, interface{})
}

func envelope(success bool, message string, data interface{}) map[string]interface{} {
	return map[string]interface{}{"success": success, "message": message, "data": data}
}

func okSelect(panMandatory, passportMandatory bool, change *supplier.PriceChangeData) func() (int, interface{}) {
	return func() (int, interface{}) {
		return http.StatusOK, envelope(true, "", supplier.SelectRoomRatesResult{
			Results: []supplier.RoomRateSelection{{
				IsPanMandatoryForBooking:      panMandatory,
				IsPassportMandatoryForBooking: passportMandatory,
				PriceChangeData:               change,
			}},
		})
	}
}

func okAlloc(traceID, itineraryCode string) func() (int, interface{}) {
	return func() (int, interface{}) {
		return http.StatusOK, envelope(true, "", supplier.AllocateGuestsResult{
			Results: []supplier.AllocationResult{{TraceID: traceID, ItineraryCode: itineraryCode}},
		})
	}
}

func okRecheck(changed bool, previous, current, finalRate float64) func() (int, interface{}) {
	return func() (int, interface{}) {
		detail := supplier.RecheckDetail{
			PriceChangeData: supplier.PriceChangeData{
				IsPriceChanged:      changed,
				PreviousTotalAmount: previous,
				CurrentTotalAmount:  current,
				PriceChangeAmount:   current - previous,
				Currency:            "INR",
			},
		}
		if finalRate > 0 {
			detail.RateDetails = &supplier.RateDetails{FinalRate: finalRate}
		}
		return http.StatusOK, envelope(true, "", supplier.RecheckPriceResult{Details: []supplier.RecheckDetail{detail}})
	}
}

func okBook(confirmation string) func() (int, interface{}) {
	return func() (int, interface{}) {
		return http.StatusOK, envelope(true, "", supplier.BookHotelResult{
			BookingDetails: supplier.BookingDetails{
				BookingID:          "sup-bk-1",
				ConfirmationNumber: confirmation,
				Status:             "confirmed",
				RoomConfirmations: []supplier.RoomConfirmationPayload{
					{RoomID: "r1", ConfirmationNumber: confirmation + "-1", Status: "confirmed"},
				},
			},
		})
	}
}

func failWith(message string) func() (int, interface{}) {
	return func() (int, interface{}) {
		return http.StatusOK, envelope(false, message, nil)
	}
}

func (s *supplierStub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/bookings/hotel/select-room-rates", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.selectCalls++
		resp := s.selectResponse
		s.mu.Unlock()
		writeStub(w, resp)
	})
	mux.HandleFunc("/bookings/hotel/allocate-guests", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.allocCalls++
		_ = json.NewDecoder(r.Body).Decode(&s.lastAllocRequest)
		resp := s.allocResponse
		s.mu.Unlock()
		writeStub(w, resp)
	})
	mux.HandleFunc("/bookings/hotel/recheck-price", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.recheckCalls++
		_ = json.NewDecoder(r.Body).Decode(&s.lastRecheckRequest)
		resp := s.recheckResponse
		s.mu.Unlock()
		writeStub(w, resp)
	})
	mux.HandleFunc("/bookings/hotel/book", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.bookCalls++
		_ = json.NewDecoder(r.Body).Decode(&s.lastBookRequest)
		resp := s.bookResponse
		s.mu.Unlock()
		writeStub(w, resp)
	})
	mux.HandleFunc("/bookings/hotel/cancel", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.cancelCalls++
		resp := s.cancelResponse
		s.mu.Unlock()
		writeStub(w, resp)
	})
	return mux
}

func writeStub(w http.ResponseWriter, resp func() (int, interface{})) {
	if resp == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	status, body := resp()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// fakeBookingRepo is an in-memory BookingRepository
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*models.HotelBooking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*models.HotelBooking)}
}

func (r *fakeBookingRepo) CreateBooking(booking *models.HotelBooking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = time.Now()
	r.bookings[booking.ID] = booking
	return nil
}

func (r *fakeBookingRepo) GetBookingByID(id uuid.UUID) (*models.HotelBooking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bookings[id], nil
}

func (r *fakeBookingRepo) ListBookingsByOperator(operatorID uuid.UUID, limit, offset int) ([]models.HotelBooking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.HotelBooking
	for _, b := range r.bookings {
		if b.OperatorID == operatorID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) UpdateBookingStatus(id uuid.UUID, status models.HotelBookingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if !ok {
		return errors.New("booking not found")
	}
	booking.Status = status
	return nil
}

type workflowFixture struct {
	service *BookingWorkflowService
	store   *SessionStore
	stub    *supplierStub
	repo    *fakeBookingRepo
	session *models.BookingSession
}

func setupWorkflowTest(t *testing.T) *workflowFixture {
	t.Helper()

	stub := &supplierStub{}
	server := httptest.NewServer(stub.handler())
	t.Cleanup(server.Close)

	supplierCfg := &config.SupplierConfig{
		BaseURL:  server.URL,
		APIToken: "test-token",
		Timeout:  5 * time.Second,
	}
	logger := testLogger()
	store := NewSessionStore(time.Minute, logger)
	repo := newFakeBookingRepo()
	service := NewBookingWorkflowService(
		store,
		NewRoomRateService(logger),
		supplier.NewClient(supplierCfg, logger),
		repo,
		logger,
	)

	session, err := service.CreateSession(uuid.New(), &models.CreateSessionRequest{
		HotelID:       "h1",
		TraceID:       "trace-original",
		ItineraryCode: "itin-original",
		Rooms: map[string]models.RoomDetails{
			"r1": {RoomID: "r1", RoomName: "Deluxe King"},
		},
		Rates: map[string]models.Rate{
			"rt1": {ID: "rt1", RoomID: "r1", FinalRate: 10000, Currency: "INR"},
		},
		Occupancies: map[string]models.Occupancy{
			"r1": {RoomID: "r1", Adults: 2},
		},
		Recommendations: map[string][]models.RoomRateRecommendation{
			"standard": {{ID: "rec-1", GroupID: "standard", RateIDs: []string{"rt1"}}},
		},
	})
	require.NoError(t, err)

	return &workflowFixture{service: service, store: store, stub: stub, repo: repo, session: session}
}

func validGuests() *models.SubmitGuestsRequest {
	return &models.SubmitGuestsRequest{
		Guests: []models.GuestInput{
			{
				RoomID: "r1", RateID: "rt1", RoomIndex: 0,
				Type: models.GuestTypeAdult, Index: 0,
				Title: "Mr", FirstName: "Asha", LastName: "Verma",
				Email: "asha@example.com", ISDCode: "+91", ContactNumber: "9876543210",
				IsLeadGuest: true,
			},
			{
				RoomID: "r1", RateID: "rt1", RoomIndex: 0,
				Type: models.GuestTypeAdult, Index: 1,
				Title: "Mr", FirstName: "Rohan", LastName: "Verma",
				Email: "rohan@example.com", ISDCode: "+91", ContactNumber: "9876543211",
			},
		},
	}
}

func (f *workflowFixture) selectRooms(t *testing.T) {
	t.Helper()
	resp, err := f.service.SelectRooms(context.Background(), f.session.ID, &models.SelectRoomsRequest{RecommendationID: "rec-1"})
	require.NoError(t, err)
	require.Equal(t, models.StatusIdle, resp.Status)
}

// Valid guests, recheck reports no drift, session ends ready to book.
func TestSubmitGuestsNoPriceChange(t *testing.T) {
	f := setupWorkflowTest(t)
	f.stub.selectResponse = okSelect(false, false, nil)
	f.stub.allocResponse = okAlloc("trace-rotated", "itin-rotated")
	f.stub.recheckResponse = okRecheck(false, 10000, 10000, 10000)

	f.selectRooms(t)

	resp, err := f.service.SubmitGuests(context.Background(), f.session.ID, validGuests())
	require.NoError(t, err)
	assert.Equal(t, models.StatusReadyToBook, resp.Status)
	assert.Equal(t, 10000.0, resp.ConfirmedRate)
	assert.Equal(t, 1, f.stub.allocCalls)
	assert.Equal(t, 1, f.stub.recheckCalls)

	// Allocation goes out with the original identifiers, the recheck with
	// the rotated pair returned by allocation.
	assert.Equal(t, "itin-original", f.stub.lastAllocRequest.ItineraryCode)
	require.Len(t, f.stub.lastAllocRequest.BookingArray, 1)
	assert.Equal(t, "trace-original", f.stub.lastAllocRequest.BookingArray[0].TraceID)
	assert.Equal(t, "trace-rotated", f.stub.lastRecheckRequest.TraceID)
	assert.Equal(t, "itin-rotated", f.stub.lastRecheckRequest.ItineraryCode)
}

// The recheck reports drift; booking requires explicit acceptance and
// uses the rechecked rate.
func TestSubmitGuestsPriceChangedThenBook(t *testing.T) {
	f := setupWorkflowTest(t)
	f.stub.selectResponse = okSelect(false, false, nil)
	f.stub.allocResponse = okAlloc("trace-rotated", "itin-rotated")
	f.stub.recheckResponse = okRecheck(true, 10000, 10500, 10500)
	f.stub.bookResponse = okBook("CNF-123")

	f.selectRooms(t)

	resp, err := f.service.SubmitGuests(context.Background(), f.session.ID, validGuests())
	require.NoError(t, err)
	assert.Equal(t, models.StatusPriceChanged, resp.Status)
	assert.Equal(t, 10500.0, resp.ConfirmedRate)
	require.NotNil(t, resp.PriceChange)
	assert.Equal(t, 10000.0, resp.PriceChange.PreviousTotal)
	assert.Equal(t, 10500.0, resp.PriceChange.CurrentTotal)

	// Booking a drifted price without acceptance is rejected.
	_, err = f.service.Book(context.Background(), f.session.ID, &models.BookRequest{})
	assert.ErrorIs(t, err, ErrPriceNotAccepted)
	assert.Equal(t, 0, f.stub.bookCalls)

	confirmation, err := f.service.Book(context.Background(), f.session.ID, &models.BookRequest{AcceptNewPrice: true})
	require.NoError(t, err)
	assert.Equal(t, "CNF-123", confirmation.SupplierConfirmation)
	assert.Equal(t, 10500.0, confirmation.FinalRate)
	assert.Len(t, confirmation.Guests, 2)

	// The book call carries the original identifiers, never the rotated pair.
	assert.Equal(t, "trace-original", f.stub.lastBookRequest.TraceID)
	assert.Equal(t, "itin-original", f.stub.lastBookRequest.ItineraryCode)

	// The session is discarded after a successful booking.
	_, err = f.service.GetSessionStatus(f.session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// The booking is persisted for the list views.
	stored, err := f.repo.GetBookingByID(confirmation.BookingID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, models.HotelBookingConfirmed, stored.Status)
	assert.Equal(t, "Asha Verma", stored.LeadGuestName)
}

// A missing contact number blocks submission before any network call,
// with the field-keyed error entry.
func TestSubmitGuestsValidationBlocksNetworkCall(t *testing.T) {
	f := setupWorkflowTest(t)
	f.stub.selectResponse = okSelect(false, false, nil)

	f.selectRooms(t)

	req := validGuests()
	req.Guests[0].ContactNumber = ""

	_, err := f.service.SubmitGuests(context.Background(), f.session.ID, req)
	require.Error(t, err)

	var validationErr *models.GuestValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "r1-rt1-0-adults-0-contactNumber")
	assert.Equal(t, 0, f.stub.allocCalls)

	// The session stays idle so the operator can correct and resubmit.
	status, err := f.service.GetSessionStatus(f.session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusIdle, status.Status)
}

func TestSubmitGuestsMissingLeadGuest(t *testing.T) {
	f := setupWorkflowTest(t)
	f.stub.selectResponse = okSelect(false, false, nil)

	f.selectRooms(t)

	req := validGuests()
	req.Guests[0].IsLeadGuest = false

	_, err := f.service.SubmitGuests(context.Background(), f.session.ID, req)
	var validationErr *models.GuestValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "leadGuest")
	assert.Equal(t, 0, f.stub.allocCalls)
}

// PAN gating follows the supplier-reported mandatory flag.
func TestSubmitGuestsPanMandatory(t *testing.T) {
	f := setupWorkflowTest(t)
	f.stub.selectResponse = okSelect(true, false, nil)

	f.selectRooms(t)

	_, err := f.service.SubmitGuests(context.Background(), f.session.ID, validGuests())
	var validationErr *models.GuestValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "r1-rt1-0-adults-0-pan")
	assert.Contains(t, validationErr.Fields, "r1-rt1-0-adults-1-pan")
}

// An allocation failure resets to idle and keeps the entered guest data
// for correction.
func TestSubmitGuestsAllocationFailureKeepsForm(t *testing.T) {
	f := setupWorkflowTest(t)
	f.stub.selectResponse = okSelect(false, false, nil)
	f.stub.allocResponse = failWith("no inventory")

	f.selectRooms(t)

	_, err := f.service.SubmitGuests(context.Background(), f.session.ID, validGuests())
	require.Error(t, err)

	var apiErr *supplier.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "no inventory", apiErr.Message)

	status, err := f.service.GetSessionStatus(f.session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusIdle, status.Status)
	assert.Equal(t, 0, f.stub.recheckCalls)

	session, err := f.store.Get(f.session.ID)
	require.NoError(t, err)
	key := models.GuestKey{RoomID: "r1", RateID: "rt1", RoomIndex: 0}
	assert.Equal(t, "Asha", session.Guests[key].Adults[0].FirstName)
}

// A failed recheck clears the confirmed rate so a stale figure cannot be
// booked.
func TestSubmitGuestsRecheckFailureClearsConfirmedRate(t *testing.T) {
	f := setupWorkflowTest(t)
	f.stub.selectResponse = okSelect(false, false, nil)
	f.stub.allocResponse = okAlloc("trace-rotated", "itin-rotated")
	f.stub.recheckResponse = failWith("price lookup failed")

	f.selectRooms(t)

	_, err := f.service.SubmitGuests(context.Background(), f.session.ID, validGuests())
	require.Error(t, err)

	session, err := f.store.Get(f.session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusIdle, session.Status)
	assert.False(t, session.RateConfirmed)
	assert.Zero(t, session.ConfirmedRate)
}

// Booking failure reverts to the prior confirmed state, never idle, so
// the operator can retry without redoing allocation.
func TestBookFailureRevertsToPriorStatus(t *testing.T) {
	f := setupWorkflowTest(t)
	f.stub.selectResponse = okSelect(false, false, nil)
	f.stub.allocResponse = okAlloc("trace-rotated", "itin-rotated")
	f.stub.recheckResponse = okRecheck(false, 10000, 10000, 10000)
	f.stub.bookResponse = failWith("supplier rejected booking")

	f.selectRooms(t)
	_, err := f.service.SubmitGuests(context.Background(), f.session.ID, validGuests())
	require.NoError(t, err)

	_, err = f.service.Book(context.Background(), f.session.ID, &models.BookRequest{})
	require.Error(t, err)

	status, err := f.service.GetSessionStatus(f.session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReadyToBook, status.Status)

	// Retry succeeds without a second allocation.
	f.stub.bookResponse = okBook("CNF-RETRY")
	confirmation, err := f.service.Book(context.Background(), f.session.ID, &models.BookRequest{})
	require.NoError(t, err)
	assert.Equal(t, "CNF-RETRY", confirmation.SupplierConfirmation)
	assert.Equal(t, 1, f.stub.allocCalls)
}

// A second trigger while an operation is in flight produces no
// additional network call.
func TestSubmitGuestsBusySessionIsNoOp(t *testing.T) {
	f := setupWorkflowTest(t)
	f.stub.selectResponse = okSelect(false, false, nil)
	f.selectRooms(t)

	_, release, err := f.store.Acquire(f.session.ID)
	require.NoError(t, err)
	defer release()

	_, err = f.service.SubmitGuests(context.Background(), f.session.ID, validGuests())
	assert.ErrorIs(t, err, ErrWorkflowBusy)
	assert.Equal(t, 0, f.stub.allocCalls)
}

// Status reads stay consistent while a submission mutates the session.
// Run with the race detector to verify the locking.
func TestGetSessionStatusDuringSubmit(t *testing.T) {
	f := setupWorkflowTest(t)
	f.stub.selectResponse = okSelect(false, false, nil)
	f.stub.allocResponse = okAlloc("trace-rotated", "itin-rotated")
	f.stub.recheckResponse = okRecheck(false, 10000, 10000, 10000)

	f.selectRooms(t)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			status, err := f.service.GetSessionStatus(f.session.ID)
			if err != nil {
				return
			}
			if status.Status == models.StatusReadyToBook {
				return
			}
		}
	}()

	_, err := f.service.SubmitGuests(context.Background(), f.session.ID, validGuests())
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("status reader did not observe the settled session")
	}

	status, err := f.service.GetSessionStatus(f.session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReadyToBook, status.Status)
}

// Initial price check drift requires an explicit accept or decline.
func TestSelectRoomsPriceDrift(t *testing.T) {
	f := setupWorkflowTest(t)
	f.stub.selectResponse = okSelect(false, false, &supplier.PriceChangeData{
		IsPriceChanged:      true,
		PreviousTotalAmount: 10000,
		CurrentTotalAmount:  10800,
		PriceChangeAmount:   800,
		Currency:            "INR",
	})

	resp, err := f.service.SelectRooms(context.Background(), f.session.ID, &models.SelectRoomsRequest{RecommendationID: "rec-1"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusSelectionPriceChanged, resp.Status)
	assert.Equal(t, 10800.0, resp.TotalAmount)

	// Guest submission is blocked until the drift is resolved.
	_, err = f.service.SubmitGuests(context.Background(), f.session.ID, validGuests())
	assert.ErrorIs(t, err, ErrInvalidWorkflowState)

	accepted, err := f.service.RespondToPriceChange(f.session.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.StatusIdle, accepted.Status)
	assert.Equal(t, 10800.0, accepted.TotalAmount)
}

func TestSelectRoomsPriceDriftDeclined(t *testing.T) {
	f := setupWorkflowTest(t)
	f.stub.selectResponse = okSelect(false, false, &supplier.PriceChangeData{
		IsPriceChanged:      true,
		PreviousTotalAmount: 10000,
		CurrentTotalAmount:  10800,
	})

	_, err := f.service.SelectRooms(context.Background(), f.session.ID, &models.SelectRoomsRequest{RecommendationID: "rec-1"})
	require.NoError(t, err)

	declined, err := f.service.RespondToPriceChange(f.session.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.StatusIdle, declined.Status)
	assert.Zero(t, declined.TotalAmount)

	session, err := f.store.Get(f.session.ID)
	require.NoError(t, err)
	assert.Empty(t, session.SelectedRooms)
	assert.Nil(t, session.Config)
}

func TestSelectRoomsFailureClearsSelection(t *testing.T) {
	f := setupWorkflowTest(t)
	f.stub.selectResponse = failWith("rates no longer available")

	_, err := f.service.SelectRooms(context.Background(), f.session.ID, &models.SelectRoomsRequest{RecommendationID: "rec-1"})
	require.Error(t, err)

	session, err := f.store.Get(f.session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusIdle, session.Status)
	assert.Empty(t, session.SelectedRooms)
}

func TestSelectRoomsUnknownRecommendation(t *testing.T) {
	f := setupWorkflowTest(t)

	_, err := f.service.SelectRooms(context.Background(), f.session.ID, &models.SelectRoomsRequest{RecommendationID: "nope"})
	assert.ErrorIs(t, err, ErrRecommendationNotFound)
	assert.Equal(t, 0, f.stub.selectCalls)
}

// The recheck falls back to the price-change total when the supplier
// omits the final rate.
func TestRecheckFallsBackToCurrentTotal(t *testing.T) {
	f := setupWorkflowTest(t)
	f.stub.selectResponse = okSelect(false, false, nil)
	f.stub.allocResponse = okAlloc("trace-rotated", "itin-rotated")
	f.stub.recheckResponse = okRecheck(false, 10000, 10000, 0)

	f.selectRooms(t)

	resp, err := f.service.SubmitGuests(context.Background(), f.session.ID, validGuests())
	require.NoError(t, err)
	assert.Equal(t, 10000.0, resp.ConfirmedRate)
}

func TestCancelBooking(t *testing.T) {
	f := setupWorkflowTest(t)
	f.stub.selectResponse = okSelect(false, false, nil)
	f.stub.allocResponse = okAlloc("trace-rotated", "itin-rotated")
	f.stub.recheckResponse = okRecheck(false, 10000, 10000, 10000)
	f.stub.bookResponse = okBook("CNF-777")
	f.stub.cancelResponse = func() (int, interface{}) {
		return http.StatusOK, envelope(true, "", supplier.CancelBookingResult{Status: "cancelled"})
	}

	f.selectRooms(t)
	_, err := f.service.SubmitGuests(context.Background(), f.session.ID, validGuests())
	require.NoError(t, err)
	confirmation, err := f.service.Book(context.Background(), f.session.ID, &models.BookRequest{})
	require.NoError(t, err)

	operatorID := f.session.OperatorID
	cancelled, err := f.service.CancelBooking(context.Background(), operatorID, confirmation.BookingID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.HotelBookingCancelled, cancelled.Status)
	assert.Equal(t, 1, f.stub.cancelCalls)

	// A second cancel is rejected.
	_, err = f.service.CancelBooking(context.Background(), operatorID, confirmation.BookingID, nil)
	assert.ErrorIs(t, err, ErrBookingNotCancellable)
}

func TestCancelBookingWrongOperator(t *testing.T) {
	f := setupWorkflowTest(t)
	f.stub.selectResponse = okSelect(false, false, nil)
	f.stub.allocResponse = okAlloc("trace-rotated", "itin-rotated")
	f.stub.recheckResponse = okRecheck(false, 10000, 10000, 10000)
	f.stub.bookResponse = okBook("CNF-888")

	f.selectRooms(t)
	_, err := f.service.SubmitGuests(context.Background(), f.session.ID, validGuests())
	require.NoError(t, err)
	confirmation, err := f.service.Book(context.Background(), f.session.ID, &models.BookRequest{})
	require.NoError(t, err)

	_, err = f.service.CancelBooking(context.Background(), uuid.New(), confirmation.BookingID, nil)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestDiscardSession(t *testing.T) {
	f := setupWorkflowTest(t)

	require.NoError(t, f.service.DiscardSession(f.session.ID))
	assert.ErrorIs(t, f.service.DiscardSession(f.session.ID), ErrSessionNotFound)
}
