package supplier

// ============================================================================
// WIRE TYPES (supplier JSON API)
// ============================================================================

// RoomRateAllocation is one room/rate pair of the operator's selection
type RoomRateAllocation struct {
	RoomID string `json:"roomId"`
	RateID string `json:"rateId"`
	Adults int    `json:"adults"`
	// Child ages, one entry per child
	ChildAges []int `json:"childAges,omitempty"`
}

// SelectRoomRatesRequest locks in a recommendation
type SelectRoomRatesRequest struct {
	TraceID          string               `json:"traceId"`
	ItineraryCode    string               `json:"itineraryCode"`
	RecommendationID string               `json:"recommendationId"`
	RoomsAndRates    []RoomRateAllocation `json:"roomsAndRateAllocations"`
}

// PriceChangeData reports price drift between two supplier quotes
type PriceChangeData struct {
	IsPriceChanged      bool    `json:"isPriceChanged"`
	PreviousTotalAmount float64 `json:"previousTotalAmount"`
	CurrentTotalAmount  float64 `json:"currentTotalAmount"`
	PriceChangeAmount   float64 `json:"priceChangeAmount"`
	Currency            string  `json:"currency"`
}

// RoomRateSelection is one result entry of selectRoomRates
type RoomRateSelection struct {
	IsPanMandatoryForBooking      bool             `json:"isPanMandatoryForBooking"`
	IsPassportMandatoryForBooking bool             `json:"isPassportMandatoryForBooking"`
	PriceChangeData               *PriceChangeData `json:"priceChangeData,omitempty"`
}

// SelectRoomRatesResult is the data payload of selectRoomRates
type SelectRoomRatesResult struct {
	Results []RoomRateSelection `json:"results"`
}

// GuestPayload is one guest as submitted during allocation
type GuestPayload struct {
	Title           string `json:"title"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	ISDCode         string `json:"isdCode"`
	ContactNumber   string `json:"contactNumber"`
	PAN             string `json:"panNumber,omitempty"`
	PassportNumber  string `json:"passportNumber,omitempty"`
	PassportExpiry  string `json:"passportExpiry,omitempty"`
	GuestType       string `json:"guestType"` // "adult" or "child"
	Age             int    `json:"age,omitempty"`
	IsLeadGuest     bool   `json:"isLeadGuest"`
	SpecialRequests string `json:"specialRequests,omitempty"`
}

// RoomAllocation groups the guests of one room for allocation
type RoomAllocation struct {
	RoomID string         `json:"roomId"`
	RateID string         `json:"rateId"`
	Guests []GuestPayload `json:"guests"`
}

// BookingAllocation carries one trace's room allocations
type BookingAllocation struct {
	TraceID          string           `json:"traceId"`
	RoomsAllocations []RoomAllocation `json:"roomsAllocations"`
}

// AllocateGuestsRequest submits guest data for an itinerary
type AllocateGuestsRequest struct {
	ItineraryCode string              `json:"itineraryCode"`
	BookingArray  []BookingAllocation `json:"bookingArray"`
}

// AllocationResult carries the possibly rotated identifiers
type AllocationResult struct {
	TraceID       string `json:"traceId"`
	ItineraryCode string `json:"itineraryCode"`
}

// AllocateGuestsResult is the data payload of allocateGuests
type AllocateGuestsResult struct {
	Results []AllocationResult `json:"results"`
}

// RecheckPriceRequest requests a fresh price post-allocation
type RecheckPriceRequest struct {
	ItineraryCode string `json:"itineraryCode"`
	TraceID       string `json:"traceId"`
}

// RateDetails carries the re-quoted rate. FinalRate may be absent, in
// which case the caller falls back to PriceChangeData.CurrentTotalAmount.
type RateDetails struct {
	FinalRate float64 `json:"finalRate"`
}

// RecheckDetail is one detail entry of recheckPrice
type RecheckDetail struct {
	PriceChangeData PriceChangeData `json:"priceChangeData"`
	RateDetails     *RateDetails    `json:"rateDetails,omitempty"`
}

// RecheckPriceResult is the data payload of recheckPrice
type RecheckPriceResult struct {
	Details []RecheckDetail `json:"details"`
}

// BookHotelRequest finalizes a booking with the original identifiers
type BookHotelRequest struct {
	TraceID       string `json:"traceId"`
	ItineraryCode string `json:"itineraryCode"`
}

// RoomConfirmationPayload is the supplier's per-room confirmation
type RoomConfirmationPayload struct {
	RoomID             string `json:"roomId"`
	ConfirmationNumber string `json:"confirmationNumber"`
	Status             string `json:"status"`
}

// BookingDetails is the supplier's booking confirmation payload
type BookingDetails struct {
	BookingID          string                    `json:"bookingId"`
	ConfirmationNumber string                    `json:"confirmationNumber"`
	Status             string                    `json:"status"`
	RoomConfirmations  []RoomConfirmationPayload `json:"roomConfirmations,omitempty"`
}

// BookHotelResult is the data payload of bookHotel
type BookHotelResult struct {
	BookingDetails BookingDetails `json:"bookingDetails"`
}

// CancelBookingRequest cancels a confirmed booking
type CancelBookingRequest struct {
	BookingID string `json:"bookingId"`
	TraceID   string `json:"traceId"`
}

// CancelBookingResult is the data payload of cancelBooking
type CancelBookingResult struct {
	Status       string  `json:"status"`
	RefundAmount float64 `json:"refundAmount,omitempty"`
}
