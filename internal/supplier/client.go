package supplier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/sortyourtrip/hotel-crm-backend/internal/config"
)

// Client talks to the hotel supplier's JSON API. Every response follows the
// {success, message, data} envelope; success:false is an application-level
// error (APIError), anything below that is a transport error.
type Client struct {
	cfg    *config.SupplierConfig
	logger *logrus.Logger
	client *http.Client
}

// NewClient creates a new supplier API client
func NewClient(cfg *config.SupplierConfig, logger *logrus.Logger) *Client {
	return &Client{
		cfg:    cfg,
		logger: logger,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// envelope is the supplier's uniform response wrapper
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// APIError is a supplier-reported failure (success:false). It is
// recoverable: the workflow surfaces the message and reverts to the
// nearest safe state instead of treating it as a transport fault.
type APIError struct {
	Operation string
	Message   string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s failed", e.Operation)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// post sends a JSON payload and decodes the envelope's data into out.
func (c *Client) post(ctx context.Context, path, operation string, payload, out interface{}) error {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.WithError(err).WithField("operation", operation).Error("Supplier call failed")
		return fmt.Errorf("failed to call supplier for %s: %w", operation, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", operation, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.WithFields(logrus.Fields{
			"operation":   operation,
			"status_code": resp.StatusCode,
			"response":    string(body),
		}).Error("Supplier returned non-200 status")
		return fmt.Errorf("supplier returned status %d for %s", resp.StatusCode, operation)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", operation, err)
	}

	if !env.Success {
		c.logger.WithFields(logrus.Fields{
			"operation": operation,
			"message":   env.Message,
		}).Warn("Supplier reported application error")
		return &APIError{Operation: operation, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode %s data: %w", operation, err)
		}
	}

	return nil
}

// SelectRoomRates locks in the operator's room/rate selection and returns
// the mandatory-field flags plus any price drift.
func (c *Client) SelectRoomRates(ctx context.Context, req *SelectRoomRatesRequest) (*SelectRoomRatesResult, error) {
	var result SelectRoomRatesResult
	if err := c.post(ctx, "/bookings/hotel/select-room-rates", "selectRoomRates", req, &result); err != nil {
		return nil, err
	}
	if len(result.Results) == 0 {
		return nil, fmt.Errorf("selectRoomRates returned no results")
	}

	c.logger.WithFields(logrus.Fields{
		"trace_id":       req.TraceID,
		"itinerary_code": req.ItineraryCode,
	}).Info("Room rate selection confirmed by supplier")

	return &result, nil
}

// AllocateGuests submits the per-room guest lists. The returned trace id
// and itinerary code may differ from the submitted ones; the caller must
// use the returned pair for the subsequent recheck.
func (c *Client) AllocateGuests(ctx context.Context, req *AllocateGuestsRequest) (*AllocateGuestsResult, error) {
	var result AllocateGuestsResult
	if err := c.post(ctx, "/bookings/hotel/allocate-guests", "allocateGuests", req, &result); err != nil {
		return nil, err
	}
	if len(result.Results) == 0 {
		return nil, fmt.Errorf("allocateGuests returned no results")
	}

	c.logger.WithFields(logrus.Fields{
		"itinerary_code":         req.ItineraryCode,
		"rotated_trace_id":       result.Results[0].TraceID,
		"rotated_itinerary_code": result.Results[0].ItineraryCode,
	}).Info("Guests allocated with supplier")

	return &result, nil
}

// RecheckPrice requests a fresh price for an allocated itinerary.
func (c *Client) RecheckPrice(ctx context.Context, req *RecheckPriceRequest) (*RecheckPriceResult, error) {
	var result RecheckPriceResult
	if err := c.post(ctx, "/bookings/hotel/recheck-price", "recheckPrice", req, &result); err != nil {
		return nil, err
	}
	if len(result.Details) == 0 {
		return nil, fmt.Errorf("recheckPrice returned no details")
	}

	detail := result.Details[0]
	c.logger.WithFields(logrus.Fields{
		"trace_id":         req.TraceID,
		"is_price_changed": detail.PriceChangeData.IsPriceChanged,
		"current_total":    detail.PriceChangeData.CurrentTotalAmount,
	}).Info("Price recheck completed")

	return &result, nil
}

// BookHotel finalizes the booking against the original identifiers.
func (c *Client) BookHotel(ctx context.Context, req *BookHotelRequest) (*BookHotelResult, error) {
	var result BookHotelResult
	if err := c.post(ctx, "/bookings/hotel/book", "bookHotel", req, &result); err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"trace_id":       req.TraceID,
		"itinerary_code": req.ItineraryCode,
		"confirmation":   result.BookingDetails.ConfirmationNumber,
	}).Info("Hotel booking confirmed by supplier")

	return &result, nil
}

// CancelBooking cancels a previously confirmed booking.
func (c *Client) CancelBooking(ctx context.Context, req *CancelBookingRequest) (*CancelBookingResult, error) {
	var result CancelBookingResult
	if err := c.post(ctx, "/bookings/hotel/cancel", "cancelBooking", req, &result); err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"booking_id": req.BookingID,
		"status":     result.Status,
	}).Info("Hotel booking cancelled with supplier")

	return &result, nil
}
