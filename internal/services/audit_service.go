package services

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/sortyourtrip/hotel-crm-backend/internal/database"
	"github.com/sortyourtrip/hotel-crm-backend/internal/utils"
)

// AuditService writes security and booking events to the audit trail
type AuditService struct {
	db database.DB
}

// NewAuditService creates a new audit service
func NewAuditService(db database.DB) *AuditService {
	return &AuditService{db: db}
}

// AuditEvent represents one recorded event
type AuditEvent struct {
	OperatorID *uuid.UUID // nil for pre-authentication events
	Action     string     // e.g. "login", "booking_completed"
	EntityType string     // e.g. "operator", "session", "booking"
	EntityID   *uuid.UUID // affected entity, when known
	IPAddress  string
	UserAgent  string
	Details    map[string]interface{} // stored as JSONB
}

// LogLogin records an operator login attempt
func (s *AuditService) LogLogin(operatorID *uuid.UUID, email, ipAddress, userAgent string, success bool, reason string) error {
	details := map[string]interface{}{
		"email":       email,
		"success":     success,
		"device_info": utils.ParseUserAgent(userAgent),
	}
	if !success && reason != "" {
		details["reason"] = reason
	}

	action := "login_failed"
	if success {
		action = "login"
	}

	return s.logEvent(AuditEvent{
		OperatorID: operatorID,
		Action:     action,
		EntityType: "operator",
		EntityID:   operatorID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    details,
	})
}

// LogTokenRefresh records a refresh token exchange
func (s *AuditService) LogTokenRefresh(operatorID uuid.UUID, ipAddress, userAgent string, success bool) error {
	action := "token_refresh_failed"
	if success {
		action = "token_refresh"
	}

	return s.logEvent(AuditEvent{
		OperatorID: &operatorID,
		Action:     action,
		EntityType: "token",
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details: map[string]interface{}{
			"success":     success,
			"device_info": utils.ParseUserAgent(userAgent),
		},
	})
}

// LogSessionCreated records the opening of a booking session
func (s *AuditService) LogSessionCreated(operatorID, sessionID uuid.UUID, hotelID, ipAddress, userAgent string) error {
	return s.logEvent(AuditEvent{
		OperatorID: &operatorID,
		Action:     "session_created",
		EntityType: "session",
		EntityID:   &sessionID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details: map[string]interface{}{
			"hotel_id":    hotelID,
			"device_info": utils.ParseUserAgent(userAgent),
		},
	})
}

// LogPriceDecision records the operator's accept/decline of a drifted price
func (s *AuditService) LogPriceDecision(operatorID, sessionID uuid.UUID, accepted bool, totalAmount float64, currency, ipAddress, userAgent string) error {
	action := "price_declined"
	if accepted {
		action = "price_accepted"
	}

	return s.logEvent(AuditEvent{
		OperatorID: &operatorID,
		Action:     action,
		EntityType: "session",
		EntityID:   &sessionID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details: map[string]interface{}{
			"total_amount": totalAmount,
			"currency":     currency,
			"device_info":  utils.ParseUserAgent(userAgent),
		},
	})
}

// LogBookingCompleted records a successful hotel booking
func (s *AuditService) LogBookingCompleted(operatorID, bookingID uuid.UUID, confirmation string, finalRate float64, currency, ipAddress, userAgent string) error {
	return s.logEvent(AuditEvent{
		OperatorID: &operatorID,
		Action:     "booking_completed",
		EntityType: "booking",
		EntityID:   &bookingID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details: map[string]interface{}{
			"supplier_confirmation": confirmation,
			"final_rate":            finalRate,
			"currency":              currency,
			"device_info":           utils.ParseUserAgent(userAgent),
		},
	})
}

// LogBookingCancelled records a booking cancellation
func (s *AuditService) LogBookingCancelled(operatorID, bookingID uuid.UUID, reason, ipAddress, userAgent string) error {
	details := map[string]interface{}{
		"device_info": utils.ParseUserAgent(userAgent),
	}
	if reason != "" {
		details["reason"] = reason
	}

	return s.logEvent(AuditEvent{
		OperatorID: &operatorID,
		Action:     "booking_cancelled",
		EntityType: "booking",
		EntityID:   &bookingID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    details,
	})
}

// logEvent writes one row to the audit_logs table
func (s *AuditService) logEvent(event AuditEvent) error {
	query := `
		INSERT INTO audit_logs (operator_id, action, entity_type, entity_id, ip_address, user_agent, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`

	detailsJSON, err := json.Marshal(event.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal audit details: %w", err)
	}

	_, err = s.db.Exec(
		query,
		event.OperatorID,
		event.Action,
		event.EntityType,
		event.EntityID,
		event.IPAddress,
		event.UserAgent,
		detailsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to log audit event: %w", err)
	}

	return nil
}
