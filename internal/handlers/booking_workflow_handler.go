package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sortyourtrip/hotel-crm-backend/internal/middleware"
	"github.com/sortyourtrip/hotel-crm-backend/internal/models"
	"github.com/sortyourtrip/hotel-crm-backend/internal/services"
	"github.com/sortyourtrip/hotel-crm-backend/internal/utils"
)

// BookingWorkflowHandler handles the booking confirmation workflow endpoints
type BookingWorkflowHandler struct {
	workflowService *services.BookingWorkflowService
	auditService    *services.AuditService
	logger          *logrus.Logger
}

// NewBookingWorkflowHandler creates a new BookingWorkflowHandler
func NewBookingWorkflowHandler(
	workflowService *services.BookingWorkflowService,
	auditService *services.AuditService,
	logger *logrus.Logger,
) *BookingWorkflowHandler {
	return &BookingWorkflowHandler{
		workflowService: workflowService,
		auditService:    auditService,
		logger:          logger,
	}
}

// ============================================================================
// CREATE SESSION - POST /api/v1/booking/sessions
// ============================================================================

// CreateSession opens a booking session from the itinerary context
// @Summary Create booking session
// @Description Opens an ephemeral booking session for one hotel voucher
// @Tags Booking Workflow
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param request body models.CreateSessionRequest true "Session context"
// @Success 201 {object} models.SessionStatusResponse
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Router /booking/sessions [post]
func (h *BookingWorkflowHandler) CreateSession(c *gin.Context) {
	opCtx, exists := middleware.GetOperatorContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "operator not authenticated"})
		return
	}

	var req models.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	session, err := h.workflowService.CreateSession(opCtx.OperatorID, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.safeLogSessionCreated(opCtx.OperatorID, session.ID, session.HotelID, c)

	c.JSON(http.StatusCreated, gin.H{
		"session_id": session.ID,
		"status":     session.Status,
		"expires_at": session.ExpiresAt,
	})
}

// ============================================================================
// GET SESSION - GET /api/v1/booking/sessions/:session_id
// ============================================================================

// GetSession returns the current state of a booking session
// @Summary Get session status
// @Tags Booking Workflow
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param session_id path string true "Session ID"
// @Success 200 {object} models.SessionStatusResponse
// @Failure 404 {object} map[string]interface{} "Session not found"
// @Router /booking/sessions/{session_id} [get]
func (h *BookingWorkflowHandler) GetSession(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	status, err := h.workflowService.GetSessionStatus(sessionID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// ============================================================================
// DISCARD SESSION - DELETE /api/v1/booking/sessions/:session_id
// ============================================================================

// DiscardSession drops a session, mirroring the operator closing the form
// @Summary Discard booking session
// @Tags Booking Workflow
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param session_id path string true "Session ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{} "Session not found"
// @Router /booking/sessions/{session_id} [delete]
func (h *BookingWorkflowHandler) DiscardSession(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	if err := h.workflowService.DiscardSession(sessionID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "session discarded"})
}

// ============================================================================
// SELECT ROOMS - POST /api/v1/booking/sessions/:session_id/select-rooms
// ============================================================================

// SelectRooms submits the chosen recommendation for the initial price check
// @Summary Select room rates
// @Description Locks in a recommendation and runs the initial price check
// @Tags Booking Workflow
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param session_id path string true "Session ID"
// @Param request body models.SelectRoomsRequest true "Recommendation choice"
// @Success 200 {object} models.SelectRoomsResponse
// @Failure 400 {object} map[string]interface{} "Validation or supplier error"
// @Failure 409 {object} map[string]interface{} "Another operation in progress"
// @Router /booking/sessions/{session_id}/select-rooms [post]
func (h *BookingWorkflowHandler) SelectRooms(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req models.SelectRoomsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	response, err := h.workflowService.SelectRooms(c.Request.Context(), sessionID, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ============================================================================
// PRICE DECISION - POST /api/v1/booking/sessions/:session_id/price-decision
// ============================================================================

// RespondToPriceChange accepts or declines drift from the initial price check
// @Summary Respond to price change
// @Tags Booking Workflow
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param session_id path string true "Session ID"
// @Param request body models.PriceDecisionRequest true "Accept or decline"
// @Success 200 {object} models.SelectRoomsResponse
// @Failure 400 {object} map[string]interface{} "No pending price change"
// @Router /booking/sessions/{session_id}/price-decision [post]
func (h *BookingWorkflowHandler) RespondToPriceChange(c *gin.Context) {
	opCtx, exists := middleware.GetOperatorContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "operator not authenticated"})
		return
	}

	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req models.PriceDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	response, err := h.workflowService.RespondToPriceChange(sessionID, req.Accept)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.safeLogPriceDecision(opCtx.OperatorID, response, req.Accept, c)

	c.JSON(http.StatusOK, response)
}

// ============================================================================
// SUBMIT GUESTS - POST /api/v1/booking/sessions/:session_id/guests
// ============================================================================

// SubmitGuests validates the guest form and runs allocation plus recheck
// @Summary Submit guest information
// @Description Validates guests, allocates them with the supplier and rechecks the price
// @Tags Booking Workflow
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param session_id path string true "Session ID"
// @Param request body models.SubmitGuestsRequest true "Guest form"
// @Success 200 {object} models.SubmitGuestsResponse
// @Failure 409 {object} map[string]interface{} "Another operation in progress"
// @Failure 422 {object} map[string]interface{} "Field validation errors"
// @Router /booking/sessions/{session_id}/guests [post]
func (h *BookingWorkflowHandler) SubmitGuests(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req models.SubmitGuestsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	response, err := h.workflowService.SubmitGuests(c.Request.Context(), sessionID, &req)
	if err != nil {
		var validationErr *models.GuestValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":  "validation_failed",
				"fields": validationErr.Fields,
			})
			return
		}
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ============================================================================
// BOOK - POST /api/v1/booking/sessions/:session_id/book
// ============================================================================

// Book finalizes the booking with the supplier
// @Summary Book hotel
// @Description Finalizes the booking; requires explicit price acceptance after drift
// @Tags Booking Workflow
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param session_id path string true "Session ID"
// @Param request body models.BookRequest true "Booking confirmation"
// @Success 200 {object} models.BookingConfirmation
// @Failure 400 {object} map[string]interface{} "Not ready to book"
// @Failure 409 {object} map[string]interface{} "Another operation in progress"
// @Router /booking/sessions/{session_id}/book [post]
func (h *BookingWorkflowHandler) Book(c *gin.Context) {
	opCtx, exists := middleware.GetOperatorContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "operator not authenticated"})
		return
	}

	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req models.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	confirmation, err := h.workflowService.Book(c.Request.Context(), sessionID, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.safeLogBookingCompleted(opCtx.OperatorID, confirmation, c)

	c.JSON(http.StatusOK, confirmation)
}

// ============================================================================
// HELPERS
// ============================================================================

func (h *BookingWorkflowHandler) sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session_id"})
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps workflow errors to HTTP statuses
func (h *BookingWorkflowHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrSessionExpired):
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrWorkflowBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidWorkflowState),
		errors.Is(err, services.ErrNoPendingPriceChange),
		errors.Is(err, services.ErrPriceNotAccepted),
		errors.Is(err, services.ErrRateNotConfirmed),
		errors.Is(err, services.ErrNoSelection),
		errors.Is(err, services.ErrNoGuestsToAllocate),
		errors.Is(err, services.ErrUnknownGuestSlot),
		errors.Is(err, services.ErrMissingIdentifiers),
		errors.Is(err, services.ErrRecommendationNotFound),
		errors.Is(err, services.ErrRateNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.WithError(err).Error("Booking workflow request failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}

func (h *BookingWorkflowHandler) safeLogSessionCreated(operatorID, sessionID uuid.UUID, hotelID string, c *gin.Context) {
	if err := h.auditService.LogSessionCreated(operatorID, sessionID, hotelID, utils.GetRealIP(c), utils.GetUserAgent(c)); err != nil {
		h.logger.WithError(err).Warn("Failed to record session audit event")
	}
}

func (h *BookingWorkflowHandler) safeLogPriceDecision(operatorID uuid.UUID, response *models.SelectRoomsResponse, accepted bool, c *gin.Context) {
	err := h.auditService.LogPriceDecision(
		operatorID,
		response.SessionID,
		accepted,
		response.TotalAmount,
		response.Currency,
		utils.GetRealIP(c),
		utils.GetUserAgent(c),
	)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to record price decision audit event")
	}
}

func (h *BookingWorkflowHandler) safeLogBookingCompleted(operatorID uuid.UUID, confirmation *models.BookingConfirmation, c *gin.Context) {
	err := h.auditService.LogBookingCompleted(
		operatorID,
		confirmation.BookingID,
		confirmation.SupplierConfirmation,
		confirmation.FinalRate,
		confirmation.Currency,
		utils.GetRealIP(c),
		utils.GetUserAgent(c),
	)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to record booking audit event")
	}
}
