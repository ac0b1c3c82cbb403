package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sortyourtrip/hotel-crm-backend/internal/middleware"
	"github.com/sortyourtrip/hotel-crm-backend/internal/models"
	"github.com/sortyourtrip/hotel-crm-backend/internal/services"
	"github.com/sortyourtrip/hotel-crm-backend/internal/utils"
)

// BookingsHandler handles the stored-bookings endpoints
type BookingsHandler struct {
	workflowService *services.BookingWorkflowService
	auditService    *services.AuditService
	logger          *logrus.Logger
}

// NewBookingsHandler creates a new BookingsHandler
func NewBookingsHandler(
	workflowService *services.BookingWorkflowService,
	auditService *services.AuditService,
	logger *logrus.Logger,
) *BookingsHandler {
	return &BookingsHandler{
		workflowService: workflowService,
		auditService:    auditService,
		logger:          logger,
	}
}

// ListBookings lists the operator's confirmed bookings
// @Summary List bookings
// @Tags Bookings
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param limit query int false "Page size (default 20)"
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]interface{}
// @Router /bookings [get]
func (h *BookingsHandler) ListBookings(c *gin.Context) {
	opCtx, exists := middleware.GetOperatorContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "operator not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	bookings, err := h.workflowService.ListBookings(c.Request.Context(), opCtx.OperatorID, limit, offset)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list bookings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list bookings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// GetBooking returns one stored booking
// @Summary Get booking
// @Tags Bookings
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param booking_id path string true "Booking ID"
// @Success 200 {object} models.HotelBooking
// @Failure 404 {object} map[string]interface{} "Booking not found"
// @Router /bookings/{booking_id} [get]
func (h *BookingsHandler) GetBooking(c *gin.Context) {
	opCtx, exists := middleware.GetOperatorContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "operator not authenticated"})
		return
	}

	bookingID, err := uuid.Parse(c.Param("booking_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking_id"})
		return
	}

	booking, err := h.workflowService.GetBooking(c.Request.Context(), opCtx.OperatorID, bookingID)
	if err != nil {
		if errors.Is(err, services.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logger.WithError(err).Error("Failed to get booking")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get booking"})
		return
	}

	c.JSON(http.StatusOK, booking)
}

// CancelBooking cancels a confirmed booking with the supplier
// @Summary Cancel booking
// @Tags Bookings
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param booking_id path string true "Booking ID"
// @Param request body models.CancelHotelBookingRequest false "Cancellation reason"
// @Success 200 {object} models.HotelBooking
// @Failure 400 {object} map[string]interface{} "Booking not cancellable"
// @Failure 404 {object} map[string]interface{} "Booking not found"
// @Router /bookings/{booking_id}/cancel [post]
func (h *BookingsHandler) CancelBooking(c *gin.Context) {
	opCtx, exists := middleware.GetOperatorContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "operator not authenticated"})
		return
	}

	bookingID, err := uuid.Parse(c.Param("booking_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking_id"})
		return
	}

	var req models.CancelHotelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	booking, err := h.workflowService.CancelBooking(c.Request.Context(), opCtx.OperatorID, bookingID, req.CancellationReason)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrBookingNotCancellable):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.WithError(err).Error("Failed to cancel booking")
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		}
		return
	}

	reason := ""
	if req.CancellationReason != nil {
		reason = *req.CancellationReason
	}
	if err := h.auditService.LogBookingCancelled(opCtx.OperatorID, bookingID, reason, utils.GetRealIP(c), utils.GetUserAgent(c)); err != nil {
		h.logger.WithError(err).Warn("Failed to record cancellation audit event")
	}

	c.JSON(http.StatusOK, booking)
}
