package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sortyourtrip/hotel-crm-backend/internal/config"
	"github.com/sortyourtrip/hotel-crm-backend/internal/services"
	"github.com/sortyourtrip/hotel-crm-backend/internal/utils"
	"github.com/sortyourtrip/hotel-crm-backend/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// operatorNamespace scopes the name-based operator ids to this service so
// the id derived from the configured email is stable across restarts.
var operatorNamespace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte("hotel-crm.sortyourtrip.com"))

// AuthHandler handles operator authentication endpoints
type AuthHandler struct {
	cfg          *config.AuthConfig
	jwtService   *jwt.Service
	auditService *services.AuditService
	logger       *logrus.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(cfg *config.AuthConfig, jwtService *jwt.Service, auditService *services.AuditService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		cfg:          cfg,
		jwtService:   jwtService,
		auditService: auditService,
		logger:       logger,
	}
}

// LoginRequest carries operator credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries a refresh token to exchange
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Login authenticates a CRM operator
// @Summary Operator login
// @Description Validates operator credentials and issues a token pair
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{} "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	ip := utils.GetRealIP(c)
	userAgent := utils.GetUserAgent(c)

	if !strings.EqualFold(email, h.cfg.OperatorEmail) {
		h.safeLogLogin(nil, email, ip, userAgent, false, "unknown operator")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(h.cfg.OperatorPasswordHash), []byte(req.Password)); err != nil {
		h.safeLogLogin(nil, email, ip, userAgent, false, "wrong password")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	operatorID := uuid.NewSHA1(operatorNamespace, []byte(email))
	roles := []string{"operator"}

	accessToken, err := h.jwtService.GenerateAccessToken(operatorID, email, roles)
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate access token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue tokens"})
		return
	}
	refreshToken, err := h.jwtService.GenerateRefreshToken(operatorID, email)
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate refresh token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue tokens"})
		return
	}

	h.safeLogLogin(&operatorID, email, ip, userAgent, true, "")

	c.JSON(http.StatusOK, gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"operator_id":   operatorID,
		"email":         email,
		"roles":         roles,
	})
}

// Refresh exchanges a refresh token for a new token pair
// @Summary Refresh tokens
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{} "Invalid refresh token"
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	ip := utils.GetRealIP(c)
	userAgent := utils.GetUserAgent(c)

	claims, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}

	roles := []string{"operator"}
	accessToken, err := h.jwtService.GenerateAccessToken(claims.OperatorID, claims.Email, roles)
	if err != nil {
		h.safeLogTokenRefresh(claims.OperatorID, ip, userAgent, false)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue tokens"})
		return
	}
	refreshToken, err := h.jwtService.GenerateRefreshToken(claims.OperatorID, claims.Email)
	if err != nil {
		h.safeLogTokenRefresh(claims.OperatorID, ip, userAgent, false)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue tokens"})
		return
	}

	h.safeLogTokenRefresh(claims.OperatorID, ip, userAgent, true)

	c.JSON(http.StatusOK, gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

func (h *AuthHandler) safeLogLogin(operatorID *uuid.UUID, email, ip, userAgent string, success bool, reason string) {
	if err := h.auditService.LogLogin(operatorID, email, ip, userAgent, success, reason); err != nil {
		h.logger.WithError(err).Warn("Failed to record login audit event")
	}
}

func (h *AuthHandler) safeLogTokenRefresh(operatorID uuid.UUID, ip, userAgent string, success bool) {
	if err := h.auditService.LogTokenRefresh(operatorID, ip, userAgent, success); err != nil {
		h.logger.WithError(err).Warn("Failed to record token refresh audit event")
	}
}
