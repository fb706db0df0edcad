// Package handlers provides HTTP handlers for the EcoDrive service.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smartride/ecodrive-service/internal/auth"
)

// PairHandler handles device pairing requests
type PairHandler struct {
	jwtService    *auth.JWTService
	deviceKeyHash string
}

// NewPairHandler creates a new pairing handler. Pairing is disabled when the
// device key hash is empty.
func NewPairHandler(jwtService *auth.JWTService, deviceKeyHash string) *PairHandler {
	return &PairHandler{
		jwtService:    jwtService,
		deviceKeyHash: deviceKeyHash,
	}
}

// PairRequest represents the device pairing request body
type PairRequest struct {
	DeviceID  string `json:"deviceId" binding:"required,min=1,max=128"`
	DeviceKey string `json:"deviceKey" binding:"required"`
}

// PairResponse represents the device pairing response
type PairResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	DeviceID  string    `json:"deviceId"`
}

// Pair exchanges the pre-shared device key for an access token
// POST /api/v1/auth/pair
func (h *PairHandler) Pair(c *gin.Context) {
	var req PairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request body: " + err.Error(),
		})
		return
	}

	if h.deviceKeyHash == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "pairing_disabled",
			"message": "Device pairing is not configured on this server",
		})
		return
	}

	if !auth.VerifyDeviceKey(req.DeviceKey, h.deviceKeyHash) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "invalid_credentials",
			"message": "Invalid device key",
		})
		return
	}

	token, err := h.jwtService.GenerateToken(req.DeviceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to generate token",
		})
		return
	}

	c.JSON(http.StatusOK, PairResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(h.jwtService.GetTokenTTL()),
		DeviceID:  req.DeviceID,
	})
}
