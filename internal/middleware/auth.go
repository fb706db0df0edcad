// Package middleware provides HTTP middleware for the EcoDrive service.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/smartride/ecodrive-service/internal/auth"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// DeviceIDKey is the context key for the authenticated device's ID
const DeviceIDKey ContextKey = "device_id"

// AuthMiddleware provides device authentication middleware
type AuthMiddleware struct {
	jwtService *auth.JWTService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtService *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
	}
}

// Required returns a middleware that requires a valid device token.
// Returns 401 Unauthorized if the token is missing or invalid
func (m *AuthMiddleware) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := m.extractAndValidateToken(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": err.Error(),
			})
			c.Abort()
			return
		}

		c.Set(string(DeviceIDKey), claims.DeviceID)
		c.Next()
	}
}

// extractAndValidateToken extracts the JWT token from the request and validates it
func (m *AuthMiddleware) extractAndValidateToken(c *gin.Context) (*auth.Claims, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, errors.New("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, errors.New("invalid authorization header format")
	}

	tokenString := parts[1]
	if tokenString == "" {
		return nil, errors.New("missing token")
	}

	return m.jwtService.ValidateToken(tokenString)
}

// GetDeviceID retrieves the authenticated device's ID from the context
func GetDeviceID(c *gin.Context) (string, error) {
	deviceID, exists := c.Get(string(DeviceIDKey))
	if !exists {
		return "", errors.New("device not authenticated")
	}

	id, ok := deviceID.(string)
	if !ok {
		return "", errors.New("invalid device ID format")
	}

	return id, nil
}
