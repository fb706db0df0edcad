// Package server provides HTTP server setup and configuration.
package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/smartride/ecodrive-service/internal/auth"
	"github.com/smartride/ecodrive-service/internal/config"
	"github.com/smartride/ecodrive-service/internal/handlers"
	"github.com/smartride/ecodrive-service/internal/middleware"
	"github.com/smartride/ecodrive-service/internal/repository"
	"github.com/smartride/ecodrive-service/internal/session"
)

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check if request ID already exists in header
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			// Generate new UUID for request ID
			requestID = uuid.New().String()
		}

		// Set request ID in context and response header
		c.Set("RequestID", requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()
	}
}

// Dependencies holds all dependencies needed to create a server
type Dependencies struct {
	Config      *config.Config
	SessionRepo repository.SessionRepository
	Manager     *session.Manager
}

// New creates a new Gin router with all routes configured
func New(deps *Dependencies) *gin.Engine {
	// Set Gin to release mode to disable ANSI colors in logs
	gin.SetMode(gin.ReleaseMode)

	// Use gin.New() instead of gin.Default() to have explicit control over middleware
	// gin.Default() includes colored logging which contaminates HTTP responses with ANSI codes
	router := gin.New()

	// Add recovery middleware (without colored output)
	router.Use(gin.Recovery())

	// Add logger middleware without colored output
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(_ gin.LogFormatterParams) string {
			// Custom log format without ANSI color codes
			return ""
		},
		Output:    nil,                        // Disable output to prevent any log contamination
		SkipPaths: []string{"/api/v1/health"}, // Skip health check logging
	}))

	// Add CORS middleware for web client support
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Encoding", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// Add middlewares
	router.Use(RequestIDMiddleware())
	router.Use(middleware.NewRateLimitMiddleware())
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithDecompressFn(gzip.DefaultDecompressHandle)))

	// Initialize JWT service
	jwtService := auth.NewJWTService(
		deps.Config.Auth.JWTSecret,
		deps.Config.Auth.TokenTTL,
	)

	// Initialize auth middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	pairRateLimiter := middleware.NewPairRateLimitMiddleware()

	// Initialize handlers
	pairHandler := handlers.NewPairHandler(jwtService, deps.Config.Auth.DeviceKeyHash)
	ingestHandler := handlers.NewIngestHandler(deps.Manager)
	sessionHandler := handlers.NewSessionHandler(deps.Manager, deps.SessionRepo)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check endpoint for network quality detection
		v1.GET("/health", func(c *gin.Context) {
			c.PureJSON(http.StatusOK, gin.H{
				"status":    "healthy",
				"timestamp": time.Now().UTC().Format(time.RFC3339),
				"version":   "1.0.0",
			})
		})

		// Pairing route (with stricter rate limiting)
		authGroup := v1.Group("/auth")
		authGroup.Use(pairRateLimiter)
		{
			authGroup.POST("/pair", pairHandler.Pair)
		}

		// Protected sensor ingestion routes
		ingest := v1.Group("/ingest")
		ingest.Use(authMiddleware.Required())
		{
			ingest.POST("/accelerometer", ingestHandler.PostAccelerometer)
			ingest.POST("/gyroscope", ingestHandler.PostGyroscope)
			ingest.POST("/location", ingestHandler.PostLocation)
		}

		// Protected session routes
		sessions := v1.Group("/sessions")
		sessions.Use(authMiddleware.Required())
		{
			sessions.POST("", sessionHandler.Start)
			sessions.GET("", sessionHandler.List)
			sessions.GET("/current", sessionHandler.Current)
			sessions.POST("/current/end", sessionHandler.End)
			sessions.GET("/recent", sessionHandler.MostRecent)
			sessions.DELETE("", sessionHandler.Clear)
		}
	}

	return router
}
