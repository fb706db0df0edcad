package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// NewRateLimitMiddleware creates the general rate limiting middleware using
// ulule/limiter. It allows 300 requests per minute per IP address, which
// leaves headroom for ~50Hz sensor ingestion batched client-side.
func NewRateLimitMiddleware() gin.HandlerFunc {
	return newLimiter(300, 1*time.Minute)
}

// NewPairRateLimitMiddleware creates a stricter rate limiting middleware for
// the device pairing endpoint. It allows 10 requests per minute per IP.
func NewPairRateLimitMiddleware() gin.HandlerFunc {
	return newLimiter(10, 1*time.Minute)
}

// NewRateLimitMiddlewareWithConfig creates a rate limiting middleware with
// custom configuration.
func NewRateLimitMiddlewareWithConfig(limit int64, period time.Duration) gin.HandlerFunc {
	return newLimiter(limit, period)
}

func newLimiter(limit int64, period time.Duration) gin.HandlerFunc {
	rate := limiter.Rate{
		Period: period,
		Limit:  limit,
	}

	store := memory.NewStore()
	instance := limiter.New(store, rate)

	return mgin.NewMiddleware(instance)
}
