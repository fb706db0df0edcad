package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smartride/ecodrive-service/internal/models"
	"github.com/smartride/ecodrive-service/internal/session"
)

// IngestHandler handles incoming sensor data from the mobile client. Readings
// are fed into the active session's pipeline; requests arriving without an
// active session are rejected so the client can stop streaming.
type IngestHandler struct {
	manager *session.Manager
}

// NewIngestHandler creates a new sensor ingestion handler
func NewIngestHandler(manager *session.Manager) *IngestHandler {
	return &IngestHandler{manager: manager}
}

// AxisReadingRequest represents one 3-axis sensor reading. Zero values are
// legitimate sensor output, so no field besides the timestamp is validated.
type AxisReadingRequest struct {
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Z         float64   `json:"z"`
	Timestamp time.Time `json:"timestamp"`
}

// AxisBatchRequest represents a batch of 3-axis readings, oldest first.
// Clients batch locally to stay under the ingestion rate limit.
type AxisBatchRequest struct {
	Readings []AxisReadingRequest `json:"readings" binding:"required,min=1,max=500"`
}

// LocationRequest represents one raw location fix. ProviderDisabled signals
// that the client lost its location provider; the fix fields are ignored and
// the speed state is reset.
type LocationRequest struct {
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	Accuracy         float64   `json:"accuracy"`
	Timestamp        time.Time `json:"timestamp"`
	ProviderDisabled bool      `json:"providerDisabled"`
}

// PostAccelerometer ingests a batch of accelerometer readings
// POST /api/v1/ingest/accelerometer
func (h *IngestHandler) PostAccelerometer(c *gin.Context) {
	h.postAxisBatch(c, func(active *session.Aggregator, reading models.AxisReading) bool {
		return active.OnAccelerometer(reading)
	})
}

// PostGyroscope ingests a batch of gyroscope readings
// POST /api/v1/ingest/gyroscope
func (h *IngestHandler) PostGyroscope(c *gin.Context) {
	h.postAxisBatch(c, func(active *session.Aggregator, reading models.AxisReading) bool {
		return active.OnGyroscope(reading)
	})
}

// postAxisBatch parses an axis batch and feeds it to the active session via
// the provided ingest function.
func (h *IngestHandler) postAxisBatch(c *gin.Context, ingest func(*session.Aggregator, models.AxisReading) bool) {
	var req AxisBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request body: " + err.Error(),
		})
		return
	}

	active := h.manager.Active()
	if active == nil {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "no_active_session",
			"message": "No driving session is active",
		})
		return
	}

	accepted := 0
	for _, r := range req.Readings {
		if ingest(active, models.AxisReading{X: r.X, Y: r.Y, Z: r.Z, Timestamp: r.Timestamp}) {
			accepted++
		}
	}

	c.JSON(http.StatusAccepted, gin.H{
		"accepted": accepted,
		"dropped":  len(req.Readings) - accepted,
	})
}

// PostLocation ingests one raw location fix, or a provider-lost signal
// POST /api/v1/ingest/location
func (h *IngestHandler) PostLocation(c *gin.Context) {
	var req LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request body: " + err.Error(),
		})
		return
	}

	active := h.manager.Active()
	if active == nil {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "no_active_session",
			"message": "No driving session is active",
		})
		return
	}

	var ok bool
	if req.ProviderDisabled {
		ok = active.OnProviderDisabled()
	} else {
		ok = active.OnLocationFix(models.LocationFix{
			Latitude:  req.Latitude,
			Longitude: req.Longitude,
			AccuracyM: req.Accuracy,
			Timestamp: req.Timestamp,
		})
	}

	c.JSON(http.StatusAccepted, gin.H{
		"accepted": ok,
	})
}
