package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartride/ecodrive-service/internal/notify"
	"github.com/smartride/ecodrive-service/internal/repository"
	"github.com/smartride/ecodrive-service/internal/session"
)

func setupIngestTest() (*IngestHandler, *session.Manager) {
	sessionRepo := repository.NewMockSessionRepository()
	manager := session.NewManager(
		session.Config{StreakThreshold: 5},
		sessionRepo,
		notify.NewMockNotifier(),
		testModelFactory,
	)

	gin.SetMode(gin.TestMode)

	return NewIngestHandler(manager), manager
}

func postJSON(handle gin.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")

	handle(c)
	return w
}

func TestIngestHandler_AccelerometerBatch(t *testing.T) {
	handler, manager := setupIngestTest()

	_, err := manager.StartSession()
	require.NoError(t, err)
	defer func() { _, _ = manager.EndSession(context.Background()) }()

	batch := AxisBatchRequest{Readings: []AxisReadingRequest{
		{X: 0.1, Y: 0.2, Z: 9.8, Timestamp: time.Now()},
		{X: 0.2, Y: 0.1, Z: 9.7, Timestamp: time.Now()},
	}}

	w := postJSON(handler.PostAccelerometer, "/api/v1/ingest/accelerometer", batch)
	assert.Equal(t, http.StatusAccepted, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(2), response["accepted"])
	assert.Equal(t, float64(0), response["dropped"])
}

func TestIngestHandler_NoActiveSession(t *testing.T) {
	handler, _ := setupIngestTest()

	batch := AxisBatchRequest{Readings: []AxisReadingRequest{{X: 0.1, Y: 0.2, Z: 9.8}}}

	w := postJSON(handler.PostGyroscope, "/api/v1/ingest/gyroscope", batch)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = postJSON(handler.PostLocation, "/api/v1/ingest/location", LocationRequest{Latitude: 48.85, Longitude: 2.35, Accuracy: 5})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestIngestHandler_EmptyBatchRejected(t *testing.T) {
	handler, manager := setupIngestTest()

	_, err := manager.StartSession()
	require.NoError(t, err)
	defer func() { _, _ = manager.EndSession(context.Background()) }()

	w := postJSON(handler.PostAccelerometer, "/api/v1/ingest/accelerometer", AxisBatchRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIngestHandler_Location(t *testing.T) {
	handler, manager := setupIngestTest()

	_, err := manager.StartSession()
	require.NoError(t, err)
	defer func() { _, _ = manager.EndSession(context.Background()) }()

	fix := LocationRequest{Latitude: 48.8566, Longitude: 2.3522, Accuracy: 5, Timestamp: time.Now()}

	w := postJSON(handler.PostLocation, "/api/v1/ingest/location", fix)
	assert.Equal(t, http.StatusAccepted, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, true, response["accepted"])
}

func TestIngestHandler_ProviderDisabled(t *testing.T) {
	handler, manager := setupIngestTest()

	_, err := manager.StartSession()
	require.NoError(t, err)
	defer func() { _, _ = manager.EndSession(context.Background()) }()

	w := postJSON(handler.PostLocation, "/api/v1/ingest/location", LocationRequest{ProviderDisabled: true})
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestIngestHandler_MalformedBody(t *testing.T) {
	handler, manager := setupIngestTest()

	_, err := manager.StartSession()
	require.NoError(t, err)
	defer func() { _, _ = manager.EndSession(context.Background()) }()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/ingest/accelerometer", bytes.NewReader([]byte("{not json")))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.PostAccelerometer(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
