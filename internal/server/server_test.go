package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartride/ecodrive-service/internal/auth"
	"github.com/smartride/ecodrive-service/internal/classifier"
	"github.com/smartride/ecodrive-service/internal/config"
	"github.com/smartride/ecodrive-service/internal/notify"
	"github.com/smartride/ecodrive-service/internal/repository"
	"github.com/smartride/ecodrive-service/internal/session"
)

const testDeviceKey = "correct-horse-battery-staple"

func init() {
	// Set Gin to test mode
	gin.SetMode(gin.TestMode)
}

// newTestDeps builds server dependencies backed by a mock repository and a
// classifier that labels high-magnitude samples aggressive.
func newTestDeps(t *testing.T) (*Dependencies, *repository.MockSessionRepository) {
	t.Helper()

	hash, err := auth.HashDeviceKey(testDeviceKey)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.TokenTTL = time.Hour
	cfg.Auth.DeviceKeyHash = hash
	cfg.Pipeline.StreakThreshold = 5
	cfg.Pipeline.MotionCap = 1000
	cfg.Pipeline.MaxAccuracyM = 10
	cfg.Pipeline.MinFixInterval = 200 * time.Millisecond
	cfg.Pipeline.StationaryThresholdKmh = 3

	sessionRepo := repository.NewMockSessionRepository()
	manager := session.NewManager(
		session.Config{
			MotionCap:              cfg.Pipeline.MotionCap,
			StreakThreshold:        cfg.Pipeline.StreakThreshold,
			MaxAccuracyM:           cfg.Pipeline.MaxAccuracyM,
			MinFixInterval:         cfg.Pipeline.MinFixInterval,
			StationaryThresholdKmh: cfg.Pipeline.StationaryThresholdKmh,
		},
		sessionRepo,
		notify.NewMockNotifier(),
		func() (classifier.Model, error) {
			return classifier.ModelFunc(func(features []float64) (float64, error) {
				if features[6] > 5 {
					return 0.9, nil
				}
				return 0.1, nil
			}), nil
		},
	)

	return &Dependencies{
		Config:      cfg,
		SessionRepo: sessionRepo,
		Manager:     manager,
	}, sessionRepo
}

func pairToken(t *testing.T, router *gin.Engine) string {
	t.Helper()

	body, _ := json.Marshal(map[string]string{
		"deviceId":  "pixel-7-sr",
		"deviceKey": testDeviceKey,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/pair", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	token, ok := response["token"].(string)
	require.True(t, ok)
	return token
}

func authedRequest(method, path, token string, body interface{}) *http.Request {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestHealthEndpoint(t *testing.T) {
	deps, _ := newTestDeps(t)
	router := New(deps)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response["status"])
	assert.Contains(t, response, "timestamp")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	deps, _ := newTestDeps(t)
	router := New(deps)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/sessions"},
		{http.MethodGet, "/api/v1/sessions"},
		{http.MethodPost, "/api/v1/ingest/accelerometer"},
		{http.MethodPost, "/api/v1/ingest/location"},
	}

	for _, p := range paths {
		req := httptest.NewRequest(p.method, p.path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", p.method, p.path)
	}
}

func TestNonExistentRoute(t *testing.T) {
	deps, _ := newTestDeps(t)
	router := New(deps)

	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestSessionFlow drives a whole session through the HTTP surface: pair,
// start, stream sensor batches, end, then read the history back.
func TestSessionFlow(t *testing.T) {
	deps, sessionRepo := newTestDeps(t)
	router := New(deps)

	token := pairToken(t, router)

	// Start a session.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodPost, "/api/v1/sessions", token, nil))
	require.Equal(t, http.StatusCreated, w.Code)

	// Starting again conflicts.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodPost, "/api/v1/sessions", token, nil))
	assert.Equal(t, http.StatusConflict, w.Code)

	// Stream paired accelerometer and gyroscope readings. The magnitudes
	// stay low, so every sample classifies as normal driving.
	base := time.Now()
	for i := 0; i < 6; i++ {
		ts := base.Add(time.Duration(i) * 100 * time.Millisecond)

		accel := map[string]interface{}{"readings": []map[string]interface{}{
			{"x": 0.2, "y": 0.1, "z": 0.9, "timestamp": ts},
		}}
		w = httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest(http.MethodPost, "/api/v1/ingest/accelerometer", token, accel))
		require.Equal(t, http.StatusAccepted, w.Code)

		gyro := map[string]interface{}{"readings": []map[string]interface{}{
			{"x": 0.01, "y": 0.02, "z": 0.01, "timestamp": ts},
		}}
		w = httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest(http.MethodPost, "/api/v1/ingest/gyroscope", token, gyro))
		require.Equal(t, http.StatusAccepted, w.Code)
	}

	// A location fix.
	fix := map[string]interface{}{
		"latitude":  48.8566,
		"longitude": 2.3522,
		"accuracy":  5.0,
		"timestamp": base,
	}
	w = httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodPost, "/api/v1/ingest/location", token, fix))
	require.Equal(t, http.StatusAccepted, w.Code)

	// Current snapshot should eventually reflect the classified samples.
	// Ingestion is asynchronous, so poll briefly.
	deadline := time.Now().Add(2 * time.Second)
	for {
		w = httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest(http.MethodGet, "/api/v1/sessions/current", token, nil))
		require.Equal(t, http.StatusOK, w.Code)

		var snap session.Snapshot
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
		if snap.NormalCount > 0 || time.Now().After(deadline) {
			assert.Positive(t, snap.NormalCount)
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	// End the session and check the finalized record.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodPost, "/api/v1/sessions/current/end", token, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var ended map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ended))
	assert.Equal(t, true, ended["persisted"])

	require.Len(t, sessionRepo.Inserted, 1)
	record := sessionRepo.Inserted[0]
	assert.Zero(t, record.AggressiveCount)
	assert.Positive(t, record.NormalCount)

	// Ending again conflicts.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodPost, "/api/v1/sessions/current/end", token, nil))
	assert.Equal(t, http.StatusConflict, w.Code)

	// Ingestion after the session ended is refused.
	accel := map[string]interface{}{"readings": []map[string]interface{}{
		{"x": 0.2, "y": 0.1, "z": 0.9, "timestamp": base},
	}}
	w = httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodPost, "/api/v1/ingest/accelerometer", token, accel))
	assert.Equal(t, http.StatusConflict, w.Code)
}
