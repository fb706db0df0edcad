package handlers

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
)

const testDeviceKey = "correct-horse-battery-staple"

func setupPairTest(t *testing.T) (*PairHandler, *auth.JWTService) {
	t.Helper()

	hash, err := auth.HashDeviceKey(testDeviceKey)
	require.NoError(t, err)

	jwtService := auth.NewJWTService("test-secret", time.Hour)
	handler := NewPairHandler(jwtService, hash)

	gin.SetMode(gin.TestMode)

	return handler, jwtService
}

func postPair(handler *PairHandler, body interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/pair", bytes.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Pair(c)
	return w
}

func TestPairHandler_Success(t *testing.T) {
	handler, jwtService := setupPairTest(t)

	w := postPair(handler, PairRequest{DeviceID: "pixel-7-sr", DeviceKey: testDeviceKey})

	assert.Equal(t, http.StatusOK, w.Code)

	var response PairResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "pixel-7-sr", response.DeviceID)
	assert.NotEmpty(t, response.Token)

	// The issued token must be accepted back by the same service.
	claims, err := jwtService.ValidateToken(response.Token)
	require.NoError(t, err)
	assert.Equal(t, "pixel-7-sr", claims.DeviceID)
}

func TestPairHandler_WrongKey(t *testing.T) {
	handler, _ := setupPairTest(t)

	w := postPair(handler, PairRequest{DeviceID: "pixel-7-sr", DeviceKey: "not-the-right-key-at-all"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPairHandler_MissingFields(t *testing.T) {
	handler, _ := setupPairTest(t)

	w := postPair(handler, map[string]string{"deviceId": "pixel-7-sr"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPairHandler_PairingDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jwtService := auth.NewJWTService("test-secret", time.Hour)
	handler := NewPairHandler(jwtService, "")

	w := postPair(handler, PairRequest{DeviceID: "pixel-7-sr", DeviceKey: testDeviceKey})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
