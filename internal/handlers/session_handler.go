package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smartride/ecodrive-service/internal/models"
	"github.com/smartride/ecodrive-service/internal/repository"
	"github.com/smartride/ecodrive-service/internal/session"
)

// SessionHandler handles driving-session lifecycle and history requests
type SessionHandler struct {
	manager     *session.Manager
	sessionRepo repository.SessionRepository
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(manager *session.Manager, sessionRepo repository.SessionRepository) *SessionHandler {
	return &SessionHandler{
		manager:     manager,
		sessionRepo: sessionRepo,
	}
}

// EndSessionResponse represents the finalized session returned at session
// end. Persisted is false when the record could not be stored; the record is
// still returned so the client keeps the drive's results.
type EndSessionResponse struct {
	Session   models.DrivingSession `json:"session"`
	Persisted bool                  `json:"persisted"`
}

// Start begins a new driving session
// POST /api/v1/sessions
func (h *SessionHandler) Start(c *gin.Context) {
	active, err := h.manager.StartSession()
	if err != nil {
		if errors.Is(err, session.ErrSessionActive) {
			c.JSON(http.StatusConflict, gin.H{
				"error":   "session_active",
				"message": "A driving session is already active",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to start session",
		})
		return
	}

	c.JSON(http.StatusCreated, active.Snapshot())
}

// Current returns a snapshot of the running session
// GET /api/v1/sessions/current
func (h *SessionHandler) Current(c *gin.Context) {
	active := h.manager.Active()
	if active == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "no_active_session",
			"message": "No driving session is active",
		})
		return
	}

	c.JSON(http.StatusOK, active.Snapshot())
}

// End finalizes the running session
// POST /api/v1/sessions/current/end
func (h *SessionHandler) End(c *gin.Context) {
	result, err := h.manager.EndSession(c.Request.Context())
	if err != nil {
		if errors.Is(err, session.ErrNoActiveSession) {
			c.JSON(http.StatusConflict, gin.H{
				"error":   "no_active_session",
				"message": "No driving session is active",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to end session",
		})
		return
	}

	c.JSON(http.StatusOK, EndSessionResponse{
		Session:   result.Session,
		Persisted: result.Persisted,
	})
}

// List returns all recorded sessions, newest first
// GET /api/v1/sessions
func (h *SessionHandler) List(c *gin.Context) {
	sessions, err := h.sessionRepo.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to list sessions",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"total":    len(sessions),
	})
}

// MostRecent returns the most recently recorded session
// GET /api/v1/sessions/recent
func (h *SessionHandler) MostRecent(c *gin.Context) {
	recent, err := h.sessionRepo.MostRecent(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to load most recent session",
		})
		return
	}
	if recent == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "No sessions recorded yet",
		})
		return
	}

	c.JSON(http.StatusOK, recent)
}

// Clear deletes all recorded sessions
// DELETE /api/v1/sessions
func (h *SessionHandler) Clear(c *gin.Context) {
	if err := h.sessionRepo.ClearAll(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to clear sessions",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "All sessions cleared",
	})
}
