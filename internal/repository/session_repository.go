// Package repository provides data access interfaces and implementations.
package repository

import (
	"context"

	"github.com/smartride/ecodrive-service/internal/models"
)

// SessionRepository defines the interface for driving-session persistence.
// The core inserts each ended session exactly once and never mutates a
// stored record afterward.
type SessionRepository interface {
	// Insert persists one finalized driving session
	Insert(ctx context.Context, session *models.DrivingSession) error

	// ListAll retrieves all driving sessions, newest first
	ListAll(ctx context.Context) ([]*models.DrivingSession, error)

	// MostRecent retrieves the most recent driving session, or nil when
	// no session has been recorded
	MostRecent(ctx context.Context) (*models.DrivingSession, error)

	// ClearAll deletes all stored driving sessions
	ClearAll(ctx context.Context) error
}
