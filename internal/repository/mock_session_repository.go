package repository

import (
	"context"

	"github.com/smartride/ecodrive-service/internal/models"
)

// MockSessionRepository is a mock implementation of SessionRepository for testing
type MockSessionRepository struct {
	InsertFunc     func(ctx context.Context, session *models.DrivingSession) error
	ListAllFunc    func(ctx context.Context) ([]*models.DrivingSession, error)
	MostRecentFunc func(ctx context.Context) (*models.DrivingSession, error)
	ClearAllFunc   func(ctx context.Context) error

	// Inserted records every session passed to Insert by the default
	// InsertFunc, in call order.
	Inserted []*models.DrivingSession
}

// NewMockSessionRepository creates a new mock repository with default implementations
func NewMockSessionRepository() *MockSessionRepository {
	m := &MockSessionRepository{}
	m.InsertFunc = func(_ context.Context, session *models.DrivingSession) error {
		m.Inserted = append(m.Inserted, session)
		return nil
	}
	m.ListAllFunc = func(_ context.Context) ([]*models.DrivingSession, error) {
		return []*models.DrivingSession{}, nil
	}
	m.MostRecentFunc = func(_ context.Context) (*models.DrivingSession, error) {
		return nil, nil
	}
	m.ClearAllFunc = func(_ context.Context) error {
		return nil
	}
	return m
}

// Insert implements SessionRepository.Insert
func (m *MockSessionRepository) Insert(ctx context.Context, session *models.DrivingSession) error {
	return m.InsertFunc(ctx, session)
}

// ListAll implements SessionRepository.ListAll
func (m *MockSessionRepository) ListAll(ctx context.Context) ([]*models.DrivingSession, error) {
	return m.ListAllFunc(ctx)
}

// MostRecent implements SessionRepository.MostRecent
func (m *MockSessionRepository) MostRecent(ctx context.Context) (*models.DrivingSession, error) {
	return m.MostRecentFunc(ctx)
}

// ClearAll implements SessionRepository.ClearAll
func (m *MockSessionRepository) ClearAll(ctx context.Context) error {
	return m.ClearAllFunc(ctx)
}
