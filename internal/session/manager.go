package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/smartride/ecodrive-service/internal/advisor"
	"github.com/smartride/ecodrive-service/internal/classifier"
	"github.com/smartride/ecodrive-service/internal/repository"
)

// ErrSessionActive is returned when a session start is requested while
// another session is still running.
var ErrSessionActive = errors.New("a driving session is already active")

// ModelFactory builds a fresh classifier model for one session. Each session
// owns its model handle and releases it at session end, so parallel test
// sessions never share mutable state.
type ModelFactory func() (classifier.Model, error)

// Manager owns the at-most-one active session and builds a fresh pipeline
// (extractor, classifier adapter, speed estimator, aggression monitor) for
// every session it starts.
type Manager struct {
	cfg          Config
	repo         repository.SessionRepository
	notifier     advisor.Notifier
	modelFactory ModelFactory

	mu     sync.Mutex
	active *Aggregator
}

// NewManager creates a session manager.
func NewManager(cfg Config, repo repository.SessionRepository, notifier advisor.Notifier, modelFactory ModelFactory) *Manager {
	return &Manager{
		cfg:          cfg,
		repo:         repo,
		notifier:     notifier,
		modelFactory: modelFactory,
	}
}

// StartSession starts a new driving session. It fails with ErrSessionActive
// when one is already running.
func (m *Manager) StartSession() (*Aggregator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil && m.active.Active() {
		return nil, ErrSessionActive
	}

	model, err := m.modelFactory()
	if err != nil {
		return nil, fmt.Errorf("failed to load classifier model: %w", err)
	}

	m.active = New(m.cfg, m.repo, classifier.NewAdapter(model), m.notifier)
	return m.active, nil
}

// Active returns the running session, or nil when there is none.
func (m *Manager) Active() *Aggregator {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil || !m.active.Active() {
		return nil
	}
	return m.active
}

// EndSession ends the running session. It returns ErrNoActiveSession when
// there is none.
func (m *Manager) EndSession(ctx context.Context) (EndResult, error) {
	m.mu.Lock()
	active := m.active
	m.mu.Unlock()

	if active == nil {
		return EndResult{}, ErrNoActiveSession
	}

	result, err := active.End(ctx)
	if err != nil {
		return EndResult{}, err
	}

	m.mu.Lock()
	if m.active == active {
		m.active = nil
	}
	m.mu.Unlock()

	return result, nil
}
