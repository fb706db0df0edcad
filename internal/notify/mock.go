package notify

// MockNotifier is a mock notifier for testing
type MockNotifier struct {
	NotifyFunc func(title, message string) error
}

// NewMockNotifier creates a mock notifier that accepts every alert.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{
		NotifyFunc: func(_, _ string) error {
			return nil
		},
	}
}

// Notify implements advisor.Notifier.
func (m *MockNotifier) Notify(title, message string) error {
	return m.NotifyFunc(title, message)
}
