package producer

import (
	"context"
	"sync"

	"github.com/notifyhub/ms-notification-kafka/internal/domain"
)

// PublishCall records one call made to MockProducer.
type PublishCall struct {
	Destination domain.Destination
	Payload     any
}

// MockProducer is a hand-written Producer used in unit tests.
// By default it returns Key; set Err to simulate broker failures.
type MockProducer struct {
	mu    sync.Mutex
	calls []PublishCall

	Key string
	Err error
}

func NewMockProducer(key string) *MockProducer {
	return &MockProducer{Key: key}
}

func (m *MockProducer) Publish(_ context.Context, destination domain.Destination, payload any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, PublishCall{Destination: destination, Payload: payload})
	if m.Err != nil {
		return "", m.Err
	}
	return m.Key, nil
}

// Calls returns a copy of every recorded call, oldest first.
func (m *MockProducer) Calls() []PublishCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PublishCall(nil), m.calls...)
}

var _ Producer = (*MockProducer)(nil)
