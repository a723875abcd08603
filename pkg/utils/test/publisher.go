package testutils

import (
	"context"
	"sync"

	"github.com/papercomputeco/coursewise/pkg/eventstream"
)

// MockPublisher records published events.
type MockPublisher struct {
	mu     sync.Mutex
	events []*eventstream.AnswerGeneratedEvent

	// Err, when set, is returned by PublishAnswer.
	Err error
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) PublishAnswer(_ context.Context, event *eventstream.AnswerGeneratedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.events = append(m.events, event)
	return nil
}

// Events returns the published events.
func (m *MockPublisher) Events() []*eventstream.AnswerGeneratedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*eventstream.AnswerGeneratedEvent(nil), m.events...)
}

func (m *MockPublisher) Close() error {
	return nil
}

var _ eventstream.Publisher = (*MockPublisher)(nil)
