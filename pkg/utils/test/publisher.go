package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/papercomputeco/praxisvoice/pkg/eventstream"
)

// ErrMockPublisher is returned by MockPublisher when failing.
var ErrMockPublisher = errors.New("mock publisher failure")

// MockPublisher collects published events.
type MockPublisher struct {
	mu     sync.Mutex
	events []*eventstream.TurnProcessedEvent
	fail   bool
	closed bool
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// FailPublishes makes subsequent publishes return ErrMockPublisher.
func (m *MockPublisher) FailPublishes(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fail
}

func (m *MockPublisher) PublishTurn(_ context.Context, event *eventstream.TurnProcessedEvent) error {
	if event == nil {
		return eventstream.ErrNilTurnEvent
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return ErrMockPublisher
	}
	m.events = append(m.events, event)
	return nil
}

// Events returns the published events in order.
func (m *MockPublisher) Events() []*eventstream.TurnProcessedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*eventstream.TurnProcessedEvent(nil), m.events...)
}

func (m *MockPublisher) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockPublisher) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
