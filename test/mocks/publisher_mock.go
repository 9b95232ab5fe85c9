package mocks

import (
	"context"
	"sync"

	"github.com/AchilleasB/school-admin/school-service/internal/core/domain"
	"github.com/AchilleasB/school-admin/school-service/internal/core/ports"
)

// MockEventPublisher implements ports.EventPublisher for relay tests.
type MockEventPublisher struct {
	mu sync.RWMutex

	PublishedEvents []domain.OutboxEvent

	// Error injection
	PublishError error

	PublishCallCount int
}

var _ ports.EventPublisher = (*MockEventPublisher)(nil)

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

func (m *MockEventPublisher) Publish(ctx context.Context, evt domain.OutboxEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PublishCallCount++
	if m.PublishError != nil {
		return m.PublishError
	}
	m.PublishedEvents = append(m.PublishedEvents, evt)
	return nil
}

func (m *MockEventPublisher) GetPublishedEvents() []domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]domain.OutboxEvent, len(m.PublishedEvents))
	copy(events, m.PublishedEvents)
	return events
}

// MockRelayMetrics counts relay outcomes per event type.
type MockRelayMetrics struct {
	mu        sync.Mutex
	published map[string]int
	failed    map[string]int
}

func NewMockRelayMetrics() *MockRelayMetrics {
	return &MockRelayMetrics{published: map[string]int{}, failed: map[string]int{}}
}

func (m *MockRelayMetrics) Published(eventType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published[eventType]++
}

func (m *MockRelayMetrics) Failed(eventType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed[eventType]++
}

func (m *MockRelayMetrics) PublishedCount(eventType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.published[eventType]
}

func (m *MockRelayMetrics) FailedCount(eventType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failed[eventType]
}

// MockAdmissionObserver records admission outcomes.
type MockAdmissionObserver struct {
	mu       sync.Mutex
	Outcomes []string
}

var _ ports.AdmissionObserver = (*MockAdmissionObserver)(nil)

func (m *MockAdmissionObserver) ObserveAdmission(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Outcomes = append(m.Outcomes, outcome)
}

func (m *MockAdmissionObserver) Count(outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, o := range m.Outcomes {
		if o == outcome {
			n++
		}
	}
	return n
}
