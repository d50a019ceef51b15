package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/papercomputeco/creatormem/pkg/eventstream"
)

// ErrMockPublish is returned by MockPublisher when FailPublish is set.
var ErrMockPublish = errors.New("mock publish failure")

// MockPublisher records every published memory event.
type MockPublisher struct {
	mu     sync.Mutex
	events []*eventstream.MemoryChangedEvent
	closed bool

	// FailPublish causes PublishMemory to return ErrMockPublish.
	FailPublish bool
}

// NewMockPublisher creates a new mock publisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (p *MockPublisher) PublishMemory(_ context.Context, event *eventstream.MemoryChangedEvent) error {
	if event == nil {
		return eventstream.ErrNilMemoryEvent
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailPublish {
		return ErrMockPublish
	}
	p.events = append(p.events, event)
	return nil
}

func (p *MockPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// Events returns a copy of the published events in publish order.
func (p *MockPublisher) Events() []*eventstream.MemoryChangedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*eventstream.MemoryChangedEvent(nil), p.events...)
}

// Closed reports whether Close was called.
func (p *MockPublisher) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// MockEventQueue collects enqueued events synchronously.
type MockEventQueue struct {
	mu     sync.Mutex
	events []*eventstream.MemoryChangedEvent
}

func (q *MockEventQueue) Enqueue(event *eventstream.MemoryChangedEvent) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, event)
	return true
}

// Events returns a copy of the enqueued events in order.
func (q *MockEventQueue) Events() []*eventstream.MemoryChangedEvent {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]*eventstream.MemoryChangedEvent(nil), q.events...)
}

// Types returns the event type of every enqueued event in order.
func (q *MockEventQueue) Types() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, 0, len(q.events))
	for _, e := range q.events {
		out = append(out, e.EventType)
	}
	return out
}
