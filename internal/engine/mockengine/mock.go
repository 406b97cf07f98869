// Package mockengine provides a scripted engine implementation for testing.
package mockengine

import (
	"context"
	"fmt"
	"sync"

	"github.com/barikyo/ciallo/internal/engine"
)

// Call is one recorded engine invocation.
type Call struct {
	Op    string
	URL   string
	Doc   engine.Document
	Kinds engine.DataKinds
}

// MockEngine records calls and lets tests emit events on demand.
type MockEngine struct {
	mu     sync.Mutex
	calls  []Call
	events chan engine.Event
	closed bool

	// Reject makes Navigate fail with engine.ErrMalformedTarget for the
	// given URLs.
	Reject map[string]bool
	// NavigateErr, when set, is returned by every Navigate call.
	NavigateErr error
	// ClearErr is returned by ClearBrowsingData.
	ClearErr error
}

// New creates a MockEngine with a buffered event channel.
func New() *MockEngine {
	return &MockEngine{
		events: make(chan engine.Event, 64),
		Reject: make(map[string]bool),
	}
}

func (m *MockEngine) record(c Call) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
}

// Navigate implements engine.Engine.
func (m *MockEngine) Navigate(ctx context.Context, url string) error {
	m.record(Call{Op: "navigate", URL: url})
	if m.NavigateErr != nil {
		return m.NavigateErr
	}
	if m.Reject[url] {
		return fmt.Errorf("navigate %q: %w", url, engine.ErrMalformedTarget)
	}
	return nil
}

// ShowDocument implements engine.Engine.
func (m *MockEngine) ShowDocument(ctx context.Context, doc engine.Document) error {
	m.record(Call{Op: "show", Doc: doc})
	return nil
}

// Back implements engine.Engine.
func (m *MockEngine) Back(ctx context.Context) error {
	m.record(Call{Op: "back"})
	return nil
}

// Forward implements engine.Engine.
func (m *MockEngine) Forward(ctx context.Context) error {
	m.record(Call{Op: "forward"})
	return nil
}

// Reload implements engine.Engine.
func (m *MockEngine) Reload(ctx context.Context) error {
	m.record(Call{Op: "reload"})
	return nil
}

// ClearBrowsingData implements engine.Engine.
func (m *MockEngine) ClearBrowsingData(ctx context.Context, kinds engine.DataKinds) error {
	m.record(Call{Op: "clear", Kinds: kinds})
	return m.ClearErr
}

// Events implements engine.Engine.
func (m *MockEngine) Events() <-chan engine.Event {
	return m.events
}

// Close implements engine.Engine and closes the event channel once.
func (m *MockEngine) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.events)
	}
	return nil
}

// Emit delivers an event as if the engine produced it.
func (m *MockEngine) Emit(ev engine.Event) {
	m.events <- ev
}

// Calls returns a copy of the recorded calls (for testing)
func (m *MockEngine) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// LastCall returns the most recent call, or a zero Call.
func (m *MockEngine) LastCall() Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return Call{}
	}
	return m.calls[len(m.calls)-1]
}

// Reset forgets recorded calls.
func (m *MockEngine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}
