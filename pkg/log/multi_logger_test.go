package log

import (
	"testing"
	"time"
)

// mockLogger records events for testing
type mockLogger struct {
	events []Event
}

func (m *mockLogger) Log(event Event) {
	m.events = append(m.events, event)
}

func TestMultiLoggerCallsAll(t *testing.T) {
	mock1 := &mockLogger{}
	mock2 := &mockLogger{}
	mock3 := &mockLogger{}

	multi := NewMultiLogger(mock1, mock2, mock3)

	event := Event{
		Timestamp: time.Now(),
		SessionID: "sess-123",
		Direction: DirectionIn,
		Layer:     LayerTransport,
		Category:  CategoryMessage,
	}

	multi.Log(event)

	// All loggers should have received the event
	for i, mock := range []*mockLogger{mock1, mock2, mock3} {
		if len(mock.events) != 1 {
			t.Errorf("logger %d: got %d events, want 1", i, len(mock.events))
			continue
		}
		if mock.events[0].SessionID != "sess-123" {
			t.Errorf("logger %d: SessionID = %q, want %q", i, mock.events[0].SessionID, "sess-123")
		}
	}
}

func TestMultiLoggerEmptyList(t *testing.T) {
	multi := NewMultiLogger()

	// Should not panic with empty logger list
	event := Event{
		Timestamp: time.Now(),
		SessionID: "sess-123",
		Direction: DirectionIn,
		Layer:     LayerTransport,
		Category:  CategoryMessage,
	}

	multi.Log(event)
}

func TestMultiLoggerSingleLogger(t *testing.T) {
	mock := &mockLogger{}
	multi := NewMultiLogger(mock)

	event := Event{
		Timestamp: time.Now(),
		SessionID: "sess-456",
		Direction: DirectionOut,
		Layer:     LayerMT,
		Category:  CategoryMessage,
	}

	multi.Log(event)

	if len(mock.events) != 1 {
		t.Fatalf("got %d events, want 1", len(mock.events))
	}
	if mock.events[0].SessionID != "sess-456" {
		t.Errorf("SessionID = %q, want %q", mock.events[0].SessionID, "sess-456")
	}
}

func TestMultiLoggerInterfaceSatisfaction(t *testing.T) {
	var _ Logger = (*MultiLogger)(nil)
}

func TestMultiLoggerDropsInactive(t *testing.T) {
	mock := &mockLogger{}
	multi := NewMultiLogger(nil, NoopLogger{}, mock, &NoopLogger{})

	if multi.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", multi.Len())
	}
	multi.Log(Event{SessionID: "sess-789"})
	if len(mock.events) != 1 {
		t.Errorf("got %d events, want 1", len(mock.events))
	}
}

func TestCombine(t *testing.T) {
	a := &mockLogger{}
	b := &mockLogger{}

	if got := Combine(); got != nil {
		t.Errorf("Combine() = %v, want nil", got)
	}
	if got := Combine(nil, NoopLogger{}); got != nil {
		t.Errorf("Combine(nil, NoopLogger) = %v, want nil", got)
	}
	if got := Combine(nil, a); got != Logger(a) {
		t.Errorf("Combine(nil, a) = %v, want a itself", got)
	}

	both := Combine(a, b)
	multi, ok := both.(*MultiLogger)
	if !ok {
		t.Fatalf("Combine(a, b) = %T, want *MultiLogger", both)
	}
	if multi.Len() != 2 {
		t.Errorf("Len() = %d, want 2", multi.Len())
	}

	both.Log(Event{SessionID: "sess-1"})
	if len(a.events) != 1 || len(b.events) != 1 {
		t.Errorf("events a=%d b=%d, want 1 each", len(a.events), len(b.events))
	}
}
