package log

import (
	"testing"
	"time"
)

func TestNoopLoggerDoesNotPanic(t *testing.T) {
	logger := NoopLogger{}

	event := Event{
		Timestamp: time.Now(),
		SessionID: "test-session",
		Direction: DirectionIn,
		Layer:     LayerTransport,
		Category:  CategoryMessage,
	}

	// Test with nil payloads
	logger.Log(event)

	event.Frame = &FrameEvent{Size: 5, Data: []byte{0xFE, 0x00, 0x21, 0x01, 0x20}}
	logger.Log(event)

	event.Frame = nil
	event.Command = &CommandEvent{Type: 1, Subsystem: 1, ID: 1, Name: "SYS_PING"}
	logger.Log(event)

	event.Command = nil
	event.StateChange = &StateChangeEvent{Entity: StateEntityDevice, NewState: "ROUTER"}
	logger.Log(event)

	event.StateChange = nil
	event.Error = &ErrorEventData{Message: "test error"}
	logger.Log(event)
}

func TestLoggerInterfaceSatisfaction(t *testing.T) {
	var _ Logger = NoopLogger{}
	var _ Logger = &NoopLogger{}
}

func TestNoopLoggerIsZeroValue(t *testing.T) {
	var logger NoopLogger
	logger.Log(Event{})
}
