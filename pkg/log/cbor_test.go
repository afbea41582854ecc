package log

import (
	"bytes"
	"testing"
	"time"
)

func TestEventCBORRoundTrip(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 15, 32, 123456789, time.UTC)
	original := Event{
		Timestamp: ts,
		SessionID: "abc12345-def6-7890-abcd-ef1234567890",
		Direction: DirectionOut,
		Layer:     LayerMT,
		Category:  CategoryMessage,
		Port:      "/dev/ttyACM0",
		ExtAddr:   "00124B0001020304",
	}

	data, err := EncodeEvent(original)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if !decoded.Timestamp.Equal(original.Timestamp) {
		t.Errorf("Timestamp: got %v, want %v", decoded.Timestamp, original.Timestamp)
	}
	if decoded.SessionID != original.SessionID {
		t.Errorf("SessionID: got %q, want %q", decoded.SessionID, original.SessionID)
	}
	if decoded.Direction != original.Direction {
		t.Errorf("Direction: got %v, want %v", decoded.Direction, original.Direction)
	}
	if decoded.Layer != original.Layer {
		t.Errorf("Layer: got %v, want %v", decoded.Layer, original.Layer)
	}
	if decoded.Port != original.Port {
		t.Errorf("Port: got %q, want %q", decoded.Port, original.Port)
	}
	if decoded.ExtAddr != original.ExtAddr {
		t.Errorf("ExtAddr: got %q, want %q", decoded.ExtAddr, original.ExtAddr)
	}
}

func TestCommandEventCBORRoundTrip(t *testing.T) {
	status := uint8(0xC2)
	rtt := 12 * time.Millisecond
	original := Event{
		Timestamp: time.Now(),
		SessionID: "sess-1",
		Direction: DirectionIn,
		Layer:     LayerMT,
		Category:  CategoryMessage,
		Command: &CommandEvent{
			Type:      3,
			Subsystem: 1,
			ID:        0x09,
			Name:      "SYS_OSAL_NV_WRITE",
			Status:    &status,
			Payload:   []byte{0xC2},
			RoundTrip: &rtt,
		},
	}

	data, err := EncodeEvent(original)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	c := decoded.Command
	if c == nil {
		t.Fatal("Command is nil")
	}
	if c.Type != 3 || c.Subsystem != 1 || c.ID != 0x09 {
		t.Errorf("header: got %d/%d/%d, want 3/1/9", c.Type, c.Subsystem, c.ID)
	}
	if c.Name != "SYS_OSAL_NV_WRITE" {
		t.Errorf("Name: got %q", c.Name)
	}
	if c.Status == nil || *c.Status != 0xC2 {
		t.Errorf("Status: got %v, want 0xC2", c.Status)
	}
	if !bytes.Equal(c.Payload, []byte{0xC2}) {
		t.Errorf("Payload: got %x", c.Payload)
	}
	if c.RoundTrip == nil || *c.RoundTrip != rtt {
		t.Errorf("RoundTrip: got %v, want %v", c.RoundTrip, rtt)
	}
}

func TestStateChangeEventCBORRoundTrip(t *testing.T) {
	original := Event{
		Timestamp: time.Now(),
		SessionID: "sess-2",
		Layer:     LayerHost,
		Category:  CategoryState,
		StateChange: &StateChangeEvent{
			Entity:   StateEntityDevice,
			OldState: "NWK_JOINING",
			NewState: "ROUTER",
			Reason:   "ZDO_STATE_CHANGE_IND",
		},
	}

	data, err := EncodeEvent(original)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.StateChange == nil {
		t.Fatal("StateChange is nil")
	}
	if *decoded.StateChange != *original.StateChange {
		t.Errorf("StateChange: got %+v, want %+v", *decoded.StateChange, *original.StateChange)
	}
}

func TestErrorEventCBORRoundTrip(t *testing.T) {
	code := 2
	original := Event{
		Timestamp: time.Now(),
		Layer:     LayerTransport,
		Category:  CategoryError,
		Error: &ErrorEventData{
			Layer:   LayerTransport,
			Message: "bad frame check sequence",
			Code:    &code,
			Context: "read frame",
		},
	}

	data, err := EncodeEvent(original)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.Error == nil {
		t.Fatal("Error is nil")
	}
	if decoded.Error.Message != original.Error.Message {
		t.Errorf("Message: got %q, want %q", decoded.Error.Message, original.Error.Message)
	}
	if decoded.Error.Code == nil || *decoded.Error.Code != 2 {
		t.Errorf("Code: got %v, want 2", decoded.Error.Code)
	}
}

func TestEventCBORUsesIntegerKeys(t *testing.T) {
	event := Event{
		Timestamp: time.Now(),
		SessionID: "sess-123",
		Direction: DirectionIn,
		Layer:     LayerTransport,
		Category:  CategoryMessage,
	}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	var rawMap map[uint64]any
	if err := decMode.Unmarshal(data, &rawMap); err != nil {
		t.Fatalf("failed to decode as map: %v", err)
	}

	for _, key := range []uint64{1, 2, 3, 4, 5} {
		if _, ok := rawMap[key]; !ok {
			t.Errorf("expected integer key %d not found in encoded data", key)
		}
	}

	var stringMap map[string]any
	if err := decMode.Unmarshal(data, &stringMap); err == nil && len(stringMap) > 0 {
		t.Error("encoded data contains string keys, expected integer keys only")
	}
}
