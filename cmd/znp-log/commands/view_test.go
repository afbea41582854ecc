package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/Torchwoods/znp-host-framework/pkg/log"
	"github.com/Torchwoods/znp-host-framework/pkg/mt"
)

func TestViewFormatsCommands(t *testing.T) {
	var buf bytes.Buffer
	if err := RunView(createTestLogFile(t, sampleEvents()), ViewFilter{}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"2026-03-02T09:30:00.000000Z [5f1c2a7e] OUT MT SREQ",
		"Command: SYS_PING (SYS 0x01)",
		"Payload: 7901",
		"Duration: 3.000ms",
		"NWK_JOINING -> ROUTER",
		"Command: AF_REGISTER (AF 0x00)",
		"(0xB8)",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestViewDecodesFrames(t *testing.T) {
	f := &mt.Frame{Command: mt.Command{Type: mt.TypeSREQ, Subsystem: mt.SubsystemSYS, ID: 0x01}}
	raw, err := f.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	events := []log.Event{{
		Timestamp: time.Now(),
		Direction: log.DirectionOut,
		Layer:     log.LayerTransport,
		Frame:     &log.FrameEvent{Size: len(raw), Data: raw},
	}}

	var buf bytes.Buffer
	if err := RunView(createTestLogFile(t, events), ViewFilter{}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "Data: fe00210120") {
		t.Errorf("missing raw frame bytes:\n%s", output)
	}
	if !strings.Contains(output, "MT: SREQ SYS 0x01 SYS_PING") {
		t.Errorf("missing decoded frame:\n%s", output)
	}
}

func TestViewFilter(t *testing.T) {
	dir := log.DirectionIn
	var buf bytes.Buffer
	if err := RunView(createTestLogFile(t, sampleEvents()), ViewFilter{Direction: &dir}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}

	output := buf.String()
	if strings.Contains(output, " OUT ") {
		t.Errorf("filtered output contains outgoing events:\n%s", output)
	}
	if got := strings.Count(output, " IN "); got != 2 {
		t.Errorf("got %d incoming events, want 2", got)
	}
}

func TestParseFlags(t *testing.T) {
	if _, err := ParseLayerFlag("MT"); err != nil {
		t.Errorf("ParseLayerFlag(MT): %v", err)
	}
	if _, err := ParseLayerFlag("wire"); err == nil {
		t.Error("ParseLayerFlag(wire) succeeded")
	}
	if d, err := ParseDirectionFlag("OUT"); err != nil || d != log.DirectionOut {
		t.Errorf("ParseDirectionFlag(OUT) = %v, %v", d, err)
	}
	if c, err := ParseCategoryFlag("error"); err != nil || c != log.CategoryError {
		t.Errorf("ParseCategoryFlag(error) = %v, %v", c, err)
	}
	if s, err := ParseSubsystemFlag("zdo"); err != nil || s != uint8(mt.SubsystemZDO) {
		t.Errorf("ParseSubsystemFlag(zdo) = %v, %v", s, err)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Nanosecond, "0.500us"},
		{1500 * time.Microsecond, "1.500ms"},
		{2 * time.Second, "2.000s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
