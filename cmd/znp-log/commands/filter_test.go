package commands

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/Torchwoods/znp-host-framework/pkg/log"
)

func readAll(t *testing.T, path string) []log.Event {
	t.Helper()
	r, err := log.NewReader(path)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()

	var events []log.Event
	for {
		e, err := r.Next()
		if err == io.EOF {
			return events
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		events = append(events, e)
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name string
		opts FilterOptions
		want int
	}{
		{name: "all", opts: FilterOptions{}, want: 4},
		{name: "direction in", opts: FilterOptions{Direction: "in"}, want: 2},
		{name: "layer host", opts: FilterOptions{Layer: "host"}, want: 1},
		{name: "category state", opts: FilterOptions{Category: "state"}, want: 1},
		{name: "subsystem af", opts: FilterOptions{Subsystem: "af"}, want: 1},
		{name: "command", opts: FilterOptions{Command: "SYS_PING"}, want: 2},
		{name: "session", opts: FilterOptions{SessionID: "other"}, want: 0},
		{name: "time window", opts: FilterOptions{TimeStart: "2026-03-02T09:30:01Z", TimeEnd: "2026-03-02T09:30:02Z"}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := createTestLogFile(t, sampleEvents())
			tt.opts.Output = filepath.Join(t.TempDir(), "filtered.zlog")

			n, err := RunFilter(path, tt.opts)
			if err != nil {
				t.Fatalf("RunFilter failed: %v", err)
			}
			if n != tt.want {
				t.Errorf("RunFilter wrote %d events, want %d", n, tt.want)
			}
			if got := len(readAll(t, tt.opts.Output)); got != tt.want {
				t.Errorf("output holds %d events, want %d", got, tt.want)
			}
		})
	}
}

func TestFilterInvalidOptions(t *testing.T) {
	path := createTestLogFile(t, sampleEvents())
	out := filepath.Join(t.TempDir(), "filtered.zlog")

	bad := []FilterOptions{
		{Output: out, Layer: "wire"},
		{Output: out, Direction: "sideways"},
		{Output: out, Category: "control"},
		{Output: out, Subsystem: "xyz"},
		{Output: out, TimeStart: "yesterday"},
		{Output: out, TimeEnd: "tomorrow"},
	}
	for _, opts := range bad {
		if _, err := RunFilter(path, opts); err == nil {
			t.Errorf("RunFilter(%+v) succeeded, want error", opts)
		}
	}
}
