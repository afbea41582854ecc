// Package commands implements the znp-log CLI commands.
package commands

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Torchwoods/znp-host-framework/pkg/log"
	"github.com/Torchwoods/znp-host-framework/pkg/mt"
	"github.com/Torchwoods/znp-host-framework/pkg/registry"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Layer     *log.Layer
	Direction *log.Direction
	Category  *log.Category
	Subsystem *uint8
	Command   string
}

func (f ViewFilter) logFilter() log.Filter {
	return log.Filter{
		Layer:     f.Layer,
		Direction: f.Direction,
		Category:  f.Category,
		Subsystem: f.Subsystem,
		Command:   f.Command,
	}
}

// names resolves MT commands to registry names. Captures carry the name
// already; this fills it in for frames and older captures.
var names *registry.Registry

func init() {
	names, _ = registry.Default()
}

func commandName(cmd mt.Command) string {
	if names == nil {
		return ""
	}
	if c, ok := names.CommandFor(cmd.Key()); ok {
		return c.Name
	}
	if e, ok := names.Event(cmd.Key()); ok {
		return e.Name
	}
	return ""
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [session] DIRECTION LAYER Type
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	session := shortenSessionID(event.SessionID)
	dir := event.Direction.String()

	fmt.Fprintf(w, "%s [%s] %-3s %s %s\n", ts, session, dir, event.Layer.String(), typeLabel(event))

	switch {
	case event.Frame != nil:
		formatFrameDetails(w, event.Frame)
	case event.Command != nil:
		formatCommandDetails(w, event.Command)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w) // Blank line between events
}

func typeLabel(event log.Event) string {
	switch {
	case event.Frame != nil:
		return "Frame"
	case event.Command != nil:
		return event.Command.TypeName()
	case event.StateChange != nil:
		return "State"
	case event.Error != nil:
		return "Error"
	default:
		return "Unknown"
	}
}

// shortenSessionID returns the first 8 characters of the session ID.
func shortenSessionID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

// formatFrameDetails writes frame-specific details.
func formatFrameDetails(w io.Writer, frame *log.FrameEvent) {
	fmt.Fprintf(w, "  Size: %d bytes\n", frame.Size)
	if len(frame.Data) == 0 {
		return
	}
	fmt.Fprintf(w, "  Data: %s", hex.EncodeToString(frame.Data))
	if frame.Truncated {
		fmt.Fprintf(w, " (truncated)")
	}
	fmt.Fprintln(w)

	if f, err := mt.Unmarshal(frame.Data); err == nil {
		fmt.Fprintf(w, "  MT: %s", f.Command)
		if name := commandName(f.Command); name != "" {
			fmt.Fprintf(w, " %s", name)
		}
		fmt.Fprintln(w)
	}
}

// formatCommandDetails writes MT command details.
func formatCommandDetails(w io.Writer, cmd *log.CommandEvent) {
	name := cmd.Name
	if name == "" {
		name = commandName(mt.Command{Type: mt.Type(cmd.Type), Subsystem: mt.Subsystem(cmd.Subsystem), ID: cmd.ID})
	}
	if name == "" {
		name = "?"
	}
	fmt.Fprintf(w, "  Command: %s (%s 0x%02X)\n", name, mt.Subsystem(cmd.Subsystem), cmd.ID)
	if cmd.Status != nil {
		fmt.Fprintf(w, "  Status: %s (0x%02X)\n", mt.Status(*cmd.Status), *cmd.Status)
	}
	if len(cmd.Payload) > 0 {
		fmt.Fprintf(w, "  Payload: %s\n", hex.EncodeToString(cmd.Payload))
	}
	if cmd.RoundTrip != nil {
		fmt.Fprintf(w, "  Duration: %s\n", formatDuration(*cmd.RoundTrip))
	}
}

// formatStateChangeDetails writes state change details.
func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	fmt.Fprintf(w, "  Entity: %s\n", sc.Entity.String())
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

// formatErrorDetails writes error details.
func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", err.Layer.String())
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Code != nil {
		fmt.Fprintf(w, "  Code: %d\n", *err.Code)
	}
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// ParseLayerFlag parses a layer string (case-insensitive).
func ParseLayerFlag(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "transport":
		return log.LayerTransport, nil
	case "mt":
		return log.LayerMT, nil
	case "host":
		return log.LayerHost, nil
	default:
		return 0, fmt.Errorf("invalid layer: %s (must be transport, mt, or host)", s)
	}
}

// ParseDirectionFlag parses a direction string (case-insensitive).
func ParseDirectionFlag(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

// ParseCategoryFlag parses a category string (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "message":
		return log.CategoryMessage, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be message, state, or error)", s)
	}
}

// ParseSubsystemFlag parses an MT subsystem name (sys, af, zdo, ...).
func ParseSubsystemFlag(s string) (uint8, error) {
	sub, err := mt.ParseSubsystem(s)
	if err != nil {
		return 0, err
	}
	return uint8(sub), nil
}

// RunView executes the view command.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter.logFilter())
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}

	return nil
}
