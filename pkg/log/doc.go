// Package log provides structured protocol capture for the ZNP host.
//
// This package defines the Logger interface and Event types for recording
// what crosses the serial link: raw MT frames, decoded commands, device and
// join state transitions, and errors. It is separate from operational logging
// (slog). A capture is a complete machine-readable trace that can be replayed
// with the znp-log tool after a session.
//
// # Basic Usage
//
//	// Console while debugging
//	logger := log.NewSlogAdapter(slog.Default())
//
//	// Capture file
//	fl, err := log.NewFileLogger("/tmp/session.zlog")
//
//	// Both
//	logger = log.NewMultiLogger(log.NewSlogAdapter(slog.Default()), fl)
//
// # Event Types
//
// Events are captured at three layers:
//   - Transport: raw frame bytes (FrameEvent)
//   - MT: decoded command header and payload (CommandEvent)
//   - Host: state changes (StateChangeEvent) and errors (ErrorEventData)
//
// # File Format
//
// Capture files are a stream of CBOR-encoded events with integer keys,
// conventionally named with a .zlog extension.
package log
