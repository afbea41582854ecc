package log

import (
	"fmt"
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// CaptureFileMode is the permission of newly created capture files. NV
// writes recorded in a capture can carry network keys.
const CaptureFileMode os.FileMode = 0o600

// FileLogger appends events to a capture file. Log never fails towards the
// caller; the first write error is kept and reported by Close.
type FileLogger struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	encoder *cbor.Encoder
	written int
	err     error
	closed  bool
}

// NewFileLogger opens path for appending, creating it with CaptureFileMode.
// Reopening an existing capture adds a new session to it.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, CaptureFileMode)
	if err != nil {
		return nil, fmt.Errorf("open capture %s: %w", path, err)
	}
	return &FileLogger{
		path:    path,
		file:    f,
		encoder: NewEncoder(f),
	}, nil
}

// Log appends event. State and error events are flushed to disk so a crash
// mid-join keeps the trail that led to it.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || l.err != nil {
		return
	}
	if err := l.encoder.Encode(event); err != nil {
		l.err = err
		return
	}
	l.written++

	if event.Category != CategoryMessage {
		if err := l.file.Sync(); err != nil {
			l.err = err
		}
	}
}

// Written returns the number of events appended since the file was opened.
func (l *FileLogger) Written() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.written
}

// Path returns the capture file path.
func (l *FileLogger) Path() string {
	return l.path
}

// Close closes the file. Later calls to Log are ignored and later calls to
// Close return nil.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true

	cerr := l.file.Close()
	if l.err != nil {
		return fmt.Errorf("capture %s: %w", l.path, l.err)
	}
	return cerr
}

var _ Logger = (*FileLogger)(nil)
