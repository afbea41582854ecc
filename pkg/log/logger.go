package log

// Logger receives capture events from the serial link, the MT framer, the
// device state tracker and the join controller. Log is called on the link's
// read goroutine, so it must be safe for concurrent use and must not block
// on I/O slower than a local file.
//
// A nil Logger disables capture wherever one is accepted.
type Logger interface {
	Log(event Event)
}

// NoopLogger discards every event.
type NoopLogger struct{}

// Log does nothing.
func (NoopLogger) Log(Event) {}

var _ Logger = NoopLogger{}
