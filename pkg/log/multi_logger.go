package log

// MultiLogger fans each event out to several loggers, typically the capture
// file and the debug log.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger returns a MultiLogger over loggers. Nil entries and
// NoopLoggers are dropped.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	return &MultiLogger{loggers: active(loggers)}
}

// Log passes event to every logger in order.
func (m *MultiLogger) Log(event Event) {
	for _, l := range m.loggers {
		l.Log(event)
	}
}

// Len returns the number of loggers events are passed to.
func (m *MultiLogger) Len() int {
	return len(m.loggers)
}

// Combine returns the cheapest Logger covering loggers: nil when none is
// active, the logger itself when only one is, a MultiLogger otherwise.
// Components treat a nil Logger as capture disabled.
func Combine(loggers ...Logger) Logger {
	live := active(loggers)
	switch len(live) {
	case 0:
		return nil
	case 1:
		return live[0]
	default:
		return &MultiLogger{loggers: live}
	}
}

func active(loggers []Logger) []Logger {
	out := make([]Logger, 0, len(loggers))
	for _, l := range loggers {
		switch l.(type) {
		case nil, NoopLogger, *NoopLogger:
			continue
		}
		out = append(out, l)
	}
	return out
}

var _ Logger = (*MultiLogger)(nil)
