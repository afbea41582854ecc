package znp

import (
	"sync"
	"time"

	"github.com/Torchwoods/znp-host-framework/pkg/log"
)

// Tracker holds the most recently reported device state.
type Tracker struct {
	mu      sync.RWMutex
	state   DeviceState
	changed time.Time

	// Optional observers
	logger    log.Logger
	sessionID string
	onChange  func(old, new DeviceState)
}

// NewTracker creates a tracker in the Hold state.
func NewTracker() *Tracker {
	return &Tracker{state: Hold}
}

// SetLogger records state transitions as protocol log events.
// Pass nil to disable logging.
func (t *Tracker) SetLogger(logger log.Logger, sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.logger = logger
	t.sessionID = sessionID
}

// OnChange registers fn to be called after every Set, outside the lock.
func (t *Tracker) OnChange(fn func(old, new DeviceState)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onChange = fn
}

// Set stores a newly reported state and returns the previous one.
func (t *Tracker) Set(s DeviceState) DeviceState {
	t.mu.Lock()
	old := t.state
	t.state = s
	t.changed = time.Now()
	logger, session, fn := t.logger, t.sessionID, t.onChange
	t.mu.Unlock()

	if logger != nil {
		logger.Log(log.Event{
			Timestamp: time.Now(),
			SessionID: session,
			Direction: log.DirectionIn,
			Layer:     log.LayerHost,
			Category:  log.CategoryState,
			StateChange: &log.StateChangeEvent{
				Entity:   log.StateEntityDevice,
				OldState: old.String(),
				NewState: s.String(),
			},
		})
	}
	if fn != nil {
		fn(old, s)
	}
	return old
}

// Get returns the current state.
func (t *Tracker) Get() DeviceState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Since returns when the current state was reported. The zero time means no
// report has been received.
func (t *Tracker) Since() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.changed
}
