package log

import (
	"time"
)

// Event represents a protocol log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies one open of the serial link (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Direction indicates traffic flow relative to the host.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// Port is the serial device path (e.g. /dev/ttyACM0).
	Port string `cbor:"6,keyasint,omitempty"`

	// ExtAddr is the coprocessor IEEE address once known.
	ExtAddr string `cbor:"7,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Frame       *FrameEvent       `cbor:"10,keyasint,omitempty"` // Raw MT frame
	Command     *CommandEvent     `cbor:"11,keyasint,omitempty"` // Decoded MT command
	StateChange *StateChangeEvent `cbor:"12,keyasint,omitempty"` // Device/join/link state
	Error       *ErrorEventData   `cbor:"14,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates traffic from the coprocessor.
	DirectionIn Direction = 0
	// DirectionOut indicates traffic to the coprocessor.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which layer captured the event.
type Layer uint8

const (
	// LayerTransport is the serial framing layer (raw bytes).
	LayerTransport Layer = 0
	// LayerMT is the decoded MT command layer.
	LayerMT Layer = 1
	// LayerHost is the host application (shell, join controller).
	LayerHost Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerMT:
		return "MT"
	case LayerHost:
		return "HOST"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage indicates a frame or command.
	CategoryMessage Category = 0
	// CategoryState indicates a state change.
	CategoryState Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures raw frame data at the transport layer.
type FrameEvent struct {
	// Size is the frame size in bytes (SOF through FCS).
	Size int `cbor:"1,keyasint"`

	// Data is the raw frame bytes (may be truncated for large frames).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// CommandEvent captures a decoded MT command header and payload.
// Values are kept numeric so the log package stays free of MT definitions.
type CommandEvent struct {
	// Type is the MT command type (0=POLL, 1=SREQ, 2=AREQ, 3=SRSP).
	Type uint8 `cbor:"1,keyasint"`

	// Subsystem is the MT subsystem id.
	Subsystem uint8 `cbor:"2,keyasint"`

	// ID is the command id within the subsystem.
	ID uint8 `cbor:"3,keyasint"`

	// Name is the registry name if known.
	Name string `cbor:"4,keyasint,omitempty"`

	// Status is the first payload byte of a status response.
	Status *uint8 `cbor:"5,keyasint,omitempty"`

	// Payload is the command data.
	Payload []byte `cbor:"6,keyasint,omitempty"`

	// RoundTrip is the time between SREQ and SRSP (responses only).
	RoundTrip *time.Duration `cbor:"7,keyasint,omitempty"`
}

// TypeName returns the MT command type name.
func (c *CommandEvent) TypeName() string {
	switch c.Type {
	case 0:
		return "POLL"
	case 1:
		return "SREQ"
	case 2:
		return "AREQ"
	case 3:
		return "SRSP"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent captures device, join and link lifecycle events.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityLink indicates a serial link state change.
	StateEntityLink StateEntity = 0
	// StateEntityDevice indicates a coprocessor device state change.
	StateEntityDevice StateEntity = 1
	// StateEntityJoin indicates a join controller state change.
	StateEntityJoin StateEntity = 2
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityLink:
		return "LINK"
	case StateEntityDevice:
		return "DEVICE"
	case StateEntityJoin:
		return "JOIN"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Code is the error code (if applicable).
	Code *int `cbor:"3,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"4,keyasint,omitempty"`
}
