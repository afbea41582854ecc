// Package dispatch sends one encoded command to the coprocessor.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Torchwoods/znp-host-framework/pkg/metrics"
	"github.com/Torchwoods/znp-host-framework/pkg/mt"
	"github.com/Torchwoods/znp-host-framework/pkg/registry"
	"github.com/Torchwoods/znp-host-framework/pkg/transport"
)

// Dispatch errors.
var (
	ErrUnknownCommand  = errors.New("unknown command index")
	ErrPayloadTooLarge = errors.New("payload exceeds frame size")
)

// Sender puts MT commands on the wire.
// Implemented by transport.Link.
type Sender interface {
	// Request sends an SREQ and returns its SRSP.
	Request(ctx context.Context, cmd mt.Command, payload []byte) (*mt.Frame, error)

	// Post sends an AREQ.
	Post(ctx context.Context, cmd mt.Command, payload []byte) error
}

var _ Sender = (*transport.Link)(nil)

// Response is the outcome of one dispatched command.
type Response struct {
	Command *registry.Command

	// Frame is the SRSP, or nil for asynchronous commands.
	Frame *mt.Frame
}

// Status returns the response status. Asynchronous commands and raw
// responses report success.
func (r *Response) Status() mt.Status {
	if r.Frame == nil || r.Command.Response != registry.ResponseStatus {
		return mt.StatusSuccess
	}
	return r.Frame.Status()
}

// OK reports whether the coprocessor accepted the command.
func (r *Response) OK() bool {
	return r.Status().OK()
}

// String renders the response for the operator.
func (r *Response) String() string {
	switch {
	case r.Frame == nil:
		return "Sent " + r.Command.Name
	case r.Command.Response == registry.ResponseStatus:
		s := r.Status()
		if s.OK() {
			return fmt.Sprintf("Status: 0x%02X", uint8(s))
		}
		return fmt.Sprintf("%s Status: FAIL 0x%02X (%s)", r.Command.Name, uint8(s), s)
	default:
		return "Response: " + hexBytes(r.Frame.Data)
	}
}

func hexBytes(b []byte) string {
	if len(b) == 0 {
		return "(empty)"
	}
	var sb strings.Builder
	for i, v := range b {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02X", v)
	}
	return sb.String()
}

// Config configures a Dispatcher. The zero value is usable.
type Config struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Dispatcher maps registry indices to frames.
type Dispatcher struct {
	reg    *registry.Registry
	sender Sender
	config Config
}

// New creates a dispatcher for the commands in reg.
func New(reg *registry.Registry, sender Sender, config Config) *Dispatcher {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Dispatcher{reg: reg, sender: sender, config: config}
}

// Dispatch sends the command at index with payload. Synchronous commands
// wait for their response; asynchronous ones return once written. A
// non-success status is reported in the Response, not as an error.
func (d *Dispatcher) Dispatch(ctx context.Context, index int, payload []byte) (*Response, error) {
	cmd, ok := d.reg.At(index)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCommand, index)
	}
	if len(payload) > mt.MaxDataLen {
		return nil, fmt.Errorf("%w: %s %d > %d", ErrPayloadTooLarge, cmd.Name, len(payload), mt.MaxDataLen)
	}

	subsystem := cmd.MT.Subsystem.String()
	logger := d.config.Logger.With("command", cmd.Name)

	if cmd.Async() {
		if err := d.sender.Post(ctx, cmd.MT, payload); err != nil {
			d.config.Metrics.Command(subsystem, metrics.ResultError)
			return nil, fmt.Errorf("post %s: %w", cmd.Name, err)
		}
		d.config.Metrics.Command(subsystem, metrics.ResultOK)
		logger.Debug("command posted", "len", len(payload))
		return &Response{Command: cmd}, nil
	}

	frame, err := d.sender.Request(ctx, cmd.MT, payload)
	if err != nil {
		result := metrics.ResultError
		if errors.Is(err, transport.ErrResponseTimeout) {
			result = metrics.ResultTimeout
		}
		d.config.Metrics.Command(subsystem, result)
		return nil, fmt.Errorf("request %s: %w", cmd.Name, err)
	}

	resp := &Response{Command: cmd, Frame: frame}
	if resp.OK() {
		d.config.Metrics.Command(subsystem, metrics.ResultOK)
		logger.Debug("command completed", "len", len(payload))
	} else {
		d.config.Metrics.Command(subsystem, metrics.ResultStatus)
		logger.Warn("command failed", "status", resp.Status().String())
	}
	return resp, nil
}

// DispatchName is Dispatch by command name.
func (d *Dispatcher) DispatchName(ctx context.Context, name string, payload []byte) (*Response, error) {
	cmd, ok := d.reg.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", registry.ErrNotFound, name)
	}
	return d.Dispatch(ctx, cmd.Index, payload)
}
