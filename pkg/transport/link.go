package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Torchwoods/znp-host-framework/pkg/log"
	"github.com/Torchwoods/znp-host-framework/pkg/metrics"
	"github.com/Torchwoods/znp-host-framework/pkg/mt"
)

// LinkState is the lifecycle state of a Link.
type LinkState int32

const (
	// StateOpen indicates the link is carrying frames.
	StateOpen LinkState = iota

	// StateClosing indicates Close is in progress.
	StateClosing

	// StateClosed indicates the link was closed or the port went away.
	StateClosed
)

// String returns the link state name.
func (s LinkState) String() string {
	switch s {
	case StateOpen:
		return "OPEN"
	case StateClosing:
		return "CLOSING"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Link errors.
var (
	ErrLinkClosed      = errors.New("link closed")
	ErrResponseTimeout = errors.New("response timeout")
	ErrWrongType       = errors.New("wrong command type")
	ErrRPC             = errors.New("coprocessor rejected command")
)

// RPC error codes carried in an RPC error response.
const (
	RPCInvalidSubsystem = 0x01
	RPCInvalidCommandID = 0x02
	RPCInvalidParameter = 0x03
	RPCInvalidLength    = 0x04
)

// RPCError is returned when the coprocessor answers a request with an RPC
// error response instead of the expected SRSP.
type RPCError struct {
	Code    uint8
	Command mt.Command
}

func (e *RPCError) Error() string {
	reason := "unknown"
	switch e.Code {
	case RPCInvalidSubsystem:
		reason = "invalid subsystem"
	case RPCInvalidCommandID:
		reason = "invalid command id"
	case RPCInvalidParameter:
		reason = "invalid parameter"
	case RPCInvalidLength:
		reason = "invalid length"
	}
	return fmt.Sprintf("rpc error 0x%02X (%s) for %s", e.Code, reason, e.Command)
}

func (e *RPCError) Unwrap() error {
	return ErrRPC
}

// LinkConfig configures a Link.
type LinkConfig struct {
	// ResponseTimeout bounds the wait for an SRSP (default: 2s).
	ResponseTimeout time.Duration

	// EventBuffer is the capacity of the Events channel (default: 64).
	EventBuffer int

	// Port names the device for logs. Set by Open.
	Port string

	// Backoff tunes the delay between retries after read errors.
	Backoff BackoffConfig

	// Logger receives operational logs (default: slog.Default()).
	Logger *slog.Logger

	// ProtocolLogger captures frames and commands (optional).
	ProtocolLogger log.Logger

	// CommandName resolves a command to a display name for protocol logs
	// (optional).
	CommandName func(mt.Command) string

	// Metrics counts frames (optional).
	Metrics *metrics.Metrics
}

// DefaultLinkConfig returns the default link configuration.
func DefaultLinkConfig() LinkConfig {
	return LinkConfig{
		ResponseTimeout: 2 * time.Second,
		EventBuffer:     64,
		Backoff:         BackoffConfig{Jitter: JitterFactor},
	}
}

type result struct {
	frame *mt.Frame
	err   error
}

type pendingRequest struct {
	cmd  mt.Command
	sent time.Time
	ch   chan result
}

// Link is an open MT session with the coprocessor.
type Link struct {
	config    LinkConfig
	rwc       io.ReadWriteCloser
	framer    *mt.Framer
	sessionID string
	logger    *slog.Logger

	state     atomic.Int32
	closeOnce sync.Once
	done      chan struct{}
	loopDone  chan struct{}

	// reqMu keeps one synchronous request outstanding.
	reqMu   sync.Mutex
	mu      sync.Mutex
	pending *pendingRequest

	events chan *mt.Frame
}

// NewLink starts a link over rwc. The link owns rwc and closes it on Close.
func NewLink(rwc io.ReadWriteCloser, config LinkConfig) *Link {
	def := DefaultLinkConfig()
	if config.ResponseTimeout <= 0 {
		config.ResponseTimeout = def.ResponseTimeout
	}
	if config.EventBuffer <= 0 {
		config.EventBuffer = def.EventBuffer
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	l := &Link{
		config:    config,
		rwc:       rwc,
		framer:    mt.NewFramer(rwc),
		sessionID: uuid.NewString(),
		done:      make(chan struct{}),
		loopDone:  make(chan struct{}),
		events:    make(chan *mt.Frame, config.EventBuffer),
	}
	l.logger = config.Logger.With("port", config.Port, "session", l.sessionID[:8])
	if config.ProtocolLogger != nil {
		l.framer.SetLogger(config.ProtocolLogger, l.sessionID)
	}
	l.state.Store(int32(StateOpen))
	l.logState(StateClosed, StateOpen, "")

	go l.readLoop()
	return l
}

// SessionID returns the random identifier of this link session.
func (l *Link) SessionID() string {
	return l.sessionID
}

// State returns the current link state.
func (l *Link) State() LinkState {
	return LinkState(l.state.Load())
}

// Events delivers asynchronous frames. The channel is closed when the link
// stops reading.
func (l *Link) Events() <-chan *mt.Frame {
	return l.events
}

// Done is closed when the read loop has exited.
func (l *Link) Done() <-chan struct{} {
	return l.loopDone
}

// Request sends a synchronous request and waits for its response.
// Requests are serialised: a second caller blocks until the first completes.
func (l *Link) Request(ctx context.Context, cmd mt.Command, payload []byte) (*mt.Frame, error) {
	if cmd.Type != mt.TypeSREQ {
		return nil, fmt.Errorf("%w: request %s", ErrWrongType, cmd)
	}

	l.reqMu.Lock()
	defer l.reqMu.Unlock()

	if l.State() != StateOpen {
		return nil, ErrLinkClosed
	}

	p := &pendingRequest{cmd: cmd, ch: make(chan result, 1)}
	l.mu.Lock()
	l.pending = p
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		if l.pending == p {
			l.pending = nil
		}
		l.mu.Unlock()
	}()

	p.sent = time.Now()
	if err := l.write(cmd, payload); err != nil {
		return nil, err
	}

	timer := time.NewTimer(l.config.ResponseTimeout)
	defer timer.Stop()

	select {
	case r := <-p.ch:
		return r.frame, r.err
	case <-timer.C:
		l.logger.Warn("response timeout", "command", cmd.String(), "timeout", l.config.ResponseTimeout)
		return nil, fmt.Errorf("%w: %s", ErrResponseTimeout, cmd)
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-l.loopDone:
		return nil, ErrLinkClosed
	}
}

// Post sends an asynchronous request. No response is awaited.
func (l *Link) Post(ctx context.Context, cmd mt.Command, payload []byte) error {
	if cmd.Type != mt.TypeAREQ {
		return fmt.Errorf("%w: post %s", ErrWrongType, cmd)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if l.State() != StateOpen {
		return ErrLinkClosed
	}
	return l.write(cmd, payload)
}

// Close stops the read loop and closes the port.
func (l *Link) Close() error {
	var err error
	l.closeOnce.Do(func() {
		old := l.State()
		l.state.Store(int32(StateClosing))
		close(l.done)
		err = l.rwc.Close()
		<-l.loopDone
		l.state.Store(int32(StateClosed))
		if old == StateOpen {
			l.logState(old, StateClosed, "closed by host")
		}
	})
	return err
}

func (l *Link) write(cmd mt.Command, payload []byte) error {
	f := &mt.Frame{Command: cmd, Data: payload}
	if err := l.framer.WriteFrame(f); err != nil {
		l.logError(err, "write "+cmd.String())
		return err
	}
	l.config.Metrics.FrameOut()
	l.logCommand(log.DirectionOut, f, nil)
	l.logger.Debug("frame sent", "command", cmd.String(), "len", len(payload))
	return nil
}

// readLoop decodes frames until the port closes.
func (l *Link) readLoop() {
	defer close(l.loopDone)
	defer close(l.events)

	backoff := NewBackoffWithConfig(l.config.Backoff)

	for {
		f, err := l.framer.ReadFrame()
		if err != nil {
			if l.State() != StateOpen {
				return
			}
			switch {
			case errors.Is(err, mt.ErrBadFCS), errors.Is(err, mt.ErrFrameTooLarge), errors.Is(err, mt.ErrFrameTruncated):
				l.config.Metrics.FrameError()
				l.logger.Warn("dropping frame", "error", err)
				continue
			case isClosed(err):
				l.logger.Error("serial link lost", "error", err)
				l.logError(err, "read")
				l.state.Store(int32(StateClosed))
				l.logState(StateOpen, StateClosed, err.Error())
				return
			}

			delay := backoff.Next()
			l.logger.Error("read error", "error", err, "retry_in", delay)
			select {
			case <-time.After(delay):
			case <-l.done:
				return
			}
			continue
		}
		backoff.Reset()
		l.config.Metrics.FrameIn()
		l.handleFrame(f)
	}
}

func (l *Link) handleFrame(f *mt.Frame) {
	switch f.Command.Type {
	case mt.TypeSRSP:
		l.resolve(f)
	case mt.TypeAREQ:
		l.logCommand(log.DirectionIn, f, nil)
		select {
		case l.events <- f:
		default:
			l.logger.Warn("event queue full, dropping frame", "command", f.Command.String())
		}
	default:
		l.logger.Debug("ignoring frame", "command", f.Command.String())
	}
}

// resolve hands an SRSP to the outstanding request it answers.
func (l *Link) resolve(f *mt.Frame) {
	rpc := f.Command.Subsystem == mt.SubsystemRPCError

	l.mu.Lock()
	p := l.pending
	if p == nil || (!rpc && p.cmd.Key() != f.Command.Key()) {
		l.mu.Unlock()
		l.logCommand(log.DirectionIn, f, nil)
		l.logger.Warn("orphaned response", "command", f.Command.String(), "payload", fmt.Sprintf("%X", f.Data))
		return
	}
	l.pending = nil
	l.mu.Unlock()

	rt := time.Since(p.sent)
	l.logCommand(log.DirectionIn, f, &rt)

	if rpc {
		e := &RPCError{Command: p.cmd}
		if len(f.Data) > 0 {
			e.Code = f.Data[0]
		}
		if len(f.Data) >= 3 {
			e.Command = mt.ParseCommand(f.Data[1], f.Data[2])
		}
		p.ch <- result{err: e}
		return
	}
	p.ch <- result{frame: f}
}

func isClosed(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, os.ErrClosed) ||
		errors.Is(err, net.ErrClosed)
}

func (l *Link) logCommand(dir log.Direction, f *mt.Frame, rt *time.Duration) {
	if l.config.ProtocolLogger == nil {
		return
	}
	ev := &log.CommandEvent{
		Type:      uint8(f.Command.Type),
		Subsystem: uint8(f.Command.Subsystem),
		ID:        f.Command.ID,
		Payload:   append([]byte(nil), f.Data...),
		RoundTrip: rt,
	}
	if l.config.CommandName != nil {
		ev.Name = l.config.CommandName(f.Command)
	}
	l.config.ProtocolLogger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: l.sessionID,
		Direction: dir,
		Layer:     log.LayerMT,
		Category:  log.CategoryMessage,
		Port:      l.config.Port,
		Command:   ev,
	})
}

func (l *Link) logState(old, new LinkState, reason string) {
	if l.config.ProtocolLogger == nil {
		return
	}
	l.config.ProtocolLogger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: l.sessionID,
		Layer:     log.LayerTransport,
		Category:  log.CategoryState,
		Port:      l.config.Port,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityLink,
			OldState: old.String(),
			NewState: new.String(),
			Reason:   reason,
		},
	})
}

func (l *Link) logError(err error, op string) {
	if l.config.ProtocolLogger == nil {
		return
	}
	l.config.ProtocolLogger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: l.sessionID,
		Layer:     log.LayerTransport,
		Category:  log.CategoryError,
		Port:      l.config.Port,
		Error: &log.ErrorEventData{
			Layer:   log.LayerTransport,
			Message: err.Error(),
			Context: op,
		},
	})
}
