// Package shell wires the command line together: it brings the network up
// once at startup and then reads, encodes and dispatches operator commands
// until the operator quits.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/chzyer/readline"

	"github.com/Torchwoods/znp-host-framework/pkg/console"
	"github.com/Torchwoods/znp-host-framework/pkg/dispatch"
	"github.com/Torchwoods/znp-host-framework/pkg/encode"
	"github.com/Torchwoods/znp-host-framework/pkg/event"
	"github.com/Torchwoods/znp-host-framework/pkg/join"
	"github.com/Torchwoods/znp-host-framework/pkg/lineedit"
	"github.com/Torchwoods/znp-host-framework/pkg/log"
	"github.com/Torchwoods/znp-host-framework/pkg/metrics"
	"github.com/Torchwoods/znp-host-framework/pkg/mt"
	"github.com/Torchwoods/znp-host-framework/pkg/persistence"
	"github.com/Torchwoods/znp-host-framework/pkg/registry"
	"github.com/Torchwoods/znp-host-framework/pkg/transport"
	"github.com/Torchwoods/znp-host-framework/pkg/znp"
)

// Terminal is the operator console.
type Terminal interface {
	lineedit.Console
	ReadLine() (string, error)

	Response(string) string
	Help(string) string
	Param(string) string
	Width() int
}

var _ Terminal = (*console.Console)(nil)

// Link is the coprocessor session.
type Link interface {
	dispatch.Sender
	Events() <-chan *mt.Frame
	SessionID() string
}

var _ Link = (*transport.Link)(nil)

// Config configures a Shell.
type Config struct {
	// ResponseQuiet is the quiet window awaited after each command (default: 1s).
	ResponseQuiet time.Duration

	// StartupQuiet is the quiet window used to flush queued traffic before
	// the join (default: 50ms).
	StartupQuiet time.Duration

	// HistorySize bounds the command history (default: 256).
	HistorySize int

	Join join.Config

	// Store persists host state between runs (optional).
	Store *persistence.HostStateStore

	Logger         *slog.Logger
	ProtocolLogger log.Logger
	Metrics        *metrics.Metrics
}

// Shell is one interactive session.
type Shell struct {
	reg    *registry.Registry
	link   Link
	term   Terminal
	config Config

	tracker    *znp.Tracker
	router     *event.Router
	pump       *event.Pump
	dispatcher *dispatch.Dispatcher
	history    *lineedit.History
	editor     *lineedit.Editor
	encoder    *encode.Encoder

	joined  *join.Result
	extAddr string
}

// New creates a shell over link and term.
func New(reg *registry.Registry, link Link, term Terminal, config Config) *Shell {
	if config.ResponseQuiet <= 0 {
		config.ResponseQuiet = time.Second
	}
	if config.StartupQuiet <= 0 {
		config.StartupQuiet = 50 * time.Millisecond
	}
	if config.HistorySize <= 0 {
		config.HistorySize = lineedit.DefaultHistorySize
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	s := &Shell{
		reg:     reg,
		link:    link,
		term:    term,
		config:  config,
		tracker: znp.NewTracker(),
		router:  event.NewRouter(),
		history: lineedit.NewHistory(config.HistorySize),
	}

	if config.ProtocolLogger != nil {
		s.tracker.SetLogger(config.ProtocolLogger, link.SessionID())
	}
	s.tracker.OnChange(func(_, new znp.DeviceState) {
		config.Metrics.DeviceState(uint8(new))
	})

	s.router.Handle(znp.IndStateChange, s.onStateChange)
	s.router.Handle(znp.IndResetInd, s.onReset)
	s.router.Fallback(s.onEvent)

	s.pump = event.NewPump(link.Events(), s.router, event.PumpConfig{
		Logger:    config.Logger,
		Metrics:   config.Metrics,
		EventName: s.eventName,
	})
	s.dispatcher = dispatch.New(reg, link, dispatch.Config{
		Logger:  config.Logger,
		Metrics: config.Metrics,
	})
	s.editor = lineedit.NewEditor(term, reg, s.history, lineedit.Options{
		Help:  term.Help,
		Width: term.Width,
	})
	s.encoder = encode.NewEncoder(term, encode.Options{Param: term.Param})
	return s
}

// Tracker returns the device state tracker.
func (s *Shell) Tracker() *znp.Tracker {
	return s.tracker
}

// History returns the command history.
func (s *Shell) History() *lineedit.History {
	return s.history
}

// Joined returns the join outcome once Start has run.
func (s *Shell) Joined() *join.Result {
	return s.joined
}

// ExtAddr returns the coprocessor IEEE address once known.
func (s *Shell) ExtAddr() string {
	return s.extAddr
}

// Run starts the session and serves operator commands until the operator
// quits (Ctrl-C, or Ctrl-D on an empty line) or the link fails.
func (s *Shell) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.pump.Run(ctx)
	defer s.saveHistory()

	s.restore()

	if err := s.Start(ctx); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Start flushes stale traffic, runs the join sequence and prints the
// network summary. A failed join is reported but does not end the session.
func (s *Shell) Start(ctx context.Context) error {
	if n, err := s.pump.Quiesce(ctx, s.config.StartupQuiet); err != nil {
		return err
	} else if n > 0 {
		s.config.Logger.Debug("flushed queued traffic", "frames", n)
	}

	jc := s.config.Join
	jc.Logger = s.config.Logger
	jc.ProtocolLogger = s.config.ProtocolLogger
	jc.SessionID = s.link.SessionID()
	jc.Metrics = s.config.Metrics
	jc.Style = s.term.Param

	res, err := join.New(s.link, s.pump, s.tracker, s.term, jc).Run(ctx)
	s.joined = res
	switch {
	case err == nil:
		s.print("Network up\n\n")
		s.saveJoin(res)
	case errors.Is(err, join.ErrJoinFailed):
		s.print("Network Error\n\n")
	default:
		return err
	}
	if isFatal(err) {
		return err
	}

	if err := s.readExtAddr(ctx); err != nil {
		if isFatal(err) {
			return err
		}
		s.config.Logger.Warn("reading IEEE address failed", "error", err)
	}

	// Deliver ZDO responses as indications.
	rsp, err := s.link.Request(ctx, znp.CmdNVWrite, znp.NVWrite(znp.NVZdoDirectCB, []byte{0x01}))
	switch {
	case isFatal(err):
		return err
	case err != nil:
		s.config.Logger.Warn("enabling ZDO callbacks failed", "error", err)
	case !rsp.Status().OK():
		s.config.Logger.Warn("enabling ZDO callbacks rejected", "status", rsp.Status().String())
	}

	_, err = s.pump.Quiesce(ctx, s.config.ResponseQuiet)
	return err
}

// Serve runs the command loop.
func (s *Shell) Serve(ctx context.Context) error {
	for {
		cmd, err := s.editor.ReadCommand()
		if err != nil {
			return quitErr(err)
		}

		buf, err := s.encoder.Encode(cmd)
		if err != nil {
			return quitErr(err)
		}

		rsp, err := s.dispatcher.Dispatch(ctx, cmd.Index, buf.Bytes())
		if err != nil {
			if isFatal(err) {
				return err
			}
			s.print(fmt.Sprintf("Error: %v\n", err))
		} else {
			s.print(rsp.String() + "\n")
		}

		if _, err := s.pump.Quiesce(ctx, s.config.ResponseQuiet); err != nil {
			return err
		}
	}
}

func (s *Shell) readExtAddr(ctx context.Context) error {
	rsp, err := s.link.Request(ctx, znp.CmdGetExtAddr, nil)
	if err != nil {
		return err
	}
	if len(rsp.Data) < 8 {
		return fmt.Errorf("short IEEE address: %d bytes", len(rsp.Data))
	}
	s.extAddr = formatExtAddr(rsp.Data[:8])
	s.print(fmt.Sprintf("IEEE Address: %s\n", s.extAddr))

	if s.config.Store != nil {
		if err := s.config.Store.Update(func(st *persistence.HostState) { st.ExtAddr = s.extAddr }); err != nil {
			s.config.Logger.Warn("saving IEEE address failed", "error", err)
		}
	}
	return nil
}

// restore loads the persisted role and history.
func (s *Shell) restore() {
	if s.config.Store == nil {
		return
	}
	st, err := s.config.Store.Load()
	if err != nil {
		s.config.Logger.Warn("loading host state failed", "path", s.config.Store.Path(), "error", err)
		return
	}
	if st == nil {
		return
	}
	s.history.Load(persistence.TrimHistory(st.History, s.config.HistorySize))
	if st.Join != nil {
		if role, ok := znp.ParseRoleName(st.Join.Role); ok {
			s.config.Join.Role = role
			s.config.Join.HasRole = true
		}
	}
}

func (s *Shell) saveJoin(res *join.Result) {
	if s.config.Store == nil || !res.NewNetwork || !res.HasRole {
		return
	}
	err := s.config.Store.Update(func(st *persistence.HostState) {
		st.Join = &persistence.JoinRecord{
			Role:     res.Role.String(),
			Channel:  res.Channel,
			JoinedAt: time.Now(),
		}
	})
	if err != nil {
		s.config.Logger.Warn("saving join state failed", "error", err)
	}
}

func (s *Shell) saveHistory() {
	if s.config.Store == nil {
		return
	}
	lines := s.history.Entries()
	err := s.config.Store.Update(func(st *persistence.HostState) { st.History = lines })
	if err != nil {
		s.config.Logger.Warn("saving history failed", "error", err)
	}
}

func (s *Shell) onStateChange(f *mt.Frame) error {
	if len(f.Data) < 1 {
		return fmt.Errorf("state change: empty payload")
	}
	state := znp.DeviceState(f.Data[0])
	s.tracker.Set(state)
	if text := state.Describe(); text != "" {
		s.print(text + "\n")
	}
	return nil
}

func (s *Shell) onReset(f *mt.Frame) error {
	reason := "unknown"
	if len(f.Data) > 0 {
		switch f.Data[0] {
		case 0x00:
			reason = "power-up"
		case 0x01:
			reason = "external"
		case 0x02:
			reason = "watchdog"
		}
	}
	s.tracker.Set(znp.Hold)
	s.print(fmt.Sprintf("ZNP reset (%s)\n", reason))
	return nil
}

func (s *Shell) onEvent(f *mt.Frame) error {
	s.print(fmt.Sprintf("%s: %s\n", s.eventName(f.Command.Key()), hexBytes(f.Data)))
	return nil
}

func (s *Shell) eventName(k mt.Key) string {
	if ev, ok := s.reg.Event(k); ok {
		return ev.Name
	}
	return fmt.Sprintf("%s 0x%02X", k.Subsystem, k.ID)
}

func (s *Shell) print(text string) {
	_, _ = io.WriteString(s.term, s.term.Response(text))
}

// formatExtAddr renders a little-endian IEEE address most significant byte
// first.
func formatExtAddr(b []byte) string {
	out := make([]byte, 0, 2*len(b))
	for i := len(b) - 1; i >= 0; i-- {
		out = fmt.Appendf(out, "%02X", b[i])
	}
	return string(out)
}

func hexBytes(b []byte) string {
	if len(b) == 0 {
		return "(empty)"
	}
	out := make([]byte, 0, 3*len(b))
	for i, v := range b {
		if i > 0 {
			out = append(out, ' ')
		}
		out = fmt.Appendf(out, "%02X", v)
	}
	return string(out)
}

// isFatal reports errors that end the session.
func isFatal(err error) bool {
	return err != nil && (errors.Is(err, transport.ErrLinkClosed) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
}

// quitErr maps the operator's exit keys to a clean exit.
func quitErr(err error) error {
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
