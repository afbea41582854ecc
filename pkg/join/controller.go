package join

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Torchwoods/znp-host-framework/pkg/dispatch"
	"github.com/Torchwoods/znp-host-framework/pkg/event"
	"github.com/Torchwoods/znp-host-framework/pkg/log"
	"github.com/Torchwoods/znp-host-framework/pkg/metrics"
	"github.com/Torchwoods/znp-host-framework/pkg/znp"
)

// ErrJoinFailed is returned when the device did not reach a joined state or
// a configuration step was rejected.
var ErrJoinFailed = errors.New("network join failed")

// Phase is the controller state.
type Phase uint8

const (
	AskJoinOrRestore Phase = iota
	ConfiguringPersistent
	Resetting
	SelectingRole
	SelectingChannel
	RegisteringEndpoint
	AwaitingJoin
	Joined
	Failed
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case AskJoinOrRestore:
		return "AskJoinOrRestore"
	case ConfiguringPersistent:
		return "ConfiguringPersistent"
	case Resetting:
		return "Resetting"
	case SelectingRole:
		return "SelectingRole"
	case SelectingChannel:
		return "SelectingChannel"
	case RegisteringEndpoint:
		return "RegisteringEndpoint"
	case AwaitingJoin:
		return "AwaitingJoin"
	case Joined:
		return "Joined"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Prompter asks the operator questions.
type Prompter interface {
	io.Writer

	// ReadLine reads one line of operator input without the terminator.
	ReadLine() (string, error)
}

// Waiter blocks until asynchronous traffic has been processed.
// Implemented by event.Pump.
type Waiter interface {
	WaitAsync(ctx context.Context, timeout time.Duration) error
}

// StateReader exposes the last reported device state.
// Implemented by znp.Tracker.
type StateReader interface {
	Get() znp.DeviceState
}

var (
	_ Waiter      = (*event.Pump)(nil)
	_ StateReader = (*znp.Tracker)(nil)
)

// Config configures a Controller.
type Config struct {
	// Wait is the length of one wait slice while awaiting the join (default: 5s).
	Wait time.Duration

	// MaxWaits bounds the number of wait slices (default: 60).
	MaxWaits int

	// ResetDrain is how long to wait for the reset indication (default: 5s).
	ResetDrain time.Duration

	// Role is the role chosen in a previous run. On the restore path it
	// selects the state to wait for; without it any joined state will do.
	Role    znp.Role
	HasRole bool

	// Endpoint is registered before the stack starts (default: znp.DefaultEndpoint).
	Endpoint *znp.Endpoint

	// Style renders operator-facing prompts (optional).
	Style func(string) string

	Logger         *slog.Logger
	ProtocolLogger log.Logger
	SessionID      string
	Metrics        *metrics.Metrics
}

// DefaultConfig returns the default controller configuration.
func DefaultConfig() Config {
	return Config{
		Wait:       5 * time.Second,
		MaxWaits:   60,
		ResetDrain: 5 * time.Second,
	}
}

// Result describes a finished join sequence.
type Result struct {
	NewNetwork bool

	// Role is the role waited for; valid when HasRole is set.
	Role    znp.Role
	HasRole bool

	// Channel is the selected channel, or 0 on the restore path.
	Channel int

	// State is the device state observed at the end.
	State znp.DeviceState
}

// Controller drives one join sequence.
type Controller struct {
	sender dispatch.Sender
	waiter Waiter
	state  StateReader
	in     Prompter
	config Config

	phase Phase
}

// New creates a controller.
func New(sender dispatch.Sender, waiter Waiter, state StateReader, in Prompter, config Config) *Controller {
	def := DefaultConfig()
	if config.Wait <= 0 {
		config.Wait = def.Wait
	}
	if config.MaxWaits <= 0 {
		config.MaxWaits = def.MaxWaits
	}
	if config.ResetDrain <= 0 {
		config.ResetDrain = def.ResetDrain
	}
	if config.Endpoint == nil {
		ep := znp.DefaultEndpoint
		config.Endpoint = &ep
	}
	if config.Style == nil {
		config.Style = func(s string) string { return s }
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Controller{
		sender: sender,
		waiter: waiter,
		state:  state,
		in:     in,
		config: config,
	}
}

// Phase returns the current controller phase.
func (c *Controller) Phase() Phase {
	return c.phase
}

// Run executes the join sequence once. On failure the returned error wraps
// ErrJoinFailed and the Result still reports what was observed.
func (c *Controller) Run(ctx context.Context) (*Result, error) {
	res := &Result{Role: c.config.Role, HasRole: c.config.HasRole}

	newNetwork, err := c.askNewNetwork()
	if err != nil {
		return res, c.fail(res, fmt.Errorf("%w: %w", ErrJoinFailed, err))
	}
	res.NewNetwork = newNetwork

	err = c.configure(ctx, res)

	// Keep the network across later resets, whatever happened above.
	c.setPhase(ConfiguringPersistent)
	if kerr := c.writeStartup(ctx, znp.StartupKeep); kerr != nil {
		c.config.Logger.Warn("restoring keep-state startup option failed", "error", kerr)
	}

	res.State = c.state.Get()
	if err != nil {
		return res, c.fail(res, err)
	}
	if !res.State.Joined() {
		return res, c.fail(res, fmt.Errorf("%w: device state %s", ErrJoinFailed, res.State))
	}

	c.setPhase(Joined)
	c.config.Metrics.Join(metrics.JoinSuccess)
	c.config.Logger.Info("network joined", "state", res.State.String(), "new_network", res.NewNetwork)
	return res, nil
}

// configure runs every step between the operator's first answer and the
// end of the join wait.
func (c *Controller) configure(ctx context.Context, res *Result) error {
	c.setPhase(ConfiguringPersistent)
	opt := byte(znp.StartupKeep)
	if res.NewNetwork {
		opt = znp.StartupClearState | znp.StartupClearConfig
	}
	if err := c.writeStartup(ctx, opt); err != nil {
		return fmt.Errorf("%w: startup option: %w", ErrJoinFailed, err)
	}

	c.setPhase(Resetting)
	c.say("Resetting ZNP")
	if err := c.sender.Post(ctx, znp.CmdResetReq, []byte{znp.ResetSoft}); err != nil {
		return fmt.Errorf("%w: reset: %w", ErrJoinFailed, err)
	}
	// Discard the reset indication.
	if err := c.waiter.WaitAsync(ctx, c.config.ResetDrain); err != nil && !errors.Is(err, event.ErrNoTraffic) {
		return fmt.Errorf("%w: reset: %w", ErrJoinFailed, err)
	}

	if res.NewNetwork {
		if err := c.selectRole(ctx, res); err != nil {
			return err
		}
		if err := c.nvWrite(ctx, znp.NVPanID, znp.Uint16LE(znp.PanIDAny)); err != nil {
			return fmt.Errorf("%w: PAN ID: %w", ErrJoinFailed, err)
		}
		if err := c.selectChannel(ctx, res); err != nil {
			return err
		}
	}

	c.setPhase(RegisteringEndpoint)
	if err := c.registerEndpoint(ctx); err != nil {
		// An endpoint survives a restore, so a rejected registration is not fatal.
		c.config.Logger.Warn("endpoint registration rejected", "error", err)
	}
	c.say(fmt.Sprintf("EndPoint: %d", c.config.Endpoint.ID))

	c.setPhase(AwaitingJoin)
	started, err := c.startStack(ctx)
	if err != nil {
		return fmt.Errorf("%w: start: %w", ErrJoinFailed, err)
	}
	if !started.Started() {
		return fmt.Errorf("%w: start: %s", ErrJoinFailed, started)
	}
	return c.awaitJoin(ctx, res)
}

func (c *Controller) askNewNetwork() (bool, error) {
	for {
		answer, err := c.ask("Do you wish to start/join a new network? (y/n)")
		if err != nil {
			return false, err
		}
		switch firstByte(answer) {
		case 'y', 'Y':
			return true, nil
		case 'n', 'N':
			return false, nil
		}
		c.say("Incorrect input please type y or n")
	}
}

func (c *Controller) selectRole(ctx context.Context, res *Result) error {
	c.setPhase(SelectingRole)
	answer, err := c.ask("Enter device type c: Coordinator, r: Router, e: End Device:")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrJoinFailed, err)
	}
	role := znp.ParseRole(answer)
	if err := c.nvWrite(ctx, znp.NVLogicalType, []byte{byte(role)}); err != nil {
		return fmt.Errorf("%w: logical type: %w", ErrJoinFailed, err)
	}
	res.Role = role
	res.HasRole = true
	c.config.Logger.Info("role selected", "role", role.String())
	return nil
}

func (c *Controller) selectChannel(ctx context.Context, res *Result) error {
	c.setPhase(SelectingChannel)
	for {
		answer, err := c.ask(fmt.Sprintf("Enter channel %d-%d:", znp.MinChannel, znp.MaxChannel))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrJoinFailed, err)
		}
		ch, err := strconv.Atoi(strings.TrimSpace(answer))
		if err != nil || ch < znp.MinChannel || ch > znp.MaxChannel {
			c.say(fmt.Sprintf("Channel must be a number from %d to %d", znp.MinChannel, znp.MaxChannel))
			continue
		}
		if err := c.nvWrite(ctx, znp.NVChannelList, znp.Uint32LE(znp.ChannelMask(ch))); err != nil {
			return fmt.Errorf("%w: channel list: %w", ErrJoinFailed, err)
		}
		res.Channel = ch
		return nil
	}
}

func (c *Controller) registerEndpoint(ctx context.Context) error {
	rsp, err := c.sender.Request(ctx, znp.CmdAFRegister, c.config.Endpoint.Payload())
	if err != nil {
		return err
	}
	if s := rsp.Status(); !s.OK() {
		return fmt.Errorf("status %s", s)
	}
	return nil
}

func (c *Controller) startStack(ctx context.Context) (znp.StartupResult, error) {
	rsp, err := c.sender.Request(ctx, znp.CmdStartupFromApp, znp.Uint16LE(0))
	if err != nil {
		return 0, err
	}
	result := znp.StartupResult(rsp.Status())
	c.config.Logger.Info("stack start", "result", result.String())
	return result, nil
}

// awaitJoin waits slice by slice until the device reports the target state
// or a slice passes without traffic.
func (c *Controller) awaitJoin(ctx context.Context, res *Result) error {
	for i := 0; i < c.config.MaxWaits; i++ {
		err := c.waiter.WaitAsync(ctx, c.config.Wait)
		state := c.state.Get()
		c.config.Logger.Debug("join wait", "slice", i+1, "state", state.String())

		if c.reached(res, state) {
			return nil
		}
		if err != nil {
			if errors.Is(err, event.ErrNoTraffic) || errors.Is(err, event.ErrStopped) {
				return nil
			}
			return fmt.Errorf("%w: %w", ErrJoinFailed, err)
		}
	}
	c.config.Logger.Warn("join wait budget exhausted", "waits", c.config.MaxWaits)
	return nil
}

func (c *Controller) reached(res *Result, state znp.DeviceState) bool {
	if res.HasRole {
		return state == res.Role.TerminalState()
	}
	return state.Joined()
}

func (c *Controller) writeStartup(ctx context.Context, opt byte) error {
	return c.nvWrite(ctx, znp.NVStartupOption, []byte{opt})
}

func (c *Controller) nvWrite(ctx context.Context, id uint16, value []byte) error {
	rsp, err := c.sender.Request(ctx, znp.CmdNVWrite, znp.NVWrite(id, value))
	if err != nil {
		return err
	}
	if s := rsp.Status(); !s.OK() {
		return fmt.Errorf("NV item 0x%04X: status %s", id, s)
	}
	return nil
}

func (c *Controller) ask(question string) (string, error) {
	c.say(question)
	return c.in.ReadLine()
}

func (c *Controller) say(s string) {
	_, _ = io.WriteString(c.in, c.config.Style(s)+"\n")
}

func (c *Controller) fail(res *Result, err error) error {
	c.setPhase(Failed)
	c.config.Metrics.Join(metrics.JoinFailure)
	c.config.Logger.Warn("network join failed", "error", err, "state", res.State.String())
	return err
}

func (c *Controller) setPhase(p Phase) {
	old := c.phase
	c.phase = p
	if c.config.ProtocolLogger == nil || old == p {
		return
	}
	c.config.ProtocolLogger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: c.config.SessionID,
		Layer:     log.LayerHost,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityJoin,
			OldState: old.String(),
			NewState: p.String(),
		},
	})
}

func firstByte(s string) byte {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	return s[0]
}
