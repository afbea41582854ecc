package event

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Torchwoods/znp-host-framework/pkg/metrics"
	"github.com/Torchwoods/znp-host-framework/pkg/mt"
)

// Pump errors.
var (
	// ErrNoTraffic is returned by WaitAsync when the timeout passes quietly.
	ErrNoTraffic = errors.New("no asynchronous traffic")

	// ErrStopped is returned once the event source has closed.
	ErrStopped = errors.New("event pump stopped")
)

// PumpConfig configures a Pump. The zero value is usable.
type PumpConfig struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	// EventName resolves a frame kind for logs and metrics (optional).
	EventName func(mt.Key) string
}

// Pump feeds frames from a channel through a Router.
type Pump struct {
	events <-chan *mt.Frame
	router *Router
	config PumpConfig

	// traffic holds at most one pending "frame dispatched" signal.
	traffic chan struct{}
	done    chan struct{}
}

// NewPump creates a pump reading from events. Call Run to start it.
func NewPump(events <-chan *mt.Frame, router *Router, config PumpConfig) *Pump {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.EventName == nil {
		config.EventName = func(k mt.Key) string { return k.Subsystem.String() }
	}
	return &Pump{
		events:  events,
		router:  router,
		config:  config,
		traffic: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// Run dispatches frames until the source closes or ctx is done.
func (p *Pump) Run(ctx context.Context) {
	defer close(p.done)
	for {
		select {
		case <-ctx.Done():
			return
		case f, ok := <-p.events:
			if !ok {
				return
			}
			p.dispatch(f)
		}
	}
}

func (p *Pump) dispatch(f *mt.Frame) {
	name := p.config.EventName(f.Command.Key())
	p.config.Metrics.Event(name)

	if err := p.router.Dispatch(f); err != nil {
		p.config.Logger.Warn("event handler failed", "event", name, "error", err)
	}

	select {
	case p.traffic <- struct{}{}:
	default:
	}
}

// Done is closed when Run returns.
func (p *Pump) Done() <-chan struct{} {
	return p.done
}

// WaitAsync blocks until a frame has been dispatched since the previous
// wait, or until timeout passes.
func (p *Pump) WaitAsync(ctx context.Context, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-p.traffic:
		return nil
	case <-timer.C:
		return ErrNoTraffic
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		// Deliver a signal raised just before the source closed.
		select {
		case <-p.traffic:
			return nil
		default:
			return ErrStopped
		}
	}
}

// Quiesce waits until a full quiet window passes with no traffic and
// returns how many wake-ups it absorbed. A stopped pump is already quiet.
func (p *Pump) Quiesce(ctx context.Context, quiet time.Duration) (int, error) {
	n := 0
	for {
		err := p.WaitAsync(ctx, quiet)
		switch {
		case err == nil:
			n++
		case errors.Is(err, ErrNoTraffic), errors.Is(err, ErrStopped):
			return n, nil
		default:
			return n, err
		}
	}
}
