package event

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Torchwoods/znp-host-framework/pkg/mt"
)

var (
	stateChange = mt.Command{Type: mt.TypeAREQ, Subsystem: mt.SubsystemZDO, ID: 0xC0}
	resetInd    = mt.Command{Type: mt.TypeAREQ, Subsystem: mt.SubsystemSYS, ID: 0x80}
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRouterDispatch(t *testing.T) {
	r := NewRouter()

	var got []byte
	r.Handle(stateChange.Key(), func(f *mt.Frame) error {
		got = f.Data
		return nil
	})

	require.NoError(t, r.Dispatch(&mt.Frame{Command: stateChange, Data: []byte{0x09}}))
	assert.Equal(t, []byte{0x09}, got)
	assert.True(t, r.Handled(stateChange.Key()))
	assert.False(t, r.Handled(resetInd.Key()))

	// Unhandled kinds are a no-op without a fallback.
	assert.NoError(t, r.Dispatch(&mt.Frame{Command: resetInd}))
}

func TestRouterFallback(t *testing.T) {
	r := NewRouter()
	var fallback int
	r.Fallback(func(*mt.Frame) error {
		fallback++
		return nil
	})
	r.Handle(stateChange.Key(), func(*mt.Frame) error { return nil })

	_ = r.Dispatch(&mt.Frame{Command: stateChange})
	_ = r.Dispatch(&mt.Frame{Command: resetInd})
	assert.Equal(t, 1, fallback)

	r.Handle(stateChange.Key(), nil)
	_ = r.Dispatch(&mt.Frame{Command: stateChange})
	assert.Equal(t, 2, fallback)
}

func TestRouterHandlerError(t *testing.T) {
	r := NewRouter()
	boom := errors.New("boom")
	r.Handle(resetInd.Key(), func(*mt.Frame) error { return boom })
	assert.ErrorIs(t, r.Dispatch(&mt.Frame{Command: resetInd}), boom)
}

func startPump(t *testing.T, r *Router) (chan *mt.Frame, *Pump) {
	t.Helper()
	ch := make(chan *mt.Frame, 8)
	p := NewPump(ch, r, PumpConfig{Logger: quietLogger()})
	ctx, cancel := context.WithCancel(context.Background())
	go p.Run(ctx)
	t.Cleanup(cancel)
	return ch, p
}

func TestPumpAppliesBeforeSignal(t *testing.T) {
	r := NewRouter()
	var state atomic.Uint32
	r.Handle(stateChange.Key(), func(f *mt.Frame) error {
		state.Store(uint32(f.Data[0]))
		return nil
	})
	ch, p := startPump(t, r)

	ch <- &mt.Frame{Command: stateChange, Data: []byte{0x07}}
	require.NoError(t, p.WaitAsync(context.Background(), time.Second))
	assert.Equal(t, uint32(7), state.Load())
}

func TestPumpWaitTimeout(t *testing.T) {
	_, p := startPump(t, NewRouter())

	start := time.Now()
	err := p.WaitAsync(context.Background(), 30*time.Millisecond)
	assert.ErrorIs(t, err, ErrNoTraffic)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestPumpWaitContext(t *testing.T) {
	_, p := startPump(t, NewRouter())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.WaitAsync(ctx, time.Second), context.Canceled)
}

func TestPumpStopped(t *testing.T) {
	ch, p := startPump(t, NewRouter())
	close(ch)

	<-p.Done()
	assert.ErrorIs(t, p.WaitAsync(context.Background(), time.Second), ErrStopped)

	n, err := p.Quiesce(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPumpQuiesce(t *testing.T) {
	r := NewRouter()
	var handled atomic.Int32
	r.Fallback(func(*mt.Frame) error {
		handled.Add(1)
		return nil
	})
	ch, p := startPump(t, r)

	for i := 0; i < 3; i++ {
		ch <- &mt.Frame{Command: resetInd}
	}

	n, err := p.Quiesce(context.Background(), 50*time.Millisecond)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 1)
	assert.Equal(t, int32(3), handled.Load())

	// Quiet now: nothing left to absorb.
	n, err = p.Quiesce(context.Background(), 20*time.Millisecond)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPumpHandlerErrorStillSignals(t *testing.T) {
	r := NewRouter()
	r.Fallback(func(*mt.Frame) error { return errors.New("bad payload") })
	ch, p := startPump(t, r)

	ch <- &mt.Frame{Command: resetInd}
	assert.NoError(t, p.WaitAsync(context.Background(), time.Second))
}
