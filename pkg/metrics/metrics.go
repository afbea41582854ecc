// Package metrics exposes host counters in Prometheus format.
//
// All methods are safe on a nil *Metrics, so components can be built
// without metrics and tests need not construct a registry.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Command results.
const (
	ResultOK      = "ok"
	ResultStatus  = "status_error"
	ResultTimeout = "timeout"
	ResultError   = "error"
)

// Join outcomes.
const (
	JoinSuccess = "success"
	JoinFailure = "failure"
)

// Metrics holds the host's collectors on an isolated registry.
type Metrics struct {
	registry *prometheus.Registry

	frames      *prometheus.CounterVec
	frameErrors prometheus.Counter
	commands    *prometheus.CounterVec
	events      *prometheus.CounterVec
	joins       *prometheus.CounterVec
	deviceState prometheus.Gauge
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "znp_frames_total",
			Help: "MT frames exchanged with the coprocessor.",
		}, []string{"direction"}),
		frameErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "znp_frame_errors_total",
			Help: "Frames dropped for bad checksum or truncation.",
		}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "znp_commands_total",
			Help: "Commands dispatched, by subsystem and result.",
		}, []string{"subsystem", "result"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "znp_events_total",
			Help: "Asynchronous indications received, by event name.",
		}, []string{"event"}),
		joins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "znp_join_total",
			Help: "Network join sequences, by outcome.",
		}, []string{"outcome"}),
		deviceState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "znp_device_state",
			Help: "Last reported coprocessor device state.",
		}),
	}
	m.registry.MustRegister(m.frames, m.frameErrors, m.commands, m.events, m.joins, m.deviceState)
	return m
}

// FrameIn counts a frame received from the coprocessor.
func (m *Metrics) FrameIn() {
	if m == nil {
		return
	}
	m.frames.WithLabelValues("in").Inc()
}

// FrameOut counts a frame sent to the coprocessor.
func (m *Metrics) FrameOut() {
	if m == nil {
		return
	}
	m.frames.WithLabelValues("out").Inc()
}

// FrameError counts a frame that failed to decode.
func (m *Metrics) FrameError() {
	if m == nil {
		return
	}
	m.frameErrors.Inc()
}

// Command counts a dispatched command.
func (m *Metrics) Command(subsystem, result string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(subsystem, result).Inc()
}

// Event counts an asynchronous indication.
func (m *Metrics) Event(name string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(name).Inc()
}

// Join counts a finished join sequence.
func (m *Metrics) Join(outcome string) {
	if m == nil {
		return
	}
	m.joins.WithLabelValues(outcome).Inc()
}

// DeviceState records the latest device state value.
func (m *Metrics) DeviceState(v uint8) {
	if m == nil {
		return
	}
	m.deviceState.Set(float64(v))
}

// Handler returns the scrape handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes GET /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
