// Command znp-cmdline is an interactive command line for a Z-Stack network
// processor attached over a serial port.
//
// At startup it asks whether to form or join a new network or to restore the
// one saved on the device, brings the network up and then offers every MT
// command by name with tab completion, prompting for each field.
//
// Usage:
//
//	znp-cmdline [flags] [port]
//
// Flags:
//
//	-p, --port string              serial port of the coprocessor
//	-b, --baud int                 serial baud rate (default 115200)
//	    --config string            YAML configuration file
//	    --log-level string         debug, info, warn, error (default "warn")
//	    --protocol-log string      write a CBOR protocol capture to this file
//	    --state-dir string         directory for persistent host state
//	    --history-size int         commands kept in history (default 256)
//	    --response-timeout dur     synchronous response timeout (default 2s)
//	    --response-quiet dur       quiet window after each command (default 1s)
//	    --join-wait dur            length of one join wait slice (default 5s)
//	    --join-max-waits int       maximum join wait slices (default 60)
//	    --join-reset-drain dur     wait for the reset indication (default 5s)
//	    --metrics-addr string      serve Prometheus metrics on this address
//	    --list-ports               list serial ports and exit
//
// Keys:
//
//	Tab          complete the command name; a second Tab shows help
//	Up/Down      browse history
//	Ctrl-C       quit
//	Ctrl-D       quit on an empty line
//
// Examples:
//
//	# Open the coprocessor on its default port
//	znp-cmdline /dev/ttyACM0
//
//	# Capture protocol traffic for znp-log
//	znp-cmdline -p /dev/ttyACM0 --protocol-log session.zlog
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/Torchwoods/znp-host-framework/internal/shell"
	"github.com/Torchwoods/znp-host-framework/pkg/config"
	"github.com/Torchwoods/znp-host-framework/pkg/console"
	"github.com/Torchwoods/znp-host-framework/pkg/join"
	"github.com/Torchwoods/znp-host-framework/pkg/log"
	"github.com/Torchwoods/znp-host-framework/pkg/metrics"
	"github.com/Torchwoods/znp-host-framework/pkg/mt"
	"github.com/Torchwoods/znp-host-framework/pkg/persistence"
	"github.com/Torchwoods/znp-host-framework/pkg/registry"
	"github.com/Torchwoods/znp-host-framework/pkg/transport"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Parse("znp-cmdline", os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	if cfg.ListPorts {
		return listPorts()
	}

	con := console.New()
	logger := slog.New(slog.NewTextHandler(con.Stderr(), &slog.HandlerOptions{Level: cfg.Level()}))

	reg, err := registry.Default()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := m.Serve(ctx, cfg.MetricsAddr); err != nil {
				logger.Warn("metrics server stopped", "addr", cfg.MetricsAddr, "error", err)
			}
		}()
	}

	var capture *log.FileLogger
	if cfg.ProtocolLog != "" {
		capture, err = log.NewFileLogger(cfg.ProtocolLog)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: protocol log: %v\n", err)
			return 1
		}
		defer func() {
			n := capture.Written()
			if err := capture.Close(); err != nil {
				logger.Warn("protocol log incomplete", "path", capture.Path(), "events", n, "error", err)
				return
			}
			logger.Debug("protocol log closed", "path", capture.Path(), "events", n)
		}()
	}

	var debugLog log.Logger
	if cfg.Level() <= slog.LevelDebug {
		debugLog = log.NewSlogAdapter(logger)
	}
	var protocolLogger log.Logger
	if capture != nil {
		protocolLogger = log.Combine(capture, debugLog)
	} else {
		protocolLogger = log.Combine(debugLog)
	}

	link, err := transport.Open(
		transport.SerialConfig{Port: cfg.Port, BaudRate: cfg.Baud},
		transport.LinkConfig{
			ResponseTimeout: cfg.ResponseTimeout,
			Logger:          logger,
			ProtocolLogger:  protocolLogger,
			CommandName:     commandName(reg),
			Metrics:         m,
		},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer link.Close()

	var store *persistence.HostStateStore
	if cfg.StateDir != "" {
		store = persistence.NewHostStateStoreInDir(cfg.StateDir)
	}

	sh := shell.New(reg, link, con, shell.Config{
		ResponseQuiet: cfg.ResponseQuiet,
		HistorySize:   cfg.HistorySize,
		Join: join.Config{
			Wait:       cfg.Join.Wait,
			MaxWaits:   cfg.Join.MaxWaits,
			ResetDrain: cfg.Join.ResetDrain,
		},
		Store:          store,
		Logger:         logger,
		ProtocolLogger: protocolLogger,
		Metrics:        m,
	})

	if err := con.MakeRaw(); err != nil {
		logger.Warn("raw mode unavailable", "error", err)
	}
	defer con.Restore()

	done := make(chan error, 1)
	go func() {
		done <- sh.Run(ctx)
	}()

	select {
	case err = <-done:
	case <-ctx.Done():
		// Input reads cannot be interrupted; leave the shell goroutine behind.
		err = nil
	}

	if err != nil {
		con.Restore()
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func listPorts() int {
	ports, err := transport.ListPorts()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if len(ports) == 0 {
		fmt.Println("No serial ports found")
		return 0
	}
	for _, p := range ports {
		fmt.Println(p)
	}
	return 0
}

// commandName resolves commands and indications to registry names for the
// protocol log.
func commandName(reg *registry.Registry) func(mt.Command) string {
	return func(c mt.Command) string {
		if cmd, ok := reg.CommandFor(c.Key()); ok {
			return cmd.Name
		}
		if ev, ok := reg.Event(c.Key()); ok {
			return ev.Name
		}
		return ""
	}
}
