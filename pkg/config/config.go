// Package config holds the host process configuration: which serial port to
// open, where to log and the timing of the join and response waits.
//
// Values come from defaults, then an optional YAML file, then command line
// flags, each layer overriding the previous one.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the host configuration.
type Config struct {
	// Port is the serial device path (e.g. /dev/ttyACM0).
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// ProtocolLog is a CBOR capture file path; empty disables capture.
	ProtocolLog string `yaml:"protocol_log"`

	// StateDir holds state.json; empty disables persistence.
	StateDir    string `yaml:"state_dir"`
	HistorySize int    `yaml:"history_size"`

	ResponseTimeout time.Duration `yaml:"response_timeout"`
	ResponseQuiet   time.Duration `yaml:"response_quiet"`

	Join Join `yaml:"join"`

	// MetricsAddr serves /metrics when set (e.g. 127.0.0.1:9464).
	MetricsAddr string `yaml:"metrics_addr"`

	// ListPorts prints the available serial ports and exits.
	ListPorts bool `yaml:"-"`

	// ConfigFile is the YAML file the values were read from.
	ConfigFile string `yaml:"-"`
}

// Join configures the network join waits.
type Join struct {
	Wait       time.Duration `yaml:"wait"`
	MaxWaits   int           `yaml:"max_waits"`
	ResetDrain time.Duration `yaml:"reset_drain"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Baud:            115200,
		LogLevel:        "warn",
		HistorySize:     256,
		ResponseTimeout: 2 * time.Second,
		ResponseQuiet:   time.Second,
		Join: Join{
			Wait:       5 * time.Second,
			MaxWaits:   60,
			ResetDrain: 5 * time.Second,
		},
	}
}

// LoadFile reads path over the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	c.ConfigFile = path
	return nil
}

// AddFlags binds the configuration to flags on fs.
func (c *Config) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.ConfigFile, "config", c.ConfigFile, "YAML configuration file")
	fs.StringVarP(&c.Port, "port", "p", c.Port, "serial port of the coprocessor")
	fs.IntVarP(&c.Baud, "baud", "b", c.Baud, "serial baud rate")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&c.ProtocolLog, "protocol-log", c.ProtocolLog, "write a CBOR protocol capture to this file")
	fs.StringVar(&c.StateDir, "state-dir", c.StateDir, "directory for persistent host state")
	fs.IntVar(&c.HistorySize, "history-size", c.HistorySize, "number of commands kept in history")
	fs.DurationVar(&c.ResponseTimeout, "response-timeout", c.ResponseTimeout, "time to wait for a synchronous response")
	fs.DurationVar(&c.ResponseQuiet, "response-quiet", c.ResponseQuiet, "quiet window after each command")
	fs.DurationVar(&c.Join.Wait, "join-wait", c.Join.Wait, "length of one join wait slice")
	fs.IntVar(&c.Join.MaxWaits, "join-max-waits", c.Join.MaxWaits, "maximum number of join wait slices")
	fs.DurationVar(&c.Join.ResetDrain, "join-reset-drain", c.Join.ResetDrain, "time to wait for the reset indication")
	fs.StringVar(&c.MetricsAddr, "metrics-addr", c.MetricsAddr, "serve Prometheus metrics on this address")
	fs.BoolVar(&c.ListPorts, "list-ports", false, "list serial ports and exit")
}

// Parse builds the configuration from args (without the program name).
// A --config file is applied first and flags override it. A single
// positional argument is taken as the serial port.
func Parse(name string, args []string) (*Config, error) {
	// First pass only locates the config file.
	probe := Default()
	fs := newFlagSet(name, probe)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := Default()
	if probe.ConfigFile != "" {
		if err := cfg.loadFile(probe.ConfigFile); err != nil {
			return nil, err
		}
	}

	fs = newFlagSet(name, cfg)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	switch rest := fs.Args(); len(rest) {
	case 0:
	case 1:
		if fs.Changed("port") && cfg.Port != rest[0] {
			return nil, fmt.Errorf("%w: port given twice (%s, %s)", ErrInvalid, cfg.Port, rest[0])
		}
		cfg.Port = rest[0]
	default:
		return nil, fmt.Errorf("%w: unexpected argument: %s", ErrInvalid, rest[1])
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newFlagSet(name string, cfg *Config) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	cfg.AddFlags(fs)
	return fs
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.ListPorts {
		return nil
	}
	if c.Port == "" {
		return fmt.Errorf("%w: no serial port given", ErrInvalid)
	}
	if c.Baud <= 0 {
		return fmt.Errorf("%w: baud rate %d", ErrInvalid, c.Baud)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.HistorySize <= 0 {
		return fmt.Errorf("%w: history size %d", ErrInvalid, c.HistorySize)
	}
	if c.ResponseTimeout <= 0 || c.ResponseQuiet <= 0 {
		return fmt.Errorf("%w: response timeouts must be positive", ErrInvalid)
	}
	if c.Join.Wait <= 0 || c.Join.ResetDrain <= 0 || c.Join.MaxWaits <= 0 {
		return fmt.Errorf("%w: join waits must be positive", ErrInvalid)
	}
	return nil
}

// Level returns the configured log level.
func (c *Config) Level() slog.Level {
	l, _ := ParseLevel(c.LogLevel)
	return l
}

// ParseLevel converts a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelWarn, fmt.Errorf("%w: log level %q", ErrInvalid, s)
	}
}
