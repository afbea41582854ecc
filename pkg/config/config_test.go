package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "znp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 115200, cfg.Baud)
	assert.Equal(t, 256, cfg.HistorySize)
	assert.Equal(t, 2*time.Second, cfg.ResponseTimeout)
	assert.Equal(t, time.Second, cfg.ResponseQuiet)
	assert.Equal(t, Join{Wait: 5 * time.Second, MaxWaits: 60, ResetDrain: 5 * time.Second}, cfg.Join)
	assert.Equal(t, slog.LevelWarn, cfg.Level())
}

func TestParsePositionalPort(t *testing.T) {
	cfg, err := Parse("znp-cmdline", []string{"/dev/ttyACM0"})
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyACM0", cfg.Port)
}

func TestParseFlags(t *testing.T) {
	cfg, err := Parse("znp-cmdline", []string{
		"-p", "/dev/ttyUSB1",
		"--baud", "38400",
		"--log-level", "debug",
		"--join-wait", "2s",
		"--join-max-waits", "10",
		"--response-quiet", "250ms",
		"--metrics-addr", "127.0.0.1:9464",
	})
	require.NoError(t, err)

	want := Default()
	want.Port = "/dev/ttyUSB1"
	want.Baud = 38400
	want.LogLevel = "debug"
	want.Join.Wait = 2 * time.Second
	want.Join.MaxWaits = 10
	want.ResponseQuiet = 250 * time.Millisecond
	want.MetricsAddr = "127.0.0.1:9464"

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFileThenFlags(t *testing.T) {
	path := writeFile(t, `
port: /dev/ttyACM3
baud: 57600
log_level: info
state_dir: /var/lib/znp
join:
  wait: 3s
  max_waits: 20
`)

	cfg, err := Parse("znp-cmdline", []string{"--config", path, "--baud", "9600"})
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyACM3", cfg.Port)
	assert.Equal(t, 9600, cfg.Baud, "flag overrides file")
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "/var/lib/znp", cfg.StateDir)
	assert.Equal(t, 3*time.Second, cfg.Join.Wait)
	assert.Equal(t, 20, cfg.Join.MaxWaits)
	assert.Equal(t, 5*time.Second, cfg.Join.ResetDrain, "unset keys keep defaults")
	assert.Equal(t, path, cfg.ConfigFile)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no port", args: nil},
		{name: "two ports", args: []string{"-p", "/dev/a", "/dev/b"}},
		{name: "extra args", args: []string{"/dev/a", "/dev/b"}},
		{name: "bad level", args: []string{"/dev/a", "--log-level", "loud"}},
		{name: "bad baud", args: []string{"/dev/a", "--baud", "0"}},
		{name: "bad history", args: []string{"/dev/a", "--history-size", "0"}},
		{name: "bad wait", args: []string{"/dev/a", "--join-wait", "0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("znp-cmdline", tt.args)
			require.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestParseUnknownFlag(t *testing.T) {
	_, err := Parse("znp-cmdline", []string{"--nope"})
	require.Error(t, err)
}

func TestParseMissingFile(t *testing.T) {
	_, err := Parse("znp-cmdline", []string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "/dev/a"})
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadFileMalformed(t *testing.T) {
	_, err := LoadFile(writeFile(t, "baud: [1, 2"))
	require.Error(t, err)
}

func TestListPortsNeedsNoPort(t *testing.T) {
	cfg, err := Parse("znp-cmdline", []string{"--list-ports"})
	require.NoError(t, err)
	assert.True(t, cfg.ListPorts)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}
