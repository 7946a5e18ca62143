package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.NoError(t, err)

	require.Equal(t, "http://localhost:8080", cfg.Server.BaseURL)
	require.Equal(t, 500, cfg.Server.RetryDelayMs)
	require.Equal(t, 60, cfg.Inbox.PollIntervalSec)
	require.True(t, cfg.Inbox.Snapshot)
	require.Equal(t, 4000, cfg.Display.ToastTimeoutMs)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfigReadsFileAndTrimsBaseURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "server:\n  base_url: https://events.campus.test/\n  timeout_sec: 5\ninbox:\n  poll_interval_sec: 15\n  snapshot: false\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	require.Equal(t, "https://events.campus.test", cfg.Server.BaseURL)
	require.Equal(t, 5, cfg.Server.TimeoutSec)
	require.Equal(t, 500, cfg.Server.RetryDelayMs)
	require.Equal(t, 15, cfg.Inbox.PollIntervalSec)
	require.False(t, cfg.Inbox.Snapshot)
}

func TestLoadConfigEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600))
	t.Setenv("CAMPUS_INBOX_LOG_LEVEL", "warn")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	require.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadConfigFlagsOverrideDefaults(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("server.base_url", "", "")
	require.NoError(t, flags.Parse([]string{"--server.base_url=http://127.0.0.1:9999"}))

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), flags)
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:9999", cfg.Server.BaseURL)
}

func TestLoadConfigRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))

	_, err := LoadConfig(path, nil)
	require.Error(t, err)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultAppConfig()
	cfg.Server.BaseURL = "https://api.campus.test"
	cfg.Inbox.PollIntervalSec = 90

	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path, nil)
	require.NoError(t, err)
	require.Equal(t, "https://api.campus.test", loaded.Server.BaseURL)
	require.Equal(t, 90, loaded.Inbox.PollIntervalSec)
}
