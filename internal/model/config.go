package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// envPrefix is prepended to upper-cased config keys for environment
// overrides, e.g. CAMPUS_INBOX_SERVER_BASE_URL.
const envPrefix = "CAMPUS_INBOX"

// ServerConfig describes how to reach the campus platform backend.
type ServerConfig struct {
	// BaseURL is the root URL of the REST API.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec bounds a single HTTP request.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`

	// RetryDelayMs is the pause before the one retry of a request that
	// failed at the transport level.
	RetryDelayMs int `mapstructure:"retry_delay_ms" yaml:"retry_delay_ms"`
}

// InboxConfig holds inbox polling and caching settings.
type InboxConfig struct {
	PollIntervalSec int  `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
	Snapshot        bool `mapstructure:"snapshot" yaml:"snapshot"`

	// SnapshotPath is the SQLite file holding the last fetched inbox.
	SnapshotPath string `mapstructure:"snapshot_path" yaml:"snapshot_path"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme          string `mapstructure:"theme" yaml:"theme"`
	ToastTimeoutMs int    `mapstructure:"toast_timeout_ms" yaml:"toast_timeout_ms"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Inbox   InboxConfig   `mapstructure:"inbox" yaml:"inbox"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// RequestTimeout returns the per-request timeout as a duration.
func (c ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// RetryDelay returns the transport retry delay as a duration.
func (c ServerConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMs) * time.Millisecond
}

// PollInterval returns the inbox polling interval as a duration.
func (c InboxConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSec) * time.Second
}

// ToastTimeout returns the default toast display time as a duration.
func (c DisplayConfig) ToastTimeout() time.Duration {
	return time.Duration(c.ToastTimeoutMs) * time.Millisecond
}

// ConfigDir returns ~/.config/campus-inbox, falling back to the working
// directory when the home directory cannot be resolved.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "campus-inbox")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/campus-inbox/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			BaseURL:      "http://localhost:8080",
			TimeoutSec:   30,
			RetryDelayMs: 500,
		},
		Inbox: InboxConfig{
			PollIntervalSec: 60,
			Snapshot:        true,
			SnapshotPath:    filepath.Join(ConfigDir(), "inbox.db"),
		},
		Display: DisplayConfig{
			Theme:          "default",
			ToastTimeoutMs: 4000,
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(ConfigDir(), "campus-inbox.log"),
		},
	}
}

// setDefaults registers every default with v so that environment variables
// and flags can override keys that are absent from the file.
func setDefaults(v *viper.Viper) {
	d := defaultAppConfig()
	v.SetDefault("server.base_url", d.Server.BaseURL)
	v.SetDefault("server.timeout_sec", d.Server.TimeoutSec)
	v.SetDefault("server.retry_delay_ms", d.Server.RetryDelayMs)
	v.SetDefault("inbox.poll_interval_sec", d.Inbox.PollIntervalSec)
	v.SetDefault("inbox.snapshot", d.Inbox.Snapshot)
	v.SetDefault("inbox.snapshot_path", d.Inbox.SnapshotPath)
	v.SetDefault("display.theme", d.Display.Theme)
	v.SetDefault("display.toast_timeout_ms", d.Display.ToastTimeoutMs)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// A missing file is not an error; defaults, CAMPUS_INBOX_* environment
// variables and any bound flags still apply. flags may be nil.
func LoadConfig(path string, flags *pflag.FlagSet) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("binding flags: %w", err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.Server.BaseURL = strings.TrimRight(cfg.Server.BaseURL, "/")
	if cfg.Server.TimeoutSec <= 0 {
		cfg.Server.TimeoutSec = 30
	}
	if cfg.Server.RetryDelayMs < 0 {
		cfg.Server.RetryDelayMs = 500
	}
	if cfg.Inbox.PollIntervalSec <= 0 {
		cfg.Inbox.PollIntervalSec = 60
	}
	if cfg.Display.ToastTimeoutMs <= 0 {
		cfg.Display.ToastTimeoutMs = 4000
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("server", cfg.Server)
	v.Set("inbox", cfg.Inbox)
	v.Set("display", cfg.Display)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
