package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// FileEnv names the variable pointing at an optional config file.
const FileEnv = "DBX_CONFIG"

// Config holds all application configuration.
type Config struct {
	Shell   ShellConfig   `yaml:"shell" toml:"shell"`
	Dropbox DropboxConfig `yaml:"dropbox" toml:"dropbox"`
	HTTP    HTTPConfig    `yaml:"http" toml:"http"`
	Logging LogConfig     `yaml:"logging" toml:"logging"`
	Metrics MetricsConfig `yaml:"metrics" toml:"metrics"`
}

// ShellConfig pre-seeds the interactive session.
type ShellConfig struct {
	AppName          string `envconfig:"DBX_APP_NAME" yaml:"app_name" toml:"app_name"`
	AccessToken      string `envconfig:"DBX_ACCESS_TOKEN" yaml:"access_token" toml:"access_token"`
	TranscriptPrefix string `envconfig:"DBX_TRANSCRIPT_PREFIX" yaml:"transcript_prefix" toml:"transcript_prefix"`
}

// DropboxConfig holds the API hosts.
type DropboxConfig struct {
	APIURL     string `envconfig:"DBX_API_URL" yaml:"api_url" toml:"api_url"`
	ContentURL string `envconfig:"DBX_CONTENT_URL" yaml:"content_url" toml:"content_url"`
}

// HTTPConfig tunes the remote client.
type HTTPConfig struct {
	Timeout      Duration `envconfig:"DBX_HTTP_TIMEOUT" yaml:"timeout" toml:"timeout"`
	Retries      int      `envconfig:"DBX_HTTP_RETRIES" yaml:"retries" toml:"retries"`
	RetryWait    Duration `envconfig:"DBX_HTTP_RETRY_WAIT" yaml:"retry_wait" toml:"retry_wait"`
	RetryMaxWait Duration `envconfig:"DBX_HTTP_RETRY_MAX_WAIT" yaml:"retry_max_wait" toml:"retry_max_wait"`
	// RequestsPerSecond of 0 disables client-side rate limiting.
	RequestsPerSecond float64 `envconfig:"DBX_HTTP_RPS" yaml:"rps" toml:"rps"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" yaml:"level" toml:"level"`
	Development bool   `envconfig:"LOG_DEV" yaml:"development" toml:"development"`
	Output      string `envconfig:"LOG_OUTPUT" yaml:"output" toml:"output"`
}

// MetricsConfig enables the metrics endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `envconfig:"DBX_METRICS_ADDR" yaml:"addr" toml:"addr"`
}

// Duration is a time.Duration written as "30s" in env vars and files.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Load builds configuration from defaults, then the file named by DBX_CONFIG
// (if any), then environment variables.
func Load() (*Config, error) {
	cfg := Default()
	if path := os.Getenv(FileEnv); path != "" {
		if err := cfg.merge(path); err != nil {
			return nil, err
		}
	}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile decodes a YAML or TOML file over the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.merge(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Shell: ShellConfig{
			TranscriptPrefix: "dbx_shell_transcript",
		},
		Dropbox: DropboxConfig{
			APIURL:     "https://api.dropboxapi.com/2",
			ContentURL: "https://content.dropboxapi.com/2",
		},
		HTTP: HTTPConfig{
			Timeout:      Duration{30 * time.Second},
			Retries:      3,
			RetryWait:    Duration{500 * time.Millisecond},
			RetryMaxWait: Duration{10 * time.Second},
		},
		Logging: LogConfig{
			Level:  "warn",
			Output: "stderr",
		},
	}
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Dropbox.APIURL == "" || c.Dropbox.ContentURL == "" {
		errs = append(errs, errors.New("dropbox api and content urls are required"))
	}
	if c.HTTP.Retries < 0 {
		errs = append(errs, fmt.Errorf("http retries must be >= 0, got %d", c.HTTP.Retries))
	}
	if c.HTTP.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("http rps must be >= 0, got %v", c.HTTP.RequestsPerSecond))
	}
	if c.Shell.TranscriptPrefix == "" {
		errs = append(errs, errors.New("transcript prefix must not be empty"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func (c *Config) merge(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	case ".toml":
		err = toml.Unmarshal(data, c)
	default:
		return fmt.Errorf("unsupported config file type %q", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}
