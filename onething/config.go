package onething

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/onething-labs/onething-go/core"
)

// Defaults applied by Config.withDefaults.
const (
	DefaultBaseURL      = "https://api-model.onethingai.com/v2"
	DefaultTimeout      = 60 * time.Second
	DefaultMaxRetries   = 3
	DefaultPollInterval = 2 * time.Second

	defaultUserAgent = "onething-go/1.0.0"
)

// Environment variables read by NewFromEnv and LoadConfig.
const (
	EnvAPIKey  = "ONETHING_API_KEY"
	EnvBaseURL = "ONETHING_BASE_URL"
)

// Config holds the client configuration. Zero values take the documented
// defaults; only APIKey is required.
type Config struct {
	// APIKey authenticates every request (required).
	APIKey core.Secret

	// BaseURL is the API endpoint. Defaults to DefaultBaseURL.
	BaseURL string

	// Timeout bounds each HTTP attempt. Defaults to DefaultTimeout.
	// Ignored when HTTPClient is set.
	Timeout time.Duration

	// MaxRetries is the number of additional attempts after the first
	// (so MaxRetries+1 total). Zero means DefaultMaxRetries; a negative
	// value disables retries.
	MaxRetries int

	// PollInterval is the default wait between job status fetches.
	// Defaults to DefaultPollInterval.
	PollInterval time.Duration

	// Headers are extra headers sent with every request.
	Headers map[string]string

	// HTTPClient overrides the HTTP client used for all requests.
	HTTPClient *http.Client

	// UserAgent overrides the User-Agent header.
	UserAgent string

	// Telemetry receives request and polling lifecycle events.
	// Defaults to core.NoopTelemetryHook.
	Telemetry core.TelemetryHook
}

// withDefaults returns a copy of the config with zero values replaced by
// the documented defaults.
func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	} else if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.Telemetry == nil {
		c.Telemetry = core.NoopTelemetryHook{}
	}
	return c
}

// FileConfig is the on-disk configuration shape. API keys stay out of
// config files: api_key_env names the environment variable holding the key.
type FileConfig struct {
	APIKeyEnv           string            `yaml:"api_key_env,omitempty"`
	BaseURL             string            `yaml:"base_url,omitempty"`
	TimeoutSeconds      int               `yaml:"timeout_seconds,omitempty"`
	MaxRetries          int               `yaml:"max_retries,omitempty"`
	PollIntervalSeconds int               `yaml:"poll_interval_seconds,omitempty"`
	Headers             map[string]string `yaml:"headers,omitempty"`
}

// LoadConfig reads a YAML configuration file and resolves the API key from
// the environment. api_key_env defaults to ONETHING_API_KEY.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	keyEnv := fc.APIKeyEnv
	if keyEnv == "" {
		keyEnv = EnvAPIKey
	}

	return Config{
		APIKey:       core.NewSecret(os.Getenv(keyEnv)),
		BaseURL:      fc.BaseURL,
		Timeout:      time.Duration(fc.TimeoutSeconds) * time.Second,
		MaxRetries:   fc.MaxRetries,
		PollInterval: time.Duration(fc.PollIntervalSeconds) * time.Second,
		Headers:      fc.Headers,
	}, nil
}
