package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wavealert360/wavealert360/pkg/hazard"
)

// Default values for the server configuration.
const (
	DefaultHTTPPort          = 8080
	DefaultRegistryTTL       = 15 * time.Second
	DefaultNWSTimeout        = 10 * time.Second
	DefaultHistoryRetention  = 7 * 24 * time.Hour
	DefaultBroadcastInterval = 5 * time.Second
)

// Config holds the server-side configuration parsed from the `server:`
// section of config.yaml.
type Config struct {
	Server ServerConfig `yaml:"server"`
}

// ServerConfig holds all server-side settings.
type ServerConfig struct {
	// HTTPPort is the port the REST API, WebSocket hub, and metrics
	// endpoint listen on (default 8080).
	HTTPPort int `yaml:"http_port"`

	// Auth configures authentication for the mutating endpoints.
	Auth AuthConfig `yaml:"auth"`

	// Registry configures the GitHub-backed device registry.
	Registry RegistryConfig `yaml:"registry"`

	// Hazard is the event-keyword-to-severity mapping used for LIVE devices.
	Hazard hazard.Config `yaml:"hazard"`

	// NWS configures the upstream alerts API client.
	NWS NWSConfig `yaml:"nws"`

	// History configures the SQLite alert-level transition log.
	History HistoryConfig `yaml:"history"`

	// Broadcast controls the WebSocket fleet snapshot cadence.
	Broadcast BroadcastConfig `yaml:"broadcast"`
}

// AuthConfig controls API-key authentication on mutating routes.
type AuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// KeyEnv is the name of the environment variable that holds the
	// expected API key. Used when Mode == "apikey".
	KeyEnv string `yaml:"key_env"`

	// Header is the HTTP header the key arrives in. Default "x-api-key".
	Header string `yaml:"header"`
}

// Key returns the expected API key resolved from the environment.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// EffectiveHeader returns the configured header name, or "x-api-key".
func (a AuthConfig) EffectiveHeader() string {
	if a.Header != "" {
		return a.Header
	}
	return "x-api-key"
}

// RegistryConfig locates the device registry document and tunes its cache.
type RegistryConfig struct {
	// RepoOwner/RepoName/DocumentPath identify the registry file, e.g.
	// wavealert360/fleet devices.json.
	RepoOwner    string `yaml:"repo_owner"`
	RepoName     string `yaml:"repo_name"`
	DocumentPath string `yaml:"document_path"`

	// TokenEnv names the environment variable holding the GitHub token.
	// Empty is fine for a public registry repo.
	TokenEnv string `yaml:"token_env"`

	// TTL is the cache freshness window (default 15s). On refresh failure
	// the stale value keeps being served.
	TTL time.Duration `yaml:"ttl"`

	// FallbackPath is an optional local registry document used when the
	// remote fetch fails and no cached copy exists yet.
	FallbackPath string `yaml:"fallback_path"`
}

// Token returns the GitHub token resolved from the environment.
func (r RegistryConfig) Token() string {
	if r.TokenEnv == "" {
		return ""
	}
	return os.Getenv(r.TokenEnv)
}

// NWSConfig tunes the upstream alerts client.
type NWSConfig struct {
	// BaseURL overrides the API root; empty selects api.weather.gov.
	BaseURL string `yaml:"base_url"`

	// UserAgent overrides the User-Agent header sent to the API.
	UserAgent string `yaml:"user_agent"`

	// Timeout bounds each upstream request (default 10s).
	Timeout time.Duration `yaml:"timeout"`
}

// HistoryConfig configures the alert-level transition log.
type HistoryConfig struct {
	// Path is the SQLite database file. Empty disables the history store.
	Path string `yaml:"path"`

	// Retention is how long transitions are kept (default 168h).
	Retention time.Duration `yaml:"retention"`
}

// BroadcastConfig controls the WebSocket hub.
type BroadcastConfig struct {
	// Interval between fleet snapshot broadcasts (default 5s).
	Interval time.Duration `yaml:"interval"`
}

// Load reads and parses the config file at path. Missing fields are filled
// with defaults before validation. A malformed hazard keyword mapping is an
// error here — startup is the only acceptable place for it to fail.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("server config: read %q: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("server config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("server config: %w", err)
	}
	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort: DefaultHTTPPort,
			Registry: RegistryConfig{
				DocumentPath: "devices.json",
				TTL:          DefaultRegistryTTL,
			},
			NWS: NWSConfig{
				Timeout: DefaultNWSTimeout,
			},
			History: HistoryConfig{
				Retention: DefaultHistoryRetention,
			},
			Broadcast: BroadcastConfig{
				Interval: DefaultBroadcastInterval,
			},
		},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	s := cfg.Server
	if s.HTTPPort <= 0 || s.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", s.HTTPPort)
	}
	switch s.Auth.Mode {
	case "apikey", "none", "":
	default:
		return fmt.Errorf("server.auth.mode %q unknown: want apikey|none", s.Auth.Mode)
	}
	if s.Registry.RepoOwner == "" || s.Registry.RepoName == "" {
		return fmt.Errorf("server.registry.repo_owner and repo_name are required")
	}
	if s.Registry.TTL <= 0 {
		return fmt.Errorf("server.registry.ttl must be positive")
	}
	if err := s.Hazard.Validate(); err != nil {
		return err
	}
	if s.NWS.Timeout <= 0 {
		return fmt.Errorf("server.nws.timeout must be positive")
	}
	if s.History.Retention < 0 {
		return fmt.Errorf("server.history.retention must not be negative")
	}
	if s.Broadcast.Interval <= 0 {
		return fmt.Errorf("server.broadcast.interval must be positive")
	}
	return nil
}
