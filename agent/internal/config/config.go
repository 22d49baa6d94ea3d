package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wavealert360/wavealert360/pkg/hazard"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultCheckInterval   = 60 * time.Second
	DefaultServiceTimeout  = 10 * time.Second
	DefaultNWSTimeout      = 10 * time.Second
	DefaultDownloadTimeout = 30 * time.Second
	DefaultAudioDir        = "sounds"
	DefaultCacheFile       = "last_alert.json"
	DefaultLEDControlFile  = "/tmp/led_control"
)

// Config holds the agent-side configuration parsed from the `agent:` section
// of config.yaml.
type Config struct {
	Agent AgentConfig `yaml:"agent"`
}

// AgentConfig holds all appliance settings.
type AgentConfig struct {
	// Service configures the cloud alert service.
	Service ServiceConfig `yaml:"service"`

	// CheckInterval controls how often the alert level is re-resolved.
	CheckInterval time.Duration `yaml:"check_interval"`

	// Location is where this appliance is installed. Used when the agent
	// has to query the upstream weather API directly.
	Location LocationConfig `yaml:"location"`

	// NWS configures the direct upstream fallback path.
	NWS NWSConfig `yaml:"nws"`

	// Audio configures local alert audio playback.
	Audio AudioConfig `yaml:"audio"`

	// LED configures the indicator light.
	LED LEDConfig `yaml:"led"`

	// CacheFile is where the last successful alert response is persisted.
	CacheFile string `yaml:"cache_file"`
}

// ServiceConfig points at the cloud alert service.
type ServiceConfig struct {
	// BaseURL is the service root, e.g. "https://alerts.example.com".
	// Empty disables the service path — the agent goes straight to NWS.
	BaseURL string `yaml:"base_url"`

	// Timeout bounds each service request (default 10s).
	Timeout time.Duration `yaml:"timeout"`

	// APIKeyEnv names the environment variable holding the service API key.
	APIKeyEnv string `yaml:"api_key_env"`
}

// APIKey returns the service API key resolved from the environment.
func (s ServiceConfig) APIKey() string {
	if s.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(s.APIKeyEnv)
}

// LocationConfig is the appliance's installed location.
type LocationConfig struct {
	Lat  float64 `yaml:"lat"`
	Lon  float64 `yaml:"lon"`
	Name string  `yaml:"name"`

	// Zone is the forecast zone, preferred over lat/lon when set.
	Zone string `yaml:"zone"`
}

// NWSConfig tunes the direct upstream client and the local evaluator.
type NWSConfig struct {
	// BaseURL overrides the API root; empty selects api.weather.gov.
	BaseURL string `yaml:"base_url"`

	// UserAgent overrides the User-Agent header sent to the API.
	UserAgent string `yaml:"user_agent"`

	// Timeout bounds each upstream request (default 10s).
	Timeout time.Duration `yaml:"timeout"`

	// Scenario, when set, is forwarded to a mock upstream so bench setups
	// can force a canned alert batch.
	Scenario string `yaml:"scenario"`

	// Hazard is the keyword-to-severity mapping used when the agent
	// evaluates alerts locally.
	Hazard hazard.Config `yaml:"hazard"`
}

// AudioConfig configures local playback of alert audio.
type AudioConfig struct {
	// Dir is where downloaded audio assets are cached.
	Dir string `yaml:"dir"`

	// Player is the command used to play audio files.
	Player string `yaml:"player"`

	// FallbackPlayers are tried in order when Player fails to start.
	FallbackPlayers []string `yaml:"fallback_players"`

	// DownloadTimeout bounds one audio asset download (default 30s).
	DownloadTimeout time.Duration `yaml:"download_timeout"`
}

// LEDConfig configures the indicator light.
type LEDConfig struct {
	// ControlFile is the path the failsafe LED manager watches for
	// PATTERN: commands. Empty selects /tmp/led_control.
	ControlFile string `yaml:"control_file"`
}

// Load reads and parses the config file at path. Missing fields are filled
// with defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("agent config: read %q: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("agent config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("agent config: %w", err)
	}
	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Agent: AgentConfig{
			Service: ServiceConfig{
				Timeout: DefaultServiceTimeout,
			},
			CheckInterval: DefaultCheckInterval,
			NWS: NWSConfig{
				Timeout: DefaultNWSTimeout,
				Hazard:  hazard.DefaultConfig(),
			},
			Audio: AudioConfig{
				Dir:             DefaultAudioDir,
				Player:          "mpg123",
				FallbackPlayers: []string{"ffplay -nodisp -autoexit", "cvlc --play-and-exit"},
				DownloadTimeout: DefaultDownloadTimeout,
			},
			LED: LEDConfig{
				ControlFile: DefaultLEDControlFile,
			},
			CacheFile: DefaultCacheFile,
		},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	a := cfg.Agent
	if a.CheckInterval <= 0 {
		return fmt.Errorf("agent.check_interval must be positive")
	}
	if a.Service.Timeout <= 0 {
		return fmt.Errorf("agent.service.timeout must be positive")
	}
	if a.NWS.Timeout <= 0 {
		return fmt.Errorf("agent.nws.timeout must be positive")
	}
	if a.Audio.DownloadTimeout <= 0 {
		return fmt.Errorf("agent.audio.download_timeout must be positive")
	}
	// The keyword mapping is only consulted on the direct-NWS path, but a
	// malformed one should still fail at startup, not mid-outage.
	if err := a.NWS.Hazard.Validate(); err != nil {
		return err
	}
	return nil
}
