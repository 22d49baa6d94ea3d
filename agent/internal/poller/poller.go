package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/wavealert360/wavealert360/agent/internal/config"
	"github.com/wavealert360/wavealert360/agent/internal/led"
	"github.com/wavealert360/wavealert360/pkg/hazard"
)

// AlertFetcher fetches active alerts from the upstream weather API.
type AlertFetcher interface {
	ActiveAlerts(ctx context.Context, lat, lon float64) ([]hazard.Alert, error)
	ActiveAlertsByZone(ctx context.Context, zone string) ([]hazard.Alert, error)
}

// Announcer plays the audio announcement for a level. nil disables audio.
type Announcer interface {
	PlayLevel(ctx context.Context, level hazard.Level, url string) error
}

// serviceResponse is the service's alert payload. Only the fields the
// appliance acts on are decoded.
type serviceResponse struct {
	AlertLevel string `json:"alert_level"`
	LEDColor   string `json:"led_color"`
	AudioURL   string `json:"audio_url"`
	DeviceMode string `json:"device_mode"`
	Source     string `json:"source"`
	Timestamp  string `json:"timestamp"`
}

// Poller resolves and actuates the appliance's alert level on an interval.
type Poller struct {
	deviceID string
	led      led.Controller
	audio    Announcer
	fetcher  AlertFetcher
	client   *http.Client
	logger   *slog.Logger

	mu  sync.Mutex
	cfg *config.Config

	lastLevel *hazard.Level
	now       func() time.Time
}

// New builds a Poller. audio may be nil to disable announcements.
func New(cfg *config.Config, deviceID string, ledCtl led.Controller, audio Announcer,
	fetcher AlertFetcher, logger *slog.Logger) *Poller {

	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		deviceID: deviceID,
		led:      ledCtl,
		audio:    audio,
		fetcher:  fetcher,
		client:   &http.Client{Timeout: cfg.Agent.Service.Timeout},
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// UpdateConfig swaps in a hot-reloaded configuration. The next cycle uses it.
func (p *Poller) UpdateConfig(cfg *config.Config) {
	p.mu.Lock()
	p.cfg = cfg
	p.client.Timeout = cfg.Agent.Service.Timeout
	p.mu.Unlock()
}

func (p *Poller) config() *config.Config {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg
}

// Run polls until ctx is cancelled. The first check happens immediately so a
// rebooted appliance shows a level within seconds, not one interval later.
func (p *Poller) Run(ctx context.Context) {
	p.Check(ctx)
	for {
		interval := p.config().Agent.CheckInterval
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
			p.Check(ctx)
		}
	}
}

// Check runs one resolve-and-actuate cycle.
func (p *Poller) Check(ctx context.Context) {
	cfg := p.config()

	level, audioURL, source, err := p.resolve(ctx, cfg)
	if err != nil {
		if p.lastLevel != nil {
			// Hold what the operator last saw rather than flapping.
			p.logger.Warn("all sources failed, holding last level",
				"level", p.lastLevel.DeviceCode(), "err", err)
			return
		}
		p.logger.Error("all sources failed with no prior level, showing CAUTION", "err", err)
		level, source = hazard.LevelMedium, "failsafe"
	}

	p.actuate(ctx, level, audioURL, source)
}

// resolve walks the service → cache → direct-NWS chain.
func (p *Poller) resolve(ctx context.Context, cfg *config.Config) (hazard.Level, string, string, error) {
	var svcErr error
	if cfg.Agent.Service.BaseURL != "" {
		resp, raw, err := p.fetchService(ctx, cfg)
		if err == nil {
			p.saveCache(cfg.Agent.CacheFile, raw)
			level, perr := hazard.ParseServiceCode(resp.AlertLevel)
			if perr == nil {
				return level, resp.AudioURL, "service", nil
			}
			err = perr
		}
		svcErr = err
		p.logger.Warn("service check failed, trying cache", "err", err)

		if resp, err := p.loadCache(cfg.Agent.CacheFile); err == nil {
			if level, perr := hazard.ParseServiceCode(resp.AlertLevel); perr == nil {
				return level, resp.AudioURL, "cache", nil
			}
		}
	}

	// Direct upstream evaluation with the local keyword mapping.
	level, err := p.fetchDirect(ctx, cfg)
	if err != nil {
		if svcErr != nil {
			err = fmt.Errorf("service: %w; nws: %v", svcErr, err)
		}
		return hazard.LevelNormal, "", "", err
	}
	return level, "", "nws", nil
}

func (p *Poller) fetchService(ctx context.Context, cfg *config.Config) (*serviceResponse, []byte, error) {
	url := fmt.Sprintf("%s/api/v1/alert/%s", cfg.Agent.Service.BaseURL, p.deviceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("poller: build request: %w", err)
	}
	if key := cfg.Agent.Service.APIKey(); key != "" {
		req.Header.Set("x-api-key", key)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("poller: service request: %w", err)
	}
	defer resp.Body.Close()
	// A 404 still carries a CAUTION payload for unregistered devices.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return nil, nil, fmt.Errorf("poller: service status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("poller: read response: %w", err)
	}
	var out serviceResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, nil, fmt.Errorf("poller: decode response: %w", err)
	}
	return &out, raw, nil
}

func (p *Poller) fetchDirect(ctx context.Context, cfg *config.Config) (hazard.Level, error) {
	var (
		alerts []hazard.Alert
		err    error
	)
	if zone := cfg.Agent.Location.Zone; zone != "" {
		alerts, err = p.fetcher.ActiveAlertsByZone(ctx, zone)
	} else {
		alerts, err = p.fetcher.ActiveAlerts(ctx, cfg.Agent.Location.Lat, cfg.Agent.Location.Lon)
	}
	if err != nil {
		return hazard.LevelNormal, err
	}
	return hazard.Evaluate(alerts, cfg.Agent.NWS.Hazard, p.now()), nil
}

func (p *Poller) saveCache(path string, raw []byte) {
	if path == "" {
		return
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		p.logger.Warn("failed to persist alert cache", "path", path, "err", err)
	}
}

func (p *Poller) loadCache(path string) (*serviceResponse, error) {
	if path == "" {
		return nil, fmt.Errorf("poller: no cache file configured")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out serviceResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("poller: decode cache: %w", err)
	}
	return &out, nil
}

// actuate applies level to the LED and, on transitions, plays the
// announcement.
func (p *Poller) actuate(ctx context.Context, level hazard.Level, audioURL, source string) {
	if err := p.led.SetLevel(level); err != nil {
		p.logger.Error("led update failed", "err", err)
	}

	if p.lastLevel != nil && *p.lastLevel == level {
		return
	}
	prev := "none"
	if p.lastLevel != nil {
		prev = p.lastLevel.DeviceCode()
	}
	p.logger.Info("alert level changed",
		"from", prev, "to", level.DeviceCode(), "source", source)
	p.lastLevel = &level

	if p.audio != nil {
		if err := p.audio.PlayLevel(ctx, level, audioURL); err != nil {
			p.logger.Warn("audio announcement failed", "err", err)
		}
	}
}
