package nws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/wavealert360/wavealert360/pkg/hazard"
)

const (
	// DefaultBaseURL is the production NWS API endpoint.
	DefaultBaseURL = "https://api.weather.gov"

	// DefaultUserAgent identifies this system to the NWS API, which requires
	// a contactable User-Agent.
	DefaultUserAgent = "WaveAlert360/1.0 (github.com/wavealert360/wavealert360)"

	defaultTimeout = 10 * time.Second
)

// Config holds the client settings. The zero value selects the production
// API with default timeout and User-Agent.
type Config struct {
	// BaseURL overrides the API root, e.g. to target the mock scenario API.
	BaseURL string

	// UserAgent overrides the User-Agent header.
	UserAgent string

	// Timeout bounds each request; default 10s.
	Timeout time.Duration

	// Scenario, when non-empty, is appended as a query parameter. Only the
	// mock API understands it; the production API ignores unknown params.
	Scenario string
}

// Client is an NWS active-alerts API client. Safe for concurrent use.
type Client struct {
	baseURL    string
	userAgent  string
	scenario   string
	httpClient *http.Client
}

// New creates a Client from cfg, filling unset fields with defaults.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		userAgent:  cfg.UserAgent,
		scenario:   cfg.Scenario,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// ActiveAlerts returns the active alerts covering the given point.
func (c *Client) ActiveAlerts(ctx context.Context, lat, lon float64) ([]hazard.Alert, error) {
	q := url.Values{}
	q.Set("point", fmt.Sprintf("%.4f,%.4f", lat, lon))
	return c.fetch(ctx, q)
}

// ActiveAlertsByZone returns the active alerts for an NWS zone, e.g. "CAZ529".
func (c *Client) ActiveAlertsByZone(ctx context.Context, zone string) ([]hazard.Alert, error) {
	q := url.Values{}
	q.Set("zone", zone)
	return c.fetch(ctx, q)
}

func (c *Client) fetch(ctx context.Context, q url.Values) ([]hazard.Alert, error) {
	if c.scenario != "" {
		q.Set("scenario", c.scenario)
	}
	u := c.baseURL + "/alerts/active?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("nws: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nws: fetch alerts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nws: api returned status %d", resp.StatusCode)
	}

	var fc featureCollection
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return nil, fmt.Errorf("nws: decode response: %w", err)
	}

	alerts := make([]hazard.Alert, 0, len(fc.Features))
	for _, f := range fc.Features {
		p := f.Properties
		alerts = append(alerts, hazard.Alert{
			Event:       p.Event,
			Onset:       p.Onset,
			Effective:   p.Effective,
			Expires:     p.Expires,
			Headline:    p.Headline,
			Description: p.Description,
			Instruction: p.Instruction,
		})
	}
	return alerts, nil
}

// featureCollection mirrors the GeoJSON envelope of the alerts endpoint.
// Timestamps stay strings; the hazard package owns their interpretation.
type featureCollection struct {
	Features []struct {
		ID         string `json:"id"`
		Properties struct {
			Event       string `json:"event"`
			Headline    string `json:"headline"`
			Description string `json:"description"`
			Instruction string `json:"instruction"`
			Onset       string `json:"onset"`
			Effective   string `json:"effective"`
			Expires     string `json:"expires"`
			Severity    string `json:"severity"`
			Urgency     string `json:"urgency"`
			Certainty   string `json:"certainty"`
			AreaDesc    string `json:"areaDesc"`
		} `json:"properties"`
	} `json:"features"`
}
