package tts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Vendor error classes.
var (
	ErrAuth  = errors.New("tts: authentication failed")
	ErrQuota = errors.New("tts: quota exceeded")
)

const (
	outputFormat   = "audio-16khz-128kbitrate-mono-mp3"
	defaultTimeout = 30 * time.Second
	userAgent      = "WaveAlert360-AudioGen"
)

// Config holds the Azure Speech connection settings.
type Config struct {
	// Region is the Azure region of the speech resource, e.g. "eastus".
	Region string

	// Key is the subscription key.
	Key string

	// TokenEndpoint and SynthesisEndpoint override the region-derived URLs.
	// Intended for tests.
	TokenEndpoint     string
	SynthesisEndpoint string

	// Timeout bounds each request (default 30s).
	Timeout time.Duration
}

// Client talks to the Azure Speech REST API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// New builds a Client. The subscription key is required.
func New(cfg Config) (*Client, error) {
	if cfg.Key == "" {
		return nil, fmt.Errorf("tts: subscription key is required")
	}
	if cfg.Region == "" && (cfg.TokenEndpoint == "" || cfg.SynthesisEndpoint == "") {
		return nil, fmt.Errorf("tts: region is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (c *Client) tokenURL() string {
	if c.cfg.TokenEndpoint != "" {
		return c.cfg.TokenEndpoint
	}
	return fmt.Sprintf("https://%s.api.cognitive.microsoft.com/sts/v1.0/issueToken", c.cfg.Region)
}

func (c *Client) synthesisURL() string {
	if c.cfg.SynthesisEndpoint != "" {
		return c.cfg.SynthesisEndpoint
	}
	return fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/v1", c.cfg.Region)
}

// Synthesize renders text as MP3 bytes using the given voice, speaking style,
// and prosody rate.
func (c *Client) Synthesize(ctx context.Context, text, voice, style, rate string) ([]byte, error) {
	token, err := c.issueToken(ctx)
	if err != nil {
		return nil, err
	}

	ssml := buildSSML(text, voice, style, rate)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.synthesisURL(), strings.NewReader(ssml))
	if err != nil {
		return nil, fmt.Errorf("tts: build synthesis request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", outputFormat)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts: synthesis request: %w", err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode, "synthesis"); err != nil {
		return nil, err
	}
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tts: read audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("tts: synthesis returned no audio")
	}
	return audio, nil
}

func (c *Client) issueToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL(), nil)
	if err != nil {
		return "", fmt.Errorf("tts: build token request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.Key)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("tts: token request: %w", err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode, "token"); err != nil {
		return "", err
	}
	token, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("tts: read token: %w", err)
	}
	return string(token), nil
}

func classifyStatus(code int, op string) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%s: %w (status %d)", op, ErrAuth, code)
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w (status %d)", op, ErrQuota, code)
	default:
		return fmt.Errorf("tts: %s failed: status %d", op, code)
	}
}

// buildSSML wraps text in the speak/voice/prosody/express-as envelope the
// synthesis endpoint expects.
func buildSSML(text, voice, style, rate string) string {
	if style == "" {
		style = "friendly"
	}
	if rate == "" {
		rate = "medium"
	}
	var b strings.Builder
	b.WriteString(`<speak version="1.0" xmlns="http://www.w3.org/2001/10/synthesis" xml:lang="en-US">`)
	fmt.Fprintf(&b, `<voice name=%q>`, voice)
	fmt.Fprintf(&b, `<prosody rate=%q>`, rate)
	fmt.Fprintf(&b, `<mstts:express-as style=%q xmlns:mstts="https://www.w3.org/2001/mstts">`, style)
	b.WriteString(escapeXML(text))
	b.WriteString(`</mstts:express-as></prosody></voice></speak>`)
	return b.String()
}

func escapeXML(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
	return r.Replace(s)
}
