package githubfs

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrNotFound is returned by Get when the file does not exist in the repo.
var ErrNotFound = errors.New("githubfs: file not found")

const (
	defaultBaseURL   = "https://api.github.com"
	defaultUserAgent = "WaveAlert360/1.0 (github.com/wavealert360/wavealert360)"
	defaultTimeout   = 15 * time.Second
)

// Config holds client settings. Owner and Repo are required; Token may be
// empty for public reads but is required for writes.
type Config struct {
	Owner     string
	Repo      string
	Token     string
	BaseURL   string // override for tests
	UserAgent string
	Timeout   time.Duration
}

// Client talks to the contents API of one repository. Safe for concurrent use.
type Client struct {
	baseURL    string
	owner      string
	repo       string
	token      string
	userAgent  string
	httpClient *http.Client
}

// File is one fetched repository file.
type File struct {
	Content []byte
	SHA     string
}

// New creates a Client from cfg, filling unset fields with defaults.
func New(cfg Config) (*Client, error) {
	if cfg.Owner == "" || cfg.Repo == "" {
		return nil, fmt.Errorf("githubfs: owner and repo are required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		owner:      cfg.Owner,
		repo:       cfg.Repo,
		token:      cfg.Token,
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Get fetches a file at path on the default branch.
func (c *Client) Get(ctx context.Context, path string) (*File, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("githubfs: get %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("githubfs: get %s: %w", path, ErrNotFound)
	default:
		return nil, fmt.Errorf("githubfs: get %s: status %d", path, resp.StatusCode)
	}

	var body struct {
		Content string `json:"content"`
		SHA     string `json:"sha"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("githubfs: get %s: decode: %w", path, err)
	}

	raw, err := base64.StdEncoding.DecodeString(removeNewlines(body.Content))
	if err != nil {
		return nil, fmt.Errorf("githubfs: get %s: decode content: %w", path, err)
	}
	return &File{Content: raw, SHA: body.SHA}, nil
}

// Put creates or updates the file at path on the main branch and returns the
// commit sha. An existing file is looked up first so the write carries its
// blob sha.
func (c *Client) Put(ctx context.Context, path string, content []byte, message string) (string, error) {
	payload := map[string]string{
		"message": message,
		"content": base64.StdEncoding.EncodeToString(content),
		"branch":  "main",
	}
	if existing, err := c.Get(ctx, path); err == nil {
		payload["sha"] = existing.SHA
	} else if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("githubfs: put %s: encode: %w", path, err)
	}

	req, err := c.newRequest(ctx, http.MethodPut, path, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("githubfs: put %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("githubfs: put %s: status %d", path, resp.StatusCode)
	}

	var result struct {
		Commit struct {
			SHA string `json:"sha"`
		} `json:"commit"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("githubfs: put %s: decode: %w", path, err)
	}
	return result.Commit.SHA, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body *bytes.Reader) (*http.Request, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.baseURL, c.owner, c.repo, path)

	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, u, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, u, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("githubfs: build request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}
	return req, nil
}

// removeNewlines strips the line wrapping GitHub inserts into base64 bodies.
func removeNewlines(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' || s[i] == '\r' {
			continue
		}
		out = append(out, s[i])
	}
	return string(out)
}
