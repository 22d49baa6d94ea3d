// Package audio plays per-level alert audio on the appliance.
//
// Assets referenced by URL are downloaded once into the audio directory under
// a hash of the URL, so a changed URL is a new file and an unchanged one is a
// cache hit. Playback shells out to the configured player command, walking a
// fallback chain until one starts; the previous player process is cancelled
// first so announcements never overlap.
package audio

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/wavealert360/wavealert360/pkg/hazard"
)

// Local asset names, one per level, matching what the generation pipeline
// commits.
var levelAssets = map[hazard.Level]string{
	hazard.LevelNormal: "normal_alert.mp3",
	hazard.LevelMedium: "caution_alert.mp3",
	hazard.LevelHigh:   "high_alert.mp3",
}

// Player downloads and plays alert audio.
type Player struct {
	dir             string
	commands        []string
	downloadTimeout time.Duration
	client          *http.Client
	logger          *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New builds a Player. commands is the player command followed by its
// fallbacks, each a shell-less command line (split on whitespace).
func New(dir, player string, fallbacks []string, downloadTimeout time.Duration, logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.Default()
	}
	commands := append([]string{player}, fallbacks...)
	return &Player{
		dir:             dir,
		commands:        commands,
		downloadTimeout: downloadTimeout,
		client:          &http.Client{Timeout: downloadTimeout},
		logger:          logger,
	}
}

// PlayLevel plays the announcement for level. A URL, when given, is fetched
// into the cache first; if the fetch fails the local per-level asset is used
// instead. Playback starts asynchronously.
func (p *Player) PlayLevel(ctx context.Context, level hazard.Level, url string) error {
	path := ""
	if url != "" {
		fetched, err := p.Fetch(ctx, url)
		if err != nil {
			p.logger.Warn("audio fetch failed, using local asset", "url", url, "err", err)
		} else {
			path = fetched
		}
	}
	if path == "" {
		path = filepath.Join(p.dir, levelAssets[level])
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("audio: no asset for %s: %w", level.DeviceCode(), err)
	}
	return p.Play(path)
}

// Fetch downloads url into the audio directory, keyed by a hash of the URL.
// Already-downloaded assets are returned without a network round trip.
func (p *Player) Fetch(ctx context.Context, url string) (string, error) {
	dest := filepath.Join(p.dir, cacheName(url))
	if _, err := os.Stat(dest); err == nil {
		return dest, nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("audio: build request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("audio: download %q: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("audio: download %q: status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("audio: read %q: %w", url, err)
	}
	// The asset repo holds '#'-prefixed text placeholders until the
	// generation pipeline commits real audio. Never cache or play those.
	if len(data) == 0 || data[0] == '#' {
		return "", fmt.Errorf("audio: %q is a placeholder, not audio", url)
	}

	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return "", fmt.Errorf("audio: create dir %q: %w", p.dir, err)
	}
	tmp := dest + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("audio: write %q: %w", tmp, err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		return "", fmt.Errorf("audio: rename %q: %w", dest, err)
	}
	return dest, nil
}

// Play starts playback of the file at path, cancelling any prior player
// process. Commands from the fallback chain are tried until one starts.
func (p *Player) Play(path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}

	for _, cmdline := range p.commands {
		fields := strings.Fields(cmdline)
		if len(fields) == 0 {
			continue
		}
		ctx, cancel := context.WithCancel(context.Background())
		cmd := exec.CommandContext(ctx, fields[0], append(fields[1:], path)...)
		if err := cmd.Start(); err != nil {
			cancel()
			p.logger.Warn("audio player failed to start, trying next", "cmd", fields[0], "err", err)
			continue
		}
		p.cancel = cancel
		go func() {
			cmd.Wait() //nolint:errcheck
			cancel()
		}()
		return nil
	}
	return fmt.Errorf("audio: no player could start for %q", path)
}

// Stop cancels any playing audio.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

func cacheName(url string) string {
	sum := md5.Sum([]byte(url))
	ext := filepath.Ext(url)
	if ext == "" || len(ext) > 5 {
		ext = ".mp3"
	}
	return fmt.Sprintf("%x%s", sum, ext)
}
