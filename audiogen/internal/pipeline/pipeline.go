package pipeline

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wavealert360/wavealert360/pkg/githubfs"
)

// Default repository paths, matching the fleet repo layout.
const (
	DefaultSettingsPath = "device/settings.json"
	DefaultAudioDir     = "device/alert_audio"

	manifestName = ".audio_hashes.json"
)

// Synthesizer renders announcement text as MP3 bytes. Satisfied by
// *tts.Client.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice, style, rate string) ([]byte, error)
}

// Repo reads and commits files in the fleet repository. Satisfied by
// *githubfs.Client.
type Repo interface {
	Get(ctx context.Context, path string) (*githubfs.File, error)
	Put(ctx context.Context, path string, content []byte, message string) (string, error)
}

// Settings is the slice of the settings document the pipeline consumes.
type Settings struct {
	AlertTypes map[string]AlertType `json:"alert_types"`
	Azure      AzureSettings        `json:"azure"`
}

// AlertType carries one level's announcement text.
type AlertType struct {
	AudioText string `json:"audio_text"`
}

// AzureSettings selects per-level voices and speaking styles.
type AzureSettings struct {
	Voices map[string]string `json:"voices"`
	Styles map[string]string `json:"styles"`
}

// manifest records the text hashes the committed audio was generated from.
type manifest struct {
	NormalTextHash string `json:"normal_text_hash"`
	MediumTextHash string `json:"medium_text_hash"`
	HighTextHash   string `json:"high_text_hash"`
	LastUpdated    string `json:"last_updated"`
}

// levelSpec binds a settings alert type to its voice key and output file.
type levelSpec struct {
	alertType string
	voiceKey  string
	file      string
	stored    func(*manifest) *string
}

var levels = []levelSpec{
	{"NORMAL", "normal", "normal_alert.mp3", func(m *manifest) *string { return &m.NormalTextHash }},
	{"MEDIUM", "caution", "caution_alert.mp3", func(m *manifest) *string { return &m.MediumTextHash }},
	{"HIGH", "high_alert", "high_alert.mp3", func(m *manifest) *string { return &m.HighTextHash }},
}

// Result summarizes one pipeline run.
type Result struct {
	ChangesDetected bool     `json:"changes_detected"`
	FilesUpdated    []string `json:"files_updated"`
}

// Pipeline regenerates audio assets from settings changes.
type Pipeline struct {
	repo         Repo
	tts          Synthesizer
	settingsPath string
	audioDir     string
	logger       *slog.Logger

	now func() time.Time
}

// New builds a Pipeline. Empty paths select the defaults.
func New(repo Repo, synth Synthesizer, settingsPath, audioDir string, logger *slog.Logger) *Pipeline {
	if settingsPath == "" {
		settingsPath = DefaultSettingsPath
	}
	if audioDir == "" {
		audioDir = DefaultAudioDir
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		repo:         repo,
		tts:          synth,
		settingsPath: settingsPath,
		audioDir:     audioDir,
		logger:       logger,
		now:          time.Now,
	}
}

// RunOnce performs one check-and-regenerate cycle.
func (p *Pipeline) RunOnce(ctx context.Context) (*Result, error) {
	settings, err := p.fetchSettings(ctx)
	if err != nil {
		return nil, err
	}
	stored, err := p.fetchManifest(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{FilesUpdated: []string{}}
	next := *stored

	for _, lv := range levels {
		text := settings.AlertTypes[lv.alertType].AudioText
		if text == "" {
			continue
		}
		hash := textHash(text)
		if hash == *lv.stored(stored) {
			continue
		}
		result.ChangesDetected = true

		p.logger.Info("alert text changed, regenerating audio",
			"alert_type", lv.alertType, "file", lv.file)

		voice := settings.Azure.Voices[lv.voiceKey]
		if voice == "" {
			voice = settings.Azure.Voices["normal"]
		}
		style := settings.Azure.Styles[lv.voiceKey]

		audio, err := p.tts.Synthesize(ctx, text, voice, style, "")
		if err != nil {
			return result, fmt.Errorf("pipeline: synthesize %s: %w", lv.alertType, err)
		}

		path := p.audioDir + "/" + lv.file
		msg := fmt.Sprintf("Update %s audio - text hash: %.8s", lv.file, hash)
		if _, err := p.repo.Put(ctx, path, audio, msg); err != nil {
			return result, fmt.Errorf("pipeline: commit %s: %w", lv.file, err)
		}
		*lv.stored(&next) = hash
		result.FilesUpdated = append(result.FilesUpdated, lv.file)
		p.logger.Info("audio committed", "file", lv.file, "bytes", len(audio))
	}

	if result.ChangesDetected {
		if err := p.putManifest(ctx, &next); err != nil {
			return result, err
		}
	}
	return result, nil
}

// Run repeats RunOnce on interval until ctx is cancelled. Individual run
// failures are logged, not fatal: a flaky network tick must not stop the
// regeneration loop.
func (p *Pipeline) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if result, err := p.RunOnce(ctx); err != nil {
			p.logger.Error("pipeline run failed", "err", err)
		} else if result.ChangesDetected {
			p.logger.Info("pipeline run complete", "files_updated", result.FilesUpdated)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (p *Pipeline) fetchSettings(ctx context.Context) (*Settings, error) {
	file, err := p.repo.Get(ctx, p.settingsPath)
	if err != nil {
		return nil, fmt.Errorf("pipeline: fetch settings: %w", err)
	}
	var settings Settings
	if err := json.Unmarshal(file.Content, &settings); err != nil {
		return nil, fmt.Errorf("pipeline: parse settings: %w", err)
	}
	return &settings, nil
}

func (p *Pipeline) fetchManifest(ctx context.Context) (*manifest, error) {
	file, err := p.repo.Get(ctx, p.manifestPath())
	if errors.Is(err, githubfs.ErrNotFound) {
		// First run: nothing generated yet, every text counts as changed.
		return &manifest{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pipeline: fetch manifest: %w", err)
	}
	var m manifest
	if err := json.Unmarshal(file.Content, &m); err != nil {
		return nil, fmt.Errorf("pipeline: parse manifest: %w", err)
	}
	return &m, nil
}

func (p *Pipeline) putManifest(ctx context.Context, m *manifest) error {
	m.LastUpdated = p.now().UTC().Format(time.RFC3339)
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("pipeline: marshal manifest: %w", err)
	}
	if _, err := p.repo.Put(ctx, p.manifestPath(), data, "Update audio text hashes"); err != nil {
		return fmt.Errorf("pipeline: commit manifest: %w", err)
	}
	return nil
}

func (p *Pipeline) manifestPath() string {
	return p.audioDir + "/" + manifestName
}

func textHash(text string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(text)))
}
