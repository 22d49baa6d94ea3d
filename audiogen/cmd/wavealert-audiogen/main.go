package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wavealert360/wavealert360/audiogen/internal/pipeline"
	"github.com/wavealert360/wavealert360/audiogen/internal/tts"
	"github.com/wavealert360/wavealert360/pkg/githubfs"
)

func main() {
	repoOwner := flag.String("repo-owner", "wavealert360", "fleet repository owner")
	repoName := flag.String("repo-name", "fleet", "fleet repository name")
	settingsPath := flag.String("settings", pipeline.DefaultSettingsPath, "settings document path in the repo")
	audioDir := flag.String("audio-dir", pipeline.DefaultAudioDir, "audio asset directory in the repo")
	interval := flag.Duration("interval", 3*time.Minute, "check interval when not running once")
	once := flag.Bool("once", false, "run a single check-and-regenerate cycle and exit")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("wavealert-audiogen starting",
		"repo", *repoOwner+"/"+*repoName, "once", *once)

	repo, err := githubfs.New(githubfs.Config{
		Owner: *repoOwner,
		Repo:  *repoName,
		Token: os.Getenv("GITHUB_TOKEN"),
	})
	if err != nil {
		slog.Error("failed to build repo client", "err", err)
		os.Exit(1)
	}

	synth, err := tts.New(tts.Config{
		Key:    os.Getenv("AZURE_SPEECH_KEY"),
		Region: speechRegion(),
	})
	if err != nil {
		slog.Error("failed to build speech client", "err", err)
		os.Exit(1)
	}

	p := pipeline.New(repo, synth, *settingsPath, *audioDir, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *once {
		result, err := p.RunOnce(ctx)
		if err != nil {
			slog.Error("run failed", "err", err)
			os.Exit(1)
		}
		slog.Info("run complete",
			"changes_detected", result.ChangesDetected,
			"files_updated", result.FilesUpdated)
		return
	}

	p.Run(ctx, *interval)
	slog.Info("wavealert-audiogen shutting down")
}

func speechRegion() string {
	if region := os.Getenv("AZURE_SPEECH_REGION"); region != "" {
		return region
	}
	return "eastus"
}
