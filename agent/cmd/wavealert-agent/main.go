package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/wavealert360/wavealert360/agent/internal/audio"
	"github.com/wavealert360/wavealert360/agent/internal/config"
	"github.com/wavealert360/wavealert360/agent/internal/led"
	"github.com/wavealert360/wavealert360/agent/internal/poller"
	"github.com/wavealert360/wavealert360/pkg/nws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	consoleLED := flag.String("led", "", "led mode: file (default) or console for bench runs")
	noAudio := flag.Bool("no-audio", false, "disable audio announcements")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("wavealert-agent starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	deviceID := config.DeviceID()
	slog.Info("config loaded",
		"device_id", deviceID,
		"service", cfg.Agent.Service.BaseURL,
		"check_interval", cfg.Agent.CheckInterval,
		"location", cfg.Agent.Location.Name,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var ledCtl led.Controller
	if *consoleLED == "console" {
		ledCtl = led.NewConsoleController(logger)
	} else {
		ledCtl = led.NewFileController(cfg.Agent.LED.ControlFile)
	}

	var announcer poller.Announcer
	if !*noAudio {
		announcer = audio.New(
			cfg.Agent.Audio.Dir,
			cfg.Agent.Audio.Player,
			cfg.Agent.Audio.FallbackPlayers,
			cfg.Agent.Audio.DownloadTimeout,
			logger,
		)
	}

	fetcher := nws.New(nws.Config{
		BaseURL:   cfg.Agent.NWS.BaseURL,
		UserAgent: cfg.Agent.NWS.UserAgent,
		Timeout:   cfg.Agent.NWS.Timeout,
		Scenario:  cfg.Agent.NWS.Scenario,
	})

	p := poller.New(cfg, deviceID, ledCtl, announcer, fetcher, logger)

	// Watch config file for hot-reload; a reload swaps the whole config.
	go func() {
		if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
			p.UpdateConfig(updated)
			slog.Info("config hot-reloaded", "check_interval", updated.Agent.CheckInterval)
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	go p.Run(ctx)

	<-ctx.Done()
	slog.Info("wavealert-agent shutting down")
	if err := ledCtl.Off(); err != nil {
		slog.Warn("failed to turn led off", "err", err)
	}
}
