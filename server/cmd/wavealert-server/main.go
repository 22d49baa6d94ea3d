package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wavealert360/wavealert360/pkg/githubfs"
	"github.com/wavealert360/wavealert360/pkg/nws"
	"github.com/wavealert360/wavealert360/server/internal/api"
	"github.com/wavealert360/wavealert360/server/internal/auth"
	"github.com/wavealert360/wavealert360/server/internal/config"
	"github.com/wavealert360/wavealert360/server/internal/history"
	"github.com/wavealert360/wavealert360/server/internal/metrics"
	"github.com/wavealert360/wavealert360/server/internal/registry"
	"github.com/wavealert360/wavealert360/server/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("wavealert-server starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"auth_mode", cfg.Server.Auth.Mode,
		"registry_ttl", cfg.Server.Registry.TTL,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	metrics.Init()

	// GitHub-backed device registry with TTL cache and optional fallback.
	ghClient, err := githubfs.New(githubfs.Config{
		Owner: cfg.Server.Registry.RepoOwner,
		Repo:  cfg.Server.Registry.RepoName,
		Token: cfg.Server.Registry.Token(),
	})
	if err != nil {
		slog.Error("failed to build registry client", "err", err)
		os.Exit(1)
	}
	var fallback *registry.Document
	if path := cfg.Server.Registry.FallbackPath; path != "" {
		fallback, err = registry.LoadFallback(path)
		if err != nil {
			slog.Error("failed to load registry fallback", "path", path, "err", err)
			os.Exit(1)
		}
	}
	source := registry.NewGitHubSource(ghClient, cfg.Server.Registry.DocumentPath)
	reg := registry.New(source, cfg.Server.Registry.TTL, fallback, logger)

	// Upstream alerts client.
	fetcher := nws.New(nws.Config{
		BaseURL:   cfg.Server.NWS.BaseURL,
		UserAgent: cfg.Server.NWS.UserAgent,
		Timeout:   cfg.Server.NWS.Timeout,
	})

	// SQLite transition log with background pruning. Optional.
	var transitions *history.Store
	if cfg.Server.History.Path != "" {
		transitions, err = history.Open(cfg.Server.History.Path)
		if err != nil {
			slog.Error("failed to open history store", "err", err)
			os.Exit(1)
		}
		defer transitions.Close()
		go transitions.RunPruner(ctx, cfg.Server.History.Retention, time.Hour, logger)
	}

	// WebSocket hub — broadcasts fleet status to dashboard clients.
	var hubLog ws.TransitionLog
	if transitions != nil {
		hubLog = transitions
	}
	hub := ws.New(ws.NewFleetSource(reg, hubLog), cfg.Server.Broadcast.Interval)
	go hub.Run(ctx)

	// REST API with API-key-gated mutations.
	authMW := auth.APIKeyMiddleware(
		cfg.Server.Auth.Mode,
		cfg.Server.Auth.EffectiveHeader(),
		cfg.Server.Auth.Key(),
	)
	var apiLog api.TransitionLog
	if transitions != nil {
		apiLog = transitions
	}
	handler := api.New(reg, fetcher, apiLog, cfg.Server.Hazard, authMW, logger)

	httpMux := http.NewServeMux()
	httpMux.Handle("/api/", handler)
	httpMux.Handle("/ws/stream", hub)
	httpMux.Handle("/metrics", metrics.Handler())

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: httpMux,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("wavealert-server shutting down")
	httpSrv.Shutdown(context.Background()) //nolint:errcheck
}
