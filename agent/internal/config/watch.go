package config

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the appliance config whenever the file at path changes and
// hands the new Config to onChange. A failed reload keeps the running config:
// a kiosk on a pier must not lose its alert loop to a half-saved YAML edit.
//
// The parent directory is watched rather than the file itself, so atomic
// saves (write to temp, rename over) are picked up even though they replace
// the inode. Watch blocks until ctx is cancelled.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	target := filepath.Clean(path)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	slog.Info("config: watching for changes", "path", target)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := Load(target)
			if err != nil {
				slog.Error("config: reload failed, keeping previous config",
					"path", target, "err", err)
				continue
			}

			slog.Info("config: reloaded",
				"path", target, "check_interval", cfg.Agent.CheckInterval)
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}
