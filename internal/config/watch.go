package config

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors path for changes and calls onChange with the newly loaded
// Config each time the file is written. It runs until ctx is cancelled.
//
// If a reload fails (for example on invalid YAML), the error is logged and
// the previous config stays active — Watch does not call onChange.
func Watch(ctx context.Context, path string, log *slog.Logger, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("failed to watch config file: %w", err)
	}

	log.Info("Watching config file for changes", slog.String("path", path))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Editors often save via rename, which arrives as Create on the
			// watched path. Anything else is not a content change.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := Load(path)
			if err != nil {
				log.Error("Config reload failed, keeping previous config",
					slog.String("path", path), slog.Any("error", err))
				continue
			}

			log.Info("Config reloaded", slog.String("path", path))
			onChange(cfg)

			// Re-add the file in case an atomic save replaced the inode.
			_ = watcher.Add(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("Config watcher error", slog.Any("error", err))
		}
	}
}
