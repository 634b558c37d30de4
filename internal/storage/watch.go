package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"tomatray/internal/ui/preferences"
)

const watchSettle = 150 * time.Millisecond

// Watch reloads the settings file whenever it changes on disk and passes the
// result to onChange. Writes made through Save are not reported. Watch blocks
// until ctx is done.
func (store *Store) Watch(ctx context.Context, logger *slog.Logger, onChange func(preferences.Settings)) error {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	dir := filepath.Dir(store.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create settings watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file, so the directory is watched.
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(store.path) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				settle = time.After(watchSettle)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("settings watcher error", "error", err)
		case <-settle:
			settle = nil
			store.reload(logger, onChange)
		}
	}
}

func (store *Store) reload(logger *slog.Logger, onChange func(preferences.Settings)) {
	rawData, err := os.ReadFile(store.path)
	if err != nil {
		logger.Debug("settings file not readable", "error", err)
		return
	}
	if store.ownWrite(rawData) {
		return
	}
	settings, err := decodeSettings(rawData)
	if err != nil {
		logger.Warn("ignoring invalid settings file", "path", store.path, "error", err)
		return
	}
	logger.Info("settings file changed", "path", store.path)
	if onChange != nil {
		onChange(settings)
	}
}
