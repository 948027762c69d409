package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const debounceDelay = 100 * time.Millisecond

// Watch calls onChange after the file at path is written, until ctx ends.
// Bursts of writes within the debounce window produce one call.
func Watch(ctx context.Context, path string, onChange func(), log *zap.SugaredLogger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// editors replace the file, so watch the directory
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filepath.Base(path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, onChange)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warnw("config watcher", "error", err)
		}
	}
}
