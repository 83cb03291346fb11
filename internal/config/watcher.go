package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// suppressWindow is how long a self-write token silences the watcher
// after the engine saves config via an assign/unassign request.
const suppressWindow = 100 * time.Millisecond

// debounceDelay absorbs editors that perform several writes per save
// (write-then-rename, or multiple small writes) into one reload.
const debounceDelay = 50 * time.Millisecond

// Watch watches configPath's parent directory (not the file itself, so
// an editor's rename-over-target save pattern is still observed) and
// sends on reload whenever the file changes, debounced and filtered
// through selfWrite suppression tokens. It blocks until ctx is canceled.
func Watch(ctx context.Context, configPath string, reload chan<- struct{}, selfWrite <-chan struct{}, logger *slog.Logger) {
	dir := filepath.Dir(configPath)
	filename := filepath.Base(configPath)

	if err := os.MkdirAll(dir, 0o700); err != nil {
		logWarn(logger, "config watcher disabled: create config dir", err)
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logWarn(logger, "config watcher disabled: create fsnotify watcher", err)
		return
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		logWarn(logger, "config watcher disabled: watch config dir", err)
		return
	}

	var suppressUntil time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case _, ok := <-selfWrite:
			if !ok {
				return
			}
			suppressUntil = time.Now().Add(suppressWindow)

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if time.Now().Before(suppressUntil) {
				continue
			}

			deadline := time.Now().Add(debounceDelay)
			for wait := debounceDelay; wait > 0; wait = time.Until(deadline) {
				select {
				case next, ok := <-watcher.Events:
					if !ok {
						return
					}
					if next.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 && filepath.Base(next.Name) == filename {
						deadline = time.Now().Add(debounceDelay)
					}
				case <-time.After(wait):
				case <-ctx.Done():
					return
				}
			}

			select {
			case reload <- struct{}{}:
			default:
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logWarn(logger, "config watcher error", err)
		}
	}
}

func logWarn(logger *slog.Logger, msg string, err error) {
	if logger == nil {
		return
	}
	logger.Warn(msg, "error", err.Error())
}
