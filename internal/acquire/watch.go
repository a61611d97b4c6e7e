package acquire

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the write bursts of a file being copied in
const DefaultDebounce = 300 * time.Millisecond

// DropConfig configures a drop directory watcher
type DropConfig struct {
	Dir      string
	Debounce time.Duration
	MaxBytes int64
}

// WatchDropDir submits every image file created in cfg.Dir as a drag-drop
// acquisition until ctx is done. Files arriving while a run is in flight
// are rejected like any other overlapping submission.
func WatchDropDir(ctx context.Context, cfg DropConfig, c *Coordinator) error {
	if cfg.Dir == "" {
		return errors.New("no drop directory provided")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(cfg.Dir); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to watch %s: %w", cfg.Dir, err)
	}
	slog.Info("Watching drop directory", "dir", cfg.Dir)

	go func() {
		defer w.Close()

		var (
			mu      sync.Mutex
			pending = map[string]*time.Timer{}
		)
		submit := func(path string) {
			mu.Lock()
			delete(pending, path)
			mu.Unlock()

			payload, err := FromFile(path, cfg.MaxBytes)
			if err != nil {
				slog.Warn("Unable to read dropped file", "path", path, "err", err)
				return
			}
			if _, err := c.Submit(ctx, payload, SourceDragDrop); err != nil {
				slog.Debug("Dropped file not submitted", "path", path, "err", err)
			}
		}

		for {
			select {
			case <-ctx.Done():
				mu.Lock()
				for _, t := range pending {
					t.Stop()
				}
				mu.Unlock()
				return
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if e.Op&(fsnotify.Create|fsnotify.Write) == 0 || hidden(e.Name) {
					continue
				}
				path := e.Name
				mu.Lock()
				if t, ok := pending[path]; ok {
					t.Reset(cfg.Debounce)
				} else {
					pending[path] = time.AfterFunc(cfg.Debounce, func() { submit(path) })
				}
				mu.Unlock()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Error("Drop directory watcher error", "err", err)
			}
		}
	}()

	return nil
}

// hidden skips editor swap files and partial downloads
func hidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".part") || strings.HasSuffix(base, ".crdownload")
}
