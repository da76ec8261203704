package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/singleflight"
)

// DefaultDebounce is how long the Watcher waits after the last file event
// before reloading.
const DefaultDebounce = 250 * time.Millisecond

const reloadKey = "reload"

// Watcher reloads the configuration whenever one of its files changes.
type Watcher struct {
	loader   *Loader
	logger   *slog.Logger
	debounce time.Duration
	onChange func(*Result)
	flight   singleflight.Group

	mu      sync.RWMutex
	current *Result
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the quiet period before a reload. Non-positive values are ignored.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithOnChange registers fn to receive every newly loaded Result, including
// the first one.
func WithOnChange(fn func(*Result)) WatcherOption {
	return func(w *Watcher) {
		w.onChange = fn
	}
}

// NewWatcher creates a Watcher around loader.
func NewWatcher(loader *Loader, opts ...WatcherOption) *Watcher {
	watcher := &Watcher{
		loader:   loader,
		logger:   loader.options.Logger,
		debounce: DefaultDebounce,
	}

	for _, apply := range opts {
		apply(watcher)
	}

	return watcher
}

// Current returns the most recent Result, or nil before the first load.
func (w *Watcher) Current() *Result {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.current
}

// Reload loads the configuration now. Concurrent calls share one load.
// When ctx is done by the end of the load, Current is kept and ctx.Err()
// is returned.
func (w *Watcher) Reload(ctx context.Context) (*Result, error) {
	value, err, _ := w.flight.Do(reloadKey, func() (any, error) {
		result, err := w.loader.Load(ctx)
		if err != nil {
			return nil, err
		}

		// A load cut short by cancellation leaves references unresolved.
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		w.mu.Lock()
		w.current = result
		w.mu.Unlock()

		if w.onChange != nil {
			w.onChange(result)
		}

		return result, nil
	})
	if err != nil {
		return nil, err
	}

	result, _ := value.(*Result)

	return result, nil
}

// Run loads the configuration, then watches the directories holding its
// files and reloads after changes until ctx is done, then returns nil.
// Only the first load can fail Run; later failures are logged and the
// previous Result is kept.
func (w *Watcher) Run(ctx context.Context) error {
	result, err := w.Reload(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}

		return err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	defer func() { _ = fsWatcher.Close() }()

	watched := w.watch(fsWatcher, result.BaseDir)

	var timer *time.Timer

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}

			if _, tracked := watched[filepath.Clean(event.Name)]; !tracked {
				continue
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}

			w.logger.Debug("config file changed", slog.String("file", event.Name), slog.String("op", event.Op.String()))

			if timer != nil {
				timer.Stop()
			}

			timer = time.AfterFunc(w.debounce, func() {
				if ctx.Err() != nil {
					return
				}

				_, reloadErr := w.Reload(ctx)
				if reloadErr != nil && ctx.Err() == nil {
					w.logger.Error("failed to reload configuration", slog.Any("error", reloadErr))
				}
			})
		case watchErr, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}

			w.logger.Warn("config watcher error", slog.Any("error", watchErr))
		}
	}
}

// watch adds the parent directory of every configured file, so files that
// are replaced or created later are still seen, and returns the file set.
func (w *Watcher) watch(fsWatcher *fsnotify.Watcher, baseDir string) map[string]struct{} {
	files := make(map[string]struct{}, len(w.loader.options.Files))
	dirs := make(map[string]struct{})

	for _, name := range w.loader.options.Files {
		path := resolvePath(baseDir, name)
		files[path] = struct{}{}
		dirs[filepath.Dir(path)] = struct{}{}
	}

	for dir := range dirs {
		if _, err := os.Stat(dir); err != nil {
			w.logger.Warn("config directory not watched", slog.String("dir", dir), slog.Any("error", err))

			continue
		}

		if err := fsWatcher.Add(dir); err != nil {
			w.logger.Warn("config directory not watched", slog.String("dir", dir), slog.Any("error", err))
		}
	}

	return files
}
