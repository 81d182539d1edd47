package dirconfig

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher hot-reloads the registry when profile files change on disk.
// Reload replaces the full set; a parse failure keeps the previous set.
type Watcher struct {
	dir      string
	registry *Registry
	logger   zerolog.Logger

	// debounce coalesces editor write bursts into one reload.
	debounce time.Duration
}

// NewWatcher builds a watcher over the profile directory.
func NewWatcher(dir string, registry *Registry, logger zerolog.Logger) *Watcher {
	return &Watcher{dir: dir, registry: registry, logger: logger, debounce: 500 * time.Millisecond}
}

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return err
	}
	w.logger.Info().Str("dir", w.dir).Msg("watching directory profiles")

	var timer *time.Timer
	reload := make(chan struct{}, 1)
	schedule := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(w.debounce, func() {
			select {
			case reload <- struct{}{}:
			default:
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				schedule()
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("profile watcher error")
		case <-reload:
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	profiles, err := LoadDir(w.dir)
	if err != nil {
		w.logger.Error().Err(err).Msg("profile reload failed, keeping previous set")
		return
	}
	w.registry.Replace(profiles)
	w.logger.Info().Int("profiles", len(profiles)).Msg("directory profiles reloaded")
}
