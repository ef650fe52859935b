package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher re-reads the config file when it changes on disk and hands the new
// config to onChange. A file that fails to parse is logged and skipped, so the
// last good config stays active.
type Watcher struct {
	path     string
	onChange func(*Config)
	log      *zap.Logger
	debounce time.Duration
	watcher  *fsnotify.Watcher
}

func NewWatcher(path string, onChange func(*Config), log *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		fw.Close()
		return nil, err
	}

	// Editors often replace the file instead of writing it, so watch the directory.
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, err
	}

	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		path:     abs,
		onChange: onChange,
		log:      log,
		debounce: defaultDebounce,
		watcher:  fw,
	}, nil
}

// Run blocks until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.log.Warn("config change ignored", zap.String("path", w.path), zap.Error(err))
		return
	}
	w.log.Info("config reloaded", zap.String("path", w.path), zap.Int("aliases", len(cfg.Aliases)))
	w.onChange(cfg)
}
