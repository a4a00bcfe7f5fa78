package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/treedoc/internal/event"
)

// TopicChanged is published after the configuration file was reloaded.
const TopicChanged event.Topic = "config.changed"

// Watcher reloads the configuration file when it changes on disk and
// publishes the new configuration on the bus. Rapid successive writes are
// coalesced into one reload.
type Watcher struct {
	path     string
	bus      event.Bus
	log      *slog.Logger
	fs       *fsnotify.Watcher
	debounce time.Duration
	done     chan struct{}
}

// NewWatcher creates a watcher for the given configuration path. The
// parent directory is watched so editors that replace the file are seen.
func NewWatcher(path string, bus event.Bus, log *slog.Logger) (*Watcher, error) {
	if log == nil {
		log = slog.Default()
	}
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fs.Add(filepath.Dir(path)); err != nil {
		fs.Close()
		return nil, err
	}
	w := &Watcher{
		path:     path,
		bus:      bus,
		log:      log,
		fs:       fs,
		debounce: 100 * time.Millisecond,
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fs.Close()
}

func (w *Watcher) run() {
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watch error", "error", err)
		case <-fire:
			timer = nil
			fire = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.log.Warn("config reload failed", "path", w.path, "error", err)
		return
	}
	w.log.Info("config reloaded", "path", w.path)
	if err := w.bus.Publish(context.Background(), event.NewEvent(TopicChanged, cfg, "config")); err != nil {
		w.log.Warn("config change delivery failed", "error", err)
	}
}
