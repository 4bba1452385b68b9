package config

import (
	"context"

	"github.com/fsnotify/fsnotify"
)

// Run watches the config file until ctx is cancelled, calling OnChange with
// the freshly parsed Config after every write and OnError (if set) when a
// reload fails to parse. Editors often replace a file rather than write it
// in place, so both Write and Create/Rename events trigger a reload.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()
	if err := fw.Add(w.path); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.reload()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Error("config watch error", "error", err)
			if w.OnError != nil {
				w.OnError(err)
			}
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.log.Warn("config reload failed", "path", w.path, "error", err)
		if w.OnError != nil {
			w.OnError(err)
		}
		return
	}
	w.log.Info("config reloaded", "path", w.path)
	if w.OnChange != nil {
		w.OnChange(cfg)
	}
}
