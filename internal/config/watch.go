package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a config file when it changes on disk.
type Watcher struct {
	path string
	fsw  *fsnotify.Watcher
}

// NewWatcher starts watching path. The containing directory is watched so
// that editors replacing the file are noticed.
func NewWatcher(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, err
	}
	return &Watcher{path: abs, fsw: fsw}, nil
}

// Run calls fn with the reloaded configuration after every write to the
// file, until ctx ends. Load errors are passed to fn and watching
// continues.
func (w *Watcher) Run(ctx context.Context, fn func(*Config, error)) error {
	defer w.fsw.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				fn(Load(w.path))
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			fn(nil, err)
		}
	}
}
