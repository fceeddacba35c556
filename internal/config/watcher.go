// Copyright 2026 The mcp-drupal-server Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// Watcher reloads the configuration file when it changes on disk and
// notifies a callback with the fresh copy. Reload failures keep the last
// good configuration.
type Watcher struct {
	path     string
	onChange func(*Config)

	watcher *fsnotify.Watcher
	stop    chan struct{}
	once    sync.Once
}

// NewWatcher creates a watcher for the config file at path.
func NewWatcher(path string, onChange func(*Config)) *Watcher {
	return &Watcher{
		path:     path,
		onChange: onChange,
		stop:     make(chan struct{}),
	}
}

// Start begins watching. The parent directory is watched rather than the
// file itself so editors that replace the file atomically still trigger.
func (w *Watcher) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		_ = watcher.Close()
		return err
	}
	w.watcher = watcher

	go w.loop()
	return nil
}

// Stop terminates the watcher. Safe to call more than once.
func (w *Watcher) Stop() {
	w.once.Do(func() {
		close(w.stop)
		if w.watcher != nil {
			_ = w.watcher.Close()
		}
	})
}

func (w *Watcher) loop() {
	base := filepath.Base(w.path)
	for {
		select {
		case <-w.stop:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			cfg, err := LoadConfig(w.path)
			if err != nil {
				log.Warnf("config reload failed, keeping previous: %v", err)
				continue
			}
			log.Infof("config file %s reloaded", base)
			if w.onChange != nil {
				w.onChange(cfg)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Debugf("config watcher error: %v", err)
		}
	}
}
