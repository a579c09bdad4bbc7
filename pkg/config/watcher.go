/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"context"
	"log"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/mfreeman451/meshradar/pkg/models"
)

// Watcher holds the current configuration and reloads it when the file
// changes. Readers always see a complete configuration; a reload that fails
// to load or validate keeps the previous one.
type Watcher struct {
	path    string
	current atomic.Pointer[Config]
	watcher *fsnotify.Watcher
	getenv  func(string) string

	mu       sync.Mutex
	onReload []func(*Config)
}

var _ NetworkProvider = (*Watcher)(nil)

// NewWatcher creates a watcher for path starting from initial.
func NewWatcher(path string, initial *Config) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:    filepath.Clean(path),
		watcher: fw,
	}
	w.current.Store(initial)

	return w, nil
}

// Config returns the current configuration.
func (w *Watcher) Config() *Config {
	return w.current.Load()
}

// ActiveNetworks implements NetworkProvider.
func (w *Watcher) ActiveNetworks() []models.MonitoredNetwork {
	return w.current.Load().ActiveNetworks()
}

// OnReload registers fn to run after every successful reload.
func (w *Watcher) OnReload(fn func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.onReload = append(w.onReload, fn)
}

// Reload loads the file and swaps it in.
func (w *Watcher) Reload() error {
	cfg := &Config{}

	if err := LoadFile(w.path, cfg); err != nil {
		return err
	}

	cfg.ApplyEnv(w.getenv)

	if err := cfg.Validate(); err != nil {
		return err
	}

	w.current.Store(cfg)

	w.mu.Lock()
	hooks := append([]func(*Config){}, w.onReload...)
	w.mu.Unlock()

	for _, fn := range hooks {
		fn(cfg)
	}

	log.Printf("Reloaded configuration from %s (%d active networks)", w.path, len(cfg.ActiveNetworks()))

	return nil
}

// Start watches the directory of the file, since editors often replace the
// file instead of writing it. It blocks until ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}

			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}

			log.Printf("Config watcher error: %v", err)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	if err := w.Reload(); err != nil {
		log.Printf("Failed to reload configuration from %s, keeping previous: %v", w.path, err)
	}
}

// Stop releases the underlying watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}
