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

// Package refresh pkg/refresh/engine.go implements the cache refresh cycle,
// the uptime incident state machine and startup reconciliation.
package refresh

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/mfreeman451/meshradar/pkg/alerts"
	"github.com/mfreeman451/meshradar/pkg/cache"
	"github.com/mfreeman451/meshradar/pkg/config"
	"github.com/mfreeman451/meshradar/pkg/db"
	"github.com/mfreeman451/meshradar/pkg/metrics"
	"github.com/mfreeman451/meshradar/pkg/models"
	"github.com/mfreeman451/meshradar/pkg/telemetry"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// ActiveWindow is how recently a disconnected device must have been
	// seen to still count as present.
	ActiveWindow = 15 * time.Minute

	// perDeviceUsageMbps estimates usage when the API reports none.
	perDeviceUsageMbps = 2.5

	eventBuffer = 8
)

var (
	errStoreRequired    = errors.New("refresh: store is required")
	errSourceRequired   = errors.New("refresh: telemetry source is required")
	errNetworksRequired = errors.New("refresh: network provider is required")
)

// Options wires the engine's collaborators. Store, Source and Networks are
// required.
type Options struct {
	Store     db.Service
	Source    telemetry.Source
	Networks  config.NetworkProvider
	Snapshots SnapshotStore
	Alerts    *alerts.Engine
	Notifier  alerts.Notifier

	// Registerer receives the Prometheus collectors. Nil uses a private
	// registry.
	Registerer prometheus.Registerer

	// Location is the zone of cache timestamps. Nil means UTC.
	Location *time.Location
	Now      func() time.Time
}

// Engine owns the in-memory cache and is its only writer.
type Engine struct {
	store     db.Service
	source    telemetry.Source
	networks  config.NetworkProvider
	snapshots SnapshotStore
	alerts    *alerts.Engine
	collect   *metrics.RefreshCollectors
	loc       *time.Location
	now       func() time.Time

	// cycleMu admits one refresh cycle at a time.
	cycleMu sync.Mutex

	mu    sync.RWMutex
	cache *models.Cache

	subMu       sync.Mutex
	subscribers map[chan CycleEvent]struct{}
}

// NewEngine creates an engine with an empty cache. Call Restore to start
// from the disk snapshot.
func NewEngine(opts Options) (*Engine, error) {
	switch {
	case opts.Store == nil:
		return nil, errStoreRequired
	case opts.Source == nil:
		return nil, errSourceRequired
	case opts.Networks == nil:
		return nil, errNetworksRequired
	}

	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	alertEngine := opts.Alerts
	if alertEngine == nil {
		alertEngine = alerts.NewEngine(opts.Store, opts.Notifier, alerts.WithClock(now))
	}

	return &Engine{
		store:       opts.Store,
		source:      opts.Source,
		networks:    opts.Networks,
		snapshots:   opts.Snapshots,
		alerts:      alertEngine,
		collect:     metrics.NewRefreshCollectors(reg),
		loc:         loc,
		now:         now,
		cache:       models.NewCache(),
		subscribers: make(map[chan CycleEvent]struct{}),
	}, nil
}

// Restore replaces the cache with the disk snapshot. A missing or stale
// snapshot leaves the cache empty and is not an error.
func (e *Engine) Restore() error {
	if e.snapshots == nil {
		return nil
	}

	c, err := e.snapshots.Load()
	switch {
	case errors.Is(err, cache.ErrNoSnapshot):
		log.Printf("No cache snapshot found, starting with an empty cache")

		return nil
	case errors.Is(err, cache.ErrSnapshotStale):
		return nil
	case err != nil:
		return err
	}

	e.mu.Lock()
	e.cache = c
	e.mu.Unlock()

	log.Printf("Restored cache for %d networks", len(c.Networks))

	return nil
}

// Snapshot returns a deep copy of the cache.
func (e *Engine) Snapshot() *models.Cache {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.cache.Clone()
}

// Network returns a copy of one network's cache entry.
func (e *Engine) Network(id string) (*models.NetworkCache, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	n, ok := e.cache.Networks[id]
	if !ok {
		return nil, false
	}

	return n.Clone(), true
}

// Alerts returns the alert engine.
func (e *Engine) Alerts() *alerts.Engine {
	return e.alerts
}

// Store returns the persistent store.
func (e *Engine) Store() db.Service {
	return e.store
}

// Networks returns the network provider.
func (e *Engine) Networks() config.NetworkProvider {
	return e.networks
}

func (e *Engine) clock() time.Time {
	return e.now().In(e.loc)
}

// saveSnapshot writes a copy of the cache. Failures are logged only.
func (e *Engine) saveSnapshot() {
	if e.snapshots == nil {
		return
	}

	if err := e.snapshots.Save(e.Snapshot()); err != nil {
		log.Printf("Failed to save cache snapshot: %v", err)
	}
}
