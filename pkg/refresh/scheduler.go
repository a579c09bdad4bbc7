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

package refresh

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/mfreeman451/meshradar/pkg/monitoring"
)

const (
	DefaultInterval = 60 * time.Second
	cleanupInterval = 24 * time.Hour
)

// Scheduler drives the engine: one refresh loop, plus a daily retention
// cleanup when a retention period is set.
type Scheduler struct {
	engine    *Engine
	interval  time.Duration
	retention time.Duration

	refresh *monitoring.Monitor
	cleanup *monitoring.Monitor
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler. interval <= 0 selects DefaultInterval;
// retention <= 0 disables cleanup.
func NewScheduler(engine *Engine, interval, retention time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Scheduler{
		engine:    engine,
		interval:  interval,
		retention: retention,
		refresh:   monitoring.NewMonitor(monitoring.MonitorConfig{Name: "refresh", Interval: interval}),
		cleanup: monitoring.NewMonitor(monitoring.MonitorConfig{
			Name:        "cleanup",
			Interval:    cleanupInterval,
			SkipInitial: true,
		}),
	}
}

// Start launches the loops in the background. The first refresh runs
// immediately.
func (s *Scheduler) Start(ctx context.Context) {
	log.Printf("Starting refresh scheduler (interval %s)", s.interval)

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		s.refresh.StartMonitoring(ctx, func(ctx context.Context) error {
			s.engine.RefreshCycle(ctx)

			return nil
		})
	}()

	if s.retention <= 0 {
		return
	}

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		s.cleanup.StartMonitoring(ctx, func(ctx context.Context) error {
			return s.engine.store.CleanOldData(ctx, s.retention)
		})
	}()
}

// Trigger runs a cycle now on the caller's goroutine. It reports false when
// a cycle was already running.
func (s *Scheduler) Trigger(ctx context.Context) bool {
	return s.engine.RefreshCycle(ctx)
}

// Stop ends the loops and waits for a running cycle to finish.
func (s *Scheduler) Stop(ctx context.Context) {
	s.refresh.Stop(ctx)
	s.cleanup.Stop(ctx)
	s.wg.Wait()
}
