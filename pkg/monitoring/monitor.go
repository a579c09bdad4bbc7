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

// Package monitoring pkg/monitoring/monitor.go runs periodic background tasks.
package monitoring

import (
	"context"
	"log"
	"sync"
	"time"
)

// MonitorConfig holds configuration for a periodic task.
type MonitorConfig struct {
	// Name labels log lines.
	Name string

	Interval time.Duration

	// SkipInitial delays the first run by one interval.
	SkipInitial bool
}

// Monitor runs a check on a fixed interval until stopped.
type Monitor struct {
	config   MonitorConfig
	done     chan struct{}
	stopOnce sync.Once
}

// NewMonitor creates a new periodic task runner.
func NewMonitor(cfg MonitorConfig) *Monitor {
	return &Monitor{
		config: cfg,
		done:   make(chan struct{}),
	}
}

// StartMonitoring runs check immediately (unless SkipInitial) and then on
// every tick. It blocks until ctx is done or Stop is called. A slow check
// delays the next tick rather than overlapping it.
func (m *Monitor) StartMonitoring(ctx context.Context, check func(context.Context) error) {
	ticker := time.NewTicker(m.config.Interval)
	defer ticker.Stop()

	if !m.config.SkipInitial {
		if err := check(ctx); err != nil {
			log.Printf("Initial %s run failed: %v", m.config.Name, err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case <-ticker.C:
			if err := check(ctx); err != nil {
				log.Printf("%s run failed: %v", m.config.Name, err)
			}
		}
	}
}

// Stop ends the loop. It is safe to call more than once.
func (m *Monitor) Stop(_ context.Context) {
	m.stopOnce.Do(func() {
		close(m.done)
	})
}
