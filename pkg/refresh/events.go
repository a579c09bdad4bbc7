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
	"time"

	"github.com/mfreeman451/meshradar/pkg/models"
)

// NetworkSummary is the per-network outcome of one cycle.
type NetworkSummary struct {
	NetworkID    string              `json:"network_id"`
	HealthStatus models.HealthStatus `json:"health_status"`
	TotalDevices int                 `json:"total_devices"`
	Updated      bool                `json:"updated"`
	Error        string              `json:"error,omitempty"`
}

// CycleEvent is published to subscribers after every completed cycle.
type CycleEvent struct {
	CycleID    string           `json:"cycle_id"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Networks   []NetworkSummary `json:"networks"`
	Alerts     []models.Alert   `json:"alerts,omitempty"`
}

// Subscribe returns a channel receiving cycle events and a function that
// cancels the subscription. Slow subscribers miss events rather than
// stall the cycle.
func (e *Engine) Subscribe() (<-chan CycleEvent, func()) {
	ch := make(chan CycleEvent, eventBuffer)

	e.subMu.Lock()
	e.subscribers[ch] = struct{}{}
	e.subMu.Unlock()

	var once bool

	return ch, func() {
		e.subMu.Lock()
		defer e.subMu.Unlock()

		if once {
			return
		}

		once = true

		delete(e.subscribers, ch)
		close(ch)
	}
}

func (e *Engine) publish(ev CycleEvent) {
	e.subMu.Lock()
	defer e.subMu.Unlock()

	for ch := range e.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}
