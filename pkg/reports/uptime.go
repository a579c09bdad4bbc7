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

package reports

import (
	"github.com/mfreeman451/meshradar/pkg/compute"
	"github.com/mfreeman451/meshradar/pkg/models"
)

// RecentSamples is how many of the newest connectivity samples make up
// current uptime.
const RecentSamples = 60

// UptimeSummary describes a network's availability from its cached history.
type UptimeSummary struct {
	NetworkID     string  `json:"network_id"`
	Uptime24h     float64 `json:"uptime_24h"`
	UptimeCurrent float64 `json:"uptime_current"`
	DataPoints    int     `json:"data_points"`
	HealthStatus  string  `json:"health_status"`
}

// Uptime summarizes a cache entry. A nil entry is a network with no history
// yet, which counts as fully up. Current uptime falls back to the 24h
// figure until RecentSamples points exist.
func Uptime(networkID string, entry *models.NetworkCache) UptimeSummary {
	summary := UptimeSummary{
		NetworkID:     networkID,
		Uptime24h:     compute.UptimePercent(nil),
		UptimeCurrent: compute.UptimePercent(nil),
		HealthStatus:  models.HealthUnknown.String(),
	}

	if entry == nil {
		return summary
	}

	summary.Uptime24h = entry.Uptime24h
	summary.UptimeCurrent = entry.Uptime24h
	summary.DataPoints = entry.Connected.Len()
	summary.HealthStatus = entry.HealthStatus.String()

	if summary.DataPoints >= RecentSamples {
		summary.UptimeCurrent = compute.UptimePercent(entry.Connected.Tail(RecentSamples))
	}

	return summary
}
