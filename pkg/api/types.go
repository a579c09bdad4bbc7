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

package api

import (
	"time"

	"github.com/mfreeman451/meshradar/pkg/models"
	"github.com/mfreeman451/meshradar/pkg/reports"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type RefreshResponse struct {
	Success   bool   `json:"success"`
	Refreshed bool   `json:"refreshed"`
	Message   string `json:"message"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// NetworkStatus is a configured network as listed by /api/networks.
type NetworkStatus struct {
	models.MonitoredNetwork
	Authenticated bool                `json:"authenticated"`
	HealthStatus  models.HealthStatus `json:"health_status"`
	LastUpdate    *time.Time          `json:"last_update"`
}

type NetworksResponse struct {
	Networks []NetworkStatus `json:"networks"`
}

type AlertsResponse struct {
	Alerts              []models.Alert `json:"alerts"`
	UnacknowledgedCount int            `json:"unacknowledged_count"`
}

type ScorecardResponse struct {
	Networks []reports.Scorecard `json:"networks"`
}
