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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Health gauge values exported per network.
const (
	healthValueUnknown  = -1
	healthValueOffline  = 0
	healthValueDegraded = 1
	healthValueHealthy  = 2
)

// RefreshCollectors groups the Prometheus instruments updated by the refresh
// engine. Collectors register on the supplied registerer so tests can use a
// private registry.
type RefreshCollectors struct {
	Cycles         prometheus.Counter
	Skipped        prometheus.Counter
	CycleDuration  prometheus.Histogram
	NetworkErrors  *prometheus.CounterVec
	NetworkHealth  *prometheus.GaugeVec
	NetworkDevices *prometheus.GaugeVec
	Alerts         *prometheus.CounterVec
	Incidents      *prometheus.CounterVec
}

// NewRefreshCollectors creates and registers the refresh collectors.
func NewRefreshCollectors(reg prometheus.Registerer) *RefreshCollectors {
	factory := promauto.With(reg)

	return &RefreshCollectors{
		Cycles: factory.NewCounter(prometheus.CounterOpts{
			Name: "meshradar_refresh_cycles_total",
			Help: "Total refresh cycles that ran to completion",
		}),
		Skipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "meshradar_refresh_skipped_total",
			Help: "Refresh triggers skipped because a cycle was already running",
		}),
		CycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "meshradar_refresh_cycle_duration_seconds",
			Help:    "Refresh cycle duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		NetworkErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "meshradar_refresh_network_errors_total",
			Help: "Per-network refresh failures by stage",
		}, []string{"network", "stage"}),
		NetworkHealth: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "meshradar_network_health_status",
			Help: "Network health (2 healthy, 1 degraded, 0 offline, -1 unknown)",
		}, []string{"network"}),
		NetworkDevices: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "meshradar_network_active_devices",
			Help: "Effectively active client devices per network",
		}, []string{"network", "connection"}),
		Alerts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "meshradar_alerts_emitted_total",
			Help: "Alerts emitted by type",
		}, []string{"type"}),
		Incidents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "meshradar_uptime_incident_transitions_total",
			Help: "Uptime incident opens and closes",
		}, []string{"action"}),
	}
}

// HealthValue maps a health status string onto the gauge encoding.
func HealthValue(status string) float64 {
	switch status {
	case "healthy":
		return healthValueHealthy
	case "degraded":
		return healthValueDegraded
	case "offline":
		return healthValueOffline
	default:
		return healthValueUnknown
	}
}
