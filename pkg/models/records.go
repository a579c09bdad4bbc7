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

package models

import "time"

// Metric is one append-only row per network per refresh cycle.
type Metric struct {
	ID                   int64     `json:"id"`
	NetworkID            string    `json:"network_id"`
	Timestamp            time.Time `json:"timestamp"`
	TotalDevices         int       `json:"total_devices"`
	WirelessDevices      int       `json:"wireless_devices"`
	WiredDevices         int       `json:"wired_devices"`
	BandwidthUsage       float64   `json:"bandwidth_usage_mbps"`
	BandwidthCapacity    float64   `json:"bandwidth_capacity_mbps"`
	BandwidthUtilization float64   `json:"bandwidth_utilization"`
	AvgSignalDBM         *float64  `json:"avg_signal_dbm"`
}

// UptimeIncident is one contiguous offline interval. EndTime and
// DurationSeconds stay nil while the incident is open.
type UptimeIncident struct {
	ID              int64      `json:"id"`
	NetworkID       string     `json:"network_id"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	DurationSeconds *int64     `json:"duration_seconds"`
	AffectedDevices int        `json:"affected_devices"`
}

// IsOpen reports whether the incident has not been closed yet.
func (i *UptimeIncident) IsOpen() bool {
	return i.EndTime == nil
}

// Close sets the end of the incident, clamping the duration at zero.
func (i *UptimeIncident) Close(end time.Time) {
	dur := int64(end.Sub(i.StartTime) / time.Second)
	if dur < 0 {
		dur = 0
	}

	i.EndTime = &end
	i.DurationSeconds = &dur
}

// AlertType identifies what condition raised an alert.
type AlertType string

const (
	AlertOffline   AlertType = "offline"
	AlertDegraded  AlertType = "degraded"
	AlertBandwidth AlertType = "bandwidth"
)

// Severity of an alert.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
)

// Alert is an append-only event with a mutable acknowledgement flag.
type Alert struct {
	ID             int64      `json:"id"`
	NetworkID      string     `json:"network_id"`
	NetworkName    string     `json:"network_name,omitempty"`
	Type           AlertType  `json:"alert_type"`
	Severity       Severity   `json:"severity"`
	Message        string     `json:"message"`
	CreatedAt      time.Time  `json:"created_at"`
	Acknowledged   bool       `json:"acknowledged"`
	AcknowledgedAt *time.Time `json:"acknowledged_at"`
}

// AlertFilter narrows alert queries. Zero values mean "no filter".
type AlertFilter struct {
	NetworkID    string
	Type         AlertType
	Acknowledged *bool
	Since        time.Time
	Limit        int
}
