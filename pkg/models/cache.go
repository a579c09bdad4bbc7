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

import (
	"maps"
	"slices"
	"time"

	"github.com/mfreeman451/meshradar/pkg/metrics"
)

// ConnectedSample is one connectivity point in a network's history.
type ConnectedSample struct {
	Timestamp     time.Time `json:"timestamp"`
	Count         int       `json:"count"`
	WirelessCount int       `json:"wireless_count"`
}

// SignalSample is the average wireless signal observed in one cycle.
type SignalSample struct {
	Timestamp time.Time `json:"timestamp"`
	AvgDBM    float64   `json:"avg_dbm"`
}

// DeviceInfo is the per-device record shown by the dashboard.
type DeviceInfo struct {
	Name           string        `json:"name"`
	IP             string        `json:"ip"`
	MAC            string        `json:"mac"`
	Manufacturer   string        `json:"manufacturer"`
	OS             DeviceOS      `json:"device_os"`
	ConnectionType string        `json:"connection_type"`
	Frequency      string        `json:"frequency"`
	FrequencyBand  FrequencyBand `json:"frequency_band"`
	SignalDBM      string        `json:"signal_avg_dbm"`
	SignalPercent  int           `json:"signal_avg"`
	SignalQuality  SignalQuality `json:"signal_quality"`
	NetworkID      string        `json:"network_id"`
	NetworkName    string        `json:"network_name"`
}

// Connection types reported in DeviceInfo.
const (
	ConnectionWireless = "Wireless"
	ConnectionWired    = "Wired"
)

// NodeSummary describes the mesh nodes of a network.
type NodeSummary struct {
	Total              int      `json:"total"`
	Online             int      `json:"online"`
	FirmwareVersions   []string `json:"firmware_versions,omitempty"`
	FirmwareConsistent bool     `json:"firmware_consistent"`
}

// NetworkCache is the in-memory state of one monitored network. It is
// written only by the refresh engine.
type NetworkCache struct {
	NetworkID   string                          `json:"network_id"`
	NetworkName string                          `json:"network_name"`
	Connected   metrics.Series[ConnectedSample] `json:"connected_users"`
	Signal      metrics.Series[SignalSample]    `json:"signal_strength_avg"`

	Devices         []DeviceInfo          `json:"devices"`
	DeviceOS        map[DeviceOS]int      `json:"device_os"`
	Frequency       map[FrequencyBand]int `json:"frequency_distribution"`
	TotalDevices    int                   `json:"total_devices"`
	WirelessDevices int                   `json:"wireless_devices"`
	WiredDevices    int                   `json:"wired_devices"`

	HealthStatus         HealthStatus `json:"health_status"`
	HealthScore          int          `json:"health_score"`
	BandwidthUtilization float64      `json:"bandwidth_utilization"`
	BandwidthUsage       float64      `json:"bandwidth_usage_mbps"`
	BandwidthCapacity    float64      `json:"bandwidth_capacity_mbps"`
	Uptime24h            float64      `json:"uptime_24h"`
	OfflineSince         *time.Time   `json:"offline_since,omitempty"`
	Nodes                NodeSummary  `json:"nodes"`

	// PrevHealth drives incident open/close only. Alert suppression keeps
	// its own tracker.
	PrevHealth HealthStatus `json:"_prev_health,omitempty"`

	LastUpdate           *time.Time `json:"last_update"`
	LastSuccessfulUpdate *time.Time `json:"last_successful_update"`
}

// NewNetworkCache returns an empty cache entry for a network.
func NewNetworkCache(id, name string) *NetworkCache {
	return &NetworkCache{
		NetworkID:   id,
		NetworkName: name,
		DeviceOS:    make(map[DeviceOS]int),
		Frequency:   make(map[FrequencyBand]int),
	}
}

// Clone returns a deep copy.
func (n *NetworkCache) Clone() *NetworkCache {
	c := *n
	c.Connected = n.Connected.Clone()
	c.Signal = n.Signal.Clone()
	c.Devices = slices.Clone(n.Devices)
	c.DeviceOS = maps.Clone(n.DeviceOS)
	c.Frequency = maps.Clone(n.Frequency)
	c.Nodes.FirmwareVersions = slices.Clone(n.Nodes.FirmwareVersions)
	c.OfflineSince = cloneTime(n.OfflineSince)
	c.LastUpdate = cloneTime(n.LastUpdate)
	c.LastSuccessfulUpdate = cloneTime(n.LastSuccessfulUpdate)

	return &c
}

// CombinedCache aggregates every active network. It is always rebuilt from
// the network caches and never mutated on its own.
type CombinedCache struct {
	Connected metrics.Series[ConnectedSample] `json:"connected_users"`
	Signal    metrics.Series[SignalSample]    `json:"signal_strength_avg"`

	Devices         []DeviceInfo          `json:"devices"`
	DeviceOS        map[DeviceOS]int      `json:"device_os"`
	Frequency       map[FrequencyBand]int `json:"frequency_distribution"`
	TotalDevices    int                   `json:"total_devices"`
	WirelessDevices int                   `json:"wireless_devices"`
	WiredDevices    int                   `json:"wired_devices"`
	ActiveNetworks  int                   `json:"active_networks"`

	LastUpdate           *time.Time `json:"last_update"`
	LastSuccessfulUpdate *time.Time `json:"last_successful_update"`
}

// Clone returns a deep copy.
func (c *CombinedCache) Clone() CombinedCache {
	out := *c
	out.Connected = c.Connected.Clone()
	out.Signal = c.Signal.Clone()
	out.Devices = slices.Clone(c.Devices)
	out.DeviceOS = maps.Clone(c.DeviceOS)
	out.Frequency = maps.Clone(c.Frequency)
	out.LastUpdate = cloneTime(c.LastUpdate)
	out.LastSuccessfulUpdate = cloneTime(c.LastSuccessfulUpdate)

	return out
}

// Cache is the whole in-memory state snapshotted to disk.
type Cache struct {
	Networks map[string]*NetworkCache `json:"networks"`
	Combined CombinedCache            `json:"combined"`
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		Networks: make(map[string]*NetworkCache),
		Combined: CombinedCache{
			DeviceOS:  make(map[DeviceOS]int),
			Frequency: make(map[FrequencyBand]int),
		},
	}
}

// Clone returns a deep copy safe to hand to readers.
func (c *Cache) Clone() *Cache {
	out := &Cache{
		Networks: make(map[string]*NetworkCache, len(c.Networks)),
		Combined: c.Combined.Clone(),
	}

	for id, n := range c.Networks {
		out.Networks[id] = n.Clone()
	}

	return out
}

// HealthOf returns the last known health of a network.
func (c *Cache) HealthOf(networkID string) HealthStatus {
	if n, ok := c.Networks[networkID]; ok {
		return n.HealthStatus
	}

	return HealthUnknown
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}

	v := *t

	return &v
}
