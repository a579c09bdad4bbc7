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

package telemetry

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"time"
)

const unknownDevice = "Unknown Device"

// RawDevice is a client device as reported by the cloud API. Fields the API
// omits or sends as null keep their zero value.
type RawDevice struct {
	Connected    bool         `json:"connected"`
	LastActive   Timestamp    `json:"last_active"`
	Wireless     bool         `json:"wireless"`
	Interface    *Interface   `json:"interface,omitempty"`
	Manufacturer string       `json:"manufacturer"`
	Hostname     string       `json:"hostname"`
	Nickname     string       `json:"nickname"`
	MAC          string       `json:"mac"`
	IPs          Addresses    `json:"ips"`
	Source       DeviceSource `json:"source"`
}

// Interface holds radio details of a wireless device. Both values arrive as
// numbers or strings depending on firmware.
type Interface struct {
	Frequency any `json:"frequency"`
	SignalDBM any `json:"signal_dbm"`
}

// DeviceSource is the URL of the node a device is attached to. The API sends
// either a plain string or an object with a url field.
type DeviceSource string

// UnmarshalJSON keeps any other shape as an empty source.
func (s *DeviceSource) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*s = ""

	switch {
	case len(data) > 0 && data[0] == '{':
		var obj struct {
			URL any `json:"url"`
		}

		if err := json.Unmarshal(data, &obj); err == nil {
			if str, ok := obj.URL.(string); ok {
				*s = DeviceSource(str)
			}
		}
	case len(data) > 0 && data[0] == '"':
		var str string

		if err := json.Unmarshal(data, &str); err == nil {
			*s = DeviceSource(str)
		}
	}

	return nil
}

// Timestamp is the raw last-seen time of a device. The API sends an ISO 8601
// string, but some firmware sends epoch seconds or milliseconds instead.
type Timestamp string

// epochMillisCutoff separates epoch seconds from epoch milliseconds.
const epochMillisCutoff = 1e11

// UnmarshalJSON stores numbers as RFC 3339 UTC and drops other shapes.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*t = ""

	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '"':
		var str string

		if err := json.Unmarshal(data, &str); err == nil {
			*t = Timestamp(str)
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var epoch float64

		if err := json.Unmarshal(data, &epoch); err != nil || epoch <= 0 || math.IsInf(epoch, 0) {
			return nil
		}

		var ts time.Time
		if epoch >= epochMillisCutoff {
			ts = time.UnixMilli(int64(epoch))
		} else {
			sec, frac := math.Modf(epoch)
			ts = time.Unix(int64(sec), int64(frac*float64(time.Second)))
		}

		*t = Timestamp(ts.UTC().Format(time.RFC3339Nano))
	}

	return nil
}

// Addresses lists the IPs of a device. A bare string is taken as a single
// address, and entries that are not strings are dropped.
type Addresses []string

func (a *Addresses) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*a = nil

	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '"':
		var str string

		if err := json.Unmarshal(data, &str); err == nil && str != "" {
			*a = Addresses{str}
		}
	case '[':
		var items []any

		if err := json.Unmarshal(data, &items); err != nil {
			return nil
		}

		for _, item := range items {
			if str, ok := item.(string); ok && str != "" {
				*a = append(*a, str)
			}
		}
	}

	return nil
}

var lastActiveLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// LastActiveTime parses LastActive. Timestamps without a zone are UTC.
func (d *RawDevice) LastActiveTime() (time.Time, bool) {
	if d.LastActive == "" {
		return time.Time{}, false
	}

	for _, layout := range lastActiveLayouts {
		if t, err := time.Parse(layout, string(d.LastActive)); err == nil {
			return t.UTC(), true
		}
	}

	return time.Time{}, false
}

// ActiveAt reports whether the device counts as present at now: connected,
// or seen within window. Some clients report connected=false while in use.
func (d *RawDevice) ActiveAt(now time.Time, window time.Duration) bool {
	if d.Connected {
		return true
	}

	t, ok := d.LastActiveTime()
	if !ok {
		return false
	}

	return now.Sub(t) <= window
}

// DisplayName returns the nickname, the hostname, or a placeholder.
func (d *RawDevice) DisplayName() string {
	if d.Nickname != "" {
		return d.Nickname
	}

	if d.Hostname != "" {
		return d.Hostname
	}

	return unknownDevice
}

// IPList joins the device addresses, or returns "N/A".
func (d *RawDevice) IPList() string {
	if len(d.IPs) == 0 {
		return "N/A"
	}

	return strings.Join(d.IPs, ", ")
}

// RawNode is a mesh access point.
type RawNode struct {
	Status          string `json:"status"`
	Serial          string `json:"serial"`
	Model           string `json:"model"`
	OSVersion       string `json:"os_version"`
	URL             string `json:"url"`
	Location        string `json:"location"`
	Gateway         bool   `json:"gateway"`
	IPAddress       string `json:"ip_address"`
	MeshQualityBars *int   `json:"mesh_quality_bars,omitempty"`
}

// IsGreen reports whether the node is fully operational.
func (n *RawNode) IsGreen() bool {
	return strings.EqualFold(strings.TrimSpace(n.Status), "green")
}

// FirmwareVersion returns OSVersion or "Unknown".
func (n *RawNode) FirmwareVersion() string {
	if n.OSVersion == "" {
		return "Unknown"
	}

	return n.OSVersion
}

// NetworkInfo is the network metadata document.
type NetworkInfo struct {
	Name  string `json:"name"`
	Speed Speed  `json:"speed"`
}

// Speed is the last measured WAN speed.
type Speed struct {
	Up   SpeedValue `json:"up"`
	Down SpeedValue `json:"down"`
}

type SpeedValue struct {
	Value float64 `json:"value"`
	Units string  `json:"units"`
}

// CapacityMbps returns up plus down, rounded to a whole number. A nil info
// has no capacity.
func (n *NetworkInfo) CapacityMbps() float64 {
	if n == nil {
		return 0
	}

	return math.Round(n.Speed.Up.Value + n.Speed.Down.Value)
}
