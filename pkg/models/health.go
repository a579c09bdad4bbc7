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

// Package models pkg/models/health.go
package models

// HealthStatus is the derived state of a monitored network for one cycle.
type HealthStatus string

const (
	HealthUnknown  HealthStatus = ""
	HealthHealthy  HealthStatus = "healthy"
	HealthDegraded HealthStatus = "degraded"
	HealthOffline  HealthStatus = "offline"
)

func (h HealthStatus) String() string {
	if h == HealthUnknown {
		return "unknown"
	}

	return string(h)
}

// IsKnown reports whether the status was observed at least once.
func (h HealthStatus) IsKnown() bool {
	return h == HealthHealthy || h == HealthDegraded || h == HealthOffline
}

// DeviceOS is the coarse operating-system class of a client device.
type DeviceOS string

const (
	OSAmazon    DeviceOS = "Amazon"
	OSiOS       DeviceOS = "iOS"
	OSAndroid   DeviceOS = "Android"
	OSWindows   DeviceOS = "Windows"
	OSGaming    DeviceOS = "Gaming"
	OSStreaming DeviceOS = "Streaming"
	OSOther     DeviceOS = "Other"
)

// AllDeviceOS lists every OS class in histogram order.
var AllDeviceOS = []DeviceOS{OSiOS, OSAndroid, OSWindows, OSAmazon, OSGaming, OSStreaming, OSOther}

// FrequencyBand is the radio band a wireless client is associated on.
type FrequencyBand string

const (
	Band24GHz   FrequencyBand = "2.4GHz"
	Band5GHz    FrequencyBand = "5GHz"
	Band6GHz    FrequencyBand = "6GHz"
	BandWired   FrequencyBand = "Wired"
	BandUnknown FrequencyBand = "Unknown"
)

// AllBands lists the bands tracked in the frequency histogram.
var AllBands = []FrequencyBand{Band24GHz, Band5GHz, Band6GHz}

// SignalQuality is a human label for a signal level.
type SignalQuality string

const (
	SignalExcellent SignalQuality = "Excellent"
	SignalVeryGood  SignalQuality = "Very Good"
	SignalGood      SignalQuality = "Good"
	SignalFair      SignalQuality = "Fair"
	SignalPoor      SignalQuality = "Poor"
	SignalWired     SignalQuality = "Wired"
	SignalUnknown   SignalQuality = "Unknown"
)

// Grade is a letter grade derived from a scorecard score.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)
