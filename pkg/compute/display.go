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

package compute

// Gauge colours used by the dashboard.
const (
	ColorGreen  = "#4CAF50"
	ColorYellow = "#FFC107"
	ColorRed    = "#F44336"

	maxSignalBars = 5
)

// SignalBarData describes how to draw a 5-bar mesh quality indicator.
type SignalBarData struct {
	Filled   int    `json:"filled"`
	Unfilled int    `json:"unfilled"`
	Color    string `json:"color"`
}

// HealthGaugeColor picks the colour of a health score gauge.
func HealthGaugeColor(score float64) string {
	switch {
	case score >= 80:
		return ColorGreen
	case score >= 50:
		return ColorYellow
	default:
		return ColorRed
	}
}

// BandwidthGaugeColor picks the colour of a bandwidth utilization gauge.
func BandwidthGaugeColor(utilization float64) string {
	switch {
	case utilization <= 60:
		return ColorGreen
	case utilization <= 80:
		return ColorYellow
	default:
		return ColorRed
	}
}

// FilterNonZero drops histogram buckets with no members.
func FilterNonZero[K comparable](counts map[K]int) map[K]int {
	out := make(map[K]int, len(counts))

	for k, v := range counts {
		if v > 0 {
			out[k] = v
		}
	}

	return out
}

// SignalBars clamps a mesh quality to 1..5 bars.
func SignalBars(meshQuality int) SignalBarData {
	filled := max(1, min(maxSignalBars, meshQuality))

	color := ColorRed

	switch {
	case filled >= 4:
		color = ColorGreen
	case filled >= 2:
		color = ColorYellow
	}

	return SignalBarData{Filled: filled, Unfilled: maxSignalBars - filled, Color: color}
}
