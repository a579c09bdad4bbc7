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

// Package compute pkg/compute/health.go holds the pure derived-metric
// functions used by the refresh engine and the API.
package compute

import (
	"math"

	"github.com/mfreeman451/meshradar/pkg/models"
)

const (
	degradedRatio = 0.5

	signalFloorDBM = -90.0
	signalSpanDBM  = 60.0

	compositeWeight = 0.25

	scorecardUptimeWeight    = 0.40
	scorecardSignalWeight    = 0.25
	scorecardIncidentWeight  = 0.20
	scorecardBandwidthWeight = 0.15

	incidentPenalty = 10.0
)

// ClassifyHealth derives a health status from how many of total units are
// online. Exactly half online is degraded.
func ClassifyHealth(total, online int) models.HealthStatus {
	if total == 0 || online == 0 {
		return models.HealthOffline
	}

	if float64(online)/float64(total) > degradedRatio {
		return models.HealthHealthy
	}

	return models.HealthDegraded
}

// BandwidthUtilization returns usage as a percentage of capacity in [0,100].
func BandwidthUtilization(usage, capacity float64) float64 {
	if capacity <= 0 {
		return 0
	}

	return clamp(usage/capacity*100, 0, 100)
}

// SignalScore maps -90 dBm to 0 and -30 dBm to 100.
func SignalScore(dbm float64) float64 {
	return clamp((dbm-signalFloorDBM)/signalSpanDBM*100, 0, 100)
}

// CompositeHealthScore is the equal-weighted average of node health, signal,
// uptime and bandwidth headroom, rounded and clamped to [0,100].
func CompositeHealthScore(greenNodes, totalNodes int, avgSignalDBM, uptimePct, bandwidthUtil float64) int {
	var nodeScore float64
	if totalNodes > 0 {
		nodeScore = float64(greenNodes) / float64(totalNodes) * 100
	}

	score := math.Round(
		nodeScore*compositeWeight +
			SignalScore(avgSignalDBM)*compositeWeight +
			uptimePct*compositeWeight +
			(100-bandwidthUtil)*compositeWeight,
	)

	return int(clamp(score, 0, 100))
}

// ScorecardScore weights already-normalized scores. The sum is not clamped.
func ScorecardScore(uptime, signal, incident, bandwidth float64) float64 {
	return uptime*scorecardUptimeWeight +
		signal*scorecardSignalWeight +
		incident*scorecardIncidentWeight +
		bandwidth*scorecardBandwidthWeight
}

// IncidentScore drops ten points per alert, floored at zero.
func IncidentScore(alerts int) float64 {
	return math.Max(0, 100-float64(alerts)*incidentPenalty)
}

// Grade converts a score into a letter grade.
func Grade(score float64) models.Grade {
	switch {
	case score >= 90:
		return models.GradeA
	case score >= 80:
		return models.GradeB
	case score >= 70:
		return models.GradeC
	case score >= 60:
		return models.GradeD
	default:
		return models.GradeF
	}
}

// UptimePercent is the share of samples with at least one connected device,
// rounded to one decimal. An empty history counts as fully up.
func UptimePercent(samples []models.ConnectedSample) float64 {
	if len(samples) == 0 {
		return 100
	}

	online := 0

	for _, s := range samples {
		if s.Count > 0 {
			online++
		}
	}

	return Round1(float64(online) / float64(len(samples)) * 100)
}

// FirmwareConsistent reports whether every node runs the same version.
func FirmwareConsistent(versions []string) bool {
	for i := 1; i < len(versions); i++ {
		if versions[i] != versions[0] {
			return false
		}
	}

	return true
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
