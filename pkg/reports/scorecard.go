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

// Package reports pkg/reports/scorecard.go builds read-only summaries of
// stored metrics, incidents and alerts.
package reports

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/mfreeman451/meshradar/pkg/compute"
	"github.com/mfreeman451/meshradar/pkg/models"
)

const (
	// ScorecardWindow is the period a scorecard covers.
	ScorecardWindow = 7 * 24 * time.Hour

	// MinScorecardMetrics is the fewest metric rows that yield a grade.
	MinScorecardMetrics = 24

	gradeNotAvailable = "N/A"
	insufficientData  = "Insufficient data"
	noSignalDBM       = -90.0
	samplesPerDataDay = 24.0
	secondsPerDataDay = 24 * 3600.0
	uptimeWeight      = 0.40
	signalWeight      = 0.25
	incidentWeight    = 0.20
	bandwidthWeight   = 0.15
	fullScore         = 100.0
	minDataDays       = 1.0
)

var ErrScorecard = errors.New("failed to build scorecard")

// Store is the read side of the persistent store used by reports.
type Store interface {
	GetMetrics(ctx context.Context, networkID string, start, end time.Time) ([]models.Metric, error)
	GetIncidents(ctx context.Context, networkID string, start, end time.Time) ([]models.UptimeIncident, error)
	CountAlerts(ctx context.Context, filter models.AlertFilter) (int, error)
}

type UptimeComponent struct {
	Value  float64 `json:"value"`
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
}

type SignalComponent struct {
	Value  float64 `json:"value"`
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
}

type IncidentComponent struct {
	Count  int     `json:"count"`
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
}

type BandwidthComponent struct {
	Utilization float64 `json:"utilization"`
	Score       float64 `json:"score"`
	Weight      float64 `json:"weight"`
}

// Breakdown shows how each component contributed to a score.
type Breakdown struct {
	Uptime    UptimeComponent    `json:"uptime"`
	Signal    SignalComponent    `json:"signal"`
	Incidents IncidentComponent  `json:"incidents"`
	Bandwidth BandwidthComponent `json:"bandwidth"`
}

// Scorecard grades one network over the last ScorecardWindow. Score and
// Breakdown are nil when there is not enough data.
type Scorecard struct {
	NetworkID string     `json:"id"`
	Name      string     `json:"name"`
	Grade     string     `json:"grade"`
	Score     *float64   `json:"score"`
	Breakdown *Breakdown `json:"breakdown"`
	DataDays  float64    `json:"data_days"`
	Message   string     `json:"message,omitempty"`
}

// Scorecards grades every network in order. A store failure aborts the
// whole report.
func Scorecards(
	ctx context.Context, store Store, networks []models.MonitoredNetwork, now time.Time) ([]Scorecard, error) {
	out := make([]Scorecard, 0, len(networks))

	for i := range networks {
		card, err := NetworkScorecard(ctx, store, &networks[i], now)
		if err != nil {
			return nil, err
		}

		out = append(out, card)
	}

	return out, nil
}

// NetworkScorecard grades one network.
//
//	uptime     share of the window not covered by incidents
//	signal     average signal mapped from -90..-30 dBm onto 0..100
//	incidents  100 minus 10 per alert raised in the window
//	bandwidth  100 minus average utilization
func NetworkScorecard(
	ctx context.Context, store Store, network *models.MonitoredNetwork, now time.Time) (Scorecard, error) {
	card := Scorecard{NetworkID: network.ID, Name: network.DisplayName()}
	since := now.Add(-ScorecardWindow)

	metrics, err := store.GetMetrics(ctx, network.ID, since, time.Time{})
	if err != nil {
		return card, fmt.Errorf("%w: network %s: %w", ErrScorecard, network.ID, err)
	}

	if len(metrics) < MinScorecardMetrics {
		card.Grade = gradeNotAvailable
		card.DataDays = float64(len(metrics)) / samplesPerDataDay
		card.Message = insufficientData

		return card, nil
	}

	incidents, err := store.GetIncidents(ctx, network.ID, since, now)
	if err != nil {
		return card, fmt.Errorf("%w: network %s: %w", ErrScorecard, network.ID, err)
	}

	alertCount, err := store.CountAlerts(ctx, models.AlertFilter{NetworkID: network.ID, Since: since})
	if err != nil {
		return card, fmt.Errorf("%w: network %s: %w", ErrScorecard, network.ID, err)
	}

	uptime := windowUptime(incidents, since, now)

	avgSignal := noSignalDBM
	if signals := signalValues(metrics); len(signals) > 0 {
		avgSignal = average(signals)
	}

	signalScore := compute.SignalScore(avgSignal)
	incidentScore := compute.IncidentScore(alertCount)

	utilization := make([]float64, len(metrics))
	for i := range metrics {
		utilization[i] = metrics[i].BandwidthUtilization
	}

	avgUtil := average(utilization)
	bandwidthScore := fullScore - avgUtil

	score := compute.Round1(compute.ScorecardScore(uptime, signalScore, incidentScore, bandwidthScore))

	card.Grade = string(compute.Grade(score))
	card.Score = &score
	card.DataDays = dataDays(metrics)
	card.Breakdown = &Breakdown{
		Uptime: UptimeComponent{
			Value:  compute.Round1(uptime),
			Score:  compute.Round1(uptime),
			Weight: uptimeWeight,
		},
		Signal: SignalComponent{
			Value:  compute.Round1(avgSignal),
			Score:  compute.Round1(signalScore),
			Weight: signalWeight,
		},
		Incidents: IncidentComponent{
			Count:  alertCount,
			Score:  compute.Round1(incidentScore),
			Weight: incidentWeight,
		},
		Bandwidth: BandwidthComponent{
			Utilization: compute.Round1(avgUtil),
			Score:       compute.Round1(bandwidthScore),
			Weight:      bandwidthWeight,
		},
	}

	return card, nil
}

// windowUptime returns the percentage of [since, now] not covered by any
// incident. Open incidents run until now.
func windowUptime(incidents []models.UptimeIncident, since, now time.Time) float64 {
	total := now.Sub(since).Seconds()
	if total <= 0 {
		return fullScore
	}

	var downtime float64

	for i := range incidents {
		start := incidents[i].StartTime
		if start.Before(since) {
			start = since
		}

		end := now
		if incidents[i].EndTime != nil && incidents[i].EndTime.Before(now) {
			end = *incidents[i].EndTime
		}

		if start.Before(end) {
			downtime += end.Sub(start).Seconds()
		}
	}

	return math.Max(0, math.Min(fullScore, (total-downtime)/total*fullScore))
}

func signalValues(metrics []models.Metric) []float64 {
	var out []float64

	for i := range metrics {
		if metrics[i].AvgSignalDBM != nil {
			out = append(out, *metrics[i].AvgSignalDBM)
		}
	}

	return out
}

// dataDays is the span of the metrics in days, at least one.
func dataDays(metrics []models.Metric) float64 {
	span := metrics[len(metrics)-1].Timestamp.Sub(metrics[0].Timestamp).Seconds() / secondsPerDataDay

	return math.Max(minDataDays, compute.Round1(span))
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}
