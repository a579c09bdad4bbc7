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
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mfreeman451/meshradar/pkg/db"
	"github.com/mfreeman451/meshradar/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var now = time.Date(2025, 3, 8, 12, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *db.DB {
	t.Helper()

	d, err := db.New(filepath.Join(t.TempDir(), "meshradar.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, d.Close())
	})

	return d
}

func insertHourlyMetrics(t *testing.T, d *db.DB, networkID string, n int, signal *float64, util float64) {
	t.Helper()

	for i := 0; i < n; i++ {
		_, err := d.InsertMetric(context.Background(), &models.Metric{
			NetworkID:            networkID,
			Timestamp:            now.Add(-time.Duration(n-1-i) * time.Hour),
			TotalDevices:         10,
			BandwidthUtilization: util,
			AvgSignalDBM:         signal,
		})
		require.NoError(t, err)
	}
}

func TestNetworkScorecard(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)

	signal := -60.0
	insertHourlyMetrics(t, d, "n1", 48, &signal, 20)

	// One hour of an old outage falls inside the window, plus one hour of
	// an outage still in progress.
	old := &models.UptimeIncident{NetworkID: "n1", StartTime: now.Add(-8 * 24 * time.Hour)}
	old.Close(now.Add(-ScorecardWindow + time.Hour))
	_, err := d.InsertIncident(ctx, old)
	require.NoError(t, err)

	_, err = d.InsertIncident(ctx, &models.UptimeIncident{NetworkID: "n1", StartTime: now.Add(-time.Hour)})
	require.NoError(t, err)

	for _, at := range []time.Time{now.Add(-8 * 24 * time.Hour), now.Add(-2 * time.Hour), now.Add(-time.Hour)} {
		_, err := d.InsertAlert(ctx, &models.Alert{
			NetworkID: "n1", Type: models.AlertOffline, Severity: models.SeverityCritical, CreatedAt: at,
		})
		require.NoError(t, err)
	}

	card, err := NetworkScorecard(ctx, d, &models.MonitoredNetwork{ID: "n1", Name: "HQ"}, now)
	require.NoError(t, err)

	assert.Equal(t, "n1", card.NetworkID)
	assert.Equal(t, "HQ", card.Name)
	assert.Equal(t, "B", card.Grade)
	require.NotNil(t, card.Score)
	assert.InDelta(t, 80.0, *card.Score, 0.001)
	assert.InDelta(t, 2.0, card.DataDays, 0.001)
	assert.Empty(t, card.Message)

	require.NotNil(t, card.Breakdown)
	assert.Equal(t, UptimeComponent{Value: 98.8, Score: 98.8, Weight: 0.40}, card.Breakdown.Uptime)
	assert.Equal(t, SignalComponent{Value: -60, Score: 50, Weight: 0.25}, card.Breakdown.Signal)
	assert.Equal(t, IncidentComponent{Count: 2, Score: 80, Weight: 0.20}, card.Breakdown.Incidents)
	assert.Equal(t, BandwidthComponent{Utilization: 20, Score: 80, Weight: 0.15}, card.Breakdown.Bandwidth)
}

func TestNetworkScorecard_InsufficientData(t *testing.T) {
	d := newTestDB(t)
	insertHourlyMetrics(t, d, "n1", 12, nil, 0)

	card, err := NetworkScorecard(context.Background(), d, &models.MonitoredNetwork{ID: "n1"}, now)
	require.NoError(t, err)

	assert.Equal(t, "Network n1", card.Name)
	assert.Equal(t, "N/A", card.Grade)
	assert.Nil(t, card.Score)
	assert.Nil(t, card.Breakdown)
	assert.InDelta(t, 0.5, card.DataDays, 0.001)
	assert.Equal(t, "Insufficient data", card.Message)
}

func TestNetworkScorecard_NoSignalScoresWorst(t *testing.T) {
	d := newTestDB(t)
	insertHourlyMetrics(t, d, "n1", 24, nil, 0)

	card, err := NetworkScorecard(context.Background(), d, &models.MonitoredNetwork{ID: "n1"}, now)
	require.NoError(t, err)

	require.NotNil(t, card.Breakdown)
	assert.InDelta(t, -90.0, card.Breakdown.Signal.Value, 0.001)
	assert.InDelta(t, 0.0, card.Breakdown.Signal.Score, 0.001)
	// 100*0.40 + 0 + 100*0.20 + 100*0.15
	require.NotNil(t, card.Score)
	assert.InDelta(t, 75.0, *card.Score, 0.001)
	assert.Equal(t, "C", card.Grade)
	assert.InDelta(t, 1.0, card.DataDays, 0.001)
}

func TestScorecards_StoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := db.NewMockService(ctrl)

	store.EXPECT().GetMetrics(gomock.Any(), "n1", now.Add(-ScorecardWindow), time.Time{}).
		Return(nil, db.ErrFailedToQuery)

	_, err := Scorecards(context.Background(), store, []models.MonitoredNetwork{{ID: "n1"}, {ID: "n2"}}, now)
	require.ErrorIs(t, err, ErrScorecard)
	require.ErrorIs(t, err, db.ErrFailedToQuery)
}

func TestScorecards_Order(t *testing.T) {
	d := newTestDB(t)

	cards, err := Scorecards(context.Background(), d,
		[]models.MonitoredNetwork{{ID: "b", Name: "Branch"}, {ID: "a", Name: "HQ"}}, now)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "b", cards[0].NetworkID)
	assert.Equal(t, "a", cards[1].NetworkID)
	assert.InDelta(t, 0.0, cards[0].DataDays, 0.001)
}

func TestWindowUptime(t *testing.T) {
	since := now.Add(-ScorecardWindow)
	end := func(d time.Duration) *time.Time {
		v := now.Add(d)

		return &v
	}

	tests := []struct {
		name      string
		incidents []models.UptimeIncident
		want      float64
	}{
		{name: "no incidents", want: 100},
		{
			name:      "open for the whole window",
			incidents: []models.UptimeIncident{{StartTime: since.Add(-time.Hour)}},
			want:      0,
		},
		{
			name:      "half the window",
			incidents: []models.UptimeIncident{{StartTime: now.Add(-84 * time.Hour), EndTime: end(0)}},
			want:      50,
		},
		{
			name:      "ended before the window",
			incidents: []models.UptimeIncident{{StartTime: since.Add(-2 * time.Hour), EndTime: end(-ScorecardWindow - time.Hour)}},
			want:      100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, windowUptime(tt.incidents, since, now), 0.001)
		})
	}
}
