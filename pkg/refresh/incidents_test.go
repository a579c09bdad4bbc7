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

package refresh

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mfreeman451/meshradar/pkg/config"
	"github.com/mfreeman451/meshradar/pkg/db"
	"github.com/mfreeman451/meshradar/pkg/models"
	"github.com/mfreeman451/meshradar/pkg/telemetry"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// sqliteFixture runs the engine against a real store and a scripted source.
type sqliteFixture struct {
	store  *db.DB
	snaps  *MockSnapshotStore
	clock  *testClock
	engine *Engine

	// health selects what the two mesh nodes report on the next fetch.
	health models.HealthStatus
}

func nodesFor(health models.HealthStatus) []telemetry.RawNode {
	statuses := map[models.HealthStatus][2]string{
		models.HealthHealthy:  {"green", "green"},
		models.HealthDegraded: {"green", "red"},
		models.HealthOffline:  {"red", "red"},
	}[health]

	return []telemetry.RawNode{
		{Status: statuses[0], OSVersion: "v7.1.2"},
		{Status: statuses[1], OSVersion: "v7.1.2"},
	}
}

func newSQLiteFixture(t *testing.T, networks ...models.MonitoredNetwork) *sqliteFixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	store, err := db.New(filepath.Join(t.TempDir(), "meshradar.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})

	f := &sqliteFixture{
		store:  store,
		snaps:  NewMockSnapshotStore(ctrl),
		clock:  newTestClock(t0),
		health: models.HealthHealthy,
	}

	source := telemetry.NewMockSource(ctrl)
	source.EXPECT().FetchDevices(gomock.Any(), gomock.Any()).Return(connectedDevices(4), nil).AnyTimes()
	source.EXPECT().FetchNodes(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, string) ([]telemetry.RawNode, error) {
			return nodesFor(f.health), nil
		}).AnyTimes()
	source.EXPECT().FetchNetworkInfo(gomock.Any(), gomock.Any()).Return(testInfo(), nil).AnyTimes()
	f.snaps.EXPECT().Save(gomock.Any()).Return(nil).AnyTimes()

	engine, err := NewEngine(Options{
		Store:     store,
		Source:    source,
		Networks:  config.StaticNetworks(networks),
		Snapshots: f.snaps,
		Now:       f.clock.Now,
	})
	require.NoError(t, err)

	f.engine = engine

	return f
}

func (f *sqliteFixture) cycle(t *testing.T, health models.HealthStatus) {
	t.Helper()

	f.health = health
	require.True(t, f.engine.RefreshCycle(context.Background()))
	f.clock.Advance(time.Minute)
}

func TestIncidents_OfflineRecoveryLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newSQLiteFixture(t, network("n1", "HQ"))

	f.cycle(t, models.HealthHealthy)

	open, err := f.store.OpenIncidents(ctx, "n1")
	require.NoError(t, err)
	assert.Empty(t, open)

	wentOffline := f.clock.Now()
	f.cycle(t, models.HealthOffline)

	open, err = f.store.OpenIncidents(ctx, "n1")
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.True(t, open[0].StartTime.Equal(wentOffline))
	assert.Equal(t, 4, open[0].AffectedDevices)

	entry, _ := f.engine.Network("n1")
	assert.Equal(t, models.HealthOffline, entry.HealthStatus)
	require.NotNil(t, entry.OfflineSince)
	assert.True(t, entry.OfflineSince.Equal(wentOffline))

	// Staying offline neither opens a second incident nor moves the start.
	f.cycle(t, models.HealthOffline)

	open, err = f.store.OpenIncidents(ctx, "n1")
	require.NoError(t, err)
	require.Len(t, open, 1)

	entry, _ = f.engine.Network("n1")
	require.NotNil(t, entry.OfflineSince)
	assert.True(t, entry.OfflineSince.Equal(wentOffline))

	recovered := f.clock.Now()
	f.cycle(t, models.HealthHealthy)

	open, err = f.store.OpenIncidents(ctx, "n1")
	require.NoError(t, err)
	assert.Empty(t, open)

	all, err := f.store.GetIncidents(ctx, "n1", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.NotNil(t, all[0].EndTime)
	assert.True(t, all[0].EndTime.Equal(recovered))
	require.NotNil(t, all[0].DurationSeconds)
	assert.Equal(t, int64(recovered.Sub(wentOffline)/time.Second), *all[0].DurationSeconds)

	entry, _ = f.engine.Network("n1")
	assert.Nil(t, entry.OfflineSince)
	assert.Equal(t, models.HealthHealthy, entry.PrevHealth)

	alerts, err := f.store.GetAlerts(ctx, models.AlertFilter{NetworkID: "n1"})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.AlertOffline, alerts[0].Type)

	collect := f.engine.collect
	assert.InDelta(t, 1.0, testutil.ToFloat64(collect.Incidents.WithLabelValues("open")), 0.001)
	assert.InDelta(t, 1.0, testutil.ToFloat64(collect.Incidents.WithLabelValues("close")), 0.001)

	metrics, err := f.store.GetMetrics(ctx, "n1", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, metrics, 4)
}

func TestIncidents_FirstSightOfflineOpensNothing(t *testing.T) {
	ctx := context.Background()
	f := newSQLiteFixture(t, network("n1", "HQ"))

	f.cycle(t, models.HealthOffline)

	open, err := f.store.OpenIncidents(ctx, "n1")
	require.NoError(t, err)
	assert.Empty(t, open)

	entry, _ := f.engine.Network("n1")
	assert.Equal(t, models.HealthOffline, entry.PrevHealth)
	assert.NotNil(t, entry.OfflineSince)

	// Recovering from an offline state nobody saw start is harmless.
	f.cycle(t, models.HealthHealthy)

	all, err := f.store.GetIncidents(ctx, "n1", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestIncidents_DegradedIsNotAnOutage(t *testing.T) {
	ctx := context.Background()
	f := newSQLiteFixture(t, network("n1", "HQ"))

	f.cycle(t, models.HealthHealthy)
	f.cycle(t, models.HealthDegraded)
	f.cycle(t, models.HealthOffline)

	open, err := f.store.OpenIncidents(ctx, "n1")
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.True(t, open[0].StartTime.Equal(t0.Add(2*time.Minute)))
}

func TestIncidents_StrayOpenIncidentIsReplaced(t *testing.T) {
	ctx := context.Background()
	f := newSQLiteFixture(t, network("n1", "HQ"))

	f.cycle(t, models.HealthHealthy)

	stray := &models.UptimeIncident{NetworkID: "n1", StartTime: t0.Add(-time.Hour)}
	_, err := f.store.InsertIncident(ctx, stray)
	require.NoError(t, err)

	f.cycle(t, models.HealthOffline)

	open, err := f.store.OpenIncidents(ctx, "n1")
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.NotEqual(t, stray.ID, open[0].ID)
}

func TestIncidents_OrphanClosedOnceNetworkIsSeenUp(t *testing.T) {
	tests := []struct {
		name     string
		first    models.HealthStatus
		wantOpen int
	}{
		{name: "healthy", first: models.HealthHealthy},
		{name: "degraded", first: models.HealthDegraded},
		{name: "offline keeps it open", first: models.HealthOffline, wantOpen: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newSQLiteFixture(t, network("n1", "HQ"))

			orphan := &models.UptimeIncident{NetworkID: "n1", StartTime: t0.Add(-48 * time.Hour)}
			_, err := f.store.InsertIncident(ctx, orphan)
			require.NoError(t, err)

			// No snapshot survived, so startup cannot judge the incident.
			closed, err := f.engine.Reconcile(ctx)
			require.NoError(t, err)
			assert.Zero(t, closed)

			f.cycle(t, tt.first)
			f.cycle(t, tt.first)

			open, err := f.store.OpenIncidents(ctx, "n1")
			require.NoError(t, err)
			require.Len(t, open, tt.wantOpen)

			if tt.wantOpen > 0 {
				return
			}

			all, err := f.store.GetIncidents(ctx, "", time.Time{}, time.Time{})
			require.NoError(t, err)
			require.Len(t, all, 1)
			require.NotNil(t, all[0].EndTime)
			assert.True(t, all[0].EndTime.Equal(t0), "closed by the first cycle")

			entry, _ := f.engine.Network("n1")
			assert.Nil(t, entry.OfflineSince)
		})
	}
}

func TestIncidents_OfflineSinceTracksCurrentOutage(t *testing.T) {
	ctx := context.Background()
	f := newSQLiteFixture(t, network("n1", "HQ"))

	f.cycle(t, models.HealthHealthy)
	f.cycle(t, models.HealthOffline)
	f.cycle(t, models.HealthOffline)
	f.cycle(t, models.HealthHealthy)

	f.clock.Advance(72 * time.Hour)

	secondOutage := f.clock.Now()
	f.cycle(t, models.HealthOffline)
	f.cycle(t, models.HealthOffline)

	offline, err := f.store.GetAlerts(ctx, models.AlertFilter{NetworkID: "n1", Type: models.AlertOffline})
	require.NoError(t, err)
	require.NotEmpty(t, offline)
	assert.True(t, offline[len(offline)-1].CreatedAt.Before(secondOutage), "an alert of the first outage is on record")

	entry, _ := f.engine.Network("n1")
	require.NotNil(t, entry.OfflineSince)
	assert.True(t, entry.OfflineSince.Equal(secondOutage), "offline since %s", entry.OfflineSince)
}
