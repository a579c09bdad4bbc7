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

package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mfreeman451/meshradar/pkg/config"
	"github.com/mfreeman451/meshradar/pkg/db"
	"github.com/mfreeman451/meshradar/pkg/models"
	"github.com/mfreeman451/meshradar/pkg/refresh"
	"github.com/mfreeman451/meshradar/pkg/reports"
	"github.com/mfreeman451/meshradar/pkg/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type testServer struct {
	engine *MockEngine
	store  *db.DB
	tokens *telemetry.MockTokenProvider
	reg    *prometheus.Registry
	server *Server
}

func newTestServer(t *testing.T, networks ...models.MonitoredNetwork) *testServer {
	t.Helper()

	ctrl := gomock.NewController(t)

	store, err := db.New(filepath.Join(t.TempDir(), "meshradar.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})

	ts := &testServer{
		engine: NewMockEngine(ctrl),
		store:  store,
		tokens: telemetry.NewMockTokenProvider(ctrl),
		reg:    prometheus.NewRegistry(),
	}

	ts.server, err = NewServer(Options{
		Engine:   ts.engine,
		Store:    store,
		Networks: config.StaticNetworks(networks),
		Tokens:   ts.tokens,
		Gatherer: ts.reg,
		Version:  "1.2.3",
		Now:      func() time.Time { return now },
	})
	require.NoError(t, err)

	return ts
}

func (ts *testServer) do(t *testing.T, method, target string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(rec, httptest.NewRequest(method, target, http.NoBody))

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))

	return v
}

func testCache() *models.Cache {
	c := models.NewCache()

	entry := models.NewNetworkCache("n1", "HQ")
	entry.HealthStatus = models.HealthHealthy
	entry.TotalDevices = 7
	entry.Uptime24h = 99.5
	entry.LastUpdate = &now
	c.Networks["n1"] = entry

	for i := 0; i < 5; i++ {
		at := now.Add(-time.Duration(4-i) * time.Hour)
		c.Combined.Connected.Add(models.ConnectedSample{Timestamp: at, Count: 7})
		c.Combined.Signal.Add(models.SignalSample{Timestamp: at, AvgDBM: -60})
	}

	c.Combined.TotalDevices = 7
	c.Combined.ActiveNetworks = 1

	return c
}

func TestNewServer_Requires(t *testing.T) {
	ctrl := gomock.NewController(t)

	_, err := NewServer(Options{Store: db.NewMockService(ctrl)})
	require.ErrorIs(t, err, errEngineRequired)

	_, err = NewServer(Options{Engine: NewMockEngine(ctrl)})
	require.ErrorIs(t, err, errStoreRequired)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/health")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, HealthResponse{Status: "healthy", Version: "1.2.3"}, decode[HealthResponse](t, rec))
}

func TestPreflight(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodOptions, "/api/refresh")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestRefresh(t *testing.T) {
	tests := []struct {
		name string
		ran  bool
		want RefreshResponse
	}{
		{name: "ran", ran: true, want: RefreshResponse{Success: true, Refreshed: true, Message: "Cache refreshed"}},
		{name: "in progress", want: RefreshResponse{Success: true, Message: "Cache refresh already in progress"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.engine.EXPECT().RefreshCycle(gomock.Any()).Return(tt.ran)

			rec := ts.do(t, http.MethodPost, "/api/refresh")

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, decode[RefreshResponse](t, rec))
		})
	}
}

func TestRefresh_RejectsGet(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/refresh")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRoutes_MethodMismatch(t *testing.T) {
	tests := []struct {
		method string
		path   string
		want   int
	}{
		{method: http.MethodDelete, path: "/api/networks", want: http.StatusMethodNotAllowed},
		{method: http.MethodPost, path: "/api/dashboard/24", want: http.StatusMethodNotAllowed},
		{method: http.MethodGet, path: "/api/alerts/7/acknowledge", want: http.StatusMethodNotAllowed},
		{method: http.MethodPut, path: "/health", want: http.StatusMethodNotAllowed},
		{method: http.MethodGet, path: "/api/nope", want: http.StatusNotFound},
		{method: http.MethodGet, path: "/api/dashboard/abc", want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			ts := newTestServer(t)

			rec := ts.do(t, tt.method, tt.path)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestDashboard(t *testing.T) {
	ts := newTestServer(t)
	ts.engine.EXPECT().Snapshot().Return(testCache()).Times(2)

	rec := ts.do(t, http.MethodGet, "/api/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)

	var full struct {
		Connected      []models.ConnectedSample `json:"connected_users"`
		TotalDevices   int                      `json:"total_devices"`
		ActiveNetworks int                      `json:"active_networks"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&full))
	assert.Len(t, full.Connected, 5)
	assert.Equal(t, 7, full.TotalDevices)
	assert.Equal(t, 1, full.ActiveNetworks)

	rec = ts.do(t, http.MethodGet, "/api/dashboard/2")
	require.Equal(t, http.StatusOK, rec.Code)

	var windowed struct {
		Connected []models.ConnectedSample `json:"connected_users"`
		Signal    []models.SignalSample    `json:"signal_strength_avg"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&windowed))
	assert.Len(t, windowed.Connected, 3)
	assert.Len(t, windowed.Signal, 3)
	assert.True(t, windowed.Connected[0].Timestamp.Equal(now.Add(-2*time.Hour)))
}

func TestDashboardWindow_BadHours(t *testing.T) {
	ts := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodGet, "/api/dashboard/0").Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/dashboard/abc").Code)
}

func TestNetworks(t *testing.T) {
	ts := newTestServer(t,
		models.MonitoredNetwork{ID: "n1", Name: "HQ", Active: true},
		models.MonitoredNetwork{ID: "n2", Name: "Branch", Active: true},
	)
	ts.engine.EXPECT().Snapshot().Return(testCache())
	ts.tokens.EXPECT().Token("n1").Return("secret")
	ts.tokens.EXPECT().Token("n2").Return("")

	rec := ts.do(t, http.MethodGet, "/api/networks")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[NetworksResponse](t, rec)
	require.Len(t, resp.Networks, 2)

	assert.Equal(t, "n1", resp.Networks[0].ID)
	assert.True(t, resp.Networks[0].Authenticated)
	assert.Equal(t, models.HealthHealthy, resp.Networks[0].HealthStatus)
	require.NotNil(t, resp.Networks[0].LastUpdate)

	assert.Equal(t, "Branch", resp.Networks[1].Name)
	assert.False(t, resp.Networks[1].Authenticated)
	assert.Equal(t, models.HealthUnknown, resp.Networks[1].HealthStatus)
	assert.Nil(t, resp.Networks[1].LastUpdate)
}

func TestNetwork(t *testing.T) {
	ts := newTestServer(t)
	cache := testCache()

	ts.engine.EXPECT().Network("n1").Return(cache.Networks["n1"], true)
	ts.engine.EXPECT().Network("nope").Return(nil, false)

	rec := ts.do(t, http.MethodGet, "/api/networks/n1")
	require.Equal(t, http.StatusOK, rec.Code)

	var entry struct {
		NetworkID    string `json:"network_id"`
		TotalDevices int    `json:"total_devices"`
		HealthStatus string `json:"health_status"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&entry))
	assert.Equal(t, "n1", entry.NetworkID)
	assert.Equal(t, 7, entry.TotalDevices)
	assert.Equal(t, "healthy", entry.HealthStatus)

	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/networks/nope").Code)
}

func insertAlerts(t *testing.T, store *db.DB) []int64 {
	t.Helper()

	var ids []int64

	for i, networkID := range []string{"n1", "n1", "n2"} {
		id, err := store.InsertAlert(context.Background(), &models.Alert{
			NetworkID: networkID,
			Type:      models.AlertOffline,
			Severity:  models.SeverityCritical,
			Message:   networkID + " has gone offline",
			CreatedAt: now.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)

		ids = append(ids, id)
	}

	return ids
}

func TestAlerts(t *testing.T) {
	ts := newTestServer(t)
	ids := insertAlerts(t, ts.store)

	require.NoError(t, ts.store.AcknowledgeAlert(context.Background(), ids[2], now))

	tests := []struct {
		name    string
		target  string
		wantIDs []int64
	}{
		{name: "all", target: "/api/alerts", wantIDs: []int64{ids[2], ids[1], ids[0]}},
		{name: "network", target: "/api/alerts?network_id=n1", wantIDs: []int64{ids[1], ids[0]}},
		{name: "limit", target: "/api/alerts?limit=1", wantIDs: []int64{ids[2]}},
		{name: "unknown network", target: "/api/alerts?network_id=zz", wantIDs: []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodGet, tt.target)
			require.Equal(t, http.StatusOK, rec.Code)

			resp := decode[AlertsResponse](t, rec)

			got := make([]int64, 0, len(resp.Alerts))
			for _, a := range resp.Alerts {
				got = append(got, a.ID)
			}

			assert.Equal(t, tt.wantIDs, got)
			assert.Equal(t, 2, resp.UnacknowledgedCount)
		})
	}

	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodGet, "/api/alerts?limit=-1").Code)
}

func TestAcknowledge(t *testing.T) {
	ts := newTestServer(t)
	ids := insertAlerts(t, ts.store)

	target := "/api/alerts/" + strconv.FormatInt(ids[0], 10) + "/acknowledge"

	rec := ts.do(t, http.MethodPost, target)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, MessageResponse{Success: true, Message: "Alert acknowledged"}, decode[MessageResponse](t, rec))

	alerts, err := ts.store.GetAlerts(context.Background(), models.AlertFilter{NetworkID: "n1"})
	require.NoError(t, err)

	for _, a := range alerts {
		if a.ID == ids[0] {
			assert.True(t, a.Acknowledged)
			require.NotNil(t, a.AcknowledgedAt)
			assert.True(t, a.AcknowledgedAt.Equal(now))
		}
	}

	rec = ts.do(t, http.MethodPost, "/api/alerts/9999/acknowledge")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, MessageResponse{Message: "Alert not found"}, decode[MessageResponse](t, rec))
}

func TestUptime(t *testing.T) {
	ts := newTestServer(t)
	cache := testCache()

	ts.engine.EXPECT().Network("n1").Return(cache.Networks["n1"], true)
	ts.engine.EXPECT().Network("n9").Return(nil, false)

	rec := ts.do(t, http.MethodGet, "/api/uptime/n1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, reports.UptimeSummary{
		NetworkID: "n1", Uptime24h: 99.5, UptimeCurrent: 99.5, HealthStatus: "healthy",
	}, decode[reports.UptimeSummary](t, rec))

	rec = ts.do(t, http.MethodGet, "/api/uptime/n9")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "unknown", decode[reports.UptimeSummary](t, rec).HealthStatus)
}

func TestScorecard(t *testing.T) {
	ts := newTestServer(t, models.MonitoredNetwork{ID: "n1", Name: "HQ", Active: true})

	rec := ts.do(t, http.MethodGet, "/api/reports/scorecard")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[ScorecardResponse](t, rec)
	require.Len(t, resp.Networks, 1)
	assert.Equal(t, "N/A", resp.Networks[0].Grade)
	assert.Equal(t, "Insufficient data", resp.Networks[0].Message)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "meshradar_test_total", Help: "test"})
	ts.reg.MustRegister(counter)
	counter.Add(3)

	rec := ts.do(t, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "meshradar_test_total 3")
}

func TestEventStream(t *testing.T) {
	ts := newTestServer(t)

	events := make(chan refresh.CycleEvent, 1)
	canceled := make(chan struct{})

	ts.engine.EXPECT().Subscribe().Return((<-chan refresh.CycleEvent)(events), func() { close(canceled) })

	srv := httptest.NewServer(ts.server.Handler())
	defer srv.Close()

	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/events", nil)
	require.NoError(t, err)

	defer func() {
		_ = resp.Body.Close()
	}()

	events <- refresh.CycleEvent{
		CycleID:  "cycle-1",
		Networks: []refresh.NetworkSummary{{NetworkID: "n1", HealthStatus: models.HealthHealthy, Updated: true}},
	}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var ev refresh.CycleEvent
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "cycle-1", ev.CycleID)
	require.Len(t, ev.Networks, 1)
	assert.True(t, ev.Networks[0].Updated)

	require.NoError(t, conn.Close())

	select {
	case <-canceled:
	case <-time.After(5 * time.Second):
		t.Fatal("subscription was not canceled after the client left")
	}
}

func TestServeAndShutdown(t *testing.T) {
	ctrl := gomock.NewController(t)

	server, err := NewServer(Options{
		Engine:         NewMockEngine(ctrl),
		Store:          db.NewMockService(ctrl),
		Version:        "test",
		MaxConnections: 2,
	})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	errCh := make(chan error, 1)

	go func() {
		errCh <- server.Serve(ln)
	}()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, server.Shutdown(ctx))
	require.NoError(t, <-errCh)
}

func TestStart_ListenError(t *testing.T) {
	ctrl := gomock.NewController(t)

	server, err := NewServer(Options{Engine: NewMockEngine(ctrl), Store: db.NewMockService(ctrl)})
	require.NoError(t, err)

	err = server.Start("not-an-address")
	require.ErrorIs(t, err, ErrListen)
}
