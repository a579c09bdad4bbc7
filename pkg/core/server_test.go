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

package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mfreeman451/meshradar/pkg/config"
	"github.com/mfreeman451/meshradar/pkg/models"
	"github.com/mfreeman451/meshradar/pkg/refresh"
	"github.com/mfreeman451/meshradar/pkg/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := &config.Config{
		ListenAddr: "127.0.0.1:0",
		DataDir:    filepath.Join(t.TempDir(), "data"),
		Networks:   []config.NetworkConfig{{ID: "net1", Name: "HQ", Token: "secret"}},
	}
	require.NoError(t, cfg.Validate())

	return cfg
}

func healthySource(t *testing.T) *telemetry.MockSource {
	t.Helper()

	source := telemetry.NewMockSource(gomock.NewController(t))

	devices := []telemetry.RawDevice{{
		Connected:    true,
		Wireless:     true,
		Manufacturer: "Apple",
		Hostname:     "iphone",
		Interface:    &telemetry.Interface{Frequency: "5.0", SignalDBM: -60.0},
	}}
	nodes := []telemetry.RawNode{{Status: "green", Serial: "SN1", OSVersion: "v7.1.2"}}

	source.EXPECT().FetchDevices(gomock.Any(), "net1").Return(devices, nil).AnyTimes()
	source.EXPECT().FetchNodes(gomock.Any(), "net1").Return(nodes, nil).AnyTimes()
	source.EXPECT().FetchNetworkInfo(gomock.Any(), "net1").Return(&telemetry.NetworkInfo{Name: "HQ"}, nil).AnyTimes()

	return source
}

func TestNewServer_RequiresConfig(t *testing.T) {
	_, err := NewServer(nil)

	assert.ErrorIs(t, err, errConfigRequired)
}

func TestServer_RefreshOnce(t *testing.T) {
	cfg := testConfig(t)

	s, err := NewServer(cfg, WithSource(healthySource(t)), WithVersion("test"))
	require.NoError(t, err)

	defer func() { assert.NoError(t, s.Stop(context.Background())) }()

	ev, err := s.RefreshOnce(context.Background())
	require.NoError(t, err)
	require.NotNil(t, ev)
	require.Len(t, ev.Networks, 1)
	assert.True(t, ev.Networks[0].Updated)
	assert.Equal(t, models.HealthHealthy, ev.Networks[0].HealthStatus)

	entry, ok := s.Engine().Network("net1")
	require.True(t, ok)
	assert.Equal(t, 1, entry.TotalDevices)

	metrics, err := s.db.GetMetrics(context.Background(), "net1", time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, metrics, 1)

	assert.FileExists(t, cfg.CacheFile)

	closed, err := s.ReconcileOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, closed)
}

func TestServer_StartStop(t *testing.T) {
	s, err := NewServer(testConfig(t), WithSource(healthySource(t)))
	require.NoError(t, err)

	done := make(chan error, 1)

	go func() { done <- s.Start(context.Background()) }()

	require.Eventually(t, func() bool {
		_, ok := s.Engine().Network("net1")

		return ok
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, s.Stop(context.Background()))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after Stop")
	}

	assert.NoError(t, s.Stop(context.Background()))
}

func TestServer_ConfigReloadUpdatesTokens(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meshradar.yaml")

	write := func(token string) {
		data := "listen_addr: 127.0.0.1:0\n" +
			"data_dir: " + filepath.Join(dir, "data") + "\n" +
			"networks:\n" +
			"  - id: net1\n" +
			"    name: HQ\n" +
			"    token: " + token + "\n"
		require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	}

	write("first")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	s, err := NewServer(cfg, WithConfigPath(path), WithSource(healthySource(t)))
	require.NoError(t, err)

	defer func() { assert.NoError(t, s.Stop(context.Background())) }()

	assert.Equal(t, "first", s.tokens.Token("net1"))

	write("second")
	require.NoError(t, s.watcher.Reload())

	assert.Equal(t, "second", s.tokens.Token("net1"))
}

func TestServer_BuildNotifier(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		enabled bool
	}{
		{name: "nothing configured", mutate: func(*config.Config) {}},
		{
			name: "disabled webhook",
			mutate: func(c *config.Config) {
				c.Webhooks = []config.WebhookConfig{{URL: "https://example.com/hook"}}
			},
		},
		{
			name: "webhook",
			mutate: func(c *config.Config) {
				c.Webhooks = []config.WebhookConfig{{Enabled: true, URL: "https://example.com/hook"}}
			},
			enabled: true,
		},
		{
			name: "discord",
			mutate: func(c *config.Config) {
				c.Webhooks = []config.WebhookConfig{{Enabled: true, Discord: true, URL: "https://discord.com/api/webhooks/1"}}
			},
			enabled: true,
		},
		{
			name: "smtp",
			mutate: func(c *config.Config) {
				c.SMTP = config.SMTPConfig{Enabled: true, Host: "smtp.example.com", Username: "alerts@example.com"}
			},
			enabled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(cfg)

			s := &Server{config: cfg, networks: cfg}

			assert.Equal(t, tt.enabled, s.buildNotifier().IsEnabled())
		})
	}
}

func TestServer_Recipient(t *testing.T) {
	cfg := testConfig(t)
	cfg.Networks[0].Email = "owner@example.com"

	s := &Server{config: cfg, networks: cfg}

	assert.Equal(t, "owner@example.com", s.recipient("net1"))
	assert.Empty(t, s.recipient("missing"))
}

func TestCycleHealthy(t *testing.T) {
	tests := []struct {
		name     string
		networks []refresh.NetworkSummary
		want     bool
	}{
		{name: "no networks", want: true},
		{name: "all updated", networks: []refresh.NetworkSummary{{NetworkID: "a", Updated: true}}, want: true},
		{
			name: "one failed",
			networks: []refresh.NetworkSummary{
				{NetworkID: "a", Error: "timeout"},
				{NetworkID: "b", Updated: true},
			},
			want: true,
		},
		{
			name: "all failed",
			networks: []refresh.NetworkSummary{
				{NetworkID: "a", Error: "timeout"},
				{NetworkID: "b", Error: "unauthorized"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cycleHealthy(refresh.CycleEvent{Networks: tt.networks}))
		})
	}
}

func TestServer_WatchHealth(t *testing.T) {
	s, err := NewServer(testConfig(t), WithSource(healthySource(t)))
	require.NoError(t, err)

	defer func() { assert.NoError(t, s.Stop(context.Background())) }()

	ctx, cancel := context.WithCancel(context.Background())
	reports := make(chan bool, 4)

	go s.WatchHealth(ctx, func(serving bool) { reports <- serving })

	assert.True(t, <-reports)

	_, err = s.RefreshOnce(context.Background())
	require.NoError(t, err)

	select {
	case serving := <-reports:
		assert.True(t, serving)
	case <-time.After(5 * time.Second):
		t.Fatal("no health report after a cycle")
	}

	cancel()
}
