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

package config

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestDuration_Unmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{name: "string", input: `"90s"`, want: 90 * time.Second},
		{name: "nanoseconds", input: `1000000000`, want: time.Second},
		{name: "bad_string", input: `"soon"`, wantErr: true},
		{name: "bool", input: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration

			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, time.Duration(d))
		})
	}
}

func TestLoad_JSONDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.json", `{
		"data_dir": "/var/lib/meshradar",
		"networks": [
			{"id": "111", "name": "HQ", "email": "ops@example.com", "token": "t-111"},
			{"id": "222", "active": false}
		]
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.ListenAddr)
	assert.Equal(t, "/var/lib/meshradar/meshradar.db", cfg.DBPath)
	assert.Equal(t, "/var/lib/meshradar/data_cache.json", cfg.CacheFile)
	assert.Equal(t, "api-user.e2ro.com", cfg.APIURL)
	assert.Equal(t, 60*time.Second, time.Duration(cfg.RefreshInterval))
	assert.Equal(t, time.UTC, cfg.Location())
	assert.InDelta(t, 5.0, cfg.RateLimit.PerSecond, 0)

	active := cfg.ActiveNetworks()
	require.Len(t, active, 1)
	assert.Equal(t, "111", active[0].ID)
	assert.Equal(t, "HQ", active[0].DisplayName())
	assert.True(t, active[0].Active)

	assert.Equal(t, map[string]string{"111": "t-111"}, cfg.Tokens())

	n, ok := cfg.Network("222")
	require.True(t, ok)
	assert.False(t, n.IsActive())
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
listen_addr: ":8080"
refresh_interval: 2m
timezone: America/Chicago
networks:
  - id: "111"
    name: Store
    address:
      city: Austin
      latitude: 30.27
webhooks:
  - enabled: true
    url: https://hooks.example.com/x
    cooldown: 15m
    discord: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 2*time.Minute, time.Duration(cfg.RefreshInterval))
	assert.Equal(t, "America/Chicago", cfg.Location().String())
	require.Len(t, cfg.Networks, 1)
	require.NotNil(t, cfg.Networks[0].Address)
	assert.Equal(t, "Austin", cfg.Networks[0].Address.City)
	require.Len(t, cfg.Webhooks, 1)
	assert.Equal(t, 15*time.Minute, time.Duration(cfg.Webhooks[0].Cooldown))
	assert.True(t, cfg.Webhooks[0].Discord)
}

func TestLoad_LegacySingleNetwork(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.json", `{"network_id": "987"}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	active := cfg.ActiveNetworks()
	require.Len(t, active, 1)
	assert.Equal(t, "987", active[0].ID)
	assert.Equal(t, "Primary Network", active[0].Name)
}

func TestLoad_LegacyIgnoredWhenNetworksPresent(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.json", `{"network_id": "987", "networks": [{"id": "1"}]}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Networks, 1)
	assert.Equal(t, "1", cfg.Networks[0].ID)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "duplicate_ids", content: `{"networks": [{"id": "1"}, {"id": "1"}]}`},
		{name: "missing_id", content: `{"networks": [{"name": "x"}]}`},
		{name: "path_in_id", content: `{"networks": [{"id": "../etc"}]}`},
		{name: "bad_email", content: `{"networks": [{"id": "1", "email": "nope"}]}`},
		{name: "bad_timezone", content: `{"timezone": "Mars/Olympus"}`},
		{name: "bad_webhook_url", content: `{"webhooks": [{"enabled": true, "url": "not a url"}]}`},
		{name: "smtp_without_host", content: `{"smtp": {"enabled": true}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "config.json", tt.content)

			_, err := Load(path)
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoadFile_Errors(t *testing.T) {
	var cfg Config

	require.Error(t, LoadFile(filepath.Join(t.TempDir(), "missing.json"), &cfg))

	path := writeFile(t, t.TempDir(), "config.json", `{`)
	require.Error(t, LoadAndValidate(path, &cfg))
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"MESHRADAR_SMTP_HOST":      "smtp.example.com",
		"MESHRADAR_SMTP_PORT":      "2525",
		"MESHRADAR_SMTP_USER":      "alerts@example.com",
		"MESHRADAR_NOTIFY_ENABLED": "true",
	}

	cfg := &Config{SMTP: SMTPConfig{Password: "keep"}}
	cfg.ApplyEnv(func(k string) string { return env[k] })

	assert.True(t, cfg.SMTP.Enabled)
	assert.Equal(t, "smtp.example.com", cfg.SMTP.Host)
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.Equal(t, "alerts@example.com", cfg.SMTP.Username)
	assert.Equal(t, "keep", cfg.SMTP.Password)
}

func TestWatcher_Reload(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.json", `{"networks": [{"id": "1"}]}`)

	initial, err := Load(path)
	require.NoError(t, err)

	w, err := NewWatcher(path, initial)
	require.NoError(t, err)

	defer func() { _ = w.Stop() }()

	var reloaded []*Config

	w.OnReload(func(c *Config) { reloaded = append(reloaded, c) })

	writeFile(t, dir, "config.json", `{"networks": [{"id": "1"}, {"id": "2"}]}`)
	require.NoError(t, w.Reload())
	assert.Len(t, w.ActiveNetworks(), 2)
	require.Len(t, reloaded, 1)

	writeFile(t, dir, "config.json", `{"networks": [{"id": "1"}, {"id": "1"}]}`)
	require.Error(t, w.Reload())
	assert.Len(t, w.ActiveNetworks(), 2, "invalid file keeps the previous config")
	assert.Len(t, reloaded, 1)
}

func TestWatcher_StartPicksUpWrites(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.json", `{"networks": [{"id": "1"}]}`)

	initial, err := Load(path)
	require.NoError(t, err)

	w, err := NewWatcher(path, initial)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)

		_ = w.Start(ctx)
	}()

	defer func() {
		cancel()
		<-done
		_ = w.Stop()
	}()

	// Writes made before the directory watch is registered are missed, so
	// keep rewriting until one is observed.
	assert.Eventually(t, func() bool {
		writeFile(t, dir, "config.json", `{"networks": [{"id": "1"}, {"id": "2"}, {"id": "3"}]}`)

		return len(w.ActiveNetworks()) == 3
	}, 5*time.Second, 50*time.Millisecond)
}
