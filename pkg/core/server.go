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

// Package core pkg/core/server.go wires the refresh service together.
package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/mfreeman451/meshradar/pkg/alerts"
	"github.com/mfreeman451/meshradar/pkg/api"
	"github.com/mfreeman451/meshradar/pkg/cache"
	"github.com/mfreeman451/meshradar/pkg/config"
	"github.com/mfreeman451/meshradar/pkg/db"
	"github.com/mfreeman451/meshradar/pkg/lifecycle"
	"github.com/mfreeman451/meshradar/pkg/refresh"
	"github.com/mfreeman451/meshradar/pkg/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const dataDirMode = 0o750

var (
	errConfigRequired = errors.New("core: configuration is required")
	ErrRefreshRunning = errors.New("cache refresh already in progress")
)

var (
	_ CoreService              = (*Server)(nil)
	_ lifecycle.Service        = (*Server)(nil)
	_ lifecycle.HealthReporter = (*Server)(nil)
)

// WithConfigPath reloads the configuration whenever the file changes.
func WithConfigPath(path string) Option {
	return func(o *options) {
		o.configPath = path
	}
}

// WithVersion sets the version reported by the API and sent to the
// telemetry API.
func WithVersion(version string) Option {
	return func(o *options) {
		o.version = version
	}
}

// WithSource replaces the telemetry API client.
func WithSource(source telemetry.Source) Option {
	return func(o *options) {
		o.source = source
	}
}

// NewServer opens the store and builds every component from cfg. Nothing
// runs until Start, RefreshOnce or ReconcileOnce.
func NewServer(cfg *config.Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, errConfigRequired
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	if cfg.DataDir != "" {
		if err := os.MkdirAll(cfg.DataDir, dataDirMode); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	database, err := db.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:   cfg,
		networks: cfg,
		db:       database,
		tokens:   telemetry.NewTokenStore(cfg.DataDir, cfg.Tokens()),
		registry: prometheus.NewRegistry(),
	}

	if o.configPath != "" {
		s.watcher, err = config.NewWatcher(o.configPath, cfg)
		if err != nil {
			_ = database.Close()

			return nil, fmt.Errorf("failed to watch configuration: %w", err)
		}

		s.networks = s.watcher
		s.watcher.OnReload(func(c *config.Config) {
			s.tokens.SetStatic(c.Tokens())
		})
	}

	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	source := o.source
	if source == nil {
		source = telemetry.NewClient(cfg.APIURL, s.tokens,
			telemetry.WithRateLimit(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst),
			telemetry.WithVersion(o.version),
		)
	}

	s.engine, err = refresh.NewEngine(refresh.Options{
		Store:      database,
		Source:     source,
		Networks:   s.networks,
		Snapshots:  cache.NewStore(cfg.CacheFile, cache.DefaultMaxAge),
		Notifier:   s.buildNotifier(),
		Registerer: s.registry,
		Location:   cfg.Location(),
	})
	if err != nil {
		_ = s.close()

		return nil, err
	}

	s.scheduler = refresh.NewScheduler(s.engine,
		time.Duration(cfg.RefreshInterval), time.Duration(cfg.Retention))

	s.apiServer, err = api.NewServer(api.Options{
		Engine:         s.engine,
		Store:          database,
		Networks:       s.networks,
		Tokens:         s.tokens,
		Gatherer:       s.registry,
		Version:        o.version,
		MaxConnections: cfg.MaxConnections,
	})
	if err != nil {
		_ = s.close()

		return nil, err
	}

	return s, nil
}

// buildNotifier combines the configured webhooks and SMTP delivery.
func (s *Server) buildNotifier() alerts.Notifier {
	notifiers := make([]alerts.Notifier, 0, len(s.config.Webhooks)+1)

	for _, wh := range s.config.Webhooks {
		if !wh.Enabled {
			continue
		}

		if wh.Discord {
			notifiers = append(notifiers, alerts.NewDiscordWebhook(wh.URL, time.Duration(wh.Cooldown)))

			continue
		}

		headers := make([]alerts.Header, 0, len(wh.Headers))
		for _, h := range wh.Headers {
			headers = append(headers, alerts.Header{Key: h.Key, Value: h.Value})
		}

		notifiers = append(notifiers, alerts.NewWebhookNotifier(alerts.WebhookConfig{
			Enabled:  true,
			URL:      wh.URL,
			Headers:  headers,
			Template: wh.Template,
			Cooldown: time.Duration(wh.Cooldown),
		}))
	}

	smtpCfg := s.config.SMTP
	notifiers = append(notifiers, alerts.NewEmailNotifier(alerts.EmailConfig{
		Enabled:  smtpCfg.Enabled,
		Host:     smtpCfg.Host,
		Port:     smtpCfg.Port,
		Username: smtpCfg.Username,
		Password: smtpCfg.Password,
		From:     smtpCfg.From,
	}, s.recipient))

	return alerts.NewMultiNotifier(notifiers...)
}

// recipient returns the owner address of a network.
func (s *Server) recipient(networkID string) string {
	for _, n := range s.networks.ActiveNetworks() {
		if n.ID == networkID {
			return n.Email
		}
	}

	return ""
}

// Engine returns the refresh engine.
func (s *Server) Engine() *refresh.Engine {
	return s.engine
}

// API returns the HTTP API server.
func (s *Server) API() *api.Server {
	return s.apiServer
}

// Start restores the cache, reconciles stale incidents, starts the refresh
// loop and the configuration watcher, then serves the API until Stop.
func (s *Server) Start(ctx context.Context) error {
	if err := s.restore(); err != nil {
		log.Printf("Failed to restore cache snapshot, starting empty: %v", err)
	}

	if _, err := s.engine.Reconcile(ctx); err != nil {
		log.Printf("Incident reconciliation finished with errors: %v", err)
	}

	s.scheduler.Start(ctx)

	if s.watcher != nil {
		go func() {
			if err := s.watcher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("Config watcher stopped: %v", err)
			}
		}()
	}

	log.Printf("Serving API on %s", s.config.ListenAddr)

	return s.apiServer.Start(s.config.ListenAddr)
}

// Stop shuts the API down, waits for a running cycle and closes the store.
// It is safe to call more than once.
func (s *Server) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() {
		var errs []error

		if err := s.apiServer.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}

		s.scheduler.Stop(ctx)

		if err := s.close(); err != nil {
			errs = append(errs, err)
		}

		s.stopErr = errors.Join(errs...)
	})

	return s.stopErr
}

func (s *Server) close() error {
	var errs []error

	if s.watcher != nil {
		if err := s.watcher.Stop(); err != nil {
			errs = append(errs, err)
		}
	}

	if err := s.db.Close(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (s *Server) restore() error {
	s.restoreOnce.Do(func() {
		s.restoreErr = s.engine.Restore()
	})

	return s.restoreErr
}

// RefreshOnce restores the cache and runs a single refresh cycle.
func (s *Server) RefreshOnce(ctx context.Context) (*refresh.CycleEvent, error) {
	if err := s.restore(); err != nil {
		log.Printf("Failed to restore cache snapshot, starting empty: %v", err)
	}

	events, cancel := s.engine.Subscribe()
	defer cancel()

	if !s.engine.RefreshCycle(ctx) {
		return nil, ErrRefreshRunning
	}

	select {
	case ev := <-events:
		return &ev, nil
	default:
		return nil, nil
	}
}

// ReconcileOnce restores the cache and closes stale incidents.
func (s *Server) ReconcileOnce(ctx context.Context) (int, error) {
	if err := s.restore(); err != nil {
		log.Printf("Failed to restore cache snapshot, starting empty: %v", err)
	}

	return s.engine.Reconcile(ctx)
}

// WatchHealth reports the service ready until a cycle fails every network
// it polled, and ready again after the next cycle that updates one.
func (s *Server) WatchHealth(ctx context.Context, report func(serving bool)) {
	events, cancel := s.engine.Subscribe()
	defer cancel()

	report(true)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}

			report(cycleHealthy(ev))
		}
	}
}

func cycleHealthy(ev refresh.CycleEvent) bool {
	if len(ev.Networks) == 0 {
		return true
	}

	for _, n := range ev.Networks {
		if n.Error == "" {
			return true
		}
	}

	return false
}
