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

// Package api pkg/api/server.go serves the operations HTTP API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/mfreeman451/meshradar/pkg/config"
	"github.com/mfreeman451/meshradar/pkg/db"
	"github.com/mfreeman451/meshradar/pkg/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/netutil"
)

const (
	readHeaderTimeout = 10 * time.Second
	defaultAlertLimit = 50
)

var (
	errEngineRequired = errors.New("api: engine is required")
	errStoreRequired  = errors.New("api: store is required")
	ErrListen         = errors.New("failed to listen")
)

// Options wires the server. Engine, Store and Networks are required.
type Options struct {
	Engine   Engine
	Store    db.Service
	Networks config.NetworkProvider

	// Tokens reports which networks have credentials. Optional.
	Tokens telemetry.TokenProvider

	// Gatherer backs /metrics. Nil uses the default registry.
	Gatherer prometheus.Gatherer

	Version string

	// MaxConnections caps concurrent connections. Zero means no cap.
	MaxConnections int

	Now func() time.Time
}

// Server is the operations API.
type Server struct {
	engine         Engine
	store          db.Service
	networks       config.NetworkProvider
	tokens         telemetry.TokenProvider
	gatherer       prometheus.Gatherer
	version        string
	maxConnections int
	now            func() time.Time

	router   *mux.Router
	srv      *http.Server
	upgrader websocket.Upgrader

	done     chan struct{}
	stopOnce sync.Once
}

// NewServer creates the server and its routes.
func NewServer(opts Options) (*Server, error) {
	switch {
	case opts.Engine == nil:
		return nil, errEngineRequired
	case opts.Store == nil:
		return nil, errStoreRequired
	}

	networks := opts.Networks
	if networks == nil {
		networks = config.StaticNetworks(nil)
	}

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	s := &Server{
		engine:         opts.Engine,
		store:          opts.Store,
		networks:       networks,
		tokens:         opts.Tokens,
		gatherer:       gatherer,
		version:        opts.Version,
		maxConnections: opts.MaxConnections,
		now:            now,
		router:         mux.NewRouter(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
		done: make(chan struct{}),
	}

	s.setupRoutes()

	s.srv = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.Use(CommonMiddleware)

	s.router.HandleFunc("/health", s.getHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	// API routes hang off the root router so a path that exists under another
	// method answers 405 rather than 404.
	r := s.router

	r.HandleFunc("/api/refresh", s.postRefresh).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/api/dashboard", s.getDashboard).Methods(http.MethodGet)
	r.HandleFunc("/api/dashboard/{hours:[0-9]+}", s.getDashboardWindow).Methods(http.MethodGet)
	r.HandleFunc("/api/networks", s.getNetworks).Methods(http.MethodGet)
	r.HandleFunc("/api/networks/{id}", s.getNetwork).Methods(http.MethodGet)
	r.HandleFunc("/api/alerts", s.getAlerts).Methods(http.MethodGet)
	r.HandleFunc("/api/alerts/{id:[0-9]+}/acknowledge", s.postAcknowledge).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/api/uptime/{id}", s.getUptime).Methods(http.MethodGet)
	r.HandleFunc("/api/reports/scorecard", s.getScorecard).Methods(http.MethodGet)
	r.HandleFunc("/api/events", s.streamEvents).Methods(http.MethodGet)
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on addr and serves until Shutdown.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("%w on %s: %w", ErrListen, addr, err)
	}

	return s.Serve(ln)
}

// Serve serves on ln, capped at MaxConnections when set. It returns nil
// after Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	if s.maxConnections > 0 {
		ln = netutil.LimitListener(ln, s.maxConnections)
	}

	log.Printf("API server listening on %s", ln.Addr())

	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Shutdown ends event streams and gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopOnce.Do(func() {
		close(s.done)
	})

	return s.srv.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
