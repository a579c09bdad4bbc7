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
	"sync"

	"github.com/mfreeman451/meshradar/pkg/api"
	"github.com/mfreeman451/meshradar/pkg/config"
	"github.com/mfreeman451/meshradar/pkg/db"
	"github.com/mfreeman451/meshradar/pkg/refresh"
	"github.com/mfreeman451/meshradar/pkg/telemetry"
	"github.com/prometheus/client_golang/prometheus"
)

// Option customizes a Server.
type Option func(*options)

type options struct {
	configPath string
	version    string
	source     telemetry.Source
}

// Server assembles the store, telemetry client, refresh engine, HTTP API
// and configuration watcher of one deployment.
type Server struct {
	config    *config.Config
	networks  config.NetworkProvider
	watcher   *config.Watcher
	db        db.Service
	tokens    *telemetry.TokenStore
	engine    *refresh.Engine
	scheduler *refresh.Scheduler
	apiServer *api.Server
	registry  *prometheus.Registry

	restoreOnce sync.Once
	restoreErr  error
	stopOnce    sync.Once
	stopErr     error
}
