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

// Package db pkg/db/interfaces.go
package db

import (
	"context"
	"time"

	"github.com/mfreeman451/meshradar/pkg/models"
)

//go:generate mockgen -destination=mock_db.go -package=db github.com/mfreeman451/meshradar/pkg/db Service

// Row represents a database row.
type Row interface {
	Scan(dest ...interface{}) error
}

// Result represents the result of a database operation.
type Result interface {
	LastInsertId() (int64, error)
	RowsAffected() (int64, error)
}

// Rows represents multiple database rows.
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Close() error
	Err() error
}

// Transaction represents operations that can be performed within a database transaction.
type Transaction interface {
	Exec(ctx context.Context, query string, args ...interface{}) (Result, error)
	Query(ctx context.Context, query string, args ...interface{}) (Rows, error)
	QueryRow(ctx context.Context, query string, args ...interface{}) Row
	Commit() error
	Rollback() error
}

// Service represents all database operations.
type Service interface {
	// Network operations.

	UpsertNetwork(ctx context.Context, network *models.MonitoredNetwork) error

	// Metric operations. Metrics are append-only.

	InsertMetric(ctx context.Context, metric *models.Metric) (int64, error)
	GetMetrics(ctx context.Context, networkID string, start, end time.Time) ([]models.Metric, error)

	// Uptime incident operations.

	InsertIncident(ctx context.Context, incident *models.UptimeIncident) (int64, error)
	OpenIncidents(ctx context.Context, networkID string) ([]models.UptimeIncident, error)
	CloseIncident(ctx context.Context, id int64, end time.Time) error
	CloseOpenIncidents(ctx context.Context, networkID string, end time.Time) (int, error)
	GetIncidents(ctx context.Context, networkID string, start, end time.Time) ([]models.UptimeIncident, error)

	// Alert operations.

	InsertAlert(ctx context.Context, alert *models.Alert) (int64, error)
	GetAlerts(ctx context.Context, filter models.AlertFilter) ([]models.Alert, error)
	CountAlerts(ctx context.Context, filter models.AlertFilter) (int, error)
	FirstAlertSince(ctx context.Context, networkID string, alertType models.AlertType, since time.Time) (*models.Alert, error)
	AcknowledgeAlert(ctx context.Context, id int64, at time.Time) error

	// Maintenance operations.

	CleanOldData(ctx context.Context, retentionPeriod time.Duration) error
	Close() error
}
