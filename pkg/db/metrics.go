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

package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mfreeman451/meshradar/pkg/models"
)

// InsertMetric appends one metric row and returns its id.
func (db *DB) InsertMetric(ctx context.Context, metric *models.Metric) (int64, error) {
	const insertSQL = `
		INSERT INTO metrics
			(network_id, timestamp, total_devices, wireless_devices, wired_devices,
			 bandwidth_usage_mbps, bandwidth_capacity_mbps, bandwidth_utilization, avg_signal_dbm)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var avgSignal sql.NullFloat64
	if metric.AvgSignalDBM != nil {
		avgSignal = sql.NullFloat64{Float64: *metric.AvgSignalDBM, Valid: true}
	}

	var id int64

	err := db.withTx(ctx, func(tx Transaction) error {
		result, err := tx.Exec(ctx, insertSQL,
			metric.NetworkID,
			formatTime(metric.Timestamp),
			metric.TotalDevices,
			metric.WirelessDevices,
			metric.WiredDevices,
			metric.BandwidthUsage,
			metric.BandwidthCapacity,
			metric.BandwidthUtilization,
			avgSignal,
		)
		if err != nil {
			return fmt.Errorf("%w metric: %w", ErrFailedToInsert, err)
		}

		id, err = result.LastInsertId()

		return err
	})
	if err != nil {
		return 0, err
	}

	metric.ID = id

	return id, nil
}

// GetMetrics returns a network's metrics inside [start, end], oldest first.
// A zero start or end leaves that side of the range open.
func (db *DB) GetMetrics(ctx context.Context, networkID string, start, end time.Time) ([]models.Metric, error) {
	var (
		where = []string{"network_id = ?"}
		args  = []interface{}{networkID}
	)

	if !start.IsZero() {
		where = append(where, "timestamp >= ?")
		args = append(args, formatTime(start))
	}

	if !end.IsZero() {
		where = append(where, "timestamp <= ?")
		args = append(args, formatTime(end))
	}

	rows, err := db.query(ctx, `
		SELECT id, network_id, timestamp, total_devices, wireless_devices, wired_devices,
			bandwidth_usage_mbps, bandwidth_capacity_mbps, bandwidth_utilization, avg_signal_dbm
		FROM metrics
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY timestamp ASC, id ASC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("%w metrics: %w", ErrFailedToQuery, err)
	}
	defer CloseRows(rows)

	return scanMetrics(rows)
}

// Helper function to scan metric rows
func scanMetrics(rows Rows) ([]models.Metric, error) {
	var metrics []models.Metric

	for rows.Next() {
		var (
			m         models.Metric
			ts        string
			avgSignal sql.NullFloat64
		)

		if err := rows.Scan(
			&m.ID,
			&m.NetworkID,
			&ts,
			&m.TotalDevices,
			&m.WirelessDevices,
			&m.WiredDevices,
			&m.BandwidthUsage,
			&m.BandwidthCapacity,
			&m.BandwidthUtilization,
			&avgSignal,
		); err != nil {
			return nil, fmt.Errorf("%w metric row: %w", ErrFailedToScan, err)
		}

		t, err := parseTime(ts)
		if err != nil {
			return nil, fmt.Errorf("%w metric timestamp: %w", ErrFailedToScan, err)
		}

		m.Timestamp = t

		if avgSignal.Valid {
			v := avgSignal.Float64
			m.AvgSignalDBM = &v
		}

		metrics = append(metrics, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w metrics: %w", ErrFailedToQuery, err)
	}

	return metrics, nil
}
