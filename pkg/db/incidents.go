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
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mfreeman451/meshradar/pkg/models"
)

const incidentColumns = `id, network_id, start_time, end_time, duration_seconds, affected_devices`

// InsertIncident records the start of an offline interval.
func (db *DB) InsertIncident(ctx context.Context, incident *models.UptimeIncident) (int64, error) {
	const insertSQL = `
		INSERT INTO uptime_incidents
			(network_id, start_time, end_time, duration_seconds, affected_devices)
		VALUES (?, ?, ?, ?, ?)
	`

	var duration sql.NullInt64
	if incident.DurationSeconds != nil {
		duration = sql.NullInt64{Int64: *incident.DurationSeconds, Valid: true}
	}

	var id int64

	err := db.withTx(ctx, func(tx Transaction) error {
		result, err := tx.Exec(ctx, insertSQL,
			incident.NetworkID,
			formatTime(incident.StartTime),
			nullTime(incident.EndTime),
			duration,
			incident.AffectedDevices,
		)
		if err != nil {
			return fmt.Errorf("%w incident: %w", ErrFailedToInsert, err)
		}

		id, err = result.LastInsertId()

		return err
	})
	if err != nil {
		return 0, err
	}

	incident.ID = id

	return id, nil
}

// OpenIncidents lists incidents with no end time, oldest first. An empty
// networkID lists open incidents for every network.
func (db *DB) OpenIncidents(ctx context.Context, networkID string) ([]models.UptimeIncident, error) {
	query := `SELECT ` + incidentColumns + ` FROM uptime_incidents WHERE end_time IS NULL`

	var args []interface{}

	if networkID != "" {
		query += " AND network_id = ?"

		args = append(args, networkID)
	}

	rows, err := db.query(ctx, query+" ORDER BY network_id, start_time ASC, id ASC", args...)
	if err != nil {
		return nil, fmt.Errorf("%w open incidents: %w", ErrFailedToQuery, err)
	}
	defer CloseRows(rows)

	return scanIncidents(rows)
}

// CloseIncident ends one open incident. Closing an unknown or already
// closed incident returns ErrIncidentNotFound.
func (db *DB) CloseIncident(ctx context.Context, id int64, end time.Time) error {
	return db.withTx(ctx, func(tx Transaction) error {
		var startStr string

		err := tx.QueryRow(ctx,
			`SELECT start_time FROM uptime_incidents WHERE id = ? AND end_time IS NULL`, id,
		).Scan(&startStr)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %d", ErrIncidentNotFound, id)
		}

		if err != nil {
			return fmt.Errorf("%w incident %d: %w", ErrFailedToQuery, id, err)
		}

		return closeIncidentTx(ctx, tx, id, startStr, end)
	})
}

// CloseOpenIncidents ends every open incident of a network in a single
// transaction and returns how many were closed.
func (db *DB) CloseOpenIncidents(ctx context.Context, networkID string, end time.Time) (int, error) {
	type openRow struct {
		id    int64
		start string
	}

	closed := 0

	err := db.withTx(ctx, func(tx Transaction) error {
		rows, err := tx.Query(ctx,
			`SELECT id, start_time FROM uptime_incidents WHERE network_id = ? AND end_time IS NULL`,
			networkID)
		if err != nil {
			return fmt.Errorf("%w open incidents: %w", ErrFailedToQuery, err)
		}

		var open []openRow

		for rows.Next() {
			var r openRow
			if err := rows.Scan(&r.id, &r.start); err != nil {
				CloseRows(rows)

				return fmt.Errorf("%w incident row: %w", ErrFailedToScan, err)
			}

			open = append(open, r)
		}

		CloseRows(rows)

		if err := rows.Err(); err != nil {
			return fmt.Errorf("%w open incidents: %w", ErrFailedToQuery, err)
		}

		for _, r := range open {
			if err := closeIncidentTx(ctx, tx, r.id, r.start, end); err != nil {
				return err
			}
		}

		closed = len(open)

		return nil
	})
	if err != nil {
		return 0, err
	}

	return closed, nil
}

func closeIncidentTx(ctx context.Context, tx Transaction, id int64, startStr string, end time.Time) error {
	start, err := parseTime(startStr)
	if err != nil {
		return fmt.Errorf("%w incident %d start time: %w", ErrFailedToScan, id, err)
	}

	inc := models.UptimeIncident{ID: id, StartTime: start}
	inc.Close(end)

	if _, err := tx.Exec(ctx,
		`UPDATE uptime_incidents SET end_time = ?, duration_seconds = ? WHERE id = ?`,
		formatTime(*inc.EndTime), *inc.DurationSeconds, id,
	); err != nil {
		return fmt.Errorf("%w incident %d: %w", ErrFailedToUpdate, id, err)
	}

	return nil
}

// GetIncidents returns incidents overlapping [start, end], oldest first.
// Zero bounds leave that side open and an empty networkID matches all networks.
func (db *DB) GetIncidents(ctx context.Context, networkID string, start, end time.Time) ([]models.UptimeIncident, error) {
	var (
		where []string
		args  []interface{}
	)

	if networkID != "" {
		where = append(where, "network_id = ?")
		args = append(args, networkID)
	}

	if !end.IsZero() {
		where = append(where, "start_time <= ?")
		args = append(args, formatTime(end))
	}

	if !start.IsZero() {
		where = append(where, "(end_time IS NULL OR end_time >= ?)")
		args = append(args, formatTime(start))
	}

	query := `SELECT ` + incidentColumns + ` FROM uptime_incidents`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	rows, err := db.query(ctx, query+" ORDER BY start_time ASC, id ASC", args...)
	if err != nil {
		return nil, fmt.Errorf("%w incidents: %w", ErrFailedToQuery, err)
	}
	defer CloseRows(rows)

	return scanIncidents(rows)
}

func scanIncidents(rows Rows) ([]models.UptimeIncident, error) {
	var incidents []models.UptimeIncident

	for rows.Next() {
		var (
			inc      models.UptimeIncident
			startStr string
			endStr   sql.NullString
			duration sql.NullInt64
		)

		if err := rows.Scan(&inc.ID, &inc.NetworkID, &startStr, &endStr, &duration, &inc.AffectedDevices); err != nil {
			return nil, fmt.Errorf("%w incident row: %w", ErrFailedToScan, err)
		}

		start, err := parseTime(startStr)
		if err != nil {
			return nil, fmt.Errorf("%w incident start time: %w", ErrFailedToScan, err)
		}

		inc.StartTime = start

		if inc.EndTime, err = parseNullTime(endStr); err != nil {
			return nil, fmt.Errorf("%w incident end time: %w", ErrFailedToScan, err)
		}

		if duration.Valid {
			d := duration.Int64
			inc.DurationSeconds = &d
		}

		incidents = append(incidents, inc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w incidents: %w", ErrFailedToQuery, err)
	}

	return incidents, nil
}
