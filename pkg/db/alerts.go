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

const alertColumns = `id, network_id, alert_type, severity, message, created_at, acknowledged, acknowledged_at`

// InsertAlert appends an alert and returns its id.
func (db *DB) InsertAlert(ctx context.Context, alert *models.Alert) (int64, error) {
	const insertSQL = `
		INSERT INTO alerts
			(network_id, alert_type, severity, message, created_at, acknowledged, acknowledged_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = db.now()
	}

	var id int64

	err := db.withTx(ctx, func(tx Transaction) error {
		result, err := tx.Exec(ctx, insertSQL,
			alert.NetworkID,
			string(alert.Type),
			string(alert.Severity),
			alert.Message,
			formatTime(alert.CreatedAt),
			alert.Acknowledged,
			nullTime(alert.AcknowledgedAt),
		)
		if err != nil {
			return fmt.Errorf("%w alert: %w", ErrFailedToInsert, err)
		}

		id, err = result.LastInsertId()

		return err
	})
	if err != nil {
		return 0, err
	}

	alert.ID = id

	return id, nil
}

// GetAlerts returns alerts matching filter, newest first.
func (db *DB) GetAlerts(ctx context.Context, filter models.AlertFilter) ([]models.Alert, error) {
	where, args := alertWhere(filter)

	query := `SELECT ` + alertColumns + ` FROM alerts` + where + ` ORDER BY created_at DESC, id DESC`

	if filter.Limit > 0 {
		query += " LIMIT ?"

		args = append(args, filter.Limit)
	}

	rows, err := db.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w alerts: %w", ErrFailedToQuery, err)
	}
	defer CloseRows(rows)

	return scanAlerts(rows)
}

// CountAlerts counts alerts matching filter. Limit is ignored.
func (db *DB) CountAlerts(ctx context.Context, filter models.AlertFilter) (int, error) {
	where, args := alertWhere(filter)

	var count int

	if err := db.queryRow(ctx, `SELECT COUNT(*) FROM alerts`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w alert count: %w", ErrFailedToQuery, err)
	}

	return count, nil
}

// FirstAlertSince returns the earliest alert of a type for a network created
// at or after since, or ErrNotFound when there is none.
func (db *DB) FirstAlertSince(
	ctx context.Context, networkID string, alertType models.AlertType, since time.Time) (*models.Alert, error) {
	rows, err := db.query(ctx, `
		SELECT `+alertColumns+`
		FROM alerts
		WHERE network_id = ? AND alert_type = ? AND created_at >= ?
		ORDER BY created_at ASC, id ASC
		LIMIT 1`,
		networkID, string(alertType), formatTime(since),
	)
	if err != nil {
		return nil, fmt.Errorf("%w first alert: %w", ErrFailedToQuery, err)
	}
	defer CloseRows(rows)

	alerts, err := scanAlerts(rows)
	if err != nil {
		return nil, err
	}

	if len(alerts) == 0 {
		return nil, ErrNotFound
	}

	return &alerts[0], nil
}

// AcknowledgeAlert marks an alert acknowledged. Unknown ids return
// ErrAlertNotFound and change nothing. Acknowledging twice keeps the
// original acknowledgement time.
func (db *DB) AcknowledgeAlert(ctx context.Context, id int64, at time.Time) error {
	return db.withTx(ctx, func(tx Transaction) error {
		var acknowledged bool

		err := tx.QueryRow(ctx, `SELECT acknowledged FROM alerts WHERE id = ?`, id).Scan(&acknowledged)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %d", ErrAlertNotFound, id)
		}

		if err != nil {
			return fmt.Errorf("%w alert %d: %w", ErrFailedToQuery, id, err)
		}

		if acknowledged {
			return nil
		}

		if _, err := tx.Exec(ctx,
			`UPDATE alerts SET acknowledged = 1, acknowledged_at = ? WHERE id = ?`,
			formatTime(at), id,
		); err != nil {
			return fmt.Errorf("%w alert %d: %w", ErrFailedToUpdate, id, err)
		}

		return nil
	})
}

func alertWhere(filter models.AlertFilter) (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)

	if filter.NetworkID != "" {
		clauses = append(clauses, "network_id = ?")
		args = append(args, filter.NetworkID)
	}

	if filter.Type != "" {
		clauses = append(clauses, "alert_type = ?")
		args = append(args, string(filter.Type))
	}

	if filter.Acknowledged != nil {
		clauses = append(clauses, "acknowledged = ?")
		args = append(args, *filter.Acknowledged)
	}

	if !filter.Since.IsZero() {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, formatTime(filter.Since))
	}

	if len(clauses) == 0 {
		return "", nil
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanAlerts(rows Rows) ([]models.Alert, error) {
	var alerts []models.Alert

	for rows.Next() {
		var (
			a         models.Alert
			alertType string
			severity  string
			created   string
			ackAt     sql.NullString
		)

		if err := rows.Scan(&a.ID, &a.NetworkID, &alertType, &severity, &a.Message,
			&created, &a.Acknowledged, &ackAt); err != nil {
			return nil, fmt.Errorf("%w alert row: %w", ErrFailedToScan, err)
		}

		a.Type = models.AlertType(alertType)
		a.Severity = models.Severity(severity)

		t, err := parseTime(created)
		if err != nil {
			return nil, fmt.Errorf("%w alert created_at: %w", ErrFailedToScan, err)
		}

		a.CreatedAt = t

		if a.AcknowledgedAt, err = parseNullTime(ackAt); err != nil {
			return nil, fmt.Errorf("%w alert acknowledged_at: %w", ErrFailedToScan, err)
		}

		alerts = append(alerts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w alerts: %w", ErrFailedToQuery, err)
	}

	return alerts, nil
}
