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

// Package db pkg/db/db.go provides the SQLite persistent store for metrics,
// uptime incidents and alerts.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// timeLayout is fixed-width so lexical order in SQLite equals time order.
const timeLayout = "2006-01-02T15:04:05.000000Z"

const (
	// SQL statements for database initialization.
	createTablesSQL = `
	-- Monitored networks, kept in sync with configuration
	CREATE TABLE IF NOT EXISTS networks (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		active BOOLEAN NOT NULL DEFAULT 1,
		address_street TEXT,
		address_city TEXT,
		address_state TEXT,
		address_zip TEXT,
		latitude REAL,
		longitude REAL,
		created_at TEXT NOT NULL
	);

	-- One row per network per refresh cycle
	CREATE TABLE IF NOT EXISTS metrics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		network_id TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		total_devices INTEGER NOT NULL DEFAULT 0,
		wireless_devices INTEGER NOT NULL DEFAULT 0,
		wired_devices INTEGER NOT NULL DEFAULT 0,
		bandwidth_usage_mbps REAL NOT NULL DEFAULT 0,
		bandwidth_capacity_mbps REAL NOT NULL DEFAULT 0,
		bandwidth_utilization REAL NOT NULL DEFAULT 0,
		avg_signal_dbm REAL
	);

	-- Offline intervals; end_time is NULL while open
	CREATE TABLE IF NOT EXISTS uptime_incidents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		network_id TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT,
		duration_seconds INTEGER,
		affected_devices INTEGER NOT NULL DEFAULT 0
	);

	-- Alert log
	CREATE TABLE IF NOT EXISTS alerts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		network_id TEXT NOT NULL,
		alert_type TEXT NOT NULL,
		severity TEXT NOT NULL,
		message TEXT NOT NULL,
		created_at TEXT NOT NULL,
		acknowledged BOOLEAN NOT NULL DEFAULT 0,
		acknowledged_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_metrics_network_time
		ON metrics(network_id, timestamp);
	CREATE INDEX IF NOT EXISTS idx_incidents_network_start
		ON uptime_incidents(network_id, start_time);
	CREATE INDEX IF NOT EXISTS idx_incidents_open
		ON uptime_incidents(network_id) WHERE end_time IS NULL;
	CREATE INDEX IF NOT EXISTS idx_alerts_network_created
		ON alerts(network_id, created_at);
	`
)

var _ Service = (*DB)(nil)

// DB represents the database connection and operations.
type DB struct {
	conn *sql.DB
	now  func() time.Time
}

// New opens (creating if needed) the database at dbPath and initializes the schema.
func New(dbPath string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedOpenDB, err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = sqlDB.Close()

		return nil, fmt.Errorf("%w: %w", ErrFailedToEnableWAL, err)
	}

	db := &DB{conn: sqlDB, now: time.Now}
	if err := db.initSchema(); err != nil {
		_ = sqlDB.Close()

		return nil, fmt.Errorf("%w: %w", ErrFailedToInit, err)
	}

	return db, nil
}

// initSchema creates the database tables if they don't exist.
func (db *DB) initSchema() error {
	_, err := db.conn.Exec(createTablesSQL)

	return err
}

// Close closes the underlying connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Begin starts a transaction.
func (db *DB) Begin(ctx context.Context) (Transaction, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToBeginTx, err)
	}

	return ToTransaction(tx), nil
}

// withTx runs fn in a transaction, committing on success and rolling back
// when fn or the commit fails.
func (db *DB) withTx(ctx context.Context, fn func(tx Transaction) error) (err error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		rollbackOnError(tx, err)
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToCommit, err)
	}

	return nil
}

func rollbackOnError(tx Transaction, err error) {
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Printf("Error rolling back transaction: %v", rbErr)
		}
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		// Rows written by other tools may carry a plain RFC3339 value.
		return time.Parse(time.RFC3339Nano, s)
	}

	return t, nil
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}

	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}

	return sql.NullString{String: formatTime(*t), Valid: true}
}
