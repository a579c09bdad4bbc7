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

	"github.com/mfreeman451/meshradar/pkg/models"
)

// UpsertNetwork inserts or refreshes a monitored network row. created_at is
// preserved on update.
func (db *DB) UpsertNetwork(ctx context.Context, network *models.MonitoredNetwork) error {
	const upsertSQL = `
		INSERT INTO networks
			(id, name, email, active, address_street, address_city, address_state,
			 address_zip, latitude, longitude, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			active = excluded.active,
			address_street = excluded.address_street,
			address_city = excluded.address_city,
			address_state = excluded.address_state,
			address_zip = excluded.address_zip,
			latitude = excluded.latitude,
			longitude = excluded.longitude
	`

	var (
		street, city, state, zip sql.NullString
		lat, lng                 sql.NullFloat64
	)

	if a := network.Address; a != nil {
		street = nullString(a.Street)
		city = nullString(a.City)
		state = nullString(a.State)
		zip = nullString(a.Zip)

		if a.Latitude != nil {
			lat = sql.NullFloat64{Float64: *a.Latitude, Valid: true}
		}

		if a.Longitude != nil {
			lng = sql.NullFloat64{Float64: *a.Longitude, Valid: true}
		}
	}

	createdAt := network.CreatedAt
	if createdAt.IsZero() {
		createdAt = db.now()
	}

	return db.withTx(ctx, func(tx Transaction) error {
		if _, err := tx.Exec(ctx, upsertSQL,
			network.ID,
			network.DisplayName(),
			nullString(network.Email),
			network.Active,
			street, city, state, zip,
			lat, lng,
			formatTime(createdAt),
		); err != nil {
			return fmt.Errorf("%w network %s: %w", ErrFailedToInsert, network.ID, err)
		}

		return nil
	})
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
