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
	"fmt"
	"log"
	"time"
)

// CleanOldData removes metrics, closed incidents and acknowledged alerts
// older than the retention period. Open incidents and unacknowledged alerts
// are always kept.
func (db *DB) CleanOldData(ctx context.Context, retentionPeriod time.Duration) error {
	cutoff := formatTime(db.now().Add(-retentionPeriod))

	var removed int64

	err := db.withTx(ctx, func(tx Transaction) error {
		steps := []struct {
			what  string
			query string
		}{
			{"metrics", `DELETE FROM metrics WHERE timestamp < ?`},
			{"incidents", `DELETE FROM uptime_incidents WHERE end_time IS NOT NULL AND end_time < ?`},
			{"alerts", `DELETE FROM alerts WHERE acknowledged = 1 AND created_at < ?`},
		}

		for _, step := range steps {
			result, err := tx.Exec(ctx, step.query, cutoff)
			if err != nil {
				return fmt.Errorf("%w %s: %w", ErrFailedToClean, step.what, err)
			}

			if n, err := result.RowsAffected(); err == nil {
				removed += n
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("Cleaned %d rows older than %v", removed, retentionPeriod)

	return nil
}
