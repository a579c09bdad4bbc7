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

package refresh

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/mfreeman451/meshradar/pkg/db"
	"github.com/mfreeman451/meshradar/pkg/models"
)

// ErrReconcile wraps every failure of Reconcile.
var ErrReconcile = errors.New("startup reconciliation failed")

// Reconcile repairs incidents left open by an unclean shutdown. It must run
// before the first cycle. An open incident is closed at now when the
// network's cached health is known and not offline; incidents of offline or
// unknown networks stay open, except that only the newest open incident of a
// network survives. The first cycle that sees an unknown network up closes
// what is left. It never opens incidents.
func (e *Engine) Reconcile(ctx context.Context) (int, error) {
	open, err := e.store.OpenIncidents(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrReconcile, err)
	}

	if len(open) == 0 {
		return 0, nil
	}

	byNetwork := make(map[string][]models.UptimeIncident)
	for _, inc := range open {
		byNetwork[inc.NetworkID] = append(byNetwork[inc.NetworkID], inc)
	}

	now := e.clock()
	snapshot := e.Snapshot()

	var (
		closed int
		errs   []error
	)

	for networkID, incidents := range byNetwork {
		health := snapshot.HealthOf(networkID)

		toClose := incidents
		if !health.IsKnown() || health == models.HealthOffline {
			toClose = staleIncidents(incidents)

			if len(toClose) > 0 {
				log.Printf("Invariant violation: network %s has %d open incidents, keeping the newest",
					networkID, len(incidents))
			}
		}

		for _, inc := range toClose {
			err := e.store.CloseIncident(ctx, inc.ID, now)

			switch {
			case err == nil:
				closed++
			case errors.Is(err, db.ErrIncidentNotFound):
			default:
				errs = append(errs, fmt.Errorf("incident %d of network %s: %w", inc.ID, networkID, err))
			}
		}
	}

	if closed > 0 {
		e.collect.Incidents.WithLabelValues("reconcile").Add(float64(closed))
		log.Printf("Reconciled %d stale uptime incident(s) at startup", closed)
	}

	if len(errs) > 0 {
		return closed, fmt.Errorf("%w: %w", ErrReconcile, errors.Join(errs...))
	}

	return closed, nil
}

// staleIncidents returns every incident except the newest.
func staleIncidents(incidents []models.UptimeIncident) []models.UptimeIncident {
	if len(incidents) < 2 {
		return nil
	}

	sorted := append([]models.UptimeIncident(nil), incidents...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].StartTime.Equal(sorted[j].StartTime) {
			return sorted[i].ID < sorted[j].ID
		}

		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})

	return sorted[:len(sorted)-1]
}
