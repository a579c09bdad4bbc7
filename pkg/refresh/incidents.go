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
	"log"
	"time"

	"github.com/mfreeman451/meshradar/pkg/db"
	"github.com/mfreeman451/meshradar/pkg/models"
)

// updateIncidents advances the uptime incident state machine of one network
// from prior to entry.HealthStatus. At most one incident per network is
// open at any time.
//
//	prior offline, now not offline   close open incidents, clear OfflineSince
//	prior unknown, now not offline   close orphaned incidents, clear OfflineSince
//	prior known and not offline,
//	now offline                      open an incident at now
//	anything else                    no incident change
//
// An unknown prior (first sight since a fresh start) never opens an incident.
// entry.PrevHealth is set to the new status unconditionally.
func (e *Engine) updateIncidents(
	ctx context.Context, now time.Time, networkID string, prior models.HealthStatus,
	entry *models.NetworkCache, affectedDevices int) {
	current := entry.HealthStatus

	switch {
	case prior == models.HealthOffline && current != models.HealthOffline:
		entry.OfflineSince = nil

		if closed, ok := e.closeIncidents(ctx, now, networkID); ok {
			log.Printf("Closed %d open uptime incident(s) for network %s on recovery", closed, networkID)
		}
	case !prior.IsKnown() && current != models.HealthOffline:
		// Incidents a previous run left open for a network without usable
		// cached health end at the first observation that proves it up.
		entry.OfflineSince = nil

		if closed, ok := e.closeIncidents(ctx, now, networkID); ok && closed > 0 {
			log.Printf("Closed %d orphaned uptime incident(s) for network %s", closed, networkID)
		}
	case current == models.HealthOffline && prior.IsKnown() && prior != models.HealthOffline:
		since := now
		entry.OfflineSince = &since

		e.openIncident(ctx, now, networkID, affectedDevices)
	}

	if current == models.HealthOffline {
		e.anchorOfflineSince(ctx, now, networkID, entry)
	}

	entry.PrevHealth = current
}

func (e *Engine) closeIncidents(ctx context.Context, now time.Time, networkID string) (int, bool) {
	closed, err := e.store.CloseOpenIncidents(ctx, networkID, now)
	if err != nil {
		log.Printf("Failed to close uptime incidents for %s: %v", networkID, err)
		e.networkError(networkID, stageIncident)

		return 0, false
	}

	e.collect.Incidents.WithLabelValues("close").Add(float64(closed))

	return closed, true
}

// anchorOfflineSince points OfflineSince at the first offline alert raised
// during the current outage, which starts with the open incident. Alerts of
// earlier outages are ignored. Without an open incident or a matching alert
// the existing value is kept, or now when there is none.
func (e *Engine) anchorOfflineSince(ctx context.Context, now time.Time, networkID string, entry *models.NetworkCache) {
	open, err := e.store.OpenIncidents(ctx, networkID)
	if err != nil {
		log.Printf("Failed to list open incidents for %s: %v", networkID, err)
	}

	if start, ok := newestStart(open); ok {
		first, err := e.store.FirstAlertSince(ctx, networkID, models.AlertOffline, start)

		switch {
		case err == nil:
			since := first.CreatedAt
			entry.OfflineSince = &since
		case !errors.Is(err, db.ErrNotFound):
			log.Printf("Failed to look up first offline alert for %s: %v", networkID, err)
		}
	}

	if entry.OfflineSince == nil {
		since := now
		entry.OfflineSince = &since
	}
}

func newestStart(incidents []models.UptimeIncident) (time.Time, bool) {
	var (
		start time.Time
		found bool
	)

	for _, inc := range incidents {
		if !found || inc.StartTime.After(start) {
			start = inc.StartTime
			found = true
		}
	}

	return start, found
}

// openIncident records a new offline interval. Any incident still open is
// an invariant violation; it is closed first so only the new one remains.
func (e *Engine) openIncident(ctx context.Context, now time.Time, networkID string, affectedDevices int) {
	open, err := e.store.OpenIncidents(ctx, networkID)
	if err != nil {
		log.Printf("Failed to list open incidents for %s: %v", networkID, err)
	} else if len(open) > 0 {
		log.Printf("Invariant violation: network %s already has %d open incident(s) while going offline, closing them",
			networkID, len(open))

		if _, err := e.store.CloseOpenIncidents(ctx, networkID, now); err != nil {
			log.Printf("Failed to close stale incidents for %s: %v", networkID, err)
		}
	}

	incident := &models.UptimeIncident{
		NetworkID:       networkID,
		StartTime:       now,
		AffectedDevices: affectedDevices,
	}

	if _, err := e.store.InsertIncident(ctx, incident); err != nil {
		log.Printf("Failed to record uptime incident for %s: %v", networkID, err)
		e.networkError(networkID, stageIncident)

		return
	}

	e.collect.Incidents.WithLabelValues("open").Inc()
	log.Printf("Opened uptime incident for network %s", networkID)
}
