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

package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/mfreeman451/meshradar/pkg/db"
	"github.com/mfreeman451/meshradar/pkg/metrics"
	"github.com/mfreeman451/meshradar/pkg/models"
	"github.com/mfreeman451/meshradar/pkg/reports"
)

func (s *Server) getHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Version: s.version})
}

// postRefresh runs a cycle on the request goroutine. A cycle already in
// progress is not an error.
func (s *Server) postRefresh(w http.ResponseWriter, r *http.Request) {
	if !s.engine.RefreshCycle(r.Context()) {
		writeJSON(w, http.StatusOK, RefreshResponse{Success: true, Message: "Cache refresh already in progress"})

		return
	}

	writeJSON(w, http.StatusOK, RefreshResponse{Success: true, Refreshed: true, Message: "Cache refreshed"})
}

func (s *Server) getDashboard(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Snapshot().Combined)
}

// getDashboardWindow returns the combined cache with its series trimmed to
// the last {hours} hours.
func (s *Server) getDashboardWindow(w http.ResponseWriter, r *http.Request) {
	hours, err := strconv.Atoi(mux.Vars(r)["hours"])
	if err != nil || hours <= 0 {
		writeError(w, http.StatusBadRequest, "hours must be a positive integer")

		return
	}

	combined := s.engine.Snapshot().Combined
	cutoff := s.now().Add(-time.Duration(hours) * time.Hour)

	combined.Connected = since(combined.Connected, cutoff, func(p models.ConnectedSample) time.Time {
		return p.Timestamp
	})
	combined.Signal = since(combined.Signal, cutoff, func(p models.SignalSample) time.Time {
		return p.Timestamp
	})

	writeJSON(w, http.StatusOK, combined)
}

func since[T any](series metrics.Series[T], cutoff time.Time, at func(T) time.Time) metrics.Series[T] {
	out := metrics.NewSeries[T](series.Limit())

	for _, p := range series.Points() {
		if !at(p).Before(cutoff) {
			out.Add(p)
		}
	}

	return out
}

func (s *Server) getNetworks(w http.ResponseWriter, _ *http.Request) {
	snapshot := s.engine.Snapshot()
	configured := s.networks.ActiveNetworks()

	resp := NetworksResponse{Networks: make([]NetworkStatus, 0, len(configured))}

	for _, n := range configured {
		status := NetworkStatus{MonitoredNetwork: n, HealthStatus: snapshot.HealthOf(n.ID)}

		if s.tokens != nil {
			status.Authenticated = s.tokens.Token(n.ID) != ""
		}

		if entry, ok := snapshot.Networks[n.ID]; ok {
			status.LastUpdate = entry.LastUpdate
		}

		resp.Networks = append(resp.Networks, status)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getNetwork(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	entry, ok := s.engine.Network(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Network not found")

		return
	}

	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) getAlerts(w http.ResponseWriter, r *http.Request) {
	filter := models.AlertFilter{
		NetworkID: r.URL.Query().Get("network_id"),
		Limit:     defaultAlertLimit,
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")

			return
		}

		filter.Limit = limit
	}

	alerts, err := s.store.GetAlerts(r.Context(), filter)
	if err != nil {
		log.Printf("Error fetching alerts: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")

		return
	}

	unacknowledged := false

	count, err := s.store.CountAlerts(r.Context(), models.AlertFilter{Acknowledged: &unacknowledged})
	if err != nil {
		log.Printf("Error counting unacknowledged alerts: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")

		return
	}

	if alerts == nil {
		alerts = []models.Alert{}
	}

	writeJSON(w, http.StatusOK, AlertsResponse{Alerts: alerts, UnacknowledgedCount: count})
}

func (s *Server) postAcknowledge(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid alert id")

		return
	}

	err = s.store.AcknowledgeAlert(r.Context(), id, s.now())

	switch {
	case errors.Is(err, db.ErrAlertNotFound):
		writeJSON(w, http.StatusNotFound, MessageResponse{Message: "Alert not found"})
	case err != nil:
		log.Printf("Error acknowledging alert %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	default:
		writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Alert acknowledged"})
	}
}

func (s *Server) getUptime(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	entry, _ := s.engine.Network(id)

	writeJSON(w, http.StatusOK, reports.Uptime(id, entry))
}

func (s *Server) getScorecard(w http.ResponseWriter, r *http.Request) {
	cards, err := reports.Scorecards(r.Context(), s.store, s.networks.ActiveNetworks(), s.now())
	if err != nil {
		log.Printf("Scorecard error: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())

		return
	}

	writeJSON(w, http.StatusOK, ScorecardResponse{Networks: cards})
}
