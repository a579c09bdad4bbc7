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

package alerts

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mfreeman451/meshradar/pkg/models"
)

// BandwidthThreshold is the utilization percentage above which a bandwidth
// alert fires.
const BandwidthThreshold = 95.0

var (
	ErrPersistFailed = errors.New("failed to persist alert")
	ErrNotifyFailed  = errors.New("failed to notify alert")
)

// Emission is the outcome of emitting one alert. Persistence and notification
// are best effort, so their failures are reported here instead of aborting
// the caller.
type Emission struct {
	Alert      *models.Alert
	PersistErr error
	NotifyErr  error
}

// Err joins the persistence and notification failures.
func (e *Emission) Err() error {
	if e == nil {
		return nil
	}

	return errors.Join(e.PersistErr, e.NotifyErr)
}

// Result collects the emissions of one Process call.
type Result struct {
	Emitted []Emission
}

// Alerts returns the alerts emitted, in emission order.
func (r Result) Alerts() []*models.Alert {
	out := make([]*models.Alert, 0, len(r.Emitted))

	for i := range r.Emitted {
		out = append(out, r.Emitted[i].Alert)
	}

	return out
}

// Err joins every failure in the result.
func (r Result) Err() error {
	errs := make([]error, 0, len(r.Emitted))

	for i := range r.Emitted {
		errs = append(errs, r.Emitted[i].Err())
	}

	return errors.Join(errs...)
}

// Engine detects health transitions and bandwidth saturation per network.
// The last observed health is held in memory only, so a restart forgets it.
type Engine struct {
	store    Store
	notifier Notifier
	now      func() time.Time

	mu         sync.Mutex
	lastStatus map[string]models.HealthStatus
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithClock sets the source of alert timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates an alert engine. notifier may be nil.
func NewEngine(store Store, notifier Notifier, opts ...EngineOption) *Engine {
	if notifier == nil {
		notifier = NopNotifier{}
	}

	e := &Engine{
		store:      store,
		notifier:   notifier,
		now:        time.Now,
		lastStatus: make(map[string]models.HealthStatus),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// EvaluateHealth records status and returns the alert the transition calls
// for, or nil. It has no side effects besides updating the tracker.
func (e *Engine) EvaluateHealth(networkID, name string, status models.HealthStatus) *models.Alert {
	e.mu.Lock()
	prev, seen := e.lastStatus[networkID]
	e.lastStatus[networkID] = status
	e.mu.Unlock()

	if !seen || prev == status {
		return nil
	}

	switch {
	case status == models.HealthOffline:
		return e.newAlert(networkID, name, models.AlertOffline, models.SeverityCritical,
			fmt.Sprintf("%s has gone offline - all devices are unreachable.", name))
	case status == models.HealthDegraded && prev == models.HealthHealthy:
		return e.newAlert(networkID, name, models.AlertDegraded, models.SeverityWarning,
			fmt.Sprintf("%s is degraded - 50%% or fewer devices are online.", name))
	case status == models.HealthHealthy && (prev == models.HealthOffline || prev == models.HealthDegraded):
		log.Printf("Network %s (%s) recovered to healthy from %s", networkID, name, prev)
	}

	return nil
}

// EvaluateBandwidth returns a bandwidth alert when utilization exceeds the
// threshold, or nil.
func (e *Engine) EvaluateBandwidth(networkID, name string, utilization float64) *models.Alert {
	if utilization <= BandwidthThreshold {
		return nil
	}

	return e.newAlert(networkID, name, models.AlertBandwidth, models.SeverityCritical,
		fmt.Sprintf("%s bandwidth at %.1f%% - exceeds %.0f%% threshold.", name, utilization, BandwidthThreshold))
}

// CheckHealthTransition evaluates the new status and emits any resulting
// alert. It returns nil when nothing was emitted.
func (e *Engine) CheckHealthTransition(
	ctx context.Context, networkID, name string, status models.HealthStatus) *Emission {
	alert := e.EvaluateHealth(networkID, name, status)
	if alert == nil {
		return nil
	}

	return e.emit(ctx, alert)
}

// CheckBandwidth evaluates utilization and emits any resulting alert.
func (e *Engine) CheckBandwidth(ctx context.Context, networkID, name string, utilization float64) *Emission {
	alert := e.EvaluateBandwidth(networkID, name, utilization)
	if alert == nil {
		return nil
	}

	return e.emit(ctx, alert)
}

// Process runs the health and bandwidth checks for one network. Both run
// every cycle, so a single call may emit zero, one or two alerts.
func (e *Engine) Process(
	ctx context.Context, networkID, name string, status models.HealthStatus, utilization float64) Result {
	var res Result

	if em := e.CheckHealthTransition(ctx, networkID, name, status); em != nil {
		res.Emitted = append(res.Emitted, *em)
	}

	if em := e.CheckBandwidth(ctx, networkID, name, utilization); em != nil {
		res.Emitted = append(res.Emitted, *em)
	}

	return res
}

// LastStatus returns the tracked status of a network.
func (e *Engine) LastStatus(networkID string) (models.HealthStatus, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.lastStatus[networkID]

	return s, ok
}

// Reset forgets every tracked status.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.lastStatus = make(map[string]models.HealthStatus)
}

func (e *Engine) newAlert(networkID, name string, t models.AlertType, sev models.Severity, msg string) *models.Alert {
	return &models.Alert{
		NetworkID:   networkID,
		NetworkName: name,
		Type:        t,
		Severity:    sev,
		Message:     msg,
		CreatedAt:   e.now(),
	}
}

// emit persists the alert and then notifies. Neither failure stops the other.
func (e *Engine) emit(ctx context.Context, alert *models.Alert) *Emission {
	em := &Emission{Alert: alert}

	log.Printf("Alert generated: %s", alert.Message)

	if _, err := e.store.InsertAlert(ctx, alert); err != nil {
		em.PersistErr = fmt.Errorf("%w: %w", ErrPersistFailed, err)
		log.Printf("Failed to persist %s alert for network %s: %v", alert.Type, alert.NetworkID, err)
	}

	if e.notifier.IsEnabled() {
		if err := e.notifier.Notify(ctx, alert); err != nil && !errors.Is(err, ErrWebhookCooldown) {
			em.NotifyErr = fmt.Errorf("%w: %w", ErrNotifyFailed, err)
			log.Printf("Failed to notify %s alert for network %s: %v", alert.Type, alert.NetworkID, err)
		}
	}

	return em
}
