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

// Package alerts pkg/alerts/interfaces.go

//go:generate mockgen -destination=mock_alerts.go -package=alerts github.com/mfreeman451/meshradar/pkg/alerts Notifier,Store

package alerts

import (
	"context"

	"github.com/mfreeman451/meshradar/pkg/models"
)

// Notifier delivers an alert to an outside channel.
type Notifier interface {
	// Notify sends the alert through the channel
	Notify(ctx context.Context, alert *models.Alert) error

	// IsEnabled returns whether the notifier is enabled
	IsEnabled() bool
}

// Store persists emitted alerts.
type Store interface {
	InsertAlert(ctx context.Context, alert *models.Alert) (int64, error)
}
