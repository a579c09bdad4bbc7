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

	"github.com/mfreeman451/meshradar/pkg/models"
)

// NopNotifier drops every alert.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, *models.Alert) error { return nil }

func (NopNotifier) IsEnabled() bool { return false }

// MultiNotifier fans an alert out to every enabled notifier.
type MultiNotifier struct {
	notifiers []Notifier
}

// NewMultiNotifier combines notifiers. Nil entries are skipped.
func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	m := &MultiNotifier{}

	for _, n := range notifiers {
		if n != nil {
			m.notifiers = append(m.notifiers, n)
		}
	}

	return m
}

func (m *MultiNotifier) IsEnabled() bool {
	for _, n := range m.notifiers {
		if n.IsEnabled() {
			return true
		}
	}

	return false
}

// Notify delivers to each enabled notifier and joins their failures. Cooldown
// skips are not failures.
func (m *MultiNotifier) Notify(ctx context.Context, alert *models.Alert) error {
	var errs []error

	for _, n := range m.notifiers {
		if !n.IsEnabled() {
			continue
		}

		if err := n.Notify(ctx, alert); err != nil && !errors.Is(err, ErrWebhookCooldown) {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
