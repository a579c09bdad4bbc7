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

// Package core pkg/core/interfaces.go
package core

import (
	"context"

	"github.com/mfreeman451/meshradar/pkg/refresh"
)

// CoreService represents the refresh service as run by the command line.
type CoreService interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	RefreshOnce(ctx context.Context) (*refresh.CycleEvent, error)
	ReconcileOnce(ctx context.Context) (int, error)
}
