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

// Package telemetry pkg/telemetry/interfaces.go

//go:generate mockgen -destination=mock_telemetry.go -package=telemetry github.com/mfreeman451/meshradar/pkg/telemetry Source,TokenProvider

package telemetry

import "context"

// Source fetches raw per-site telemetry from the vendor cloud.
type Source interface {
	// FetchDevices returns every client device known to the network.
	FetchDevices(ctx context.Context, networkID string) ([]RawDevice, error)

	// FetchNodes returns the mesh access points of the network.
	FetchNodes(ctx context.Context, networkID string) ([]RawNode, error)

	// FetchNetworkInfo returns network metadata including measured speed.
	FetchNetworkInfo(ctx context.Context, networkID string) (*NetworkInfo, error)
}

// TokenProvider resolves the API token of a network.
type TokenProvider interface {
	Token(networkID string) string
}
