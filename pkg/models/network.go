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

package models

import "time"

// Address is the optional postal location of a monitored site.
type Address struct {
	Street    string   `json:"street,omitempty" yaml:"street,omitempty"`
	City      string   `json:"city,omitempty" yaml:"city,omitempty"`
	State     string   `json:"state,omitempty" yaml:"state,omitempty"`
	Zip       string   `json:"zip,omitempty" yaml:"zip,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty" yaml:"longitude,omitempty"`
}

// MonitoredNetwork is a site the refresh engine polls. It is owned by the
// configuration layer and read-only to everything else.
type MonitoredNetwork struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Active    bool      `json:"active"`
	Address   *Address  `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// DisplayName falls back to a generated label when no name is configured.
func (n *MonitoredNetwork) DisplayName() string {
	if n.Name != "" {
		return n.Name
	}

	return "Network " + n.ID
}
