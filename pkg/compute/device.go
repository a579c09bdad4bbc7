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

package compute

import (
	"strings"

	"github.com/mfreeman451/meshradar/pkg/models"
)

type osRule struct {
	os           models.DeviceOS
	manufacturer []string
	text         []string
}

// osRules is evaluated in order. Within a rule the manufacturer match wins
// over the hostname text match.
var osRules = []osRule{
	{
		os:           models.OSAmazon,
		manufacturer: []string{"amazon"},
		text:         []string{"echo", "alexa", "fire tv", "kindle"},
	},
	{
		os:           models.OSiOS,
		manufacturer: []string{"apple"},
		text:         []string{"iphone", "ipad", "mac", "ios", "apple"},
	},
	{
		os: models.OSAndroid,
		manufacturer: []string{
			"samsung", "google", "lg electronics", "htc", "sony",
			"motorola", "huawei", "xiaomi", "oneplus",
		},
		text: []string{"android", "pixel", "galaxy"},
	},
	{
		os:           models.OSWindows,
		manufacturer: []string{"microsoft", "dell", "hp", "lenovo", "asus", "acer", "msi"},
		text:         []string{"windows", "microsoft", "surface"},
	},
	{
		os:           models.OSGaming,
		manufacturer: []string{"sony computer entertainment", "nintendo"},
		text:         []string{"playstation", "xbox", "nintendo", "steam deck"},
	},
	{
		os:           models.OSStreaming,
		manufacturer: []string{"roku", "nvidia", "chromecast"},
		text:         []string{"roku", "chromecast", "nvidia shield", "apple tv"},
	},
}

// ClassifyDeviceOS guesses a device's OS class from its manufacturer and
// hostname.
func ClassifyDeviceOS(manufacturer, hostname string) models.DeviceOS {
	m := strings.ToLower(manufacturer)
	text := m + " " + strings.ToLower(hostname)

	for _, rule := range osRules {
		if containsAny(m, rule.manufacturer) || containsAny(text, rule.text) {
			return rule.os
		}
	}

	return models.OSOther
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}

	return false
}
