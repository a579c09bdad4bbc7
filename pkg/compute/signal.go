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
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/mfreeman451/meshradar/pkg/models"
)

const (
	signalMinValidDBM = -100.0
	signalMaxValidDBM = -10.0

	notAvailable = "N/A"
)

// ParseSignal extracts a dBm value from a number or a string such as
// "-61 dBm". Missing, malformed or non-finite input reports false.
func ParseSignal(raw any) (float64, bool) {
	f, ok := parseSignal(raw)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}

	return f, true
}

func parseSignal(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()

		return f, err == nil
	case string:
		s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "dBm"))
		if s == "" || s == notAvailable {
			return 0, false
		}

		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}

		return f, true
	default:
		return 0, false
	}
}

// ValidSignal reports whether a reading may take part in signal averages.
func ValidSignal(dbm float64) bool {
	if math.IsNaN(dbm) || math.IsInf(dbm, 0) {
		return false
	}

	return dbm >= signalMinValidDBM && dbm <= signalMaxValidDBM
}

// SignalToPercent maps dBm linearly onto [0,100].
func SignalToPercent(dbm float64) int {
	switch {
	case dbm >= -50:
		return 100
	case dbm <= -100:
		return 0
	default:
		return int(2 * (dbm + 100))
	}
}

// SignalQualityLabel names a signal level. ok=false yields Unknown.
func SignalQualityLabel(dbm float64, ok bool) models.SignalQuality {
	if !ok || math.IsNaN(dbm) {
		return models.SignalUnknown
	}

	switch {
	case dbm >= -50:
		return models.SignalExcellent
	case dbm >= -60:
		return models.SignalVeryGood
	case dbm >= -70:
		return models.SignalGood
	case dbm >= -80:
		return models.SignalFair
	default:
		return models.SignalPoor
	}
}

// ParseFrequency buckets a GHz value into a band and returns a display
// string. Unparsable input yields "N/A" and BandUnknown.
func ParseFrequency(raw any) (string, models.FrequencyBand) {
	var (
		text  string
		value float64
	)

	switch v := raw.(type) {
	case string:
		s := strings.TrimSpace(v)
		if s == "" || s == notAvailable {
			return notAvailable, models.BandUnknown
		}

		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return notAvailable, models.BandUnknown
		}

		text, value = s, f
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return notAvailable, models.BandUnknown
		}

		text, value = v.String(), f
	default:
		f, ok := ParseSignal(raw)
		if !ok {
			return notAvailable, models.BandUnknown
		}

		text, value = strconv.FormatFloat(f, 'f', -1, 64), f
	}

	return text + " GHz", bandFor(value)
}

func bandFor(ghz float64) models.FrequencyBand {
	switch {
	case ghz >= 2.4 && ghz < 2.5:
		return models.Band24GHz
	case ghz >= 5 && ghz < 6:
		return models.Band5GHz
	case ghz >= 6 && ghz < 7:
		return models.Band6GHz
	default:
		return models.BandUnknown
	}
}
