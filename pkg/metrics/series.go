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

// Package metrics pkg/metrics/series.go provides the bounded time-series
// windows kept per network and the Prometheus collectors for the refresh engine.
package metrics

import (
	"encoding/json"
	"slices"
)

// DefaultSeriesLimit is one week of hourly samples.
const DefaultSeriesLimit = 168

// Series is a time-ordered window holding at most limit points. Adding to a
// full series evicts the oldest point; eviction never reorders.
//
// The zero value is usable and bounded by DefaultSeriesLimit. Series is not
// safe for concurrent use.
type Series[T any] struct {
	points []T
	limit  int
}

// NewSeries creates an empty series bounded by limit.
func NewSeries[T any](limit int) Series[T] {
	return Series[T]{limit: limit}
}

// Limit returns the maximum number of retained points.
func (s *Series[T]) Limit() int {
	if s.limit <= 0 {
		return DefaultSeriesLimit
	}

	return s.limit
}

// Add appends p, dropping the oldest points beyond the limit.
func (s *Series[T]) Add(p T) {
	s.points = append(s.points, p)

	if over := len(s.points) - s.Limit(); over > 0 {
		n := copy(s.points, s.points[over:])
		clear(s.points[n:])
		s.points = s.points[:n]
	}
}

// Len returns the number of retained points.
func (s *Series[T]) Len() int {
	return len(s.points)
}

// Points returns a copy of the retained points, oldest first.
func (s *Series[T]) Points() []T {
	return slices.Clone(s.points)
}

// Tail returns a copy of the newest n points, oldest first.
func (s *Series[T]) Tail(n int) []T {
	if n <= 0 {
		return nil
	}

	if n >= len(s.points) {
		return s.Points()
	}

	return slices.Clone(s.points[len(s.points)-n:])
}

// Last returns the newest point.
func (s *Series[T]) Last() (T, bool) {
	if len(s.points) == 0 {
		var zero T

		return zero, false
	}

	return s.points[len(s.points)-1], true
}

// Clone returns an independent copy of the series.
func (s *Series[T]) Clone() Series[T] {
	return Series[T]{points: slices.Clone(s.points), limit: s.limit}
}

func (s Series[T]) MarshalJSON() ([]byte, error) {
	if s.points == nil {
		return []byte("[]"), nil
	}

	return json.Marshal(s.points)
}

// UnmarshalJSON restores a series from a JSON array, keeping only the newest
// points when the document holds more than the limit.
func (s *Series[T]) UnmarshalJSON(data []byte) error {
	var points []T
	if err := json.Unmarshal(data, &points); err != nil {
		return err
	}

	if over := len(points) - s.Limit(); over > 0 {
		points = points[over:]
	}

	s.points = points

	return nil
}
