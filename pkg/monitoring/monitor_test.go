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

package monitoring

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonitor_RunsInitialAndPeriodic(t *testing.T) {
	var calls atomic.Int32

	m := NewMonitor(MonitorConfig{Name: "test", Interval: 10 * time.Millisecond})
	done := make(chan struct{})

	go func() {
		defer close(done)

		m.StartMonitoring(context.Background(), func(context.Context) error {
			calls.Add(1)

			return errors.New("ignored")
		})
	}()

	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)

	m.Stop(context.Background())
	m.Stop(context.Background())
	<-done
}

func TestMonitor_SkipInitialAndCancel(t *testing.T) {
	var calls atomic.Int32

	m := NewMonitor(MonitorConfig{Name: "test", Interval: time.Hour, SkipInitial: true})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)

		m.StartMonitoring(ctx, func(context.Context) error {
			calls.Add(1)

			return nil
		})
	}()

	cancel()
	<-done

	assert.Zero(t, calls.Load())
}
