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

package lifecycle

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

type fakeService struct {
	startErr error
	stopErr  error
	started  chan struct{}
	stopped  atomic.Bool
	watched  atomic.Bool
}

func newFakeService() *fakeService {
	return &fakeService{started: make(chan struct{})}
}

func (f *fakeService) Start(ctx context.Context) error {
	close(f.started)

	if f.startErr != nil {
		return f.startErr
	}

	<-ctx.Done()

	return nil
}

func (f *fakeService) Stop(context.Context) error {
	f.stopped.Store(true)

	return f.stopErr
}

func (f *fakeService) WatchHealth(ctx context.Context, report func(bool)) {
	f.watched.Store(true)
	report(true)
	<-ctx.Done()
}

func runAsync(ctx context.Context, opts *ServerOptions) <-chan error {
	done := make(chan error, 1)

	go func() { done <- RunServer(ctx, opts) }()

	return done
}

func wait(t *testing.T, done <-chan error) error {
	t.Helper()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("RunServer did not return")
	}

	return nil
}

func TestRunServer_RequiresService(t *testing.T) {
	assert.ErrorIs(t, RunServer(context.Background(), nil), errServiceRequired)
	assert.ErrorIs(t, RunServer(context.Background(), &ServerOptions{}), errServiceRequired)
}

func TestRunServer_StopsOnCancel(t *testing.T) {
	svc := newFakeService()
	ctx, cancel := context.WithCancel(context.Background())

	done := runAsync(ctx, &ServerOptions{ServiceName: "meshradar", Service: svc})

	<-svc.started
	cancel()

	require.NoError(t, wait(t, done))
	assert.True(t, svc.stopped.Load())
}

func TestRunServer_ServiceErrors(t *testing.T) {
	tests := []struct {
		name     string
		startErr error
		stopErr  error
		want     []error
	}{
		{name: "start fails", startErr: errBoom, want: []error{ErrService, errBoom}},
		{name: "start and stop fail", startErr: errBoom, stopErr: errBoom, want: []error{ErrService, ErrShutdown}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newFakeService()
			svc.startErr = tt.startErr
			svc.stopErr = tt.stopErr

			err := wait(t, runAsync(context.Background(), &ServerOptions{ServiceName: "meshradar", Service: svc}))

			for _, want := range tt.want {
				assert.ErrorIs(t, err, want)
			}

			assert.True(t, svc.stopped.Load())
		})
	}
}

func TestRunServer_HealthEndpoint(t *testing.T) {
	svc := newFakeService()
	ctx, cancel := context.WithCancel(context.Background())

	done := runAsync(ctx, &ServerOptions{ServiceName: "meshradar", Service: svc, GRPCAddr: "127.0.0.1:0"})

	<-svc.started
	assert.Eventually(t, svc.watched.Load, time.Second, 10*time.Millisecond)

	cancel()

	require.NoError(t, wait(t, done))
}
