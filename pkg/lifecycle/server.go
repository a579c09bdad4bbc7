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

// Package lifecycle pkg/lifecycle/server.go
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mfreeman451/meshradar/pkg/grpc"
)

const (
	MaxRecvSize     = 4 * 1024 * 1024 // 4MB
	MaxSendSize     = 4 * 1024 * 1024 // 4MB
	ShutdownTimeout = 10 * time.Second
)

var (
	errServiceRequired = errors.New("lifecycle: service is required")
	ErrService         = errors.New("service error")
	ErrShutdown        = errors.New("shutdown error")
)

// Service defines the interface that all services must implement. Start
// blocks until the service stops or fails.
type Service interface {
	Start(context.Context) error
	Stop(context.Context) error
}

// HealthReporter is implemented by services that report readiness. The
// callback runs whenever readiness changes until ctx is done.
type HealthReporter interface {
	WatchHealth(ctx context.Context, report func(serving bool))
}

// ServerOptions holds configuration for running a service.
type ServerOptions struct {
	ServiceName string
	Service     Service

	// GRPCAddr enables the gRPC health endpoint when set.
	GRPCAddr string

	// Signals end the service. Nil means SIGINT and SIGTERM.
	Signals []os.Signal
}

// RunServer starts a service with the provided options and handles its
// lifecycle until a signal arrives, ctx ends or the service fails.
func RunServer(ctx context.Context, opts *ServerOptions) error {
	if opts == nil || opts.Service == nil {
		return errServiceRequired
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Printf("*** Starting service %s", opts.ServiceName)

	errChan := make(chan error, 2)

	var grpcServer *grpc.Server

	if opts.GRPCAddr != "" {
		grpcServer = setupGRPCServer(ctx, opts)

		go func() {
			log.Printf("Starting gRPC health server on %s", opts.GRPCAddr)

			if err := grpcServer.Start(); err != nil {
				select {
				case errChan <- err:
				default:
					log.Printf("gRPC server error: %v", err)
				}
			}
		}()
	}

	go func() {
		if err := opts.Service.Start(ctx); err != nil {
			select {
			case errChan <- err:
			default:
				log.Printf("Service error: %v", err)
			}
		}
	}()

	return handleShutdown(ctx, cancel, opts, grpcServer, errChan)
}

func setupGRPCServer(ctx context.Context, opts *ServerOptions) *grpc.Server {
	grpcServer := grpc.NewServer(opts.GRPCAddr,
		grpc.WithMaxRecvSize(MaxRecvSize),
		grpc.WithMaxSendSize(MaxSendSize),
	)

	grpcServer.SetServing("", true)
	grpcServer.SetServing(opts.ServiceName, true)

	if reporter, ok := opts.Service.(HealthReporter); ok {
		go reporter.WatchHealth(ctx, func(serving bool) {
			grpcServer.SetServing(opts.ServiceName, serving)
		})
	}

	return grpcServer
}

func handleShutdown(
	ctx context.Context, cancel context.CancelFunc, opts *ServerOptions, grpcServer *grpc.Server, errChan chan error) error {
	signals := opts.Signals
	if signals == nil {
		signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, signals...)

	defer signal.Stop(sigChan)

	var runErr error

	select {
	case sig := <-sigChan:
		log.Printf("Received signal %v, initiating shutdown", sig)
	case err := <-errChan:
		log.Printf("Received error: %v, initiating shutdown", err)

		runErr = fmt.Errorf("%w: %w", ErrService, err)
	case <-ctx.Done():
		log.Printf("Context canceled, initiating shutdown")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer shutdownCancel()

	cancel()

	if grpcServer != nil {
		grpcServer.Stop(shutdownCtx)
	}

	if err := opts.Service.Stop(shutdownCtx); err != nil {
		log.Printf("Error during service shutdown: %v", err)

		return errors.Join(runErr, fmt.Errorf("%w: %w", ErrShutdown, err))
	}

	log.Printf("Service %s stopped", opts.ServiceName)

	return runErr
}
