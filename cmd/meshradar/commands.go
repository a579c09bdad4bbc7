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

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mfreeman451/meshradar/pkg/config"
	"github.com/mfreeman451/meshradar/pkg/core"
	"github.com/mfreeman451/meshradar/pkg/lifecycle"
	"github.com/spf13/cobra"
)

const (
	serviceName       = "meshradar"
	configEnv         = "MESHRADAR_CONFIG"
	defaultConfigPath = "/etc/meshradar/meshradar.yaml"
)

// version is set at build time.
var version = "dev"

func newRootCmd() *cobra.Command {
	var configPath string

	defaultPath := os.Getenv(configEnv)
	if defaultPath == "" {
		defaultPath = defaultConfigPath
	}

	rootCmd := &cobra.Command{
		Use:           serviceName,
		Short:         "Mesh WiFi telemetry cache and uptime service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultPath,
		"path to the configuration file (env "+configEnv+")")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the refresh loop and the HTTP API",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runServe(cmdContext(cmd), configPath)
			},
		},
		&cobra.Command{
			Use:   "refresh",
			Short: "Run a single refresh cycle and exit",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runRefresh(cmd, configPath)
			},
		},
		&cobra.Command{
			Use:   "reconcile",
			Short: "Close incidents left open by a previous run and exit",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runReconcile(cmd, configPath)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", serviceName, version)
			},
		},
	)

	return rootCmd
}

func openServer(configPath string, watch bool) (*core.Server, *config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	opts := []core.Option{core.WithVersion(version)}
	if watch {
		opts = append(opts, core.WithConfigPath(configPath))
	}

	server, err := core.NewServer(cfg, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create server: %w", err)
	}

	return server, cfg, nil
}

func runServe(ctx context.Context, configPath string) error {
	server, cfg, err := openServer(configPath, true)
	if err != nil {
		return err
	}

	return lifecycle.RunServer(ctx, &lifecycle.ServerOptions{
		ServiceName: serviceName,
		Service:     server,
		GRPCAddr:    cfg.GRPCHealthAddr,
	})
}

func runRefresh(cmd *cobra.Command, configPath string) error {
	server, _, err := openServer(configPath, false)
	if err != nil {
		return err
	}

	defer stopServer(server)

	ev, err := server.RefreshOnce(cmdContext(cmd))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if ev == nil {
		fmt.Fprintln(out, "Refresh finished")

		return nil
	}

	fmt.Fprintf(out, "Refreshed %d networks in %s\n", len(ev.Networks), ev.FinishedAt.Sub(ev.StartedAt))

	for _, n := range ev.Networks {
		if n.Error != "" {
			fmt.Fprintf(out, "  %s: error: %s\n", n.NetworkID, n.Error)

			continue
		}

		fmt.Fprintf(out, "  %s: %s, %d devices\n", n.NetworkID, n.HealthStatus, n.TotalDevices)
	}

	return nil
}

func runReconcile(cmd *cobra.Command, configPath string) error {
	server, _, err := openServer(configPath, false)
	if err != nil {
		return err
	}

	defer stopServer(server)

	closed, err := server.ReconcileOnce(cmdContext(cmd))

	fmt.Fprintf(cmd.OutOrStdout(), "Closed %d stale incidents\n", closed)

	return err
}

func stopServer(server *core.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), lifecycle.ShutdownTimeout)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
	}
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}
