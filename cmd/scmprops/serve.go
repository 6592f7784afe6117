// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/scmprops/scmprops/internal/eventbus"
	"github.com/scmprops/scmprops/internal/observability"
	"github.com/scmprops/scmprops/internal/property"
	"github.com/scmprops/scmprops/internal/query"
	"github.com/scmprops/scmprops/internal/search"
)

const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the index synchronizer and the metrics endpoint",
		Long: `Connect to the database, apply pending migrations, rebuild the search
index when its schema version changed and serve metrics and health probes
until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.serve(cmd)
		},
	}
	cmd.Flags().String("metrics-addr", defaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().Bool("auto-migrate", true, "apply pending migrations on startup")
	cmd.Flags().Int("glob-cache-size", query.DefaultCacheSize, "compiled glob patterns to cache")
	return cmd
}

func (c *cli) serve(cmd *cobra.Command) error {
	if c.cfg.AutoMigrate {
		if err := c.deps.Migrate(c.cfg.DatabaseURL); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return c.run(ctx, func(ctx context.Context, a *app) error {
		// Started triggers the version gated rebuild of the index.
		a.dispatcher.Publish(ctx, eventbus.Started{})

		var obsServer *observability.Server
		var obsErr <-chan error
		if c.cfg.MetricsAddr != "" {
			obsServer = observability.NewServer(c.cfg.MetricsAddr, a.ready(ctx),
				eventbus.RegisterMetrics, property.RegisterMetrics, search.RegisterMetrics)
			obsServer.Metrics().BuildInfo.WithLabelValues(version).Set(1)

			var err error
			obsErr, err = obsServer.Start()
			if err != nil {
				return oops.Code("SERVE_FAILED").With("metrics_addr", c.cfg.MetricsAddr).Wrap(err)
			}
			slog.InfoContext(ctx, "observability server started", "addr", obsServer.Addr())
		}

		cmd.Println("scmprops ready")
		var serveErr error
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "shutting down")
		case err, ok := <-obsErr:
			if ok && err != nil {
				serveErr = oops.Code("SERVE_FAILED").Wrap(err)
			}
		}

		if obsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			if err := obsServer.Stop(shutdownCtx); err != nil {
				slog.Warn("error stopping observability server", "error", err)
			}
		}
		return serveErr
	})
}

// ready reports readiness from the storage ping.
func (a *app) ready(ctx context.Context) observability.ReadinessChecker {
	return func() bool {
		if a.backend.Ping == nil {
			return true
		}
		pingCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		return a.backend.Ping(pingCtx) == nil
	}
}
