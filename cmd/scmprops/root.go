// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/scmprops/scmprops/internal/logging"
)

// cli carries state shared by all subcommands.
type cli struct {
	cfg    Config
	logger *slog.Logger
	deps   *Deps
}

// NewRootCmd creates the root command for the scmprops CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(nil)
}

func newRootCmd(deps *Deps) *cobra.Command {
	c := &cli{deps: deps.withDefaults()}

	cmd := &cobra.Command{
		Use:   "scmprops",
		Short: "Custom repository properties with predefined keys and glob search",
		Long: `scmprops manages custom key/value properties on source repositories,
enforces namespace-aware predefined key policies and keeps a search
index of the properties in sync.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.init(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file path (default: XDG_CONFIG_HOME/scmprops/config.yaml)")
	flags.String("database-url", "", "PostgreSQL connection URL (default: $DATABASE_URL)")
	flags.String("log-format", defaultLogFormat, "log format (json or text)")
	flags.String("log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	flags.Duration("connect-timeout", defaultConnectTimeout, "timeout of each database connection attempt")
	flags.Uint64("connect-retries", defaultConnectRetries, "database connection retries before giving up")

	cmd.AddCommand(
		NewServeCmd(c),
		NewMigrateCmd(c),
		NewRepoCmd(c),
		NewPropertyCmd(c),
		NewKeysCmd(c),
		NewAuditCmd(c),
		NewSearchCmd(c),
		NewReindexCmd(c),
	)
	return cmd
}

func (c *cli) init(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd.Flags(), c.deps.Getenv)
	if err != nil {
		return err
	}
	c.cfg = cfg

	logger, err := logging.Setup(logging.Options{
		Service: "scmprops",
		Version: version,
		Format:  cfg.LogFormat,
		Level:   cfg.LogLevel,
		Writer:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	c.logger = logger
	slog.SetDefault(logger)
	return nil
}

// Deps contains the injectable dependencies of the CLI. Nil fields use their
// default implementations.
type Deps struct {
	// OpenBackend connects the stores. Default: openPostgres.
	OpenBackend BackendOpener
	// Migrate brings the schema up to date before serve. Default: migrateUp.
	Migrate func(databaseURL string) error
	// Getenv reads environment variables. Default: os.Getenv.
	Getenv func(string) string
}

func (d *Deps) withDefaults() *Deps {
	out := &Deps{}
	if d != nil {
		*out = *d
	}
	if out.OpenBackend == nil {
		out.OpenBackend = openPostgres
	}
	if out.Migrate == nil {
		out.Migrate = migrateUp
	}
	if out.Getenv == nil {
		out.Getenv = os.Getenv
	}
	return out
}
