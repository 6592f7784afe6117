// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package main

import (
	"strconv"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/scmprops/scmprops/internal/store"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long:  `Apply, revert or inspect the embedded PostgreSQL schema migrations.`,
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withMigrator(func(m *store.Migrator) error {
				pending, err := m.Pending()
				if err != nil {
					return err
				}
				if len(pending) == 0 {
					cmd.Println("Schema is up to date")
					return nil
				}
				for _, mig := range pending {
					cmd.Printf("Applying %s\n", mig.Name)
				}
				if err := m.Up(); err != nil {
					return err
				}
				cmd.Println("Migrations completed successfully")
				return nil
			})
		},
	}

	var confirm bool
	down := &cobra.Command{
		Use:   "down",
		Short: "Revert all migrations, dropping every table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !confirm {
				return oops.Code("CONFIRMATION_REQUIRED").Errorf("migrate down drops all data; pass --yes to confirm")
			}
			return c.withMigrator(func(m *store.Migrator) error {
				if err := m.Down(); err != nil {
					return err
				}
				cmd.Println("All migrations reverted")
				return nil
			})
		},
	}
	down.Flags().BoolVar(&confirm, "yes", false, "confirm the destructive operation")

	status := &cobra.Command{
		Use:     "version",
		Aliases: []string{"status"},
		Short:   "Show the applied schema version",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withMigrator(func(m *store.Migrator) error {
				current, dirty, err := m.Version()
				if err != nil {
					return err
				}
				name, err := store.MigrationName(current)
				if err != nil {
					return err
				}
				pending, err := m.Pending()
				if err != nil {
					return err
				}
				printVersion(cmd, current, name, dirty, len(pending))
				return nil
			})
		},
	}

	force := &cobra.Command{
		Use:   "force VERSION",
		Short: "Record VERSION as applied without running migrations",
		Long: `Record VERSION as applied and clear the dirty flag. Use only after
repairing a failed migration by hand.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.Atoi(args[0])
			if err != nil || v < 0 {
				return oops.Code("INVALID_VERSION").With("version", args[0]).Errorf("version must be a non-negative integer")
			}
			return c.withMigrator(func(m *store.Migrator) error {
				if err := m.Force(v); err != nil {
					return err
				}
				cmd.Printf("Forced schema version %d\n", v)
				return nil
			})
		},
	}

	cmd.AddCommand(up, down, status, force)
	return cmd
}

func printVersion(cmd *cobra.Command, current uint, name string, dirty bool, pending int) {
	if current == 0 {
		cmd.Println("No migrations applied")
	} else {
		cmd.Printf("Version: %d (%s)\n", current, name)
	}
	if dirty {
		cmd.Println("State: dirty, repair the schema and run 'scmprops migrate force'")
	}
	cmd.Printf("Pending: %d\n", pending)
}

func (c *cli) withMigrator(fn func(m *store.Migrator) error) error {
	if c.cfg.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database_url is required (flag --database-url, config file or DATABASE_URL)")
	}
	m, err := store.NewMigrator(c.cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := m.Close(); closeErr != nil {
			c.logger.Warn("error closing migrator", "error", closeErr)
		}
	}()
	return fn(m)
}

// migrateUp applies pending migrations before serving.
func migrateUp(databaseURL string) error {
	if databaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database_url is required (flag --database-url, config file or DATABASE_URL)")
	}
	m, err := store.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }() //nolint:errcheck // migration result wins
	return m.Up()
}
