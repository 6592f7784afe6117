// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/scmprops/scmprops/internal/property"
	"github.com/scmprops/scmprops/internal/query"
	"github.com/scmprops/scmprops/internal/repository"
)

// NewPropertyCmd creates the property subcommand.
func NewPropertyCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "property",
		Aliases: []string{"prop"},
		Short:   "Read and change the custom properties of a repository",
	}
	cmd.PersistentFlags().String("separator", "", "separator between multiple values (default: tab)")

	cmd.AddCommand(
		newPropertyListCmd(c),
		newPropertySetCmd(c),
		newPropertyUpdateCmd(c),
		newPropertyDeleteCmd(c),
	)
	return cmd
}

func newPropertyListCmd(c *cli) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "list NAMESPACE/NAME",
		Short: "Show the properties of a repository, defaults included",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			separator, _ := cmd.Flags().GetString("separator")
			if err := query.CheckSeparator(separator); err != nil {
				return err
			}
			return c.run(cmd.Context(), func(ctx context.Context, a *app) error {
				repo, err := a.propertyTarget(ctx, args[0])
				if err != nil {
					return err
				}
				props, err := a.properties.Get(ctx, repo)
				if err != nil {
					return err
				}
				rows := query.Present([]query.Result{{Repository: repo, Properties: props}}, query.PresentOptions{
					IncludeProperties: true,
					Separator:         separator,
					Editable:          true,
				})
				return writeRows(cmd.OutOrStdout(), output, rows, true)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format (text or json)")
	return cmd
}

func newPropertySetCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "set NAMESPACE/NAME KEY VALUE",
		Short: "Create a property",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := remapValue(cmd, args[2])
			if err != nil {
				return err
			}
			return c.run(cmd.Context(), func(ctx context.Context, a *app) error {
				repo, err := a.propertyTarget(ctx, args[0])
				if err != nil {
					return err
				}
				if err := a.properties.Create(ctx, repo, property.CustomProperty{Key: args[1], Value: value}); err != nil {
					return err
				}
				cmd.Printf("Created %s on %s\n", args[1], repo.FullName())
				return nil
			})
		},
	}
}

func newPropertyUpdateCmd(c *cli) *cobra.Command {
	var rename string
	cmd := &cobra.Command{
		Use:   "update NAMESPACE/NAME KEY VALUE",
		Short: "Change the value of a property, optionally renaming it",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := remapValue(cmd, args[2])
			if err != nil {
				return err
			}
			key := args[1]
			if rename != "" {
				key = rename
			}
			return c.run(cmd.Context(), func(ctx context.Context, a *app) error {
				repo, err := a.propertyTarget(ctx, args[0])
				if err != nil {
					return err
				}
				if err := a.properties.Update(ctx, repo, args[1], property.CustomProperty{Key: key, Value: value}); err != nil {
					return err
				}
				cmd.Printf("Updated %s on %s\n", key, repo.FullName())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&rename, "rename", "", "new key of the property")
	return cmd
}

func newPropertyDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAMESPACE/NAME KEY",
		Short: "Delete a property; deleting a missing key does nothing",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd.Context(), func(ctx context.Context, a *app) error {
				repo, err := a.propertyTarget(ctx, args[0])
				if err != nil {
					return err
				}
				if err := a.properties.Delete(ctx, repo, args[1]); err != nil {
					return err
				}
				cmd.Printf("Deleted %s on %s\n", args[1], repo.FullName())
				return nil
			})
		},
	}
}

func remapValue(cmd *cobra.Command, value string) (string, error) {
	separator, _ := cmd.Flags().GetString("separator")
	return query.RemapSeparator(value, separator)
}

// propertyTarget resolves the repository of a property command. It fails when
// custom properties are disabled.
func (a *app) propertyTarget(ctx context.Context, fullName string) (repository.Repository, error) {
	if err := a.properties.RequireEnabled(ctx); err != nil {
		return repository.Repository{}, err
	}
	return a.repository(ctx, fullName)
}
