// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/scmprops/scmprops/internal/search"
)

// NewReindexCmd creates the reindex subcommand.
func NewReindexCmd(c *cli) *cobra.Command {
	var repo string
	var force, show bool
	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the property search index",
		Long: `Rebuild the search index of one repository, or of all repositories when
the index was written by an older schema version. --force rebuilds
everything regardless of the version.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd.Context(), func(ctx context.Context, a *app) error {
				if repo == "" {
					rebuilt, err := a.synchronizer.ReindexAll(ctx, force)
					if err != nil {
						return err
					}
					if rebuilt {
						cmd.Printf("Rebuilt the index at schema version %d\n", search.SchemaVersion)
					} else {
						cmd.Printf("Index is current at schema version %d\n", search.SchemaVersion)
					}
					return nil
				}

				target, err := a.repository(ctx, repo)
				if err != nil {
					return err
				}
				if err := a.synchronizer.ReindexRepository(ctx, target); err != nil {
					return err
				}
				cmd.Printf("Reindexed %s\n", target.FullName())
				if !show {
					return nil
				}

				entries, err := a.backend.Index.Entries(ctx, target.ID)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tPROPERTY\tACL")
				for _, entry := range entries {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", entry.ID.Hash(), entry.Document.Property, entry.ACL)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVarP(&repo, "repository", "r", "", "only reindex NAMESPACE/NAME")
	cmd.Flags().BoolVar(&force, "force", false, "rebuild even when the schema version is current")
	cmd.Flags().BoolVar(&show, "show", false, "print the entries of the reindexed repository")
	return cmd
}
