// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/scmprops/scmprops/internal/query"
)

type searchOptions struct {
	key             string
	value           string
	pair            string
	excludeArchived bool
	separator       string
	withProperties  bool
	output          string
}

// filter builds the query filter, translating the separator of multi-value
// patterns into the internal one.
func (o searchOptions) filter() (query.Filter, error) {
	value, err := query.RemapSeparator(o.value, o.separator)
	if err != nil {
		return query.Filter{}, err
	}
	pair, err := query.RemapPairSeparator(o.pair, o.separator)
	if err != nil {
		return query.Filter{}, err
	}
	f := query.Filter{
		Key:             o.key,
		Value:           value,
		KeyValuePair:    pair,
		ExcludeArchived: o.excludeArchived,
	}
	return f, f.Validate()
}

// NewSearchCmd creates the search subcommand.
func NewSearchCmd(c *cli) *cobra.Command {
	var opts searchOptions
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Find repositories by glob patterns over their properties",
		Long: `Find repositories whose properties match glob patterns. '?' matches one
character and '*' any run of characters; matching ignores case.

  --key       pattern for property keys
  --value     patterns for values; separate several with --separator
  --pair      KEY=VALUE patterns matched against the same property

Without patterns every repository is listed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutput(opts.output); err != nil {
				return err
			}
			filter, err := opts.filter()
			if err != nil {
				return err
			}
			return c.run(cmd.Context(), func(ctx context.Context, a *app) error {
				if err := a.properties.RequireEnabled(ctx); err != nil {
					return err
				}
				results, err := a.engine.FindRepositoriesWithProperties(ctx, filter)
				if err != nil {
					return err
				}
				rows := query.Present(results, query.PresentOptions{
					IncludeProperties: opts.withProperties,
					Separator:         opts.separator,
				})
				return writeRows(cmd.OutOrStdout(), opts.output, rows, opts.withProperties)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.key, "key", "k", "", "glob matched against property keys")
	cmd.Flags().StringVarP(&opts.value, "value", "v", "", "globs matched against property values")
	cmd.Flags().StringVar(&opts.pair, "pair", "", "KEY=VALUE globs matched against one property")
	cmd.Flags().BoolVar(&opts.excludeArchived, "exclude-archived", false, "skip archived repositories")
	cmd.Flags().StringVar(&opts.separator, "separator", "", "separator between multiple values (default: tab)")
	cmd.Flags().BoolVar(&opts.withProperties, "with-properties", false, "include the properties of each match")
	cmd.Flags().StringVarP(&opts.output, "output", "o", outputText, "output format (text or json)")
	return cmd
}
