// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/scmprops/scmprops/internal/predefined"
	"github.com/scmprops/scmprops/internal/xdg"
)

// NewKeysCmd creates the keys subcommand.
func NewKeysCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage predefined keys",
	}
	cmd.AddCommand(newKeysApplyCmd(c), newKeysListCmd(c))
	return cmd
}

func newKeysApplyCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "apply [FILE]",
		Short: "Store the predefined key configuration of a YAML document",
		Long: `Validate a predefined key document against its JSON schema and store the
global and namespace configurations it contains. Without FILE the document
is read from XDG_CONFIG_HOME/scmprops/predefined-keys.yaml.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := keysFile(args)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path) //nolint:gosec // path is chosen by the operator
			if err != nil {
				return oops.Code("KEYS_READ_FAILED").With("path", path).Wrap(err)
			}
			doc, err := predefined.LoadDocument(data)
			if err != nil {
				return oops.With("path", path).Wrap(err)
			}

			return c.run(cmd.Context(), func(ctx context.Context, a *app) error {
				if err := doc.Apply(ctx, a.keys); err != nil {
					return err
				}
				cmd.Printf("Applied %d global keys and %d namespaces from %s\n",
					len(doc.PredefinedKeys), len(doc.Namespaces), path)
				return nil
			})
		},
	}
}

func keysFile(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	path, err := xdg.PredefinedKeysFile()
	if err != nil {
		return "", oops.Code("KEYS_READ_FAILED").Wrapf(err, "resolve default predefined keys file")
	}
	return path, nil
}

func newKeysListCmd(c *cli) *cobra.Command {
	var namespace, filter, output string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the predefined keys in effect for a namespace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			return c.run(cmd.Context(), func(ctx context.Context, a *app) error {
				keys, err := a.properties.FilteredPredefinedKeys(ctx, namespace, filter)
				if err != nil {
					return err
				}
				if output == outputJSON {
					return writeJSON(cmd.OutOrStdout(), keys)
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "KEY\tMODE\tDEFAULT\tALLOWED")
				for _, name := range predefined.SortedNames(keys) {
					key := keys[name]
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
						name, key.EffectiveMode(), key.DefaultValue, strings.Join(key.AllowedValues, ","))
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVarP(&namespace, "namespace", "n", "", "namespace whose overrides apply (default: global keys only)")
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "only keys containing this text, ignoring case")
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format (text or json)")
	return cmd
}
