// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package main

import (
	"context"
	"log/slog"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/scmprops/scmprops/internal/predefined"
	"github.com/scmprops/scmprops/internal/property"
	"github.com/scmprops/scmprops/internal/query"
	"github.com/scmprops/scmprops/internal/repository"
)

// NewRepoCmd creates the repo subcommand.
func NewRepoCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repo",
		Short: "Manage repositories",
	}
	cmd.AddCommand(newRepoAddCmd(c), newRepoListCmd(c),
		newRepoArchiveCmd(c, "archive", true), newRepoArchiveCmd(c, "unarchive", false))
	return cmd
}

func newRepoAddCmd(c *cli) *cobra.Command {
	var (
		props     []string
		separator string
	)
	cmd := &cobra.Command{
		Use:   "add NAMESPACE/NAME",
		Short: "Register a repository, optionally importing properties",
		Long: `Register a repository. Properties given with --property are imported as
they are and indexed afterwards. Imported values skip predefined key
validation; a value its predefined key would reject is stored anyway and
reported as a warning.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			namespace, name, err := repository.ParseFullName(args[0])
			if err != nil {
				return err
			}
			imported, err := parseProperties(props, separator)
			if err != nil {
				return err
			}
			return c.run(cmd.Context(), func(ctx context.Context, a *app) error {
				repo, err := repository.New(namespace, name)
				if err != nil {
					return err
				}
				if err := a.backend.Repositories.Create(ctx, repo); err != nil {
					return err
				}
				rejected, err := a.importProperties(ctx, repo, imported)
				for _, prop := range rejected {
					cmd.PrintErrf("warning: %s=%q is not allowed by its predefined key\n", prop.Key, prop.Value)
				}
				if err != nil {
					return err
				}
				cmd.Printf("Added %s (%s)\n", repo.FullName(), repo.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringArrayVarP(&props, "property", "p", nil, "property to import as KEY=VALUE (repeatable)")
	cmd.Flags().StringVar(&separator, "separator", "", "separator between multiple values in --property")
	return cmd
}

// importProperties writes props directly to the store and announces the
// import so the index picks them up in one pass. It returns the imported
// properties whose value the predefined keys of the namespace would reject.
func (a *app) importProperties(ctx context.Context, repo repository.Repository, props []property.CustomProperty) ([]property.CustomProperty, error) {
	if len(props) == 0 {
		return nil, nil
	}
	keys, err := a.keys.AllPredefinedKeys(ctx, repo.Namespace)
	if err != nil {
		return nil, err
	}

	var rejected []property.CustomProperty
	var importErr error
	for _, prop := range props {
		if key, ok := keys[prop.Key]; ok && !key.IsValueValid(prop.Value) {
			slog.WarnContext(ctx, "importing property rejected by predefined key",
				"repository", repo.FullName(),
				"key", prop.Key)
			rejected = append(rejected, prop)
		}
		if err := a.backend.Properties.Put(ctx, repo.ID, prop); err != nil {
			importErr = oops.With("repository", repo.FullName()).With("key", prop.Key).Wrapf(err, "import property")
			break
		}
	}
	a.dispatcher.Publish(ctx, repository.Imported{Repository: repo, Failed: importErr != nil})
	return rejected, importErr
}

func parseProperties(pairs []string, separator string) ([]property.CustomProperty, error) {
	props := make([]property.CustomProperty, 0, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, oops.Code(property.CodeInvalidKey).With("property", pair).
				Wrapf(property.ErrInvalidKey, "property must be given as KEY=VALUE")
		}
		if reason := predefined.CheckKeyName(key); reason != "" {
			return nil, oops.Code(property.CodeInvalidKey).With("key", key).
				Wrapf(property.ErrInvalidKey, "key %q %s", key, reason)
		}
		value, err := query.RemapSeparator(value, separator)
		if err != nil {
			return nil, err
		}
		props = append(props, property.CustomProperty{Key: key, Value: value})
	}
	return props, nil
}

func newRepoListCmd(c *cli) *cobra.Command {
	var namespace string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List repositories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd.Context(), func(ctx context.Context, a *app) error {
				var (
					repos []repository.Repository
					err   error
				)
				if namespace != "" {
					repos, err = a.backend.Repositories.ByNamespace(ctx, namespace)
				} else {
					repos, err = a.backend.Repositories.All(ctx)
				}
				if err != nil {
					return err
				}
				for _, repo := range repos {
					line := repo.FullName()
					if repo.Archived {
						line += " (archived)"
					}
					cmd.Println(line)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&namespace, "namespace", "n", "", "only list repositories of this namespace")
	return cmd
}

func newRepoArchiveCmd(c *cli, use string, archived bool) *cobra.Command {
	short := "Mark a repository as archived"
	if !archived {
		short = "Clear the archived mark of a repository"
	}
	return &cobra.Command{
		Use:   use + " NAMESPACE/NAME",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd.Context(), func(ctx context.Context, a *app) error {
				repo, err := a.repository(ctx, args[0])
				if err != nil {
					return err
				}
				if err := a.backend.Repositories.SetArchived(ctx, repo.ID, archived); err != nil {
					return err
				}
				cmd.Printf("%s: archived=%t\n", repo.FullName(), archived)
				return nil
			})
		},
	}
}
