// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package main

import (
	"context"
	"maps"
	"slices"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/scmprops/scmprops/internal/repository"
)

// auditReport maps a mandatory key to the repositories missing it.
type auditReport map[string][]string

// NewAuditCmd creates the audit subcommand.
func NewAuditCmd(c *cli) *cobra.Command {
	var namespace, repo, output string
	var strict bool
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Report repositories missing mandatory properties",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			if namespace != "" && repo != "" {
				return oops.Code("CONFIG_INVALID").Errorf("--namespace and --repository are mutually exclusive")
			}
			return c.run(cmd.Context(), func(ctx context.Context, a *app) error {
				report, err := a.audit(ctx, namespace, repo)
				if err != nil {
					return err
				}
				if err := printAudit(cmd, output, report); err != nil {
					return err
				}
				if strict && len(report) > 0 {
					return oops.Code("MANDATORY_PROPERTIES_MISSING").
						With("keys", len(report)).
						Errorf("%d mandatory keys are missing", len(report))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&namespace, "namespace", "n", "", "only audit repositories of this namespace")
	cmd.Flags().StringVarP(&repo, "repository", "r", "", "only audit NAMESPACE/NAME")
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format (text or json)")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit with an error when anything is missing")
	return cmd
}

func (a *app) audit(ctx context.Context, namespace, fullName string) (auditReport, error) {
	if err := a.properties.RequireEnabled(ctx); err != nil {
		return nil, err
	}

	if fullName != "" {
		repo, err := a.repository(ctx, fullName)
		if err != nil {
			return nil, err
		}
		keys, err := a.properties.MissingMandatoryPropertiesForRepository(ctx, repo)
		if err != nil {
			return nil, err
		}
		report := make(auditReport, len(keys))
		for _, key := range keys {
			report[key] = []string{repo.FullName()}
		}
		return report, nil
	}

	var (
		missing map[string][]repository.Repository
		err     error
	)
	if namespace != "" {
		missing, err = a.properties.MissingMandatoryPropertiesForNamespace(ctx, namespace)
	} else {
		missing, err = a.properties.MissingMandatoryPropertiesAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	report := make(auditReport, len(missing))
	for key, repos := range missing {
		for _, repo := range repos {
			report[key] = append(report[key], repo.FullName())
		}
	}
	return report, nil
}

func printAudit(cmd *cobra.Command, output string, report auditReport) error {
	if output == outputJSON {
		return writeJSON(cmd.OutOrStdout(), report)
	}
	if len(report) == 0 {
		cmd.Println("No mandatory properties missing")
		return nil
	}
	for _, key := range slices.Sorted(maps.Keys(report)) {
		cmd.Printf("%s:\n", key)
		for _, name := range report[key] {
			cmd.Printf("  %s\n", name)
		}
	}
	return nil
}
