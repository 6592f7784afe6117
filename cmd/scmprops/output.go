// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/samber/oops"

	"github.com/scmprops/scmprops/internal/query"
)

const (
	outputText = "text"
	outputJSON = "json"
)

func checkOutput(format string) error {
	if format != outputText && format != outputJSON {
		return oops.Code("CONFIG_INVALID").With("output", format).Errorf("output must be 'text' or 'json', got %q", format)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeRows renders rows as JSON or as an aligned table.
func writeRows(w io.Writer, format string, rows []query.Row, withProperties bool) error {
	if format == outputJSON {
		return writeJSON(w, rows)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, row := range rows {
		name := row.Namespace + "/" + row.Name
		if row.Archived {
			name += " (archived)"
		}
		if !withProperties {
			fmt.Fprintln(tw, name)
			continue
		}
		if len(row.Properties) == 0 {
			fmt.Fprintf(tw, "%s\t\t\n", name)
			continue
		}
		for i, p := range row.Properties {
			label := ""
			if i == 0 {
				label = name
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", label, p.Key, p.Value, flags(p))
		}
	}
	return tw.Flush()
}

func flags(p query.PropertyRow) string {
	var out []string
	if p.Default {
		out = append(out, "default")
	}
	if p.Mandatory {
		out = append(out, "mandatory")
	}
	if p.Editable {
		out = append(out, "editable")
	}
	return strings.Join(out, ",")
}
