// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package query

import (
	"strings"

	"github.com/scmprops/scmprops/internal/multivalue"
)

// PresentOptions controls how results are rendered.
type PresentOptions struct {
	IncludeProperties bool
	// Separator joins the values of multi-valued properties; empty keeps the internal one.
	Separator string
	// Editable marks stored properties as modifiable by the caller.
	Editable bool
}

// Row is a rendered result.
type Row struct {
	Namespace  string        `json:"namespace"`
	Name       string        `json:"name"`
	Archived   bool          `json:"archived,omitempty"`
	Properties []PropertyRow `json:"properties,omitempty"`
}

// PropertyRow is a rendered property.
type PropertyRow struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	Default   bool   `json:"default,omitempty"`
	Mandatory bool   `json:"mandatory,omitempty"`
	// Editable is never set for synthesized defaults.
	Editable bool `json:"editable,omitempty"`
}

// Present renders results. Options are passed explicitly so concurrent callers
// with different separators or permissions do not interfere.
func Present(results []Result, opts PresentOptions) []Row {
	rows := make([]Row, 0, len(results))
	for _, r := range results {
		row := Row{
			Namespace: r.Repository.Namespace,
			Name:      r.Repository.Name,
			Archived:  r.Repository.Archived,
		}
		if opts.IncludeProperties {
			row.Properties = make([]PropertyRow, 0, len(r.Properties))
			for _, p := range r.Properties {
				row.Properties = append(row.Properties, PropertyRow{
					Key:       p.Key,
					Value:     displayValue(p.Value, opts.Separator),
					Default:   p.IsDefault,
					Mandatory: p.IsMandatory,
					Editable:  opts.Editable && !p.IsDefault,
				})
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func displayValue(value, sep string) string {
	if sep == "" || sep == multivalue.Separator {
		return value
	}
	return strings.ReplaceAll(value, multivalue.Separator, sep)
}
