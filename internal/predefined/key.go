// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

// Package predefined holds administrator-defined property keys and their validation policies.
package predefined

import (
	"slices"

	"github.com/scmprops/scmprops/internal/multivalue"
)

// Mode selects how a predefined key constrains its property.
type Mode string

// Value modes.
const (
	ModeNone           Mode = "NONE"
	ModeDefault        Mode = "DEFAULT"
	ModeMandatory      Mode = "MANDATORY"
	ModeMultipleChoice Mode = "MULTIPLE_CHOICE"
)

// Valid reports whether m is one of the known modes. The empty mode is
// accepted and treated as ModeDefault.
func (m Mode) Valid() bool {
	switch m {
	case "", ModeNone, ModeDefault, ModeMandatory, ModeMultipleChoice:
		return true
	default:
		return false
	}
}

// Key is the validation rule for one predefined property key.
type Key struct {
	AllowedValues []string `json:"allowed_values,omitempty" yaml:"allowed_values,omitempty" jsonschema:"description=Values a property with this key may take; empty means unrestricted"`
	Mode          Mode     `json:"mode,omitempty" yaml:"mode,omitempty" jsonschema:"enum=NONE,enum=DEFAULT,enum=MANDATORY,enum=MULTIPLE_CHOICE"`
	DefaultValue  string   `json:"default_value,omitempty" yaml:"default_value,omitempty" jsonschema:"description=Value reported for repositories that do not define the key (DEFAULT mode)"`
}

// EffectiveMode returns the mode used for evaluation.
//
// Records written before the mode field existed carry DEFAULT (or nothing) with
// an empty default value; those behave as NONE.
func (k Key) EffectiveMode() Mode {
	mode := k.Mode
	if mode == "" {
		mode = ModeDefault
	}
	if mode == ModeDefault && k.DefaultValue == "" {
		return ModeNone
	}
	return mode
}

// IsValueValid reports whether value satisfies the key's allowed values.
func (k Key) IsValueValid(value string) bool {
	if k.EffectiveMode() == ModeMultipleChoice {
		return k.isMultipleChoiceValueValid(value)
	}
	return k.isSingleValueValid(value)
}

func (k Key) isMultipleChoiceValueValid(value string) bool {
	choices := multivalue.Split(value)
	if len(choices) == 0 {
		return false
	}
	for _, choice := range choices {
		if !slices.Contains(k.AllowedValues, choice) {
			return false
		}
	}
	return true
}

func (k Key) isSingleValueValid(value string) bool {
	return len(k.AllowedValues) == 0 || slices.Contains(k.AllowedValues, value)
}

// IsDefaultValueValid reports whether the configured default value is itself allowed.
func (k Key) IsDefaultValueValid() bool {
	return k.DefaultValue == "" || k.IsValueValid(k.DefaultValue)
}

// Clone returns a deep copy of k.
func (k Key) Clone() Key {
	k.AllowedValues = slices.Clone(k.AllowedValues)
	return k
}
