// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

// Package multivalue encodes several semantic values into a single stored property value.
package multivalue

import "strings"

// Separator delimits the values of a multiple choice property.
// It is a control character so it cannot collide with glob metacharacters or '='.
const Separator = "\t"

// Split splits value on Separator.
//
// Trailing empty segments are dropped, so "a\t" yields ["a"] and "\t" yields no
// segments at all. A value without any separator is returned as its single
// segment, including the empty string.
func Split(value string) []string {
	return SplitOn(value, Separator)
}

// SplitOn is Split with an explicit separator.
func SplitOn(value, sep string) []string {
	parts := strings.Split(value, sep)
	if len(parts) == 1 {
		return parts
	}
	end := len(parts)
	for end > 0 && parts[end-1] == "" {
		end--
	}
	return parts[:end]
}

// Join encodes values into a single stored value.
func Join(values ...string) string {
	return strings.Join(values, Separator)
}

// IsMulti reports whether value carries more than one segment.
func IsMulti(value string) bool {
	return strings.Contains(value, Separator)
}
