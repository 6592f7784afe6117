// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package query

import "errors"

// Error codes for rejected search input.
const (
	CodeInvalidFilter    = "QUERY_INVALID_FILTER"
	CodeInvalidSeparator = "QUERY_INVALID_SEPARATOR"
)

var (
	// ErrInvalidFilter indicates a key/value pair filter not of the form <key>=<value>.
	ErrInvalidFilter = errors.New("invalid property filter")
	// ErrInvalidSeparator indicates a separator containing a glob or pair metacharacter.
	ErrInvalidSeparator = errors.New("invalid value separator")
)
