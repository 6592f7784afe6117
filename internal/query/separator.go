// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package query

import (
	"strings"

	"github.com/samber/oops"

	"github.com/scmprops/scmprops/internal/multivalue"
)

// CheckSeparator rejects separators that would collide with glob or pair syntax.
// The empty separator stands for the internal one.
func CheckSeparator(sep string) error {
	if strings.ContainsAny(sep, "?*=") {
		return oops.Code(CodeInvalidSeparator).
			With("separator", sep).
			Wrapf(ErrInvalidSeparator, "the characters '?', '*' and '=' are not allowed as a separator")
	}
	return nil
}

// RemapSeparator replaces sep in a value filter with the internal separator.
func RemapSeparator(value, sep string) (string, error) {
	if err := CheckSeparator(sep); err != nil {
		return "", err
	}
	if value == "" || sep == "" || sep == multivalue.Separator {
		return value, nil
	}
	return strings.ReplaceAll(value, sep, multivalue.Separator), nil
}

// RemapPairSeparator replaces sep in the value part of a "<key>=<value>" filter.
// The key part is left untouched.
func RemapPairSeparator(pair, sep string) (string, error) {
	if err := CheckSeparator(sep); err != nil {
		return "", err
	}
	if pair == "" || sep == "" || sep == multivalue.Separator {
		return pair, nil
	}
	key, value, ok := strings.Cut(pair, "=")
	if !ok {
		return pair, nil
	}
	return key + "=" + strings.ReplaceAll(value, sep, multivalue.Separator), nil
}
