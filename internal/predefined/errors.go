// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package predefined

import (
	"errors"

	"github.com/samber/oops"
)

// Error codes for predefined key configuration failures.
const (
	CodeInvalidDefaultValue   = "PREDEFINED_KEY_INVALID_DEFAULT"
	CodeInvalidMultipleChoice = "PREDEFINED_KEY_INVALID_MULTIPLE_CHOICE"
	CodeInvalidKeyName        = "PREDEFINED_KEY_INVALID_NAME"
	CodeInvalidMode           = "PREDEFINED_KEY_INVALID_MODE"
	CodeInvalidDocument       = "PREDEFINED_KEY_INVALID_DOCUMENT"
	CodeConfigStoreFailed     = "CONFIG_STORE_FAILED"
)

var (
	// ErrInvalidDefaultValue indicates a default value that its own key rejects.
	ErrInvalidDefaultValue = errors.New("invalid default value")
	// ErrInvalidMultipleChoice indicates a multiple choice key without allowed values.
	ErrInvalidMultipleChoice = errors.New("multiple choice key without allowed values")
	// ErrInvalidKeyName indicates a predefined key name outside the permitted charset or length.
	ErrInvalidKeyName = errors.New("invalid predefined key name")
	// ErrInvalidMode indicates an unknown value mode.
	ErrInvalidMode = errors.New("invalid value mode")
)

// scope names the configuration a key belongs to in error context.
func scope(namespace string) string {
	if namespace == "" {
		return "global"
	}
	return "namespace:" + namespace
}

func errInvalidDefaultValue(namespace, name string, key Key) error {
	return oops.Code(CodeInvalidDefaultValue).
		With("scope", scope(namespace)).
		With("predefined_key", name).
		With("default_value", key.DefaultValue).
		Wrapf(ErrInvalidDefaultValue, "'%s' is not an allowed default value for the predefined key '%s'", key.DefaultValue, name)
}

func errInvalidMultipleChoice(namespace, name string) error {
	return oops.Code(CodeInvalidMultipleChoice).
		With("scope", scope(namespace)).
		With("predefined_key", name).
		Wrapf(ErrInvalidMultipleChoice, "'%s' cannot be a multiple choice property, because no allowed values were defined", name)
}

func errInvalidKeyName(namespace, name, reason string) error {
	return oops.Code(CodeInvalidKeyName).
		With("scope", scope(namespace)).
		With("predefined_key", name).
		Wrapf(ErrInvalidKeyName, "predefined key %q %s", name, reason)
}

func errInvalidMode(namespace, name string, mode Mode) error {
	return oops.Code(CodeInvalidMode).
		With("scope", scope(namespace)).
		With("predefined_key", name).
		With("mode", string(mode)).
		Wrapf(ErrInvalidMode, "unknown mode %q for predefined key '%s'", mode, name)
}
