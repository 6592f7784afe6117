// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package property

import (
	"errors"

	"github.com/samber/oops"

	"github.com/scmprops/scmprops/internal/repository"
)

// Error codes for property operations.
const (
	CodeAlreadyExists   = "PROPERTY_ALREADY_EXISTS"
	CodeNotFound        = "PROPERTY_NOT_FOUND"
	CodeInvalidValue    = "PROPERTY_INVALID_VALUE"
	CodeInvalidKey      = "PROPERTY_INVALID_KEY"
	CodeFeatureDisabled = "FEATURE_DISABLED"
	CodeStoreFailed     = "PROPERTY_STORE_FAILED"
)

var (
	// ErrAlreadyExists indicates a property with the same key is already stored.
	ErrAlreadyExists = errors.New("custom property already exists")
	// ErrNotFound indicates the property to update does not exist.
	ErrNotFound = errors.New("custom property not found")
	// ErrInvalidValue indicates a value rejected by its predefined key.
	ErrInvalidValue = errors.New("invalid custom property value")
	// ErrInvalidKey indicates a key outside the permitted charset or length.
	ErrInvalidKey = errors.New("invalid custom property key")
	// ErrFeatureDisabled indicates custom properties are switched off globally.
	ErrFeatureDisabled = errors.New("custom properties are disabled")
)

func errAlreadyExists(repo repository.Repository, key string) error {
	return oops.Code(CodeAlreadyExists).
		With("repository", repo.FullName()).
		With("key", key).
		Wrapf(ErrAlreadyExists, "custom property %q already exists in %s", key, repo.FullName())
}

func errNotFound(repo repository.Repository, key string) error {
	return oops.Code(CodeNotFound).
		With("repository", repo.FullName()).
		With("key", key).
		Wrapf(ErrNotFound, "custom property %q not found in %s", key, repo.FullName())
}

func errInvalidValue(repo repository.Repository, prop CustomProperty) error {
	return oops.Code(CodeInvalidValue).
		With("repository", repo.FullName()).
		With("key", prop.Key).
		With("value", prop.Value).
		Wrapf(ErrInvalidValue, "value %q is not allowed for key %q", prop.Value, prop.Key)
}

func errInvalidKey(key, reason string) error {
	return oops.Code(CodeInvalidKey).
		With("key", key).
		Wrapf(ErrInvalidKey, "custom property key %q %s", key, reason)
}

func storeFailed(operation string, repo repository.Repository, err error) error {
	return oops.Code(CodeStoreFailed).
		With("operation", operation).
		With("repository_id", repo.ID).
		Wrap(err)
}
