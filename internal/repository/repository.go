// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

// Package repository models the source repositories that carry custom properties.
package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Error codes for repository lookups.
const (
	CodeNotFound      = "REPOSITORY_NOT_FOUND"
	CodeAlreadyExists = "REPOSITORY_ALREADY_EXISTS"
	CodeInvalidName   = "REPOSITORY_INVALID_NAME"
)

var (
	// ErrNotFound indicates the repository does not exist.
	ErrNotFound = errors.New("repository not found")
	// ErrAlreadyExists indicates a repository with the same namespace and name exists.
	ErrAlreadyExists = errors.New("repository already exists")
	// ErrInvalidName indicates an empty namespace or name.
	ErrInvalidName = errors.New("invalid repository name")
)

// Repository is a source repository identified by ID and addressed by namespace/name.
type Repository struct {
	ID        string
	Namespace string
	Name      string
	Archived  bool
}

// FullName returns "namespace/name".
func (r Repository) FullName() string {
	return r.Namespace + "/" + r.Name
}

// Manager looks repositories up.
type Manager interface {
	// All returns every repository ordered by namespace and name.
	All(ctx context.Context) ([]Repository, error)
	// Get returns the repository with id or an ErrNotFound error.
	Get(ctx context.Context, id string) (Repository, error)
	// ByNamespace returns the repositories of namespace ordered by name.
	ByNamespace(ctx context.Context, namespace string) ([]Repository, error)
}

// New creates a repository with a fresh ULID.
func New(namespace, name string) (Repository, error) {
	namespace = strings.TrimSpace(namespace)
	name = strings.TrimSpace(name)
	if namespace == "" || name == "" || strings.Contains(namespace, "/") || strings.Contains(name, "/") {
		return Repository{}, oops.Code(CodeInvalidName).
			With("namespace", namespace).
			With("name", name).
			Wrapf(ErrInvalidName, "repository must be given as non-empty namespace and name without '/'")
	}
	return Repository{
		ID:        ulid.Make().String(),
		Namespace: namespace,
		Name:      name,
	}, nil
}

// ParseFullName splits "namespace/name".
func ParseFullName(fullName string) (namespace, name string, err error) {
	namespace, name, ok := strings.Cut(fullName, "/")
	if !ok || namespace == "" || name == "" || strings.Contains(name, "/") {
		return "", "", oops.Code(CodeInvalidName).
			With("repository", fullName).
			Wrapf(ErrInvalidName, "expected <namespace>/<name>, got %q", fullName)
	}
	return namespace, name, nil
}

// NotFound builds the error returned by Manager.Get for an unknown id.
func NotFound(id string) error {
	return oops.Code(CodeNotFound).
		With("repository_id", id).
		Wrapf(ErrNotFound, "repository %s not found", id)
}

// AlreadyExists builds the error returned when namespace/name is taken.
func AlreadyExists(namespace, name string) error {
	return oops.Code(CodeAlreadyExists).
		With("namespace", namespace).
		With("name", name).
		Wrapf(ErrAlreadyExists, "repository %s/%s already exists", namespace, name)
}
