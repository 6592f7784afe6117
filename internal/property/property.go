// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

// Package property manages the custom key/value properties attached to repositories.
package property

import (
	"context"
	"sort"

	"github.com/scmprops/scmprops/internal/multivalue"
)

// CustomProperty is a key/value pair attached to a repository.
//
// IsDefault and IsMandatory are computed at read time against the predefined
// keys in effect; they are never persisted.
type CustomProperty struct {
	Key         string
	Value       string
	IsDefault   bool
	IsMandatory bool
}

// Values returns the single values of a multi-valued property.
func (p CustomProperty) Values() []string {
	return multivalue.Split(p.Value)
}

// Same reports whether p and other have the same key and value.
func (p CustomProperty) Same(other CustomProperty) bool {
	return p.Key == other.Key && p.Value == other.Value
}

// stored strips the derived flags.
func (p CustomProperty) stored() CustomProperty {
	return CustomProperty{Key: p.Key, Value: p.Value}
}

// SortByKey orders props lexicographically by key.
func SortByKey(props []CustomProperty) {
	sort.Slice(props, func(i, j int) bool { return props[i].Key < props[j].Key })
}

// Store persists the properties of each repository.
type Store interface {
	// Get returns the property stored under key and whether it exists.
	Get(ctx context.Context, repositoryID, key string) (CustomProperty, bool, error)
	// GetAll returns every stored property of a repository keyed by property key.
	GetAll(ctx context.Context, repositoryID string) (map[string]CustomProperty, error)
	// Put inserts or replaces the property stored under prop.Key.
	Put(ctx context.Context, repositoryID string, prop CustomProperty) error
	// Remove deletes the property stored under key. Removing a missing key is not an error.
	Remove(ctx context.Context, repositoryID, key string) error
}
