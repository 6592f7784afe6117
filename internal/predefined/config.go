// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package predefined

import (
	"maps"
	"slices"
)

// GlobalConfig is the instance-wide custom property configuration.
type GlobalConfig struct {
	// Enabled switches the custom property feature on or off.
	Enabled bool `json:"enabled" yaml:"enabled"`
	// EnableNamespaceConfig lets namespaces override global predefined keys.
	EnableNamespaceConfig bool           `json:"enable_namespace_config" yaml:"enable_namespace_config"`
	PredefinedKeys        map[string]Key `json:"predefined_keys,omitempty" yaml:"predefined_keys,omitempty"`
}

// DefaultGlobalConfig is returned when no global configuration has been stored.
func DefaultGlobalConfig() GlobalConfig {
	return GlobalConfig{
		Enabled:               true,
		EnableNamespaceConfig: true,
		PredefinedKeys:        map[string]Key{},
	}
}

// NamespaceConfig holds predefined keys scoped to one namespace.
type NamespaceConfig struct {
	PredefinedKeys map[string]Key `json:"predefined_keys,omitempty" yaml:"predefined_keys,omitempty"`
}

// Merge returns the effective predefined keys: global keys overlaid key by key
// with namespace keys when namespace configuration is enabled.
func Merge(global GlobalConfig, namespace NamespaceConfig) map[string]Key {
	result := make(map[string]Key, len(global.PredefinedKeys)+len(namespace.PredefinedKeys))
	for name, key := range global.PredefinedKeys {
		result[name] = key.Clone()
	}
	if !global.EnableNamespaceConfig {
		return result
	}
	for name, key := range namespace.PredefinedKeys {
		result[name] = key.Clone()
	}
	return result
}

// SortedNames returns the names of keys in lexicographic order.
func SortedNames(keys map[string]Key) []string {
	return slices.Sorted(maps.Keys(keys))
}
