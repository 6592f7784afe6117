// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package predefined

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
)

// Store persists global and namespace configuration.
type Store interface {
	// GlobalConfig returns the stored global configuration and whether one exists.
	GlobalConfig(ctx context.Context) (GlobalConfig, bool, error)
	SetGlobalConfig(ctx context.Context, cfg GlobalConfig) error
	// NamespaceConfig returns the stored configuration of namespace and whether one exists.
	NamespaceConfig(ctx context.Context, namespace string) (NamespaceConfig, bool, error)
	SetNamespaceConfig(ctx context.Context, namespace string, cfg NamespaceConfig) error
}

// Service resolves effective predefined keys and guards configuration writes.
type Service struct {
	store Store
}

// NewService creates a Service backed by store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// GlobalConfig returns the global configuration, or DefaultGlobalConfig when none is stored.
func (s *Service) GlobalConfig(ctx context.Context) (GlobalConfig, error) {
	cfg, ok, err := s.store.GlobalConfig(ctx)
	if err != nil {
		return GlobalConfig{}, oops.Code(CodeConfigStoreFailed).With("operation", "get global config").Wrap(err)
	}
	if !ok {
		return DefaultGlobalConfig(), nil
	}
	if cfg.PredefinedKeys == nil {
		cfg.PredefinedKeys = map[string]Key{}
	}
	return cfg, nil
}

// SetGlobalConfig validates and stores the global configuration.
func (s *Service) SetGlobalConfig(ctx context.Context, cfg GlobalConfig) error {
	if err := validateKeys("", cfg.PredefinedKeys); err != nil {
		return err
	}
	if err := s.store.SetGlobalConfig(ctx, cfg); err != nil {
		return oops.Code(CodeConfigStoreFailed).With("operation", "set global config").Wrap(err)
	}
	slog.DebugContext(ctx, "stored global predefined key configuration", "keys", len(cfg.PredefinedKeys))
	return nil
}

// NamespaceConfig returns the configuration of namespace; an empty one when none is stored.
func (s *Service) NamespaceConfig(ctx context.Context, namespace string) (NamespaceConfig, error) {
	cfg, ok, err := s.store.NamespaceConfig(ctx, namespace)
	if err != nil {
		return NamespaceConfig{}, oops.Code(CodeConfigStoreFailed).
			With("operation", "get namespace config").
			With("namespace", namespace).
			Wrap(err)
	}
	if !ok || cfg.PredefinedKeys == nil {
		cfg.PredefinedKeys = map[string]Key{}
	}
	return cfg, nil
}

// SetNamespaceConfig validates and stores the configuration of namespace.
func (s *Service) SetNamespaceConfig(ctx context.Context, namespace string, cfg NamespaceConfig) error {
	if err := validateKeys(namespace, cfg.PredefinedKeys); err != nil {
		return err
	}
	if err := s.store.SetNamespaceConfig(ctx, namespace, cfg); err != nil {
		return oops.Code(CodeConfigStoreFailed).
			With("operation", "set namespace config").
			With("namespace", namespace).
			Wrap(err)
	}
	slog.DebugContext(ctx, "stored namespace predefined key configuration",
		"namespace", namespace,
		"keys", len(cfg.PredefinedKeys))
	return nil
}

// AllPredefinedKeys returns the predefined keys in effect for repositories of namespace.
// The namespace configuration is only read when namespace overrides are enabled.
func (s *Service) AllPredefinedKeys(ctx context.Context, namespace string) (map[string]Key, error) {
	global, err := s.GlobalConfig(ctx)
	if err != nil {
		return nil, err
	}
	if !global.EnableNamespaceConfig {
		return Merge(global, NamespaceConfig{}), nil
	}
	nsCfg, err := s.NamespaceConfig(ctx, namespace)
	if err != nil {
		return nil, err
	}
	return Merge(global, nsCfg), nil
}

// validateKeys checks every key in name order so the reported error is stable.
func validateKeys(namespace string, keys map[string]Key) error {
	for _, name := range SortedNames(keys) {
		key := keys[name]
		if reason := CheckKeyName(name); reason != "" {
			return errInvalidKeyName(namespace, name, reason)
		}
		if !key.Mode.Valid() {
			return errInvalidMode(namespace, name, key.Mode)
		}
		if key.Mode == ModeMultipleChoice && len(key.AllowedValues) == 0 {
			return errInvalidMultipleChoice(namespace, name)
		}
		if !key.IsDefaultValueValid() {
			return errInvalidDefaultValue(namespace, name, key)
		}
	}
	return nil
}
