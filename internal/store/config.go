// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/scmprops/scmprops/internal/predefined"
)

// ConfigStore implements predefined.Store using PostgreSQL. Configurations are
// stored as JSONB documents.
type ConfigStore struct {
	pool poolIface
}

// NewConfigStore creates a ConfigStore.
func NewConfigStore(pool poolIface) *ConfigStore {
	return &ConfigStore{pool: pool}
}

// GlobalConfig implements predefined.Store.
func (s *ConfigStore) GlobalConfig(ctx context.Context) (predefined.GlobalConfig, bool, error) {
	var cfg predefined.GlobalConfig
	found, err := s.load(ctx, &cfg, `SELECT config FROM global_config WHERE id`)
	if err != nil {
		return predefined.GlobalConfig{}, false, oops.With("operation", "get global config").Wrap(err)
	}
	return cfg, found, nil
}

// SetGlobalConfig implements predefined.Store.
func (s *ConfigStore) SetGlobalConfig(ctx context.Context, cfg predefined.GlobalConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return oops.With("operation", "encode global config").Wrap(err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO global_config (id, config) VALUES (TRUE, $1)
		 ON CONFLICT (id) DO UPDATE SET config = $1, updated_at = now()`,
		data)
	if err != nil {
		return oops.With("operation", "set global config").Wrap(err)
	}
	return nil
}

// NamespaceConfig implements predefined.Store.
func (s *ConfigStore) NamespaceConfig(ctx context.Context, namespace string) (predefined.NamespaceConfig, bool, error) {
	var cfg predefined.NamespaceConfig
	found, err := s.load(ctx, &cfg, `SELECT config FROM namespace_config WHERE namespace = $1`, namespace)
	if err != nil {
		return predefined.NamespaceConfig{}, false, oops.With("operation", "get namespace config").
			With("namespace", namespace).
			Wrap(err)
	}
	return cfg, found, nil
}

// SetNamespaceConfig implements predefined.Store.
func (s *ConfigStore) SetNamespaceConfig(ctx context.Context, namespace string, cfg predefined.NamespaceConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return oops.With("operation", "encode namespace config").With("namespace", namespace).Wrap(err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO namespace_config (namespace, config) VALUES ($1, $2)
		 ON CONFLICT (namespace) DO UPDATE SET config = $2, updated_at = now()`,
		namespace, data)
	if err != nil {
		return oops.With("operation", "set namespace config").With("namespace", namespace).Wrap(err)
	}
	return nil
}

func (s *ConfigStore) load(ctx context.Context, dst any, sql string, args ...any) (bool, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, sql, args...).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, oops.With("operation", "decode config").Wrap(err)
	}
	return true, nil
}
