// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/scmprops/scmprops/internal/property"
)

// PropertyStore implements property.Store using PostgreSQL.
type PropertyStore struct {
	pool poolIface
}

// NewPropertyStore creates a PropertyStore.
func NewPropertyStore(pool poolIface) *PropertyStore {
	return &PropertyStore{pool: pool}
}

// Get implements property.Store.
func (s *PropertyStore) Get(ctx context.Context, repositoryID, key string) (property.CustomProperty, bool, error) {
	var prop property.CustomProperty
	err := s.pool.QueryRow(ctx,
		`SELECT key, value FROM custom_properties WHERE repository_id = $1 AND key = $2`,
		repositoryID, key).Scan(&prop.Key, &prop.Value)
	if errors.Is(err, pgx.ErrNoRows) {
		return property.CustomProperty{}, false, nil
	}
	if err != nil {
		return property.CustomProperty{}, false, oops.With("operation", "get custom property").
			With("repository_id", repositoryID).
			With("key", key).
			Wrap(err)
	}
	return prop, true, nil
}

// GetAll implements property.Store.
func (s *PropertyStore) GetAll(ctx context.Context, repositoryID string) (map[string]property.CustomProperty, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT key, value FROM custom_properties WHERE repository_id = $1`,
		repositoryID)
	if err != nil {
		return nil, oops.With("operation", "get custom properties").With("repository_id", repositoryID).Wrap(err)
	}
	defer rows.Close()

	props := make(map[string]property.CustomProperty)
	for rows.Next() {
		var prop property.CustomProperty
		if err := rows.Scan(&prop.Key, &prop.Value); err != nil {
			return nil, oops.With("operation", "scan custom property row").With("repository_id", repositoryID).Wrap(err)
		}
		props[prop.Key] = prop
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate custom properties").With("repository_id", repositoryID).Wrap(err)
	}
	return props, nil
}

// Put implements property.Store.
func (s *PropertyStore) Put(ctx context.Context, repositoryID string, prop property.CustomProperty) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO custom_properties (repository_id, key, value)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (repository_id, key) DO UPDATE SET value = $3, updated_at = now()`,
		repositoryID, prop.Key, prop.Value)
	if err != nil {
		return oops.With("operation", "put custom property").
			With("repository_id", repositoryID).
			With("key", prop.Key).
			Wrap(err)
	}
	return nil
}

// Remove implements property.Store.
func (s *PropertyStore) Remove(ctx context.Context, repositoryID, key string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM custom_properties WHERE repository_id = $1 AND key = $2`,
		repositoryID, key)
	if err != nil {
		return oops.With("operation", "remove custom property").
			With("repository_id", repositoryID).
			With("key", key).
			Wrap(err)
	}
	return nil
}
