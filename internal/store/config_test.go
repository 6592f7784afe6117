// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scmprops/scmprops/internal/predefined"
)

func TestConfigStore_GlobalConfig(t *testing.T) {
	t.Run("stored", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`SELECT config FROM global_config`).
			WillReturnRows(pgxmock.NewRows([]string{"config"}).AddRow(
				[]byte(`{"enabled":true,"enable_namespace_config":false,"predefined_keys":{"lang":{"mode":"MANDATORY"}}}`)))

		cfg, found, err := NewConfigStore(mock).GlobalConfig(context.Background())
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, predefined.GlobalConfig{
			Enabled:        true,
			PredefinedKeys: map[string]predefined.Key{"lang": {Mode: predefined.ModeMandatory}},
		}, cfg)
	})

	t.Run("not stored", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`SELECT config FROM global_config`).
			WillReturnRows(pgxmock.NewRows([]string{"config"}))

		_, found, err := NewConfigStore(mock).GlobalConfig(context.Background())
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("corrupt document", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`SELECT config FROM global_config`).
			WillReturnRows(pgxmock.NewRows([]string{"config"}).AddRow([]byte(`{"enabled":`)))

		_, _, err := NewConfigStore(mock).GlobalConfig(context.Background())
		require.Error(t, err)
	})
}

func TestConfigStore_SetGlobalConfig(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`INSERT INTO global_config`).
		WithArgs([]byte(`{"enabled":true,"enable_namespace_config":true}`)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := NewConfigStore(mock).SetGlobalConfig(context.Background(), predefined.GlobalConfig{
		Enabled:               true,
		EnableNamespaceConfig: true,
	})
	require.NoError(t, err)
}

func TestConfigStore_NamespaceConfig(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`SELECT config FROM namespace_config`).
		WithArgs("platform").
		WillReturnRows(pgxmock.NewRows([]string{"config"}).AddRow(
			[]byte(`{"predefined_keys":{"team":{"allowed_values":["core","infra"],"mode":"MULTIPLE_CHOICE"}}}`)))

	cfg, found, err := NewConfigStore(mock).NamespaceConfig(context.Background(), "platform")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, predefined.Key{
		AllowedValues: []string{"core", "infra"},
		Mode:          predefined.ModeMultipleChoice,
	}, cfg.PredefinedKeys["team"])
}

func TestConfigStore_SetNamespaceConfigError(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`INSERT INTO namespace_config`).
		WithArgs("platform", pgxmock.AnyArg()).
		WillReturnError(errors.New("connection refused"))

	err := NewConfigStore(mock).SetNamespaceConfig(context.Background(), "platform", predefined.NamespaceConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
