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

	"github.com/scmprops/scmprops/internal/property"
	"github.com/scmprops/scmprops/pkg/errutil"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		mock.Close()
	})
	return mock
}

func TestPropertyStore_Get(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		want      property.CustomProperty
		wantFound bool
		wantErr   bool
	}{
		{
			name: "found",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT key, value FROM custom_properties`).
					WithArgs("repo-1", "lang").
					WillReturnRows(pgxmock.NewRows([]string{"key", "value"}).AddRow("lang", "go\tjava"))
			},
			want:      property.CustomProperty{Key: "lang", Value: "go\tjava"},
			wantFound: true,
		},
		{
			name: "missing",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT key, value FROM custom_properties`).
					WithArgs("repo-1", "lang").
					WillReturnRows(pgxmock.NewRows([]string{"key", "value"}))
			},
		},
		{
			name: "database error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT key, value FROM custom_properties`).
					WithArgs("repo-1", "lang").
					WillReturnError(errors.New("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			tt.setupMock(mock)

			got, found, err := NewPropertyStore(mock).Get(context.Background(), "repo-1", "lang")
			if tt.wantErr {
				require.Error(t, err)
				errutil.AssertErrorContext(t, err, "operation", "get custom property")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPropertyStore_GetAll(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`SELECT key, value FROM custom_properties`).
		WithArgs("repo-1").
		WillReturnRows(pgxmock.NewRows([]string{"key", "value"}).
			AddRow("lang", "go").
			AddRow("team", "core"))

	got, err := NewPropertyStore(mock).GetAll(context.Background(), "repo-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]property.CustomProperty{
		"lang": {Key: "lang", Value: "go"},
		"team": {Key: "team", Value: "core"},
	}, got)
}

func TestPropertyStore_GetAllRowError(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`SELECT key, value FROM custom_properties`).
		WithArgs("repo-1").
		WillReturnRows(pgxmock.NewRows([]string{"key", "value"}).
			AddRow("lang", "go").
			RowError(0, errors.New("stream reset")))

	_, err := NewPropertyStore(mock).GetAll(context.Background(), "repo-1")
	require.Error(t, err)
}

func TestPropertyStore_Put(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`INSERT INTO custom_properties`).
		WithArgs("repo-1", "lang", "go").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := NewPropertyStore(mock).Put(context.Background(), "repo-1", property.CustomProperty{Key: "lang", Value: "go"})
	require.NoError(t, err)
}

func TestPropertyStore_PutError(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`INSERT INTO custom_properties`).
		WithArgs("repo-1", "lang", "go").
		WillReturnError(errors.New("disk full"))

	err := NewPropertyStore(mock).Put(context.Background(), "repo-1", property.CustomProperty{Key: "lang", Value: "go"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	errutil.AssertErrorContext(t, err, "key", "lang")
}

func TestPropertyStore_Remove(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`DELETE FROM custom_properties`).
		WithArgs("repo-1", "lang").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, NewPropertyStore(mock).Remove(context.Background(), "repo-1", "lang"))
}
