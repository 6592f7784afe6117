// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scmprops/scmprops/internal/repository"
)

var repositoryRows = []string{"id", "namespace", "name", "archived"}

func TestRepositoryStore_Create(t *testing.T) {
	repo := repository.Repository{ID: "01J0", Namespace: "platform", Name: "api"}

	tests := []struct {
		name    string
		execErr error
		wantErr error
	}{
		{name: "inserted"},
		{
			name:    "duplicate",
			execErr: &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "repositories_namespace_name_key"},
			wantErr: repository.ErrAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			exp := mock.ExpectExec(`INSERT INTO repositories`).WithArgs("01J0", "platform", "api", false)
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(pgxmock.NewResult("INSERT", 1))
			}

			err := NewRepositoryStore(mock).Create(context.Background(), repo)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestRepositoryStore_SetArchived(t *testing.T) {
	t.Run("updated", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(`UPDATE repositories SET archived`).
			WithArgs("01J0", true).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, NewRepositoryStore(mock).SetArchived(context.Background(), "01J0", true))
	})

	t.Run("unknown repository", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(`UPDATE repositories SET archived`).
			WithArgs("missing", true).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := NewRepositoryStore(mock).SetArchived(context.Background(), "missing", true)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestRepositoryStore_All(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`SELECT id, namespace, name, archived FROM repositories ORDER BY`).
		WillReturnRows(pgxmock.NewRows(repositoryRows).
			AddRow("1", "platform", "api", false).
			AddRow("2", "platform", "web", true))

	got, err := NewRepositoryStore(mock).All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []repository.Repository{
		{ID: "1", Namespace: "platform", Name: "api"},
		{ID: "2", Namespace: "platform", Name: "web", Archived: true},
	}, got)
}

func TestRepositoryStore_ByNamespace(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`SELECT id, namespace, name, archived FROM repositories WHERE namespace`).
		WithArgs("tools").
		WillReturnError(errors.New("connection refused"))

	_, err := NewRepositoryStore(mock).ByNamespace(context.Background(), "tools")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRepositoryStore_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`SELECT id, namespace, name, archived FROM repositories WHERE id`).
			WithArgs("1").
			WillReturnRows(pgxmock.NewRows(repositoryRows).AddRow("1", "platform", "api", false))

		got, err := NewRepositoryStore(mock).Get(context.Background(), "1")
		require.NoError(t, err)
		assert.Equal(t, "platform/api", got.FullName())
	})

	t.Run("not found", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`SELECT id, namespace, name, archived FROM repositories WHERE id`).
			WithArgs("9").
			WillReturnRows(pgxmock.NewRows(repositoryRows))

		_, err := NewRepositoryStore(mock).Get(context.Background(), "9")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestRepositoryStore_ByName(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`SELECT id, namespace, name, archived FROM repositories WHERE namespace`).
		WithArgs("platform", "cli").
		WillReturnRows(pgxmock.NewRows(repositoryRows))

	_, err := NewRepositoryStore(mock).ByName(context.Background(), "platform", "cli")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
