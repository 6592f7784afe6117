// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/scmprops/scmprops/internal/repository"
)

const repositoryColumns = `id, namespace, name, archived`

// RepositoryStore implements repository.Manager using PostgreSQL and adds the
// writes the CLI needs.
type RepositoryStore struct {
	pool poolIface
}

// NewRepositoryStore creates a RepositoryStore.
func NewRepositoryStore(pool poolIface) *RepositoryStore {
	return &RepositoryStore{pool: pool}
}

// Create inserts repo. A taken namespace/name yields repository.ErrAlreadyExists.
func (s *RepositoryStore) Create(ctx context.Context, repo repository.Repository) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO repositories (id, namespace, name, archived) VALUES ($1, $2, $3, $4)`,
		repo.ID, repo.Namespace, repo.Name, repo.Archived)
	if isUniqueViolation(err) {
		return repository.AlreadyExists(repo.Namespace, repo.Name)
	}
	if err != nil {
		return oops.With("operation", "create repository").With("repository", repo.FullName()).Wrap(err)
	}
	return nil
}

// SetArchived changes the archived flag of the repository with id.
func (s *RepositoryStore) SetArchived(ctx context.Context, id string, archived bool) error {
	tag, err := s.pool.Exec(ctx, `UPDATE repositories SET archived = $2 WHERE id = $1`, id, archived)
	if err != nil {
		return oops.With("operation", "archive repository").With("repository_id", id).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.NotFound(id)
	}
	return nil
}

// All implements repository.Manager.
func (s *RepositoryStore) All(ctx context.Context) ([]repository.Repository, error) {
	return s.list(ctx, "list repositories",
		`SELECT `+repositoryColumns+` FROM repositories ORDER BY namespace, name`)
}

// ByNamespace implements repository.Manager.
func (s *RepositoryStore) ByNamespace(ctx context.Context, namespace string) ([]repository.Repository, error) {
	return s.list(ctx, "list namespace repositories",
		`SELECT `+repositoryColumns+` FROM repositories WHERE namespace = $1 ORDER BY name`, namespace)
}

// Get implements repository.Manager.
func (s *RepositoryStore) Get(ctx context.Context, id string) (repository.Repository, error) {
	var repo repository.Repository
	err := s.pool.QueryRow(ctx,
		`SELECT `+repositoryColumns+` FROM repositories WHERE id = $1`, id).
		Scan(&repo.ID, &repo.Namespace, &repo.Name, &repo.Archived)
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.Repository{}, repository.NotFound(id)
	}
	if err != nil {
		return repository.Repository{}, oops.With("operation", "get repository").With("repository_id", id).Wrap(err)
	}
	return repo, nil
}

// ByName returns the repository addressed by namespace and name.
func (s *RepositoryStore) ByName(ctx context.Context, namespace, name string) (repository.Repository, error) {
	var repo repository.Repository
	err := s.pool.QueryRow(ctx,
		`SELECT `+repositoryColumns+` FROM repositories WHERE namespace = $1 AND name = $2`, namespace, name).
		Scan(&repo.ID, &repo.Namespace, &repo.Name, &repo.Archived)
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.Repository{}, repository.NotFound(namespace + "/" + name)
	}
	if err != nil {
		return repository.Repository{}, oops.With("operation", "get repository by name").
			With("repository", namespace+"/"+name).
			Wrap(err)
	}
	return repo, nil
}

func (s *RepositoryStore) list(ctx context.Context, operation, sql string, args ...any) ([]repository.Repository, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, oops.With("operation", operation).Wrap(err)
	}
	defer rows.Close()

	var repos []repository.Repository
	for rows.Next() {
		var repo repository.Repository
		if err := rows.Scan(&repo.ID, &repo.Namespace, &repo.Name, &repo.Archived); err != nil {
			return nil, oops.With("operation", operation).Wrap(err)
		}
		repos = append(repos, repo)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", operation).Wrap(err)
	}
	return repos, nil
}
