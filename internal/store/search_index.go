// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/scmprops/scmprops/internal/search"
)

// SearchIndex implements search.Index using a PostgreSQL table keyed by
// search.EntryID.Hash.
type SearchIndex struct {
	pool poolIface
}

// NewSearchIndex creates a SearchIndex.
func NewSearchIndex(pool poolIface) *SearchIndex {
	return &SearchIndex{pool: pool}
}

// Store implements search.Index.
func (x *SearchIndex) Store(ctx context.Context, entry search.Entry) error {
	_, err := x.pool.Exec(ctx,
		`INSERT INTO search_index (id, repository_id, namespace, key, value, property, acl)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET namespace = $3, property = $6, acl = $7, indexed_at = now()`,
		entry.ID.Hash(), entry.ID.RepositoryID, entry.Namespace,
		entry.Document.Key, entry.Document.Value, entry.Document.Property, entry.ACL)
	if err != nil {
		return oops.With("operation", "store index entry").With("entry", entry.ID.String()).Wrap(err)
	}
	return nil
}

// Delete implements search.Index.
func (x *SearchIndex) Delete(ctx context.Context, id search.EntryID) error {
	if _, err := x.pool.Exec(ctx, `DELETE FROM search_index WHERE id = $1`, id.Hash()); err != nil {
		return oops.With("operation", "delete index entry").With("entry", id.String()).Wrap(err)
	}
	return nil
}

// DeleteByRepository implements search.Index.
func (x *SearchIndex) DeleteByRepository(ctx context.Context, repositoryID string) error {
	if _, err := x.pool.Exec(ctx, `DELETE FROM search_index WHERE repository_id = $1`, repositoryID); err != nil {
		return oops.With("operation", "delete repository index entries").With("repository_id", repositoryID).Wrap(err)
	}
	return nil
}

// DeleteAll implements search.Index.
func (x *SearchIndex) DeleteAll(ctx context.Context) error {
	if _, err := x.pool.Exec(ctx, `DELETE FROM search_index`); err != nil {
		return oops.With("operation", "delete all index entries").Wrap(err)
	}
	return nil
}

// Entries implements search.Index.
func (x *SearchIndex) Entries(ctx context.Context, repositoryID string) ([]search.Entry, error) {
	rows, err := x.pool.Query(ctx,
		`SELECT namespace, key, value, acl FROM search_index
		 WHERE repository_id = $1 ORDER BY key, value`,
		repositoryID)
	if err != nil {
		return nil, oops.With("operation", "list index entries").With("repository_id", repositoryID).Wrap(err)
	}
	defer rows.Close()

	var entries []search.Entry
	for rows.Next() {
		var namespace, key, value, acl string
		if err := rows.Scan(&namespace, &key, &value, &acl); err != nil {
			return nil, oops.With("operation", "scan index entry").With("repository_id", repositoryID).Wrap(err)
		}
		entries = append(entries, search.Entry{
			ID:        search.EntryID{RepositoryID: repositoryID, Key: key, Value: value},
			Namespace: namespace,
			ACL:       acl,
			Document:  search.NewIndexedProperty(key, value),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate index entries").With("repository_id", repositoryID).Wrap(err)
	}
	return entries, nil
}

// IndexLog implements search.IndexLog using PostgreSQL.
type IndexLog struct {
	pool poolIface
}

// NewIndexLog creates an IndexLog.
func NewIndexLog(pool poolIface) *IndexLog {
	return &IndexLog{pool: pool}
}

// Version implements search.IndexLog.
func (l *IndexLog) Version(ctx context.Context, tag string) (int, bool, error) {
	var version int
	err := l.pool.QueryRow(ctx, `SELECT version FROM index_log WHERE tag = $1`, tag).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, oops.With("operation", "get index log").With("tag", tag).Wrap(err)
	}
	return version, true, nil
}

// Log implements search.IndexLog.
func (l *IndexLog) Log(ctx context.Context, tag string, version int) error {
	_, err := l.pool.Exec(ctx,
		`INSERT INTO index_log (tag, version) VALUES ($1, $2)
		 ON CONFLICT (tag) DO UPDATE SET version = $2, updated_at = now()`,
		tag, version)
	if err != nil {
		return oops.With("operation", "write index log").With("tag", tag).With("version", version).Wrap(err)
	}
	return nil
}
