// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

// Package search keeps the full-text index of custom properties in sync with
// the property store.
package search

import "context"

// Index stores searchable property documents.
type Index interface {
	// Store inserts or replaces the entry with entry.ID.
	Store(ctx context.Context, entry Entry) error
	// Delete removes the entry with id; a missing entry is not an error.
	Delete(ctx context.Context, id EntryID) error
	// DeleteByRepository removes every entry of a repository.
	DeleteByRepository(ctx context.Context, repositoryID string) error
	// DeleteAll empties the index.
	DeleteAll(ctx context.Context) error
	// Entries lists the entries of a repository ordered by key and value.
	Entries(ctx context.Context, repositoryID string) ([]Entry, error)
}

// IndexLog records which document schema version the index was built with.
type IndexLog interface {
	// Version returns the logged version of tag and whether one was logged.
	Version(ctx context.Context, tag string) (int, bool, error)
	// Log records version for tag.
	Log(ctx context.Context, tag string, version int) error
}
