// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package search

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/zeebo/xxh3"
)

// SchemaTag names the custom property document type in the index log.
const SchemaTag = "custom-property"

// SchemaVersion is bumped whenever the document layout changes; a mismatch
// with the logged version triggers a full rebuild on startup.
const SchemaVersion = 2

// IndexedProperty is the searchable document stored for one property value.
type IndexedProperty struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	// Property is "key=value" for pair searches.
	Property string `json:"property"`
}

// NewIndexedProperty builds the document for a single value.
func NewIndexedProperty(key, value string) IndexedProperty {
	return IndexedProperty{Key: key, Value: value, Property: key + "=" + value}
}

// EntryID identifies an index entry. It depends only on the repository, the
// key and the single value, so entries of a previous property state can be
// deleted without reading the index.
type EntryID struct {
	RepositoryID string
	Key          string
	Value        string
}

// String returns "<repository>/<key>=<value>".
func (id EntryID) String() string {
	return id.RepositoryID + "/" + id.Key + "=" + id.Value
}

// Hash returns the hex encoded xxh3-128 digest of the length-prefixed fields.
func (id EntryID) Hash() string {
	h := xxh3.New()
	var size [4]byte
	for _, part := range []string{id.RepositoryID, id.Key, id.Value} {
		binary.BigEndian.PutUint32(size[:], uint32(len(part)))
		_, _ = h.Write(size[:])
		_, _ = h.Write([]byte(part))
	}

	sum := h.Sum128()
	var b [16]byte
	binary.BigEndian.PutUint64(b[0:8], sum.Hi)
	binary.BigEndian.PutUint64(b[8:16], sum.Lo)
	return hex.EncodeToString(b[:])
}

// Entry is one document in the index together with its access expression.
type Entry struct {
	ID        EntryID
	Namespace string
	// ACL is the permission a reader needs to see the entry.
	ACL      string
	Document IndexedProperty
}

// ReadPermission returns the ACL expression guarding entries of a repository.
func ReadPermission(repositoryID string) string {
	return "repository:read:" + repositoryID
}
