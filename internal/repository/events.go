// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package repository

// ReindexRequested asks for every index entry of a repository to be rebuilt.
type ReindexRequested struct {
	Repository Repository
}

// EventName implements eventbus.Event.
func (ReindexRequested) EventName() string { return "repository.reindex_requested" }

// Imported is published after a repository import finished, successfully or not.
type Imported struct {
	Repository Repository
	Failed     bool
}

// EventName implements eventbus.Event.
func (Imported) EventName() string { return "repository.imported" }
