// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package property

import "github.com/scmprops/scmprops/internal/repository"

// Created is published after a property was stored for the first time.
type Created struct {
	Repository repository.Repository
	Property   CustomProperty
}

// EventName implements eventbus.Event.
func (Created) EventName() string { return "property.created" }

// Updated is published after a property changed its value, its key, or both.
// Previous is nil when the old key was already gone.
type Updated struct {
	Repository repository.Repository
	Property   CustomProperty
	Previous   *CustomProperty
}

// EventName implements eventbus.Event.
func (Updated) EventName() string { return "property.updated" }

// Deleted is published before a property is removed from the store.
type Deleted struct {
	Repository repository.Repository
	Property   CustomProperty
}

// EventName implements eventbus.Event.
func (Deleted) EventName() string { return "property.deleted" }
