// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package property

import (
	"context"
	"log/slog"
	"strings"

	"github.com/samber/oops"

	"github.com/scmprops/scmprops/internal/eventbus"
	"github.com/scmprops/scmprops/internal/predefined"
	"github.com/scmprops/scmprops/internal/repository"
)

// KeyResolver provides the predefined keys in effect for a namespace.
// *predefined.Service satisfies it.
type KeyResolver interface {
	GlobalConfig(ctx context.Context) (predefined.GlobalConfig, error)
	AllPredefinedKeys(ctx context.Context, namespace string) (map[string]predefined.Key, error)
}

// Service is the only writer of custom properties. Every successful mutation
// publishes an event so derived state, like the search index, can follow.
type Service struct {
	store     Store
	keys      KeyResolver
	publisher eventbus.Publisher
	repos     repository.Manager
}

// NewService creates a Service.
func NewService(store Store, keys KeyResolver, publisher eventbus.Publisher, repos repository.Manager) *Service {
	return &Service{
		store:     store,
		keys:      keys,
		publisher: publisher,
		repos:     repos,
	}
}

// Enabled reports whether custom properties are enabled globally.
func (s *Service) Enabled(ctx context.Context) (bool, error) {
	cfg, err := s.keys.GlobalConfig(ctx)
	if err != nil {
		return false, err
	}
	return cfg.Enabled, nil
}

// RequireEnabled returns an ErrFeatureDisabled error when custom properties are switched off.
func (s *Service) RequireEnabled(ctx context.Context) error {
	enabled, err := s.Enabled(ctx)
	if err != nil {
		return err
	}
	if !enabled {
		return oops.Code(CodeFeatureDisabled).Wrap(ErrFeatureDisabled)
	}
	return nil
}

// Get returns the properties of repo sorted by key.
//
// Predefined keys in DEFAULT mode that have no stored property are returned as
// synthesized defaults with IsDefault set. Stored properties are flagged
// IsMandatory when their predefined key is mandatory.
func (s *Service) Get(ctx context.Context, repo repository.Repository) ([]CustomProperty, error) {
	keys, err := s.keys.AllPredefinedKeys(ctx, repo.Namespace)
	if err != nil {
		return nil, err
	}
	stored, err := s.store.GetAll(ctx, repo.ID)
	if err != nil {
		return nil, storeFailed("get all", repo, err)
	}

	result := make([]CustomProperty, 0, len(stored)+len(keys))
	for _, prop := range stored {
		key, predefinedKey := keys[prop.Key]
		result = append(result, CustomProperty{
			Key:         prop.Key,
			Value:       prop.Value,
			IsMandatory: predefinedKey && key.EffectiveMode() == predefined.ModeMandatory,
		})
	}
	for name, key := range keys {
		if key.EffectiveMode() != predefined.ModeDefault {
			continue
		}
		if _, ok := stored[name]; ok {
			continue
		}
		result = append(result, CustomProperty{Key: name, Value: key.DefaultValue, IsDefault: true})
	}

	SortByKey(result)
	return result, nil
}

// FilteredPredefinedKeys returns the predefined keys of namespace whose name
// contains filter, ignoring case. An empty filter returns all keys.
func (s *Service) FilteredPredefinedKeys(ctx context.Context, namespace, filter string) (map[string]predefined.Key, error) {
	keys, err := s.keys.AllPredefinedKeys(ctx, namespace)
	if err != nil {
		return nil, err
	}
	if filter == "" {
		return keys, nil
	}

	filter = strings.ToLower(filter)
	filtered := make(map[string]predefined.Key)
	for name, key := range keys {
		if strings.Contains(strings.ToLower(name), filter) {
			filtered[name] = key
		}
	}
	return filtered, nil
}

// Create stores a new property on repo and publishes Created.
func (s *Service) Create(ctx context.Context, repo repository.Repository, prop CustomProperty) (err error) {
	defer func() { observe("create", false, err) }()

	prop = prop.stored()
	slog.DebugContext(ctx, "creating custom property",
		"repository", repo.FullName(),
		"key", prop.Key)

	if err := s.validate(ctx, repo, prop); err != nil {
		return err
	}
	_, exists, err := s.store.Get(ctx, repo.ID, prop.Key)
	if err != nil {
		return storeFailed("get", repo, err)
	}
	if exists {
		return errAlreadyExists(repo, prop.Key)
	}

	if err := s.store.Put(ctx, repo.ID, prop); err != nil {
		return storeFailed("put", repo, err)
	}
	s.publisher.Publish(ctx, Created{Repository: repo, Property: prop})
	return nil
}

// Update changes the property stored under currentKey to updated.
//
// When the key is unchanged only the value is replaced; an identical value is a
// no-op. When the key changes, the property is moved to the new key. A retry of
// an already applied rename is a no-op, and a rename onto a different existing
// property fails with ErrAlreadyExists.
func (s *Service) Update(ctx context.Context, repo repository.Repository, currentKey string, updated CustomProperty) (err error) {
	var noop bool
	defer func() { observe("update", noop, err) }()

	updated = updated.stored()
	slog.DebugContext(ctx, "updating custom property",
		"repository", repo.FullName(),
		"current_key", currentKey,
		"key", updated.Key)

	if err := s.validate(ctx, repo, updated); err != nil {
		return err
	}
	if currentKey == updated.Key {
		noop, err = s.updateValue(ctx, repo, updated)
		return err
	}
	noop, err = s.replace(ctx, repo, currentKey, updated)
	return err
}

func (s *Service) updateValue(ctx context.Context, repo repository.Repository, updated CustomProperty) (bool, error) {
	current, exists, err := s.store.Get(ctx, repo.ID, updated.Key)
	if err != nil {
		return false, storeFailed("get", repo, err)
	}
	if !exists {
		return false, errNotFound(repo, updated.Key)
	}
	if current.Same(updated) {
		return true, nil
	}

	if err := s.store.Put(ctx, repo.ID, updated); err != nil {
		return false, storeFailed("put", repo, err)
	}
	previous := current.stored()
	s.publisher.Publish(ctx, Updated{Repository: repo, Property: updated, Previous: &previous})
	return false, nil
}

func (s *Service) replace(ctx context.Context, repo repository.Repository, currentKey string, updated CustomProperty) (bool, error) {
	outdated, outdatedExists, err := s.store.Get(ctx, repo.ID, currentKey)
	if err != nil {
		return false, storeFailed("get", repo, err)
	}
	target, targetExists, err := s.store.Get(ctx, repo.ID, updated.Key)
	if err != nil {
		return false, storeFailed("get", repo, err)
	}

	// A retried rename finds the old key gone and the new one already in place.
	if !outdatedExists && targetExists && target.Same(updated) {
		return true, nil
	}
	if targetExists && !target.Same(updated) {
		return false, errAlreadyExists(repo, updated.Key)
	}

	if err := s.store.Put(ctx, repo.ID, updated); err != nil {
		return false, storeFailed("put", repo, err)
	}
	var previous *CustomProperty
	if outdatedExists {
		if err := s.store.Remove(ctx, repo.ID, currentKey); err != nil {
			// Both keys are stored now; the new one still has to reach the index.
			s.publisher.Publish(ctx, Created{Repository: repo, Property: updated})
			return false, storeFailed("remove", repo, err)
		}
		p := outdated.stored()
		previous = &p
	}

	s.publisher.Publish(ctx, Updated{Repository: repo, Property: updated, Previous: previous})
	return false, nil
}

// Delete removes the property stored under key. Deleting a missing key is a
// no-op and publishes nothing. Deleted is published before the removal, and a
// failed removal publishes Created for the property that is still stored.
func (s *Service) Delete(ctx context.Context, repo repository.Repository, key string) (err error) {
	var noop bool
	defer func() { observe("delete", noop, err) }()

	slog.DebugContext(ctx, "deleting custom property",
		"repository", repo.FullName(),
		"key", key)

	prop, exists, err := s.store.Get(ctx, repo.ID, key)
	if err != nil {
		return storeFailed("get", repo, err)
	}
	if !exists {
		noop = true
		return nil
	}

	prop = prop.stored()
	s.publisher.Publish(ctx, Deleted{Repository: repo, Property: prop})
	if err := s.store.Remove(ctx, repo.ID, key); err != nil {
		// The property is still stored, so its entries are put back.
		s.publisher.Publish(ctx, Created{Repository: repo, Property: prop})
		return storeFailed("remove", repo, err)
	}
	return nil
}

func (s *Service) validate(ctx context.Context, repo repository.Repository, prop CustomProperty) error {
	if reason := predefined.CheckKeyName(prop.Key); reason != "" {
		return errInvalidKey(prop.Key, reason)
	}
	keys, err := s.keys.AllPredefinedKeys(ctx, repo.Namespace)
	if err != nil {
		return err
	}
	if key, ok := keys[prop.Key]; ok && !key.IsValueValid(prop.Value) {
		return errInvalidValue(repo, prop)
	}
	return nil
}

func observe(operation string, noop bool, err error) {
	switch {
	case err != nil:
		recordMutation(operation, statusError)
	case noop:
		recordMutation(operation, statusNoop)
	default:
		recordMutation(operation, statusSuccess)
	}
}
